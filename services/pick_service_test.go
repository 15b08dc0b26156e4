package services

import (
	"context"
	"testing"
	"time"

	"loserpool-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func futureMatchup(store *memoryMatchupStore, week int) *models.Matchup {
	return store.add(&models.Matchup{
		Season: testSeason, Phase: models.PhaseRegular, Week: week,
		Away: "PHI", Home: "DAL",
		Kickoff: time.Now().Add(48 * time.Hour), Status: models.MatchupStatusScheduled,
	})
}

func TestCreatePick(t *testing.T) {
	picks := newMemoryPickStore()
	svc := NewPickService(picks, newMemoryMatchupStore())

	pick, err := svc.CreatePick(context.Background(), "alice", "Alice", 3)
	require.NoError(t, err)

	assert.False(t, pick.ID.IsZero())
	assert.Equal(t, models.PickStatusPending, pick.Status)
	assert.Equal(t, 3, pick.UnitCount)
	assert.Empty(t, pick.Allocations)
}

func TestCreatePickRequiresOwner(t *testing.T) {
	svc := NewPickService(newMemoryPickStore(), newMemoryMatchupStore())

	_, err := svc.CreatePick(context.Background(), "", "", 1)

	assert.Error(t, err)
}

func TestAllocatePickActivatesForWeek(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	matchup := futureMatchup(store, 5)
	svc := NewPickService(picks, store)

	pick, err := svc.CreatePick(context.Background(), "alice", "", 1)
	require.NoError(t, err)

	require.NoError(t, svc.AllocatePick(context.Background(), pick.ID, matchup.ID, "DAL"))

	assert.Equal(t, models.PickStatusActive, pick.Status)
	assert.Equal(t, models.Allocation{MatchupID: matchup.ID, Team: "DAL"}, pick.Allocations["REG5"])
}

func TestAllocatePickRejectsForeignTeam(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	matchup := futureMatchup(store, 5)
	svc := NewPickService(picks, store)

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)
	err := svc.AllocatePick(context.Background(), pick.ID, matchup.ID, "GB")

	assert.Error(t, err)
	assert.Empty(t, pick.Allocations)
}

func TestAllocatePickRejectsStartedMatchup(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	matchup := store.add(&models.Matchup{
		Season: testSeason, Phase: models.PhaseRegular, Week: 5,
		Away: "PHI", Home: "DAL",
		Kickoff: time.Now().Add(-time.Hour), Status: models.MatchupStatusLive,
	})
	svc := NewPickService(picks, store)

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)
	err := svc.AllocatePick(context.Background(), pick.ID, matchup.ID, "DAL")

	assert.Error(t, err)
}

func TestAllocatePickRejectsEliminatedPick(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	matchup := futureMatchup(store, 5)
	svc := NewPickService(picks, store)

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)
	pick.Status = models.PickStatusEliminated

	err := svc.AllocatePick(context.Background(), pick.ID, matchup.ID, "DAL")

	assert.Error(t, err)
}

func TestAllocatePickCanMoveBeforeKickoff(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	first := futureMatchup(store, 5)
	second := store.add(&models.Matchup{
		Season: testSeason, Phase: models.PhaseRegular, Week: 5,
		Away: "GB", Home: "CHI",
		Kickoff: time.Now().Add(72 * time.Hour), Status: models.MatchupStatusScheduled,
	})
	svc := NewPickService(picks, store)

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)
	require.NoError(t, svc.AllocatePick(context.Background(), pick.ID, first.ID, "DAL"))
	require.NoError(t, svc.AllocatePick(context.Background(), pick.ID, second.ID, "GB"))

	assert.Equal(t, models.Allocation{MatchupID: second.ID, Team: "GB"}, pick.Allocations["REG5"])
}

func TestAllocatePickLockedAfterPriorKickoff(t *testing.T) {
	store := newMemoryMatchupStore()
	picks := newMemoryPickStore()
	// The pick already rode a game that has since kicked off.
	started := store.add(&models.Matchup{
		Season: testSeason, Phase: models.PhaseRegular, Week: 5,
		Away: "PHI", Home: "DAL",
		Kickoff: time.Now().Add(-time.Hour), Status: models.MatchupStatusLive,
	})
	other := store.add(&models.Matchup{
		Season: testSeason, Phase: models.PhaseRegular, Week: 5,
		Away: "GB", Home: "CHI",
		Kickoff: time.Now().Add(48 * time.Hour), Status: models.MatchupStatusScheduled,
	})
	svc := NewPickService(picks, store)

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)
	pick.Allocations["REG5"] = models.Allocation{MatchupID: started.ID, Team: "DAL"}
	pick.Status = models.PickStatusActive

	err := svc.AllocatePick(context.Background(), pick.ID, other.ID, "GB")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
	assert.Equal(t, started.ID, pick.Allocations["REG5"].MatchupID)
}

func TestImportLegacyAllocations(t *testing.T) {
	picks := newMemoryPickStore()
	svc := NewPickService(picks, newMemoryMatchupStore())

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)

	encoded := map[string]string{
		"REG5":  "m42_DAL",
		"REG6":  "m77_Team_X", // team names keep their own underscores
		"POST1": "m99_GB",
	}

	warnings, err := svc.ImportLegacyAllocations(context.Background(), pick.ID, encoded)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, models.Allocation{MatchupID: "m42", Team: "DAL"}, pick.Allocations["REG5"])
	assert.Equal(t, models.Allocation{MatchupID: "m77", Team: "Team_X"}, pick.Allocations["REG6"])
	assert.Equal(t, models.Allocation{MatchupID: "m99", Team: "GB"}, pick.Allocations["POST1"])
	assert.Equal(t, models.PickStatusPending, pick.Status, "a legacy import must not change pick status")
}

func TestImportLegacyAllocationsSkipsMalformedEntries(t *testing.T) {
	picks := newMemoryPickStore()
	svc := NewPickService(picks, newMemoryMatchupStore())

	pick, _ := svc.CreatePick(context.Background(), "alice", "", 1)

	encoded := map[string]string{
		"REG5":     "m42_DAL",
		"WEEK9":    "m50_GB", // unknown label vocabulary
		"REG6":     "nounderscore",
		"REG7":     "m51_", // empty team
		"POSTGAME": "m52_SF",
	}

	warnings, err := svc.ImportLegacyAllocations(context.Background(), pick.ID, encoded)
	require.NoError(t, err)

	assert.Len(t, warnings, 4)
	assert.Len(t, pick.Allocations, 1)
	assert.Equal(t, "m42", pick.Allocations["REG5"].MatchupID)
}

func TestGetOwnerSummary(t *testing.T) {
	picks := newMemoryPickStore()
	svc := NewPickService(picks, newMemoryMatchupStore())

	allocatedPick(picks, "alice", models.PickStatusActive, nil).UnitCount = 2
	allocatedPick(picks, "alice", models.PickStatusSafe, nil)
	allocatedPick(picks, "alice", models.PickStatusEliminated, nil)
	allocatedPick(picks, "bob", models.PickStatusActive, nil)

	summary, err := svc.GetOwnerSummary(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", summary.OwnerID)
	assert.Equal(t, 2, summary.ActiveUnits)
	assert.Equal(t, 1, summary.SafeUnits)
	assert.Equal(t, 1, summary.EliminatedUnits)
	assert.Equal(t, 0, summary.PendingUnits)
}
