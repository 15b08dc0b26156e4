package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonLabelRoundTrip(t *testing.T) {
	cases := []struct {
		phase Phase
		week  int
		label string
	}{
		{PhasePreseason, 1, "PRE1"},
		{PhasePreseason, 4, "PRE4"},
		{PhaseRegular, 1, "REG1"},
		{PhaseRegular, 18, "REG18"},
		{PhasePostseason, 1, "POST1"},
		{PhasePostseason, 4, "POST4"},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.label, SeasonLabel(tc.phase, tc.week))

			phase, week, err := ParseSeasonLabel(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.phase, phase)
			assert.Equal(t, tc.week, week)
		})
	}
}

func TestParseSeasonLabelRejectsGarbage(t *testing.T) {
	for _, label := range []string{"", "REG", "REG0", "REG-1", "WEEK5", "POSTGAME", "reg5", "5REG"} {
		t.Run(label, func(t *testing.T) {
			_, _, err := ParseSeasonLabel(label)
			assert.Error(t, err)
		})
	}
}

func TestParsePhase(t *testing.T) {
	phase, err := ParsePhase("post")
	require.NoError(t, err)
	assert.Equal(t, PhasePostseason, phase)

	_, err = ParsePhase("playoffs")
	assert.Error(t, err)
}

func TestPhaseFromFeedType(t *testing.T) {
	cases := []struct {
		seasonType int
		phase      Phase
		ok         bool
	}{
		{1, PhasePreseason, true},
		{2, PhaseRegular, true},
		{3, PhasePostseason, true},
		{0, "", false},
		{4, "", false},
	}

	for _, tc := range cases {
		phase, ok := PhaseFromFeedType(tc.seasonType)
		assert.Equal(t, tc.ok, ok, "season type %d", tc.seasonType)
		assert.Equal(t, tc.phase, phase, "season type %d", tc.seasonType)
	}
}

func TestAllocationSlotOrdersTheWholeSeason(t *testing.T) {
	assert.Equal(t, -3, AllocationSlot(PhasePreseason, 1))
	assert.Equal(t, 0, AllocationSlot(PhasePreseason, 4))
	assert.Equal(t, 1, AllocationSlot(PhaseRegular, 1))
	assert.Equal(t, 18, AllocationSlot(PhaseRegular, 18))
	assert.Equal(t, 19, AllocationSlot(PhasePostseason, 1))
	assert.Equal(t, 22, AllocationSlot(PhasePostseason, 4))

	// The slot sequence is strictly increasing across phase boundaries.
	assert.Less(t, AllocationSlot(PhasePreseason, 4), AllocationSlot(PhaseRegular, 1))
	assert.Less(t, AllocationSlot(PhaseRegular, 18), AllocationSlot(PhasePostseason, 1))
}

func scoredMatchup(status MatchupStatus, away, home *int) *Matchup {
	return &Matchup{
		Season: 2025, Phase: PhaseRegular, Week: 5,
		Away: "PHI", Home: "DAL",
		Kickoff:   time.Date(2025, time.October, 5, 17, 0, 0, 0, time.UTC),
		Status:    status,
		AwayScore: away, HomeScore: home,
	}
}

func score(v int) *int { return &v }

func TestWinnerResolution(t *testing.T) {
	cases := []struct {
		name    string
		matchup *Matchup
		side    WinnerSide
		team    string
		ok      bool
	}{
		{"away wins", scoredMatchup(MatchupStatusFinal, score(24), score(17)), WinnerAway, "PHI", true},
		{"home wins", scoredMatchup(MatchupStatusFinal, score(14), score(31)), WinnerHome, "DAL", true},
		{"tie", scoredMatchup(MatchupStatusFinal, score(20), score(20)), WinnerTie, "", true},
		{"not final", scoredMatchup(MatchupStatusLive, score(10), score(7)), "", "", false},
		{"final without scores", scoredMatchup(MatchupStatusFinal, nil, nil), "", "", false},
		{"final with one score", scoredMatchup(MatchupStatusFinal, score(21), nil), "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			side, ok := tc.matchup.Winner()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.side, side)

			team, ok := tc.matchup.WinnerTeam()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.team, team)
		})
	}
}

func TestHasStarted(t *testing.T) {
	m := scoredMatchup(MatchupStatusScheduled, nil, nil)

	assert.False(t, m.HasStarted(m.Kickoff.Add(-time.Minute)))
	assert.True(t, m.HasStarted(m.Kickoff))
	assert.True(t, m.HasStarted(m.Kickoff.Add(time.Minute)))
}

func TestDescription(t *testing.T) {
	m := scoredMatchup(MatchupStatusScheduled, nil, nil)
	assert.Equal(t, "PHI @ DAL (REG5)", m.Description())
}

func TestSeasonYearForKickoff(t *testing.T) {
	assert.Equal(t, 2025, SeasonYearForKickoff(time.Date(2025, time.September, 4, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonYearForKickoff(time.Date(2025, time.August, 1, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonYearForKickoff(time.Date(2026, time.January, 11, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonYearForKickoff(time.Date(2026, time.February, 8, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, SeasonYearForKickoff(time.Date(2026, time.August, 6, 17, 0, 0, 0, time.UTC)))
}
