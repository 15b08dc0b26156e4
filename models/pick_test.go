package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPickDefaults(t *testing.T) {
	pick := NewPick("alice", "Alice", 3)

	assert.Equal(t, PickStatusPending, pick.Status)
	assert.Equal(t, 3, pick.UnitCount)
	assert.NotNil(t, pick.Allocations)
	assert.False(t, pick.CreatedAt.IsZero())
}

func TestNewPickClampsUnitCount(t *testing.T) {
	assert.Equal(t, 1, NewPick("alice", "", 0).UnitCount)
	assert.Equal(t, 1, NewPick("alice", "", -5).UnitCount)
}

func TestPickStatusLifecycle(t *testing.T) {
	assert.True(t, PickStatusEliminated.IsTerminal())
	assert.False(t, PickStatusPending.IsTerminal())
	assert.False(t, PickStatusActive.IsTerminal())
	assert.False(t, PickStatusSafe.IsTerminal())

	assert.True(t, (&Pick{Status: PickStatusActive}).IsSettleable())
	assert.True(t, (&Pick{Status: PickStatusSafe}).IsSettleable())
	assert.False(t, (&Pick{Status: PickStatusPending}).IsSettleable())
	assert.False(t, (&Pick{Status: PickStatusEliminated}).IsSettleable())
}

func TestParseLegacyAllocation(t *testing.T) {
	cases := []struct {
		encoded string
		want    Allocation
		wantErr bool
	}{
		{"m42_DAL", Allocation{MatchupID: "m42", Team: "DAL"}, false},
		// The split happens at the first underscore; team names keep theirs.
		{"m42_Team_X", Allocation{MatchupID: "m42", Team: "Team_X"}, false},
		{"nounderscore", Allocation{}, true},
		{"_DAL", Allocation{}, true},
		{"m42_", Allocation{}, true},
		{"", Allocation{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.encoded, func(t *testing.T) {
			got, err := ParseLegacyAllocation(tc.encoded)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLegacyAllocationRoundTrip(t *testing.T) {
	alloc := Allocation{MatchupID: "m42", Team: "Team_X"}

	decoded, err := ParseLegacyAllocation(EncodeLegacyAllocation(alloc))
	require.NoError(t, err)
	assert.Equal(t, alloc, decoded)
}

func TestAllocationValid(t *testing.T) {
	assert.True(t, Allocation{MatchupID: "m1", Team: "DAL"}.Valid())
	assert.False(t, Allocation{MatchupID: "m1"}.Valid())
	assert.False(t, Allocation{Team: "DAL"}.Valid())
	assert.False(t, Allocation{}.Valid())
}

func TestOwnerSummaryAddPick(t *testing.T) {
	summary := OwnerSummary{OwnerID: "alice"}

	summary.AddPick(&Pick{Status: PickStatusActive, UnitCount: 2})
	summary.AddPick(&Pick{Status: PickStatusSafe, UnitCount: 1})
	summary.AddPick(&Pick{Status: PickStatusPending, UnitCount: 3})
	summary.AddPick(&Pick{Status: PickStatusEliminated, UnitCount: 1})
	summary.AddPick(&Pick{Status: PickStatusEliminated, UnitCount: 1})

	assert.Equal(t, 2, summary.ActiveUnits)
	assert.Equal(t, 1, summary.SafeUnits)
	assert.Equal(t, 3, summary.PendingUnits)
	assert.Equal(t, 2, summary.EliminatedUnits)
}
