package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickStatus represents where a pick is in its lifecycle
type PickStatus string

const (
	PickStatusPending    PickStatus = "pending"
	PickStatusActive     PickStatus = "active"
	PickStatusSafe       PickStatus = "safe"
	PickStatusEliminated PickStatus = "eliminated"
)

// IsTerminal returns true for statuses the settlement sweep never revisits.
// A safe pick re-enters active when allocated to a later week; an eliminated
// pick stays eliminated for the rest of the season.
func (s PickStatus) IsTerminal() bool {
	return s == PickStatusEliminated
}

// Allocation assigns a pick to one team in one matchup for one week slot
type Allocation struct {
	MatchupID string `bson:"matchup_id" json:"matchup_id"`
	Team      string `bson:"team" json:"team"`
}

// Valid reports whether the allocation carries both identifiers
func (a Allocation) Valid() bool {
	return a.MatchupID != "" && a.Team != ""
}

// Pick is a purchased unit of participation in the pool. One pick lives
// across the whole season and carries at most one allocation per season
// label, keyed by the label string.
type Pick struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	OwnerID     string                `bson:"owner_id" json:"owner_id"`
	DisplayName string                `bson:"display_name,omitempty" json:"display_name,omitempty"`
	UnitCount   int                   `bson:"unit_count" json:"unit_count"`
	Status      PickStatus            `bson:"status" json:"status"`
	Allocations map[string]Allocation `bson:"allocations" json:"allocations"`
	CreatedAt   time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time             `bson:"updated_at" json:"updated_at"`
}

// NewPick creates a pending pick for an owner
func NewPick(ownerID, displayName string, unitCount int) *Pick {
	now := time.Now()
	if unitCount < 1 {
		unitCount = 1
	}
	return &Pick{
		OwnerID:     ownerID,
		DisplayName: displayName,
		UnitCount:   unitCount,
		Status:      PickStatusPending,
		Allocations: make(map[string]Allocation),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AllocationFor returns the pick's allocation for a season label, if any
func (p *Pick) AllocationFor(label string) (Allocation, bool) {
	alloc, ok := p.Allocations[label]
	return alloc, ok
}

// IsSettleable returns true if the settlement sweep should consider this pick
func (p *Pick) IsSettleable() bool {
	return p.Status == PickStatusActive || p.Status == PickStatusSafe
}

// ParseLegacyAllocation decodes the old "<matchupId>_<team>" string encoding
// into an Allocation. Matchup ids never contain the separator, so the split
// happens at the first underscore and team names keep any separators of
// their own.
func ParseLegacyAllocation(encoded string) (Allocation, error) {
	idx := strings.Index(encoded, "_")
	if idx <= 0 || idx == len(encoded)-1 {
		return Allocation{}, fmt.Errorf("malformed allocation value %q", encoded)
	}
	return Allocation{
		MatchupID: encoded[:idx],
		Team:      encoded[idx+1:],
	}, nil
}

// EncodeLegacyAllocation produces the old string encoding, used only when
// exporting for systems that still read it
func EncodeLegacyAllocation(a Allocation) string {
	return a.MatchupID + "_" + a.Team
}

// OwnerSummary aggregates one owner's units by lifecycle status, for the
// notification and leaderboard collaborators downstream.
type OwnerSummary struct {
	OwnerID         string `json:"owner_id"`
	ActiveUnits     int    `json:"active_units"`
	SafeUnits       int    `json:"safe_units"`
	PendingUnits    int    `json:"pending_units"`
	EliminatedUnits int    `json:"eliminated_units"`
}

// AddPick folds one pick's units into the summary
func (s *OwnerSummary) AddPick(p *Pick) {
	switch p.Status {
	case PickStatusActive:
		s.ActiveUnits += p.UnitCount
	case PickStatusSafe:
		s.SafeUnits += p.UnitCount
	case PickStatusPending:
		s.PendingUnits += p.UnitCount
	case PickStatusEliminated:
		s.EliminatedUnits += p.UnitCount
	}
}
