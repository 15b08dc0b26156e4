package services

import (
	"context"
	"fmt"
	"time"

	"loserpool-go/logging"
	"loserpool-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickService manages pick creation and weekly allocation
type PickService struct {
	pickStore    PickStore
	matchupStore MatchupStore
	logger       *logging.Logger
}

// NewPickService creates a pick service
func NewPickService(pickStore PickStore, matchupStore MatchupStore) *PickService {
	return &PickService{
		pickStore:    pickStore,
		matchupStore: matchupStore,
		logger:       logging.WithPrefix("picks"),
	}
}

// CreatePick creates a pending pick for an owner
func (s *PickService) CreatePick(ctx context.Context, ownerID, displayName string, unitCount int) (*models.Pick, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	pick := models.NewPick(ownerID, displayName, unitCount)
	if err := s.pickStore.Create(ctx, pick); err != nil {
		return nil, fmt.Errorf("failed to create pick for owner %s: %w", ownerID, err)
	}

	s.logger.Infof("Created pick %s for owner %s (%d units)", pick.ID.Hex(), ownerID, pick.UnitCount)
	return pick, nil
}

// AllocatePick assigns a pick to one team in one matchup for that matchup's
// week slot. The pick becomes active for the week. Re-allocation for the
// same slot is allowed while the matchup hasn't kicked off; after kickoff
// the slot is locked.
func (s *PickService) AllocatePick(ctx context.Context, pickID primitive.ObjectID, matchupID, team string) error {
	pick, err := s.pickStore.FindByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("failed to load pick %s: %w", pickID.Hex(), err)
	}
	if pick == nil {
		return fmt.Errorf("pick %s not found", pickID.Hex())
	}
	if pick.Status.IsTerminal() {
		return fmt.Errorf("pick %s is eliminated and cannot be allocated", pickID.Hex())
	}

	matchup, err := s.matchupStore.FindByID(ctx, matchupID)
	if err != nil {
		return fmt.Errorf("failed to load matchup %s: %w", matchupID, err)
	}
	if matchup == nil {
		return fmt.Errorf("matchup %s not found", matchupID)
	}
	if team != matchup.Away && team != matchup.Home {
		return fmt.Errorf("team %q is not playing in %s", team, matchup.Description())
	}
	if matchup.HasStarted(time.Now()) || matchup.Status != models.MatchupStatusScheduled {
		return fmt.Errorf("matchup %s has already started", matchup.Description())
	}

	label := matchup.Label()
	if existing, ok := pick.AllocationFor(label); ok && existing.MatchupID != matchupID {
		prior, err := s.matchupStore.FindByID(ctx, existing.MatchupID)
		if err != nil {
			return fmt.Errorf("failed to load prior allocation matchup: %w", err)
		}
		if prior != nil && prior.HasStarted(time.Now()) {
			return fmt.Errorf("pick %s is locked into %s for %s", pickID.Hex(), prior.Description(), label)
		}
	}

	alloc := models.Allocation{MatchupID: matchupID, Team: team}
	if err := s.pickStore.SetAllocation(ctx, pickID, label, alloc, models.PickStatusActive); err != nil {
		return fmt.Errorf("failed to allocate pick %s: %w", pickID.Hex(), err)
	}

	s.logger.Infof("Allocated pick %s to %s in %s", pickID.Hex(), team, matchup.Description())
	return nil
}

// ImportLegacyAllocations hydrates a pick's allocation map from the old
// "<matchupId>_<team>" string encoding keyed by season label. Values that
// don't parse are skipped and reported.
func (s *PickService) ImportLegacyAllocations(ctx context.Context, pickID primitive.ObjectID, encoded map[string]string) ([]string, error) {
	pick, err := s.pickStore.FindByID(ctx, pickID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pick %s: %w", pickID.Hex(), err)
	}
	if pick == nil {
		return nil, fmt.Errorf("pick %s not found", pickID.Hex())
	}

	var warnings []string
	for label, value := range encoded {
		if _, _, err := models.ParseSeasonLabel(label); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping allocation with bad label %q: %v", label, err))
			continue
		}
		alloc, err := models.ParseLegacyAllocation(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping allocation %s=%q: %v", label, value, err))
			continue
		}
		if err := s.pickStore.SetAllocation(ctx, pickID, label, alloc, pick.Status); err != nil {
			return warnings, fmt.Errorf("failed to import allocation %s on pick %s: %w", label, pickID.Hex(), err)
		}
	}

	s.logger.Infof("Imported %d legacy allocations for pick %s (%d skipped)",
		len(encoded)-len(warnings), pickID.Hex(), len(warnings))
	return warnings, nil
}

// GetOwnerSummary aggregates an owner's units by lifecycle status
func (s *PickService) GetOwnerSummary(ctx context.Context, ownerID string) (models.OwnerSummary, error) {
	summary := models.OwnerSummary{OwnerID: ownerID}

	picks, err := s.pickStore.FindByOwner(ctx, ownerID)
	if err != nil {
		return summary, fmt.Errorf("failed to load picks for owner %s: %w", ownerID, err)
	}

	for _, pick := range picks {
		summary.AddPick(pick)
	}

	return summary, nil
}
