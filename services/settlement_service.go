package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"loserpool-go/logging"
	"loserpool-go/models"
)

// SettleResult reports the outcome of settling one matchup
type SettleResult struct {
	PicksUpdated   int      `json:"picks_updated"`
	AffectedOwners []string `json:"affected_owners"`
	Warnings       []string `json:"warnings"`
}

// SweepResult reports the outcome of a full settlement sweep
type SweepResult struct {
	MatchupsProcessed int      `json:"matchups_processed"`
	PicksUpdated      int      `json:"picks_updated"`
	AffectedOwners    []string `json:"affected_owners"`
	Warnings          []string `json:"warnings"`
}

// SettlementService transitions picks when their matchup finalizes.
// Loser-pool rules: picking the winner eliminates you, a tie eliminates
// everyone on the game, picking the loser keeps you alive for the week.
// Every operation is idempotent; re-running a sweep against unchanged data
// writes nothing.
type SettlementService struct {
	matchupStore MatchupStore
	pickStore    PickStore
	season       int
	logger       *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSettlementService creates a settlement service
func NewSettlementService(matchupStore MatchupStore, pickStore PickStore, season int) *SettlementService {
	return &SettlementService{
		matchupStore: matchupStore,
		pickStore:    pickStore,
		season:       season,
		logger:       logging.WithPrefix("settlement"),
		locks:        make(map[string]*sync.Mutex),
	}
}

// matchupLock serializes settlement per matchup id so concurrent sweeps
// don't interleave the select-then-write sequence on the same game
func (s *SettlementService) matchupLock(matchupID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[matchupID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[matchupID] = lock
	}
	return lock
}

// SettleMatchup settles every pick allocated to one finalized matchup
func (s *SettlementService) SettleMatchup(ctx context.Context, matchupID string) (SettleResult, error) {
	result := SettleResult{}

	matchup, err := s.matchupStore.FindByID(ctx, matchupID)
	if err != nil {
		return result, fmt.Errorf("failed to load matchup %s: %w", matchupID, err)
	}
	if matchup == nil {
		return result, fmt.Errorf("matchup %s not found", matchupID)
	}

	winnerTeam, ok := matchup.WinnerTeam()
	if !ok {
		return result, fmt.Errorf("matchup %s is not finalized with a result", matchupID)
	}

	lock := s.matchupLock(matchupID)
	lock.Lock()
	defer lock.Unlock()

	label := matchup.Label()
	picks, err := s.pickStore.FindForSettlement(ctx, label, matchupID)
	if err != nil {
		return result, fmt.Errorf("failed to load picks for matchup %s: %w", matchupID, err)
	}

	s.logger.Debugf("Settling %s: winner=%q, %d picks to consider",
		matchup.Description(), winnerTeam, len(picks))

	owners := make(map[string]bool)

	for _, pick := range picks {
		// Eliminated picks are terminal; the store query excludes them, but
		// the guard keeps alternative store implementations honest.
		if !pick.IsSettleable() {
			continue
		}

		alloc, found := pick.AllocationFor(label)
		if !found || !alloc.Valid() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("pick %s has no usable allocation for %s, skipped", pick.ID.Hex(), label))
			continue
		}
		if alloc.MatchupID != matchupID {
			continue
		}

		next := models.PickStatusSafe
		if winnerTeam == "" || alloc.Team == winnerTeam {
			// A tie eliminates everyone; picking the team that won loses
			// the pool.
			next = models.PickStatusEliminated
		}

		if pick.Status == next {
			continue
		}

		if err := s.pickStore.UpdateStatus(ctx, pick.ID, next); err != nil {
			return result, fmt.Errorf("failed to update pick %s: %w", pick.ID.Hex(), err)
		}

		result.PicksUpdated++
		owners[pick.OwnerID] = true
	}

	result.AffectedOwners = sortedOwners(owners)

	if result.PicksUpdated > 0 {
		s.logger.Infof("Settled %s: %d picks updated, %d owners affected",
			matchup.Description(), result.PicksUpdated, len(result.AffectedOwners))
	}

	return result, nil
}

// SettleAllFinalized sweeps every finalized matchup with a reported result
// and settles each in turn. Partial progress before an error is safe to
// leave behind; the next sweep picks up where this one stopped.
func (s *SettlementService) SettleAllFinalized(ctx context.Context) (SweepResult, error) {
	result := SweepResult{}

	matchups, err := s.matchupStore.FindFinalized(ctx, s.season)
	if err != nil {
		return result, fmt.Errorf("failed to load finalized matchups: %w", err)
	}

	owners := make(map[string]bool)

	for _, matchup := range matchups {
		if !matchup.HasResult() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("matchup %s is final without scores, skipped", matchup.Description()))
			continue
		}

		settled, err := s.SettleMatchup(ctx, matchup.ID)
		result.Warnings = append(result.Warnings, settled.Warnings...)
		if err != nil {
			return result, err
		}

		result.MatchupsProcessed++
		result.PicksUpdated += settled.PicksUpdated
		for _, owner := range settled.AffectedOwners {
			owners[owner] = true
		}
	}

	result.AffectedOwners = sortedOwners(owners)

	s.logger.Infof("Sweep complete: %d matchups processed, %d picks updated",
		result.MatchupsProcessed, result.PicksUpdated)

	return result, nil
}

func sortedOwners(owners map[string]bool) []string {
	if len(owners) == 0 {
		return nil
	}
	out := make([]string, 0, len(owners))
	for owner := range owners {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out
}
