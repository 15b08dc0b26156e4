package services

import (
	"context"
	"fmt"
	"time"

	"loserpool-go/logging"
	"loserpool-go/models"
)

// kickoffTolerance absorbs formatting jitter between feed snapshots; only a
// shift larger than this is treated as a real schedule change.
const kickoffTolerance = 60 * time.Second

// ReconcileResult reports what one reconciliation pass did
type ReconcileResult struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Warnings []string `json:"warnings"`
}

// ReconcileService merges external feed snapshots into the matchup store.
// The feed is authoritative for live state (status, scores) and for
// scheduling drift, but a week disagreement means the feed record and the
// stored matchup are different fixtures, so the kickoff update is refused.
type ReconcileService struct {
	matchupStore MatchupStore
	logger       *logging.Logger
}

// NewReconcileService creates a reconcile service
func NewReconcileService(matchupStore MatchupStore) *ReconcileService {
	return &ReconcileService{
		matchupStore: matchupStore,
		logger:       logging.WithPrefix("reconcile"),
	}
}

// Reconcile merges a batch of external games into the matchup store for the
// given season. Soft failures (week mismatches, unusable records) become
// warnings and processing continues; store errors abort the pass.
func (s *ReconcileService) Reconcile(ctx context.Context, games []models.ExternalGame, season models.SeasonInfo) (ReconcileResult, error) {
	result := ReconcileResult{}
	seen := make(map[string]bool)

	s.logger.Infof("Reconciling %d external games for season %d", len(games), season.Year)

	for _, game := range games {
		phase, ok := models.PhaseFromFeedType(game.SeasonType)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("unknown season type %d for %s @ %s", game.SeasonType, game.Away, game.Home))
			continue
		}
		if game.Away == "" || game.Home == "" || game.Week < 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("unusable game record: away=%q home=%q week=%d", game.Away, game.Home, game.Week))
			continue
		}

		label := models.SeasonLabel(phase, game.Week)

		// A feed snapshot can repeat a fixture; the first occurrence wins
		// for this pass even before the store reflects the insert.
		key := game.Away + "|" + game.Home + "|" + label
		if seen[key] {
			continue
		}
		seen[key] = true

		existing, err := s.matchupStore.FindByTeams(ctx, season.Year, game.Away, game.Home, phase)
		if err != nil {
			return result, fmt.Errorf("failed to look up %s @ %s: %w", game.Away, game.Home, err)
		}

		if len(existing) == 0 {
			created, err := s.createMatchup(ctx, season.Year, phase, game)
			if err != nil {
				return result, err
			}
			if created {
				result.Created++
			}
			continue
		}

		updated, warnings := s.updateMatchup(ctx, selectFixture(existing, game.Week), game)
		result.Warnings = append(result.Warnings, warnings...)
		if updated != nil {
			if err := s.matchupStore.Update(ctx, updated); err != nil {
				return result, fmt.Errorf("failed to update matchup %s: %w", updated.ID, err)
			}
			result.Updated++
		}
	}

	s.logger.Infof("Reconciliation complete: %d created, %d updated, %d warnings",
		result.Created, result.Updated, len(result.Warnings))

	return result, nil
}

// createMatchup inserts a matchup first seen in this snapshot. The store's
// unique key makes the insert a no-op if a concurrent pass got there first.
func (s *ReconcileService) createMatchup(ctx context.Context, season int, phase models.Phase, game models.ExternalGame) (bool, error) {
	matchup := &models.Matchup{
		Season:    season,
		Phase:     phase,
		Week:      game.Week,
		Away:      game.Away,
		Home:      game.Home,
		Kickoff:   game.Kickoff,
		Status:    game.Status,
		AwayScore: game.AwayScore,
		HomeScore: game.HomeScore,
	}
	if matchup.Status == "" {
		matchup.Status = models.MatchupStatusScheduled
	}

	created, err := s.matchupStore.Insert(ctx, matchup)
	if err != nil {
		return false, fmt.Errorf("failed to insert matchup %s: %w", matchup.Description(), err)
	}
	if created {
		s.logger.Debugf("Created matchup %s", matchup.Description())
	}
	return created, nil
}

// updateMatchup applies the feed record to a stored matchup. Returns the
// mutated matchup when anything changed, nil when the pass has nothing to
// write, plus any verification warnings.
func (s *ReconcileService) updateMatchup(ctx context.Context, matchup *models.Matchup, game models.ExternalGame) (*models.Matchup, []string) {
	var warnings []string
	changed := false

	// Double-verification gate on kickoff. The week must match: two
	// fixtures between the same teams differ only by week, and writing the
	// wrong one's kickoff would silently cross-wire them. The date check is
	// advisory only; flex scheduling moves games and the feed wins.
	if matchup.Week != game.Week {
		warnings = append(warnings, fmt.Sprintf(
			"week mismatch for %s: feed reports week %d, stored week %d; kickoff not updated",
			matchup.Description(), game.Week, matchup.Week))
	} else {
		if !sameDate(matchup.Kickoff, game.Kickoff) {
			warnings = append(warnings, fmt.Sprintf(
				"date drift for %s: feed reports %s, stored %s",
				matchup.Description(),
				game.Kickoff.UTC().Format("2006-01-02"),
				matchup.Kickoff.UTC().Format("2006-01-02")))
		}
		if absDuration(matchup.Kickoff.Sub(game.Kickoff)) > kickoffTolerance {
			matchup.Kickoff = game.Kickoff
			changed = true
		}
	}

	// Live state comes straight from the feed, no gate.
	if game.Status != "" && matchup.Status != game.Status {
		matchup.Status = game.Status
		changed = true
	}
	if !equalScore(matchup.AwayScore, game.AwayScore) {
		matchup.AwayScore = game.AwayScore
		changed = true
	}
	if !equalScore(matchup.HomeScore, game.HomeScore) {
		matchup.HomeScore = game.HomeScore
		changed = true
	}

	if !changed {
		return nil, warnings
	}
	return matchup, warnings
}

// selectFixture prefers the stored fixture whose week matches the feed
// record; rematches in the same phase fall back to the first by week.
func selectFixture(matchups []*models.Matchup, week int) *models.Matchup {
	for _, m := range matchups {
		if m.Week == week {
			return m
		}
	}
	return matchups[0]
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func equalScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
