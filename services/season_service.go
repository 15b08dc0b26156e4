package services

import (
	"context"
	"sort"
	"time"

	"loserpool-go/logging"
	"loserpool-go/models"
)

// cutoffMargin is the buffer applied around the observed schedule when
// deriving the preseason/regular-season boundary. Schedules shift from year
// to year, so the boundary is inferred from kickoffs, never from the calendar.
const cutoffMargin = 7 * 24 * time.Hour

// SeasonService resolves the current competitive phase and week from the
// matchup population. It is read-only and total: every branch terminates in
// a usable answer, because the query layers depend on always getting one.
type SeasonService struct {
	matchupStore MatchupStore
	season       int
	fallbackWeek int
	logger       *logging.Logger
}

// NewSeasonService creates a season service. fallbackWeek is the last-resort
// week used when the matchup store holds nothing to infer from.
func NewSeasonService(matchupStore MatchupStore, season, fallbackWeek int) *SeasonService {
	if fallbackWeek < 1 {
		fallbackWeek = 1
	}
	return &SeasonService{
		matchupStore: matchupStore,
		season:       season,
		fallbackWeek: fallbackWeek,
		logger:       logging.WithPrefix("season"),
	}
}

// Resolve computes the SeasonInfo for the given instant. It never fails: a
// store error or an empty store falls back to the configured week.
func (s *SeasonService) Resolve(ctx context.Context, now time.Time) models.SeasonInfo {
	matchups, err := s.matchupStore.GetAllBySeason(ctx, s.season)
	if err != nil {
		s.logger.Errorf("Failed to load matchups, using fallback week: %v", err)
		matchups = nil
	}
	if len(matchups) == 0 {
		return models.NewSeasonInfo(models.PhaseRegular, s.fallbackWeek, s.season, s.defaultCutoff(s.season))
	}

	byPhase := partitionByPhase(matchups)
	year := models.SeasonYearForKickoff(earliestKickoff(matchups))
	cutoff := s.preseasonCutoff(byPhase, year)

	if now.Before(cutoff) {
		return s.resolvePreseason(byPhase, now, year, cutoff)
	}
	return s.resolveInSeason(byPhase, year, cutoff)
}

// resolvePreseason picks the current preseason week: the lowest-numbered
// week that still has a scheduled future matchup, else the next future week,
// else the last observed one.
func (s *SeasonService) resolvePreseason(byPhase map[models.Phase][]*models.Matchup, now time.Time, year int, cutoff time.Time) models.SeasonInfo {
	pre := byPhase[models.PhasePreseason]
	if len(pre) == 0 {
		return models.NewSeasonInfo(models.PhaseRegular, s.fallbackWeek, year, cutoff)
	}

	weeks := sortedWeeks(pre)

	for _, week := range weeks {
		for _, m := range pre {
			if m.Week == week && m.Status == models.MatchupStatusScheduled && !m.Kickoff.Before(now) {
				return models.NewSeasonInfo(models.PhasePreseason, week, year, cutoff)
			}
		}
	}

	for _, week := range weeks {
		if latestKickoffForWeek(pre, week).After(now) {
			return models.NewSeasonInfo(models.PhasePreseason, week, year, cutoff)
		}
	}

	// Every preseason kickoff has passed but the cutoff hasn't: stay on the
	// last preseason week until the regular season takes over.
	return models.NewSeasonInfo(models.PhasePreseason, weeks[len(weeks)-1], year, cutoff)
}

// resolveInSeason picks the current regular-season or postseason week. The
// current week is always the first week in natural season order with
// outstanding games, never the week nearest the clock, because games get
// postponed.
func (s *SeasonService) resolveInSeason(byPhase map[models.Phase][]*models.Matchup, year int, cutoff time.Time) models.SeasonInfo {
	post := byPhase[models.PhasePostseason]
	reg := byPhase[models.PhaseRegular]

	// Postseason weeks never skip, so the earliest incomplete one is current
	// and takes priority over any regular-season bookkeeping.
	if week, ok := firstOpenWeek(post); ok {
		return models.NewSeasonInfo(models.PhasePostseason, week, year, cutoff)
	}

	if week, ok := firstOpenWeek(reg); ok {
		return models.NewSeasonInfo(models.PhaseRegular, week, year, cutoff)
	}

	if len(reg) > 0 {
		weeks := sortedWeeks(reg)
		return models.NewSeasonInfo(models.PhaseRegular, weeks[len(weeks)-1], year, cutoff)
	}

	return models.NewSeasonInfo(models.PhaseRegular, s.fallbackWeek, year, cutoff)
}

// preseasonCutoff computes the instant separating preseason from regular
// season for this matchup population.
func (s *SeasonService) preseasonCutoff(byPhase map[models.Phase][]*models.Matchup, year int) time.Time {
	pre := byPhase[models.PhasePreseason]
	reg := byPhase[models.PhaseRegular]

	switch {
	case len(pre) > 0 && len(reg) > 0:
		return earliestKickoff(reg).Add(-cutoffMargin)
	case len(pre) > 0:
		return latestKickoff(pre).Add(cutoffMargin)
	default:
		return s.defaultCutoff(year)
	}
}

// defaultCutoff is the fixed boundary used when the store holds nothing to
// infer one from. Regular seasons have started in the first half of
// September for decades.
func (s *SeasonService) defaultCutoff(year int) time.Time {
	return time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
}

func partitionByPhase(matchups []*models.Matchup) map[models.Phase][]*models.Matchup {
	byPhase := make(map[models.Phase][]*models.Matchup)
	for _, m := range matchups {
		byPhase[m.Phase] = append(byPhase[m.Phase], m)
	}
	return byPhase
}

// firstOpenWeek returns the lowest week number that still has a non-final
// matchup
func firstOpenWeek(matchups []*models.Matchup) (int, bool) {
	for _, week := range sortedWeeks(matchups) {
		for _, m := range matchups {
			if m.Week == week && !m.IsFinal() {
				return week, true
			}
		}
	}
	return 0, false
}

func sortedWeeks(matchups []*models.Matchup) []int {
	seen := make(map[int]bool)
	var weeks []int
	for _, m := range matchups {
		if !seen[m.Week] {
			seen[m.Week] = true
			weeks = append(weeks, m.Week)
		}
	}
	sort.Ints(weeks)
	return weeks
}

func earliestKickoff(matchups []*models.Matchup) time.Time {
	earliest := matchups[0].Kickoff
	for _, m := range matchups[1:] {
		if m.Kickoff.Before(earliest) {
			earliest = m.Kickoff
		}
	}
	return earliest
}

func latestKickoff(matchups []*models.Matchup) time.Time {
	latest := matchups[0].Kickoff
	for _, m := range matchups[1:] {
		if m.Kickoff.After(latest) {
			latest = m.Kickoff
		}
	}
	return latest
}

func latestKickoffForWeek(matchups []*models.Matchup, week int) time.Time {
	var latest time.Time
	for _, m := range matchups {
		if m.Week == week && m.Kickoff.After(latest) {
			latest = m.Kickoff
		}
	}
	return latest
}
