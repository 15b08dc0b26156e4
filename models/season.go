package models

import "time"

// SeasonInfo describes the currently resolved competitive phase and week.
// It is derived from the matchup population on every query, never persisted.
type SeasonInfo struct {
	Phase           Phase     `json:"phase"`
	Week            int       `json:"week"`
	Label           string    `json:"label"`
	Year            int       `json:"year"`
	PreseasonCutoff time.Time `json:"preseason_cutoff"`
}

// NewSeasonInfo builds a SeasonInfo with a consistent label
func NewSeasonInfo(phase Phase, week, year int, cutoff time.Time) SeasonInfo {
	return SeasonInfo{
		Phase:           phase,
		Week:            week,
		Label:           SeasonLabel(phase, week),
		Year:            year,
		PreseasonCutoff: cutoff,
	}
}

// SeasonYearForKickoff derives the season year from a kickoff instant.
// Seasons span a calendar-year boundary: games from August onward belong to
// that calendar year's season, January games belong to the previous year's.
func SeasonYearForKickoff(kickoff time.Time) int {
	if kickoff.Month() >= time.August {
		return kickoff.Year()
	}
	return kickoff.Year() - 1
}
