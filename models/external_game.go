package models

import "time"

// ExternalGame is one game descriptor as reported by the schedule feed.
// Phase and week use the feed's own numbering (numeric season type plus a
// week number relative to that type) and must be translated through
// PhaseFromFeedType before touching the matchup store.
type ExternalGame struct {
	Away       string        `json:"away"`
	Home       string        `json:"home"`
	SeasonType int           `json:"season_type"`
	Week       int           `json:"week"`
	Kickoff    time.Time     `json:"kickoff"`
	Status     MatchupStatus `json:"status"`
	AwayScore  *int          `json:"away_score,omitempty"`
	HomeScore  *int          `json:"home_score,omitempty"`
}

// Label translates the feed numbering into the local season-label vocabulary
func (g *ExternalGame) Label() (string, bool) {
	phase, ok := PhaseFromFeedType(g.SeasonType)
	if !ok {
		return "", false
	}
	return SeasonLabel(phase, g.Week), true
}
