package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Phase identifies the competitive segment of a season
type Phase string

const (
	PhasePreseason  Phase = "PRE"
	PhaseRegular    Phase = "REG"
	PhasePostseason Phase = "POST"
)

const (
	preseasonWeeks     = 4
	regularSeasonWeeks = 18
	postseasonWeeks    = 4
)

// ParsePhase converts a phase string to a Phase
func ParsePhase(s string) (Phase, error) {
	switch Phase(strings.ToUpper(s)) {
	case PhasePreseason:
		return PhasePreseason, nil
	case PhaseRegular:
		return PhaseRegular, nil
	case PhasePostseason:
		return PhasePostseason, nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

// PhaseFromFeedType translates the schedule feed's numeric season type
func PhaseFromFeedType(seasonType int) (Phase, bool) {
	switch seasonType {
	case 1:
		return PhasePreseason, true
	case 2:
		return PhaseRegular, true
	case 3:
		return PhasePostseason, true
	default:
		return "", false
	}
}

// SeasonLabel joins a phase and its phase-relative week into the label
// vocabulary the rest of the system keys on, e.g. "REG5" or "POST1"
func SeasonLabel(phase Phase, week int) string {
	return fmt.Sprintf("%s%d", phase, week)
}

// ParseSeasonLabel splits a label back into its phase and week.
// POST is checked before PRE so the longer prefix wins.
func ParseSeasonLabel(label string) (Phase, int, error) {
	for _, phase := range []Phase{PhasePostseason, PhasePreseason, PhaseRegular} {
		rest, ok := strings.CutPrefix(label, string(phase))
		if !ok {
			continue
		}
		week, err := strconv.Atoi(rest)
		if err != nil || week < 1 {
			return "", 0, fmt.Errorf("bad week in season label %q", label)
		}
		return phase, week, nil
	}
	return "", 0, fmt.Errorf("unknown season label %q", label)
}

// AllocationSlot maps a phase-relative week onto the single season-wide
// ordering used to sequence allocations. Preseason weeks land below one,
// the regular season occupies 1..18, the postseason continues past it.
func AllocationSlot(phase Phase, week int) int {
	switch phase {
	case PhasePreseason:
		return week - preseasonWeeks
	case PhasePostseason:
		return regularSeasonWeeks + week
	default:
		return week
	}
}

// MatchupStatus tracks a matchup through its life on the schedule
type MatchupStatus string

const (
	MatchupStatusScheduled MatchupStatus = "scheduled"
	MatchupStatusLive      MatchupStatus = "live"
	MatchupStatusFinal     MatchupStatus = "final"
)

// WinnerSide identifies the outcome of a finalized matchup
type WinnerSide string

const (
	WinnerAway WinnerSide = "away"
	WinnerHome WinnerSide = "home"
	WinnerTie  WinnerSide = "tie"
)

// Matchup is one scheduled game, the unit everything else keys on. The
// (season, away, home, phase, week) tuple is unique; the ordered team pair
// matters because home-and-home rematches swap it.
type Matchup struct {
	ID        string        `bson:"_id,omitempty" json:"id"`
	Season    int           `bson:"season" json:"season"`
	Phase     Phase         `bson:"phase" json:"phase"`
	Week      int           `bson:"week" json:"week"`
	Away      string        `bson:"away" json:"away"`
	Home      string        `bson:"home" json:"home"`
	Kickoff   time.Time     `bson:"kickoff" json:"kickoff"`
	Status    MatchupStatus `bson:"status" json:"status"`
	AwayScore *int          `bson:"away_score,omitempty" json:"away_score,omitempty"`
	HomeScore *int          `bson:"home_score,omitempty" json:"home_score,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// Label returns the matchup's season label
func (m *Matchup) Label() string {
	return SeasonLabel(m.Phase, m.Week)
}

// IsFinal returns true once the matchup has gone final
func (m *Matchup) IsFinal() bool {
	return m.Status == MatchupStatusFinal
}

// HasStarted returns true once kickoff has passed
func (m *Matchup) HasStarted(now time.Time) bool {
	return !now.Before(m.Kickoff)
}

// HasResult returns true when the matchup is final with both scores reported
func (m *Matchup) HasResult() bool {
	return m.IsFinal() && m.AwayScore != nil && m.HomeScore != nil
}

// Winner reports which side won a finalized matchup. The second return is
// false while the matchup has no usable result.
func (m *Matchup) Winner() (WinnerSide, bool) {
	if !m.HasResult() {
		return "", false
	}
	switch {
	case *m.AwayScore > *m.HomeScore:
		return WinnerAway, true
	case *m.HomeScore > *m.AwayScore:
		return WinnerHome, true
	default:
		return WinnerTie, true
	}
}

// WinnerTeam resolves the winning side to a team name. A tie returns the
// empty string with ok still true.
func (m *Matchup) WinnerTeam() (string, bool) {
	side, ok := m.Winner()
	if !ok {
		return "", false
	}
	switch side {
	case WinnerAway:
		return m.Away, true
	case WinnerHome:
		return m.Home, true
	default:
		return "", true
	}
}

// Description renders the matchup for logs and errors
func (m *Matchup) Description() string {
	return fmt.Sprintf("%s @ %s (%s)", m.Away, m.Home, m.Label())
}
