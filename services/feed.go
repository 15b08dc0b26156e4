package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loserpool-go/logging"
	"loserpool-go/models"
)

// ScheduleFeedService fetches the external scoreboard feed and converts it
// into the batch the reconciler consumes
type ScheduleFeedService struct {
	client  *http.Client
	baseURL string
	logger  *logging.Logger
}

// NewScheduleFeedService creates a feed client
func NewScheduleFeedService(baseURL string, timeout time.Duration) *ScheduleFeedService {
	return &ScheduleFeedService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logging.WithPrefix("feed"),
	}
}

// Feed response structures

type feedResponse struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Week         feedWeek          `json:"week"`
	Season       feedSeason        `json:"season"`
	Status       feedStatus        `json:"status"`
	Competitions []feedCompetition `json:"competitions"`
}

type feedSeason struct {
	Year int `json:"year"`
	Type int `json:"type"`
}

type feedWeek struct {
	Number int `json:"number"`
}

type feedStatus struct {
	Type feedStatusType `json:"type"`
}

type feedStatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type feedCompetition struct {
	Competitors []feedCompetitor `json:"competitors"`
}

type feedCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     feedTeam `json:"team"`
}

type feedTeam struct {
	Abbreviation string `json:"abbreviation"`
}

// FetchSeason fetches every game of a season (preseason through postseason)
// as a single batch. Seasons span a calendar-year boundary, so the window
// runs from July of the season year into February of the next.
func (s *ScheduleFeedService) FetchSeason(ctx context.Context, year int) ([]models.ExternalGame, error) {
	startDate := fmt.Sprintf("%d0701", year)
	endDate := fmt.Sprintf("%d0228", year+1)
	url := fmt.Sprintf("%s?dates=%s-%s&limit=1000", s.baseURL, startDate, endDate)

	s.logger.Infof("Fetching schedule feed from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode schedule feed: %w", err)
	}

	games := s.convertEvents(feed.Events)
	s.logger.Infof("Feed returned %d events, converted %d games", len(feed.Events), len(games))
	return games, nil
}

// convertEvents converts feed events into external game descriptors. Events
// missing a full competitor pair are dropped.
func (s *ScheduleFeedService) convertEvents(events []feedEvent) []models.ExternalGame {
	games := make([]models.ExternalGame, 0, len(events))

	for _, event := range events {
		if len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
			continue
		}
		if _, ok := models.PhaseFromFeedType(event.Season.Type); !ok {
			s.logger.Debugf("Skipping event %s with season type %d", event.ID, event.Season.Type)
			continue
		}

		games = append(games, s.convertEvent(event))
	}

	return games
}

func (s *ScheduleFeedService) convertEvent(event feedEvent) models.ExternalGame {
	competition := event.Competitions[0]

	kickoff, err := time.Parse("2006-01-02T15:04Z", event.Date)
	if err != nil {
		kickoff, err = time.Parse(time.RFC3339, event.Date)
		if err != nil {
			s.logger.Warnf("Failed to parse date %q for event %s: %v", event.Date, event.ID, err)
		}
	}

	game := models.ExternalGame{
		SeasonType: event.Season.Type,
		Week:       event.Week.Number,
		Kickoff:    kickoff,
		Status:     convertFeedState(event.Status),
	}

	for _, competitor := range competition.Competitors {
		if competitor.HomeAway == "home" {
			game.Home = competitor.Team.Abbreviation
			game.HomeScore = parseFeedScore(competitor.Score, game.Status)
		} else {
			game.Away = competitor.Team.Abbreviation
			game.AwayScore = parseFeedScore(competitor.Score, game.Status)
		}
	}

	return game
}

// parseFeedScore turns the feed's string score into a nullable score. The
// feed reports "0" for games that haven't started, which is not a score.
func parseFeedScore(raw string, status models.MatchupStatus) *int {
	if status == models.MatchupStatusScheduled {
		return nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &score
}

// convertFeedState maps the feed's status vocabulary onto matchup statuses
func convertFeedState(status feedStatus) models.MatchupStatus {
	switch strings.ToLower(status.Type.State) {
	case "pre":
		return models.MatchupStatusScheduled
	case "in":
		return models.MatchupStatusLive
	case "post":
		return models.MatchupStatusFinal
	default:
		return models.MatchupStatusScheduled
	}
}

// HealthCheck verifies the feed endpoint is reachable
func (s *ScheduleFeedService) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
