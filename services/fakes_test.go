package services

import (
	"context"
	"fmt"
	"sort"

	"loserpool-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryMatchupStore is an in-memory MatchupStore for tests
type memoryMatchupStore struct {
	matchups map[string]*models.Matchup
	nextID   int
	failAll  bool
}

func newMemoryMatchupStore() *memoryMatchupStore {
	return &memoryMatchupStore{matchups: make(map[string]*models.Matchup)}
}

// add seeds a matchup directly, assigning an id when missing
func (s *memoryMatchupStore) add(m *models.Matchup) *models.Matchup {
	if m.ID == "" {
		s.nextID++
		m.ID = fmt.Sprintf("m%d", s.nextID)
	}
	s.matchups[m.ID] = m
	return m
}

func (s *memoryMatchupStore) uniqueKey(m *models.Matchup) string {
	return fmt.Sprintf("%d|%s|%s|%s|%d", m.Season, m.Away, m.Home, m.Phase, m.Week)
}

func (s *memoryMatchupStore) Insert(ctx context.Context, matchup *models.Matchup) (bool, error) {
	if s.failAll {
		return false, fmt.Errorf("store unavailable")
	}
	key := s.uniqueKey(matchup)
	for _, existing := range s.matchups {
		if s.uniqueKey(existing) == key {
			return false, nil
		}
	}
	s.add(matchup)
	return true, nil
}

func (s *memoryMatchupStore) Update(ctx context.Context, matchup *models.Matchup) error {
	if s.failAll {
		return fmt.Errorf("store unavailable")
	}
	if _, ok := s.matchups[matchup.ID]; !ok {
		return fmt.Errorf("matchup %s not found", matchup.ID)
	}
	s.matchups[matchup.ID] = matchup
	return nil
}

func (s *memoryMatchupStore) FindByID(ctx context.Context, id string) (*models.Matchup, error) {
	if s.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	return s.matchups[id], nil
}

func (s *memoryMatchupStore) FindByTeams(ctx context.Context, season int, away, home string, phase models.Phase) ([]*models.Matchup, error) {
	if s.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []*models.Matchup
	for _, m := range s.matchups {
		if m.Season == season && m.Away == away && m.Home == home && m.Phase == phase {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (s *memoryMatchupStore) FindByWeek(ctx context.Context, season int, phase models.Phase, week int) ([]*models.Matchup, error) {
	if s.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []*models.Matchup
	for _, m := range s.matchups {
		if m.Season == season && m.Phase == phase && m.Week == week {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memoryMatchupStore) FindFinalized(ctx context.Context, season int) ([]*models.Matchup, error) {
	if s.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []*models.Matchup
	for _, m := range s.matchups {
		if m.Season == season && m.IsFinal() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryMatchupStore) GetAllBySeason(ctx context.Context, season int) ([]*models.Matchup, error) {
	if s.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []*models.Matchup
	for _, m := range s.matchups {
		if m.Season == season {
			out = append(out, m)
		}
	}
	return out, nil
}

// memoryPickStore is an in-memory PickStore for tests
type memoryPickStore struct {
	picks        map[primitive.ObjectID]*models.Pick
	statusWrites int
}

func newMemoryPickStore() *memoryPickStore {
	return &memoryPickStore{picks: make(map[primitive.ObjectID]*models.Pick)}
}

func (s *memoryPickStore) Create(ctx context.Context, pick *models.Pick) error {
	if pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}
	s.picks[pick.ID] = pick
	return nil
}

func (s *memoryPickStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error) {
	return s.picks[id], nil
}

func (s *memoryPickStore) FindByOwner(ctx context.Context, ownerID string) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range s.picks {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memoryPickStore) FindForSettlement(ctx context.Context, label, matchupID string) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range s.picks {
		if !p.IsSettleable() {
			continue
		}
		if alloc, ok := p.Allocations[label]; ok && alloc.MatchupID == matchupID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

func (s *memoryPickStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus) error {
	pick, ok := s.picks[id]
	if !ok {
		return fmt.Errorf("pick %s not found", id.Hex())
	}
	pick.Status = status
	s.statusWrites++
	return nil
}

func (s *memoryPickStore) SetAllocation(ctx context.Context, id primitive.ObjectID, label string, alloc models.Allocation, status models.PickStatus) error {
	pick, ok := s.picks[id]
	if !ok {
		return fmt.Errorf("pick %s not found", id.Hex())
	}
	if pick.Allocations == nil {
		pick.Allocations = make(map[string]models.Allocation)
	}
	pick.Allocations[label] = alloc
	pick.Status = status
	return nil
}
