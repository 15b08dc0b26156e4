package services

import (
	"context"

	"loserpool-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchupStore defines the matchup persistence operations the services need
type MatchupStore interface {
	Insert(ctx context.Context, matchup *models.Matchup) (bool, error)
	Update(ctx context.Context, matchup *models.Matchup) error
	FindByID(ctx context.Context, id string) (*models.Matchup, error)
	FindByTeams(ctx context.Context, season int, away, home string, phase models.Phase) ([]*models.Matchup, error)
	FindByWeek(ctx context.Context, season int, phase models.Phase, week int) ([]*models.Matchup, error)
	FindFinalized(ctx context.Context, season int) ([]*models.Matchup, error)
	GetAllBySeason(ctx context.Context, season int) ([]*models.Matchup, error)
}

// PickStore defines the pick persistence operations the services need
type PickStore interface {
	Create(ctx context.Context, pick *models.Pick) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*models.Pick, error)
	FindForSettlement(ctx context.Context, label, matchupID string) ([]*models.Pick, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus) error
	SetAllocation(ctx context.Context, id primitive.ObjectID, label string, alloc models.Allocation, status models.PickStatus) error
}
