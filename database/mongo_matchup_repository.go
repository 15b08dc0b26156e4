package database

import (
	"context"
	"fmt"
	"time"

	"loserpool-go/logging"
	"loserpool-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMatchupRepository implements the matchup store on MongoDB
type MongoMatchupRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoMatchupRepository creates the repository and its indexes
func NewMongoMatchupRepository(db *MongoDB) *MongoMatchupRepository {
	collection := db.GetCollection("matchups")
	logger := logging.WithPrefix("mongo_matchup_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The unique index backs the insert-if-absent creation path: the same
	// two teams may meet again in a different season label, so the key is
	// the full (season, away, home, phase, week) tuple.
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "away", Value: 1},
				{Key: "home", Value: 1},
				{Key: "phase", Value: 1},
				{Key: "week", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on matchups collection: %v", err)
	}

	return &MongoMatchupRepository{
		collection: collection,
		logger:     logger,
	}
}

// Insert creates a matchup if no row with its unique key exists yet.
// Returns true when a new row was inserted. The upsert closes the race
// between an in-memory duplicate check and the actual write.
func (r *MongoMatchupRepository) Insert(ctx context.Context, matchup *models.Matchup) (bool, error) {
	if matchup.ID == "" {
		matchup.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	matchup.CreatedAt = now
	matchup.UpdatedAt = now

	filter := bson.M{
		"season": matchup.Season,
		"away":   matchup.Away,
		"home":   matchup.Home,
		"phase":  matchup.Phase,
		"week":   matchup.Week,
	}
	update := bson.M{"$setOnInsert": matchup}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to insert matchup %s: %w", matchup.Description(), err)
	}

	return result.UpsertedCount > 0, nil
}

// Update overwrites the volatile fields of an existing matchup
func (r *MongoMatchupRepository) Update(ctx context.Context, matchup *models.Matchup) error {
	matchup.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"kickoff":    matchup.Kickoff,
		"status":     matchup.Status,
		"away_score": matchup.AwayScore,
		"home_score": matchup.HomeScore,
		"updated_at": matchup.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": matchup.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update matchup %s: %w", matchup.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("matchup %s not found for update", matchup.ID)
	}

	return nil
}

// FindByID retrieves a matchup by its opaque id
func (r *MongoMatchupRepository) FindByID(ctx context.Context, id string) (*models.Matchup, error) {
	var matchup models.Matchup
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&matchup)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find matchup %s: %w", id, err)
	}
	return &matchup, nil
}

// FindByTeams retrieves the matchups for an ordered team pair within one
// phase of a season. Home-and-home rematches swap the pair order, so this
// returns at most one row in practice; callers still verify the week.
func (r *MongoMatchupRepository) FindByTeams(ctx context.Context, season int, away, home string, phase models.Phase) ([]*models.Matchup, error) {
	filter := bson.M{
		"season": season,
		"away":   away,
		"home":   home,
		"phase":  phase,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "week", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find matchups for %s @ %s: %w", away, home, err)
	}
	defer cursor.Close(ctx)

	var matchups []*models.Matchup
	if err := cursor.All(ctx, &matchups); err != nil {
		return nil, fmt.Errorf("failed to decode matchups: %w", err)
	}

	return matchups, nil
}

// GetAllBySeason retrieves every matchup of a season, the resolver's input
func (r *MongoMatchupRepository) GetAllBySeason(ctx context.Context, season int) ([]*models.Matchup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"season": season})
	if err != nil {
		return nil, fmt.Errorf("failed to find matchups for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	var matchups []*models.Matchup
	if err := cursor.All(ctx, &matchups); err != nil {
		return nil, fmt.Errorf("failed to decode matchups: %w", err)
	}

	return matchups, nil
}

// FindByWeek retrieves the matchups of one season label, kickoff order
func (r *MongoMatchupRepository) FindByWeek(ctx context.Context, season int, phase models.Phase, week int) ([]*models.Matchup, error) {
	filter := bson.M{
		"season": season,
		"phase":  phase,
		"week":   week,
	}

	sortOptions := options.Find().SetSort(bson.D{
		{Key: "kickoff", Value: 1},
		{Key: "home", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find matchups for %s week %d: %w", phase, week, err)
	}
	defer cursor.Close(ctx)

	var matchups []*models.Matchup
	if err := cursor.All(ctx, &matchups); err != nil {
		return nil, fmt.Errorf("failed to decode matchups: %w", err)
	}

	return matchups, nil
}

// FindFinalized retrieves every finalized matchup of a season, the sweep input
func (r *MongoMatchupRepository) FindFinalized(ctx context.Context, season int) ([]*models.Matchup, error) {
	filter := bson.M{
		"season": season,
		"status": models.MatchupStatusFinal,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find finalized matchups for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	var matchups []*models.Matchup
	if err := cursor.All(ctx, &matchups); err != nil {
		return nil, fmt.Errorf("failed to decode matchups: %w", err)
	}

	return matchups, nil
}
