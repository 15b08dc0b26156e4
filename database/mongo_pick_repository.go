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
)

// MongoPickRepository implements the pick store on MongoDB
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickRepository creates the repository and its indexes
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("picks")
	logger := logging.WithPrefix("mongo_pick_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on picks collection: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new pick
func (r *MongoPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	result, err := r.collection.InsertOne(ctx, pick)
	if err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		pick.ID = oid
	}
	return nil
}

// FindByID retrieves a pick by its id
func (r *MongoPickRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error) {
	var pick models.Pick
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pick)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pick %s: %w", id.Hex(), err)
	}
	return &pick, nil
}

// FindByOwner retrieves all picks belonging to one owner
func (r *MongoPickRepository) FindByOwner(ctx context.Context, ownerID string) ([]*models.Pick, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to find picks for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}

	return picks, nil
}

// FindForSettlement retrieves every pick the settlement pass must consider
// for one matchup: status active or safe, with the given season label's
// allocation pointing at the matchup. Eliminated picks never match.
func (r *MongoPickRepository) FindForSettlement(ctx context.Context, label, matchupID string) ([]*models.Pick, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.PickStatus{models.PickStatusActive, models.PickStatusSafe}},
		fmt.Sprintf("allocations.%s.matchup_id", label): matchupID,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks for matchup %s: %w", matchupID, err)
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}

	return picks, nil
}

// UpdateStatus writes a pick's new lifecycle status and update timestamp
func (r *MongoPickRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update pick %s status: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pick %s not found for status update", id.Hex())
	}

	return nil
}

// SetAllocation writes one week slot's allocation and moves the pick to the
// given status in the same update
func (r *MongoPickRepository) SetAllocation(ctx context.Context, id primitive.ObjectID, label string, alloc models.Allocation, status models.PickStatus) error {
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("allocations.%s", label): alloc,
		"status":                             status,
		"updated_at":                         time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set allocation on pick %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pick %s not found for allocation update", id.Hex())
	}

	return nil
}
