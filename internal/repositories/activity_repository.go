package repositories

import (
	"context"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	ListByActors(ctx context.Context, actorIDs []string, limit int64) ([]models.Activity, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// EnsureIndexes creates the (user_id, created_at) index used by ListByActors.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// ListByActors returns the newest activities performed by any of actorIDs.
func (r *MongoActivityRepository) ListByActors(ctx context.Context, actorIDs []string, limit int64) ([]models.Activity, error) {
	activities := []models.Activity{}
	if len(actorIDs) == 0 {
		return activities, nil
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": actorIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// NopActivityRepository drops writes and lists nothing. Used when MongoDB is
// not configured.
type NopActivityRepository struct{}

func (NopActivityRepository) CreateActivity(context.Context, *models.Activity) error { return nil }

func (NopActivityRepository) ListByActors(context.Context, []string, int64) ([]models.Activity, error) {
	return []models.Activity{}, nil
}
