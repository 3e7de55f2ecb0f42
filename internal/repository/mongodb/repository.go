package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

const snapshotsCollection = "dashboard_snapshots"

// Repository stores daily dashboard snapshots.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
	LatestSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error)
}

// MongoDBRepository implements Repository for MongoDB.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoDBRepository connects, pings and ensures the taken_at index.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(cfg.DBName).Collection(snapshotsCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taken_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return &MongoDBRepository{client: client, collection: collection, logger: logger}, nil
}

// SaveSnapshot inserts one snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	if _, err := r.collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", snapshot.ID, err)
	}

	r.logger.Debug("snapshot stored", zap.String("id", snapshot.ID))
	return nil
}

// LatestSnapshots returns the most recent snapshots, newest first.
func (r *MongoDBRepository) LatestSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := make([]models.DashboardSnapshot, 0)
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
