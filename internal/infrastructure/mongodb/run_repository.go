package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/pkg/logging"
	"github.com/wms-platform/picklist-service/pkg/metrics"
)

const runCollection = "picklist_runs"

// RunRepository is the MongoDB implementation of domain.PicklistRunRepository
type RunRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewRunRepository creates a MongoDB run repository
func NewRunRepository(db *mongo.Database, logger *logging.Logger, m *metrics.Metrics) *RunRepository {
	return &RunRepository{
		collection: db.Collection(runCollection),
		logger:     logger.WithComponent("run-repository"),
		metrics:    m,
	}
}

// EnsureIndexes creates the collection indexes
func (r *RunRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "runId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("creating indexes on %s: %w", runCollection, err)
	}
	return nil
}

// Save persists a run, inserting or replacing by run ID
func (r *RunRepository) Save(ctx context.Context, run *domain.PicklistRun) error {
	start := time.Now()

	filter := bson.M{"runId": run.RunID}
	opts := options.Replace().SetUpsert(true)

	result, err := r.collection.ReplaceOne(ctx, filter, run, opts)
	r.record("save", err == nil, start)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.RunID, err)
	}

	if result.UpsertedID != nil {
		r.logger.WithContext(ctx).WithRunID(run.RunID).Debug("Run inserted")
	}
	return nil
}

// FindByID retrieves a run by its run ID. Returns nil, nil when not found.
func (r *RunRepository) FindByID(ctx context.Context, runID string) (*domain.PicklistRun, error) {
	start := time.Now()

	var run domain.PicklistRun
	err := r.collection.FindOne(ctx, bson.M{"runId": runID}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.record("find", true, start)
		return nil, nil
	}
	r.record("find", err == nil, start)
	if err != nil {
		return nil, fmt.Errorf("finding run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRecent retrieves the most recent runs, newest first
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PicklistRun, error) {
	start := time.Now()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.record("list", false, start)
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer cursor.Close(ctx)

	runs := make([]*domain.PicklistRun, 0, limit)
	for cursor.Next(ctx) {
		var run domain.PicklistRun
		if err := cursor.Decode(&run); err != nil {
			r.record("list", false, start)
			return nil, fmt.Errorf("decoding run: %w", err)
		}
		runs = append(runs, &run)
	}
	r.record("list", cursor.Err() == nil, start)
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run by its run ID
func (r *RunRepository) Delete(ctx context.Context, runID string) error {
	start := time.Now()

	result, err := r.collection.DeleteOne(ctx, bson.M{"runId": runID})
	r.record("delete", err == nil, start)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", runID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Count returns the number of runs with the given status
func (r *RunRepository) Count(ctx context.Context, status domain.RunStatus) (int64, error) {
	start := time.Now()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	r.record("count", err == nil, start)
	if err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return count, nil
}

func (r *RunRepository) record(operation string, success bool, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation(runCollection, operation, success, time.Since(start))
	}
}
