//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/pkg/logging"
)

func setupTestRepository(t *testing.T) (*RunRepository, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	logConfig := logging.DefaultConfig("mongodb-integration-test")
	logConfig.Level = logging.LevelError
	repo := NewRunRepository(client.Database("picklists_test"), logging.New(logConfig), nil)
	require.NoError(t, repo.EnsureIndexes(ctx))

	cleanup := func() {
		client.Disconnect(ctx)
		container.Terminate(ctx)
	}
	return repo, cleanup
}

func completedTestRun(t *testing.T, runID string) *domain.PicklistRun {
	t.Helper()
	run := domain.NewPicklistRun(runID, 10)

	p := domain.NewPicklist("ZONE-A", domain.PicklistTypeNormal, 1, domain.CapacityPolicy{UnitCap: 100, WeightCap: 200.0})
	require.NoError(t, p.Add(domain.OrderLine{
		SKU:        "SKU-100",
		OrderID:    "ORD-001",
		Store:      "STORE-01",
		Zone:       "ZONE-A",
		Bin:        "BIN-A1",
		Qty:        2,
		UnitWeight: 1.5,
		Priority:   1,
		Cutoff:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}, 2))
	require.NoError(t, p.Seal())
	require.NoError(t, run.AttachPicklist(p))

	run.Complete([]string{"ZONE-A"}, nil, domain.RunMetrics{TotalPicklists: 1, QualityScore: 0.75})
	return run
}

func TestRunRepositorySaveAndFind(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run := completedTestRun(t, "PLR-20260310-it0001")
	require.NoError(t, repo.Save(ctx, run))

	found, err := repo.FindByID(ctx, "PLR-20260310-it0001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.RunStatusCompleted, found.Status)
	require.Len(t, found.Picklists, 1)
	assert.Equal(t, 2, found.Picklists[0].TotalUnits)
	assert.Equal(t, []string{"ORD-001"}, found.Picklists[0].OrderIDs)
	assert.InDelta(t, 0.75, found.Metrics.QualityScore, 1e-9)
}

func TestRunRepositorySaveIsIdempotent(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run := completedTestRun(t, "PLR-20260310-it0002")
	require.NoError(t, repo.Save(ctx, run))

	run.Metrics.QualityScore = 0.9
	require.NoError(t, repo.Save(ctx, run))

	count, err := repo.Count(ctx, domain.RunStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByID(ctx, "PLR-20260310-it0002")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, found.Metrics.QualityScore, 1e-9)
}

func TestRunRepositoryFindMissing(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	found, err := repo.FindByID(ctx, "PLR-absent")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRunRepositoryListRecent(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		run := completedTestRun(t, fmt.Sprintf("PLR-20260310-it%04d", i))
		run.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, run))
	}

	runs, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "PLR-20260310-it0004", runs[0].RunID)
	assert.Equal(t, "PLR-20260310-it0003", runs[1].RunID)
}

func TestRunRepositoryDelete(t *testing.T) {
	repo, cleanup := setupTestRepository(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run := completedTestRun(t, "PLR-20260310-it0009")
	require.NoError(t, repo.Save(ctx, run))

	require.NoError(t, repo.Delete(ctx, "PLR-20260310-it0009"))

	found, err := repo.FindByID(ctx, "PLR-20260310-it0009")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.Error(t, repo.Delete(ctx, "PLR-20260310-it0009"))
}
