package csvfeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/pkg/logging"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("csvfeed-test")
	config.Level = logging.LevelError
	return logging.New(config)
}

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchOrderLines(t *testing.T) {
	path := writeFeed(t, `order_id,store_id,sku,order_qty,zone,bin,bin_rank,priority,weight,fragile,order_date
ORD-001,STORE-01,SKU-100,3,ZONE-A,BIN-A1,1,2,500,0,2026-03-10
ORD-002,STORE-02,SKU-200,1,ZONE-B,BIN-B7,2,1,1250,1,2026-03-10 14:30:00
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "ORD-001", first.OrderID)
	assert.Equal(t, "STORE-01", first.Store)
	assert.Equal(t, "SKU-100", first.SKU)
	assert.Equal(t, 3, first.Qty)
	assert.Equal(t, "ZONE-A", first.Zone)
	assert.Equal(t, "BIN-A1", first.Bin)
	assert.Equal(t, "1", first.BinRank)
	assert.Equal(t, 2, first.Priority)
	assert.InDelta(t, 0.5, first.UnitWeight, 1e-9)
	assert.False(t, first.Fragile)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), first.OrderDate)

	second := lines[1]
	assert.InDelta(t, 1.25, second.UnitWeight, 1e-9)
	assert.True(t, second.Fragile)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), second.OrderDate)
}

func TestFetchOrderLinesWeightAlwaysGrams(t *testing.T) {
	// The grams-to-kilograms conversion does not depend on the header spelling
	path := writeFeed(t, `order_id,order_qty,zone,weight,order_date
ORD-001,1,ZONE-A,500,2026-03-10
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.InDelta(t, 0.5, lines[0].UnitWeight, 1e-9)
}

func TestFetchOrderLinesCutoffDateAlias(t *testing.T) {
	path := writeFeed(t, `order_id,order_qty,zone,cutoff
ORD-001,1,ZONE-A,2026-03-10 14:30:00
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), lines[0].OrderDate)
}

func TestFetchOrderLinesHeaderAliases(t *testing.T) {
	path := writeFeed(t, `order,pod,product,qty,zone,location,rank,pod_priority,weight_in_grams,is_fragile,dt
ORD-001,POD-9,SKU-100,2,ZONE-A,SHELF-4,1,3,1500,yes,2026-03-10
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "ORD-001", line.OrderID)
	assert.Equal(t, "POD-9", line.Store)
	assert.Equal(t, "SKU-100", line.SKU)
	assert.Equal(t, "SHELF-4", line.Bin)
	assert.Equal(t, "1", line.BinRank)
	assert.Equal(t, 3, line.Priority)
	assert.True(t, line.Fragile)
	// weight_in_grams converts to kilograms
	assert.InDelta(t, 1.5, line.UnitWeight, 1e-9)
}

func TestFetchOrderLinesDefaults(t *testing.T) {
	path := writeFeed(t, `order_id,sku,order_qty,zone,weight,priority,order_date
ORD-001,,,,,,
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, DefaultSKU, line.SKU)
	assert.Equal(t, DefaultStore, line.Store)
	assert.Equal(t, DefaultZone, line.Zone)
	assert.Equal(t, DefaultBin, line.Bin)
	assert.Equal(t, 1, line.Qty)
	assert.Zero(t, line.UnitWeight)
	assert.Equal(t, domain.NoSLAPriority, line.Priority)
	assert.True(t, line.OrderDate.IsZero())
}

func TestFetchOrderLinesTolerantParsing(t *testing.T) {
	path := writeFeed(t, `order_id,order_qty,priority,weight,fragile,order_date,zone
ORD-001,3.0,not-a-number,-2.5,TRUE,garbage-date,ZONE-A
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, 3, line.Qty)
	assert.Equal(t, domain.NoSLAPriority, line.Priority)
	assert.Zero(t, line.UnitWeight) // negative weights clamp to zero
	assert.True(t, line.Fragile)
	assert.True(t, line.OrderDate.IsZero())
}

func TestFetchOrderLinesRowLimit(t *testing.T) {
	path := writeFeed(t, `order_id,order_qty,zone
ORD-001,1,ZONE-A
ORD-002,1,ZONE-A
ORD-003,1,ZONE-A
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestFetchOrderLinesMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "absent.csv"), testLogger()).
		FetchOrderLines(context.Background(), 0)

	assert.Error(t, err)
}

func TestFetchOrderLinesRaggedRows(t *testing.T) {
	path := writeFeed(t, `order_id,order_qty,zone,bin,weight
ORD-001,2
ORD-002,1,ZONE-B,BIN-B1,500
`)

	lines, err := NewReader(path, testLogger()).FetchOrderLines(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, DefaultZone, lines[0].Zone)
	assert.Equal(t, "ZONE-B", lines[1].Zone)
}
