package csvfeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/pkg/logging"
)

// Defaults for absent or unparseable fields. Lines are normalized, never
// dropped here; only cutoff resolution excludes them.
const (
	DefaultZone  = "UNKNOWN"
	DefaultSKU   = "SKU_UNKNOWN"
	DefaultStore = "STORE_UNKNOWN"
	DefaultBin   = "BIN_UNKNOWN"
)

// columnAliases maps canonical field names to the header spellings seen in
// upstream feeds. Matching is case-insensitive on the trimmed header.
var columnAliases = map[string][]string{
	"order_id":   {"order_id", "order"},
	"store":      {"store_id", "store", "pod"},
	"sku":        {"sku", "product"},
	"qty":        {"order_qty", "qty", "quantity"},
	"zone":       {"zone"},
	"bin":        {"bin", "location"},
	"bin_rank":   {"bin_rank", "rank"},
	"priority":   {"priority", "pod_priority"},
	"weight":     {"weight", "weight_in_grams"},
	"fragile":    {"fragile", "is_fragile"},
	"order_date": {"cutoff", "order_date", "dt"},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
}

// Reader implements domain.OrderLineSource over a CSV feed file
type Reader struct {
	path   string
	logger *logging.Logger
}

// NewReader creates a CSV feed reader
func NewReader(path string, logger *logging.Logger) *Reader {
	return &Reader{
		path:   path,
		logger: logger.WithComponent("csv-feed"),
	}
}

// FetchOrderLines reads and normalizes the feed. Headers are resolved through
// the alias table, weights in grams are converted to kilograms, and missing
// fields fall back to sentinels so a ragged feed still yields typed lines.
// When limit > 0 at most limit data rows are read.
func (r *Reader) FetchOrderLines(ctx context.Context, limit int) ([]domain.OrderLine, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening feed %s: %w", r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feed header: %w", err)
	}
	columns := resolveColumns(header)

	var lines []domain.OrderLine
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && len(lines) >= limit {
			r.logger.Warn("Feed row limit reached, remaining rows skipped", "limit", limit)
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feed row %d: %w", len(lines)+2, err)
		}

		lines = append(lines, normalizeRecord(record, columns))
	}

	r.logger.Info("Feed loaded", "path", r.path, "lines", len(lines))
	return lines, nil
}

// resolveColumns maps canonical field names to column indexes. The first
// matching alias wins.
func resolveColumns(header []string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, exists := normalized[key]; !exists {
			normalized[key] = i
		}
	}

	columns := make(map[string]int)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := normalized[alias]; ok {
				columns[field] = idx
				break
			}
		}
	}
	return columns
}

func normalizeRecord(record []string, columns map[string]int) domain.OrderLine {
	get := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	line := domain.OrderLine{
		SKU:      stringOr(get("sku"), DefaultSKU),
		OrderID:  get("order_id"),
		Store:    stringOr(get("store"), DefaultStore),
		Zone:     stringOr(get("zone"), DefaultZone),
		Bin:      stringOr(get("bin"), DefaultBin),
		BinRank:  get("bin_rank"),
		Qty:      intOr(get("qty"), 1),
		Priority: intOr(get("priority"), domain.NoSLAPriority),
		Fragile:  truthy(get("fragile")),
	}

	// The feed carries weights in grams regardless of the header spelling
	weight := floatOr(get("weight"), 0) / 1000.0
	if weight < 0 {
		weight = 0
	}
	line.UnitWeight = weight

	if raw := get("order_date"); raw != "" {
		line.OrderDate = parseDate(raw)
	}

	return line
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Tolerate floats like "3.0" in integer columns
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return fallback
		}
		n = int(f)
	}
	return n
}

func floatOr(v string, fallback float64) float64 {
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "t":
		return true
	default:
		return false
	}
}

func parseDate(v string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
