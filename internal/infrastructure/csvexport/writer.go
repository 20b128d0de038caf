package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/pkg/logging"
)

var picklistHeader = []string{
	"sku", "order_id", "store", "bin", "bin_rank",
	"qty", "unit_weight", "cutoff", "priority", "fragile",
}

var summaryHeader = []string{
	"zone", "picklist_no", "type", "total_units", "total_weight",
	"distinct_orders", "distinct_bins", "earliest_cutoff", "created_at",
}

// Writer implements domain.RunExporter over per-run CSV files: one file per
// picklist plus a summary table.
type Writer struct {
	outputDir   string
	summaryName string
	logger      *logging.Logger
}

// NewWriter creates a CSV run exporter
func NewWriter(outputDir, summaryName string, logger *logging.Logger) *Writer {
	if summaryName == "" {
		summaryName = "Summary.csv"
	}
	return &Writer{
		outputDir:   outputDir,
		summaryName: summaryName,
		logger:      logger.WithComponent("csv-export"),
	}
}

// ExportRun writes every picklist of the run plus its summary table into
// a per-run directory named after the run ID.
func (w *Writer) ExportRun(ctx context.Context, run *domain.PicklistRun) error {
	dir := filepath.Join(w.outputDir, run.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	date := run.CreatedAt.Format("20060102")
	for _, p := range run.Picklists {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writePicklist(dir, date, p); err != nil {
			return err
		}
	}

	if err := w.writeSummary(dir, run.Summaries); err != nil {
		return err
	}

	w.logger.WithContext(ctx).WithRunID(run.RunID).Info("Run exported",
		"directory", dir,
		"picklists", len(run.Picklists),
	)
	return nil
}

// PicklistFileName builds the export file name for one picklist. The fragile
// suffix keeps fragile and normal picklists with the same sequence number
// from colliding.
func PicklistFileName(date string, p *domain.Picklist) string {
	name := fmt.Sprintf("%s_%s_PL%d", date, p.Zone, p.SequenceNumber)
	if p.Type == domain.PicklistTypeFragile {
		name += "_FRAGILE"
	}
	return name + ".csv"
}

func (w *Writer) writePicklist(dir, date string, p *domain.Picklist) error {
	path := filepath.Join(dir, PicklistFileName(date, p))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating picklist file %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(picklistHeader); err != nil {
		return fmt.Errorf("writing picklist header: %w", err)
	}

	for _, u := range p.Units {
		record := []string{
			u.SKU,
			u.OrderID,
			u.Store,
			u.Bin,
			u.BinRank,
			strconv.Itoa(u.Units),
			formatWeight(u.UnitWeight),
			u.Cutoff.Format(time.RFC3339),
			strconv.Itoa(u.Priority),
			strconv.FormatBool(u.Fragile),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing picklist row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing picklist file %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeSummary(dir string, rows []domain.SummaryRow) error {
	path := filepath.Join(dir, w.summaryName)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary file %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Zone,
			strconv.Itoa(row.SequenceNumber),
			string(row.Type),
			strconv.Itoa(row.TotalUnits),
			formatWeight(row.TotalWeight),
			strconv.Itoa(row.DistinctOrders),
			strconv.Itoa(row.DistinctBins),
			row.EarliestCutoff.Format(time.RFC3339),
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing summary file %s: %w", path, err)
	}
	return nil
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 3, 64)
}
