package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wms-platform/picklist-service/internal/application"
	"github.com/wms-platform/picklist-service/internal/config"
	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/internal/infrastructure/csvexport"
	"github.com/wms-platform/picklist-service/internal/infrastructure/csvfeed"
	"github.com/wms-platform/picklist-service/pkg/logging"
)

var (
	inputPath        string
	outputDir        string
	summaryName      string
	configPath       string
	maxRows          int
	unitCap          int
	weightCap        float64
	fragileWeightCap float64
	serial           bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "picklistgen",
		Short: "Generate capacity-bounded warehouse picklists from an order-line feed",
		Long: `picklistgen reads a CSV order-line feed, derives SLA cutoffs, packs the
lines into capacity-bounded picklists per zone and fragility class, and
writes one CSV per picklist plus a summary table with quality metrics.`,
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the order-line CSV feed (required)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "picklists", "directory for generated picklist files")
	rootCmd.Flags().StringVar(&summaryName, "summary", "Summary.csv", "file name of the summary table")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config overlay")
	rootCmd.Flags().IntVar(&maxRows, "max-rows", 0, "maximum feed rows to read (0 = unlimited)")
	rootCmd.Flags().IntVar(&unitCap, "unit-cap", 0, "override unit cap per picklist")
	rootCmd.Flags().Float64Var(&weightCap, "weight-cap", 0, "override weight cap in kg for normal picklists")
	rootCmd.Flags().Float64Var(&fragileWeightCap, "fragile-weight-cap", 0, "override weight cap in kg for fragile picklists")
	rootCmd.Flags().BoolVar(&serial, "serial", false, "pack zone streams sequentially instead of concurrently")
	_ = rootCmd.MarkFlagRequired("input")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	logConfig := logging.DefaultConfig("picklistgen")
	logger := logging.New(logConfig)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	plannerConfig, err := cfg.ToPlannerConfig()
	if err != nil {
		return err
	}
	if maxRows > 0 {
		plannerConfig.MaxRows = maxRows
	}
	if unitCap > 0 {
		plannerConfig.UnitCap = unitCap
	}
	if weightCap > 0 {
		plannerConfig.NormalWeightCap = weightCap
	}
	if fragileWeightCap > 0 {
		plannerConfig.FragileWeightCap = fragileWeightCap
	}
	if serial {
		plannerConfig.Parallel = false
	}

	reader := csvfeed.NewReader(inputPath, logger)
	lines, err := reader.FetchOrderLines(ctx, plannerConfig.MaxRows)
	if err != nil {
		return err
	}

	result, err := application.RunPipeline(lines, plannerConfig)
	if err != nil {
		return err
	}

	runID := fmt.Sprintf("PLR-%s-local", time.Now().Format("20060102-150405"))
	pr := domain.NewPicklistRun(runID, len(lines))
	for _, p := range result.Picklists {
		if err := pr.AttachPicklist(p); err != nil {
			return err
		}
	}
	for _, e := range result.Exclusions {
		pr.RecordExclusion(e)
	}

	builder := application.NewReportBuilder(plannerConfig.ScoreWeights, plannerConfig.ConsolidationReference)
	summaries := builder.Summaries(result.Picklists)
	runMetrics := builder.Build(result.Picklists,
		pr.ExclusionCount(domain.ExclusionMalformed),
		pr.ExclusionCount(domain.ExclusionUnpackable))
	pr.Complete(result.Zones, summaries, runMetrics)

	writer := csvexport.NewWriter(outputDir, summaryName, logger)
	if err := writer.ExportRun(ctx, pr); err != nil {
		return err
	}

	printReport(cmd, pr, time.Since(start))
	return nil
}

func printReport(cmd *cobra.Command, pr *domain.PicklistRun, elapsed time.Duration) {
	m := pr.Metrics

	cmd.Printf("Run %s completed in %s\n", pr.RunID, elapsed.Round(time.Millisecond))
	cmd.Printf("  source lines:       %d\n", pr.SourceLines)
	cmd.Printf("  picklists:          %d (baseline %d, reduction %.1f%%)\n",
		m.TotalPicklists, m.BaselinePicklists, m.BaselineReduction*100)
	cmd.Printf("  avg units/list:     %.1f\n", m.AvgUnitsPerPicklist)
	cmd.Printf("  avg weight/list:    %.1f kg\n", m.AvgWeightPerPicklist)
	cmd.Printf("  unit utilization:   %.1f%%\n", m.AvgUnitUtilization*100)
	cmd.Printf("  weight utilization: %.1f%%\n", m.AvgWeightUtilization*100)
	cmd.Printf("  violations:         %d (%.1f%%)\n", m.ViolationCount, m.ViolationRate*100)
	cmd.Printf("  excluded lines:     %d malformed, %d unpackable\n", m.MalformedLines, m.UnpackableLines)
	cmd.Printf("  quality score:      %.4f\n", m.QualityScore)

	zones := make([]string, 0, len(m.ZoneCounts))
	for zone := range m.ZoneCounts {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	for _, zone := range zones {
		cmd.Printf("    zone %-12s %d picklists\n", zone, m.ZoneCounts[zone])
	}
}
