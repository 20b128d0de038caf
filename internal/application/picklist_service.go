package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/picklist-service/internal/domain"
	pkgerrors "github.com/wms-platform/picklist-service/pkg/errors"
	"github.com/wms-platform/picklist-service/pkg/logging"
	"github.com/wms-platform/picklist-service/pkg/metrics"
)

// PicklistService orchestrates picklist generation runs: fetch, plan, persist,
// export, publish. Exporter and publisher are optional collaborators.
type PicklistService struct {
	repo      domain.PicklistRunRepository
	source    domain.OrderLineSource
	publisher domain.EventPublisher
	exporter  domain.RunExporter
	config    PlannerConfig
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewPicklistService creates the application service
func NewPicklistService(
	repo domain.PicklistRunRepository,
	source domain.OrderLineSource,
	publisher domain.EventPublisher,
	exporter domain.RunExporter,
	config PlannerConfig,
	logger *logging.Logger,
	m *metrics.Metrics,
) *PicklistService {
	return &PicklistService{
		repo:      repo,
		source:    source,
		publisher: publisher,
		exporter:  exporter,
		config:    config,
		logger:    logger.WithComponent("picklist-service"),
		metrics:   m,
	}
}

// GeneratePicklists executes one full generation run
func (s *PicklistService) GeneratePicklists(ctx context.Context, cmd GeneratePicklistsCommand) (*RunDTO, error) {
	start := time.Now()
	log := s.logger.WithContext(ctx).WithOperation("GeneratePicklists")

	cfg := s.config
	if cmd.MaxRows > 0 {
		cfg.MaxRows = cmd.MaxRows
	}
	if cmd.ScoreWeights != nil {
		if err := cmd.ScoreWeights.Validate(); err != nil {
			return nil, pkgerrors.ErrValidation(err.Error())
		}
		cfg.ScoreWeights = *cmd.ScoreWeights
	}

	lines, err := s.source.FetchOrderLines(ctx, cfg.MaxRows)
	if err != nil {
		log.WithError(err).Error("Failed to fetch order lines")
		return nil, pkgerrors.ErrInternal("failed to fetch order lines").Wrap(err)
	}

	runID := newRunID()
	log = log.WithRunID(runID)
	log.Info("Starting picklist generation run", "sourceLines", len(lines))

	run := domain.NewPicklistRun(runID, len(lines))

	result, err := RunPipeline(lines, cfg)
	if err != nil {
		run.Fail(err.Error())
		s.finalizeRun(ctx, run, log)
		if s.metrics != nil {
			s.metrics.RecordRun(string(domain.RunStatusFailed), time.Since(start))
		}
		log.WithError(err).Error("Picklist generation run failed")
		return nil, pkgerrors.ErrCapacityViolation(err.Error()).Wrap(err)
	}

	for _, p := range result.Picklists {
		if err := run.AttachPicklist(p); err != nil {
			return nil, pkgerrors.ErrInternal("failed to attach picklist").Wrap(err)
		}
		if s.metrics != nil {
			s.metrics.RecordPicklistSealed(p.Zone, string(p.Type), p.TotalUnits)
		}
	}
	for _, e := range result.Exclusions {
		run.RecordExclusion(e)
		if s.metrics != nil {
			s.metrics.RecordExcludedLine(string(e.Kind))
		}
	}

	builder := NewReportBuilder(cfg.ScoreWeights, cfg.ConsolidationReference)
	summaries := builder.Summaries(result.Picklists)
	runMetrics := builder.Build(result.Picklists,
		run.ExclusionCount(domain.ExclusionMalformed),
		run.ExclusionCount(domain.ExclusionUnpackable))

	run.Complete(result.Zones, summaries, runMetrics)

	if err := s.finalizeRun(ctx, run, log); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRun(string(domain.RunStatusCompleted), time.Since(start))
		s.metrics.SetQualityScore(runMetrics.QualityScore)
	}

	log.Info("Picklist generation run completed",
		"totalPicklists", runMetrics.TotalPicklists,
		"qualityScore", runMetrics.QualityScore,
		"malformedLines", runMetrics.MalformedLines,
		"unpackableLines", runMetrics.UnpackableLines,
		"durationMs", time.Since(start).Milliseconds(),
	)

	return ToRunDTO(run), nil
}

// finalizeRun persists the run, exports its files and publishes its events.
// Export and publish failures are logged but do not fail the run.
func (s *PicklistService) finalizeRun(ctx context.Context, run *domain.PicklistRun, log *logging.Logger) error {
	if err := s.repo.Save(ctx, run); err != nil {
		log.WithError(err).Error("Failed to save run")
		return pkgerrors.ErrInternal("failed to save run").Wrap(err)
	}

	if s.exporter != nil && run.Status == domain.RunStatusCompleted {
		if err := s.exporter.ExportRun(ctx, run); err != nil {
			log.WithError(err).Error("Failed to export run files")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAll(ctx, run.GetDomainEvents()); err != nil {
			log.WithError(err).Error("Failed to publish run events")
		}
	}
	run.ClearDomainEvents()

	return nil
}

// GetRun retrieves a run by ID
func (s *PicklistService) GetRun(ctx context.Context, query GetRunQuery) (*RunDTO, error) {
	run, err := s.repo.FindByID(ctx, query.RunID)
	if err != nil {
		return nil, pkgerrors.ErrInternal("failed to load run").Wrap(err)
	}
	if run == nil {
		return nil, pkgerrors.ErrNotFoundWithID("picklist run", query.RunID)
	}
	return ToRunDTO(run), nil
}

// GetRunPicklists retrieves the picklists of a run by run ID
func (s *PicklistService) GetRunPicklists(ctx context.Context, query GetRunQuery) ([]PicklistDTO, error) {
	run, err := s.repo.FindByID(ctx, query.RunID)
	if err != nil {
		return nil, pkgerrors.ErrInternal("failed to load run").Wrap(err)
	}
	if run == nil {
		return nil, pkgerrors.ErrNotFoundWithID("picklist run", query.RunID)
	}

	picklists := make([]PicklistDTO, 0, len(run.Picklists))
	for _, p := range run.Picklists {
		picklists = append(picklists, ToPicklistDTO(p))
	}
	return picklists, nil
}

// ListRuns lists the most recent runs, newest first
func (s *PicklistService) ListRuns(ctx context.Context, query ListRunsQuery) ([]RunListItemDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.ErrInternal("failed to list runs").Wrap(err)
	}
	return ToRunListItemDTOs(runs), nil
}

// DeleteRun removes a run
func (s *PicklistService) DeleteRun(ctx context.Context, cmd DeleteRunCommand) error {
	run, err := s.repo.FindByID(ctx, cmd.RunID)
	if err != nil {
		return pkgerrors.ErrInternal("failed to load run").Wrap(err)
	}
	if run == nil {
		return pkgerrors.ErrNotFoundWithID("picklist run", cmd.RunID)
	}

	if err := s.repo.Delete(ctx, cmd.RunID); err != nil {
		return pkgerrors.ErrInternal("failed to delete run").Wrap(err)
	}

	s.logger.WithContext(ctx).WithRunID(cmd.RunID).Info("Picklist run deleted")
	return nil
}

func newRunID() string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("PLR-%s-%s", time.Now().Format("20060102"), suffix)
}
