package application

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wms-platform/picklist-service/internal/domain"
)

// PlannerConfig tunes one generation run
type PlannerConfig struct {
	UnitCap                int
	NormalWeightCap        float64 // kg
	FragileWeightCap       float64 // kg
	CutoffPolicy           domain.CutoffPolicy
	ScoreWeights           domain.ScoreWeights
	ConsolidationReference float64
	MaxRows                int
	Parallel               bool
}

// DefaultPlannerConfig returns the production defaults
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		UnitCap:                domain.DefaultUnitCap,
		NormalWeightCap:        domain.DefaultNormalWeightCap,
		FragileWeightCap:       domain.DefaultFragileWeightCap,
		CutoffPolicy:           domain.DefaultCutoffPolicy(),
		ScoreWeights:           domain.DefaultScoreWeights(),
		ConsolidationReference: domain.DefaultConsolidationReference,
		Parallel:               true,
	}
}

// PolicyFor returns the capacity policy for a picklist type
func (c PlannerConfig) PolicyFor(picklistType domain.PicklistType) domain.CapacityPolicy {
	policy := domain.CapacityPolicy{UnitCap: c.UnitCap, WeightCap: c.NormalWeightCap}
	if picklistType == domain.PicklistTypeFragile {
		policy.WeightCap = c.FragileWeightCap
	}
	return policy
}

// Validate checks the planner configuration
func (c PlannerConfig) Validate() error {
	if c.UnitCap < 1 {
		return fmt.Errorf("unit cap must be at least 1, got %d", c.UnitCap)
	}
	if c.NormalWeightCap <= 0 {
		return fmt.Errorf("normal weight cap must be positive, got %.3f", c.NormalWeightCap)
	}
	if c.FragileWeightCap <= 0 {
		return fmt.Errorf("fragile weight cap must be positive, got %.3f", c.FragileWeightCap)
	}
	if len(c.CutoffPolicy.LeadTimes) == 0 {
		return errors.New("cutoff policy has no priority tiers")
	}
	if err := c.ScoreWeights.Validate(); err != nil {
		return err
	}
	return nil
}

// PipelineResult is the output of one packing pipeline pass
type PipelineResult struct {
	Picklists  []*domain.Picklist
	Exclusions []domain.ExcludedLine
	Zones      []string
}

// RunPipeline executes the full planning pipeline over normalized order
// lines: cutoff resolution, EDF sequencing, zone routing, fragility
// splitting, greedy packing. Each (zone, type) stream is packed
// independently; with Parallel set, streams run on their own goroutines and
// results are merged positionally so output order is identical either way.
func RunPipeline(lines []domain.OrderLine, cfg PlannerConfig) (*PipelineResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	result := &PipelineResult{
		Picklists:  make([]*domain.Picklist, 0),
		Exclusions: make([]domain.ExcludedLine, 0),
	}

	resolved := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		withCutoff, err := cfg.CutoffPolicy.Resolve(line)
		if err != nil {
			var malformed *domain.MalformedRecordError
			if errors.As(err, &malformed) {
				result.Exclusions = append(result.Exclusions, domain.ExcludedLine{
					OrderID: malformed.OrderID,
					SKU:     malformed.SKU,
					Zone:    line.Zone,
					Kind:    domain.ExclusionMalformed,
					Reason:  malformed.Reason.Error(),
				})
				continue
			}
			return nil, err
		}
		resolved = append(resolved, withCutoff)
	}

	streams := BuildStreams(SequenceLines(resolved))

	packed := make([]*PackResult, len(streams))
	if cfg.Parallel && len(streams) > 1 {
		var wg sync.WaitGroup
		errs := make([]error, len(streams))
		for i, stream := range streams {
			wg.Add(1)
			go func(i int, stream Stream) {
				defer wg.Done()
				packer := NewPacker(cfg.PolicyFor(stream.Key.Type))
				packed[i], errs[i] = packer.Pack(stream.Key.Zone, stream.Key.Type, stream.Lines)
			}(i, stream)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	} else {
		for i, stream := range streams {
			packer := NewPacker(cfg.PolicyFor(stream.Key.Type))
			res, err := packer.Pack(stream.Key.Zone, stream.Key.Type, stream.Lines)
			if err != nil {
				return nil, err
			}
			packed[i] = res
		}
	}

	zoneSeen := make(map[string]struct{})
	for _, res := range packed {
		result.Picklists = append(result.Picklists, res.Picklists...)
		result.Exclusions = append(result.Exclusions, res.Unpackable...)
		if _, ok := zoneSeen[res.Zone]; !ok {
			zoneSeen[res.Zone] = struct{}{}
			result.Zones = append(result.Zones, res.Zone)
		}
	}

	return result, nil
}
