package application

import "github.com/wms-platform/picklist-service/internal/domain"

// ToPickUnitDTO converts a domain pick unit to its DTO
func ToPickUnitDTO(u domain.PickUnit) PickUnitDTO {
	return PickUnitDTO{
		SKU:        u.SKU,
		OrderID:    u.OrderID,
		Store:      u.Store,
		Bin:        u.Bin,
		BinRank:    u.BinRank,
		Units:      u.Units,
		UnitWeight: u.UnitWeight,
		Cutoff:     u.Cutoff,
		Priority:   u.Priority,
		Fragile:    u.Fragile,
	}
}

// ToPicklistDTO converts a domain picklist to its DTO
func ToPicklistDTO(p *domain.Picklist) PicklistDTO {
	units := make([]PickUnitDTO, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, ToPickUnitDTO(u))
	}

	return PicklistDTO{
		Zone:           p.Zone,
		Type:           string(p.Type),
		SequenceNumber: p.SequenceNumber,
		Status:         string(p.Status),
		TotalUnits:     p.TotalUnits,
		TotalWeight:    p.TotalWeight,
		UnitCap:        p.Policy.UnitCap,
		WeightCap:      p.Policy.WeightCap,
		DistinctOrders: p.DistinctOrders(),
		DistinctBins:   p.DistinctBins(),
		EarliestCutoff: p.EarliestCutoff,
		SealedAt:       p.SealedAt,
		Units:          units,
	}
}

// ToSummaryRowDTO converts a summary row to its DTO
func ToSummaryRowDTO(row domain.SummaryRow) SummaryRowDTO {
	return SummaryRowDTO{
		Zone:           row.Zone,
		SequenceNumber: row.SequenceNumber,
		Type:           string(row.Type),
		TotalUnits:     row.TotalUnits,
		TotalWeight:    row.TotalWeight,
		DistinctOrders: row.DistinctOrders,
		DistinctBins:   row.DistinctBins,
		EarliestCutoff: row.EarliestCutoff,
		CreatedAt:      row.CreatedAt,
	}
}

// ToRunMetricsDTO converts run metrics to their DTO
func ToRunMetricsDTO(m domain.RunMetrics) RunMetricsDTO {
	return RunMetricsDTO{
		TotalPicklists:            m.TotalPicklists,
		AvgUnitsPerPicklist:       m.AvgUnitsPerPicklist,
		AvgWeightPerPicklist:      m.AvgWeightPerPicklist,
		ViolationCount:            m.ViolationCount,
		ViolationRate:             m.ViolationRate,
		UnitDominatedViolations:   m.UnitDominatedViolations,
		WeightDominatedViolations: m.WeightDominatedViolations,
		AvgUnitUtilization:        m.AvgUnitUtilization,
		AvgWeightUtilization:      m.AvgWeightUtilization,
		AvgOrdersPerPicklist:      m.AvgOrdersPerPicklist,
		AvgBinsPerPicklist:        m.AvgBinsPerPicklist,
		BaselinePicklists:         m.BaselinePicklists,
		BaselineReduction:         m.BaselineReduction,
		TypeCounts:                m.TypeCounts,
		ZoneCounts:                m.ZoneCounts,
		MalformedLines:            m.MalformedLines,
		UnpackableLines:           m.UnpackableLines,
		QualityScore:              m.QualityScore,
	}
}

// ToRunDTO converts a run aggregate to its full DTO
func ToRunDTO(run *domain.PicklistRun) *RunDTO {
	picklists := make([]PicklistDTO, 0, len(run.Picklists))
	for _, p := range run.Picklists {
		picklists = append(picklists, ToPicklistDTO(p))
	}

	summaries := make([]SummaryRowDTO, 0, len(run.Summaries))
	for _, row := range run.Summaries {
		summaries = append(summaries, ToSummaryRowDTO(row))
	}

	exclusions := make([]ExcludedLineDTO, 0, len(run.Exclusions))
	for _, e := range run.Exclusions {
		exclusions = append(exclusions, ExcludedLineDTO{
			OrderID: e.OrderID,
			SKU:     e.SKU,
			Zone:    e.Zone,
			Kind:    string(e.Kind),
			Reason:  e.Reason,
		})
	}

	return &RunDTO{
		RunID:         run.RunID,
		Status:        string(run.Status),
		Zones:         run.Zones,
		Picklists:     picklists,
		Summaries:     summaries,
		Metrics:       ToRunMetricsDTO(run.Metrics),
		Exclusions:    exclusions,
		SourceLines:   run.SourceLines,
		FailureReason: run.FailureReason,
		CreatedAt:     run.CreatedAt,
		CompletedAt:   run.CompletedAt,
	}
}

// ToRunListItemDTOs converts runs to their compact list DTOs
func ToRunListItemDTOs(runs []*domain.PicklistRun) []RunListItemDTO {
	items := make([]RunListItemDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, RunListItemDTO{
			RunID:          run.RunID,
			Status:         string(run.Status),
			TotalPicklists: run.Metrics.TotalPicklists,
			QualityScore:   run.Metrics.QualityScore,
			SourceLines:    run.SourceLines,
			CreatedAt:      run.CreatedAt,
			CompletedAt:    run.CompletedAt,
		})
	}
	return items
}
