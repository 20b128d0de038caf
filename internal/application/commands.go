package application

import "github.com/wms-platform/picklist-service/internal/domain"

// GeneratePicklistsCommand triggers one generation run over the configured
// order-line source. Zero values fall back to the service configuration.
type GeneratePicklistsCommand struct {
	MaxRows      int                  `json:"maxRows"`
	ScoreWeights *domain.ScoreWeights `json:"scoreWeights,omitempty"`
}

// GetRunQuery retrieves a single run by its run ID
type GetRunQuery struct {
	RunID string `json:"runId" binding:"required"`
}

// ListRunsQuery lists the most recent runs
type ListRunsQuery struct {
	Limit int `json:"limit"`
}

// DeleteRunCommand removes a run
type DeleteRunCommand struct {
	RunID string `json:"runId" binding:"required"`
}
