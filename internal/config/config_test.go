package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picklist-service/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "picklist-service", cfg.Service.Name)
	assert.Equal(t, 8086, cfg.HTTP.Port)
	assert.Equal(t, domain.DefaultUnitCap, cfg.Planner.UnitCap)
	assert.Equal(t, domain.DefaultNormalWeightCap, cfg.Planner.NormalWeightCap)
	assert.Equal(t, domain.DefaultFragileWeightCap, cfg.Planner.FragileWeightCap)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLANNER_UNIT_CAP", "500")
	t.Setenv("PLANNER_FRAGILE_WEIGHT_CAP", "25.5")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 500, cfg.Planner.UnitCap)
	assert.InDelta(t, 25.5, cfg.Planner.FragileWeightCap, 1e-9)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
planner:
  unit_cap: 1000
  normal_weight_cap: 150
  fragile_weight_cap: 40
  lead_times:
    1: 1h
    2: 6h
  score_weights:
    unit_utilization: 0.3
    weight_utilization: 0.3
    consolidation: 0.2
    correctness: 0.1
    baseline_reduction: 0.1
  consolidation_reference: 15
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Planner.UnitCap)
	assert.InDelta(t, 0.1, cfg.Planner.ScoreWeights.BaselineReduction, 1e-9)

	// The overlay overrides listed tiers and keeps the default table for the rest
	policy, err := cfg.CutoffPolicy()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, policy.LeadTimes[1])
	assert.Equal(t, 6*time.Hour, policy.LeadTimes[2])
	assert.Equal(t, 8*time.Hour, policy.LeadTimes[3])
}

func TestLoadRejectsBadScoreWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
planner:
  score_weights:
    unit_utilization: 0.9
    weight_utilization: 0.9
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadLeadTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
planner:
  lead_times:
    1: nonsense
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestToPlannerConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	planner, err := cfg.ToPlannerConfig()
	require.NoError(t, err)

	assert.NoError(t, planner.Validate())
	assert.Equal(t, 720*time.Hour, planner.CutoffPolicy.LeadTimes[domain.NoSLAPriority])
}
