package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wms-platform/picklist-service/internal/application"
	"github.com/wms-platform/picklist-service/internal/domain"
)

// Config holds the full service configuration. Values come from environment
// variables with an optional YAML overlay for the planner section.
type Config struct {
	Service ServiceConfig `yaml:"service" validate:"required"`
	HTTP    HTTPConfig    `yaml:"http" validate:"required"`
	MongoDB MongoDBConfig `yaml:"mongodb" validate:"required"`
	Kafka   KafkaConfig   `yaml:"kafka" validate:"required"`
	Feed    FeedConfig    `yaml:"feed"`
	Export  ExportConfig  `yaml:"export"`
	Planner PlannerConfig `yaml:"planner" validate:"required"`
}

// ServiceConfig identifies the service
type ServiceConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Environment string `yaml:"environment" validate:"required,oneof=development staging production"`
	LogLevel    string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
}

// HTTPConfig holds the HTTP server settings
type HTTPConfig struct {
	Port            int           `yaml:"port" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"required"`
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI      string `yaml:"uri" validate:"required"`
	Database string `yaml:"database" validate:"required"`
}

// KafkaConfig holds Kafka producer settings
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" validate:"required,min=1"`
	Topic   string   `yaml:"topic" validate:"required"`
	Enabled bool     `yaml:"enabled"`
}

// FeedConfig locates the order-line feed
type FeedConfig struct {
	InputPath string `yaml:"input_path"`
	MaxRows   int    `yaml:"max_rows" validate:"min=0"`
}

// ExportConfig controls picklist file export
type ExportConfig struct {
	OutputDir   string `yaml:"output_dir"`
	SummaryName string `yaml:"summary_name"`
	Enabled     bool   `yaml:"enabled"`
}

// PlannerConfig holds the packing policy knobs. Lead times are expressed as
// Go duration strings keyed by priority tier.
type PlannerConfig struct {
	UnitCap                int                 `yaml:"unit_cap" validate:"required,min=1"`
	NormalWeightCap        float64             `yaml:"normal_weight_cap" validate:"required,gt=0"`
	FragileWeightCap       float64             `yaml:"fragile_weight_cap" validate:"required,gt=0"`
	LeadTimes              map[int]string      `yaml:"lead_times" validate:"required,min=1"`
	ScoreWeights           domain.ScoreWeights `yaml:"score_weights"`
	ConsolidationReference float64             `yaml:"consolidation_reference" validate:"gt=0"`
	Parallel               bool                `yaml:"parallel"`
}

// Load builds the configuration from environment variables, applies the YAML
// overlay at configPath when non-empty, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	leadTimes := make(map[int]string)
	for tier, lead := range domain.DefaultCutoffPolicy().LeadTimes {
		leadTimes[tier] = lead.String()
	}

	return &Config{
		Service: ServiceConfig{
			Name:        "picklist-service",
			Environment: "development",
			LogLevel:    "info",
		},
		HTTP: HTTPConfig{
			Port:            8086,
			ShutdownTimeout: 15 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "wms_picklists",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "wms.picklists.events",
			Enabled: true,
		},
		Feed: FeedConfig{
			InputPath: "data/order_lines.csv",
		},
		Export: ExportConfig{
			OutputDir:   "picklists",
			SummaryName: "Summary.csv",
			Enabled:     true,
		},
		Planner: PlannerConfig{
			UnitCap:                domain.DefaultUnitCap,
			NormalWeightCap:        domain.DefaultNormalWeightCap,
			FragileWeightCap:       domain.DefaultFragileWeightCap,
			LeadTimes:              leadTimes,
			ScoreWeights:           domain.DefaultScoreWeights(),
			ConsolidationReference: domain.DefaultConsolidationReference,
			Parallel:               true,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Service.Name, "SERVICE_NAME")
	setString(&cfg.Service.Environment, "ENVIRONMENT")
	setString(&cfg.Service.LogLevel, "LOG_LEVEL")

	setInt(&cfg.HTTP.Port, "PORT")

	setString(&cfg.MongoDB.URI, "MONGODB_URI")
	setString(&cfg.MongoDB.Database, "MONGODB_DATABASE")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setBool(&cfg.Kafka.Enabled, "KAFKA_ENABLED")

	setString(&cfg.Feed.InputPath, "FEED_INPUT_PATH")
	setInt(&cfg.Feed.MaxRows, "FEED_MAX_ROWS")

	setString(&cfg.Export.OutputDir, "EXPORT_OUTPUT_DIR")
	setBool(&cfg.Export.Enabled, "EXPORT_ENABLED")

	setInt(&cfg.Planner.UnitCap, "PLANNER_UNIT_CAP")
	setFloat(&cfg.Planner.NormalWeightCap, "PLANNER_NORMAL_WEIGHT_CAP")
	setFloat(&cfg.Planner.FragileWeightCap, "PLANNER_FRAGILE_WEIGHT_CAP")
	setBool(&cfg.Planner.Parallel, "PLANNER_PARALLEL")
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.CutoffPolicy(); err != nil {
		return err
	}
	if err := c.Planner.ScoreWeights.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// CutoffPolicy parses the configured lead-time table
func (c *Config) CutoffPolicy() (domain.CutoffPolicy, error) {
	leadTimes := make(map[int]time.Duration, len(c.Planner.LeadTimes))
	for tier, raw := range c.Planner.LeadTimes {
		lead, err := time.ParseDuration(raw)
		if err != nil {
			return domain.CutoffPolicy{}, fmt.Errorf("invalid lead time %q for priority tier %d: %w", raw, tier, err)
		}
		if lead <= 0 {
			return domain.CutoffPolicy{}, fmt.Errorf("lead time for priority tier %d must be positive", tier)
		}
		leadTimes[tier] = lead
	}
	return domain.CutoffPolicy{LeadTimes: leadTimes}, nil
}

// ToPlannerConfig converts the configuration to the application planner config
func (c *Config) ToPlannerConfig() (application.PlannerConfig, error) {
	cutoffPolicy, err := c.CutoffPolicy()
	if err != nil {
		return application.PlannerConfig{}, err
	}

	return application.PlannerConfig{
		UnitCap:                c.Planner.UnitCap,
		NormalWeightCap:        c.Planner.NormalWeightCap,
		FragileWeightCap:       c.Planner.FragileWeightCap,
		CutoffPolicy:           cutoffPolicy,
		ScoreWeights:           c.Planner.ScoreWeights,
		ConsolidationReference: c.Planner.ConsolidationReference,
		MaxRows:                c.Feed.MaxRows,
		Parallel:               c.Planner.Parallel,
	}, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
