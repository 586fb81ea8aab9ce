package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/milanv/jobhub/internal/orchestrator/core"
)

// OrchestratorConfig contains all configuration for the orchestrator service.
type OrchestratorConfig struct {
	REST    RESTConfig    `mapstructure:"rest"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Journal JournalConfig `mapstructure:"journal"`
	Ticker  TickerConfig  `mapstructure:"ticker"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RESTConfig contains REST API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// AuthConfig carries the administrative bearer token. Empty disables the
// administrative endpoints entirely.
type AuthConfig struct {
	AdminToken string `mapstructure:"admin_token"`
}

// JournalConfig points at the sqlite operation journal. Empty path disables
// persistence.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// TickerConfig drives the logical height clock and the pending-event pump.
type TickerConfig struct {
	HeightInterval   time.Duration `mapstructure:"height_interval"`
	AutoProcessBatch int           `mapstructure:"auto_process_batch"`
}

// RulesConfig lists glob patterns for trigger bootstrap files.
type RulesConfig struct {
	Patterns []string `mapstructure:"patterns"`
}

// LoadOrchestrator loads the orchestrator configuration from the given path.
// If configPath is empty, it looks for orchestrator.yaml in the config/
// directory. Environment variables with JOBHUB_ORCHESTRATOR_ prefix override
// config file values.
func LoadOrchestrator(configPath string) (*OrchestratorConfig, error) {
	v := viper.New()

	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 15*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("auth.admin_token", "")
	v.SetDefault("journal.path", "jobhub.db")
	v.SetDefault("ticker.height_interval", time.Second)
	v.SetDefault("ticker.auto_process_batch", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	setLimitDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("orchestrator")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("JOBHUB_ORCHESTRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg OrchestratorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setLimitDefaults(v *viper.Viper) {
	defaults := core.DefaultLimits()
	v.SetDefault("limits.max_metadata_bytes", defaults.MaxMetadataBytes)
	v.SetDefault("limits.max_dependencies", defaults.MaxDependencies)
	v.SetDefault("limits.max_jobs_per_account", defaults.MaxJobsPerAccount)
	v.SetDefault("limits.max_dependency_depth", defaults.MaxDependencyDepth)
	v.SetDefault("limits.max_status_bucket", defaults.MaxStatusBucket)
	v.SetDefault("limits.max_proof_bytes", defaults.MaxProofBytes)
	v.SetDefault("limits.max_payload_bytes", defaults.MaxPayloadBytes)
	v.SetDefault("limits.max_condition_bytes", defaults.MaxConditionBytes)
	v.SetDefault("limits.max_triggers_per_account", defaults.MaxTriggersPerAccount)
	v.SetDefault("limits.max_triggers_per_event", defaults.MaxTriggersPerEvent)
	v.SetDefault("limits.max_pending_events", defaults.MaxPendingEvents)
	v.SetDefault("limits.max_sample_history", defaults.MaxSampleHistory)
}

// CoreLimits converts the config block to the core representation.
func (c LimitsConfig) CoreLimits() core.Limits {
	return core.Limits{
		MaxMetadataBytes:      c.MaxMetadataBytes,
		MaxDependencies:       c.MaxDependencies,
		MaxJobsPerAccount:     c.MaxJobsPerAccount,
		MaxDependencyDepth:    c.MaxDependencyDepth,
		MaxStatusBucket:       c.MaxStatusBucket,
		MaxProofBytes:         c.MaxProofBytes,
		MaxPayloadBytes:       c.MaxPayloadBytes,
		MaxConditionBytes:     c.MaxConditionBytes,
		MaxTriggersPerAccount: c.MaxTriggersPerAccount,
		MaxTriggersPerEvent:   c.MaxTriggersPerEvent,
		MaxPendingEvents:      c.MaxPendingEvents,
		MaxSampleHistory:      c.MaxSampleHistory,
	}
}
