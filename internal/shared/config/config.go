package config

// LoggingConfig contains logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LimitsConfig bounds every collection the core owns. Zero values are
// replaced by the deployment defaults at load time.
type LimitsConfig struct {
	MaxMetadataBytes      int `mapstructure:"max_metadata_bytes"`
	MaxDependencies       int `mapstructure:"max_dependencies"`
	MaxJobsPerAccount     int `mapstructure:"max_jobs_per_account"`
	MaxDependencyDepth    int `mapstructure:"max_dependency_depth"`
	MaxStatusBucket       int `mapstructure:"max_status_bucket"`
	MaxProofBytes         int `mapstructure:"max_proof_bytes"`
	MaxPayloadBytes       int `mapstructure:"max_payload_bytes"`
	MaxConditionBytes     int `mapstructure:"max_condition_bytes"`
	MaxTriggersPerAccount int `mapstructure:"max_triggers_per_account"`
	MaxTriggersPerEvent   int `mapstructure:"max_triggers_per_event"`
	MaxPendingEvents      int `mapstructure:"max_pending_events"`
	MaxSampleHistory      int `mapstructure:"max_sample_history"`
}
