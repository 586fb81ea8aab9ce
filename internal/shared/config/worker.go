package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WorkerConfig contains all configuration for the worker process.
type WorkerConfig struct {
	Orchestrator OrchestratorClientConfig `mapstructure:"orchestrator"`
	Account      string                   `mapstructure:"account"`
	PollInterval time.Duration            `mapstructure:"poll_interval"`
	MaxBatch     int                      `mapstructure:"max_batch"`
	Logging      LoggingConfig            `mapstructure:"logging"`
}

// OrchestratorClientConfig points the worker at the orchestrator API.
type OrchestratorClientConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadWorker loads the worker configuration from the given path. If
// configPath is empty, it looks for worker.yaml in the config/ directory.
// Environment variables with JOBHUB_WORKER_ prefix override config file
// values.
func LoadWorker(configPath string) (*WorkerConfig, error) {
	v := viper.New()

	v.SetDefault("orchestrator.addr", "http://localhost:8080")
	v.SetDefault("orchestrator.timeout", 10*time.Second)
	v.SetDefault("account", "worker")
	v.SetDefault("poll_interval", 3*time.Second)
	v.SetDefault("max_batch", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("worker")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("JOBHUB_WORKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg WorkerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
