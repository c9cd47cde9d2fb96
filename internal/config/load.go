package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// querybench.yaml in the working directory. Environment variables take
// precedence over file values and use the QUERYBENCH_ prefix with
// underscores for nesting (QUERYBENCH_DATABASE_URL, QUERYBENCH_POOL_SIZE).
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults mirror the reference workload. Every key needs a default
	// so viper binds its environment variable.
	v.SetDefault("database.url", "")
	v.SetDefault("pool.size", 5)
	v.SetDefault("pool.overflow", 10)
	v.SetDefault("bench.page_size", 20)
	v.SetDefault("bench.pages", 50)
	v.SetDefault("bench.concurrency", []int{5, 10, 20, 50, 100})
	v.SetDefault("seed.owners", 20)
	v.SetDefault("seed.tasks_per_owner", 100)
	v.SetDefault("seed.annotations_per_task", 2)
	v.SetDefault("log_level", "info")

	v.SetConfigName("querybench")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUERYBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
