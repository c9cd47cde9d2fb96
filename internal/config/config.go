// Package config loads and validates the application configuration from
// environment variables and an optional config file.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Pool     PoolConfig     `mapstructure:"pool"     validate:"required"`
	Bench    BenchConfig    `mapstructure:"bench"    validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"     validate:"required"`
	LogLevel string         `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database connection settings. The URL is
// an opaque DSN (URL or key-value form) supplied via the environment,
// never hardcoded.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	Size     int `mapstructure:"size"     validate:"required,gt=0"`
	Overflow int `mapstructure:"overflow" validate:"gte=0"`
}

// BenchConfig shapes the benchmark matrix: every strategy is run at
// every concurrency level over the same page window.
type BenchConfig struct {
	PageSize    int   `mapstructure:"page_size"   validate:"required,gt=0"`
	Pages       int   `mapstructure:"pages"       validate:"required,gt=0"`
	Concurrency []int `mapstructure:"concurrency" validate:"required,min=1,dive,gt=0"`
}

// SeedConfig sizes the seeded population.
type SeedConfig struct {
	Owners             int `mapstructure:"owners"               validate:"required,gt=0"`
	TasksPerOwner      int `mapstructure:"tasks_per_owner"      validate:"required,gt=0"`
	AnnotationsPerTask int `mapstructure:"annotations_per_task" validate:"gte=0"`
}
