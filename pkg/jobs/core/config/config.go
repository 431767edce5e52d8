// Package config provides structures and utilities for managing the job
// engine's configuration.
package config

// EmbeddedConfig holds the content of the configuration file, typically
// embedded into the binary and passed from main.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g. "UTC").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds execution tuning for the job engine.
type EngineConfig struct {
	// DefaultBatchSize is used when a submission does not set a batch size.
	DefaultBatchSize int `yaml:"default_batch_size"`
	// DefaultDelayMs is the pause between batches in milliseconds when a
	// submission does not set one.
	DefaultDelayMs int `yaml:"default_delay_ms"`
}

// RegistryConfig selects and configures the job registry backend.
type RegistryConfig struct {
	// Driver is one of "memory", "sqlite", "postgres", "mysql".
	Driver string `yaml:"driver"`
	// DSN is the data source name for SQL drivers.
	DSN string `yaml:"dsn"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `yaml:"addr"`
	// Mode selects the gin mode ("release", "debug", "test").
	Mode string `yaml:"mode"`
}

// ServiceConfig configures one collaborator service client.
type ServiceConfig struct {
	// BaseURL is the collaborator's base endpoint.
	BaseURL string `yaml:"base_url"`
	// APIKey authenticates requests to the collaborator.
	APIKey string `yaml:"api_key"`
	// TimeoutMs is the per-request timeout in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`
}

// CollaboratorsConfig holds clients for the platform services the job
// operations call into.
type CollaboratorsConfig struct {
	// Certificate is the certificate issuance service.
	Certificate ServiceConfig `yaml:"certificate"`
	// Attendance is the attendance record service.
	Attendance ServiceConfig `yaml:"attendance"`
}

// ExportConfig holds result export settings.
type ExportConfig struct {
	// OutputDir is where export files are written.
	OutputDir string `yaml:"output_dir"`
	// Compression selects the parquet compression codec ("snappy", "gzip",
	// "none").
	Compression string `yaml:"compression"`
}

// JobcoreConfig holds all configuration under the "jobcore" top-level key.
type JobcoreConfig struct {
	System        SystemConfig        `yaml:"system"`
	Engine        EngineConfig        `yaml:"engine"`
	Registry      RegistryConfig      `yaml:"registry"`
	Server        ServerConfig        `yaml:"server"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	Export        ExportConfig        `yaml:"export"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Jobcore JobcoreConfig `yaml:"jobcore"`
	// EmbeddedConfig holds configuration loaded from an embedded source,
	// not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new Config populated with default values.
func NewConfig() *Config {
	return &Config{
		Jobcore: JobcoreConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Engine: EngineConfig{
				DefaultBatchSize: 50,
				DefaultDelayMs:   0,
			},
			Registry: RegistryConfig{
				Driver: "memory",
			},
			Server: ServerConfig{
				Addr: ":8080",
				Mode: "release",
			},
			Collaborators: CollaboratorsConfig{
				Certificate: ServiceConfig{TimeoutMs: 10000},
				Attendance:  ServiceConfig{TimeoutMs: 10000},
			},
			Export: ExportConfig{
				OutputDir:   "exports",
				Compression: "snappy",
			},
		},
	}
}
