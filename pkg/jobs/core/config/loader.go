package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	"github.com/attestia/jobcore/pkg/jobs/support/util/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string `name:"envFilePath" optional:"true"`
}

// loadConfig builds the configuration in three layers: defaults, then the
// embedded YAML, then environment variable overrides.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	if len(embeddedConfig) > 0 {
		expanded, err := NewOsEnvironmentExpander().Expand(embeddedConfig)
		if err != nil {
			return nil, exception.NewBatchError(moduleName, "failed to expand environment placeholders in config", err, false)
		}
		var yamlConfig Config
		if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
			return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err, false)
		}
		mergeConfig(cfg, &yamlConfig)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false)
	}

	if err := validate(cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "invalid configuration", err, false)
	}
	return cfg, nil
}

// NewConfigProvider is the Fx provider for *Config. It loads the
// configuration and applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Jobcore.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Jobcore.System.Logging.Level)

	return cfg, nil
}

// LoadConfig loads configuration from the embedded file and environment
// variables. It is expected to be called once during startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// validate rejects configuration values the engine cannot run with.
func validate(cfg *Config) error {
	switch cfg.Jobcore.Registry.Driver {
	case "memory", "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unknown registry driver: %q", cfg.Jobcore.Registry.Driver)
	}
	if cfg.Jobcore.Registry.Driver != "memory" && cfg.Jobcore.Registry.DSN == "" {
		return fmt.Errorf("registry driver %q requires a DSN", cfg.Jobcore.Registry.Driver)
	}
	if cfg.Jobcore.Engine.DefaultBatchSize <= 0 {
		return fmt.Errorf("default batch size must be positive, got %d", cfg.Jobcore.Engine.DefaultBatchSize)
	}
	if cfg.Jobcore.Engine.DefaultDelayMs < 0 {
		return fmt.Errorf("default delay must not be negative, got %d", cfg.Jobcore.Engine.DefaultDelayMs)
	}
	switch cfg.Jobcore.Export.Compression {
	case "", "snappy", "gzip", "none":
	default:
		return fmt.Errorf("unknown export compression: %q", cfg.Jobcore.Export.Compression)
	}
	return nil
}

// mergeConfig performs a deep merge from sourceConfig into destConfig.
// Non-zero source values overwrite the destination.
func mergeConfig(destConfig, sourceConfig *Config) {
	mergeJobcoreConfig(&destConfig.Jobcore, &sourceConfig.Jobcore)
}

func mergeJobcoreConfig(dest, source *JobcoreConfig) {
	if source.System.Timezone != "" {
		dest.System.Timezone = source.System.Timezone
	}
	if source.System.Logging.Level != "" {
		dest.System.Logging.Level = source.System.Logging.Level
	}

	if source.Engine.DefaultBatchSize != 0 {
		dest.Engine.DefaultBatchSize = source.Engine.DefaultBatchSize
	}
	if source.Engine.DefaultDelayMs != 0 {
		dest.Engine.DefaultDelayMs = source.Engine.DefaultDelayMs
	}

	if source.Registry.Driver != "" {
		dest.Registry.Driver = source.Registry.Driver
	}
	if source.Registry.DSN != "" {
		dest.Registry.DSN = source.Registry.DSN
	}

	if source.Server.Addr != "" {
		dest.Server.Addr = source.Server.Addr
	}
	if source.Server.Mode != "" {
		dest.Server.Mode = source.Server.Mode
	}

	mergeServiceConfig(&dest.Collaborators.Certificate, &source.Collaborators.Certificate)
	mergeServiceConfig(&dest.Collaborators.Attendance, &source.Collaborators.Attendance)

	if source.Export.OutputDir != "" {
		dest.Export.OutputDir = source.Export.OutputDir
	}
	if source.Export.Compression != "" {
		dest.Export.Compression = source.Export.Compression
	}
}

func mergeServiceConfig(dest, source *ServiceConfig) {
	if source.BaseURL != "" {
		dest.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		dest.APIKey = source.APIKey
	}
	if source.TimeoutMs != 0 {
		dest.TimeoutMs = source.TimeoutMs
	}
}

// loadStructFromEnv recursively loads configuration values into a struct
// from environment variables, using the "yaml" tag for the variable name.
// Example: JOBCORE_REGISTRY_DRIVER=postgres.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
