package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts and provides *LoggingConfig from *Config
// so components can depend on just the logging settings.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Jobcore.System.Logging
}

// NewRegistryConfigProvider extracts and provides *RegistryConfig.
func NewRegistryConfigProvider(cfg *Config) *RegistryConfig {
	return &cfg.Jobcore.Registry
}

// NewEngineConfigProvider extracts and provides *EngineConfig.
func NewEngineConfigProvider(cfg *Config) *EngineConfig {
	return &cfg.Jobcore.Engine
}

// NewServerConfigProvider extracts and provides *ServerConfig.
func NewServerConfigProvider(cfg *Config) *ServerConfig {
	return &cfg.Jobcore.Server
}

// NewCollaboratorsConfigProvider extracts and provides *CollaboratorsConfig.
func NewCollaboratorsConfigProvider(cfg *Config) *CollaboratorsConfig {
	return &cfg.Jobcore.Collaborators
}

// NewExportConfigProvider extracts and provides *ExportConfig.
func NewExportConfigProvider(cfg *Config) *ExportConfig {
	return &cfg.Jobcore.Export
}

// Module provides configuration-related components to Fx.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewRegistryConfigProvider),
	fx.Provide(NewEngineConfigProvider),
	fx.Provide(NewServerConfigProvider),
	fx.Provide(NewCollaboratorsConfigProvider),
	fx.Provide(NewExportConfigProvider),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
