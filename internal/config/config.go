// Package config provides configuration management for discode.
// It supports loading configuration from environment variables, config files, and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration sections for discode.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Hook     HookConfig     `mapstructure:"hook"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Question QuestionConfig `mapstructure:"question"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Thinking ThinkingConfig `mapstructure:"thinking"`
}

// ServerConfig holds VT screen refresh-snapshot cadence (not the hook ingress — see
// HookConfig).
type ServerConfig struct {
	SnapshotIntervalMs int `mapstructure:"snapshotIntervalMs"`
}

// HookConfig holds the localhost hook HTTP ingress configuration (§4.8, §6).
type HookConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	RateLimitPerSec int    `mapstructure:"rateLimitPerSec"` // per (project, instance) token bucket rate
	RateLimitBurst  int    `mapstructure:"rateLimitBurst"`
}

// ThinkingConfig holds the quiet-hours-gated placeholder timer (§6).
type ThinkingConfig struct {
	PlaceholderDelayMs int `mapstructure:"placeholderDelayMs"` // 0 disables the placeholder
}

// PlaceholderDelay returns the configured delay as a time.Duration.
func (t *ThinkingConfig) PlaceholderDelay() time.Duration {
	return time.Duration(t.PlaceholderDelayMs) * time.Millisecond
}

// ApprovalConfig holds permission-prompt timeout configuration (§6).
type ApprovalConfig struct {
	TimeoutMs int `mapstructure:"timeoutMs"`
}

// QuestionConfig holds clarifying-question timeout configuration (§6).
type QuestionConfig struct {
	TimeoutMs int `mapstructure:"timeoutMs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// RoutingConfig holds knobs for the routing resolver (§4.4).
type RoutingConfig struct {
	// DefaultAgentType is loaded from configuration but is not read by
	// routing.Table.Resolve; its fallback for an event that omits agentType
	// comes from the project's own routing data.
	DefaultAgentType string `mapstructure:"defaultAgentType"`
}

// ApprovalTimeout returns the approval timeout as a time.Duration.
func (a *ApprovalConfig) ApprovalTimeout() time.Duration {
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

// QuestionTimeout returns the question timeout as a time.Duration.
func (q *QuestionConfig) QuestionTimeout() time.Duration {
	return time.Duration(q.TimeoutMs) * time.Millisecond
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.snapshotIntervalMs", 2000)

	v.SetDefault("hook.host", "127.0.0.1")
	v.SetDefault("hook.port", 18470)
	v.SetDefault("hook.rateLimitPerSec", 20)
	v.SetDefault("hook.rateLimitBurst", 40)

	v.SetDefault("approval.timeoutMs", 120000)
	v.SetDefault("question.timeoutMs", 300000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("routing.defaultAgentType", "claude")

	v.SetDefault("thinking.placeholderDelayMs", 0)
}

// Load reads configuration from environment variables, config file, and defaults.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified path or default locations.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("DISCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings for env vars whose naming differs from the mapstructure
	// key naming, or that belong to the plugin launch contract (§6) and so keep
	// their own AGENT_DISCORD_ namespace rather than DISCODE_.
	_ = v.BindEnv("hook.port", "AGENT_DISCORD_PORT")
	_ = v.BindEnv("approval.timeoutMs", "DISCODE_APPROVAL_TIMEOUT_MS")
	_ = v.BindEnv("question.timeoutMs", "DISCODE_QUESTION_TIMEOUT_MS")
	_ = v.BindEnv("logging.level", "DISCODE_LOG_LEVEL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/discode/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks that all required configuration fields are sane.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Hook.Port <= 0 || cfg.Hook.Port > 65535 {
		errs = append(errs, "hook.port must be between 1 and 65535")
	}
	if cfg.Approval.TimeoutMs <= 0 {
		errs = append(errs, "approval.timeoutMs must be positive")
	}
	if cfg.Question.TimeoutMs <= 0 {
		errs = append(errs, "question.timeoutMs must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
