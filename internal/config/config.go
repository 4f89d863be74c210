package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Roles     RolesConfig     `yaml:"roles" mapstructure:"roles"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// WorkspaceConfig configures the on-disk experiment workspace.
type WorkspaceConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// StoreConfig configures the run-ledger database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RoleConfig pins the model, temperature and output budget for one LLM
// role. Each role is configured independently; nothing is shared through
// package state.
type RoleConfig struct {
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RolesConfig enumerates the LLM roles in the pipeline.
type RolesConfig struct {
	Template     RoleConfig `yaml:"template" mapstructure:"template"`
	Shortener    RoleConfig `yaml:"shortener" mapstructure:"shortener"`
	Form         RoleConfig `yaml:"form" mapstructure:"form"`
	Conversation RoleConfig `yaml:"conversation" mapstructure:"conversation"`
	Extraction   RoleConfig `yaml:"extraction" mapstructure:"extraction"`
	Oracle       RoleConfig `yaml:"oracle" mapstructure:"oracle"`
}

// PipelineConfig configures the conversation pipeline.
type PipelineConfig struct {
	Conversations int `yaml:"conversations" mapstructure:"conversations"`
}

// ServerConfig configures the read-only metrics server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACTFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	ApplyDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ApplyDefaults sets the default value for every key.
func ApplyDefaults(v *viper.Viper) {
	v.SetDefault("workspace.root", "results")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "factfind.db")
	v.SetDefault("anthropic.requests_per_minute", 60)
	v.SetDefault("pipeline.conversations", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Creative roles run hot, extraction and judging run cold.
	v.SetDefault("roles.template.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("roles.template.temperature", 0.2)
	v.SetDefault("roles.template.max_tokens", 4096)
	v.SetDefault("roles.shortener.model", "claude-haiku-4-5-20251001")
	v.SetDefault("roles.shortener.temperature", 0.2)
	v.SetDefault("roles.shortener.max_tokens", 4096)
	v.SetDefault("roles.form.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("roles.form.temperature", 0.9)
	v.SetDefault("roles.form.max_tokens", 4096)
	v.SetDefault("roles.conversation.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("roles.conversation.temperature", 0.8)
	v.SetDefault("roles.conversation.max_tokens", 8192)
	v.SetDefault("roles.extraction.model", "claude-haiku-4-5-20251001")
	v.SetDefault("roles.extraction.temperature", 0.2)
	v.SetDefault("roles.extraction.max_tokens", 4096)
	v.SetDefault("roles.oracle.model", "claude-haiku-4-5-20251001")
	v.SetDefault("roles.oracle.temperature", 0.0)
	v.SetDefault("roles.oracle.max_tokens", 8)
}

// Validate checks the settings every LLM-backed command needs.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic key is required (FACTFIND_ANTHROPIC_KEY)")
	}
	if c.Pipeline.Conversations < 1 {
		return eris.Errorf("config: pipeline.conversations must be >= 1, got %d", c.Pipeline.Conversations)
	}
	return nil
}

// Default returns the configuration with every key at its default value.
func Default() Config {
	v := viper.New()
	ApplyDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
