package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logger     LoggerConfig     `yaml:"logger"`
	Completion CompletionConfig `yaml:"completion"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	Agents     []AgentConfig    `yaml:"agents"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // Bearer token for mutating routes (optional, empty disables auth)
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// CompletionConfig completion service configuration
type CompletionConfig struct {
	BaseURL        string `yaml:"base_url"` // OpenAI-compatible endpoint
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-call timeout; expiry fails the task and frees the agent
	MaxFailures    int    `yaml:"max_failures"`    // consecutive failures before the guard opens
	CooldownSecs   int    `yaml:"cooldown_seconds"`
}

// KnowledgeConfig knowledge store configuration
type KnowledgeConfig struct {
	Source string               `yaml:"source"` // dir, redis, none
	Path   string               `yaml:"path"`   // document tree root when source=dir
	Redis  KnowledgeRedisConfig `yaml:"redis"`
}

// KnowledgeRedisConfig redis-backed knowledge store configuration
type KnowledgeRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"` // key prefix holding documents
}

// MySQLConfig report sink configuration
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DSN builds the MySQL connection string.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// AgentConfig declares one agent registered at startup
type AgentConfig struct {
	Name   string   `yaml:"name"`
	Role   string   `yaml:"role"`
	Skills []string `yaml:"skills"`
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	// Allow secrets such as the completion API key to come from the
	// environment instead of the file.
	data = []byte(os.ExpandEnv(string(data)))

	cfg, err := Parse(data)
	if err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Parse decodes a YAML config document and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Completion.TimeoutSeconds <= 0 {
		cfg.Completion.TimeoutSeconds = 120
	}
	if cfg.Completion.MaxFailures <= 0 {
		cfg.Completion.MaxFailures = 3
	}
	if cfg.Completion.CooldownSecs <= 0 {
		cfg.Completion.CooldownSecs = 60
	}
	if cfg.Knowledge.Source == "" {
		cfg.Knowledge.Source = "dir"
	}

	return &cfg, nil
}
