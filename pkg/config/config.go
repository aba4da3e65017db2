// Package config holds the server configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults, matching the values clients were built against.
const (
	DefaultPort                = "8080"
	DefaultInitialClockSeconds = 600
	DefaultTickIntervalMs      = 1000
	DefaultChatMessageLimit    = 200
	DefaultChatHistoryLimit    = 50
	DefaultReconnectTimeoutMs  = 30000
	DefaultRetentionSeconds    = 30
)

// Config is the full server configuration. Values come from the optional
// YAML file, then environment variables, then flags, later sources winning.
type Config struct {
	Port  string `yaml:"port"`
	Debug bool   `yaml:"debug"`

	InitialClockSeconds int `yaml:"initial_clock_seconds"`
	TickIntervalMs      int `yaml:"tick_interval_ms"`
	ChatMessageLimit    int `yaml:"chat_message_limit"`
	ChatHistoryLimit    int `yaml:"chat_history_limit"`
	ReconnectTimeoutMs  int `yaml:"reconnect_timeout_ms"`
	RetentionSeconds    int `yaml:"retention_seconds"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Port:                DefaultPort,
		InitialClockSeconds: DefaultInitialClockSeconds,
		TickIntervalMs:      DefaultTickIntervalMs,
		ChatMessageLimit:    DefaultChatMessageLimit,
		ChatHistoryLimit:    DefaultChatHistoryLimit,
		ReconnectTimeoutMs:  DefaultReconnectTimeoutMs,
		RetentionSeconds:    DefaultRetentionSeconds,
	}
}

// Load builds the configuration from the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.InitialClockSeconds = getEnvAsInt("INITIAL_CLOCK_SECONDS", c.InitialClockSeconds)
	c.TickIntervalMs = getEnvAsInt("TICK_INTERVAL_MS", c.TickIntervalMs)
	c.ChatMessageLimit = getEnvAsInt("CHAT_MESSAGE_LIMIT", c.ChatMessageLimit)
	c.ChatHistoryLimit = getEnvAsInt("CHAT_HISTORY_LIMIT", c.ChatHistoryLimit)
	c.ReconnectTimeoutMs = getEnvAsInt("RECONNECT_TIMEOUT_MS", c.ReconnectTimeoutMs)
	c.RetentionSeconds = getEnvAsInt("RETENTION_SECONDS", c.RetentionSeconds)
}

// TickInterval returns the clock tick interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// ReconnectGrace returns the reconnection grace period as a duration.
func (c *Config) ReconnectGrace() time.Duration {
	return time.Duration(c.ReconnectTimeoutMs) * time.Millisecond
}

// Retention returns how long finished sessions are kept before cleanup.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
