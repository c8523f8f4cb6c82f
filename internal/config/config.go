package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode              string        `yaml:"mode"` // demo | replay | live
	LogLevel          string        `yaml:"log_level"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	Demo    DemoConfig    `yaml:"demo"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Pattern PatternConfig `yaml:"pattern"`
	Filter  FilterConfig  `yaml:"filter"`
	History HistoryConfig `yaml:"history"`
	API     APIConfig     `yaml:"api"`
}

type DemoConfig struct {
	Seed           uint64        `yaml:"seed"`
	InitialRecords int           `yaml:"initial_records"`
	BatchPerTick   int           `yaml:"batch_per_tick"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	Agents         []string      `yaml:"agents"`
	Symbols        []string      `yaml:"symbols"`
	Farms          []string      `yaml:"farms"`
}

type IngestConfig struct {
	SyncInterval time.Duration `yaml:"sync_interval"`
	MarketLimit  int           `yaml:"market_limit"`
}

type PatternConfig struct {
	MinSamples int `yaml:"min_samples"`
	// Rules restricts detection to the named stock rule IDs; empty means
	// every registered rule.
	Rules []string `yaml:"rules"`
}

type FilterConfig struct {
	SearchFields []string `yaml:"search_fields"`
}

type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	ReloadLimit int    `yaml:"reload_limit"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Default() Config {
	return Config{
		Mode:              "demo",
		LogLevel:          "info",
		HeartbeatInterval: 30 * time.Second,
		Demo: DemoConfig{
			Seed:           1,
			InitialRecords: 200,
			BatchPerTick:   10,
			TickInterval:   15 * time.Second,
		},
		Ingest: IngestConfig{
			SyncInterval: time.Minute,
			MarketLimit:  100,
		},
		Pattern: PatternConfig{
			MinSamples: 5,
		},
		History: HistoryConfig{
			Path:        "data/analytics.db",
			ReloadLimit: 2000,
		},
		API: APIConfig{
			Enabled: true,
			Addr:    ":8080",
		},
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("ANALYTICS_MODE")); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ANALYTICS_LOG_LEVEL")); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ANALYTICS_API_ADDR")); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("ANALYTICS_API_ENABLED"); v != "" {
		c.API.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := strings.TrimSpace(os.Getenv("ANALYTICS_HISTORY_PATH")); v != "" {
		c.History.Path = v
		c.History.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv("ANALYTICS_DEMO_SEED")); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Demo.Seed = seed
		}
	}
}
