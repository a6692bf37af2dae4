package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | webhook (future)
	Workers  int     `yaml:"workers"`
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type CampaignConfig struct {
	// ManifestPath points at the winner manifest YAML loaded at startup.
	ManifestPath string `yaml:"manifest_path"`
	// DefaultPrefix is used when /generate is called without one.
	DefaultPrefix string `yaml:"default_prefix"`
	MaxGenerate   int    `yaml:"max_generate"`
	RetryBudget   int    `yaml:"retry_budget"`
	ExportDir     string `yaml:"export_dir"`
}

type RateLimitConfig struct {
	PerUserPerMinute int `yaml:"per_user_per_minute"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Campaign  CampaignConfig  `yaml:"campaign"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.Campaign.DefaultPrefix == "" {
		cfg.Campaign.DefaultPrefix = "VS"
	}
	if cfg.Campaign.MaxGenerate <= 0 {
		cfg.Campaign.MaxGenerate = 200_000
	}
	if cfg.Campaign.RetryBudget <= 0 {
		cfg.Campaign.RetryBudget = 100
	}
	if cfg.Campaign.ExportDir == "" {
		cfg.Campaign.ExportDir = os.TempDir()
	}
	if cfg.RateLimit.PerUserPerMinute <= 0 {
		cfg.RateLimit.PerUserPerMinute = 20
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Campaign.ManifestPath == "" {
		return nil, errors.New("campaign.manifest_path is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
