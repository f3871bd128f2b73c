package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.yaml.in/yaml/v4"

	configtypes "github.com/Pei01/updown-collector/internal/config"
)

type config struct {
	LogLevel    string `yaml:"log_level"` // debug, info, warn, error
	MetricsAddr string `yaml:"metrics_addr"`
	Database    struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		PoolSize int    `yaml:"pool_size"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`
	Polymarket struct {
		GammaURL       string `yaml:"gamma_url"`
		WebsocketURL   string `yaml:"ws_url"`
		MarketEndpoint string `yaml:"market_endpoint"`
	} `yaml:"polymarket"`
	Collector struct {
		Asset        string               `yaml:"asset"`
		QueueSize    int                  `yaml:"queue_size"`
		BatchSize    int                  `yaml:"batch_size"`
		PollInterval configtypes.Duration `yaml:"poll_interval"`
		RetryDelay   configtypes.Duration `yaml:"retry_delay"`
	} `yaml:"collector"`
}

// envOverrides lets deployment environments override secrets and endpoints
// without editing the config file.
type envOverrides struct {
	DatabaseHost     string `envconfig:"DATABASE_HOST"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	GammaURL         string `envconfig:"GAMMA_URL"`
	WebsocketURL     string `envconfig:"WS_URL"`
}

func readConfig(configPath *string) (*config, error) {
	rawConfig, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file %s: %w", *configPath, err)
	}

	cfg := &config{}
	if err = yaml.Unmarshal(rawConfig, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("couldn't read environment: %w", err)
	}
	applyOverrides(cfg, env)
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("couldn't validate config: %w", err)
	}

	return cfg, nil
}

func applyOverrides(cfg *config, env envOverrides) {
	if env.DatabaseHost != "" {
		cfg.Database.Host = env.DatabaseHost
	}
	if env.DatabasePassword != "" {
		cfg.Database.Password = env.DatabasePassword
	}
	if env.GammaURL != "" {
		cfg.Polymarket.GammaURL = env.GammaURL
	}
	if env.WebsocketURL != "" {
		cfg.Polymarket.WebsocketURL = env.WebsocketURL
	}
}

func applyDefaults(cfg *config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Polymarket.GammaURL == "" {
		cfg.Polymarket.GammaURL = "https://gamma-api.polymarket.com"
	}
	if cfg.Polymarket.WebsocketURL == "" {
		cfg.Polymarket.WebsocketURL = "wss://ws-subscriptions-clob.polymarket.com"
	}
	if cfg.Polymarket.MarketEndpoint == "" {
		cfg.Polymarket.MarketEndpoint = "/ws/market"
	}
	if cfg.Collector.Asset == "" {
		cfg.Collector.Asset = "BTC"
	}
}

func validateConfig(cfg *config) error {
	// Database
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if cfg.Database.Password == "" {
		return fmt.Errorf("database.password is required")
	}
	if cfg.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if cfg.Database.PoolSize <= 0 {
		return fmt.Errorf("database.pool_size must be greater than 0")
	}
	if cfg.Database.SSLMode == "" {
		return fmt.Errorf("database.ssl_mode is required")
	}

	// Collector
	if cfg.Collector.QueueSize < 0 {
		return fmt.Errorf("collector.queue_size must not be negative")
	}
	if cfg.Collector.BatchSize < 0 {
		return fmt.Errorf("collector.batch_size must not be negative")
	}

	return nil
}
