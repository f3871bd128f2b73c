package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Pei01/updown-collector/internal/collector"
	"github.com/Pei01/updown-collector/internal/market"
	"github.com/Pei01/updown-collector/internal/metrics"
	"github.com/Pei01/updown-collector/internal/polymarket/gamma"
	pmws "github.com/Pei01/updown-collector/internal/polymarket/websocket"
	"github.com/Pei01/updown-collector/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/collector/config.yaml", "path to config file")
	asset := flag.String("asset", "", "asset symbol to track (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := readConfig(configPath)
	if err != nil {
		log.Fatalf("Couldn't read config: %v", err)
	}
	if *asset != "" {
		cfg.Collector.Asset = *asset
	}

	logger := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := store.NewPool(ctx, store.PoolConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		PoolSize: cfg.Database.PoolSize,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Couldn't connect to database: %v", err)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.CreateSchema(ctx); err != nil {
		log.Fatalf("Couldn't create schema: %v", err)
	}
	logger.Info("connected to database")

	metrics.Serve(cfg.MetricsAddr, logger)

	resolver := market.NewResolver(gamma.New(cfg.Polymarket.GammaURL), logger)
	feed := pmws.New(cfg.Polymarket.WebsocketURL+cfg.Polymarket.MarketEndpoint, logger)

	coll := collector.New(collector.Config{
		Asset:      cfg.Collector.Asset,
		QueueSize:  cfg.Collector.QueueSize,
		BatchSize:  cfg.Collector.BatchSize,
		PollEvery:  cfg.Collector.PollInterval.Duration(),
		RetryAfter: cfg.Collector.RetryDelay.Duration(),
	}, resolver, feed, st, logger)

	go feed.Start(ctx, coll.OnMessage)

	if err := coll.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("collector exited", "error", err)
	}

	feed.Stop()
	logger.Info("shutdown complete")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
