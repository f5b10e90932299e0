// Package main runs the curve daemon: the trade engine, the event bus,
// the durable recorder, the WebSocket trade feed and the metrics
// endpoint, in one process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"launch-curve/internal/config"
	"launch-curve/internal/engine"
	"launch-curve/internal/events"
	"launch-curve/internal/feed"
	"launch-curve/internal/observability"
	"launch-curve/internal/recorder"
	"launch-curve/internal/storage"
	chstore "launch-curve/internal/storage/clickhouse"
	"launch-curve/internal/storage/memory"
	"launch-curve/internal/storage/migrations"
	pgstore "launch-curve/internal/storage/postgres"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (optional, env vars apply on top)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.DebugLogging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("daemon failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rate, err := cfg.Rate()
	if err != nil {
		return err
	}

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	metrics := observability.NewMetrics("")

	bus := events.NewBus(logger, cfg.EventBufferSize, events.WithMetrics(metrics))

	params := engine.DefaultParams(cfg.Operator, cfg.PlatformRecipient)
	eng, err := engine.New(params, engine.NewFixedRateSource(rate), bus, logger,
		engine.WithMetrics(metrics))
	if err != nil {
		return err
	}

	rec := recorder.New(stores.trades, stores.graduations, stores.prices, logger,
		recorder.WithMetrics(metrics))
	rec.Attach(bus)

	hub := feed.NewHub(eng, feed.DefaultHubConfig(), logger, metrics)
	hub.Attach(bus)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		if err := bus.Shutdown(shutdownCtx); err != nil {
			logger.Warn("bus shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// appStores holds the configured store implementations.
type appStores struct {
	trades      storage.TradeStore
	graduations storage.GraduationStore
	prices      storage.PricePointStore
}

// createStores wires Postgres and ClickHouse when configured, falling
// back to in-memory stores otherwise.
func createStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*appStores, func(), error) {
	stores := &appStores{
		trades:      memory.NewTradeStore(),
		graduations: memory.NewGraduationStore(),
		prices:      memory.NewPricePointStore(),
	}
	cleanup := func() {}

	if cfg.PostgresURL != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.trades = pgstore.NewTradeStore(pool)
		stores.graduations = pgstore.NewGraduationStore(pool)
		prev := cleanup
		cleanup = func() {
			pool.Close()
			prev()
		}
		logger.Info("postgres store enabled")
	} else {
		logger.Warn("postgres_url not set, trades held in memory only")
	}

	if cfg.ClickhouseURL != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.prices = chstore.NewPricePointStore(conn)
		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
		logger.Info("clickhouse timeseries enabled")
	}

	return stores, cleanup, nil
}
