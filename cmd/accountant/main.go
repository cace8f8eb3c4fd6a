package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"accountant/internal/amqp"
	"accountant/internal/cache"
	"accountant/internal/cli"
	"accountant/internal/config"
	"accountant/internal/core"
	apphttp "accountant/internal/http"
	"accountant/internal/log"
	"accountant/internal/middleware/ratelimit"
	"accountant/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)
	logger.Info("Starting accountant server")

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer res.Close()

	dashCache, cacheCleanup := newDashboardCache(logger, cfg)
	defer cacheCleanup()

	dashboard := services.NewDashboardService(res.Reader, res.Integrity, dashCache, services.DashboardServiceConfig{
		Timeout:     cfg.RequestTimeout,
		MonthCount:  cfg.MonthCount,
		HorizonDays: cfg.HorizonDays,
		Location:    services.BusinessLocation(cfg.Timezone),
	}, logger.WithComponent(log.ComponentDashboard).Logger)

	srv := apphttp.NewServer(dashboard, apphttp.Options{
		Addr:   cfg.Addr(),
		Logger: logger,
		RateLimit: ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		},
		TrustedProxies: cfg.TrustedProxies,
		ReadyCheck:     res.Ready,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	// Every replica binds its own server-named queue so each one drops its cache.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "", logger.WithComponent(log.ComponentAMQP).Logger)
		if err != nil {
			logger.Warn("AMQP unavailable, cache expires by TTL only", "error", err)
		} else {
			defer client.Close()
			go func() {
				err := client.ConsumeRecordsChanged(ctx, func(ctx context.Context, msg *amqp.RecordsChangedMessage) error {
					logger.Info("Records changed, invalidating dashboard cache", "source", msg.Source)
					dashboard.InvalidateCache(ctx)
					return nil
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Cache invalidation consumer stopped", "error", err)
				}
			}()
		}
	}

	logger.Info("Listening",
		"addr", cfg.Addr(),
		"backend", cfg.DataBackend,
		"source", cfg.AggregationSource,
		"timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newDashboardCache prefers Redis when REDIS_ADDR is set so replicas share
// entries, and falls back to an in-process LRU. A zero CACHE_TTL disables it.
func newDashboardCache(logger *log.Logger, cfg *config.Config) (cache.Cache[core.Dashboard], func()) {
	if cfg.CacheTTL == 0 {
		logger.Info("Dashboard cache disabled")
		return nil, func() {}
	}
	cacheLogger := logger.WithComponent(log.ComponentCache).Logger

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			logger.Info("Using Redis dashboard cache", "addr", cfg.RedisAddr)
			return cache.NewRedisCache[core.Dashboard](client, "accountant", cfg.CacheTTL, cacheLogger),
				func() { _ = client.Close() }
		}
		logger.Warn("Redis unavailable, using in-process cache", "error", err)
	}

	lru := cache.NewLRUCache[core.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(cacheLogger)
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)
	return lru, manager.Stop
}
