package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kasuganosora/tilecombat/api/rest"
	"github.com/kasuganosora/tilecombat/api/sse"
	apiws "github.com/kasuganosora/tilecombat/api/ws"
	"github.com/kasuganosora/tilecombat/audit"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/config"
	dbadapter "github.com/kasuganosora/tilecombat/db"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/sim"
	mw "github.com/kasuganosora/tilecombat/middleware"
	"github.com/kasuganosora/tilecombat/model"
	"github.com/kasuganosora/tilecombat/plugin/hook"
	"github.com/kasuganosora/tilecombat/scheduler"
	"github.com/kasuganosora/tilecombat/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("TILECOMBAT_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Telemetry ----
	tp, shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	tracer := tp.Tracer("tilecombat")

	// ---- Database / journal ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	journal := audit.New(db, audit.Config{MapID: cfg.Scenario.MapID, Logger: logger})
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache / PubSub ----
	c, pubsub, closeCache, err := cache.New(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Hooks ----
	hooks := hook.NewHookCenter()
	hooks.Register(hook.OnCombatEnd, 100, "award-log", func(_ context.Context, _ string, data any) (any, error) {
		if evt, ok := data.(combat.CombatEnded); ok {
			for _, r := range evt.Recipients {
				logger.Debug("experience awarded", zap.String("character", r.ID), zap.Int("exp", evt.Award))
			}
		}
		return data, nil
	})

	// ---- Simulation ----
	host, err := sim.New(sim.Config{
		Combat:      cfg.Combat,
		Scenario:    cfg.Scenario,
		SnapshotTTL: time.Duration(cfg.Cache.SnapshotTTLS) * time.Second,
		Cache:       c,
		PubSub:      pubsub,
		Journal:     journal,
		Hooks:       hooks,
		Tracer:      tracer,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}

	sched := scheduler.New(logger)
	if err := sched.AddTicker("sim", cfg.Combat.Tick(), func(dt time.Duration) { host.Tick(ctx, dt) }); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.TraceID(tracer), mw.Logger(logger), mw.Recovery(logger))

	rest.NewCombatHandler(host, c, journal, logger).
		Register(r, mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	r.GET("/api/combat/events", sse.NewHandler(pubsub, c, logger).ServeSSE)

	wsRouter := apiws.NewRouter(logger)
	apiws.RegisterCommands(wsRouter, host)
	r.GET("/ws", apiws.NewHandler(pubsub, cfg.Security, wsRouter, logger).ServeWS)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sctx)
		sched.Stop()
		host.Stop()
		journal.Stop(sctx)
		if cerr := closeCache(); cerr != nil {
			logger.Warn("cache close failed", zap.Error(cerr))
		}
		if terr := shutdownTelemetry(sctx); terr != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(terr))
		}
		return err
	})
	return g.Wait()
}
