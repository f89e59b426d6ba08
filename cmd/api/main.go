// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"

	"github.com/apptnu/portal/internal/admin"
	"github.com/apptnu/portal/internal/auth"
	"github.com/apptnu/portal/internal/config"
	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/events"
	"github.com/apptnu/portal/internal/health"
	"github.com/apptnu/portal/internal/member"
	"github.com/apptnu/portal/internal/middleware"
	"github.com/apptnu/portal/internal/registration"
	"github.com/apptnu/portal/internal/rpc"
	"github.com/apptnu/portal/internal/server"
	"github.com/apptnu/portal/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser := core.NewLogger(cfg.Log, cfg.App.Name)
	defer logCloser.Close() //nolint:errcheck // flush on exit
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database schema migrated")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	publisher := newPublisher(cfg.Events, logger)
	emitter := events.NewEmitter(publisher, logger)

	hasher := core.NewPasswordHasher(cfg.Password)

	userSvc := user.NewService(user.NewRepository(db.DB), hasher)
	authSvc := auth.NewService(jwtManager, userSvc, hasher, redis, logger)
	memberSvc := member.NewService(member.NewRepository(db.DB), emitter)
	registrationSvc := registration.NewService(
		registration.NewRepository(db.DB),
		memberSvc,
		emitter,
	)

	if cfg.Bootstrap.AdminEmail != "" && cfg.Bootstrap.AdminPassword != "" {
		created, err := userSvc.EnsureAdmin(
			ctx,
			cfg.Bootstrap.AdminEmail,
			cfg.Bootstrap.AdminPassword,
		)
		if err != nil {
			return err
		}
		if created {
			logger.Info("bootstrap admin created", "email", cfg.Bootstrap.AdminEmail)
		}
	}

	checks := []health.Check{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if rp, ok := publisher.(*events.RabbitPublisher); ok {
		checks = append(checks, health.Check{Name: "rabbitmq", Checker: rp})
	}
	healthHandler := health.NewHandler(checks...)
	healthHandler.SetReady(false)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Dashboard:  admin.NewDashboardService(admin.NewStatsRepository(db.DB)),
	})

	procedures := rpc.NewRouter(logger)
	procedures.Register(healthHandler.Procedures()...)
	procedures.Register(user.NewHandler(userSvc).Procedures()...)
	procedures.Register(auth.NewHandler(authSvc).Procedures()...)
	procedures.Register(member.NewHandler(memberSvc).Procedures()...)
	procedures.Register(registration.NewHandler(registrationSvc).Procedures()...)
	procedures.Register(adminHandler.Procedures()...)
	logger.Info("rpc procedures registered", "procedures", procedures.Names())

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	rateLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.Limit(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	})

	router.Route(cfg.Server.RPCPrefix, func(r chi.Router) {
		r.Use(middleware.ConcurrencyLimit(cfg.Server.MaxInFlight))
		r.Use(middleware.Identify(authSvc))
		r.Use(rateLimiter.Handler)
		procedures.Mount(r)
	})

	router.Route("/v1", func(r chi.Router) {
		adminHandler.RegisterRoutes(
			r,
			middleware.Authenticator(authSvc),
			middleware.RequireAdmin,
		)
	})

	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := publisher.Close(); err != nil {
		logger.Error("event publisher close error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// newPublisher connects to the broker when events are enabled. A broker
// that is down at startup degrades to dropping events.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	if !cfg.Enabled {
		return events.Nop{}
	}

	p, err := events.NewRabbitPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		logger.Warn("event broker unavailable, events disabled", "error", err)
		return events.Nop{}
	}

	logger.Info("event publisher connected", "exchange", cfg.Exchange)
	return p
}
