package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faceenroll/internal/auth"
	"faceenroll/internal/config"
	"faceenroll/internal/directory"
	"faceenroll/internal/enroll"
	"faceenroll/internal/handler"
	"faceenroll/internal/httpmiddleware"
	"faceenroll/internal/logging"
	"faceenroll/internal/metrics"
	"faceenroll/internal/perco"
	"faceenroll/internal/store"
)

func main() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Error(context.Background(), "http server failed", "err", err)
		os.Exit(1)
	}
}

func runHTTP(cfg config.App, logger *logging.SlogLogger) error {
	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	db, err := store.NewDB(cfg.Database)
	if err != nil {
		logger.Warn(ctx, "directory db not reachable", "driver", cfg.Database.Driver, "err", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	authCtx, cancel := context.WithTimeout(ctx, cfg.Perco.Timeout)
	pc, err := perco.New(authCtx, perco.Config{
		BaseURL:     cfg.Perco.BaseURL(),
		Login:       cfg.Perco.Login,
		Password:    cfg.Perco.Password,
		Timeout:     cfg.Perco.Timeout,
		ReauthOn401: cfg.Perco.ReauthOn401,
	}, perco.WithLogger(logger.With("component", "perco")), perco.WithMetrics(m))
	cancel()
	if err != nil {
		return err
	}

	var sqlDB *sql.DB
	if db != nil {
		sqlDB = db.Client
	}
	repo := directory.NewRepository(sqlDB, cfg.Database.Driver, cfg.Database.QueryTimeout)

	var (
		limiter     httpmiddleware.Limiter
		redisClient *store.Redis
	)
	if cfg.RateLimitBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr, "faceenroll:")
		defer redisClient.Close()
		limiter = httpmiddleware.NewWindowLimiter(redisClient, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	svc := enroll.NewService(repo, pc, logger.With("component", "enroll"), m)
	h := handler.New(svc, pc, logger.With("component", "http"))

	r := gin.New()

	r.Use(handler.Recovery(logger))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Instrument(m))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.RateLimit(limiter, logger))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := db.Healthy(c.Request.Context())
		body := gin.H{"status": "ok", "db": dbHealthy}
		healthy := dbHealthy
		if redisClient != nil {
			redisHealthy := redisClient.Healthy(c.Request.Context())
			body["redis"] = redisHealthy
			healthy = healthy && redisHealthy
		}
		if cfg.HealthCheckPerco {
			_, perr := pc.Devices(c.Request.Context())
			body["perco"] = perr == nil
			healthy = healthy && perr == nil
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	})

	var guards []gin.HandlerFunc
	if cfg.OperatorKey != "" {
		guards = append(guards, auth.RequireRole(cfg.OperatorKey, auth.RoleOperator))
	} else {
		logger.Warn(ctx, "OPERATOR_JWT_SECRET not set, diagnostic endpoints are open")
	}
	h.Register(r, guards...)

	r.StaticFile("/", filepath.Join(cfg.WebDir, "index.html"))
	r.StaticFile("/favicon.ico", filepath.Join(cfg.WebDir, "static", "favicon.ico"))
	r.Static("/static", filepath.Join(cfg.WebDir, "static"))

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Perco.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting server", "addr", srv.Addr, "perco", cfg.Perco.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info(ctx, "shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "server forced shutdown", "err", err)
	}

	logger.Info(ctx, "server exited")
	return nil
}
