package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/resensebox/Mindful-Libraries-sub000/common/id"
	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/common/otel"
	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/middleware"
	httprouter "github.com/resensebox/Mindful-Libraries-sub000/internal/http/router"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/report"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "mindful libraries starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	services, cleanup, err := service.Build(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build services", "error", err)
		cleanup()
		os.Exit(1)
	}
	defer cleanup()

	// Warm the cache; a failure here is retried on the first request.
	if snap, err := services.Catalog().Get(ctx); err != nil {
		slog.WarnContext(ctx, "initial catalog load failed", "error", err)
	} else {
		slog.InfoContext(ctx, "catalog loaded", "items", len(snap.Items))
	}

	sessions := session.NewRegistry(session.RegistryOptions{
		IdleTimeout:   cfg.Session.IdleTimeout,
		RatePerMinute: cfg.Session.RatePerMinute,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, sessions)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// LLM budget plus catalog refresh plus rendering
		WriteTimeout: cfg.LLM.Timeout + cfg.Catalog.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, sessions *session.Registry) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, sessions, httprouter.RouterConfig{
		SecureCookie:  cfg.Session.SecureCookie,
		CookieMaxAge:  int(cfg.Session.IdleTimeout.Seconds()),
		Renderer:      report.NewPDFRenderer(),
		ExposeMetrics: true,
	})

	return router
}

const banner = `
 __  __ _           _  __       _   _     _ _                    _
|  \/  (_)_ __   __| |/ _|_   _| | | |   (_) |__  _ __ __ _ _ __(_) ___  ___
| |\/| | | '_ \ / _' | |_| | | | | | |   | | '_ \| '__/ _' | '__| |/ _ \/ __|
| |  | | | | | | (_| |  _| |_| | | | |___| | |_) | | | (_| | |  | |  __/\__ \
|_|  |_|_|_| |_|\__,_|_|  \__,_|_| |_____|_|_.__/|_|  \__,_|_|  |_|\___||___/
`
