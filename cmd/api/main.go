package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/wakeguard/internal/actions"
	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/background"
	"github.com/BradenHooton/wakeguard/internal/config"
	"github.com/BradenHooton/wakeguard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/wakeguard/internal/middleware"
	"github.com/BradenHooton/wakeguard/internal/routes"
	"github.com/BradenHooton/wakeguard/internal/services"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
	pkglogger "github.com/BradenHooton/wakeguard/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.Bool("auth_enabled", cfg.AuthEnabled()),
		slog.String("wake_action", string(cfg.Target.WakeAction)),
		slog.Bool("target_configured", cfg.Target.IP != ""),
		pkglogger.RedactedAttr("target_ip", cfg.Target.IP, cfg.Server.Env))
	cfg.LogWarnings(logger)

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)
	state := services.NewSecurityState(cfg.Auth, cfg.Limits)

	verifier := auth.NewPinVerifier(auth.ModeFromHash(cfg.Auth.PINHash))
	tokenManager := auth.NewSessionTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge)
	cookieConfig := auth.DefaultCookieConfig(cfg.Auth.CookieSecure)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.FailureDelayMs,
		RandomDelayMs: cfg.Auth.FailureJitterMs,
	})

	authService := services.NewAuthService(verifier, state, timingDelay, newAlertNotifier(cfg, logger), logger, auditLogger)

	runner := actions.NewExecRunner()
	wakeService := services.NewWakeService(
		cfg.Target.WakeAction,
		cfg.Target.IP,
		cfg.Target.ActionTimeout,
		runner,
		actions.NewPingProber(runner),
		logger,
		auditLogger,
	)

	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterRoutes(router, routes.Dependencies{
		AuthHandler:     handlers.NewAuthHandler(authService, tokenManager, cookieConfig, ipConfig, logger),
		WakeHandler:     handlers.NewWakeHandler(wakeService, ipConfig),
		HealthHandler:   handlers.NewHealthHandler(version, cfg.AuthEnabled(), wakeService.TargetConfigured()),
		Authenticator:   authService,
		Tokens:          tokenManager,
		Cookies:         cookieConfig,
		State:           state,
		IPConfig:        ipConfig,
		GlobalPerMinute: cfg.Limits.GlobalPerMinute,
		Logger:          logger,
	})
	routes.RegisterStatic(router, cfg.Server.StaticDir)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	cleanupManager := background.NewCleanupManager(authService, logger, cfg.Server.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newAlertNotifier emails through SES when fully configured and otherwise
// only logs alerts
func newAlertNotifier(cfg *config.Config, logger *slog.Logger) services.AlertNotifier {
	if !cfg.Alerts.Enabled() {
		return services.NewLogAlertNotifier(logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifier, err := services.NewAWSSESAlertNotifier(ctx, cfg.Alerts.AWSRegion, cfg.Alerts.EmailFrom, cfg.Alerts.EmailTo, logger)
	if err != nil {
		logger.Warn("SES unavailable, security alerts are log-only", slog.Any("error", err))
		return services.NewLogAlertNotifier(logger)
	}
	return notifier
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
