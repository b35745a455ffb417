package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/wakeguard/internal/actions"
	pkgauth "github.com/BradenHooton/wakeguard/pkg/auth"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Limits RateLimitConfig
	Target TargetConfig
	Alerts AlertConfig
}

type ServerConfig struct {
	Port            string `validate:"required,numeric"`
	Env             string `validate:"oneof=development production test"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	AllowedOrigins  []string
	TrustedProxies  []string `validate:"dive,cidr"`
	StaticDir       string
	ReadTimeout     time.Duration `validate:"gte=0"`
	WriteTimeout    time.Duration `validate:"gte=0"`
	IdleTimeout     time.Duration `validate:"gte=0"`
	CleanupInterval time.Duration `validate:"gt=0"`
}

type AuthConfig struct {
	SessionSecret       string `validate:"required"`
	PINHash             string
	InactivityTimeout   time.Duration `validate:"gt=0"`
	SessionMaxAge       time.Duration `validate:"gt=0"`
	CookieSecure        bool
	BruteForceThreshold int           `validate:"gte=1"`
	BruteForceWindow    time.Duration `validate:"gt=0"`
	FailureDelayMs      int           `validate:"gte=0"`
	FailureJitterMs     int           `validate:"gte=0"`
}

// LimitRule is one fixed-window rate limit: Max requests per Window
type LimitRule struct {
	Max    int           `validate:"gte=1"`
	Window time.Duration `validate:"gt=0"`
}

type RateLimitConfig struct {
	Login           LimitRule
	Wake            LimitRule
	Status          LimitRule
	GlobalPerMinute int `validate:"gte=0"`
}

type TargetConfig struct {
	IP            string
	WakeAction    actions.Name
	ActionTimeout time.Duration `validate:"gt=0"`
}

// AlertConfig configures security alert emails. All three fields must be set.
type AlertConfig struct {
	EmailTo   string `validate:"omitempty,email"`
	EmailFrom string `validate:"omitempty,email"`
	AWSRegion string
}

// Enabled reports whether alert emails can be sent
func (a AlertConfig) Enabled() bool {
	return a.EmailTo != "" && a.EmailFrom != "" && a.AWSRegion != ""
}

// AuthEnabled reports whether a PIN hash was configured
func (c *Config) AuthEnabled() bool {
	return c.Auth.PINHash != ""
}

var validate = validator.New()

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	wakeAction, err := actions.Parse(getEnv("WAKE_ACTION", string(actions.WakePC)))
	if err != nil {
		return nil, fmt.Errorf("WAKE_ACTION: %w (allowed: %v)", err, actions.Names())
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			Env:             env,
			LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
			AllowedOrigins:  parseAllowedOrigins(env),
			TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
			StaticDir:       getEnv("STATIC_DIR", ""),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CleanupInterval: getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Minute),
		},
		Auth: AuthConfig{
			SessionSecret:       sessionSecret,
			PINHash:             strings.TrimSpace(getEnv("PIN_HASH", "")),
			InactivityTimeout:   getEnvAsDuration("SESSION_INACTIVITY_TIMEOUT", 15*time.Minute),
			SessionMaxAge:       getEnvAsDuration("SESSION_MAX_AGE", 24*time.Hour),
			CookieSecure:        getEnvAsBool("COOKIE_SECURE", env == "production"),
			BruteForceThreshold: getEnvAsInt("BRUTE_FORCE_THRESHOLD", 3),
			BruteForceWindow:    getEnvAsDuration("BRUTE_FORCE_WINDOW", 5*time.Minute),
			FailureDelayMs:      getEnvAsInt("LOGIN_FAILURE_DELAY_MS", 250),
			FailureJitterMs:     getEnvAsInt("LOGIN_FAILURE_JITTER_MS", 250),
		},
		Limits: RateLimitConfig{
			Login: LimitRule{
				Max:    getEnvAsInt("LOGIN_RATE_LIMIT", 5),
				Window: getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
			},
			Wake: LimitRule{
				Max:    getEnvAsInt("WAKE_RATE_LIMIT", 5),
				Window: getEnvAsDuration("WAKE_RATE_WINDOW", 1*time.Minute),
			},
			Status: LimitRule{
				Max:    getEnvAsInt("STATUS_RATE_LIMIT", 30),
				Window: getEnvAsDuration("STATUS_RATE_WINDOW", 1*time.Minute),
			},
			GlobalPerMinute: getEnvAsInt("GLOBAL_RATE_LIMIT_PER_MINUTE", 120),
		},
		Target: TargetConfig{
			IP:            strings.TrimSpace(getEnv("PC_IP", "")),
			WakeAction:    wakeAction,
			ActionTimeout: getEnvAsDuration("ACTION_TIMEOUT", 5*time.Second),
		},
		Alerts: AlertConfig{
			EmailTo:   getEnv("ALERT_EMAIL_TO", ""),
			EmailFrom: getEnv("ALERT_EMAIL_FROM", ""),
			AWSRegion: getEnv("AWS_REGION", ""),
		},
	}

	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	if cfg.Auth.PINHash != "" {
		if err := pkgauth.ValidatePINHash(cfg.Auth.PINHash); err != nil {
			return nil, fmt.Errorf("PIN_HASH: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LogWarnings reports settings that are legal but weaken or disable a feature
func (c *Config) LogWarnings(logger *slog.Logger) {
	if !c.AuthEnabled() {
		logger.Warn("PIN_HASH not set: authentication is DISABLED and every route is open")
	}
	if c.Target.IP == "" {
		logger.Warn("PC_IP not set: status checks will be rejected")
	}
	if c.Server.Env == "production" && !c.Auth.CookieSecure {
		logger.Warn("COOKIE_SECURE is false in production")
	}
	if c.Alerts.EmailTo != "" && !c.Alerts.Enabled() {
		logger.Warn("ALERT_EMAIL_TO set without ALERT_EMAIL_FROM and AWS_REGION: alerts are log-only")
	}
}

// validateSessionSecret enforces minimum strength for the cookie signing secret
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Trim(secretLower, "0123456789-_") == weak {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if origins := splitList(getEnv("ALLOWED_ORIGINS", "")); origins != nil {
		return origins
	}

	if env == "production" {
		return []string{} // same-origin only
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
