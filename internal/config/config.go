package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Logging
		Security
		RateLimit
		Metrics
		Session
		Audit
		AuditCleanup
		Tasks
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Env                      string
	}
	Database struct {
		Path string
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Logging struct {
		Level string
	}
	Security struct {
		CSRFEnabled   bool
		CSRFSecret    string // Generated at startup when empty
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
	RateLimit struct {
		Requests int // Form submissions allowed per window, 0 disables the limiter
		Window   time.Duration
		Burst    int
	}
	Metrics struct {
		Enabled         bool
		RefreshSchedule string // Cron format, recounts the catalog entity gauges
	}
	Session struct {
		Lifetime time.Duration
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	AuditCleanup struct {
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Demo struct {
		Enabled bool // Read-only catalog, every submission is refused
	}
)

// LoadEnvFile loads variables from path into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		log.Debug().Str("path", path).Msg("Loaded environment file")
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("app_env", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Security defaults
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("csrf_secret", "")
	v.SetDefault("secure_cookies", true)
	v.SetDefault("session_lifetime", "24h")

	v.SetDefault("rate_limit_requests", 60)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_refresh_schedule", "*/5 * * * *")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("demo_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Env:                      v.GetString("APP_ENV"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Logging: Logging{
			Level: v.GetString("LOG_LEVEL"),
		},
		Security: Security{
			CSRFEnabled:   v.GetBool("CSRF_ENABLED"),
			CSRFSecret:    v.GetString("CSRF_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		RateLimit: RateLimit{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
		},
		Metrics: Metrics{
			Enabled:         v.GetBool("METRICS_ENABLED"),
			RefreshSchedule: v.GetString("METRICS_REFRESH_SCHEDULE"),
		},
		Session: Session{
			Lifetime: v.GetDuration("SESSION_LIFETIME"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		AuditCleanup: AuditCleanup{
			Schedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}
