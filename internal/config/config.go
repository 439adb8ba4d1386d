package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Reader
		Cache
		Loans
		Audit
		Tasks
		Maintenance
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Storage struct {
		DocumentsDir string // Directory for uploaded book documents (PDFs)
		CoversDir    string // Directory for cached cover images
	}

	Reader struct {
		PreviewPageLimit  int // Pages visible without full entitlement
		FallbackPageCount int // Reported page count when no document is readable
	}

	Cache struct {
		ListingTTL time.Duration // TTL for cached catalog listing results
	}

	Loans struct {
		PeriodDays int // Loan duration before a book is due
	}

	Audit struct {
		RetentionDays int // Days to keep audit log entries (default: 30)
	}

	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	Maintenance struct {
		Enabled       bool
		AuditSchedule string // Cron format: "0 3 * * *" = daily at 03:00
		CacheSchedule string // Cron format: "*/10 * * * *" = every 10 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("documents_dir", "./storage/documents")
	v.SetDefault("covers_dir", "./storage/covers")

	// Reader defaults
	v.SetDefault("preview_page_limit", DefaultPreviewPageLimit)
	v.SetDefault("fallback_page_count", DefaultFallbackPageCount)

	// Catalog cache defaults
	v.SetDefault("listing_cache_ttl", "5m")

	// Loan defaults
	v.SetDefault("loan_period_days", 30)

	// Audit defaults
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Maintenance scheduler defaults
	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_audit_schedule", "0 3 * * *")
	v.SetDefault("maintenance_cache_schedule", "*/10 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			DocumentsDir: v.GetString("DOCUMENTS_DIR"),
			CoversDir:    v.GetString("COVERS_DIR"),
		},
		Reader: Reader{
			PreviewPageLimit:  v.GetInt("PREVIEW_PAGE_LIMIT"),
			FallbackPageCount: v.GetInt("FALLBACK_PAGE_COUNT"),
		},
		Cache: Cache{
			ListingTTL: v.GetDuration("LISTING_CACHE_TTL"),
		},
		Loans: Loans{
			PeriodDays: v.GetInt("LOAN_PERIOD_DAYS"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:       v.GetBool("MAINTENANCE_ENABLED"),
			AuditSchedule: v.GetString("MAINTENANCE_AUDIT_SCHEDULE"),
			CacheSchedule: v.GetString("MAINTENANCE_CACHE_SCHEDULE"),
		},
	}
}
