package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Backup
		Export
		Audit
		Tasks
		RateLimit
		Log
		Reader
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
	// Storage selects where highlight, note, progress and chapter records live.
	Storage struct {
		Backend       StorageBackend
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		PostgresDSN   string
	}
	Backup struct {
		Dir      string
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Retain   int
	}
	Export struct {
		MarkdownDir string
	}
	Audit struct {
		RetentionDays int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	RateLimit struct {
		Enabled bool
		RPS     float64
		Burst   int
	}
	Log struct {
		Level  string
		Format string // console or json
	}
	Reader struct {
		ParagraphsPerPage int
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("storage_backend", string(StorageSQLite))
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("postgres_dsn", "")

	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *")
	v.SetDefault("backup_retain", 7)
	v.SetDefault("markdown_export_dir", DefaultMarkdownDir)
	v.SetDefault("audit_retention_days", 30)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("paragraphs_per_page", 20)

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
			Backend:       StorageBackend(strings.ToLower(v.GetString("STORAGE_BACKEND"))),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			PostgresDSN:   v.GetString("POSTGRES_DSN"),
		},
		Backup: Backup{
			Dir:      v.GetString("BACKUP_DIR"),
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Retain:   v.GetInt("BACKUP_RETAIN"),
		},
		Export: Export{
			MarkdownDir: v.GetString("MARKDOWN_EXPORT_DIR"),
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
		RateLimit: RateLimit{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Reader: Reader{
			ParagraphsPerPage: v.GetInt("PARAGRAPHS_PER_PAGE"),
		},
	}
}

// Validate reports settings that would make the server misbehave.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Reader.ParagraphsPerPage <= 0 {
		return fmt.Errorf("PARAGRAPHS_PER_PAGE must be positive, got %d", c.Reader.ParagraphsPerPage)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return nil
}
