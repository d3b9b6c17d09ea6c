package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Lending
		Activities
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path            string // primary library store
		SubmissionsPath string // ratings / contacts / notifications store
		CoversCacheDir  string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // set to false for local dev without HTTPS
		AdminCodePrefix string
	}
	Lending struct {
		LoanPeriodDays int
	}
	Activities struct {
		RetentionDays   int    // 0 disables the sweep
		CleanupSchedule string // cron format
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		DemoMode                 bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("demo_mode", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("submissions_database_path", DefaultSubmissionsDatabasePath)
	v.SetDefault("covers_cache_dir", DefaultCoversCacheDir)

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 10)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_admin_code_prefix", DefaultAdminCodePrefix)

	// Lending defaults
	v.SetDefault("loan_period_days", 14)

	// Activity log retention: disabled unless a positive day count is set
	v.SetDefault("activity_retention_days", 0)
	v.SetDefault("activity_cleanup_schedule", "0 3 * * *") // daily at 03:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path:            v.GetString("DATABASE_PATH"),
			SubmissionsPath: v.GetString("SUBMISSIONS_DATABASE_PATH"),
			CoversCacheDir:  v.GetString("COVERS_CACHE_DIR"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			AdminCodePrefix: v.GetString("AUTH_ADMIN_CODE_PREFIX"),
		},
		Lending: Lending{
			LoanPeriodDays: v.GetInt("LOAN_PERIOD_DAYS"),
		},
		Activities: Activities{
			RetentionDays:   v.GetInt("ACTIVITY_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("ACTIVITY_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DemoMode:                 v.GetBool("DEMO_MODE"),
		},
	}
}
