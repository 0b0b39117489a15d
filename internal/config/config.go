package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Analyzer  AnalyzerConfig
	Extractor ExtractorConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalyzerConfig holds remote document-analysis service settings. An empty
// BaseURL means the remote analyzer is unconfigured and the pipeline falls
// back to local text extraction.
type AnalyzerConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	OrganizationID     string `mapstructure:"organization_id"`
	PollIntervalSecs   int    `mapstructure:"poll_interval_secs"`
	PollTimeoutSecs    int    `mapstructure:"poll_timeout_secs"`
	MaxRetries         int    `mapstructure:"max_retries"`
	RetryDelaySecs     int    `mapstructure:"retry_delay_secs"`
	RequestTimeoutSecs int    `mapstructure:"request_timeout_secs"`
	DegradePageLimit   int    `mapstructure:"degrade_page_limit"`
}

// ExtractorConfig holds settings for the secondary AI offer extraction.
type ExtractorConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds analyze queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
	JobTimeoutSecs   int `mapstructure:"job_timeout_secs"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the POLISAVE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POLISAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "polisave")
	v.SetDefault("db.password", "polisave_secret")
	v.SetDefault("db.name", "polisave_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "polisave")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "polisave-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Analyzer defaults
	v.SetDefault("analyzer.base_url", "")
	v.SetDefault("analyzer.organization_id", "")
	v.SetDefault("analyzer.poll_interval_secs", 2)
	v.SetDefault("analyzer.poll_timeout_secs", 120)
	v.SetDefault("analyzer.max_retries", 2)
	v.SetDefault("analyzer.retry_delay_secs", 1)
	v.SetDefault("analyzer.request_timeout_secs", 30)
	v.SetDefault("analyzer.degrade_page_limit", 10)

	// Extractor defaults
	v.SetDefault("extractor.provider", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.timeout_secs", 120)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 3)
	v.SetDefault("queue.job_timeout_secs", 300)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@polisave.pl")
	v.SetDefault("email.from_name", "PoliSave")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "POLISAVE_SERVER_PORT",
		"server.read_timeout":            "POLISAVE_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "POLISAVE_SERVER_WRITE_TIMEOUT",
		"server.environment":             "POLISAVE_SERVER_ENVIRONMENT",
		"db.host":                        "POLISAVE_DB_HOST",
		"db.port":                        "POLISAVE_DB_PORT",
		"db.user":                        "POLISAVE_DB_USER",
		"db.password":                    "POLISAVE_DB_PASSWORD",
		"db.name":                        "POLISAVE_DB_NAME",
		"db.sslmode":                     "POLISAVE_DB_SSLMODE",
		"db.max_open":                    "POLISAVE_DB_MAX_OPEN",
		"db.max_idle":                    "POLISAVE_DB_MAX_IDLE",
		"jwt.secret":                     "POLISAVE_JWT_SECRET",
		"jwt.access_expiry":              "POLISAVE_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":             "POLISAVE_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                     "POLISAVE_JWT_ISSUER",
		"s3.region":                      "POLISAVE_S3_REGION",
		"s3.bucket":                      "POLISAVE_S3_BUCKET",
		"s3.endpoint":                    "POLISAVE_S3_ENDPOINT",
		"s3.access_key":                  "POLISAVE_S3_ACCESS_KEY",
		"s3.secret_key":                  "POLISAVE_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "POLISAVE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "POLISAVE_S3_PRESIGN_EXPIRY",
		"log.level":                      "POLISAVE_LOG_LEVEL",
		"log.format":                     "POLISAVE_LOG_FORMAT",
		"analyzer.base_url":              "POLISAVE_ANALYZER_BASE_URL",
		"analyzer.organization_id":       "POLISAVE_ANALYZER_ORGANIZATION_ID",
		"analyzer.poll_interval_secs":    "POLISAVE_ANALYZER_POLL_INTERVAL_SECS",
		"analyzer.poll_timeout_secs":     "POLISAVE_ANALYZER_POLL_TIMEOUT_SECS",
		"analyzer.max_retries":           "POLISAVE_ANALYZER_MAX_RETRIES",
		"analyzer.retry_delay_secs":      "POLISAVE_ANALYZER_RETRY_DELAY_SECS",
		"analyzer.request_timeout_secs":  "POLISAVE_ANALYZER_REQUEST_TIMEOUT_SECS",
		"analyzer.degrade_page_limit":    "POLISAVE_ANALYZER_DEGRADE_PAGE_LIMIT",
		"extractor.provider":             "POLISAVE_EXTRACTOR_PROVIDER",
		"extractor.api_key":              "POLISAVE_EXTRACTOR_API_KEY",
		"extractor.default_model":        "POLISAVE_EXTRACTOR_DEFAULT_MODEL",
		"extractor.timeout_secs":         "POLISAVE_EXTRACTOR_TIMEOUT_SECS",
		"cors.allowed_origins":           "POLISAVE_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":       "POLISAVE_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":              "POLISAVE_QUEUE_MAX_RETRIES",
		"queue.concurrency":              "POLISAVE_QUEUE_CONCURRENCY",
		"queue.job_timeout_secs":         "POLISAVE_QUEUE_JOB_TIMEOUT_SECS",
		"email.provider":                 "POLISAVE_EMAIL_PROVIDER",
		"email.region":                   "POLISAVE_EMAIL_REGION",
		"email.from_address":             "POLISAVE_EMAIL_FROM_ADDRESS",
		"email.from_name":                "POLISAVE_EMAIL_FROM_NAME",
		"email.frontend_url":             "POLISAVE_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if POLISAVE_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("POLISAVE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Analyzer = AnalyzerConfig{
		BaseURL:            v.GetString("analyzer.base_url"),
		OrganizationID:     v.GetString("analyzer.organization_id"),
		PollIntervalSecs:   v.GetInt("analyzer.poll_interval_secs"),
		PollTimeoutSecs:    v.GetInt("analyzer.poll_timeout_secs"),
		MaxRetries:         v.GetInt("analyzer.max_retries"),
		RetryDelaySecs:     v.GetInt("analyzer.retry_delay_secs"),
		RequestTimeoutSecs: v.GetInt("analyzer.request_timeout_secs"),
		DegradePageLimit:   v.GetInt("analyzer.degrade_page_limit"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
		JobTimeoutSecs:   v.GetInt("queue.job_timeout_secs"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
