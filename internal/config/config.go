package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Ledger    LedgerConfig
	Database  DatabaseConfig
	Messaging MessagingConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	QuestionsFile      string // optional YAML override of the embedded catalog
}

type LedgerConfig struct {
	Backend string // "file" | "redis" | "postgres"
	DataDir string
}

type DatabaseConfig struct {
	Connection string
}

type MessagingConfig struct {
	RedisEnabled bool
	RedisURL     string
	NatsEnabled  bool
	NatsURL      string
	EventsTopic  string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

const (
	LedgerBackendFile     = "file"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/submissions.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			QuestionsFile:      getEnv("QUESTIONS_FILE", ""),
		},
		Ledger: LedgerConfig{
			Backend: getEnv("LEDGER_BACKEND", LedgerBackendFile),
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Messaging: MessagingConfig{
			RedisEnabled: getEnvAsBool("REDIS_ENABLED", false),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsEnabled:  getEnvAsBool("NATS_ENABLED", false),
			NatsURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			EventsTopic:  getEnv("SUBMISSION_EVENTS_TOPIC", "SUBMISSION_RECORDED"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "interview-practice-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// GetEnvAsDuration accepts Go duration strings ("1s", "500ms") or a bare number of seconds.
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
