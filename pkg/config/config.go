package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Sources  SourcesConfig
	Recon    ReconConfig
	Snapshot SnapshotConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SourcesConfig points at the upstream roster and pricing endpoints.
type SourcesConfig struct {
	RosterURL    string
	PricingURL   string
	FetchTimeout time.Duration
}

// ReconConfig tunes the reconciliation pipeline. FlatRatioThreshold and
// NextDueGraceDays are heuristics surfaced as knobs rather than constants.
type ReconConfig struct {
	RosterPollInterval time.Duration
	LedgerPollInterval time.Duration
	FlatRatioThreshold float64
	NextDueGraceDays   int
	QueueBufferSize    int
}

// SnapshotConfig governs caching of the published record set.
type SnapshotConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sources = SourcesConfig{
		RosterURL:    v.GetString("ROSTER_SOURCE_URL"),
		PricingURL:   v.GetString("PRICING_SOURCE_URL"),
		FetchTimeout: parseDuration(v.GetString("SOURCE_FETCH_TIMEOUT"), 10*time.Second),
	}

	cfg.Recon = ReconConfig{
		RosterPollInterval: parseDuration(v.GetString("ROSTER_POLL_INTERVAL"), time.Minute),
		LedgerPollInterval: parseDuration(v.GetString("LEDGER_POLL_INTERVAL"), 2*time.Minute),
		FlatRatioThreshold: v.GetFloat64("RECON_FLAT_RATIO_THRESHOLD"),
		NextDueGraceDays:   v.GetInt("RECON_NEXT_DUE_GRACE_DAYS"),
		QueueBufferSize:    v.GetInt("RECON_QUEUE_BUFFER_SIZE"),
	}

	cfg.Snapshot = SnapshotConfig{
		CacheEnabled: v.GetBool("ENABLE_SNAPSHOT_CACHE"),
		CacheTTL:     parseDuration(v.GetString("SNAPSHOT_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academy_payments")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROSTER_SOURCE_URL", "http://localhost:3000/api/students")
	v.SetDefault("PRICING_SOURCE_URL", "http://localhost:3000/api/courses")
	v.SetDefault("SOURCE_FETCH_TIMEOUT", "10s")

	v.SetDefault("ROSTER_POLL_INTERVAL", "60s")
	v.SetDefault("LEDGER_POLL_INTERVAL", "120s")
	v.SetDefault("RECON_FLAT_RATIO_THRESHOLD", 0.6)
	v.SetDefault("RECON_NEXT_DUE_GRACE_DAYS", 30)
	v.SetDefault("RECON_QUEUE_BUFFER_SIZE", 8)

	v.SetDefault("ENABLE_SNAPSHOT_CACHE", false)
	v.SetDefault("SNAPSHOT_CACHE_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
