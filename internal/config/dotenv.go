package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     int
	DatabaseURL              string
	LogLevel                 string
	LogFormat                string
	DefaultMaxParticipants   int
	MaxParticipantsLimit     int
	UndoLimit                int
	AutosaveIntervalMS       int
	CanvasWidth              int
	CanvasHeight             int
	BroadcastWidth           int
	BroadcastHeight          int
	InkThreshold             int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	RedisAddr                string
	RedisChannel             string
	BlobDriver               string
	MinioEndpoint            string
	MinioAccessKeyID         string
	MinioSecretAccessKey     string
	MinioUseSSL              bool
	MinioBucket              string
	MinioPublicURL           string
	SupabaseURL              string
	SupabaseKey              string
	SupabaseBucket           string
	GoogleClientID           string
	GoogleClientSecret       string
	OAuthRedirectURL         string
	JWTSecret                string
	SessionTTLHours          int
	CORSOrigins              []string
	RateLimitPerMinute       int
	RateLimitBurst           int
}

func Default() Config {
	return Config{
		Port:                     8080,
		LogLevel:                 "info",
		LogFormat:                "console",
		DefaultMaxParticipants:   30,
		MaxParticipantsLimit:     100,
		UndoLimit:                20,
		AutosaveIntervalMS:       1000,
		CanvasWidth:              600,
		CanvasHeight:             400,
		BroadcastWidth:           600,
		BroadcastHeight:          400,
		InkThreshold:             100,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		RedisChannel:             "flipquiz:changes",
		BlobDriver:               "memory",
		MinioBucket:              "flipquiz",
		SupabaseBucket:           "flipquiz",
		OAuthRedirectURL:         "http://localhost:8080/auth/callback",
		SessionTTLHours:          72,
		RateLimitPerMinute:       120,
		RateLimitBurst:           30,
	}
}

// Load overlays environment variables on top of Default. Numeric values that
// fail to parse or are not positive keep their defaults.
func Load() Config {
	return LoadFrom(viper.New())
}

// LoadFrom reads settings through v. Flags bound to v under the environment
// variable's name take precedence over the environment.
func LoadFrom(v *viper.Viper) Config {
	cfg := Default()
	v.AutomaticEnv()

	positive := func(key string, dest *int) {
		if !v.IsSet(key) {
			return
		}
		if value := v.GetInt(key); value > 0 {
			*dest = value
		}
	}
	text := func(key string, dest *string) {
		if raw := strings.TrimSpace(v.GetString(key)); raw != "" {
			*dest = raw
		}
	}

	positive("PORT", &cfg.Port)
	text("DATABASE_URL", &cfg.DatabaseURL)
	text("LOG_LEVEL", &cfg.LogLevel)
	text("LOG_FORMAT", &cfg.LogFormat)
	positive("DEFAULT_MAX_PARTICIPANTS", &cfg.DefaultMaxParticipants)
	positive("MAX_PARTICIPANTS_LIMIT", &cfg.MaxParticipantsLimit)
	positive("UNDO_LIMIT", &cfg.UndoLimit)
	positive("AUTOSAVE_INTERVAL_MS", &cfg.AutosaveIntervalMS)
	positive("CANVAS_WIDTH", &cfg.CanvasWidth)
	positive("CANVAS_HEIGHT", &cfg.CanvasHeight)
	positive("BROADCAST_WIDTH", &cfg.BroadcastWidth)
	positive("BROADCAST_HEIGHT", &cfg.BroadcastHeight)
	positive("INK_THRESHOLD", &cfg.InkThreshold)
	positive("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positive("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positive("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	positive("DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds)
	text("REDIS_ADDR", &cfg.RedisAddr)
	text("REDIS_CHANNEL", &cfg.RedisChannel)
	text("BLOB_DRIVER", &cfg.BlobDriver)
	text("MINIO_ENDPOINT", &cfg.MinioEndpoint)
	text("MINIO_ACCESS_KEY_ID", &cfg.MinioAccessKeyID)
	text("MINIO_SECRET_ACCESS_KEY", &cfg.MinioSecretAccessKey)
	if v.IsSet("MINIO_USE_SSL") {
		cfg.MinioUseSSL = v.GetBool("MINIO_USE_SSL")
	}
	text("MINIO_BUCKET", &cfg.MinioBucket)
	text("MINIO_PUBLIC_URL", &cfg.MinioPublicURL)
	text("SUPABASE_URL", &cfg.SupabaseURL)
	text("SUPABASE_KEY", &cfg.SupabaseKey)
	text("SUPABASE_BUCKET", &cfg.SupabaseBucket)
	text("GOOGLE_CLIENT_ID", &cfg.GoogleClientID)
	text("GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret)
	text("OAUTH_REDIRECT_URL", &cfg.OAuthRedirectURL)
	text("JWT_SECRET", &cfg.JWTSecret)
	positive("SESSION_TTL_HOURS", &cfg.SessionTTLHours)
	if raw := strings.TrimSpace(v.GetString("CORS_ORIGINS")); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}
	positive("RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute)
	positive("RATE_LIMIT_BURST", &cfg.RateLimitBurst)
	return cfg
}

func (c Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalMS) * time.Millisecond
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
