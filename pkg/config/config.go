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

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Planner     PlannerConfig
	Suggestions SuggestionsConfig
	Calendar    CalendarConfig
	Exports     ExportsConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig tunes the interactive schedule board: snap grid, debounce
// window for asynchronous conflict checks, background refresh cadence and
// board session lifetime.
type PlannerConfig struct {
	SnapGridMin      int
	ValidateDebounce time.Duration
	RefreshInterval  time.Duration
	SessionTTL       time.Duration
}

// SuggestionsConfig bounds the reschedule candidate search.
type SuggestionsConfig struct {
	HorizonWeeks  int
	MaxCandidates int
}

// CalendarConfig defines the institute working day and view cache tuning.
type CalendarConfig struct {
	WorkdayStart     string
	WorkdayEnd       string
	ViewCacheTTL     time.Duration
	CapacityCacheTTL time.Duration
}

// ExportsConfig controls rendered schedule artifacts and their download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	snapGrid := v.GetInt("SNAP_GRID_MIN")
	if snapGrid <= 0 {
		snapGrid = 30
	}
	cfg.Planner = PlannerConfig{
		SnapGridMin:      snapGrid,
		ValidateDebounce: parseDuration(v.GetString("VALIDATE_DEBOUNCE"), 240*time.Millisecond),
		RefreshInterval:  parseDuration(v.GetString("REFRESH_INTERVAL"), time.Minute),
		SessionTTL:       parseDuration(v.GetString("PLANNER_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Suggestions = SuggestionsConfig{
		HorizonWeeks:  v.GetInt("SUGGEST_HORIZON_WEEKS"),
		MaxCandidates: v.GetInt("SUGGEST_MAX_CANDIDATES"),
	}

	cfg.Calendar = CalendarConfig{
		WorkdayStart:     v.GetString("WORKDAY_START"),
		WorkdayEnd:       v.GetString("WORKDAY_END"),
		ViewCacheTTL:     parseDuration(v.GetString("CALENDAR_CACHE_TTL"), time.Minute),
		CapacityCacheTTL: parseDuration(v.GetString("CAPACITY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
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
	v.SetDefault("DB_NAME", "bimbel_adp")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SNAP_GRID_MIN", 30)
	v.SetDefault("VALIDATE_DEBOUNCE", "240ms")
	v.SetDefault("REFRESH_INTERVAL", "60s")
	v.SetDefault("PLANNER_SESSION_TTL", "30m")

	v.SetDefault("SUGGEST_HORIZON_WEEKS", 3)
	v.SetDefault("SUGGEST_MAX_CANDIDATES", 40)

	v.SetDefault("WORKDAY_START", "07:00")
	v.SetDefault("WORKDAY_END", "20:00")
	v.SetDefault("CALENDAR_CACHE_TTL", "60s")
	v.SetDefault("CAPACITY_CACHE_TTL", "5m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
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
