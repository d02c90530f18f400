package config

import (
	"errors"
	"io/fs"
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
	Env string

	API       APIConfig
	Log       LogConfig
	Metrics   MetricsConfig
	DevServer DevServerConfig
}

// APIConfig points the client core at the remote API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// Token is a previously issued session token, used by the CLI.
	Token string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles client instrumentation.
type MetricsConfig struct {
	Enabled bool
}

// DevServerConfig configures the in-memory API emulation.
type DevServerConfig struct {
	Port           int
	JWTSecret      string
	JWTExpiration  time.Duration
	PageSize       int
	SeedPassword   string
	AllowedOrigins []string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 10*time.Second),
		Token:   strings.TrimSpace(v.GetString("API_TOKEN")),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	pageSize := v.GetInt("DEVSERVER_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 5
	}
	cfg.DevServer = DevServerConfig{
		Port:          v.GetInt("DEVSERVER_PORT"),
		JWTSecret:     v.GetString("DEVSERVER_JWT_SECRET"),
		JWTExpiration: parseDuration(v.GetString("DEVSERVER_JWT_EXPIRATION"), 24*time.Hour),
		PageSize:      pageSize,
		SeedPassword:  v.GetString("DEVSERVER_SEED_PASSWORD"),
	}
	if origins := strings.TrimSpace(v.GetString("ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.DevServer.AllowedOrigins = append(cfg.DevServer.AllowedOrigins, origin)
			}
		}
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("API_BASE_URL must not be empty")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:3000/api")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_TOKEN", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", false)

	v.SetDefault("DEVSERVER_PORT", 3000)
	v.SetDefault("DEVSERVER_JWT_SECRET", "dev_secret")
	v.SetDefault("DEVSERVER_JWT_EXPIRATION", "24h")
	v.SetDefault("DEVSERVER_PAGE_SIZE", 5)
	v.SetDefault("DEVSERVER_SEED_PASSWORD", "password123")
	v.SetDefault("ALLOWED_ORIGINS", "")
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
