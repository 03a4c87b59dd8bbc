package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Access        AccessConfig        `mapstructure:"access"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL        string `mapstructure:"base_url"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy        bool          `mapstructure:"trust_proxy"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Address      string        `mapstructure:"address" validate:"required_if=Enabled true"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"min=0"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" validate:"required,min=32"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" validate:"required,min=32"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=12h"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" validate:"required,min=1h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
	SessionCookieName    string        `mapstructure:"session_cookie_name"`
	SecureCookies        bool          `mapstructure:"secure_cookies"`
}

// AccessConfig holds the redirect targets used by the page gate.
type AccessConfig struct {
	SignInPath   string `mapstructure:"sign_in_path"`
	FallbackPath string `mapstructure:"fallback_path"`
}

type RateLimitConfig struct {
	SignInPerMinute int `mapstructure:"sign_in_per_minute" validate:"min=0"`
	SignInBurst     int `mapstructure:"sign_in_burst" validate:"min=0"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name" validate:"required_if=Enabled true"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"min=0,max=1"`
	Endpoint     string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure     bool    `mapstructure:"insecure"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

const (
	DefaultSessionCookieName = "session_token"
	DefaultSignInPath        = "/auth/signin"
	DefaultFallbackPath      = "/dashboard"
)

// ApplyDefaults fills optional values that viper or the environment left empty.
func (c *Config) ApplyDefaults() {
	if c.Security.SessionCookieName == "" {
		c.Security.SessionCookieName = DefaultSessionCookieName
	}
	if c.Access.SignInPath == "" {
		c.Access.SignInPath = DefaultSignInPath
	}
	if c.Access.FallbackPath == "" {
		c.Access.FallbackPath = DefaultFallbackPath
	}
	if c.Redis.DashboardTTL <= 0 {
		c.Redis.DashboardTTL = 2 * time.Minute
	}
	if c.RateLimit.SignInPerMinute == 0 {
		c.RateLimit.SignInPerMinute = 10
	}
	if c.RateLimit.SignInBurst == 0 {
		c.RateLimit.SignInBurst = 5
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the config for container deployments where no yml is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			TrustProxy:        getEnv("HTTP_TRUST_PROXY", "false") == "true",
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnv("REDIS_ENABLED", "false") == "true",
			Address:      getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			DashboardTTL: getEnvAsDuration("REDIS_DASHBOARD_TTL", 2*time.Minute),
		},
		Security: SecurityConfig{
			AccessTokenSecret:    getEnv("JWT_ACCESS_SECRET", ""),
			RefreshTokenSecret:   getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			SessionCookieName:    getEnv("SESSION_COOKIE_NAME", DefaultSessionCookieName),
			SecureCookies:        getEnv("SECURE_COOKIES", "true") == "true",
		},
		Access: AccessConfig{
			SignInPath:   getEnv("ACCESS_SIGN_IN_PATH", DefaultSignInPath),
			FallbackPath: getEnv("ACCESS_FALLBACK_PATH", DefaultFallbackPath),
		},
		RateLimit: RateLimitConfig{
			SignInPerMinute: getEnvAsInt("SIGN_IN_PER_MINUTE", 10),
			SignInBurst:     getEnvAsInt("SIGN_IN_BURST", 5),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnv("METRICS_ENABLED", "true") == "true",
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Tracing: TracingConfig{
				Enabled:      getEnv("TRACING_ENABLED", "false") == "true",
				ServiceName:  getEnv("OTEL_SERVICE_NAME", "plant-dashboard"),
				SamplingRate: 1,
				Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
				Insecure:     getEnv("OTEL_EXPORTER_OTLP_INSECURE", "false") == "true",
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Access.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("access config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *AccessConfig) Validate() error {
	for _, p := range []string{c.SignInPath, c.FallbackPath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("redirect path %q must be absolute", p)
		}
	}
	if c.SignInPath == c.FallbackPath {
		return errors.New("sign_in_path and fallback_path must differ")
	}
	return nil
}
