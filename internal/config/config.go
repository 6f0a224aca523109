package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string        `validate:"required"`
	Port            int           `validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	IdleTimeout     time.Duration `validate:"gte=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// DataConfig locates the sales CSV. CSVURL takes precedence over CSVFile.
type DataConfig struct {
	CSVFile       string        `validate:"required_without=CSVURL"`
	CSVURL        string        `validate:"omitempty,url"`
	FetchTimeout  time.Duration `validate:"gt=0"`
	FetchRetries  int           `validate:"gte=0,lte=10"`
	RetryInterval time.Duration `validate:"gte=0"`
	LoadTimeout   time.Duration `validate:"gt=0"`
	CacheDir      string
}

type LoggerConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int `validate:"gt=0"`
	RateLimitBurst  int `validate:"gt=0"`
	AllowedOrigins  []string
	TrustedProxies  []string
}

var validate = validator.New()

// Load reads configuration from the environment. Variables in a .env file
// in the working directory fill in anything not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			CSVFile:       getEnvString("CSV_FILE", "public/adidas-sales.csv"),
			CSVURL:        getEnvString("CSV_URL", ""),
			FetchTimeout:  getEnvDuration("CSV_FETCH_TIMEOUT", 10*time.Second),
			FetchRetries:  getEnvInt("CSV_FETCH_RETRIES", 2),
			RetryInterval: getEnvDuration("CSV_RETRY_INTERVAL", 500*time.Millisecond),
			LoadTimeout:   getEnvDuration("CSV_LOAD_TIMEOUT", 30*time.Second),
			CacheDir:      getEnvString("CACHE_DIR", ".cache"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(getEnvString("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvString("LOG_FORMAT", "json")),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
