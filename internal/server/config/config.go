// Package config loads server configuration from .env, environment, an optional
// config file and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/iudanet/deltasync/internal/logging"
	"github.com/iudanet/deltasync/internal/server/storage/sqlstore"
)

// EnvPrefix префикс переменных окружения сервера
const EnvPrefix = "DELTASYNC"

// Ключи конфигурации
const (
	KeyHTTPAddr            = "http.addr"
	KeyHTTPReadTimeout     = "http.read_timeout"
	KeyHTTPWriteTimeout    = "http.write_timeout"
	KeyHTTPShutdownTimeout = "http.shutdown_timeout"
	KeyDBDriver            = "db.driver"
	KeyDBDSN               = "db.dsn"
	KeyAuthSecret          = "auth.secret"
	KeyAuthTokenTTL        = "auth.token_ttl"
	KeyRateLimitRequests   = "ratelimit.requests"
	KeyRateLimitWindow     = "ratelimit.window"
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"
	KeyLogFile             = "log.file"
	KeyAdminServer         = "admin.server"
	KeyAdminToken          = "admin.token"
)

// Config конфигурация сервера
type Config struct {
	Log       logging.Config
	HTTP      HTTPConfig
	DB        DBConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

// HTTPConfig настройки HTTP сервера
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DBConfig настройки хранилища записей
type DBConfig struct {
	Driver string
	DSN    string
}

// AuthConfig настройки JWT. Пустой Secret отключает аутентификацию
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// RateLimitConfig настройки rate limiter. Requests <= 0 отключает ограничение
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// AdminConfig адрес работающего сервера и admin токен для команд import и snapshot
type AdminConfig struct {
	Server string
	Token  string
}

// New создает viper с дефолтами и привязкой к окружению
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyHTTPReadTimeout, 15*time.Second)
	v.SetDefault(KeyHTTPWriteTimeout, 60*time.Second)
	v.SetDefault(KeyHTTPShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyDBDriver, sqlstore.DriverSQLite)
	v.SetDefault(KeyDBDSN, "deltasync.db")
	v.SetDefault(KeyAuthSecret, "")
	v.SetDefault(KeyAuthTokenTTL, 30*24*time.Hour)
	v.SetDefault(KeyRateLimitRequests, 120)
	v.SetDefault(KeyRateLimitWindow, time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatText)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyAdminServer, "http://localhost:8080")
	v.SetDefault(KeyAdminToken, "")

	// http.addr -> DELTASYNC_HTTP_ADDR
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load читает .env (если есть), файл конфигурации (если задан) и собирает Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString(KeyHTTPAddr),
			ReadTimeout:     v.GetDuration(KeyHTTPReadTimeout),
			WriteTimeout:    v.GetDuration(KeyHTTPWriteTimeout),
			ShutdownTimeout: v.GetDuration(KeyHTTPShutdownTimeout),
		},
		DB: DBConfig{
			Driver: v.GetString(KeyDBDriver),
			DSN:    v.GetString(KeyDBDSN),
		},
		Auth: AuthConfig{
			Secret:   v.GetString(KeyAuthSecret),
			TokenTTL: v.GetDuration(KeyAuthTokenTTL),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt(KeyRateLimitRequests),
			Window:   v.GetDuration(KeyRateLimitWindow),
		},
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		Admin: AdminConfig{
			Server: v.GetString(KeyAdminServer),
			Token:  v.GetString(KeyAdminToken),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr must not be empty")
	}
	if c.DB.Driver != sqlstore.DriverSQLite && c.DB.Driver != sqlstore.DriverPostgres {
		return fmt.Errorf("db.driver must be %q or %q, got %q", sqlstore.DriverSQLite, sqlstore.DriverPostgres, c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn must not be empty")
	}
	if c.Auth.Secret != "" && c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.window must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
