package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is assembled from environment variables at startup. Malformed
// values fail the load instead of silently falling back, so a typo in a
// deployment manifest surfaces immediately.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	Secure   bool // issue HTTPS-only session cookies
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func Load() (*Config, error) {
	var e envReader

	cfg := &Config{
		Server: ServerConfig{
			Host:     e.str("SERVER_HOST", "0.0.0.0"),
			Port:     e.num("SERVER_PORT", 8080),
			Secure:   e.flag("SERVER_SECURE", false),
			LogLevel: e.str("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     e.str("DB_HOST", "localhost"),
			Port:     e.num("DB_PORT", 5432),
			User:     e.str("DB_USER", "socialgraph"),
			Password: e.str("DB_PASSWORD", "socialgraph"),
			Name:     e.str("DB_NAME", "socialgraph"),
			SSLMode:  e.str("DB_SSLMODE", "disable"),
			MaxConns: int32(e.num("DB_MAX_CONNS", 25)),
			MinConns: int32(e.num("DB_MIN_CONNS", 5)),
		},
		Redis: RedisConfig{
			Host:     e.str("REDIS_HOST", "localhost"),
			Port:     e.num("REDIS_PORT", 6379),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.num("REDIS_DB", 0),
		},
	}

	if e.err != nil {
		return nil, e.err
	}
	return cfg, nil
}

// envReader keeps the first parse failure so Load can report it after
// building the whole struct.
type envReader struct {
	err error
}

func (e *envReader) str(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (e *envReader) num(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value)
		return fallback
	}
	return n
}

func (e *envReader) flag(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value)
		return fallback
	}
	return b
}

func (e *envReader) fail(key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid value %q for %s", value, key)
	}
}
