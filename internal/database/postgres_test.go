package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"socialgraph/internal/config"
)

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		Name: "social", SSLMode: "disable",
		MaxConns: 12, MinConns: 2,
	}
}

func TestNewPostgresDB_ParseError(t *testing.T) {
	origParse := parsePGConfig
	t.Cleanup(func() { parsePGConfig = origParse })
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return nil, errors.New("bad dsn")
	}

	_, err := NewPostgresDB(context.Background(), testDBConfig())
	if err == nil || !strings.Contains(err.Error(), "parsing database config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewPostgresDB_PoolError(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
	})

	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return &pgxpool.Config{}, nil
	}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("connect refused")
	}

	_, err := NewPostgresDB(context.Background(), testDBConfig())
	if err == nil || !strings.Contains(err.Error(), "creating connection pool") {
		t.Fatalf("expected pool error, got %v", err)
	}
}

func TestNewPostgresDB_PingErrorClosesPool(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	origClose := closePGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
		closePGPool = origClose
	})

	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return &pgxpool.Config{}, nil
	}
	pool := &pgxpool.Pool{}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return pool, nil
	}
	pingPGPool = func(ctx context.Context, p *pgxpool.Pool) error {
		return errors.New("ping failed")
	}
	closed := false
	closePGPool = func(p *pgxpool.Pool) { closed = true }

	_, err := NewPostgresDB(context.Background(), testDBConfig())
	if err == nil || !strings.Contains(err.Error(), "pinging database") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if !closed {
		t.Fatal("expected pool to be closed after ping failure")
	}
}

func TestNewPostgresDB_PoolSizedFromConfig(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
	})

	poolCfg := &pgxpool.Config{}
	var gotDSN string
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		gotDSN = dsn
		return poolCfg, nil
	}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return &pgxpool.Pool{}, nil
	}
	pingPGPool = func(ctx context.Context, p *pgxpool.Pool) error {
		return nil
	}

	cfg := testDBConfig()
	db, err := NewPostgresDB(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db == nil || db.Pool == nil {
		t.Fatal("expected database with pool")
	}
	if gotDSN != cfg.DSN() {
		t.Fatalf("expected DSN from config, got %q", gotDSN)
	}
	if poolCfg.MaxConns != 12 || poolCfg.MinConns != 2 {
		t.Fatalf("expected pool limits from config, got max=%d min=%d", poolCfg.MaxConns, poolCfg.MinConns)
	}
}
