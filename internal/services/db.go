package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Row mirrors the single-row scan surface of pgx.
type Row interface {
	Scan(dest ...any) error
}

// Rows mirrors the multi-row surface of pgx.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// CommandTag exposes the result of a statement execution.
type CommandTag interface {
	RowsAffected() int64
}

// Querier is the read/write query surface shared by a pool and a
// transaction. Services are written against it so tests can substitute
// fakes without a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
}

// Tx is a transaction handle. Rollback after Commit is a no-op, which
// allows the usual defer-rollback pattern.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBConn is the full store contract services depend on.
type DBConn interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
}

// PoolAdapter adapts a pgxpool.Pool to DBConn.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

func (a *PoolAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

func (a *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return a.pool.QueryRow(ctx, sql, args...)
}

func (a *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (a *PoolAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{tx: tx}, nil
}

type txAdapter struct {
	tx pgx.Tx
}

func (a *txAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := a.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

func (a *txAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return a.tx.QueryRow(ctx, sql, args...)
}

func (a *txAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	tag, err := a.tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (a *txAdapter) Commit(ctx context.Context) error {
	return a.tx.Commit(ctx)
}

func (a *txAdapter) Rollback(ctx context.Context) error {
	return a.tx.Rollback(ctx)
}

// pgxRows narrows pgx.Rows to the Rows interface.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() { r.Rows.Close() }

// KVStore is the session-store surface backed by redis.
type KVStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Del(ctx context.Context, key string) error
}

// RedisAdapter adapts a redis.Client to KVStore.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return a.client.Set(ctx, key, value, ttl).Err()
}

func (a *RedisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := a.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (a *RedisAdapter) Del(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}
