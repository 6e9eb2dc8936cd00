package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// rowFromValues builds a Row whose Scan copies the given values into the
// destination pointers in order.
func rowFromValues(values ...any) Row {
	return fakeRow{scanFunc: func(dest ...any) error {
		return scanInto(dest, values)
	}}
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.idx-1])
}

type fakeCommandTag struct {
	rowsAffected int64
}

func (t fakeCommandTag) RowsAffected() int64 { return t.rowsAffected }

type fakeDB struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	BeginFunc    func(ctx context.Context) (Tx, error)
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if db.QueryFunc != nil {
		return db.QueryFunc(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if db.QueryRowFunc != nil {
		return db.QueryRowFunc(ctx, sql, args...)
	}
	return fakeRow{scanFunc: func(dest ...any) error { return nil }}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if db.ExecFunc != nil {
		return db.ExecFunc(ctx, sql, args...)
	}
	return fakeCommandTag{rowsAffected: 1}, nil
}

// Begin hands back a transaction sharing the fake's query funcs, so tests
// written against the pool surface also drive transactional code paths.
func (db *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if db.BeginFunc != nil {
		return db.BeginFunc(ctx)
	}
	return &fakeTx{fakeDB: db}, nil
}

type fakeTx struct {
	*fakeDB
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	if tx.CommitFunc != nil {
		return tx.CommitFunc(ctx)
	}
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	if tx.RollbackFunc != nil {
		return tx.RollbackFunc(ctx)
	}
	return nil
}

type fakeKV struct {
	SetFunc func(ctx context.Context, key, value string, ttl time.Duration) error
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	DelFunc func(ctx context.Context, key string) error
}

func (kv *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if kv.SetFunc != nil {
		return kv.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

func (kv *fakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	if kv.GetFunc != nil {
		return kv.GetFunc(ctx, key)
	}
	return "", false, nil
}

func (kv *fakeKV) Del(ctx context.Context, key string) error {
	if kv.DelFunc != nil {
		return kv.DelFunc(ctx, key)
	}
	return nil
}

func scanInto(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan destination count %d does not match %d values", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = v.(uuid.UUID)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *int:
			*d = v.(int)
		case *int64:
			*d = v.(int64)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("unsupported scan destination %T", dest[i])
		}
	}
	return nil
}
