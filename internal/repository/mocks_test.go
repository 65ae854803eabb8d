package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockRow implements pgx.Row for testing QueryRow-based methods.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockIDRows implements pgx.Rows over a list of int64 IDs.
type mockIDRows struct {
	data      []int64
	index     int
	errOnScan error
	errOnRows error
}

func (m *mockIDRows) Close() {}

func (m *mockIDRows) Err() error {
	return m.errOnRows
}

func (m *mockIDRows) Next() bool {
	if m.index < len(m.data) {
		m.index++
		return true
	}
	return false
}

func (m *mockIDRows) Scan(dest ...any) error {
	if m.errOnScan != nil {
		return m.errOnScan
	}
	if m.index > 0 && m.index <= len(m.data) {
		*(dest[0].(*int64)) = m.data[m.index-1]
	}
	return nil
}

func (m *mockIDRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockIDRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockIDRows) RawValues() [][]byte                          { return nil }
func (m *mockIDRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockIDRows) Conn() *pgx.Conn                              { return nil }

// mockPool implements PoolInterface and database.TxQuerier for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockIDRows{}, nil
}
