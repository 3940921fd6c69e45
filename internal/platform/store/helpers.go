package store

import (
	"context"

	perr "pricepaid/internal/platform/errors"
)

// Exec runs a statement and discards the command tag
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	_, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return perr.DBf("exec: %v", err)
	}
	return nil
}

// ExecOne runs a statement that must affect exactly one row
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	ct, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return perr.DBf("exec: %v", err)
	}
	if ct.RowsAffected() != 1 {
		return perr.DBf("exec: expected 1 row affected, got %d", ct.RowsAffected())
	}
	return nil
}

// Scalar scans a single value from a single row query
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var out T
	if err := q.QueryRow(ctx, sql, args...).Scan(&out); err != nil {
		return out, perr.DBf("scalar: %v", err)
	}
	return out, nil
}

// One runs a query expected to yield one row and maps it via scan
func One[T any](ctx context.Context, q RowQuerier, sql string, scan func(Row) (T, error), args ...any) (T, error) {
	row := q.QueryRow(ctx, sql, args...)
	out, err := scan(row)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Many runs a query and maps every row via scan
func Many[T any](ctx context.Context, q RowQuerier, sql string, scan func(Rows) (T, error), args ...any) ([]T, error) {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.DBf("query: %v", err)
	}
	defer rs.Close()

	var out []T
	for rs.Next() {
		v, err := scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rs.Err(); err != nil {
		return nil, perr.DBf("rows: %v", err)
	}
	return out, nil
}
