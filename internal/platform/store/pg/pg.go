// Package pg owns the pgx pool and its tracing hooks
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries the minimal pool settings
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG wraps a pgx pool together with the tracer the sql adapter emits to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Open parses the URL, applies pool settings and connects
// afterConnect, when non nil, runs on every new connection
func Open(ctx context.Context, cfg Config, tracer QueryTracer, afterConnect func(ctx context.Context, conn *pgx.Conn) error) (*PG, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("pg: empty url")
	}

	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if afterConnect != nil {
		pc.AfterConnect = afterConnect
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}

	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close releases the pool, safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
