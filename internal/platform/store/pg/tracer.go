package pg

import (
	"context"
	"strings"

	"pricepaid/internal/platform/logger"
)

// QueryEvent describes one completed statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events after execution
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

type logTracer struct {
	log *logger.Logger
}

// Tracer returns a QueryTracer that logs every statement through l
func Tracer(l logger.Logger) QueryTracer {
	return &logTracer{log: &l}
}

func (t *logTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	if t == nil || t.log == nil {
		return
	}

	e := t.log.Debug()
	switch {
	case ev.Err != nil:
		e = t.log.Error().Err(ev.Err)
	case ev.Slow:
		e = t.log.Warn()
	}

	e.Str("sql", compact(ev.SQL)).
		Int("args", len(ev.Args)).
		Int64("elapsed_us", ev.ElapsedUS).
		Bool("slow", ev.Slow).
		Msg("pg query")
}

// compact collapses whitespace so multi line sql logs on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
