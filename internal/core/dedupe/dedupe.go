// Package dedupe collapses price paid rows that share a composite address key
//
// The engine consumes batches strictly in arrival order and keeps the first
// record seen for every key. Survivors come back in first-insertion order so
// the output is identical for any batch partition of the same row sequence.
// The key index lives in memory: cost is O(distinct keys), not O(rows). A key
// space too large for memory would need an external merge, which this engine
// does not attempt.
package dedupe

import (
	"pricepaid/internal/core/records"
)

// Engine accumulates batches and exposes the surviving record set
// not safe for concurrent use, feed it from a single goroutine
type Engine struct {
	seen  map[records.Key]struct{}
	out   []records.Record
	rows  int
	dupes int
}

// New returns an empty engine
func New() *Engine {
	return &Engine{seen: make(map[records.Key]struct{})}
}

// Absorb folds one batch into the engine
//
// Phase one collapses duplicates inside the batch while preserving order.
// Phase two merges the batch survivors into the cross-batch index, which is
// the pass that actually establishes global uniqueness: duplicates routinely
// span batch boundaries, so the per-batch step alone is only an optimization.
func (e *Engine) Absorb(batch []records.Record) {
	e.rows += len(batch)

	local := make(map[records.Key]struct{}, len(batch))
	survivors := batch[:0:0]
	for _, r := range batch {
		k := r.Key()
		if _, dup := local[k]; dup {
			e.dupes++
			continue
		}
		local[k] = struct{}{}
		survivors = append(survivors, r)
	}

	for _, r := range survivors {
		k := r.Key()
		if _, dup := e.seen[k]; dup {
			e.dupes++
			continue
		}
		e.seen[k] = struct{}{}
		e.out = append(e.out, r)
	}
}

// Records returns the surviving records in first-insertion order
// the returned slice is owned by the engine, callers must not mutate it
func (e *Engine) Records() []records.Record { return e.out }

// Rows returns the total number of rows absorbed
func (e *Engine) Rows() int { return e.rows }

// Distinct returns the number of surviving records
func (e *Engine) Distinct() int { return len(e.out) }

// Dupes returns the number of discarded duplicate rows
func (e *Engine) Dupes() int { return e.dupes }
