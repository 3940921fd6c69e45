package ppcsv

import (
	"encoding/csv"
	"io"
	"os"

	"pricepaid/internal/core/fieldnorm"
	"pricepaid/internal/core/records"
	perr "pricepaid/internal/platform/errors"
	"pricepaid/internal/platform/logger"
)

// Policy decides what a malformed row does to the run
// the choice is fixed per run, never per line
type Policy string

const (
	// AbortOnParseError fails the whole run on the first malformed row
	AbortOnParseError Policy = "abort"
	// SkipAndCount drops malformed rows, counts them and logs a sample
	SkipAndCount Policy = "skip"
)

// Valid reports whether p is a known policy
func (p Policy) Valid() bool { return p == AbortOnParseError || p == SkipAndCount }

// Stats summarizes what a reader has consumed so far
type Stats struct {
	Rows    int
	Skipped int
	Batches int
}

// BatchReader yields fixed-size batches of parsed rows from the raw file
// single pass, not restartable mid-iteration; memory is bounded by batchSize
type BatchReader struct {
	f         *os.File
	cr        *csv.Reader
	batchSize int
	policy    Policy
	sanitize  bool
	stats     Stats
	err       error
	sampled   bool // logs at most one skipped-row sample per reader
}

// Option tunes an opened BatchReader
type Option func(*BatchReader)

// WithSanitize enables per-field cleanup (UTF-8 repair, format-rune strip,
// whitespace trim) on parse. Off by default: fields are opaque bytes and the
// dedup key compares them byte for byte, so cleanup changes which rows count
// as duplicates.
func WithSanitize() Option {
	return func(r *BatchReader) { r.sanitize = true }
}

// OpenBatches opens path for a fresh full read
// a second call re-reads from the start, there is no resume
func OpenBatches(path string, batchSize int, policy Policy, opts ...Option) (*BatchReader, error) {
	if batchSize <= 0 {
		return nil, perr.InvalidArgf("batch size must be positive, got %d", batchSize)
	}
	if !policy.Valid() {
		return nil, perr.InvalidArgf("unknown parse policy %q", policy)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.SourceMissingf("raw dataset not found, fetch it first")
		}
		return nil, perr.Fetchf("open raw dataset: %v", err)
	}

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = records.FieldCount
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	r := &BatchReader{f: f, cr: cr, batchSize: batchSize, policy: policy}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Next returns the next batch, io.EOF after the last one
// the final batch may be shorter than batchSize
func (r *BatchReader) Next() ([]records.Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	batch := make([]records.Record, 0, r.batchSize)
	for len(batch) < r.batchSize {
		row, err := r.cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if r.policy == SkipAndCount {
				r.stats.Skipped++
				if !r.sampled {
					r.sampled = true
					logger.Named("ppcsv").Warn().
						Err(err).
						Msg("skipping malformed row")
				}
				continue
			}
			r.err = perr.Parsef("row %d: %v", r.stats.Rows+r.stats.Skipped+1, err)
			r.close()
			return nil, r.err
		}

		if r.sanitize {
			for i := range row {
				row[i] = fieldnorm.Sanitize(row[i])
			}
		}
		batch = append(batch, records.FromRow(row))
		r.stats.Rows++
	}

	if len(batch) == 0 {
		r.err = io.EOF
		r.close()
		return nil, io.EOF
	}
	r.stats.Batches++
	return batch, nil
}

// Stats returns the totals consumed so far
func (r *BatchReader) Stats() Stats { return r.stats }

// Close releases the underlying file, safe to call more than once
func (r *BatchReader) Close() error {
	if r.err == nil {
		r.err = io.EOF
	}
	return r.close()
}

func (r *BatchReader) close() error {
	if r.f == nil {
		return nil
	}
	f := r.f
	r.f = nil
	return f.Close()
}
