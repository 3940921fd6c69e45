// Package artifact owns the materialized deduplicated dataset on disk
//
// Two files are kept side by side: a csv with an explicit header for
// re-querying with ordinary tools, and an ndjson file the lookup path scans.
// Both are written to temp files and renamed into place under a write lock,
// so a reader sees the previous complete artifact or the new one, never a
// partial write.
package artifact

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"pricepaid/internal/core/fieldnorm"
	"pricepaid/internal/core/records"
	perr "pricepaid/internal/platform/errors"
)

const (
	csvName    = "deduplicated.csv"
	ndjsonName = "deduplicated.ndjson"
)

// Store reads and writes the materialized artifact pair under dir
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New creates a Store rooted at dir
func New(dir string) *Store { return &Store{dir: dir} }

// CSVPath returns the tabular artifact location
func (s *Store) CSVPath() string { return filepath.Join(s.dir, csvName) }

// NDJSONPath returns the lookup artifact location
func (s *Store) NDJSONPath() string { return filepath.Join(s.dir, ndjsonName) }

// Exists reports whether a complete artifact pair is present
func (s *Store) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := os.Stat(s.CSVPath()); err != nil {
		return false
	}
	_, err := os.Stat(s.NDJSONPath())
	return err == nil
}

// Write materializes rs as the new artifact pair
//
// Both temp files are written and synced fully before either rename happens,
// so a failure on either side leaves the previous artifact untouched.
func (s *Store) Write(rs []records.Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return perr.Internalf("artifact dir: %v", err)
	}

	csvTmp := s.CSVPath() + ".tmp"
	ndTmp := s.NDJSONPath() + ".tmp"

	if err := writeCSV(csvTmp, rs); err != nil {
		_ = os.Remove(csvTmp)
		return err
	}
	if err := writeNDJSON(ndTmp, rs); err != nil {
		_ = os.Remove(csvTmp)
		_ = os.Remove(ndTmp)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(csvTmp, s.CSVPath()); err != nil {
		_ = os.Remove(csvTmp)
		_ = os.Remove(ndTmp)
		return perr.Internalf("publish csv artifact: %v", err)
	}
	if err := os.Rename(ndTmp, s.NDJSONPath()); err != nil {
		_ = os.Remove(ndTmp)
		return perr.Internalf("publish ndjson artifact: %v", err)
	}
	return nil
}

// OpenNDJSON opens the lookup artifact for scanning
// the read lock only covers the open; an already-open descriptor keeps
// serving the old file even if a writer renames over it
func (s *Store) OpenNDJSON() (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := os.Open(s.NDJSONPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("no deduplicated artifact yet, run the pipeline first")
		}
		return nil, perr.Internalf("open artifact: %v", err)
	}
	return f, nil
}

func writeCSV(path string, rs []records.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return perr.Internalf("create csv temp: %v", err)
	}
	w := csv.NewWriter(f)

	if err := w.Write(records.Header()); err != nil {
		_ = f.Close()
		return perr.Internalf("write csv header: %v", err)
	}
	for _, r := range rs {
		// nulls appear as empty csv fields, the header makes the schema explicit
		row := r.Row()
		for i, v := range row {
			if fieldnorm.IsNullSentinel(v) {
				row[i] = ""
			}
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return perr.Internalf("write csv row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return perr.Internalf("flush csv: %v", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return perr.Internalf("sync csv: %v", err)
	}
	return f.Close()
}

func writeNDJSON(path string, rs []records.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return perr.Internalf("create ndjson temp: %v", err)
	}
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, r := range rs {
		if err := enc.Encode(r.ToWire()); err != nil {
			_ = f.Close()
			return perr.Internalf("write ndjson row: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return perr.Internalf("flush ndjson: %v", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return perr.Internalf("sync ndjson: %v", err)
	}
	return f.Close()
}
