// Package service implements point lookups over the materialized artifact
package service

import (
	"bufio"
	"context"
	"encoding/json"

	"pricepaid/internal/adapters/artifact"
	"pricepaid/internal/core/records"
	"pricepaid/internal/platform/logger"

	perr "pricepaid/internal/platform/errors"
)

// line scanning buffer bounds, artifact rows are short but quoted
// address fields can stretch
const (
	scanBufStart = 64 * 1024
	scanBufMax   = 1 << 20
)

// Service implements domain.ServicePort
type Service struct {
	art *artifact.Store
	log logger.Logger
}

// New constructs the lookup service over art
func New(art *artifact.Store, log logger.Logger) *Service {
	return &Service{art: art, log: log}
}

// GetByID scans the ndjson artifact for the first record with the given id
//
// Renormalization on the way out keeps sentinel spellings collapsed even if
// an older artifact on disk still carries them.
func (s *Service) GetByID(ctx context.Context, id string) (records.Wire, error) {
	if id == "" {
		return records.Wire{}, perr.InvalidArgf("empty id")
	}

	f, err := s.art.OpenNDJSON()
	if err != nil {
		// artifact absent is one of the two not-found reasons
		s.log.Debug().Str("id", id).Msg("lookup before any pipeline run")
		return records.Wire{}, err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, scanBufStart), scanBufMax)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return records.Wire{}, perr.Internalf("lookup canceled: %v", err)
		}
		var w records.Wire
		if err := json.Unmarshal(sc.Bytes(), &w); err != nil {
			// a malformed artifact line is an internal problem, not a miss
			return records.Wire{}, perr.Internalf("corrupt artifact row: %v", err)
		}
		if w.ID != nil && *w.ID == id {
			return w.Renormalize(), nil
		}
	}
	if err := sc.Err(); err != nil {
		return records.Wire{}, perr.Internalf("scan artifact: %v", err)
	}

	// either the id never existed or its row lost the dedup collapse,
	// externally the same kind
	return records.Wire{}, perr.NotFoundf("no record with id %q", id)
}
