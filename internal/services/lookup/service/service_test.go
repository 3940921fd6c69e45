package service

import (
	"context"
	"testing"

	"pricepaid/internal/adapters/artifact"
	"pricepaid/internal/core/dedupe"
	"pricepaid/internal/core/records"
	"pricepaid/internal/platform/logger"

	perr "pricepaid/internal/platform/errors"
)

func rec(id, street, locality string) records.Record {
	return records.Record{
		ID:       id,
		Price:    "180000",
		Date:     "2021-03-01 00:00",
		Postcode: "M1 1AE",
		Street:   street,
		Locality: locality,
		Town:     "MANCHESTER",
	}
}

func newLookup(t *testing.T, rs []records.Record) *Service {
	t.Helper()
	art := artifact.New(t.TempDir())
	if rs != nil {
		if err := art.Write(rs); err != nil {
			t.Fatalf("seed artifact: %v", err)
		}
	}
	return New(art, *logger.Named("test"))
}

func TestGetByID_Hit(t *testing.T) {
	s := newLookup(t, []records.Record{
		rec("{A}", "DEANSGATE", ""),
		rec("{B}", "OXFORD ROAD", "RUSHOLME"),
	})

	w, err := s.GetByID(context.Background(), "{B}")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if w.ID == nil || *w.ID != "{B}" {
		t.Fatalf("id = %v", w.ID)
	}
	if w.Street == nil || *w.Street != "OXFORD ROAD" {
		t.Fatalf("street = %v", w.Street)
	}
	if w.Locality == nil || *w.Locality != "RUSHOLME" {
		t.Fatalf("locality = %v", w.Locality)
	}
}

func TestGetByID_EmptyFieldsComeBackNull(t *testing.T) {
	s := newLookup(t, []records.Record{rec("{A}", "DEANSGATE", "")})

	w, err := s.GetByID(context.Background(), "{A}")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if w.Locality != nil {
		t.Fatalf("locality = %q, want null", *w.Locality)
	}
	if w.HouseNumber != nil {
		t.Fatal("house_number must be null")
	}
}

func TestGetByID_SentinelValuesRenormalized(t *testing.T) {
	r := rec("{A}", "DEANSGATE", "")
	r.Postcode = "NaN"
	s := newLookup(t, []records.Record{r})

	w, err := s.GetByID(context.Background(), "{A}")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if w.Postcode != nil {
		t.Fatalf("postcode = %q, want null", *w.Postcode)
	}
}

func TestGetByID_UnknownID(t *testing.T) {
	s := newLookup(t, []records.Record{rec("{A}", "DEANSGATE", "")})

	_, err := s.GetByID(context.Background(), "{ZZZ}")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want NotFound, got %v", err)
	}
}

func TestGetByID_DroppedDuplicateIsNotFound(t *testing.T) {
	// two rows at the same address, only the first survives into the artifact
	engine := dedupe.New()
	engine.Absorb([]records.Record{
		rec("{A}", "DEANSGATE", ""),
		rec("{B}", "DEANSGATE", ""),
	})
	art := artifact.New(t.TempDir())
	if err := art.Write(engine.Records()); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	s := New(art, *logger.Named("test"))

	if _, err := s.GetByID(context.Background(), "{A}"); err != nil {
		t.Fatalf("survivor must resolve: %v", err)
	}
	_, err := s.GetByID(context.Background(), "{B}")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want NotFound for the dropped row, got %v", err)
	}
}

func TestGetByID_NoArtifactYet(t *testing.T) {
	s := newLookup(t, nil)
	_, err := s.GetByID(context.Background(), "{A}")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want NotFound before any run, got %v", err)
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	s := newLookup(t, nil)
	_, err := s.GetByID(context.Background(), "")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}
