// Package records defines the price paid row, its composite address key and
// the serialized forms the pipeline reads and writes
package records

import (
	"pricepaid/internal/core/fieldnorm"
)

// FieldCount is the fixed positional column count of the raw source file
const FieldCount = 16

// Record is one price paid transaction row
// every field is an opaque string as supplied by the source; the last two
// columns (ppd category, record status) ride along untouched
type Record struct {
	ID          string
	Price       string
	Date        string
	Postcode    string
	Type        string
	IsNew       string
	Duration    string
	Code        string
	HouseNumber string
	Street      string
	Locality    string
	Town        string
	District    string
	County      string
	PPDCategory string
	Status      string
}

// Key is the composite address identity duplicates are collapsed under
// comparison is byte for byte, empty components included
type Key struct {
	Street   string
	Locality string
	Town     string
	District string
	County   string
}

// Key returns the dedup key for r
func (r Record) Key() Key {
	return Key{
		Street:   r.Street,
		Locality: r.Locality,
		Town:     r.Town,
		District: r.District,
		County:   r.County,
	}
}

// FromRow maps a positional csv row onto a Record
// callers guarantee len(row) == FieldCount
func FromRow(row []string) Record {
	return Record{
		ID:          row[0],
		Price:       row[1],
		Date:        row[2],
		Postcode:    row[3],
		Type:        row[4],
		IsNew:       row[5],
		Duration:    row[6],
		Code:        row[7],
		HouseNumber: row[8],
		Street:      row[9],
		Locality:    row[10],
		Town:        row[11],
		District:    row[12],
		County:      row[13],
		PPDCategory: row[14],
		Status:      row[15],
	}
}

// Row flattens r back into the positional column order of the source
func (r Record) Row() []string {
	return []string{
		r.ID, r.Price, r.Date, r.Postcode, r.Type, r.IsNew, r.Duration,
		r.Code, r.HouseNumber, r.Street, r.Locality, r.Town, r.District,
		r.County, r.PPDCategory, r.Status,
	}
}

// Header is the column header written to the tabular artifact
// the raw source is headerless, the artifact is not
func Header() []string {
	return []string{
		"id", "price", "date", "postcode", "type", "is_new", "duration",
		"code", "house_number", "street", "locality", "town", "district",
		"county", "ppd_category", "status",
	}
}

// Wire is the json form of a Record with sentinel values collapsed to null
type Wire struct {
	ID          *string `json:"id"`
	Price       *string `json:"price"`
	Date        *string `json:"date"`
	Postcode    *string `json:"postcode"`
	Type        *string `json:"type"`
	IsNew       *string `json:"is_new"`
	Duration    *string `json:"duration"`
	Code        *string `json:"code"`
	HouseNumber *string `json:"house_number"`
	Street      *string `json:"street"`
	Locality    *string `json:"locality"`
	Town        *string `json:"town"`
	District    *string `json:"district"`
	County      *string `json:"county"`
	PPDCategory *string `json:"ppd_category"`
	Status      *string `json:"status"`
}

// ToWire converts r to its json form, mapping null sentinels to json null
func (r Record) ToWire() Wire {
	n := fieldnorm.Null
	return Wire{
		ID:          n(r.ID),
		Price:       n(r.Price),
		Date:        n(r.Date),
		Postcode:    n(r.Postcode),
		Type:        n(r.Type),
		IsNew:       n(r.IsNew),
		Duration:    n(r.Duration),
		Code:        n(r.Code),
		HouseNumber: n(r.HouseNumber),
		Street:      n(r.Street),
		Locality:    n(r.Locality),
		Town:        n(r.Town),
		District:    n(r.District),
		County:      n(r.County),
		PPDCategory: n(r.PPDCategory),
		Status:      n(r.Status),
	}
}

// FromWire converts a json form back into a Record
// normalization is idempotent so a round trip through storage is stable
func FromWire(w Wire) Record {
	d := fieldnorm.Denull
	return Record{
		ID:          d(w.ID),
		Price:       d(w.Price),
		Date:        d(w.Date),
		Postcode:    d(w.Postcode),
		Type:        d(w.Type),
		IsNew:       d(w.IsNew),
		Duration:    d(w.Duration),
		Code:        d(w.Code),
		HouseNumber: d(w.HouseNumber),
		Street:      d(w.Street),
		Locality:    d(w.Locality),
		Town:        d(w.Town),
		District:    d(w.District),
		County:      d(w.County),
		PPDCategory: d(w.PPDCategory),
		Status:      d(w.Status),
	}
}

// Renormalize reapplies sentinel collapsing to a Wire read back from storage
// defensive against artifacts written by an older build
func (w Wire) Renormalize() Wire {
	re := func(p *string) *string {
		if p == nil {
			return nil
		}
		return fieldnorm.Null(*p)
	}
	return Wire{
		ID:          re(w.ID),
		Price:       re(w.Price),
		Date:        re(w.Date),
		Postcode:    re(w.Postcode),
		Type:        re(w.Type),
		IsNew:       re(w.IsNew),
		Duration:    re(w.Duration),
		Code:        re(w.Code),
		HouseNumber: re(w.HouseNumber),
		Street:      re(w.Street),
		Locality:    re(w.Locality),
		Town:        re(w.Town),
		District:    re(w.District),
		County:      re(w.County),
		PPDCategory: re(w.PPDCategory),
		Status:      re(w.Status),
	}
}
