// Package fieldnorm provides deterministic field cleanup for pipeline input
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Remove zero-width and format chars
// 3 Trim surrounding whitespace
// Null sentinels (empty, NaN, null, inf forms) collapse to an explicit null
package fieldnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
		)
	},
}

// Sanitize repairs UTF-8, strips format characters and trims whitespace
// it is applied to every field before it enters the pipeline so key
// comparison sees stable bytes
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return strings.TrimSpace(ns)
}

// IsNullSentinel reports whether s is one of the missing-value spellings the
// source uses: empty, NaN, null, or a positive or negative infinity form
// matching is case insensitive after trimming
func IsNullSentinel(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	switch strings.ToLower(t) {
	case "nan", "null", "inf", "+inf", "-inf", "infinity", "+infinity", "-infinity":
		return true
	}
	return false
}

// Null maps a field value to its nullable form
// sentinel spellings become nil, everything else passes through unchanged
// Null is idempotent: Null(Denull(Null(s))) == Null(s)
func Null(s string) *string {
	if IsNullSentinel(s) {
		return nil
	}
	v := s
	return &v
}

// Denull maps a nullable form back to the flat string form, nil becomes ""
func Denull(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
