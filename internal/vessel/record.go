// Package vessel defines the canonical vessel record, its field vocabulary,
// and the merge rule used to fuse values from multiple extraction passes.
package vessel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Placeholder tokens that count as "no value" wherever they appear.
var placeholders = map[string]struct{}{
	"":     {},
	"-":    {},
	"n/a":  {},
	"na":   {},
	"none": {},
	"null": {},
}

// IsPlaceholder reports whether v carries no information.
func IsPlaceholder(v string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Record is one vessel's extracted attributes keyed by canonical field, plus
// an Other bucket for labels the vocabulary does not cover. IMO, SourceURL,
// and ExtractedAt are provenance and never count toward substantiveness.
type Record struct {
	IMO         int
	SourceURL   string
	ExtractedAt time.Time

	Fields map[Field]string
	Other  map[string]string
}

// NewRecord returns an empty record for the given identifier.
func NewRecord(imo int) *Record {
	return &Record{
		IMO:    imo,
		Fields: make(map[Field]string),
		Other:  make(map[string]string),
	}
}

// Get returns the value for f, or "" when unset.
func (r *Record) Get(f Field) string {
	return r.Fields[f]
}

// Substantive reports whether the record carries at least one non-provenance
// value. Records failing this check are dropped rather than persisted.
func (r *Record) Substantive() bool {
	return len(r.Fields) > 0 || len(r.Other) > 0
}

// FieldCount is the total number of captured values, canonical and other.
func (r *Record) FieldCount() int {
	return len(r.Fields) + len(r.Other)
}

// MarshalJSON emits the flat persisted shape: provenance keys plus one key
// per captured field, e.g. {"source_identifier":"9872365",
// "identification.name":"ADHAR TUG", ...}. Keys are sorted so files diff
// cleanly across re-extractions.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, r.FieldCount()+3)
	flat["source_identifier"] = fmt.Sprintf("%d", r.IMO)
	if r.SourceURL != "" {
		flat["source_url"] = r.SourceURL
	}
	if !r.ExtractedAt.IsZero() {
		flat["extracted_at"] = r.ExtractedAt.UTC().Format(time.RFC3339)
	}
	for f, v := range r.Fields {
		flat[string(f)] = v
	}
	for label, v := range r.Other {
		flat["other."+label] = v
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kj, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vj, err := json.Marshal(flat[k])
		if err != nil {
			return nil, err
		}
		b.Write(kj)
		b.WriteByte(':')
		b.Write(vj)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
