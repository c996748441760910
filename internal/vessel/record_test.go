package vessel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMergerLongerValueWins(t *testing.T) {
	t.Parallel()

	m := NewMerger(nil)
	r := NewRecord(9872365)

	// Structured pass, then generative pass with more complete text.
	m.Apply(r, FieldName, "ADHAR")
	m.Apply(r, FieldFlag, "")
	m.Apply(r, FieldName, "ADHAR TUG")
	m.Apply(r, FieldFlag, "Indonesia")

	require.Equal(t, "ADHAR TUG", r.Get(FieldName))
	require.Equal(t, "Indonesia", r.Get(FieldFlag))
}

func TestMergerShorterValueLoses(t *testing.T) {
	t.Parallel()

	m := NewMerger(nil)
	r := NewRecord(9872365)

	m.Apply(r, FieldName, "ADHAR TUG")
	m.Apply(r, FieldName, "ADHAR")

	require.Equal(t, "ADHAR TUG", r.Get(FieldName))
}

func TestMergerNegativeSignalGuard(t *testing.T) {
	t.Parallel()

	m := NewMerger(nil)
	r := NewRecord(9872365)

	// A stated absence arrives first (generative pass), then a real value
	// from the heuristic pass: the real value must win despite being shorter.
	m.Apply(r, FieldFlag, "not specified")
	m.Apply(r, FieldFlag, "Luxembourg")
	require.Equal(t, "Luxembourg", r.Get(FieldFlag))

	// And the reverse order: the absence never overwrites the real value,
	// regardless of string length.
	m.Apply(r, FieldFlag, "not specified in the source document")
	require.Equal(t, "Luxembourg", r.Get(FieldFlag))
}

func TestMergerCustomNegativePhrases(t *testing.T) {
	t.Parallel()

	m := NewMerger([]string{"sin datos"})
	r := NewRecord(9872365)

	m.Apply(r, FieldFlag, "Panama")
	m.Apply(r, FieldFlag, "sin datos disponibles")
	require.Equal(t, "Panama", r.Get(FieldFlag))

	// The default phrases are not active when a custom set is supplied.
	require.False(t, m.IsNegative("not specified"))
}

func TestMergerRejectsPlaceholders(t *testing.T) {
	t.Parallel()

	m := NewMerger(nil)
	r := NewRecord(9872365)

	for _, v := range []string{"", "-", "N/A", "none", "  "} {
		m.Apply(r, FieldName, v)
		m.ApplyOther(r, "yard_number", v)
	}

	require.False(t, r.Substantive())
}

func TestMergerOtherBucket(t *testing.T) {
	t.Parallel()

	m := NewMerger(nil)
	r := NewRecord(9872365)

	m.ApplyOther(r, "classification_society", "DNV")
	m.ApplyOther(r, "classification_society", "DNV GL AS")

	require.Equal(t, "DNV GL AS", r.Other["classification_society"])
	require.True(t, r.Substantive())
}

func TestRecordSubstantiveIgnoresProvenance(t *testing.T) {
	t.Parallel()

	r := NewRecord(9872365)
	r.SourceURL = "https://example.com/vessel/imo/9872365"
	r.ExtractedAt = time.Now()

	require.False(t, r.Substantive())

	NewMerger(nil).Apply(r, FieldMMSI, "525021342")
	require.True(t, r.Substantive())
}

func TestRecordMarshalFlatShape(t *testing.T) {
	t.Parallel()

	r := NewRecord(9872365)
	r.SourceURL = "https://www.balticshipping.com/vessel/imo/9872365"
	r.ExtractedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMerger(nil)
	m.Apply(r, FieldName, "ADHAR TUG")
	m.Apply(r, FieldFlag, "Indonesia")
	m.ApplyOther(r, "yard_number", "118")

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var flat map[string]string
	require.NoError(t, json.Unmarshal(raw, &flat))

	require.Equal(t, "9872365", flat["source_identifier"])
	require.Equal(t, "https://www.balticshipping.com/vessel/imo/9872365", flat["source_url"])
	require.Equal(t, "2025-06-01T12:00:00Z", flat["extracted_at"])
	require.Equal(t, "ADHAR TUG", flat["identification.name"])
	require.Equal(t, "Indonesia", flat["identification.flag"])
	require.Equal(t, "118", flat["other.yard_number"])
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	require.True(t, IsPlaceholder("N/A"))
	require.True(t, IsPlaceholder(" - "))
	require.True(t, IsPlaceholder(""))
	require.False(t, IsPlaceholder("0"))
	require.False(t, IsPlaceholder("Panama"))
}
