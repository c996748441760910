package merge

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/r-uben/baltic-shipping/internal/store"
	"github.com/r-uben/baltic-shipping/internal/vessel"
)

func TestCSVCombinesRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := store.NewFSStore(dir)
	require.NoError(t, err)

	a := vessel.NewRecord(9631814)
	a.SourceURL = "https://www.example.org/vessel/imo/9631814"
	a.ExtractedAt = time.Unix(1700000000, 0).UTC()
	a.Fields[vessel.FieldName] = "BRAVO"
	a.Fields[vessel.FieldFlag] = "Panama"
	require.NoError(t, s.Save(context.Background(), a))

	b := vessel.NewRecord(9872365)
	b.SourceURL = "https://www.example.org/vessel/imo/9872365"
	b.ExtractedAt = time.Unix(1700000000, 0).UTC()
	b.Fields[vessel.FieldName] = "ADHAR"
	b.Other["classification_society"] = "IRS"
	require.NoError(t, s.Save(context.Background(), b))

	var buf bytes.Buffer
	n, err := CSV(dir, &buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Equal(t, "source_identifier", header[0], "provenance columns lead")
	require.Contains(t, header, "identification.flag")
	require.Contains(t, header, "other.classification_society")

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	require.Equal(t, "9631814", rows[1][col["source_identifier"]], "rows sorted by identifier")
	require.Equal(t, "Panama", rows[1][col["identification.flag"]])
	require.Equal(t, "", rows[2][col["identification.flag"]], "missing fields stay blank")
	require.Equal(t, "IRS", rows[2][col["other.classification_society"]])
}

func TestCSVEmptyDirIsAnError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := CSV(t.TempDir(), &buf)
	require.Error(t, err)
}
