// Package merge flattens a directory of per-vessel JSON documents into one
// CSV dataset. The header is the union of every key seen, so sparse fields
// survive without a fixed schema.
package merge

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// provenanceColumns lead the header in fixed order; everything else is
// sorted alphabetically after them.
var provenanceColumns = []string{"source_identifier", "source_url", "extracted_at"}

// CSV reads every vessel_*.json under dir and writes the combined dataset
// to out. Returns the number of rows written.
func CSV(dir string, out io.Writer) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "vessel_*.json"))
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no vessel records under %s", dir)
	}

	rows := make([]map[string]string, 0, len(paths))
	columns := make(map[string]struct{})
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		var doc map[string]string
		if err := json.Unmarshal(data, &doc); err != nil {
			return 0, fmt.Errorf("decode %s: %w", path, err)
		}
		for k := range doc {
			columns[k] = struct{}{}
		}
		rows = append(rows, doc)
	}

	header := headerOrder(columns)
	sort.Slice(rows, func(i, j int) bool {
		a, _ := strconv.Atoi(rows[i]["source_identifier"])
		b, _ := strconv.Atoi(rows[j]["source_identifier"])
		return a < b
	})

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			line[i] = row[col]
		}
		if err := w.Write(line); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(rows), nil
}

func headerOrder(columns map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(provenanceColumns))
	header := make([]string, 0, len(columns))
	for _, col := range provenanceColumns {
		if _, ok := columns[col]; ok {
			header = append(header, col)
			seen[col] = struct{}{}
		}
	}
	rest := make([]string, 0, len(columns))
	for col := range columns {
		if _, ok := seen[col]; !ok {
			rest = append(rest, col)
		}
	}
	sort.Strings(rest)
	return append(header, rest...)
}
