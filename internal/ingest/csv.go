package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"io"
	"strconv"
	"strings"
)

// parseCSV reads a header row followed by data rows. Ragged rows and bare
// quotes are errors; no partial result is returned.
func parseCSV(data []byte) ([]map[string]any, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	header = uniqueHeaders(header)

	rows := []map[string]any{}
	for {
		fields, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		for i, h := range header {
			row[h] = typeValue(fields[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// uniqueHeaders names blank headers __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ...
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "__EMPTY"
		}
		name := h
		for n := seen[h]; seen[name] > 0; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		seen[h]++
		if name != h {
			seen[name]++
		}
		out[i] = name
	}
	return out
}
