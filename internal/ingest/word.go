package ingest

import (
	"bytes"
	"strings"

	"code.sajari.com/docconv/v2"
)

// readWord extracts raw text. Legacy .doc files are tried as docx first and
// otherwise reduced to their printable text runs.
func readWord(ext string, data []byte) (string, error) {
	text, err := readDocx(data)
	if err == nil {
		return text, nil
	}
	if ext == "doc" {
		return printableRuns(data, 4), nil
	}
	return "", err
}

func readDocx(data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return tidyLines(text), nil
}

// tidyLines trims every line and drops blank ones.
func tidyLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// printableRuns returns every run of at least minRun printable ASCII bytes,
// one per line. Binary .doc needs the external wvText tool in docconv, so
// this is the in-process fallback.
func printableRuns(data []byte, minRun int) string {
	var (
		runs []string
		cur  []byte
	)
	flush := func() {
		if s := strings.TrimSpace(string(cur)); len(s) >= minRun {
			runs = append(runs, s)
		}
		cur = cur[:0]
	}
	for _, b := range data {
		if (b >= 0x20 && b < 0x7f) || b == '\t' {
			cur = append(cur, b)
			continue
		}
		flush()
	}
	flush()
	return strings.Join(runs, "\n")
}
