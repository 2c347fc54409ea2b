package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// previewChars bounds the excerpt shown in placeholder content.
const previewChars = 1200

var formatLabels = map[Format]string{
	FormatCSV:     "CSV spreadsheet",
	FormatExcel:   "Excel workbook",
	FormatWord:    "Word document",
	FormatJSON:    "JSON data",
	FormatText:    "Text",
	FormatUnknown: "Unrecognized file",
}

// Label returns the display label for a format.
func Label(f Format) string {
	if l, ok := formatLabels[f]; ok {
		return l
	}
	return formatLabels[FormatUnknown]
}

// Placeholder renders the markdown shown in a document slot right after an
// import. Format only selects the display label.
func Placeholder(rec *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Imported: %s\n\n", rec.FileName)
	fmt.Fprintf(&b, "- Source: %s\n", Label(rec.Format))
	if rec.Sheet != "" {
		fmt.Fprintf(&b, "- Sheet: %s\n", rec.Sheet)
	}
	fmt.Fprintf(&b, "- Imported at: %s\n", rec.Timestamp.Format(time.RFC3339))

	if preview := previewOf(rec); preview != "" {
		b.WriteString("\n```\n")
		b.WriteString(preview)
		b.WriteString("\n```\n")
	}
	return b.String()
}

func previewOf(rec *Record) string {
	text := rec.Content
	if text == "" && rec.Data != nil {
		data, err := json.MarshalIndent(rec.Data, "", "  ")
		if err == nil {
			text = string(data)
		}
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > previewChars {
		text = string(r[:previewChars]) + "\n..."
	}
	return text
}
