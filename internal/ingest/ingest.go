// Package ingest normalizes uploaded files into a uniform record envelope.
//
// Every input yields a record. Only malformed CSV and JSON payloads fail,
// with a PARSE_ERROR; unrecognized extensions and unreadable office
// containers degrade to raw text under FormatUnknown.
package ingest

import (
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/logger"
)

// Format identifies how a record's payload was produced.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatWord    Format = "word"
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// Record is the normalized envelope persisted for every imported file.
// Its JSON field set is the interchange format between ingestion and storage
// and must stay stable.
type Record struct {
	DocumentType string    `json:"documentType"`
	Format       Format    `json:"format"`
	FileName     string    `json:"fileName"`
	Data         any       `json:"data"`
	Content      string    `json:"content"`
	Sheet        string    `json:"sheet"`
	Timestamp    time.Time `json:"timestamp"`
}

// Normalizer converts raw uploads into Records.
type Normalizer struct {
	now    func() time.Time
	logger *zap.Logger
}

// New returns a Normalizer stamping records with now. A nil now uses time.Now.
func New(now func() time.Time, l *zap.Logger) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now, logger: logger.OrNop(l).Named("ingest")}
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Normalize dispatches on the file extension and returns the record for data.
func (n *Normalizer) Normalize(fileName string, data []byte, documentType string) (*Record, error) {
	rec := &Record{
		DocumentType: documentType,
		FileName:     fileName,
		Timestamp:    n.now().UTC(),
	}

	switch ext := Extension(fileName); ext {
	case "csv":
		rows, err := parseCSV(data)
		if err != nil {
			return nil, parseError(fileName, "csv", err)
		}
		rec.Format = FormatCSV
		rec.Data = rows

	case "xlsx", "xls":
		sheet, rows, err := readWorkbook(ext, data)
		if err != nil {
			n.fallback(rec, data, ext, err)
			break
		}
		rec.Format = FormatExcel
		rec.Sheet = sheet
		rec.Data = rows

	case "docx", "doc":
		text, err := readWord(ext, data)
		if err != nil {
			n.fallback(rec, data, ext, err)
			break
		}
		rec.Format = FormatWord
		rec.Content = text

	case "json":
		v, err := parseJSON(data)
		if err != nil {
			return nil, parseError(fileName, "json", err)
		}
		rec.Format = FormatJSON
		rec.Data = v

	case "txt", "md":
		rec.Format = FormatText
		rec.Content = rawText(data)

	default:
		rec.Format = FormatUnknown
		rec.Content = rawText(data)
	}

	return rec, nil
}

// fallback stores an unreadable office file as raw text.
func (n *Normalizer) fallback(rec *Record, data []byte, ext string, err error) {
	n.logger.Warn("office file unreadable, storing raw text",
		zap.String("file_name", rec.FileName),
		zap.String("extension", ext),
		zap.Error(err),
	)
	rec.Format = FormatUnknown
	rec.Content = rawText(data)
}

func rawText(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
