package ingest

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/hpungsan/blueprint/internal/errors"
)

// typeValue applies dynamic typing to a raw cell: numerics become float64,
// true/false become bool, empty becomes nil. Everything else stays a string.
func typeValue(raw string) any {
	s := strings.TrimSpace(raw)
	switch s {
	case "":
		return nil
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}
	if !looksNumeric(s) {
		return raw
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return raw
	}
	return f
}

// looksNumeric rejects strings strconv would accept but a spreadsheet user
// would not call a number (hex floats, "Inf", "NaN", digit separators).
func looksNumeric(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
		default:
			return false
		}
	}
	return digits > 0
}

func parseError(fileName, format string, err error) error {
	return errors.NewParse(fileName, format, err)
}
