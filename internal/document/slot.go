// Package document holds the four planning documents and their
// inconsistency counters.
package document

import "strings"

// Slot is one of the four fixed planning documents.
type Slot string

const (
	Canvas              Slot = "Canvas"
	Strategy            Slot = "Strategy"
	FinancialProjection Slot = "FinancialProjection"
	OKRs                Slot = "OKRs"
)

// Slots lists every slot in display order.
var Slots = []Slot{Canvas, Strategy, FinancialProjection, OKRs}

var displayNames = map[Slot]string{
	Canvas:              "Business Model Canvas",
	Strategy:            "Strategy",
	FinancialProjection: "Financial Projection",
	OKRs:                "OKRs",
}

// slotAliases maps squashed lower-case spellings to slots.
var slotAliases = map[string]Slot{
	"canvas":              Canvas,
	"businessmodelcanvas": Canvas,
	"bmc":                 Canvas,
	"strategy":            Strategy,
	"financialprojection": FinancialProjection,
	"financial":           FinancialProjection,
	"financials":          FinancialProjection,
	"finance":             FinancialProjection,
	"okrs":                OKRs,
	"okr":                 OKRs,
}

// Valid reports whether s is one of the four slots.
func (s Slot) Valid() bool {
	_, ok := displayNames[s]
	return ok
}

// DisplayName returns the human-readable name of the slot.
func (s Slot) DisplayName() string {
	if n, ok := displayNames[s]; ok {
		return n
	}
	return string(s)
}

func (s Slot) String() string { return string(s) }

// ParseSlot resolves canonical names, display names and common aliases,
// ignoring case, spaces, hyphens and underscores.
func ParseSlot(s string) (Slot, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(s))
	slot, ok := slotAliases[key]
	return slot, ok
}

// SlotOrDefault resolves s, falling back to Strategy when it is empty or
// unrecognized.
func SlotOrDefault(s string) Slot {
	if slot, ok := ParseSlot(s); ok {
		return slot
	}
	return Strategy
}
