package wizard

import (
	"fmt"
	"strings"

	"github.com/hpungsan/blueprint/internal/document"
)

// Documents is the batch produced by Synthesize.
type Documents struct {
	Contents map[document.Slot]string
	Counts   map[document.Slot]int
}

// synthesizedCounts are the fixed counts a freshly generated set starts with.
var synthesizedCounts = map[document.Slot]int{
	document.Canvas:              1,
	document.Strategy:            1,
	document.FinancialProjection: 1,
	document.OKRs:                0,
}

// Synthesize templates all four documents from the wizard answers. It is
// pure; missing answers render as "(pending)".
func Synthesize(answers map[int]string) Documents {
	problem := answer(answers, 1)
	revenue := answer(answers, 2)
	goals := answer(answers, 3)
	budget := answer(answers, 4)

	contents := map[document.Slot]string{
		document.Canvas: fmt.Sprintf(`# Business Model Canvas

## Customer Segments
%s

## Value Propositions
%s

## Revenue Streams
%s

## Key Resources
%s

## Cost Structure
(pending)
`, problem, problem, revenue, budget),

		document.Strategy: fmt.Sprintf(`# Strategy

## Vision
%s

## Goals
%s

## Go-to-Market
%s

## Risks
(pending)
`, problem, bulleted(goals), revenue),

		document.FinancialProjection: fmt.Sprintf(`# Financial Projection

## Assumptions
%s

## Revenue
(pending)

## Operating Expenses
%s
- Marketing: to be confirmed
`, revenue, bulleted(budget)),

		document.OKRs: fmt.Sprintf(`# OKRs

## Objective 1: %s
- KR1: (pending)
- KR2: (pending)
`, firstLine(goals)),
	}

	counts := make(map[document.Slot]int, len(synthesizedCounts))
	for k, v := range synthesizedCounts {
		counts[k] = v
	}
	return Documents{Contents: contents, Counts: counts}
}

func answer(answers map[int]string, step int) string {
	if a := strings.TrimSpace(answers[step]); a != "" {
		return a
	}
	return "(pending)"
}

// bulleted turns comma- or line-separated text into a markdown list.
func bulleted(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' || r == ';' })
	var b strings.Builder
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- " + p)
		}
	}
	if b.Len() == 0 {
		return "- " + s
	}
	return b.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
