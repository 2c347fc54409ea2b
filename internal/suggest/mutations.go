package suggest

import (
	"strings"

	"github.com/hpungsan/blueprint/internal/document"
)

// Mutation rewrites one slot's content and moves its inconsistency count by Delta.
type Mutation struct {
	Apply func(content string) string
	Delta int
}

type wiring struct {
	Slot   document.Slot
	Action Action
}

// mutations is intentionally sparse: catalog actions without an entry are
// acknowledged and recorded but leave documents untouched.
var mutations = map[wiring]Mutation{
	{document.Canvas, ActionAlignRevenueStreams}:                   {Apply: alignRevenueStreams, Delta: -1},
	{document.Strategy, ActionAddKeyPriorities}:                    {Apply: addKeyPriorities, Delta: -1},
	{document.FinancialProjection, ActionReconcileMarketingBudget}: {Apply: reconcileMarketingBudget, Delta: -1},
}

// MutationFor returns the content change wired to (slot, action), if any.
func MutationFor(slot document.Slot, action Action) (Mutation, bool) {
	m, ok := mutations[wiring{slot, action}]
	return m, ok
}

const (
	revenueStreamsBody = "- Monthly subscription: $39 per store (aligned with the Financial Projection)\n" +
		"- Transaction fee: 1.5% of online sales"

	keyPrioritiesHeader = "Key Strategic Priorities"
	keyPrioritiesBody   = "1. Win the two pilot regions before national expansion\n" +
		"2. Cut onboarding time to under one week per store\n" +
		"3. Sign point-of-sale partners to open an indirect channel"

	marketingLine = "- Marketing: $200,000 (reconciled with the Strategy go-to-market budget)"
)

func alignRevenueStreams(content string) string {
	if s := document.FindSection(document.ParseSections(content), "Revenue Streams"); s != nil {
		return document.ReplaceContent(content, s, revenueStreamsBody)
	}
	return document.AddSection(content, "Revenue Streams", revenueStreamsBody, "")
}

func addKeyPriorities(content string) string {
	if s := document.FindSection(document.ParseSections(content), keyPrioritiesHeader); s != nil {
		return document.InsertContent(content, s, keyPrioritiesBody)
	}
	return document.AddSection(content, keyPrioritiesHeader, keyPrioritiesBody, "Risks")
}

func reconcileMarketingBudget(content string) string {
	s := document.FindSection(document.ParseSections(content), "Operating Expenses")
	if s == nil {
		return document.AddSection(content, "Operating Expenses", marketingLine, "")
	}

	lines := strings.Split(strings.TrimRight(content[s.ContentStart:s.ContentEnd], "\n"), "\n")
	replaced := false
	for i, l := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(l)), "- marketing") {
			lines[i] = marketingLine
			replaced = true
		}
	}
	if !replaced {
		return document.InsertContent(content, s, marketingLine)
	}
	return document.ReplaceContent(content, s, strings.Join(lines, "\n"))
}
