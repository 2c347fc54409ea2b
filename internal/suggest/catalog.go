// Package suggest holds the fixed catalog of suggestions and
// inconsistencies and the engine that applies them.
package suggest

import "github.com/hpungsan/blueprint/internal/document"

// Kind separates quality suggestions from cross-document inconsistencies.
type Kind string

const (
	KindSuggestion    Kind = "suggestion"
	KindInconsistency Kind = "inconsistency"
)

// Action tags what an item asks to change.
type Action string

const (
	ActionDetailCustomerSegments   Action = "DetailCustomerSegments"
	ActionAlignRevenueStreams      Action = "AlignRevenueStreams"
	ActionAddKeyPriorities         Action = "AddKeyStrategicPriorities"
	ActionAlignStrategyWithOKRs    Action = "AlignStrategyWithOKRs"
	ActionAddSensitivityAnalysis   Action = "AddSensitivityAnalysis"
	ActionReconcileMarketingBudget Action = "ReconcileMarketingBudget"
	ActionQuantifyKeyResults       Action = "QuantifyKeyResults"
	ActionLinkRevenueObjective     Action = "LinkRevenueObjective"
)

// ActionItem is one catalog entry.
type ActionItem struct {
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Slot   document.Slot `json:"slot"`
	Action Action        `json:"action"`
	Kind   Kind          `json:"kind"`
}

var catalog = []ActionItem{
	{
		ID:     "canvas-s1",
		Text:   "Break Customer Segments into primary and secondary segments with size estimates",
		Slot:   document.Canvas,
		Action: ActionDetailCustomerSegments,
		Kind:   KindSuggestion,
	},
	{
		ID:     "canvas-i1",
		Text:   "Revenue Streams prices the subscription at $49 per store but the Financial Projection assumes $39; align the revenue streams",
		Slot:   document.Canvas,
		Action: ActionAlignRevenueStreams,
		Kind:   KindInconsistency,
	},
	{
		ID:     "strategy-s1",
		Text:   `Add a "Key Strategic Priorities" section summarizing the top three initiatives`,
		Slot:   document.Strategy,
		Action: ActionAddKeyPriorities,
		Kind:   KindSuggestion,
	},
	{
		ID:     "strategy-i1",
		Text:   "The partner-led expansion in Go-to-Market has no matching key result; align the strategy with the OKRs",
		Slot:   document.Strategy,
		Action: ActionAlignStrategyWithOKRs,
		Kind:   KindInconsistency,
	},
	{
		ID:     "financial-s1",
		Text:   "Add a sensitivity analysis for churn and pricing assumptions",
		Slot:   document.FinancialProjection,
		Action: ActionAddSensitivityAnalysis,
		Kind:   KindSuggestion,
	},
	{
		ID:     "financial-i1",
		Text:   "Operating Expenses budget $120,000 for marketing while the Strategy commits $200,000; reconcile the marketing budget",
		Slot:   document.FinancialProjection,
		Action: ActionReconcileMarketingBudget,
		Kind:   KindInconsistency,
	},
	{
		ID:     "okrs-s1",
		Text:   "Quantify the key results under Objective 1 with measurable targets",
		Slot:   document.OKRs,
		Action: ActionQuantifyKeyResults,
		Kind:   KindSuggestion,
	},
	{
		ID:     "okrs-i1",
		Text:   "Objective 1 does not reference the revenue targets in the Financial Projection; link the revenue objective",
		Slot:   document.OKRs,
		Action: ActionLinkRevenueObjective,
		Kind:   KindInconsistency,
	},
}

// Catalog returns every item in catalog order.
func Catalog() []ActionItem {
	return append([]ActionItem(nil), catalog...)
}

// Items returns the items for slot, optionally filtered by kind.
// An empty slot or kind matches everything.
func Items(slot document.Slot, kind Kind) []ActionItem {
	var out []ActionItem
	for _, it := range catalog {
		if slot != "" && it.Slot != slot {
			continue
		}
		if kind != "" && it.Kind != kind {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Lookup finds an item by id.
func Lookup(id string) (ActionItem, bool) {
	for _, it := range catalog {
		if it.ID == id {
			return it, true
		}
	}
	return ActionItem{}, false
}

// ParseKind accepts "suggestion(s)" and "inconsistency/inconsistencies".
// Empty input means every kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "":
		return "", true
	case "suggestion", "suggestions":
		return KindSuggestion, true
	case "inconsistency", "inconsistencies":
		return KindInconsistency, true
	}
	return "", false
}
