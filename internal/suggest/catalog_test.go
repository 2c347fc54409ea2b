package suggest

import (
	"testing"

	"github.com/hpungsan/blueprint/internal/document"
)

func TestCatalog_Shape(t *testing.T) {
	items := Catalog()
	if len(items) != 8 {
		t.Fatalf("catalog has %d items, want 8", len(items))
	}

	ids := map[string]bool{}
	for _, it := range items {
		if ids[it.ID] {
			t.Errorf("duplicate id %q", it.ID)
		}
		ids[it.ID] = true
		if !it.Slot.Valid() {
			t.Errorf("%s has invalid slot %q", it.ID, it.Slot)
		}
	}

	for _, slot := range document.Slots {
		if n := len(Items(slot, KindSuggestion)); n != 1 {
			t.Errorf("%s suggestions = %d, want 1", slot, n)
		}
		if n := len(Items(slot, KindInconsistency)); n != 1 {
			t.Errorf("%s inconsistencies = %d, want 1", slot, n)
		}
	}
}

func TestMutations_ExactlyThreeWired(t *testing.T) {
	if len(mutations) != 3 {
		t.Fatalf("wired mutations = %d, want 3", len(mutations))
	}

	wired := 0
	for _, it := range Catalog() {
		if _, ok := MutationFor(it.Slot, it.Action); ok {
			wired++
		}
	}
	if wired != 3 {
		t.Errorf("catalog items with a mutation = %d, want 3", wired)
	}

	// Wiring is keyed by slot as well as action
	if _, ok := MutationFor(document.OKRs, ActionAddKeyPriorities); ok {
		t.Error("AddKeyStrategicPriorities should not be wired for OKRs")
	}
}

func TestLookup(t *testing.T) {
	it, ok := Lookup("strategy-s1")
	if !ok || it.Action != ActionAddKeyPriorities {
		t.Fatalf("Lookup(strategy-s1) = %+v, %v", it, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("inconsistencies"); !ok || k != KindInconsistency {
		t.Errorf("ParseKind(inconsistencies) = %q, %v", k, ok)
	}
	if k, ok := ParseKind(""); !ok || k != "" {
		t.Errorf("ParseKind(\"\") = %q, %v", k, ok)
	}
	if _, ok := ParseKind("other"); ok {
		t.Error("ParseKind(other) should fail")
	}
}
