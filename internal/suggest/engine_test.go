package suggest

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/blueprint/internal/document"
)

type failingSaver struct{ calls int }

func (f *failingSaver) SaveDocument(context.Context, document.Slot, string) error {
	f.calls++
	return stderrors.New("record store unavailable")
}

type recordingSaver struct{ saved map[document.Slot]string }

func (r *recordingSaver) SaveDocument(_ context.Context, slot document.Slot, content string) error {
	r.saved[slot] = content
	return nil
}

func newTestEngine(saver DocumentSaver) (*Engine, *document.Store) {
	store := document.NewStore()
	return NewEngine(store, NewImplementedSet(), saver, zap.NewNop()), store
}

func mustLookup(t *testing.T, id string) ActionItem {
	t.Helper()
	it, ok := Lookup(id)
	if !ok {
		t.Fatalf("Lookup(%q) failed", id)
	}
	return it
}

func TestApply_KeyStrategicPriorities(t *testing.T) {
	e, store := newTestEngine(nil)
	before, _ := store.Get(document.Strategy)

	res, err := e.Apply(context.Background(), mustLookup(t, "strategy-s1"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	after, _ := store.Get(document.Strategy)
	if after.InconsistencyCount != before.InconsistencyCount-1 {
		t.Errorf("count = %d, want %d", after.InconsistencyCount, before.InconsistencyCount-1)
	}
	if !strings.Contains(after.Content, "## Key Strategic Priorities") {
		t.Errorf("content missing new section:\n%s", after.Content)
	}
	if strings.Index(after.Content, "Key Strategic Priorities") > strings.Index(after.Content, "## Risks") {
		t.Error("new section should be placed before Risks")
	}
	if !res.Mutated || res.InconsistencyDelta != -1 {
		t.Errorf("result = %+v, want mutated with delta -1", res)
	}
	if !strings.Contains(res.Confirmation, "Strategy") || !strings.Contains(res.Confirmation, "Key Strategic Priorities") {
		t.Errorf("confirmation = %q", res.Confirmation)
	}
	if !e.Implemented().Has("strategy-s1") {
		t.Error("item should be marked implemented")
	}
}

func TestApply_OtherWiredMutations(t *testing.T) {
	e, store := newTestEngine(nil)
	ctx := context.Background()

	if _, err := e.Apply(ctx, mustLookup(t, "canvas-i1")); err != nil {
		t.Fatalf("Apply(canvas-i1) error = %v", err)
	}
	body, _ := document.SectionBody(mustContent(t, store, document.Canvas), "Revenue Streams")
	if !strings.Contains(body, "$39 per store") || strings.Contains(body, "$49") {
		t.Errorf("Revenue Streams = %q", body)
	}

	if _, err := e.Apply(ctx, mustLookup(t, "financial-i1")); err != nil {
		t.Fatalf("Apply(financial-i1) error = %v", err)
	}
	body, _ = document.SectionBody(mustContent(t, store, document.FinancialProjection), "Operating Expenses")
	if !strings.Contains(body, "Marketing: $200,000") || strings.Contains(body, "$120,000") {
		t.Errorf("Operating Expenses = %q", body)
	}
	if !strings.Contains(body, "Salaries: $420,000") {
		t.Errorf("other expense lines should survive: %q", body)
	}

	counts := store.Counts()
	if counts[document.Canvas] != 1 || counts[document.FinancialProjection] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func mustContent(t *testing.T, store *document.Store, slot document.Slot) string {
	t.Helper()
	st, err := store.Get(slot)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", slot, err)
	}
	return st.Content
}

func TestApply_UnwiredLeavesContent(t *testing.T) {
	e, store := newTestEngine(nil)
	before := store.Snapshot()

	res, err := e.Apply(context.Background(), mustLookup(t, "okrs-s1"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	after := store.Snapshot()
	for _, slot := range document.Slots {
		if after[slot].Content != before[slot].Content {
			t.Errorf("%s content changed by an unwired item", slot)
		}
		if after[slot].InconsistencyCount != before[slot].InconsistencyCount {
			t.Errorf("%s count changed by an unwired item", slot)
		}
	}
	if res.Mutated || res.Confirmation == "" {
		t.Errorf("result = %+v, want unmutated with confirmation", res)
	}
	if !e.Implemented().Has("okrs-s1") {
		t.Error("unwired item should still be marked implemented")
	}
}

func TestApply_SecondCallIsNoop(t *testing.T) {
	e, store := newTestEngine(nil)
	item := mustLookup(t, "strategy-s1")
	ctx := context.Background()

	if _, err := e.Apply(ctx, item); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	once := store.Snapshot()
	v := store.Version()

	res, err := e.Apply(ctx, item)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if !res.Skipped || res.Mutated {
		t.Errorf("second result = %+v, want skipped", res)
	}
	if store.Version() != v {
		t.Error("second Apply changed the store")
	}
	if store.Snapshot()[document.Strategy].Content != once[document.Strategy].Content {
		t.Error("content changed on second Apply")
	}
	if ids := e.Implemented().IDs(); len(ids) != 1 {
		t.Errorf("implemented ids = %v, want exactly one", ids)
	}
}

func TestApply_SaveFailureLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	saver := &failingSaver{}
	store := document.NewStore()
	e := NewEngine(store, NewImplementedSet(), saver, zap.New(core))

	res, err := e.Apply(context.Background(), mustLookup(t, "strategy-s1"))
	if err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if !res.Mutated {
		t.Fatal("mutation should stand")
	}
	if saver.calls != 1 {
		t.Errorf("saver calls = %d, want 1", saver.calls)
	}
	st, _ := store.Get(document.Strategy)
	if !strings.Contains(st.Content, "Key Strategic Priorities") {
		t.Error("in-memory change rolled back")
	}
	if logs.FilterMessageSnippet("document save failed").Len() != 1 {
		t.Errorf("warn logs = %v, want one save failure", logs.All())
	}
}

func TestApply_SavesOnlyMutations(t *testing.T) {
	saver := &recordingSaver{saved: map[document.Slot]string{}}
	e, _ := newTestEngine(saver)
	ctx := context.Background()

	_, _ = e.Apply(ctx, mustLookup(t, "canvas-s1"))
	if len(saver.saved) != 0 {
		t.Errorf("unwired item saved %v", saver.saved)
	}
	_, _ = e.Apply(ctx, mustLookup(t, "canvas-i1"))
	if _, ok := saver.saved[document.Canvas]; !ok {
		t.Error("wired item should be saved")
	}
}
