package ops

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/recordstore"
	"github.com/hpungsan/blueprint/internal/sched"
)

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	o     *Orchestrator
	store *recordstore.Memory
	clock *sched.FakeClock
	cfg   *config.Config
}

func newTestEnv(t *testing.T, l *zap.Logger) *testEnv {
	t.Helper()
	env := &testEnv{
		store: recordstore.NewMemory(),
		clock: sched.NewFakeClock(testStart),
		cfg:   config.DefaultConfig(),
	}
	o, err := New(Options{Config: env.cfg, Store: env.store, Clock: env.clock, Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.o = o
	return env
}

func (e *testEnv) content(t *testing.T, slot document.Slot) string {
	t.Helper()
	st, err := e.o.DocumentState(string(slot))
	if err != nil {
		t.Fatalf("DocumentState(%s) error = %v", slot, err)
	}
	return st.Content
}

func TestNew_SeedsDocuments(t *testing.T) {
	env := newTestEnv(t, nil)

	counts := env.o.InconsistencyCounts()
	want := document.DefaultCounts()
	for _, slot := range document.Slots {
		if counts[slot] != want[slot] {
			t.Errorf("count[%s] = %d, want %d", slot, counts[slot], want[slot])
		}
	}
	if !strings.Contains(env.content(t, document.Canvas), "Revenue Streams") {
		t.Error("Canvas should be seeded with a Revenue Streams section")
	}
}

func TestDocumentState_Aliases(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, name := range []string{"Canvas", "business model canvas", "financial-projection", "okr"} {
		if _, err := env.o.DocumentState(name); err != nil {
			t.Errorf("DocumentState(%q) error = %v", name, err)
		}
	}
}

func TestDocumentState_UnknownSlot(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.o.DocumentState("Roadmap")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("DocumentState(Roadmap) error = %v, want INVALID_REQUEST", err)
	}
}

func TestListItems_Filters(t *testing.T) {
	env := newTestEnv(t, nil)

	all, err := env.o.ListItems("", "")
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(all) != 8 {
		t.Errorf("len(all) = %d, want 8", len(all))
	}

	strategy, err := env.o.ListItems("strategy", "suggestions")
	if err != nil {
		t.Fatalf("ListItems(strategy) error = %v", err)
	}
	if len(strategy) != 1 || strategy[0].ID != "strategy-s1" {
		t.Errorf("strategy suggestions = %+v, want [strategy-s1]", strategy)
	}

	if _, err := env.o.ListItems("", "typo"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ListItems(kind=typo) error = %v, want INVALID_REQUEST", err)
	}
	if _, err := env.o.ListItems("Roadmap", ""); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ListItems(slot=Roadmap) error = %v, want INVALID_REQUEST", err)
	}
}

func TestTranscript_ReturnsCopy(t *testing.T) {
	env := newTestEnv(t, nil)
	env.o.StartWizard()

	msgs := env.o.Transcript()
	if len(msgs) != 1 || msgs[0].Role != RoleAssistant {
		t.Fatalf("Transcript() = %+v, want one assistant message", msgs)
	}
	if !msgs[0].At.Equal(testStart) {
		t.Errorf("At = %v, want virtual clock time %v", msgs[0].At, testStart)
	}

	msgs[0].Text = "changed"
	if env.o.Transcript()[0].Text == "changed" {
		t.Error("Transcript() should return a copy")
	}
}
