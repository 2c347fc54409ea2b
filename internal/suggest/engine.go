package suggest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/logger"
)

// DocumentSaver persists a document's new content. Implementations decide
// whether a save applies (for example only with a signed-in user and a
// selected project) and return nil when it does not.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, slot document.Slot, content string) error
}

// Result describes the outcome of applying one item.
type Result struct {
	ItemID             string        `json:"item_id"`
	Slot               document.Slot `json:"slot"`
	Confirmation       string        `json:"confirmation"`
	InconsistencyDelta int           `json:"inconsistency_delta"`
	InconsistencyCount int           `json:"inconsistency_count"`
	Mutated            bool          `json:"mutated"`
	Skipped            bool          `json:"skipped,omitempty"`
}

// Engine applies catalog items to the document store.
type Engine struct {
	store       *document.Store
	implemented *ImplementedSet
	saver       DocumentSaver
	logger      *zap.Logger
}

// NewEngine wires an engine. saver may be nil.
func NewEngine(store *document.Store, implemented *ImplementedSet, saver DocumentSaver, l *zap.Logger) *Engine {
	return &Engine{
		store:       store,
		implemented: implemented,
		saver:       saver,
		logger:      logger.OrNop(l).Named("suggest"),
	}
}

// Implemented returns the engine's implemented set.
func (e *Engine) Implemented() *ImplementedSet {
	return e.implemented
}

// Apply runs item's mutation if one is wired, emits a confirmation, and
// records the id. Items already applied are skipped without any change.
// Save failures are logged and never returned; the in-memory change stands.
func (e *Engine) Apply(ctx context.Context, item ActionItem) (*Result, error) {
	res := &Result{ItemID: item.ID, Slot: item.Slot}

	if e.implemented.Has(item.ID) {
		st, err := e.store.Get(item.Slot)
		if err != nil {
			return nil, err
		}
		res.Skipped = true
		res.InconsistencyCount = st.InconsistencyCount
		res.Confirmation = fmt.Sprintf("This change was already applied to your %s.", item.Slot.DisplayName())
		return res, nil
	}

	st, err := e.store.Get(item.Slot)
	if err != nil {
		return nil, err
	}
	res.InconsistencyCount = st.InconsistencyCount

	m, wired := MutationFor(item.Slot, item.Action)
	if wired {
		content := m.Apply(st.Content)
		if err := e.store.Patch(item.Slot, content); err != nil {
			return nil, err
		}
		count, err := e.store.AdjustInconsistency(item.Slot, m.Delta)
		if err != nil {
			return nil, err
		}
		res.Mutated = true
		res.InconsistencyDelta = m.Delta
		res.InconsistencyCount = count
		e.save(ctx, item, content)
	}

	res.Confirmation = confirmation(item)
	e.implemented.Add(item.ID)

	e.logger.Info("item applied",
		zap.String("item_id", item.ID),
		zap.String("slot", item.Slot.String()),
		zap.Bool("mutated", res.Mutated),
	)
	return res, nil
}

func (e *Engine) save(ctx context.Context, item ActionItem, content string) {
	if e.saver == nil {
		return
	}
	if err := e.saver.SaveDocument(ctx, item.Slot, content); err != nil {
		e.logger.Warn("document save failed; in-memory change kept",
			zap.String("item_id", item.ID),
			zap.String("slot", item.Slot.String()),
			zap.Error(err),
		)
	}
}

func confirmation(item ActionItem) string {
	return fmt.Sprintf("Done. I've updated your %s: %s.", item.Slot.DisplayName(), item.Text)
}
