package ops

import (
	"fmt"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/suggest"
)

// DocumentState returns a snapshot of the named slot.
func (o *Orchestrator) DocumentState(slot string) (document.State, error) {
	s, err := parseSlot(slot)
	if err != nil {
		return document.State{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs.Get(s)
}

// Documents returns a snapshot of every slot.
func (o *Orchestrator) Documents() map[document.Slot]document.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs.Snapshot()
}

// InconsistencyCounts returns the count for every slot.
func (o *Orchestrator) InconsistencyCounts() map[document.Slot]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs.Counts()
}

// ItemView is a catalog item with its session status.
type ItemView struct {
	suggest.ActionItem
	Implemented bool `json:"implemented"`
	Pending     bool `json:"pending"`
}

// ListItems returns catalog items, optionally filtered by slot and kind.
// Empty filters match everything.
func (o *Orchestrator) ListItems(slot, kind string) ([]ItemView, error) {
	var s document.Slot
	if slot != "" {
		var err error
		if s, err = parseSlot(slot); err != nil {
			return nil, err
		}
	}
	k, ok := suggest.ParseKind(kind)
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("kind must be suggestion or inconsistency, got %q", kind))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	items := suggest.Items(s, k)
	out := make([]ItemView, len(items))
	for i, it := range items {
		_, pending := o.inflight[it.ID]
		out[i] = ItemView{
			ActionItem:  it,
			Implemented: o.engine.Implemented().Has(it.ID),
			Pending:     pending,
		}
	}
	return out, nil
}

func parseSlot(s string) (document.Slot, error) {
	slot, ok := document.ParseSlot(s)
	if !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown document type: %q", s))
	}
	return slot, nil
}
