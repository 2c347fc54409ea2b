package ops

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/sched"
	"github.com/hpungsan/blueprint/internal/suggest"
)

// ApplySuggestion schedules item id for application after the configured
// delay and returns the pending task. The task's result is a
// *suggest.Result. An item that is already implemented returns a completed
// no-op task; an item already in flight returns its existing task.
func (o *Orchestrator) ApplySuggestion(ctx context.Context, id string) (*sched.Task, error) {
	item, ok := suggest.Lookup(id)
	if !ok {
		return nil, errors.NewNotFound("item", id)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.engine.Implemented().Has(id) {
		return sched.Completed("apply:"+id, &suggest.Result{
			ItemID:       id,
			Slot:         item.Slot,
			Skipped:      true,
			Confirmation: fmt.Sprintf("This change was already applied to your %s.", item.Slot.DisplayName()),
		}), nil
	}
	if t, ok := o.inflight[id]; ok {
		return t, nil
	}

	o.say(RoleUser, item.Text)
	t := o.queue.Schedule(o.delay(), "apply:"+id, func() any {
		return o.completeApply(item)
	})
	o.inflight[id] = t
	return t, nil
}

func (o *Orchestrator) completeApply(item suggest.ActionItem) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, item.ID)

	res, err := o.engine.Apply(context.Background(), item)
	if err != nil {
		o.logger.Error("apply failed", zap.String("item_id", item.ID), zap.Error(err))
		return err
	}
	o.say(RoleAssistant, res.Confirmation)
	return res
}
