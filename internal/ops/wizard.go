package ops

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/sched"
	"github.com/hpungsan/blueprint/internal/wizard"
)

// Acknowledgement answers chat input received while no wizard is running.
const Acknowledgement = "Thanks! I've noted that. Start the strategy wizard or pick a suggestion to update your documents."

// ChatReply is the outcome of one chat submission.
type ChatReply struct {
	Reply string       `json:"reply"`
	Step  int          `json:"step"`
	Task  *sched.Task  `json:"-"`
	State wizard.State `json:"wizard"`
}

// StartWizard begins (or restarts) the guided flow.
func (o *Orchestrator) StartWizard() *ChatReply {
	o.mu.Lock()
	defer o.mu.Unlock()

	r := o.wizard.Start()
	if r.Busy {
		return &ChatReply{Step: r.Step, State: o.wizard.State()}
	}
	o.say(RoleAssistant, r.Prompt)
	return &ChatReply{Reply: r.Prompt, Step: r.Step, State: o.wizard.State()}
}

// CancelWizard abandons the guided flow and reports whether one was
// collecting answers. A run that is already generating always completes.
func (o *Orchestrator) CancelWizard() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.wizard.Cancel()
}

// WizardState returns the wizard's current state.
func (o *Orchestrator) WizardState() wizard.State {
	return o.wizard.State()
}

// SubmitMessage routes chat input. While the wizard runs the text answers
// the current step; the final answer schedules document synthesis and the
// returned reply carries that task. Otherwise a fixed acknowledgement is
// returned. Blank input, and input sent while documents are generating, is
// dropped: the reply is empty and the transcript unchanged.
func (o *Orchestrator) SubmitMessage(text string) (*ChatReply, error) {
	text = strings.TrimSpace(text)

	o.mu.Lock()
	defer o.mu.Unlock()

	if text == "" {
		st := o.wizard.State()
		return &ChatReply{Step: st.Step, State: st}, nil
	}

	r := o.wizard.Submit(text)
	if r.Busy {
		return &ChatReply{Step: r.Step, State: o.wizard.State()}, nil
	}
	o.say(RoleUser, text)
	if !r.Handled {
		o.say(RoleAssistant, Acknowledgement)
		return &ChatReply{Reply: Acknowledgement, State: o.wizard.State()}, nil
	}

	o.say(RoleAssistant, r.Prompt)
	reply := &ChatReply{Reply: r.Prompt, Step: r.Step, State: o.wizard.State()}
	if r.Complete {
		answers := r.Answers
		reply.Task = o.queue.Schedule(o.delay(), "wizard:synthesize", func() any {
			return o.completeWizard(answers)
		})
	}
	return reply, nil
}

// completeWizard replaces all four documents in one update, resets the
// wizard, then saves the documents to the selected project. Save failures
// are logged only.
func (o *Orchestrator) completeWizard(answers map[int]string) any {
	docs := wizard.Synthesize(answers)

	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.docs.ReplaceAll(docs.Contents, docs.Counts)
	o.wizard.Finish()
	if err != nil {
		o.logger.Error("wizard synthesis rejected", zap.Error(err))
		return err
	}
	o.say(RoleAssistant, wizard.CompletionMessage)

	saver := projectSaver{o}
	ctx := context.Background()
	for _, slot := range document.Slots {
		if err := saver.SaveDocument(ctx, slot, docs.Contents[slot]); err != nil {
			o.logger.Warn("document save failed; in-memory change kept",
				zap.String("slot", string(slot)), zap.Error(err))
		}
	}
	return o.docs.Snapshot()
}
