// Package wizard implements the four-step guided strategy flow.
package wizard

import (
	"maps"
	"sync"
)

// Steps is the number of questions the wizard asks.
const Steps = 4

const (
	WelcomePrompt = "Let's build your plan together. Step 1 of 4: What problem does your business solve, and for whom?"

	GeneratingPrompt = "Thanks! Generating your Business Model Canvas, Strategy, Financial Projection and OKRs..."

	CompletionMessage = "Your four planning documents are ready. Review them and apply any suggestions that fit."
)

// prompts is keyed by the step just completed: answering step 1 emits
// prompts[1], which asks the step-2 question.
var prompts = map[int]string{
	1: "Step 2 of 4: How will you make money? Describe your pricing and main revenue streams.",
	2: "Step 3 of 4: What are your most important goals for the next 12 months?",
	3: "Step 4 of 4: What budget and team do you have to reach those goals?",
}

// Prompt returns the prompt emitted after completing step, or "" if none.
func Prompt(step int) string {
	return prompts[step]
}

// State is a snapshot of the wizard. Step 0 means inactive. Generating is
// set between the final answer and Finish; the run stays at step 4 with all
// answers until then.
type State struct {
	Active     bool           `json:"active"`
	Step       int            `json:"step"`
	Answers    map[int]string `json:"answers"`
	Generating bool           `json:"generating"`
}

// Reply is what a Start or Submit call emits.
type Reply struct {
	// Handled is false when Submit is called while the wizard is inactive.
	Handled bool   `json:"handled"`
	Prompt  string `json:"prompt,omitempty"`
	Step    int    `json:"step"`

	// Complete is set on the final answer; Answers then holds all four
	// answers for synthesis. The wizard stays generating until Finish.
	Complete bool           `json:"complete"`
	Answers  map[int]string `json:"answers,omitempty"`

	// Busy is set when input arrives while documents are generating. The
	// input is dropped.
	Busy bool `json:"busy,omitempty"`
}

// Wizard is the linear state machine 0 -> 1 -> 2 -> 3 -> 4 -> (generating) -> 0.
type Wizard struct {
	mu    sync.Mutex
	state State
}

// New returns an inactive wizard.
func New() *Wizard {
	return &Wizard{state: State{Answers: map[int]string{}}}
}

// Start enters step 1 with empty answers, restarting any run that is still
// collecting. It is a no-op while documents are generating.
func (w *Wizard) Start() Reply {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Generating {
		return Reply{Handled: false, Step: w.state.Step, Busy: true}
	}
	w.state = State{Active: true, Step: 1, Answers: map[int]string{}}
	return Reply{Handled: true, Prompt: WelcomePrompt, Step: 1}
}

// Submit records text as the answer for the current step.
func (w *Wizard) Submit(text string) Reply {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := &w.state
	if st.Generating {
		return Reply{Handled: true, Step: st.Step, Busy: true}
	}
	if !st.Active || st.Step < 1 || st.Step > Steps {
		return Reply{Handled: false, Step: st.Step}
	}

	st.Answers[st.Step] = text
	if st.Step < Steps {
		completed := st.Step
		st.Step++
		return Reply{Handled: true, Prompt: prompts[completed], Step: st.Step}
	}

	st.Generating = true
	return Reply{Handled: true, Prompt: GeneratingPrompt, Step: st.Step, Complete: true, Answers: maps.Clone(st.Answers)}
}

// Finish ends a generating run and returns to the inactive state.
func (w *Wizard) Finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = State{Answers: map[int]string{}}
}

// Cancel discards collected answers and reports whether a collecting run was
// active. A run that is generating cannot be cancelled.
func (w *Wizard) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Generating {
		return false
	}
	wasActive := w.state.Active
	w.state = State{Answers: map[int]string{}}
	return wasActive
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Active:     w.state.Active,
		Step:       w.state.Step,
		Answers:    maps.Clone(w.state.Answers),
		Generating: w.state.Generating,
	}
}
