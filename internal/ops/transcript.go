package ops

import "time"

// Role identifies who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the session transcript.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Transcript returns every message emitted this session.
func (o *Orchestrator) Transcript() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.transcript...)
}

// say appends to the transcript. Callers hold o.mu.
func (o *Orchestrator) say(role Role, text string) {
	if text == "" {
		return
	}
	o.transcript = append(o.transcript, Message{Role: role, Text: text, At: o.now()})
}
