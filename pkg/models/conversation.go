package models

import (
	"fmt"
	"strings"
)

// Message is a single, immutable turn in an AgentConversation.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// String renders "{name}({role_kind}): {content}" for one message.
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// AgentConversation is the ordered sequence of messages recorded for one
// task. Callers should treat values returned from ShortMemory.Get as
// read-only snapshots; mutating them has no effect on the store.
type AgentConversation struct {
	Task    string    `json:"task"`
	History []Message `json:"history"`
}

// Append records msg at the end of the conversation. Callers are
// responsible for serializing concurrent appends to the same
// conversation (ShortMemory does this per task).
func (c *AgentConversation) Append(msg Message) {
	c.History = append(c.History, msg)
}

// String renders the conversation as one "{name}({role_kind}): {content}"
// line per message, suitable for prompt construction.
func (c *AgentConversation) String() string {
	var b strings.Builder
	for i, msg := range c.History {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.String())
	}
	return b.String()
}

// Search returns every message whose content contains keyword.
func (c *AgentConversation) Search(keyword string) []Message {
	var out []Message
	for _, msg := range c.History {
		if strings.Contains(msg.Content, keyword) {
			out = append(out, msg)
		}
	}
	return out
}

// CountByRole tallies messages by their role's display string.
func (c *AgentConversation) CountByRole() map[string]int {
	counts := make(map[string]int, 2)
	for _, msg := range c.History {
		counts[string(msg.Role.Kind)]++
	}
	return counts
}

// Clone returns a deep copy of the conversation, safe to hand to a
// caller without exposing the store's internal slice.
func (c *AgentConversation) Clone() *AgentConversation {
	out := &AgentConversation{Task: c.Task, History: make([]Message, len(c.History))}
	copy(out.History, c.History)
	return out
}
