// Package memory implements the task-keyed, concurrency-safe conversation
// store shared across agents within a swarm.
package memory

import (
	"sync"
	"time"

	"github.com/M4n5ter/swarms-go/pkg/models"
)

// ShortMemory maps tasks to their AgentConversation. Insertion order of
// messages within one conversation is preserved; insertion order across
// tasks is not significant. A ShortMemory value is process-local and safe
// for concurrent use: appends to the same task are serialized, appends to
// different tasks proceed in parallel.
type ShortMemory struct {
	mu    sync.RWMutex
	convs map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	conv models.AgentConversation
}

// New returns an empty ShortMemory ready for concurrent use.
func New() *ShortMemory {
	return &ShortMemory{convs: make(map[string]*entry)}
}

func (m *ShortMemory) entryFor(task string) *entry {
	m.mu.RLock()
	e, ok := m.convs[task]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.convs[task]; ok {
		return e
	}
	e = &entry{conv: models.AgentConversation{Task: task}}
	m.convs[task] = e
	return e
}

// Add appends a message to task's conversation, creating the conversation
// on first use. The timestamp recorded is monotonically non-decreasing
// relative to every prior Add call on the same task.
func (m *ShortMemory) Add(task string, role models.Role, content string) {
	e := m.entryFor(task)
	e.mu.Lock()
	defer e.mu.Unlock()

	ts := time.Now().Unix()
	if n := len(e.conv.History); n > 0 && e.conv.History[n-1].Timestamp > ts {
		ts = e.conv.History[n-1].Timestamp
	}
	e.conv.Append(models.Message{Role: role, Content: content, Timestamp: ts})
}

// Get returns a snapshot of task's conversation. The snapshot need not
// reflect appends made after the call returns. Returns false if the task
// has no conversation yet.
func (m *ShortMemory) Get(task string) (*models.AgentConversation, bool) {
	m.mu.RLock()
	e, ok := m.convs[task]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Clone(), true
}

// Format renders the display string of task's conversation, or an empty
// string if the task has no conversation.
func (m *ShortMemory) Format(task string) string {
	conv, ok := m.Get(task)
	if !ok {
		return ""
	}
	return conv.String()
}

// Has reports whether a conversation exists for task.
func (m *ShortMemory) Has(task string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.convs[task]
	return ok
}

// Delete removes task's conversation entirely.
func (m *ShortMemory) Delete(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, task)
}
