package agent

import (
	"github.com/google/uuid"

	"github.com/M4n5ter/swarms-go/internal/retry"
)

// Config holds the tunable parameters of one agent. Zero values are not
// meaningful on their own; use DefaultConfig and override from there.
type Config struct {
	ID          string
	Name        string
	UserName    string
	Description string

	Temperature float64
	MaxTokens   uint64

	MaxLoops      uint32
	RetryAttempts uint32

	PlanEnabled    bool
	PlanningPrompt string

	Autosave      bool
	RAGEveryLoop  bool
	SaveStatePath string

	StopWords map[string]struct{}

	// RAGRetry configures backoff for transient long-term-memory lookup
	// failures. The zero value retries are a no-op (one attempt, no
	// sleep) so RAG retrying is off unless explicitly configured.
	RAGRetry retry.Config
}

// DefaultConfig returns a Config with the same defaults the original
// agent loop used: one loop, one attempt, no planning, no autosave.
func DefaultConfig() Config {
	return Config{
		ID:            uuid.NewString(),
		Name:          "agent",
		UserName:      "user",
		Temperature:   0.7,
		MaxTokens:     4096,
		MaxLoops:      1,
		RetryAttempts: 1,
		StopWords:     make(map[string]struct{}),
	}
}

// AddStopWord registers word as a phrase that, once present in an
// assistant response, ends the agent's loop early.
func (c *Config) AddStopWord(word string) {
	if c.StopWords == nil {
		c.StopWords = make(map[string]struct{})
	}
	c.StopWords[word] = struct{}{}
}
