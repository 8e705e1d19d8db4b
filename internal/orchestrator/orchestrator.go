// Package orchestrator implements boss-agent task routing: one boss
// agent reads a task and a catalog of specialist agents, selects the
// best fit, and (optionally) hands the task off to it.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M4n5ter/swarms-go/internal/memory"
	"github.com/M4n5ter/swarms-go/internal/retry"
	"github.com/M4n5ter/swarms-go/pkg/models"
)

// Sentinel errors for orchestrator construction and routing.
var (
	// ErrNameOrDescriptionNotFound means some agent is missing a name or
	// description, which the boss prompt needs to route against.
	ErrNameOrDescriptionNotFound = errors.New("orchestrator: every agent needs a name and description")

	// ErrAgentNotFound means the boss selected an agent name that isn't
	// in the catalog.
	ErrAgentNotFound = errors.New("orchestrator: boss selected an unknown agent")

	// ErrWrongBossResponse means the boss's reply could not be parsed as
	// a SelectAgentResponse.
	ErrWrongBossResponse = errors.New("orchestrator: boss returned an unexpected reply")
)

// DuplicateAgentNameError reports the specific name that was registered
// more than once.
type DuplicateAgentNameError struct {
	Name string
}

func (e *DuplicateAgentNameError) Error() string {
	return fmt.Sprintf("orchestrator: duplicate agent name: %s", e.Name)
}

// Agent is the subset of agent.Agent the orchestrator routes tasks to.
type Agent interface {
	ID() string
	Name() string
	Description() string
	Run(ctx context.Context, task string) (string, error)
}

// Boss is the agent that decides which specialist agent handles a task.
// It is itself an Agent, prompted with the specialist catalog.
type Boss interface {
	Name() string
	Run(ctx context.Context, task string) (string, error)
}

// Orchestrator routes one task at a time to the best-fit agent from a
// fixed catalog, as decided by a boss agent.
type Orchestrator struct {
	boss              Boss
	agents            []Agent
	enableExecuteTask bool

	// BossRetry configures backoff for transient boss-call failures. The
	// zero value retries are a no-op (one attempt, no sleep), so this is
	// off unless explicitly set.
	BossRetry retry.Config

	// router holds the boss/task/agent exchange for every routed task,
	// recorded by Run alongside the boss decision and agent response.
	router *memory.ShortMemory

	mu     sync.Mutex
	byName map[string]Agent
}

// New validates agents' names/descriptions for uniqueness and
// completeness, then returns an Orchestrator. boss should already be
// configured with the system prompt from BossSystemPrompt(agents).
func New(boss Boss, agents []Agent, enableExecuteTask bool) (*Orchestrator, error) {
	byName := make(map[string]Agent, len(agents))
	for _, a := range agents {
		if a.Name() == "" || a.Description() == "" {
			return nil, ErrNameOrDescriptionNotFound
		}
		if _, exists := byName[a.Name()]; exists {
			return nil, &DuplicateAgentNameError{Name: a.Name()}
		}
		byName[a.Name()] = a
	}

	return &Orchestrator{
		boss:              boss,
		agents:            agents,
		enableExecuteTask: enableExecuteTask,
		router:            memory.New(),
		byName:            byName,
	}, nil
}

// BossSystemPrompt renders the routing instructions a boss agent should
// be configured with, describing every candidate agent by name and
// description. Fails with ErrNameOrDescriptionNotFound or
// *DuplicateAgentNameError under the same conditions as New.
func BossSystemPrompt(agents []Agent) (string, error) {
	seen := make(map[string]struct{}, len(agents))
	var descriptions strings.Builder
	for _, a := range agents {
		if a.Name() == "" || a.Description() == "" {
			return "", ErrNameOrDescriptionNotFound
		}
		if _, exists := seen[a.Name()]; exists {
			return "", &DuplicateAgentNameError{Name: a.Name()}
		}
		seen[a.Name()] = struct{}{}
		fmt.Fprintf(&descriptions, "- %s: %s\n", a.Name(), a.Description())
	}

	return fmt.Sprintf(`You are a boss agent responsible for routing tasks to the most appropriate specialized agent.
Available agents:
%s

Your job is to:
1. Analyze the incoming task
2. Select the most appropriate agent based on their descriptions
3. Provide clear reasoning for your selection
4. Optionally modify the task to better suit the selected agent's capabilities

You must respond with **RAW JSON (without markdown grammar)** that contains:
- selected_agent: Name of the chosen agent (must be one of the available agents)
- reasoning: Brief explanation of why this agent was selected
- modified_task: (Optional) A modified version of the task if needed

Always select exactly one agent that best matches the task requirements.
`, descriptions.String()), nil
}

// selectAgentResponse is the boss's raw JSON decision.
type selectAgentResponse struct {
	SelectedAgent string  `json:"selected_agent"`
	Reasoning     string  `json:"reasoning"`
	ModifiedTask  *string `json:"modified_task"`
}

// Result is the full record of one Run call: the boss's decision and,
// if execution was enabled, the selected agent's response.
type Result struct {
	ID           string       `json:"id"`
	Timestamp    int64        `json:"timestamp"`
	Task         TaskRecord   `json:"task"`
	BossDecision BossDecision `json:"boss_decision"`
	Execution    Execution    `json:"execution"`
	TotalTimeSec int64        `json:"total_time"`
}

// TaskRecord holds the task as given and, if the boss rewrote it, the
// modified version.
type TaskRecord struct {
	Original string  `json:"original"`
	Modified *string `json:"modified,omitempty"`
}

// BossDecision is the boss's routing choice and its stated reasoning.
type BossDecision struct {
	SelectedAgent string `json:"selected_agent"`
	Reasoning     string `json:"reasoning"`
}

// Execution records whether and how the selected agent ran.
type Execution struct {
	AgentID       string  `json:"agent_id"`
	AgentName     string  `json:"agent_name"`
	WasExecuted   bool    `json:"was_executed"`
	Response      *string `json:"response,omitempty"`
	ExecutionTime *int64  `json:"execution_time,omitempty"`
}

// Run asks the boss to route task, then (if enabled) runs the selected
// agent against the boss's (possibly modified) task.
func (o *Orchestrator) Run(ctx context.Context, task string) (*Result, error) {
	totalStart := time.Now()

	o.router.Add(task, models.User("User"), task)

	var bossResponseStr string
	bossResult := retry.Do(ctx, o.BossRetry, func() error {
		var err error
		bossResponseStr, err = o.boss.Run(ctx, task)
		return err
	})
	if bossResult.Err != nil {
		return nil, fmt.Errorf("orchestrator: boss run: %w", bossResult.Err)
	}

	o.router.Add(task, models.Assistant(o.boss.Name()), bossResponseStr)

	var decision selectAgentResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(bossResponseStr)), &decision); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongBossResponse, err)
	}

	selected, ok := o.lookup(decision.SelectedAgent)
	if !ok {
		return nil, ErrAgentNotFound
	}

	finalTask := task
	if decision.ModifiedTask != nil {
		finalTask = *decision.ModifiedTask
	}

	var modified *string
	if finalTask != task {
		modified = &finalTask
	}

	var response *string
	var executionTime *int64
	if o.enableExecuteTask {
		executionStart := time.Now()
		agentResponse, err := selected.Run(ctx, finalTask)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: selected agent run: %w", err)
		}
		response = &agentResponse
		elapsed := int64(time.Since(executionStart).Seconds())
		executionTime = &elapsed

		o.router.Add(task, models.Assistant(selected.Name()), agentResponse)
	}

	totalTime := int64(time.Since(totalStart).Seconds())

	return &Result{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Unix(),
		Task: TaskRecord{
			Original: task,
			Modified: modified,
		},
		BossDecision: BossDecision{
			SelectedAgent: selected.Name(),
			Reasoning:     decision.Reasoning,
		},
		Execution: Execution{
			AgentID:       selected.ID(),
			AgentName:     selected.Name(),
			WasExecuted:   o.enableExecuteTask,
			Response:      response,
			ExecutionTime: executionTime,
		},
		TotalTimeSec: totalTime,
	}, nil
}

// RunBatch routes every task concurrently. A task whose routing or
// execution fails is omitted from the result map.
func (o *Orchestrator) RunBatch(ctx context.Context, tasks []string) map[string]*Result {
	type outcome struct {
		task   string
		result *Result
		err    error
	}

	out := make(chan outcome, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		go func(task string) {
			defer wg.Done()
			result, err := o.Run(ctx, task)
			out <- outcome{task: task, result: result, err: err}
		}(task)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make(map[string]*Result, len(tasks))
	for oc := range out {
		if oc.err != nil {
			continue
		}
		results[oc.task] = oc.result
	}
	return results
}

func (o *Orchestrator) lookup(name string) (Agent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.byName[name]
	return a, ok
}
