package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Sentinel errors for AutoSwarm.
var (
	ErrEmptyTask           = errors.New("autoswarm: empty task")
	ErrUnknownBossBehavior = errors.New("autoswarm: boss neither created nor selected agents")
)

// SelectAgentsRequest is the boss's decision to delegate a task to a
// subset of the agents it already knows about.
type SelectAgentsRequest struct {
	// Agents is a list of agent names. Names should be among existing agents.
	Agents []string `json:"agents"`
}

// AgentInfo describes one agent the boss wants created.
type AgentInfo struct {
	Name         string `json:"agent_name"`
	Description  string `json:"agent_description"`
	SystemPrompt string `json:"agent_system_prompt"`
}

func (i AgentInfo) String() string {
	return fmt.Sprintf("[Agent Name: %s] | Description: %s | System Prompt: %s", i.Name, i.Description, i.SystemPrompt)
}

// CreateAgentsRequest is the boss's decision to synthesize new agents to
// handle a task no existing agent is suited for.
type CreateAgentsRequest struct {
	Agents []AgentInfo `json:"agents"`
}

// BossPrompt is the system prompt an AutoSwarm boss agent is configured
// with: decide whether to delegate to existing agents or synthesize new
// ones.
const BossPrompt = `
Manage a swarm of worker agents to efficiently serve the user by deciding whether to create new agents or delegate tasks. Ensure operations are efficient and effective.

### Instructions:

1. **Task Assignment**:
   - Analyze available worker agents when a task is presented.
   - Delegate tasks to existing agents with clear, direct, and actionable instructions if an appropriate agent is available.
   - If no suitable agent exists, create a new agent with a fitting system prompt to handle the task.

2. **Agent Creation**:
   - Name agents according to the task they are intended to perform (e.g., "Twitter Marketing Agent").
   - Provide each new agent with a concise and clear system prompt that includes its role, objectives, and any tools it can utilize.

3. **Efficiency**:
   - Minimize redundancy and maximize task completion speed.
   - Avoid unnecessary agent creation if an existing agent can fulfill the task.

4. **Communication**:
   - Be explicit in task delegation instructions to avoid ambiguity and ensure effective task execution.
   - Require agents to report back on task completion or encountered issues.

5. **Reasoning and Decisions**:
   - Offer brief reasoning when selecting or creating agents to maintain transparency.
   - Avoid using an agent if unnecessary, with a clear explanation if no agents are suitable for a task.

# Output Format

Present your plan in clear, bullet-point format or short concise paragraphs, outlining task assignment, agent creation, efficiency strategies, and communication protocols.

# Notes

- Preserve transparency by always providing reasoning for task-agent assignments and creation.
- Ensure instructions to agents are unambiguous to minimize error.
`

// AgentFactory builds a new Agent from the boss's synthesized
// specification.
type AgentFactory func(info AgentInfo) Agent

// Router runs a resolved set of agents against a task and returns
// whatever record the caller wants to surface (a concurrent workflow
// conversation, an orchestrator result, and so on).
type Router func(ctx context.Context, task string, agents []Agent) (any, error)

// AutoSwarm lets a boss agent dynamically decide, per task, whether to
// delegate to agents it already knows about or synthesize new ones.
// Agents created this way are retained for the AutoSwarm's lifetime:
// once built, they remain selectable by later tasks rather than being
// torn down after the task that created them.
type AutoSwarm struct {
	name        string
	description string
	boss        Boss
	factory     AgentFactory
	router      Router

	mu       sync.Mutex
	existing map[string]Agent
}

// NewAutoSwarm returns an AutoSwarm. boss should already be configured
// with BossPrompt as its system prompt. factory constructs new agents
// from the boss's CreateAgentsRequest entries; router dispatches a
// resolved agent set against one task.
func NewAutoSwarm(name, description string, boss Boss, factory AgentFactory, router Router) *AutoSwarm {
	return &AutoSwarm{
		name:        name,
		description: description,
		boss:        boss,
		factory:     factory,
		router:      router,
		existing:    make(map[string]Agent),
	}
}

// Run prompts the boss with the task and the current agent catalog, then
// either delegates to the agents the boss selected or creates the
// agents the boss specified, routing the task to whichever set results.
func (s *AutoSwarm) Run(ctx context.Context, task string) (any, error) {
	if task == "" {
		return nil, ErrEmptyTask
	}

	prompt := fmt.Sprintf("### Existing Agents:\n%s\n\n### Task:\n%s", s.existingAgentsSummary(), task)

	bossResp, err := s.boss.Run(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("autoswarm: boss run: %w", err)
	}
	bossResp = strings.TrimSpace(bossResp)

	var selectReq SelectAgentsRequest
	if err := json.Unmarshal([]byte(bossResp), &selectReq); err == nil && len(selectReq.Agents) > 0 {
		agents := s.resolveExisting(selectReq.Agents)
		return s.router(ctx, task, agents)
	}

	var createReq CreateAgentsRequest
	if err := json.Unmarshal([]byte(bossResp), &createReq); err == nil && len(createReq.Agents) > 0 {
		agents := s.createAgents(createReq)
		return s.router(ctx, task, agents)
	}

	return nil, ErrUnknownBossBehavior
}

func (s *AutoSwarm) existingAgentsSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, a := range s.existing {
		if info, ok := a.(interface{ Description() string }); ok {
			fmt.Fprintf(&b, "\n[Agent Name: %s] | Description: %s", a.Name(), info.Description())
		}
	}
	return b.String()
}

func (s *AutoSwarm) resolveExisting(names []string) []Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	agents := make([]Agent, 0, len(names))
	for _, name := range names {
		if a, ok := s.existing[name]; ok {
			agents = append(agents, a)
		}
	}
	return agents
}

// createAgents builds one new Agent per AgentInfo and retains each in
// the swarm's catalog, keyed by name (an agent created with the same
// name as an existing one replaces it).
func (s *AutoSwarm) createAgents(req CreateAgentsRequest) []Agent {
	agents := make([]Agent, 0, len(req.Agents))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, info := range req.Agents {
		a := s.factory(info)
		s.existing[info.Name] = a
		agents = append(agents, a)
	}
	return agents
}
