// Package concurrent implements a fan-out/fan-in workflow: one task is
// dispatched to every member agent at once, and their outputs are
// collected into a single conversation plus a persisted metadata record.
package concurrent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M4n5ter/swarms-go/internal/digest"
	"github.com/M4n5ter/swarms-go/internal/memory"
	"github.com/M4n5ter/swarms-go/internal/observability"
	"github.com/M4n5ter/swarms-go/internal/persistence"
	"github.com/M4n5ter/swarms-go/pkg/models"
)

// ErrEmptyTaskOrAgents is returned by Run/RunBatch when the task is empty
// or no agents have been added to the workflow.
var ErrEmptyTaskOrAgents = errors.New("concurrent: task or agents are empty")

// ErrTaskAlreadyExists is returned by Run when the same task string has
// already been submitted to this workflow instance.
var ErrTaskAlreadyExists = errors.New("concurrent: task already exists")

// Runner is the subset of agent.Agent a workflow member needs to expose.
type Runner interface {
	Name() string
	Run(ctx context.Context, task string) (string, error)
}

// AgentOutput is one agent's contribution to a task's outcome.
type AgentOutput struct {
	AgentName string `json:"agent_name"`
	Output    string `json:"output"`
}

// Metadata is the persisted record of one task's run: every agent's
// output plus identifying and timing information.
type Metadata struct {
	SwarmID            string        `json:"swarm_id"`
	Task               string        `json:"task"`
	Description        string        `json:"description"`
	AgentsOutputSchema []AgentOutput `json:"agents_output_schema"`
	Timestamp          time.Time     `json:"timestamp"`
}

// Workflow fans one task out to every member agent concurrently and fans
// the results back into a single conversation, persisting a Metadata
// record for each task it runs. A Workflow is safe for concurrent Run
// calls across distinct tasks.
type Workflow struct {
	name              string
	description       string
	metadataOutputDir string
	agents            []Runner
	logger            *observability.Logger

	mu    sync.Mutex
	tasks map[string]struct{}

	conversation *memory.ShortMemory
}

// Builder assembles a Workflow.
type Builder struct {
	w *Workflow
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{w: &Workflow{
		tasks:        make(map[string]struct{}),
		conversation: memory.New(),
	}}
}

func (b *Builder) Name(name string) *Builder {
	b.w.name = name
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.w.description = description
	return b
}

func (b *Builder) MetadataOutputDir(dir string) *Builder {
	b.w.metadataOutputDir = dir
	return b
}

func (b *Builder) Logger(logger *observability.Logger) *Builder {
	b.w.logger = logger
	return b
}

func (b *Builder) AddAgent(agent Runner) *Builder {
	b.w.agents = append(b.w.agents, agent)
	return b
}

func (b *Builder) Agents(agents []Runner) *Builder {
	b.w.agents = append(b.w.agents, agents...)
	return b
}

// Build finalizes the Workflow.
func (b *Builder) Build() *Workflow {
	if b.w.logger == nil {
		b.w.logger = observability.NewLogger(observability.LogConfig{})
	}
	return b.w
}

// Run dispatches task to every member agent concurrently and returns the
// fanned-in conversation. A metadata record is persisted under
// MetadataOutputDir named after the lower 32 bits of the task's xxhash.
func (w *Workflow) Run(ctx context.Context, task string) (*models.AgentConversation, error) {
	if task == "" || len(w.agents) == 0 {
		return nil, ErrEmptyTaskOrAgents
	}
	if !w.claimTask(task) {
		return nil, ErrTaskAlreadyExists
	}

	ctx = observability.AddSwarmID(ctx, w.name)
	ctx = observability.AddTask(ctx, task)

	w.conversation.Add(task, models.User("User"), task)

	outputs := w.fanOut(ctx, task)

	for _, o := range outputs {
		w.conversation.Add(task, models.Assistant(o.AgentName), o.Output)
	}

	metadata := Metadata{
		SwarmID:            uuid.NewString(),
		Task:               task,
		Description:        w.description,
		AgentsOutputSchema: outputs,
		Timestamp:          time.Now(),
	}

	if w.metadataOutputDir != "" {
		if err := w.persistMetadata(task, metadata); err != nil {
			return nil, err
		}
	}

	conv, _ := w.conversation.Get(task)
	return conv, nil
}

// RunBatch runs every task concurrently, each independently fanning out
// to the agent set. Results are returned keyed by task; a task whose run
// fails is logged and omitted from the result map.
func (w *Workflow) RunBatch(ctx context.Context, tasks []string) (map[string]*models.AgentConversation, error) {
	if len(tasks) == 0 || len(w.agents) == 0 {
		return nil, ErrEmptyTaskOrAgents
	}

	type outcome struct {
		task string
		conv *models.AgentConversation
		err  error
	}

	out := make(chan outcome, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		go func(task string) {
			defer wg.Done()
			conv, err := w.Run(ctx, task)
			out <- outcome{task: task, conv: conv, err: err}
		}(task)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make(map[string]*models.AgentConversation, len(tasks))
	for o := range out {
		if o.err != nil {
			w.logger.Error(ctx, "concurrent workflow task failed", "task", o.task, "error", o.err)
			continue
		}
		results[o.task] = o.conv
	}
	return results, nil
}

// RunWithDependencies runs a batch of tasks stage by stage: every task
// in a stage is fanned out to the full agent set concurrently, and a
// stage doesn't start until every task in the previous stage has
// finished, so a task's DependsOn list is honored as a wall-clock
// ordering constraint rather than a data dependency between results.
func (w *Workflow) RunWithDependencies(ctx context.Context, tasks []TaskSpec) (map[string]*models.AgentConversation, error) {
	stages, err := BuildDependencyStages(tasks)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(tasks))
	for _, spec := range tasks {
		byID[spec.ID] = spec.Task
	}

	results := make(map[string]*models.AgentConversation, len(tasks))
	for _, stage := range stages.Stages() {
		stageTasks := make([]string, len(stage))
		for i, id := range stage {
			stageTasks[i] = byID[id]
		}

		stageResults, err := w.RunBatch(ctx, stageTasks)
		if err != nil {
			return nil, err
		}
		for i, id := range stage {
			if conv, ok := stageResults[byID[id]]; ok {
				results[id] = conv
			}
		}
	}
	return results, nil
}

func (w *Workflow) claimTask(task string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.tasks[task]; exists {
		return false
	}
	w.tasks[task] = struct{}{}
	return true
}

func (w *Workflow) fanOut(ctx context.Context, task string) []AgentOutput {
	out := make(chan AgentOutput, len(w.agents))
	var wg sync.WaitGroup
	wg.Add(len(w.agents))
	for _, a := range w.agents {
		go func(a Runner) {
			defer wg.Done()
			result, err := a.Run(ctx, task)
			if err != nil {
				w.logger.Error(ctx, "concurrent workflow agent failed", "agent", a.Name(), "task", task, "error", err)
				return
			}
			out <- AgentOutput{AgentName: a.Name(), Output: result}
		}(a)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	outputs := make([]AgentOutput, 0, len(w.agents))
	for o := range out {
		outputs = append(outputs, o)
	}
	return outputs
}

func (w *Workflow) persistMetadata(task string, metadata Metadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("concurrent: marshal metadata for task %q: %w", task, err)
	}

	path := filepath.Join(w.metadataOutputDir, digest.Task(task)+".json")

	if err := persistence.Save(data, path); err != nil {
		return fmt.Errorf("concurrent: persist metadata for task %q: %w", task, err)
	}
	return nil
}
