// Package agent implements the per-task agent state machine: ingest task,
// optionally plan, optionally consult long-term memory, loop chat attempts
// against a completion model (dispatching tool calls as they arrive) until
// a stop word appears or the loop budget is exhausted, checkpointing its
// short-term memory along the way.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/M4n5ter/swarms-go/internal/completion"
	"github.com/M4n5ter/swarms-go/internal/digest"
	"github.com/M4n5ter/swarms-go/internal/memory"
	"github.com/M4n5ter/swarms-go/internal/observability"
	"github.com/M4n5ter/swarms-go/internal/persistence"
	"github.com/M4n5ter/swarms-go/internal/retry"
	"github.com/M4n5ter/swarms-go/internal/tool"
	"github.com/M4n5ter/swarms-go/internal/vectorindex"
	"github.com/M4n5ter/swarms-go/pkg/models"
)

// Agent runs one Config against a completion model, dispatching tool
// calls through an optional tool registry and optionally grounding its
// responses against a long-term vector index. An Agent is safe for
// concurrent Run calls across distinct tasks; checkpoint writes for a
// single agent are serialized against each other regardless of task.
type Agent struct {
	config Config
	model  completion.Model
	tools  *tool.Registry
	index  vectorindex.Index
	logger *observability.Logger

	short  *memory.ShortMemory
	saveMu sync.Mutex
}

// New constructs an Agent. tools and index may be nil; logger may be nil,
// in which case a default JSON logger to stdout is used.
func New(config Config, model completion.Model, tools *tool.Registry, index vectorindex.Index, logger *observability.Logger) *Agent {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	return &Agent{
		config: config,
		model:  model,
		tools:  tools,
		index:  index,
		logger: logger,
		short:  memory.New(),
	}
}

// ID returns the agent's configured identifier.
func (a *Agent) ID() string { return a.config.ID }

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.config.Name }

// Description returns the agent's configured description.
func (a *Agent) Description() string { return a.config.Description }

// Run drives one task through the full agent state machine and returns
// the concatenation of every successful loop iteration's response.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	ctx = observability.AddAgentID(ctx, a.config.Name)
	ctx = observability.AddTask(ctx, task)

	a.short.Add(task, models.User(a.config.UserName), task)

	if a.config.PlanEnabled {
		if err := a.plan(ctx, task); err != nil {
			return "", err
		}
	}

	if a.index != nil {
		if err := a.queryLongTermMemory(ctx, task); err != nil {
			return "", err
		}
	}

	if a.config.Autosave {
		if err := a.saveTaskState(task); err != nil {
			return "", err
		}
	}

	var lastResponse string
	var allResponses []string

	for loopCount := uint32(0); loopCount < a.config.MaxLoops; loopCount++ {
		success := false

		for attempt := uint32(0); attempt < a.config.RetryAttempts; attempt++ {
			if success {
				break
			}

			if a.index != nil && a.config.RAGEveryLoop {
				ragStart := time.Now()
				taskPrompt := a.short.Format(task)
				err := a.queryLongTermMemory(ctx, taskPrompt)
				a.logger.LogAttempt(ctx, attempt, time.Since(ragStart), err)
				if err != nil {
					a.handleErrorInAttempt(ctx, task, err)
					continue
				}
			}

			attemptStart := time.Now()
			response, err := a.chat(ctx, task)
			a.logger.LogAttempt(ctx, attempt, time.Since(attemptStart), err)
			if err != nil {
				a.handleErrorInAttempt(ctx, task, err)
				continue
			}

			lastResponse = response
			a.short.Add(task, models.Assistant(a.config.Name), lastResponse)
			allResponses = append(allResponses, lastResponse)
			success = true
		}

		if !success {
			break
		}

		if a.isResponseComplete(lastResponse) {
			break
		}
	}

	if a.config.Autosave {
		if err := a.saveTaskState(task); err != nil {
			return "", err
		}
	}

	result := ""
	for _, r := range allResponses {
		result += r
	}
	return result, nil
}

// RunMultipleTasks runs every task concurrently against this agent and
// returns the successful results in arrival order. A task that fails is
// logged and omitted from the result slice, mirroring the fan-out/fan-in
// used by the concurrent workflow scheduler.
func (a *Agent) RunMultipleTasks(ctx context.Context, tasks []string) []string {
	type outcome struct {
		task   string
		result string
		err    error
	}

	out := make(chan outcome, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		go func(task string) {
			defer wg.Done()
			result, err := a.Run(ctx, task)
			out <- outcome{task: task, result: result, err: err}
		}(task)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]string, 0, len(tasks))
	for o := range out {
		if o.err != nil {
			a.logger.Error(ctx, "agent task failed", "agent", a.config.Name, "task", o.task, "error", o.err)
			continue
		}
		results = append(results, o.result)
	}
	return results
}

// ReceiveMessage treats an inbound message from another agent as a new
// task, prefixed with its sender's role string.
func (a *Agent) ReceiveMessage(ctx context.Context, sender models.Role, message string) (string, error) {
	return a.Run(ctx, fmt.Sprintf("From %s: %s", sender, message))
}

func (a *Agent) plan(ctx context.Context, task string) error {
	if a.config.PlanningPrompt == "" {
		return nil
	}
	prompt := a.config.PlanningPrompt + " " + task
	resp, err := a.model.Complete(ctx, completion.Request{
		Prompt:      prompt,
		Temperature: a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	})
	if err != nil {
		return &ModelError{Err: err}
	}
	a.logger.Debug(ctx, "plan produced", "plan", resp.Text())
	a.short.Add(task, models.Assistant(a.config.Name), resp.Text())
	return nil
}

func (a *Agent) queryLongTermMemory(ctx context.Context, task string) error {
	var matches []vectorindex.Match
	result := retry.Do(ctx, a.config.RAGRetry, func() error {
		var err error
		matches, err = a.index.TopN(ctx, task, 1)
		return err
	})
	if result.Err != nil {
		return &ModelError{Err: result.Err}
	}
	if len(matches) == 0 {
		return nil
	}
	retrieval := fmt.Sprintf("Documents Available: %s", matches[0].Payload)
	a.short.Add(task, models.User("[RAG] Database"), retrieval)
	return nil
}

// chat sends the task's full conversation history to the completion
// model and resolves any tool calls in its reply before returning the
// first text content produced. A reply consisting only of tool calls
// triggers one additional round trip carrying the tool results.
func (a *Agent) chat(ctx context.Context, task string) (string, error) {
	const maxToolRounds = 8

	for round := 0; round < maxToolRounds; round++ {
		conv, _ := a.short.Get(task)
		req := completion.Request{
			Prompt:       task,
			SystemPrompt: a.systemPrompt(),
			ChatHistory:  historyToMessages(conv),
			Temperature:  a.config.Temperature,
			MaxTokens:    a.config.MaxTokens,
		}
		if a.tools != nil {
			req.Tools = toolDefinitions(a.tools)
		}

		resp, err := a.model.Complete(ctx, req)
		if err != nil {
			return "", &ModelError{Err: err}
		}
		if len(resp.Choice) == 0 {
			return "", ErrNoChoiceReturned
		}

		var text string
		var toolCalled bool
		for _, content := range resp.Choice {
			switch content.Kind {
			case completion.AssistantContentText:
				text += content.Text
			case completion.AssistantContentToolCall:
				if !a.toolRegistered(content.ToolName) {
					// No tool answers to this name: treat the call as a
					// plain text response carrying its raw arguments
					// rather than attempting dispatch.
					text += content.ToolArgsJSON
					continue
				}
				toolCalled = true
				result, err := a.dispatchToolCall(content)
				if err != nil {
					result = fmt.Sprintf("error: %v", err)
				}
				a.short.Add(task, models.Assistant(a.config.Name), fmt.Sprintf("tool %s result: %s", content.ToolName, result))
			}
		}

		if !toolCalled {
			return text, nil
		}
		// Tool calls were resolved into short memory above; loop once more
		// so the model sees their results in history.
	}
	return "", fmt.Errorf("agent: exceeded %d tool-call rounds for task %q", maxToolRounds, task)
}

func (a *Agent) toolRegistered(name string) bool {
	if a.tools == nil {
		return false
	}
	_, ok := a.tools.Get(name)
	return ok
}

func (a *Agent) dispatchToolCall(content completion.AssistantContent) (string, error) {
	return a.tools.Call(content.ToolName, content.ToolArgsJSON)
}

func (a *Agent) systemPrompt() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return "You are a helpful assistant."
}

// handleErrorInAttempt checkpoints state after a failed attempt; the
// attempt's own failure is already logged by the LogAttempt call at its
// call site.
func (a *Agent) handleErrorInAttempt(ctx context.Context, task string, err error) {
	if a.config.Autosave {
		if saveErr := a.saveTaskState(task); saveErr != nil {
			a.logger.Error(ctx, "failed to save agent task state", "agent", a.config.Name, "task", task, "error", saveErr)
		}
	}
}

// isResponseComplete reports whether response contains any of the
// agent's configured stop words.
func (a *Agent) isResponseComplete(response string) bool {
	for word := range a.config.StopWords {
		if word != "" && contains(response, word) {
			return true
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	return len(needle) > 0 && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

// saveTaskState writes the task's conversation to the agent's configured
// save-state directory, named "{agent_name}_{digest}.json" where digest
// is the lower 32 bits of the xxhash of the task string, rendered as
// lowercase hex. Checkpoint writes for this agent are serialized across
// tasks to keep the digest-named file free of interleaved writers.
func (a *Agent) saveTaskState(task string) error {
	if a.config.SaveStatePath == "" {
		return nil
	}

	path, err := a.checkpointPath(task)
	if err != nil {
		return err
	}

	conv, ok := a.short.Get(task)
	if !ok {
		return nil
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return &SerializationError{Err: err}
	}

	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	if err := persistence.Save(data, path); err != nil {
		return &IoError{Err: err}
	}
	return nil
}

func (a *Agent) checkpointPath(task string) (string, error) {
	dir := a.config.SaveStatePath
	isDir, _ := statDir(dir)
	if !isDir {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &InvalidSaveStatePathError{Path: dir}
		}
		dir = parent
	}

	filename := fmt.Sprintf("%s_%s.json", a.config.Name, digest.Task(task))
	return filepath.Join(dir, filename), nil
}

func historyToMessages(conv *models.AgentConversation) []completion.Message {
	if conv == nil {
		return nil
	}
	out := make([]completion.Message, 0, len(conv.History))
	for _, msg := range conv.History {
		role := "user"
		if msg.Role.Kind == models.RoleKindAssistant {
			role = "assistant"
		}
		out = append(out, completion.Message{
			Role:    role,
			Content: fmt.Sprintf("%s: %s", msg.Role.Name, msg.Content),
		})
	}
	return out
}

func toolDefinitions(registry *tool.Registry) []completion.ToolDefinition {
	defs := registry.Definitions()
	out := make([]completion.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, completion.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			ParamSchema: d.ParamSchema,
		})
	}
	return out
}
