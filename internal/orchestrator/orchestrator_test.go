package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/M4n5ter/swarms-go/internal/retry"
)

type stubAgent struct {
	id          string
	name        string
	description string
	run         func(task string) (string, error)
}

func (a *stubAgent) ID() string          { return a.id }
func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return a.description }
func (a *stubAgent) Run(ctx context.Context, task string) (string, error) {
	return a.run(task)
}

type stubBoss struct {
	response string
	err      error
}

func (b *stubBoss) Name() string { return "boss" }
func (b *stubBoss) Run(ctx context.Context, task string) (string, error) {
	return b.response, b.err
}

// flakyBoss fails every call before the configured call number, then
// returns response, to exercise Orchestrator.BossRetry.
type flakyBoss struct {
	failUntilCall int
	calls         int
	response      string
}

func (b *flakyBoss) Name() string { return "boss" }
func (b *flakyBoss) Run(ctx context.Context, task string) (string, error) {
	b.calls++
	if b.calls <= b.failUntilCall {
		return "", errors.New("boss unavailable")
	}
	return b.response, nil
}

func TestNew_RejectsMissingDescription(t *testing.T) {
	agents := []Agent{&stubAgent{id: "1", name: "researcher", description: ""}}
	_, err := New(&stubBoss{}, agents, true)
	if !errors.Is(err, ErrNameOrDescriptionNotFound) {
		t.Fatalf("New() error = %v, want ErrNameOrDescriptionNotFound", err)
	}
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	agents := []Agent{
		&stubAgent{id: "1", name: "researcher", description: "finds things"},
		&stubAgent{id: "2", name: "researcher", description: "finds other things"},
	}
	_, err := New(&stubBoss{}, agents, true)
	var dup *DuplicateAgentNameError
	if !errors.As(err, &dup) {
		t.Fatalf("New() error = %v, want *DuplicateAgentNameError", err)
	}
}

func TestBossSystemPrompt_ListsEveryAgent(t *testing.T) {
	agents := []Agent{
		&stubAgent{id: "1", name: "researcher", description: "finds things"},
		&stubAgent{id: "2", name: "writer", description: "writes things"},
	}
	prompt, err := BossSystemPrompt(agents)
	if err != nil {
		t.Fatalf("BossSystemPrompt() error = %v", err)
	}
	if !strings.Contains(prompt, "researcher: finds things") {
		t.Fatalf("prompt missing researcher entry: %s", prompt)
	}
	if !strings.Contains(prompt, "writer: writes things") {
		t.Fatalf("prompt missing writer entry: %s", prompt)
	}
}

func TestOrchestrator_RunRoutesAndExecutes(t *testing.T) {
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { return "found: " + task, nil },
	}
	boss := &stubBoss{response: `{"selected_agent":"researcher","reasoning":"best fit"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := o.Run(context.Background(), "find the bug")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.BossDecision.SelectedAgent != "researcher" {
		t.Fatalf("SelectedAgent = %q", result.BossDecision.SelectedAgent)
	}
	if result.Execution.Response == nil || *result.Execution.Response != "found: find the bug" {
		t.Fatalf("Execution.Response = %v", result.Execution.Response)
	}
	if !result.Execution.WasExecuted {
		t.Fatalf("expected WasExecuted = true")
	}
}

func TestOrchestrator_RunSkipsExecutionWhenDisabled(t *testing.T) {
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { return "should not run", nil },
	}
	boss := &stubBoss{response: `{"selected_agent":"researcher","reasoning":"best fit"}`}

	o, err := New(boss, []Agent{researcher}, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := o.Run(context.Background(), "find the bug")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Execution.Response != nil {
		t.Fatalf("Execution.Response = %v, want nil", result.Execution.Response)
	}
	if result.Execution.WasExecuted {
		t.Fatalf("expected WasExecuted = false")
	}
}

func TestOrchestrator_RunRejectsUnknownAgent(t *testing.T) {
	researcher := &stubAgent{id: "1", name: "researcher", description: "finds things"}
	boss := &stubBoss{response: `{"selected_agent":"ghost","reasoning":"nope"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Run(context.Background(), "task")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("Run() error = %v, want ErrAgentNotFound", err)
	}
}

func TestOrchestrator_RunRejectsMalformedBossResponse(t *testing.T) {
	researcher := &stubAgent{id: "1", name: "researcher", description: "finds things"}
	boss := &stubBoss{response: "not json"}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Run(context.Background(), "task")
	if !errors.Is(err, ErrWrongBossResponse) {
		t.Fatalf("Run() error = %v, want ErrWrongBossResponse", err)
	}
}

func TestOrchestrator_RunUsesModifiedTask(t *testing.T) {
	var received string
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { received = task; return "ok", nil },
	}
	boss := &stubBoss{response: `{"selected_agent":"researcher","reasoning":"ok","modified_task":"refined task"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := o.Run(context.Background(), "original task")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if received != "refined task" {
		t.Fatalf("agent received %q, want %q", received, "refined task")
	}
	if result.Task.Modified == nil || *result.Task.Modified != "refined task" {
		t.Fatalf("Task.Modified = %v", result.Task.Modified)
	}
}

func TestOrchestrator_BossRetryRecoversFromTransientFailure(t *testing.T) {
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { return "found: " + task, nil },
	}
	boss := &flakyBoss{failUntilCall: 2, response: `{"selected_agent":"researcher","reasoning":"best fit"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	o.BossRetry = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	result, err := o.Run(context.Background(), "find the bug")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if boss.calls != 3 {
		t.Fatalf("boss calls = %d, want 3", boss.calls)
	}
	if result.BossDecision.SelectedAgent != "researcher" {
		t.Fatalf("SelectedAgent = %q", result.BossDecision.SelectedAgent)
	}
}

func TestOrchestrator_BossRetryOffByDefault(t *testing.T) {
	researcher := &stubAgent{id: "1", name: "researcher", description: "finds things"}
	boss := &flakyBoss{failUntilCall: 1, response: `{"selected_agent":"researcher","reasoning":"ok"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := o.Run(context.Background(), "task"); err == nil {
		t.Fatalf("expected error on first transient boss failure with no retry configured")
	}
	if boss.calls != 1 {
		t.Fatalf("boss calls = %d, want 1 (no retry)", boss.calls)
	}
}

func TestOrchestrator_RunRecordsRouterMemory(t *testing.T) {
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { return "found: " + task, nil },
	}
	boss := &stubBoss{response: `{"selected_agent":"researcher","reasoning":"best fit"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := o.Run(context.Background(), "find the bug"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	conv, ok := o.router.Get("find the bug")
	if !ok {
		t.Fatalf("expected router memory to hold a conversation for the task")
	}
	if len(conv.History) != 3 {
		t.Fatalf("router memory len = %d, want 3 (task, boss reply, agent response)", len(conv.History))
	}
	if conv.History[0].Role.Name != "User" || conv.History[0].Content != "find the bug" {
		t.Fatalf("first entry = %+v, want the user task", conv.History[0])
	}
	if conv.History[1].Content != boss.response {
		t.Fatalf("second entry content = %q, want the boss's raw reply", conv.History[1].Content)
	}
	if conv.History[2].Role.Name != "researcher" || conv.History[2].Content != "found: find the bug" {
		t.Fatalf("third entry = %+v, want the selected agent's response", conv.History[2])
	}
}

func TestOrchestrator_RunBatch(t *testing.T) {
	researcher := &stubAgent{
		id: "1", name: "researcher", description: "finds things",
		run: func(task string) (string, error) { return "done:" + task, nil },
	}
	boss := &stubBoss{response: `{"selected_agent":"researcher","reasoning":"ok"}`}

	o, err := New(boss, []Agent{researcher}, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results := o.RunBatch(context.Background(), []string{"a", "b", "c"})
	if len(results) != 3 {
		t.Fatalf("RunBatch() len = %d, want 3", len(results))
	}
}
