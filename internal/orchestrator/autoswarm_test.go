package orchestrator

import (
	"context"
	"errors"
	"testing"
)

var errBossFailed = errors.New("boss unavailable")

func TestAutoSwarm_SelectsExistingAgents(t *testing.T) {
	researcher := &stubAgent{id: "1", name: "researcher", description: "finds things"}
	boss := &stubBoss{response: `{"agents":["researcher"]}`}

	var routedAgents []Agent
	router := func(ctx context.Context, task string, agents []Agent) (any, error) {
		routedAgents = agents
		return "routed:" + task, nil
	}

	s := NewAutoSwarm("auto", "", boss, nil, router)
	s.existing["researcher"] = researcher

	result, err := s.Run(context.Background(), "find the bug")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result != "routed:find the bug" {
		t.Fatalf("result = %v", result)
	}
	if len(routedAgents) != 1 || routedAgents[0].Name() != "researcher" {
		t.Fatalf("routedAgents = %+v", routedAgents)
	}
}

func TestAutoSwarm_CreatesAndRetainsAgents(t *testing.T) {
	boss := &stubBoss{response: `{"agents":[{"agent_name":"writer","agent_description":"writes things","agent_system_prompt":"you write"}]}`}

	var created []AgentInfo
	factory := func(info AgentInfo) Agent {
		created = append(created, info)
		return &stubAgent{id: "new", name: info.Name, description: info.Description}
	}

	var routedAgents []Agent
	router := func(ctx context.Context, task string, agents []Agent) (any, error) {
		routedAgents = agents
		return "ok", nil
	}

	s := NewAutoSwarm("auto", "", boss, factory, router)

	if _, err := s.Run(context.Background(), "write a blog post"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(created) != 1 || created[0].Name != "writer" {
		t.Fatalf("created = %+v", created)
	}
	if len(routedAgents) != 1 || routedAgents[0].Name() != "writer" {
		t.Fatalf("routedAgents = %+v", routedAgents)
	}

	s.mu.Lock()
	_, retained := s.existing["writer"]
	s.mu.Unlock()
	if !retained {
		t.Fatalf("expected writer to be retained in existing agents")
	}
}

func TestAutoSwarm_RejectsEmptyTask(t *testing.T) {
	s := NewAutoSwarm("auto", "", &stubBoss{}, nil, nil)
	if _, err := s.Run(context.Background(), ""); err != ErrEmptyTask {
		t.Fatalf("Run() error = %v, want ErrEmptyTask", err)
	}
}

func TestAutoSwarm_UnknownBossBehaviorErrors(t *testing.T) {
	boss := &stubBoss{response: `{"unexpected":"shape"}`}
	s := NewAutoSwarm("auto", "", boss, nil, nil)

	_, err := s.Run(context.Background(), "do something")
	if err != ErrUnknownBossBehavior {
		t.Fatalf("Run() error = %v, want ErrUnknownBossBehavior", err)
	}
}

func TestAutoSwarm_BossErrorPropagates(t *testing.T) {
	boss := &stubBoss{err: errBossFailed}
	s := NewAutoSwarm("auto", "", boss, nil, nil)

	_, err := s.Run(context.Background(), "do something")
	if err == nil {
		t.Fatalf("Run() error = nil, want wrapped boss error")
	}
}
