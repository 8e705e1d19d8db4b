package concurrent

import (
	"context"
	"reflect"
	"testing"
)

func TestBuildDependencyStages_OrdersByDependsOn(t *testing.T) {
	tasks := []TaskSpec{
		{ID: "collect", Task: "collect data"},
		{ID: "analyze", Task: "analyze data", DependsOn: []string{"collect"}},
		{ID: "report", Task: "write report", DependsOn: []string{"analyze"}},
	}

	stages, err := BuildDependencyStages(tasks)
	if err != nil {
		t.Fatalf("BuildDependencyStages() error = %v", err)
	}
	want := [][]string{{"collect"}, {"analyze"}, {"report"}}
	if !reflect.DeepEqual(stages.Stages(), want) {
		t.Fatalf("Stages() = %v, want %v", stages.Stages(), want)
	}
}

func TestBuildDependencyStages_IndependentTasksShareAStage(t *testing.T) {
	tasks := []TaskSpec{
		{ID: "a", Task: "task a"},
		{ID: "b", Task: "task b"},
		{ID: "c", Task: "task c", DependsOn: []string{"a", "b"}},
	}

	stages, err := BuildDependencyStages(tasks)
	if err != nil {
		t.Fatalf("BuildDependencyStages() error = %v", err)
	}
	got := stages.Stages()
	if len(got) != 2 || len(got[0]) != 2 || len(got[1]) != 1 {
		t.Fatalf("Stages() = %v", got)
	}
}

func TestBuildDependencyStages_RejectsCycle(t *testing.T) {
	tasks := []TaskSpec{
		{ID: "a", Task: "task a", DependsOn: []string{"b"}},
		{ID: "b", Task: "task b", DependsOn: []string{"a"}},
	}

	if _, err := BuildDependencyStages(tasks); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestBuildDependencyStages_RejectsUnknownDependency(t *testing.T) {
	tasks := []TaskSpec{
		{ID: "a", Task: "task a", DependsOn: []string{"ghost"}},
	}

	if _, err := BuildDependencyStages(tasks); err == nil {
		t.Fatalf("expected unknown dependency error")
	}
}

func TestWorkflow_RunWithDependenciesRunsEachStage(t *testing.T) {
	wf := NewBuilder().Name("wf").AddAgent(&stubAgent{name: "worker", result: "done"}).Build()

	tasks := []TaskSpec{
		{ID: "collect", Task: "collect data"},
		{ID: "analyze", Task: "analyze data", DependsOn: []string{"collect"}},
	}

	results, err := wf.RunWithDependencies(context.Background(), tasks)
	if err != nil {
		t.Fatalf("RunWithDependencies() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if _, ok := results["collect"]; !ok {
		t.Fatalf("missing result for collect")
	}
	if _, ok := results["analyze"]; !ok {
		t.Fatalf("missing result for analyze")
	}
}
