package concurrent

import (
	"fmt"
	"sort"
	"strings"
)

// TaskSpec is one task in a RunWithDependencies batch: an ID other tasks
// can depend on, the task string handed to every agent, and the IDs of
// tasks that must complete before this one starts.
type TaskSpec struct {
	ID        string
	Task      string
	DependsOn []string
}

// DependencyStages is a stage-ordered execution plan: every task in
// stage N can run concurrently once every task in stages 0..N-1 has
// completed.
type DependencyStages struct {
	stages [][]string
}

// Stages returns a defensive copy of the stage ordering, one slice of
// task IDs per stage.
func (g *DependencyStages) Stages() [][]string {
	if g == nil {
		return nil
	}
	out := make([][]string, len(g.stages))
	for i := range g.stages {
		out[i] = append([]string(nil), g.stages[i]...)
	}
	return out
}

// BuildDependencyStages computes a stage-ordered plan from each task's
// DependsOn list via Kahn's algorithm, breaking ties within a stage by ID
// for deterministic ordering. Returns an error if a task depends on an
// unknown ID or the dependency graph contains a cycle.
func BuildDependencyStages(tasks []TaskSpec) (*DependencyStages, error) {
	if len(tasks) == 0 {
		return &DependencyStages{}, nil
	}

	byID := make(map[string]TaskSpec, len(tasks))
	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))

	for _, spec := range tasks {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			return nil, fmt.Errorf("concurrent: task id cannot be empty")
		}
		if _, exists := byID[id]; exists {
			return nil, fmt.Errorf("concurrent: duplicate task id %q", id)
		}
		byID[id] = spec
		indegree[id] = 0
	}

	for _, spec := range tasks {
		id := strings.TrimSpace(spec.ID)
		for _, depRaw := range spec.DependsOn {
			dep := strings.TrimSpace(depRaw)
			if dep == "" {
				continue
			}
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("concurrent: task %q depends on unknown task %q", id, dep)
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := make([]string, 0)
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	processed := 0
	var stages [][]string

	for len(ready) > 0 {
		stage := append([]string(nil), ready...)
		stages = append(stages, stage)

		next := make([]string, 0)
		for _, id := range stage {
			processed++
			for _, dep := range dependents[id] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Strings(next)
		ready = next
	}

	if processed != len(byID) {
		return nil, fmt.Errorf("concurrent: dependency cycle detected among tasks")
	}

	return &DependencyStages{stages: stages}, nil
}
