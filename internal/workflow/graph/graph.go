// Package graph implements a DAG-shaped agent workflow: agents are nodes,
// Flow edges carry an optional condition and transform, and execution
// starts at one node and recursively propagates to its successors.
package graph

import (
	"context"
	"fmt"
	"sync"
)

// Error is the sentinel error type returned by graph operations.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errors returned by Graph operations.
var (
	ErrAgentNotFound = &Error{"graph: agent not found"}
	ErrCycleDetected = &Error{"graph: cycle detected in workflow"}
	ErrStartNotFound = &Error{"graph: start agent not found"}
)

// Runner is the subset of agent.Agent a graph node needs to expose.
type Runner interface {
	Name() string
	Run(ctx context.Context, task string) (string, error)
}

// Flow is the edge weight between two agents: an optional Condition
// gates whether execution should follow the edge at all, and an
// optional Transform rewrites the upstream output into the downstream
// input.
type Flow struct {
	Condition func(output string) bool
	Transform func(output string) string
}

type node struct {
	name       string
	lastResult *nodeResult
}

type nodeResult struct {
	output string
	err    error
}

type edge struct {
	to   string
	flow Flow
}

// Graph is a directed acyclic graph of agents. Connect rejects an edge
// that would introduce a cycle. A Graph is not safe for concurrent
// mutation (RegisterAgent/Connect/Disconnect/RemoveAgent); Execute may
// be called concurrently once the graph is built.
type Graph struct {
	name        string
	description string

	mu     sync.RWMutex
	agents map[string]Runner
	nodes  map[string]*node
	edges  map[string][]edge
}

// New returns an empty Graph.
func New(name, description string) *Graph {
	return &Graph{
		name:        name,
		description: description,
		agents:      make(map[string]Runner),
		nodes:       make(map[string]*node),
		edges:       make(map[string][]edge),
	}
}

// RegisterAgent adds agent as a node, creating it if this is the first
// time its name has been seen.
func (g *Graph) RegisterAgent(agent Runner) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.agents[agent.Name()] = agent
	if _, ok := g.nodes[agent.Name()]; !ok {
		g.nodes[agent.Name()] = &node{name: agent.Name()}
	}
}

// Connect adds a Flow edge from -> to. Both agents must already be
// registered. The edge is rejected with ErrCycleDetected if adding it
// would create a cycle, leaving the graph unchanged.
func (g *Graph) Connect(from, to string, flow Flow) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.agents[from]; !ok {
		return fmt.Errorf("%w: source %q", ErrAgentNotFound, from)
	}
	if _, ok := g.agents[to]; !ok {
		return fmt.Errorf("%w: target %q", ErrAgentNotFound, to)
	}

	g.edges[from] = append(g.edges[from], edge{to: to, flow: flow})
	if g.hasCycle() {
		g.edges[from] = g.edges[from][:len(g.edges[from])-1]
		return ErrCycleDetected
	}
	return nil
}

// Disconnect removes the edge from -> to, if one exists.
func (g *Graph) Disconnect(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	edges, ok := g.edges[from]
	if !ok {
		return fmt.Errorf("%w: no connection from %q to %q", ErrAgentNotFound, from, to)
	}
	for i, e := range edges {
		if e.to == to {
			g.edges[from] = append(edges[:i], edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no connection from %q to %q", ErrAgentNotFound, from, to)
}

// RemoveAgent deletes an agent node and every edge touching it.
func (g *Graph) RemoveAgent(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.agents[name]; !ok {
		return fmt.Errorf("%w: %q", ErrAgentNotFound, name)
	}
	delete(g.agents, name)
	delete(g.nodes, name)
	delete(g.edges, name)
	for from, edges := range g.edges {
		filtered := edges[:0]
		for _, e := range edges {
			if e.to != name {
				filtered = append(filtered, e)
			}
		}
		g.edges[from] = filtered
	}
	return nil
}

func (g *Graph) hasCycle() bool {
	visited := make(map[string]bool, len(g.nodes))
	recStack := make(map[string]bool, len(g.nodes))
	for name := range g.nodes {
		if !visited[name] && g.isCyclic(name, visited, recStack) {
			return true
		}
	}
	return false
}

func (g *Graph) isCyclic(name string, visited, recStack map[string]bool) bool {
	visited[name] = true
	recStack[name] = true

	for _, e := range g.edges[name] {
		if !visited[e.to] {
			if g.isCyclic(e.to, visited, recStack) {
				return true
			}
		} else if recStack[e.to] {
			return true
		}
	}

	recStack[name] = false
	return false
}

// ExecuteAgent runs a single agent by name, independent of the graph's
// edges.
func (g *Graph) ExecuteAgent(ctx context.Context, name, input string) (string, error) {
	g.mu.RLock()
	agent, ok := g.agents[name]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrAgentNotFound, name)
	}
	return agent.Run(ctx, input)
}

// Execute runs startAgent with input and recursively propagates its
// output along every outgoing edge whose Condition (if any) accepts it,
// applying each edge's Transform (if any) to produce the downstream
// input. Returns every node's result keyed by agent name.
func (g *Graph) Execute(ctx context.Context, startAgent, input string) (map[string]Result, error) {
	g.mu.Lock()
	if _, ok := g.nodes[startAgent]; !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrStartNotFound, startAgent)
	}
	for _, n := range g.nodes {
		n.lastResult = nil
	}
	g.mu.Unlock()

	results := make(map[string]Result)
	if err := g.executeNode(ctx, startAgent, input, results); err != nil {
		return results, err
	}
	return results, nil
}

// Result is one node's outcome from a graph Execute call.
type Result struct {
	Output string
	Err    error
}

func (g *Graph) executeNode(ctx context.Context, name, input string, results map[string]Result) error {
	output, err := g.ExecuteAgent(ctx, name, input)
	results[name] = Result{Output: output, Err: err}

	g.mu.Lock()
	if n, ok := g.nodes[name]; ok {
		n.lastResult = &nodeResult{output: output, err: err}
	}
	g.mu.Unlock()

	if err != nil {
		return err
	}

	g.mu.RLock()
	edges := append([]edge(nil), g.edges[name]...)
	g.mu.RUnlock()

	for _, e := range edges {
		if e.flow.Condition != nil && !e.flow.Condition(output) {
			continue
		}
		nextInput := output
		if e.flow.Transform != nil {
			nextInput = e.flow.Transform(output)
		}
		// A child's failure is recorded in results by its own
		// executeNode call and terminates propagation along its
		// outgoing edges, but must not cancel this node's remaining
		// siblings.
		_ = g.executeNode(ctx, e.to, nextInput, results)
	}
	return nil
}

// FindExecutionPaths returns every root-to-leaf path reachable from
// startAgent, as a sequence of agent names.
func (g *Graph) FindExecutionPaths(startAgent string) ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[startAgent]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrStartNotFound, startAgent)
	}

	var paths [][]string
	var current []string
	g.dfsPaths(startAgent, &current, &paths)
	return paths, nil
}

func (g *Graph) dfsPaths(name string, current *[]string, all *[][]string) {
	*current = append(*current, name)
	edges := g.edges[name]
	if len(edges) == 0 {
		path := make([]string, len(*current))
		copy(path, *current)
		*all = append(*all, path)
	} else {
		for _, e := range edges {
			g.dfsPaths(e.to, current, all)
		}
	}
	*current = (*current)[:len(*current)-1]
}

// ExportDot renders the graph in Graphviz DOT format.
func (g *Graph) ExportDot() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b []byte
	b = append(b, "digraph {\n"...)
	for name := range g.nodes {
		b = append(b, fmt.Sprintf("    %q [label=%q];\n", name, name)...)
	}
	for from, edges := range g.edges {
		for _, e := range edges {
			b = append(b, fmt.Sprintf("    %q -> %q;\n", from, e.to)...)
		}
	}
	b = append(b, "}\n"...)
	return string(b)
}
