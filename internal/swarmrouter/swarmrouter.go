// Package swarmrouter selects and builds a swarm construct from a
// declared SwarmType, dispatching a task to whichever concrete workflow
// that type maps to.
package swarmrouter

import (
	"context"
	"errors"
	"fmt"

	"github.com/M4n5ter/swarms-go/internal/observability"
	"github.com/M4n5ter/swarms-go/internal/workflow/concurrent"
)

// SwarmType enumerates the swarm constructs a Router can build. Only
// ConcurrentWorkflow is fully implemented; the rest are recognized but
// rejected with ErrUnimplementedSwarmType until they have a Go-native
// home.
type SwarmType int

const (
	Auto SwarmType = iota
	AgentRearrange
	HierarchicalSwarm
	MixtureOfAgents
	MajorityVoting
	GroupChat
	MultiAgentRouter
	SpreadSheetSwarm
	SequentialWorkflow
	ConcurrentWorkflow
)

func (t SwarmType) String() string {
	switch t {
	case Auto:
		return "Auto"
	case AgentRearrange:
		return "AgentRearrange"
	case HierarchicalSwarm:
		return "HierarchicalSwarm"
	case MixtureOfAgents:
		return "MixtureOfAgents"
	case MajorityVoting:
		return "MajorityVoting"
	case GroupChat:
		return "GroupChat"
	case MultiAgentRouter:
		return "MultiAgentRouter"
	case SpreadSheetSwarm:
		return "SpreadSheetSwarm"
	case SequentialWorkflow:
		return "SequentialWorkflow"
	case ConcurrentWorkflow:
		return "ConcurrentWorkflow"
	default:
		return "Unknown"
	}
}

// ErrUnimplementedSwarmType is returned by Run for any SwarmType besides
// ConcurrentWorkflow.
var ErrUnimplementedSwarmType = errors.New("swarmrouter: swarm type not yet implemented")

// Swarm is the minimal surface a swarm construct needs: run one task and
// return whatever record it produces.
type Swarm interface {
	Run(ctx context.Context, task string) (any, error)
}

// Router builds and runs the swarm construct named by its SwarmType,
// lazily, once per Run call (matching the construct's task-scoped
// metadata such as digests and timestamps).
type Router struct {
	name              string
	description       string
	swarmType         SwarmType
	agents            []concurrent.Runner
	metadataOutputDir string
	logger            *observability.Logger
}

// New returns a Router over agents, building swarmType's construct on
// every Run call.
func New(name, description string, swarmType SwarmType, agents []concurrent.Runner, metadataOutputDir string, logger *observability.Logger) *Router {
	return &Router{
		name:              name,
		description:       description,
		swarmType:         swarmType,
		agents:            agents,
		metadataOutputDir: metadataOutputDir,
		logger:            logger,
	}
}

// Run builds the configured swarm type and runs task against it.
func (r *Router) Run(ctx context.Context, task string) (any, error) {
	swarm, err := r.createSwarm()
	if err != nil {
		return nil, err
	}
	return swarm.Run(ctx, task)
}

func (r *Router) createSwarm() (Swarm, error) {
	switch r.swarmType {
	case ConcurrentWorkflow:
		wf := concurrent.NewBuilder().
			Name(r.name).
			Description(r.description).
			MetadataOutputDir(r.metadataOutputDir).
			Logger(r.logger).
			Agents(r.agents).
			Build()
		return concurrentSwarm{wf}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnimplementedSwarmType, r.swarmType)
	}
}

// concurrentSwarm adapts *concurrent.Workflow's Run signature (which
// returns a *models.AgentConversation) to the generic Swarm interface.
type concurrentSwarm struct {
	wf *concurrent.Workflow
}

func (s concurrentSwarm) Run(ctx context.Context, task string) (any, error) {
	return s.wf.Run(ctx, task)
}
