// Command swarmsdemo wires a YAML swarm configuration through a stub
// completion model and a concurrent workflow, printing the fanned-in
// conversation. It exists to demonstrate that the pieces fit together
// end to end; it is not a production LLM client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/M4n5ter/swarms-go/internal/agent"
	"github.com/M4n5ter/swarms-go/internal/completion"
	"github.com/M4n5ter/swarms-go/internal/config"
	"github.com/M4n5ter/swarms-go/internal/observability"
	"github.com/M4n5ter/swarms-go/internal/workflow/concurrent"
)

func main() {
	configPath := flag.String("config", "swarms.yaml", "path to the swarm configuration file")
	task := flag.String("task", "", "task to run against the configured swarm")
	flag.Parse()

	if *task == "" {
		fmt.Fprintln(os.Stderr, "swarmsdemo: -task is required")
		os.Exit(1)
	}

	if err := run(*configPath, *task); err != nil {
		fmt.Fprintln(os.Stderr, "swarmsdemo:", err)
		os.Exit(1)
	}
}

func run(configPath, task string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	model := echoModel{}

	wf := concurrent.NewBuilder().
		Name(cfg.Workflow.Name).
		Description(cfg.Workflow.Description).
		MetadataOutputDir(cfg.Workflow.MetadataOutputDir).
		Logger(logger)

	for _, ac := range cfg.Agents {
		wf.AddAgent(buildAgent(ac, model, logger))
	}

	conv, err := wf.Build().Run(context.Background(), task)
	if err != nil {
		return fmt.Errorf("run workflow: %w", err)
	}

	for _, msg := range conv.History {
		fmt.Printf("%s: %s\n", msg.Role, msg.Content)
	}
	return nil
}

func buildAgent(ac config.AgentConfig, model completion.Model, logger *observability.Logger) *agent.Agent {
	ag := agent.DefaultConfig()
	ag.Name = ac.Name
	ag.Description = ac.Description
	if ac.Temperature != 0 {
		ag.Temperature = ac.Temperature
	}
	if ac.MaxTokens != 0 {
		ag.MaxTokens = uint64(ac.MaxTokens)
	}
	if ac.MaxLoops != 0 {
		ag.MaxLoops = uint32(ac.MaxLoops)
	}
	if ac.RetryAttempts != 0 {
		ag.RetryAttempts = uint32(ac.RetryAttempts)
	}
	ag.PlanEnabled = ac.PlanEnabled
	ag.Autosave = ac.Autosave
	ag.RAGEveryLoop = ac.RAGEveryLoop
	ag.SaveStatePath = ac.SaveStatePath
	for _, w := range ac.StopWords {
		ag.AddStopWord(w)
	}

	return agent.New(ag, model, nil, nil, logger)
}

// echoModel is a stub completion.Model standing in for a real provider
// integration, which is out of this module's scope: it always returns
// the incoming prompt, prefixed by the system prompt, as a single text
// reply.
type echoModel struct{}

func (echoModel) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	reply := fmt.Sprintf("[%s] %s", req.SystemPrompt, req.Prompt)
	return completion.Response{Choice: []completion.AssistantContent{completion.NewText(reply)}}, nil
}
