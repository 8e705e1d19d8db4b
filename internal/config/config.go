// Package config loads the YAML configuration for a swarm deployment:
// which model provider to talk to, which agents to instantiate, and how
// they're wired into workflows, routers, and AutoSwarm bosses.
package config

import (
	"time"
)

// Config is the root configuration for a swarm deployment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Agents   []AgentConfig  `yaml:"agents"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the optional health/metrics listener.
type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

// LLMConfig describes which completion backend agents call into.
type LLMConfig struct {
	DefaultProvider string                       `yaml:"default_provider"`
	Providers       map[string]LLMProviderConfig `yaml:"providers"`
}

// LLMProviderConfig is one named backend's connection details.
type LLMProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
}

// AgentConfig describes one agent to build.
type AgentConfig struct {
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	SystemPrompt   string            `yaml:"system_prompt"`
	Temperature    float64           `yaml:"temperature"`
	MaxTokens      int               `yaml:"max_tokens"`
	MaxLoops       int               `yaml:"max_loops"`
	RetryAttempts  int               `yaml:"retry_attempts"`
	PlanEnabled    bool              `yaml:"plan_enabled"`
	Autosave       bool              `yaml:"autosave"`
	RAGEveryLoop   bool              `yaml:"rag_every_loop"`
	SaveStatePath  string            `yaml:"save_state_path"`
	StopWords      []string          `yaml:"stop_words"`
	Tools          []string          `yaml:"tools"`
	ExtraLoopDelay time.Duration     `yaml:"extra_loop_delay"`
	Metadata       map[string]string `yaml:"metadata"`
}

// WorkflowConfig describes the swarm construct that wires agents
// together.
type WorkflowConfig struct {
	// Type is one of the swarmrouter.SwarmType names: "ConcurrentWorkflow",
	// "Auto", "AgentRearrange", etc.
	Type              string `yaml:"type"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	MetadataOutputDir string `yaml:"metadata_output_dir"`

	// EnableExecuteTask applies only to the orchestrator's boss-router
	// workflow type: whether the selected agent actually runs, or the
	// boss's routing decision is merely recorded.
	EnableExecuteTask bool `yaml:"enable_execute_task"`
}

// LoggingConfig configures the process-wide structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
