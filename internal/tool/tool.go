// Package tool defines the callable-function contract agents dispatch
// into, plus a registry keyed by tool name and JSON-Schema helpers for
// deriving and validating argument shapes.
package tool

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool is one function an agent may call mid-conversation. Call receives
// the raw JSON arguments the completion model produced and returns the
// raw JSON (or plain text) result to feed back into the conversation.
type Tool interface {
	Name() string
	Description() string
	// ParamSchema returns the JSON Schema describing Call's argument shape.
	ParamSchema() []byte
	Call(argsJSON string) (string, error)
}

// ErrToolNotFound is returned by Registry.Call when no tool is registered
// under the requested name.
var ErrToolNotFound = fmt.Errorf("tool: not found")

// CallError wraps a failure from within a tool's own Call, distinguishing
// it from ErrToolNotFound and from argument-validation failures.
type CallError struct {
	ToolName string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool %q: %v", e.ToolName, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// ValidationError reports that a tool call's arguments did not satisfy
// the tool's ParamSchema.
type ValidationError struct {
	ToolName string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %q: invalid arguments: %v", e.ToolName, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Registry holds the tools one agent may dispatch calls to. A Registry is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	compiled map[string]*jsonschema.Schema
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register adds t to the registry, compiling its ParamSchema up front so
// that Call-time validation never fails on a malformed schema.
func (r *Registry) Register(t Tool) error {
	schema, err := jsonschema.CompileString(t.Name(), string(t.ParamSchema()))
	if err != nil {
		return fmt.Errorf("tool: compile schema for %q: %w", t.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	r.compiled[t.Name()] = schema
	return nil
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the completion-facing definition of every
// registered tool, in no particular order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.tools))
	for name, t := range r.tools {
		out = append(out, Definition{
			Name:        name,
			Description: t.Description(),
			ParamSchema: t.ParamSchema(),
		})
	}
	return out
}

// Definition is the completion-model-facing view of a registered tool.
type Definition struct {
	Name        string
	Description string
	ParamSchema []byte
}

// Call validates argsJSON against name's compiled schema, then dispatches
// to the tool. Returns ErrToolNotFound, a *ValidationError, or a
// *CallError on failure.
func (r *Registry) Call(name, argsJSON string) (string, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	schema := r.compiled[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	var args any
	if argsJSON == "" {
		args = map[string]any{}
	} else if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", &ValidationError{ToolName: name, Err: err}
	}
	if err := schema.Validate(args); err != nil {
		return "", &ValidationError{ToolName: name, Err: err}
	}

	result, err := t.Call(argsJSON)
	if err != nil {
		return "", &CallError{ToolName: name, Err: err}
	}
	return result, nil
}

// SchemaFromStruct derives a JSON Schema document for v's type using yaml
// field-naming conventions, matching how this codebase names struct
// fields elsewhere.
func SchemaFromStruct(v any) ([]byte, error) {
	r := &jsonschema.Reflector{FieldNameTag: "json"}
	schema := r.Reflect(v)
	return json.MarshalIndent(schema, "", "  ")
}
