package tool

import (
	"errors"
	"strings"
	"testing"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) ParamSchema() []byte {
	return []byte(`{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string"}
		}
	}`)
}
func (echoTool) Call(argsJSON string) (string, error) {
	return argsJSON, nil
}

type failingTool struct{}

func (failingTool) Name() string                     { return "fail" }
func (failingTool) Description() string              { return "always fails" }
func (failingTool) ParamSchema() []byte              { return []byte(`{"type":"object"}`) }
func (failingTool) Call(argsJSON string) (string, error) {
	return "", errors.New("boom")
}

func TestRegistry_CallSuccess(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Call("echo", `{"text":"hi"}`)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !strings.Contains(got, "hi") {
		t.Fatalf("Call() = %q, want it to contain %q", got, "hi")
	}
}

func TestRegistry_CallNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call("nope", `{}`)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("Call() error = %v, want ErrToolNotFound", err)
	}
}

func TestRegistry_CallValidationFailure(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := r.Call("echo", `{}`)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Call() error = %v, want *ValidationError", err)
	}
}

func TestRegistry_CallPropagatesToolError(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(failingTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := r.Call("fail", `{}`)
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("Call() error = %v, want *CallError", err)
	}
}

func TestRegistry_Definitions(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	defs := r.Definitions()
	if len(defs) != 1 {
		t.Fatalf("Definitions() len = %d, want 1", len(defs))
	}
	if defs[0].Name != "echo" {
		t.Fatalf("Definitions()[0].Name = %q, want %q", defs[0].Name, "echo")
	}
}
