// Package completion defines the model-facing request/response shapes an
// agent runtime drives its chat loop through, independent of any one LLM
// provider's wire format.
package completion

import "context"

// AssistantContentKind tags the two shapes an assistant turn can take.
type AssistantContentKind string

const (
	AssistantContentText     AssistantContentKind = "text"
	AssistantContentToolCall AssistantContentKind = "tool_call"
)

// AssistantContent is a tagged union of a plain text reply or a request to
// invoke a tool, mirroring the two cases a completion model can return.
type AssistantContent struct {
	Kind AssistantContentKind

	Text string

	ToolCallID   string
	ToolName     string
	ToolArgsJSON string
}

// NewText builds a text AssistantContent.
func NewText(text string) AssistantContent {
	return AssistantContent{Kind: AssistantContentText, Text: text}
}

// NewToolCall builds a tool-call AssistantContent.
func NewToolCall(id, name, argsJSON string) AssistantContent {
	return AssistantContent{Kind: AssistantContentToolCall, ToolCallID: id, ToolName: name, ToolArgsJSON: argsJSON}
}

// Message is one turn of chat history handed to a completion model,
// already flattened to the model's user/assistant vocabulary.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ToolDefinition describes one callable tool in the shape a completion
// model needs to decide whether and how to call it.
type ToolDefinition struct {
	Name        string
	Description string
	ParamSchema []byte // JSON Schema, as produced by tool.DefinitionFromStruct
}

// Request is one turn's worth of input to a completion model: the new
// prompt plus the conversation history and tools available to ground it.
type Request struct {
	Prompt       string
	SystemPrompt string
	ChatHistory  []Message
	Tools        []ToolDefinition
	Temperature  float64
	MaxTokens    uint64
}

// Response is a completion model's reply to one Request.
type Response struct {
	Choice []AssistantContent
}

// Text concatenates every text part of the response, in order, ignoring
// tool calls. Most callers that only care about the final prose use this.
func (r Response) Text() string {
	var out string
	for _, c := range r.Choice {
		if c.Kind == AssistantContentText {
			out += c.Text
		}
	}
	return out
}

// Model is the interface an agent runtime drives its chat loop through.
// Implementations adapt a concrete LLM provider's client to this shape.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
