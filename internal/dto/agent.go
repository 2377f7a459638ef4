package dto

import (
	"context"

	"google.golang.org/genai"
)

// ToolHandler executes one named tool call requested by the model and
// returns a JSON-serializable payload. Implementations soft-fail: on any
// error the payload is {"error": reason} so the model can reason about the
// missing data itself instead of the stage aborting.
type ToolHandler func(ctx context.Context, name string, args map[string]any) map[string]any

// AgentInvokeParam describes a single agent turn.
type AgentInvokeParam struct {
	AgentName    string
	Model        string
	SystemPrompt string
	UserMessage  string
	Temperature  float64
	MaxTokens    int

	// Tools and ToolHandler are nil for stages without tool use.
	Tools       []*genai.Tool
	ToolHandler ToolHandler
}
