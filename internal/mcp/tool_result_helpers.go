package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolResultMetadata travels next to every tool result.
type ToolResultMetadata struct {
	ToolUsed           string              `json:"tool_used"`
	InferredParameters map[string]string   `json:"inferred_parameters,omitempty"`
	SuggestedNextTools []map[string]string `json:"suggested_next_tools,omitempty"`
}

// enhancedResult is the JSON body of a tool result.
type enhancedResult struct {
	Result   interface{}         `json:"result"`
	Metadata *ToolResultMetadata `json:"_metadata"`
}

// createEnhancedResult wraps content with metadata naming the follow-up tools.
func createEnhancedResult(toolName string, content interface{}, metadata *ToolResultMetadata) (*mcp.CallToolResult, error) {
	meta := ToolResultMetadata{}
	if metadata != nil {
		meta = *metadata
	}
	meta.ToolUsed = toolName
	meta.SuggestedNextTools = GetNextToolSuggestions(toolName)

	body, err := json.MarshalIndent(enhancedResult{Result: content, Metadata: &meta}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s result: %w", toolName, err)
	}
	return textResult(string(body)), nil
}
