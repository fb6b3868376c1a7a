package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	Examples    []string
	NextTools   []string
}

var toolDescriptions = map[string]ToolDescription{
	"resource_session_list": {
		Description: "List every stored browser session with its index, name, window and tab count",
		WhenToUse: []string{
			"To see which sessions exist and which are open in a window",
			"To find the index or id of a session before acting on it",
		},
		Examples: []string{
			`resource_session_list()`,
			`resource_session_list(state: "open")`,
		},
		NextTools: []string{
			"resource_session_show - Get the tabs of one session",
			"session_autosave - Turn auto-save on or off",
		},
	},

	"resource_session_show": {
		Description: "Get a stored session with the full list of its saved tab URLs",
		WhenToUse: []string{
			"To check which tabs a session will restore",
			"To see whether a session has been saved to a file yet",
		},
		Examples: []string{
			`resource_session_show(session_identifier: "1")`,
			`resource_session_show(session_identifier: "9b2f0c4e-8d1a-4c53-a0b7-2f1e6d3c9a10")`,
		},
		NextTools: []string{
			"session_autosave - Turn auto-save on or off",
			"session_remove - Forget the session",
		},
	},

	"session_autosave": {
		Description: "Enable or disable auto-save for a session. With auto-save on, tab changes in the session window are written back to the session file",
		WhenToUse: []string{
			"When asked to keep a session file up to date automatically",
			"When a session keeps showing the unsaved-changes badge",
		},
		Examples: []string{
			`session_autosave(session_identifier: "1", enabled: true)`,
		},
		NextTools: []string{
			"resource_session_show - Verify the change",
		},
	},

	"session_remove": {
		Description: "Remove a session from the local store. The session file written by the companion is left in place",
		WhenToUse: []string{
			"When a window should no longer be tracked",
			"When cleaning up sessions whose windows were closed",
		},
		Examples: []string{
			`session_remove(session_identifier: "2")`,
		},
		NextTools: []string{
			"resource_session_list - Verify remaining sessions",
		},
	},
}

// GetEnhancedDescription returns the enhanced description for a tool
func GetEnhancedDescription(toolName string) string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(desc.Description)
	sb.WriteString("\n\nWHEN TO USE THIS TOOL:\n")
	for _, when := range desc.WhenToUse {
		sb.WriteString("- " + when + "\n")
	}
	if len(desc.Examples) > 0 {
		sb.WriteString("\nEXAMPLES:\n")
		for _, example := range desc.Examples {
			sb.WriteString(example + "\n")
		}
	}
	return sb.String()
}

// GetNextToolSuggestions returns suggested next tools for a given tool
func GetNextToolSuggestions(toolName string) []map[string]string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return nil
	}
	suggestions := make([]map[string]string, 0, len(desc.NextTools))
	for _, next := range desc.NextTools {
		suggestions = append(suggestions, map[string]string{"tool": next})
	}
	return suggestions
}
