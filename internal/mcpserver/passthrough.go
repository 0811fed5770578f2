package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/tools"
)

// MenuItemInput is the argument schema for manage_menu_item.
type MenuItemInput struct {
	Action   string `json:"action" jsonschema:"Operation ('execute', 'list', 'exists')"`
	MenuPath string `json:"menu_path,omitempty" jsonschema:"Menu path for 'execute' or 'exists' (e.g., 'File/Save Project')"`
	Search   string `json:"search,omitempty" jsonschema:"Optional filter string for 'list' (e.g., 'Save')"`
	Refresh  bool   `json:"refresh,omitempty" jsonschema:"Optional flag to force refresh of the menu cache when listing"`
}

// manageMenuItem forwards menu item commands to the editor. The output
// is the forwarded payload as-is, so no output schema is declared.
func (s *Server) manageMenuItem(ctx context.Context, req *mcp.CallToolRequest, in MenuItemInput) (*mcp.CallToolResult, any, error) {
	s.record(tools.ToolMenuItem, in.Action)

	params := command.Params{"action": in.Action}
	if in.MenuPath != "" {
		params["menu_path"] = in.MenuPath
	}
	if in.Search != "" {
		params["search"] = in.Search
	}
	if in.Refresh {
		params["refresh"] = true
	}

	return s.forward(ctx, tools.ToolMenuItem, params)
}

// ConsoleInput is the argument schema for read_console.
type ConsoleInput struct {
	Action            string   `json:"action,omitempty" jsonschema:"Operation ('get' or 'clear'); defaults to 'get'"`
	Types             []string `json:"types,omitempty" jsonschema:"Message types to get ('error', 'warning', 'log', 'all'); defaults to ['error']"`
	Count             *int     `json:"count,omitempty" jsonschema:"Max messages to return; defaults to 50"`
	FilterText        string   `json:"filter_text,omitempty" jsonschema:"Text filter for messages"`
	Format            string   `json:"format,omitempty" jsonschema:"Output format ('plain', 'detailed', 'json'); defaults to 'json'"`
	IncludeStacktrace *bool    `json:"include_stacktrace,omitempty" jsonschema:"Include stack traces in output; defaults to true"`
}

// readConsole forwards console commands to the editor, filling in the
// conservative defaults agents expect: recent errors, JSON format.
func (s *Server) readConsole(ctx context.Context, req *mcp.CallToolRequest, in ConsoleInput) (*mcp.CallToolResult, any, error) {
	action := in.Action
	if action == "" {
		action = "get"
	}
	s.record(tools.ToolReadConsole, action)

	params := command.Params{"action": action}
	if len(in.Types) > 0 {
		typesAny := make([]any, len(in.Types))
		for i, t := range in.Types {
			typesAny[i] = t
		}
		params["types"] = typesAny
	}
	if in.Count != nil {
		params["count"] = *in.Count
	}
	if in.FilterText != "" {
		params["filter_text"] = in.FilterText
	}
	if in.Format != "" {
		params["format"] = in.Format
	}
	if in.IncludeStacktrace != nil {
		params["include_stacktrace"] = *in.IncludeStacktrace
	}

	return s.forward(ctx, tools.ToolReadConsole, params)
}

// ManageEditorInput is the argument schema for manage_editor.
type ManageEditorInput struct {
	Action string `json:"action,omitempty" jsonschema:"Operation ('play', 'pause', 'stop', 'get_state'); defaults to 'get_state'"`
}

// manageEditor forwards editor state commands to the editor.
func (s *Server) manageEditor(ctx context.Context, req *mcp.CallToolRequest, in ManageEditorInput) (*mcp.CallToolResult, any, error) {
	action := in.Action
	if action == "" {
		action = "get_state"
	}
	s.record(tools.ToolManageEditor, action)

	return s.forward(ctx, tools.ToolManageEditor, command.Params{"action": action})
}

// forward sends a command to the bridge and adapts the envelope: success
// becomes a result carrying message and data, failure becomes a tool
// error.
func (s *Server) forward(ctx context.Context, tool string, params command.Params) (*mcp.CallToolResult, any, error) {
	resp, err := s.client.Call(ctx, tool, params)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", tool, err)
	}
	if !resp.Success {
		return nil, nil, fmt.Errorf("%s", resp.Error)
	}

	out := map[string]any{"message": resp.Message}
	if resp.Data != nil {
		out["data"] = resp.Data
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: resp.Message}},
	}, out, nil
}
