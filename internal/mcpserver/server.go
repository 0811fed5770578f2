// Package mcpserver exposes the editor command surface as MCP tools. The
// server is a thin adapter: every tool forwards to the bridge over the
// loopback client and translates the response envelope into MCP results.
// The one exception is run_play_mode_tests, which also drives the status
// polling loop so the MCP caller gets a finished result, not a ticket.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/telemetry"
	"github.com/mooselabs/unitymcp/internal/tools"
)

// Server is the MCP adapter over a bridge client.
type Server struct {
	mcp    *mcp.Server
	client *bridge.Client
	tel    *telemetry.Collector

	// pollInterval paces the run_play_mode_tests status loop.
	pollInterval time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithTelemetry attaches a telemetry collector recording tool executions.
func WithTelemetry(tel *telemetry.Collector) Option {
	return func(s *Server) { s.tel = tel }
}

// WithPollInterval overrides the 500ms status polling interval.
// Tests use a smaller value.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewServer creates an MCP server forwarding to the given bridge client.
func NewServer(client *bridge.Client, version string, opts ...Option) *Server {
	s := &Server{
		client:       client,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "unitymcp",
		Title:   "MCP for Unity",
		Version: version,
	}, nil)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: tools.ToolPlayModeTests,
		Description: "Run play mode tests.\n\n" +
			"Running all tests in the project is not supported.\n\n" +
			"Method requires: test_assembly, test_class, and test_method.\n" +
			"Class requires: test_assembly and test_class.\n" +
			"Assembly requires: test_assembly only.",
	}, s.runPlayModeTests)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: tools.ToolMenuItem,
		Description: "Manage Unity menu items (execute/list/exists). " +
			"If you're not sure what menu item to use, use the 'list' action " +
			"to find it before using 'execute'.",
	}, s.manageMenuItem)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools.ToolReadConsole,
		Description: "Gets messages from or clears the Unity Editor console.",
	}, s.readConsole)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: tools.ToolManageEditor,
		Description: "Controls and queries the Unity editor's state: " +
			"enter or leave play mode (play/stop), pause or resume (pause), " +
			"or read the state flags (get_state).",
	}, s.manageEditor)

	return s
}

// Run serves MCP over the given transport until ctx is done or the
// transport closes.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}

// Connect connects the server to a transport and returns the session.
// Used by tests driving the server over in-memory transports.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}

// record notes one tool execution when telemetry is attached.
func (s *Server) record(tool, action string) {
	if s.tel == nil {
		return
	}
	s.tel.Record(telemetry.RecordToolExecution, map[string]any{
		"tool":   tool,
		"action": action,
	})
}

// decodeData re-marshals the loosely typed data payload of a bridge
// response into a typed struct.
func decodeData(data any, v any) error {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal response data: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
