package cmd

import (
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/mcpserver"
	"github.com/mooselabs/unitymcp/internal/telemetry"
	"github.com/mooselabs/unitymcp/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long: `Serve the MCP tool surface over stdio.

This is the command an MCP client (Claude Desktop, an IDE plugin, etc.)
configures as the server executable. Tool calls are forwarded to the
bridge daemon; start one with 'unitymcp bridge' if the editor is not
hosting it already.

While serving, stdout carries the protocol stream and all logging goes to
the log file only.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	debug := flagDebug || cfg.Log.Level == "debug"
	if err := clog.Configure(cfg.Log.File, debug, true); err != nil {
		// Logging must never cost us the protocol stream; run without it.
		fmt.Fprintf(os.Stderr, "warning: log file unavailable: %v\n", err)
	}
	defer clog.Close()

	client := newBridgeClient(cfg)

	opts := []mcpserver.Option{}
	if cfg.Telemetry.Enabled == nil || *cfg.Telemetry.Enabled {
		sink := telemetry.Discard
		if cfg.Telemetry.File != "" {
			sink = telemetry.NewFileSink(cfg.Telemetry.File)
		}
		tel := telemetry.New(sink)
		defer tel.Close()
		opts = append(opts, mcpserver.WithTelemetry(tel))
	}

	srv := mcpserver.NewServer(client, version.Version, opts...)

	clog.Info("serving MCP over stdio, bridge at %s", cfg.Bridge.Listen)
	return srv.Run(cmd.Context(), &mcp.StdioTransport{})
}
