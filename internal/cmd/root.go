// Package cmd implements the CLI commands for unitymcp.
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/config"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/version"
)

var (
	flagDebug  bool
	flagSilent bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "unitymcp",
	Short: "MCP server and bridge for driving the Unity Editor",
	Long: `unitymcp lets an external automation client drive the Unity Editor:
running play mode tests, executing menu items and reading the console.

The editor-side surface is hosted by the bridge daemon ('unitymcp bridge');
'unitymcp serve' exposes it to MCP clients over stdio, and the remaining
commands are one-shot CLI frontends for the same operations.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		term.SetSilent(flagSilent)
		// serve configures logging itself: stdout belongs to MCP there.
		if cmd.Name() == "serve" {
			return nil
		}
		return clog.Configure("", flagDebug, false)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagSilent, "silent", false, "suppress normal output")
}

// Execute runs the root command and returns any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		term.Error("%v", err)
	}
	return err
}

// loadConfig loads the configuration, falling back to defaults on a
// missing file.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newBridgeClient builds a bridge client from configuration. Durations
// were validated at load time; parse errors here mean a zero value slipped
// through and the client default stands.
func newBridgeClient(cfg *config.Config) *bridge.Client {
	client := bridge.NewClient(cfg.Bridge.Listen)
	if d, err := time.ParseDuration(cfg.Bridge.RetryWindow); err == nil {
		client.RetryWindow = d
	}
	if d, err := time.ParseDuration(cfg.Bridge.RetryInterval); err == nil {
		client.RetryInterval = d
	}
	return client
}
