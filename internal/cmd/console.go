package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
)

var (
	flagConsoleTypes        []string
	flagConsoleCount        int
	flagConsoleFormat       string
	flagConsoleFilter       string
	flagConsoleNoStacktrace bool
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Read or clear the editor console",
}

var consoleGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get console entries",
	Example: `  unitymcp console get
  unitymcp console get --types all --count 100
  unitymcp console get --format detailed --filter NullReference`,
	Args: cobra.NoArgs,
	RunE: runConsoleGet,
}

var consoleClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the console",
	Args:  cobra.NoArgs,
	RunE:  runConsoleClear,
}

func init() {
	consoleGetCmd.Flags().StringSliceVar(&flagConsoleTypes, "types", nil, "entry types to include (all, error, log, warning)")
	consoleGetCmd.Flags().IntVar(&flagConsoleCount, "count", 0, "maximum entries to return (0 for the server default)")
	consoleGetCmd.Flags().StringVar(&flagConsoleFormat, "format", "plain", "output format (detailed, json, plain)")
	consoleGetCmd.Flags().StringVar(&flagConsoleFilter, "filter", "", "only entries containing this text")
	consoleGetCmd.Flags().BoolVar(&flagConsoleNoStacktrace, "no-stacktrace", false, "omit stack traces")
	consoleCmd.AddCommand(consoleGetCmd)
	consoleCmd.AddCommand(consoleClearCmd)
	rootCmd.AddCommand(consoleCmd)
}

func runConsoleGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newBridgeClient(cfg)

	params := command.Params{
		"action": "get",
		"format": flagConsoleFormat,
	}
	if len(flagConsoleTypes) > 0 {
		types := make([]any, len(flagConsoleTypes))
		for i, t := range flagConsoleTypes {
			types[i] = t
		}
		params["types"] = types
	}
	if flagConsoleCount > 0 {
		params["count"] = flagConsoleCount
	}
	if flagConsoleFilter != "" {
		params["filter_text"] = flagConsoleFilter
	}
	if flagConsoleNoStacktrace {
		params["include_stacktrace"] = false
	}

	resp, err := client.Call(cmd.Context(), tools.ToolReadConsole, params)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	var data struct {
		Lines []any `json:"lines"`
		Count int   `json:"count"`
	}
	if err := decodeData(resp.Data, &data); err != nil {
		return err
	}
	for _, line := range data.Lines {
		// The json format returns structured entries; the others are
		// pre-rendered strings.
		if s, ok := line.(string); ok {
			term.Println(s)
			continue
		}
		raw, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("encode console entry: %w", err)
		}
		term.Println(string(raw))
	}
	return nil
}

func runConsoleClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newBridgeClient(cfg)

	resp, err := client.Call(cmd.Context(), tools.ToolReadConsole, command.Params{"action": "clear"})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	term.Println(resp.Message)
	return nil
}
