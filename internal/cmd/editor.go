package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
)

var editorCmd = &cobra.Command{
	Use:   "editor",
	Short: "Control or query the editor play mode state",
}

var editorPlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Enter play mode",
	Args:  cobra.NoArgs,
	RunE:  editorAction("play"),
}

var editorPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause or resume play mode",
	Args:  cobra.NoArgs,
	RunE:  editorAction("pause"),
}

var editorStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Exit play mode",
	Args:  cobra.NoArgs,
	RunE:  editorAction("stop"),
}

var editorStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the editor state flags",
	Args:  cobra.NoArgs,
	RunE:  runEditorState,
}

func init() {
	editorCmd.AddCommand(editorPlayCmd)
	editorCmd.AddCommand(editorPauseCmd)
	editorCmd.AddCommand(editorStopCmd)
	editorCmd.AddCommand(editorStateCmd)
	rootCmd.AddCommand(editorCmd)
}

// callEditor sends one manage_editor command and unwraps the envelope.
func callEditor(cmd *cobra.Command, action string) (command.Response, error) {
	cfg, err := loadConfig()
	if err != nil {
		return command.Response{}, err
	}
	client := newBridgeClient(cfg)

	resp, err := client.Call(cmd.Context(), tools.ToolManageEditor, command.Params{"action": action})
	if err != nil {
		return command.Response{}, err
	}
	if !resp.Success {
		return command.Response{}, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}

// editorAction builds a RunE forwarding one state-changing action.
func editorAction(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		resp, err := callEditor(cmd, action)
		if err != nil {
			return err
		}
		term.Println(resp.Message)
		return nil
	}
}

func runEditorState(cmd *cobra.Command, args []string) error {
	resp, err := callEditor(cmd, "get_state")
	if err != nil {
		return err
	}

	var data struct {
		IsPlaying   bool `json:"is_playing"`
		IsPaused    bool `json:"is_paused"`
		IsCompiling bool `json:"is_compiling"`
	}
	if err := decodeData(resp.Data, &data); err != nil {
		return err
	}
	term.Printf("Playing:   %t\n", data.IsPlaying)
	term.Printf("Paused:    %t\n", data.IsPaused)
	term.Printf("Compiling: %t\n", data.IsCompiling)
	return nil
}
