package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
)

var flagMenuSearch string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Execute, list or probe editor menu items",
}

var menuExecuteCmd = &cobra.Command{
	Use:   "execute <path>",
	Short: "Execute a menu item by path",
	Example: `  unitymcp menu execute "Assets/Refresh"
  unitymcp menu execute "File/Save Project"`,
	Args: cobra.ExactArgs(1),
	RunE: runMenuExecute,
}

var menuListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available menu items",
	Args:  cobra.NoArgs,
	RunE:  runMenuList,
}

var menuExistsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Check whether a menu item exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runMenuExists,
}

func init() {
	menuListCmd.Flags().StringVar(&flagMenuSearch, "search", "", "filter items by substring")
	menuCmd.AddCommand(menuExecuteCmd)
	menuCmd.AddCommand(menuListCmd)
	menuCmd.AddCommand(menuExistsCmd)
	rootCmd.AddCommand(menuCmd)
}

// callMenu sends one menu command and unwraps the envelope.
func callMenu(cmd *cobra.Command, params command.Params) (command.Response, error) {
	cfg, err := loadConfig()
	if err != nil {
		return command.Response{}, err
	}
	client := newBridgeClient(cfg)

	resp, err := client.Call(cmd.Context(), tools.ToolMenuItem, params)
	if err != nil {
		return command.Response{}, err
	}
	if !resp.Success {
		return command.Response{}, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}

func runMenuExecute(cmd *cobra.Command, args []string) error {
	resp, err := callMenu(cmd, command.Params{"action": "execute", "menu_path": args[0]})
	if err != nil {
		return err
	}
	term.Println(resp.Message)
	return nil
}

func runMenuList(cmd *cobra.Command, args []string) error {
	params := command.Params{"action": "list"}
	if flagMenuSearch != "" {
		params["search"] = flagMenuSearch
	}
	resp, err := callMenu(cmd, params)
	if err != nil {
		return err
	}

	var data struct {
		MenuItems []string `json:"menu_items"`
		Count     int      `json:"count"`
	}
	if err := decodeData(resp.Data, &data); err != nil {
		return err
	}
	for _, item := range data.MenuItems {
		term.Println(item)
	}
	return nil
}

func runMenuExists(cmd *cobra.Command, args []string) error {
	resp, err := callMenu(cmd, command.Params{"action": "exists", "menu_path": args[0]})
	if err != nil {
		return err
	}

	var data struct {
		Exists bool `json:"exists"`
	}
	if err := decodeData(resp.Data, &data); err != nil {
		return err
	}
	term.Println(resp.Message)
	if !data.Exists {
		return NewExitCodeError(1)
	}
	return nil
}
