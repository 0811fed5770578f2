package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/editor"
	"github.com/mooselabs/unitymcp/internal/install"
	"github.com/mooselabs/unitymcp/internal/prefs"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/version"
)

var flagInstallCheckOnly bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run install/version detection",
	Long: `Run one install/version detection cycle against the local server
install.

Detection checks the per-version done flag, remnants of legacy installs,
the server entry file and companion folder version drift. When anything
fires, the repair runs and the persisted state is settled: the done flag
is set, legacy keys are cleared and companion tracking is re-synced.

With --check-only, detection reasons are printed and nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&flagInstallCheckOnly, "check-only", false, "report detection reasons without repairing")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := prefs.Open(cfg.Install.PrefsFile)
	if err != nil {
		return err
	}
	dispatcher := editor.NewDispatcher()

	detector := install.NewDetector(install.Config{
		Version:       version.Version,
		LegacyRoot:    cfg.Server.LegacyRoot,
		ServerEntry:   cfg.Server.Entry,
		CompanionDirs: cfg.Install.CompanionDirs,
		TrackingDir:   cfg.Install.TrackingDir,
	}, store, dispatcher, nil)

	reasons := detector.Check()
	if len(reasons) == 0 {
		dispatcher.Stop()
		term.Println("Install is healthy")
		return nil
	}

	term.Println("Repair needed:")
	for _, r := range reasons {
		term.Printf("  - %s\n", r)
	}

	if flagInstallCheckOnly {
		dispatcher.Stop()
		return NewExitCodeError(1)
	}

	detector.EnsureInstalled(cmd.Context())
	// Stop drains the queue, so the repair task has finished once it
	// returns.
	dispatcher.Stop()
	term.Println("Install state settled")
	return nil
}
