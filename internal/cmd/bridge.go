package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mooselabs/unitymcp/internal/audit"
	"github.com/mooselabs/unitymcp/internal/bridge"
	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
	"github.com/mooselabs/unitymcp/internal/history"
	"github.com/mooselabs/unitymcp/internal/install"
	"github.com/mooselabs/unitymcp/internal/moose"
	"github.com/mooselabs/unitymcp/internal/prefs"
	"github.com/mooselabs/unitymcp/internal/term"
	"github.com/mooselabs/unitymcp/internal/tools"
	"github.com/mooselabs/unitymcp/internal/version"
)

var flagBridgeListen string

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the development bridge daemon",
	Long: `Run the bridge daemon hosting the editor command surface over
loopback HTTP.

Inside a Unity project the bridge is hosted by the editor extension; this
command runs the same surface against a simulated editor and test runner,
for development and CI. On startup it also runs install/version detection
and repairs the local server install when needed.

The daemon runs in the foreground until interrupted. Use 'unitymcp bridge
stop' from another terminal to stop a running daemon.`,
	RunE: runBridge,
}

var bridgeStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running bridge daemon",
	RunE:  runBridgeStop,
}

var bridgeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a bridge daemon is running",
	RunE:  runBridgeStatus,
}

func init() {
	bridgeCmd.Flags().StringVar(&flagBridgeListen, "listen", "", "listen address (overrides config)")
	bridgeCmd.AddCommand(bridgeStopCmd)
	bridgeCmd.AddCommand(bridgeStatusCmd)
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := bridge.CleanupStaleState(); err != nil {
		clog.Warn("cleanup stale daemon state: %v", err)
	}
	if state, err := bridge.LoadDaemonState(); err == nil && bridge.IsDaemonRunning(state) {
		return fmt.Errorf("bridge already running (pid %d, %s); use 'unitymcp bridge stop' first", state.PID, state.Addr)
	}

	listen := cfg.Bridge.Listen
	if flagBridgeListen != "" {
		listen = flagBridgeListen
	}

	// Simulated editor environment backing the command surface.
	editorSim := editor.NewSim()
	runner := moose.NewSim(moose.WithPlayModeHost(editorSim))
	dispatcher := editor.NewDispatcher()
	defer dispatcher.Stop()

	// Install/version detection runs once on startup; the repair is
	// deferred onto the dispatcher like any other host-only work.
	store, err := prefs.Open(cfg.Install.PrefsFile)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	detector := install.NewDetector(install.Config{
		Version:       version.Version,
		LegacyRoot:    cfg.Server.LegacyRoot,
		ServerEntry:   cfg.Server.Entry,
		CompanionDirs: cfg.Install.CompanionDirs,
		TrackingDir:   cfg.Install.TrackingDir,
	}, store, dispatcher, nil)
	if detector.EnsureInstalled(cmd.Context()) {
		term.Println("Install repair scheduled")
	}

	playMode := tools.NewPlayMode(runner, editorSim)
	if cfg.History.Enabled != nil && *cfg.History.Enabled {
		hist, err := history.Open(cfg.History.File)
		if err != nil {
			clog.Warn("history unavailable: %v", err)
		} else {
			defer hist.Close()
			playMode.SetHistory(hist)
			pruneHistory(cmd.Context(), hist, cfg.History.Retention)
		}
	}

	var auditLog *audit.Logger
	if cfg.Log.File != "" {
		auditPath := filepath.Join(filepath.Dir(cfg.Log.File), "audit.log")
		f, err := os.OpenFile(auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			clog.Warn("audit log unavailable: %v", err)
		} else {
			defer f.Close()
			auditLog = audit.NewLogger(f)
		}
	}

	srv := bridge.NewServer(listen)
	routers := []*command.Router{
		playMode.Router(),
		tools.NewMenu(editorSim).Router(),
		tools.NewConsole(editorSim).Router(),
		tools.NewEditorControl(editorSim).Router(),
	}
	for _, r := range routers {
		if auditLog != nil {
			r.SetAuditLogger(auditLog)
		}
		srv.Register(r)
	}

	if err := srv.Start(); err != nil {
		return err
	}

	state := &bridge.DaemonState{PID: os.Getpid(), Addr: srv.ListenAddr()}
	if err := bridge.SaveDaemonState(state); err != nil {
		clog.Warn("save daemon state: %v", err)
	}

	term.Printf("Bridge listening on %s\n", srv.ListenAddr())
	term.Printf("Tools: %v\n", srv.Tools())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}

	term.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		clog.Warn("bridge shutdown: %v", err)
	}
	if err := bridge.RemoveDaemonState(); err != nil {
		clog.Warn("remove daemon state: %v", err)
	}
	return nil
}

func runBridgeStop(cmd *cobra.Command, args []string) error {
	state, err := bridge.LoadDaemonState()
	if err != nil {
		return err
	}
	if !bridge.IsDaemonRunning(state) {
		term.Println("Bridge is not running")
		return bridge.RemoveDaemonState()
	}
	if err := bridge.StopDaemon(state); err != nil {
		return fmt.Errorf("stop bridge daemon: %w", err)
	}
	term.Printf("Stopped bridge (pid %d)\n", state.PID)
	return nil
}

func runBridgeStatus(cmd *cobra.Command, args []string) error {
	state, err := bridge.LoadDaemonState()
	if err != nil {
		return err
	}
	if !bridge.IsDaemonRunning(state) {
		term.Println("Bridge is not running")
		return NewExitCodeError(1)
	}
	term.Printf("Bridge running (pid %d, %s)\n", state.PID, state.Addr)
	return nil
}

// pruneHistory removes ended runs past the retention window.
func pruneHistory(ctx context.Context, hist *history.Store, retention string) {
	if retention == "" {
		return
	}
	d, err := time.ParseDuration(retention)
	if err != nil {
		return
	}
	n, err := hist.Prune(ctx, d)
	if err != nil {
		clog.Warn("prune history: %v", err)
		return
	}
	if n > 0 {
		clog.Info("pruned %d history runs older than %s", n, retention)
	}
}
