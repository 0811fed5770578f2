package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mooselabs/unitymcp/internal/editor"
	"github.com/mooselabs/unitymcp/internal/prefs"
)

type fixture struct {
	dir        string
	cfg        Config
	store      *prefs.Store
	dispatcher *editor.Dispatcher
}

// newFixture builds a healthy install: done flag set, no legacy root,
// server entry present, no companions.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	serverEntry := filepath.Join(dir, "server", "server.py")
	if err := os.MkdirAll(filepath.Dir(serverEntry), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(serverEntry, []byte("entry\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := prefs.Open(filepath.Join(dir, "prefs.json"))
	if err != nil {
		t.Fatalf("prefs.Open() error = %v", err)
	}
	if err := store.SetBool(doneKeyPrefix+"1.2.3", true); err != nil {
		t.Fatal(err)
	}

	dispatcher := editor.NewDispatcher()
	t.Cleanup(dispatcher.Stop)

	return &fixture{
		dir: dir,
		cfg: Config{
			Version:     "1.2.3",
			LegacyRoot:  filepath.Join(dir, "legacy-root"),
			ServerEntry: serverEntry,
			TrackingDir: filepath.Join(dir, "tracking"),
		},
		store:      store,
		dispatcher: dispatcher,
	}
}

// runCycle runs EnsureInstalled and drains the dispatcher so the deferred
// repair has completed when it returns.
func (f *fixture) runCycle(t *testing.T, d *Detector) bool {
	t.Helper()
	fired := d.EnsureInstalled(context.Background())
	f.dispatcher.Stop()
	return fired
}

func TestCheckHealthyInstall(t *testing.T) {
	f := newFixture(t)
	d := NewDetector(f.cfg, f.store, f.dispatcher, nil)

	if reasons := d.Check(); len(reasons) != 0 {
		t.Errorf("Check() = %v, want none", reasons)
	}
	if d.EnsureInstalled(context.Background()) {
		t.Error("healthy install should not schedule a repair")
	}
}

func TestCheckReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, f *fixture)
		want   string
	}{
		{
			name: "done flag unset",
			mutate: func(t *testing.T, f *fixture) {
				f.cfg.Version = "2.0.0"
			},
			want: "not yet completed for version 2.0.0",
		},
		{
			name: "legacy root exists",
			mutate: func(t *testing.T, f *fixture) {
				if err := os.MkdirAll(f.cfg.LegacyRoot, 0o700); err != nil {
					t.Fatal(err)
				}
			},
			want: "legacy install root",
		},
		{
			name: "server entry missing",
			mutate: func(t *testing.T, f *fixture) {
				if err := os.Remove(f.cfg.ServerEntry); err != nil {
					t.Fatal(err)
				}
			},
			want: "server entry file missing",
		},
		{
			name: "companion version drift",
			mutate: func(t *testing.T, f *fixture) {
				companion := filepath.Join(f.dir, "Assets", "Tools", "Moose")
				if err := os.MkdirAll(companion, 0o700); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(companion, companionVersionFile), []byte("0.9.0\n"), 0o600); err != nil {
					t.Fatal(err)
				}
				f.cfg.CompanionDirs = []string{companion}
			},
			want: "companion folder Tools",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mutate(t, f)
			d := NewDetector(f.cfg, f.store, f.dispatcher, nil)

			reasons := d.Check()
			if len(reasons) != 1 {
				t.Fatalf("Check() = %v, want one reason", reasons)
			}
			if !strings.Contains(reasons[0], tt.want) {
				t.Errorf("reason = %q, want it to contain %q", reasons[0], tt.want)
			}
		})
	}
}

func TestRepairRunsOnDispatcher(t *testing.T) {
	f := newFixture(t)
	f.cfg.Version = "2.0.0" // forces detection

	var mu sync.Mutex
	var repaired bool
	d := NewDetector(f.cfg, f.store, f.dispatcher, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		repaired = true
		return nil
	})

	if !f.runCycle(t, d) {
		t.Fatal("repair should have been scheduled")
	}
	mu.Lock()
	defer mu.Unlock()
	if !repaired {
		t.Error("repair did not run")
	}
}

func TestCycleSettlesStateEvenOnRepairFailure(t *testing.T) {
	f := newFixture(t)
	f.cfg.Version = "2.0.0"
	if err := f.store.Set(legacyKeyServerPath, "/old/path"); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Set(legacyKeyServerPort, "6400"); err != nil {
		t.Fatal(err)
	}

	d := NewDetector(f.cfg, f.store, f.dispatcher, func(ctx context.Context) error {
		return errors.New("installer exploded")
	})

	if !f.runCycle(t, d) {
		t.Fatal("repair should have been scheduled")
	}

	if !f.store.GetBool(doneKeyPrefix + "2.0.0") {
		t.Error("done flag must be set even when the repair fails")
	}
	if _, ok := f.store.Get(legacyKeyServerPath); ok {
		t.Error("legacy server path key must be cleared")
	}
	if _, ok := f.store.Get(legacyKeyServerPort); ok {
		t.Error("legacy server port key must be cleared")
	}
}

func TestCyclePanicDoesNotEscape(t *testing.T) {
	f := newFixture(t)
	f.cfg.Version = "2.0.0"

	d := NewDetector(f.cfg, f.store, f.dispatcher, func(ctx context.Context) error {
		panic("installer panicked")
	})

	// Must not take the dispatcher (or this test) down.
	f.runCycle(t, d)
}

func TestCompanionTrackingSyncedAfterRepair(t *testing.T) {
	f := newFixture(t)
	companion := filepath.Join(f.dir, "Assets", "Tools", "Moose")
	if err := os.MkdirAll(companion, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(companion, companionVersionFile), []byte("0.9.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f.cfg.CompanionDirs = []string{companion}

	d := NewDetector(f.cfg, f.store, f.dispatcher, nil)
	if !f.runCycle(t, d) {
		t.Fatal("version drift should trigger a cycle")
	}

	data, err := os.ReadFile(filepath.Join(f.cfg.TrackingDir, "Tools.version"))
	if err != nil {
		t.Fatalf("tracking file not written: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "0.9.0" {
		t.Errorf("tracked version = %q, want 0.9.0", got)
	}

	// A fresh detector over the synced state is quiet again.
	d2 := NewDetector(f.cfg, f.store, editor.NewDispatcher(), nil)
	if reasons := d2.Check(); len(reasons) != 0 {
		t.Errorf("Check() after sync = %v, want none", reasons)
	}
}

func TestCycleNotReentrant(t *testing.T) {
	f := newFixture(t)
	f.cfg.Version = "2.0.0"

	started := make(chan struct{})
	release := make(chan struct{})
	d := NewDetector(f.cfg, f.store, f.dispatcher, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	if !d.EnsureInstalled(context.Background()) {
		t.Fatal("first cycle should fire")
	}
	<-started
	if d.EnsureInstalled(context.Background()) {
		t.Error("second cycle must be suppressed while the first is in flight")
	}
	close(release)
	f.dispatcher.Stop()
}

func TestFolderID(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/proj/Assets/Tools/Moose/Editor", "Tools"},
		{"/proj/Assets/Plugins", "Plugins"},
		{"/somewhere/else/entirely", FallbackFolderID},
	}
	for _, tt := range tests {
		if got := FolderID(tt.dir); got != tt.want {
			t.Errorf("FolderID(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
