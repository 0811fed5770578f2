// Package install detects broken or outdated local server installs and
// schedules a one-shot repair. Detection is a set of cheap filesystem and
// preference checks; the repair itself is an external routine that must
// run on the editor main thread, so it is deferred onto the dispatcher
// rather than executed inline.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/editor"
	"github.com/mooselabs/unitymcp/internal/pathutil"
	"github.com/mooselabs/unitymcp/internal/prefs"
)

// Preference keys. The done flag is suffixed with the package version so
// every upgrade re-runs detection; the legacy keys are remnants of older
// releases and are cleared on every cycle.
const (
	doneKeyPrefix       = "install.done."
	legacyKeyServerPath = "legacy.server_path"
	legacyKeyServerPort = "legacy.server_port"
)

// FallbackFolderID identifies a companion folder that sits outside any
// "Assets" ancestry and therefore has no derivable name.
const FallbackFolderID = "companion-unknown"

// companionVersionFile is the version marker each companion folder ships.
const companionVersionFile = "VERSION"

// sourceRoot is the directory name that anchors companion identity.
const sourceRoot = "Assets"

// RepairFunc performs the actual install/repair. It runs on the editor
// main thread; its error is logged, never propagated.
type RepairFunc func(ctx context.Context) error

// Config describes what the detector watches.
type Config struct {
	// Version is the installed package version the done flag is keyed by.
	Version string

	// LegacyRoot is the old install root; its presence forces a repair.
	LegacyRoot string

	// ServerEntry is the canonical server entry file; its absence forces
	// a repair.
	ServerEntry string

	// CompanionDirs are project-local tool folders tracked independently,
	// each carrying its own VERSION file.
	CompanionDirs []string

	// TrackingDir holds one version-tracking file per companion folder.
	TrackingDir string
}

// Detector runs install/version detection cycles.
type Detector struct {
	cfg        Config
	store      *prefs.Store
	dispatcher *editor.Dispatcher
	repair     RepairFunc

	mu          sync.Mutex
	cycleActive bool
}

// NewDetector creates a detector. repair may be nil, in which case a
// cycle only refreshes the persisted state.
func NewDetector(cfg Config, store *prefs.Store, dispatcher *editor.Dispatcher, repair RepairFunc) *Detector {
	return &Detector{cfg: cfg, store: store, dispatcher: dispatcher, repair: repair}
}

// Check reports whether a repair is needed and why. It has no side
// effects.
func (d *Detector) Check() []string {
	var reasons []string

	if !d.store.GetBool(doneKeyPrefix + d.cfg.Version) {
		reasons = append(reasons, fmt.Sprintf("install not yet completed for version %s", d.cfg.Version))
	}

	if d.cfg.LegacyRoot != "" {
		if _, err := os.Stat(pathutil.ExpandHome(d.cfg.LegacyRoot)); err == nil {
			reasons = append(reasons, "legacy install root present: "+d.cfg.LegacyRoot)
		}
	}

	if d.cfg.ServerEntry != "" {
		if _, err := os.Stat(pathutil.ExpandHome(d.cfg.ServerEntry)); err != nil {
			reasons = append(reasons, "server entry file missing: "+d.cfg.ServerEntry)
		}
	}

	for _, dir := range d.cfg.CompanionDirs {
		current := readVersionFile(filepath.Join(dir, companionVersionFile))
		tracked := readVersionFile(d.trackingPath(dir))
		if current != tracked {
			reasons = append(reasons, fmt.Sprintf("companion folder %s version %q differs from recorded %q",
				FolderID(dir), current, tracked))
		}
	}

	return reasons
}

// EnsureInstalled runs one detection cycle. When detection fires, the
// repair is enqueued on the main-thread dispatcher and true is returned;
// the deferred task completes unconditionally, marking the per-version
// flag done, clearing the legacy keys and re-syncing companion tracking
// regardless of the repair outcome. A cycle already in flight suppresses
// new ones until it finishes.
func (d *Detector) EnsureInstalled(ctx context.Context) bool {
	d.mu.Lock()
	if d.cycleActive {
		d.mu.Unlock()
		return false
	}

	reasons := d.Check()
	if len(reasons) == 0 {
		d.mu.Unlock()
		return false
	}
	d.cycleActive = true
	d.mu.Unlock()

	clog.Info("install repair needed: %s", strings.Join(reasons, "; "))

	d.dispatcher.Enqueue(func() {
		defer func() {
			d.mu.Lock()
			d.cycleActive = false
			d.mu.Unlock()
		}()

		if d.repair != nil {
			if err := d.repair(ctx); err != nil {
				clog.Error("install repair failed: %v", err)
			}
		}

		// State is settled no matter how the repair went; a broken repair
		// must not wedge detection into firing on every startup.
		d.finishCycle()
	})
	return true
}

// finishCycle persists the post-repair state.
func (d *Detector) finishCycle() {
	if err := d.store.SetBool(doneKeyPrefix+d.cfg.Version, true); err != nil {
		clog.Warn("install: mark done flag: %v", err)
	}
	for _, key := range []string{legacyKeyServerPath, legacyKeyServerPort} {
		if err := d.store.Delete(key); err != nil {
			clog.Warn("install: clear legacy key %s: %v", key, err)
		}
	}
	for _, dir := range d.cfg.CompanionDirs {
		d.syncTracking(dir)
	}
}

// syncTracking records a companion folder's current version.
func (d *Detector) syncTracking(dir string) {
	current := readVersionFile(filepath.Join(dir, companionVersionFile))
	path := d.trackingPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		clog.Warn("install: create tracking dir: %v", err)
		return
	}
	if err := os.WriteFile(path, []byte(current+"\n"), 0o600); err != nil {
		clog.Warn("install: write tracking file %s: %v", path, err)
	}
}

// trackingPath returns the tracking file for a companion folder.
func (d *Detector) trackingPath(dir string) string {
	return filepath.Join(d.cfg.TrackingDir, FolderID(dir)+".version")
}

// FolderID derives the identity of a companion folder: the name of the
// path element directly beneath the nearest "Assets" ancestor, or the
// fixed fallback when the folder lives outside any Assets tree.
func FolderID(dir string) string {
	if id := pathutil.AncestorChild(dir, sourceRoot); id != "" {
		return id
	}
	return FallbackFolderID
}

// readVersionFile returns the trimmed content of a version file, or ""
// when the file is unreadable.
func readVersionFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
