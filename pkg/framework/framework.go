// Package framework holds the process-wide, read/write-locked installer
// state: the loaded config, the installation database, the chosen install
// path, and launcher/maintenance-mode flags. It is the single piece of
// shared mutable state in the process; every HTTP handler in pkg/server
// takes either its read or write lock.
package framework

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/maintenancetool/pkg/database"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// Framework is the installer's process-wide shared state.
type Framework struct {
	mu sync.RWMutex

	config             types.Config
	db                 []types.LocalInstallation
	installPath        string
	installPathSet     bool
	preexistingInstall bool
	isLauncher         bool
	launcherPath       string
}

// New returns a Framework over the given immutable config. It does not
// set an install path; SetInstallDir or a maintenance-mode detection must
// run before an install or uninstall is started.
func New(config types.Config) *Framework {
	return &Framework{config: config}
}

// SetLauncher records launcher mode and its target, per the --launcher
// CLI flag (spec.md §6).
func (f *Framework) SetLauncher(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.isLauncher = true
	f.launcherPath = target
}

// IsLauncher reports whether --launcher was set.
func (f *Framework) IsLauncher() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isLauncher
}

// LauncherPath returns the target to spawn on exit, or "" if not set.
func (f *Framework) LauncherPath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.launcherPath
}

// GetConfig returns the loaded catalog.
func (f *Framework) GetConfig() types.Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.config
}

// GetDefaultPath computes the platform default install path:
// %LOCALAPPDATA%/<app_name> on Windows, $HOME/<app_name> elsewhere.
func (f *Framework) GetDefaultPath() (string, bool) {
	f.mu.RLock()
	name := f.config.General.Name
	f.mu.RUnlock()

	if name == "" {
		return "", false
	}

	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
	} else {
		base = os.Getenv("HOME")
	}
	if base == "" {
		return "", false
	}
	return filepath.Join(base, name), true
}

// InstallPath returns the currently set install path, or "" if unset.
// (Tasks see the install path through State, which is what satisfies
// pkg/tasktree.Framework.)
func (f *Framework) InstallPath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.installPath
}

// PreexistingInstall reports whether this session started against an
// install path that already had a database (maintenance mode).
func (f *Framework) PreexistingInstall() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.preexistingInstall
}

// SetInstallDir sets the install path. Only legal before a preexisting
// install has been detected at that path (spec.md §4.6).
func (f *Framework) SetInstallDir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.preexistingInstall {
		return fmt.Errorf("install path is fixed by a preexisting installation")
	}

	f.installPath = path
	f.installPathSet = true
	f.preexistingInstall = database.Exists(path)
	if f.preexistingInstall {
		db, err := database.Load(path)
		if err != nil {
			return err
		}
		f.db = db
	}
	return nil
}

// Database returns a snapshot copy of the current database entries.
func (f *Framework) Database() []types.LocalInstallation {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]types.LocalInstallation, len(f.db))
	copy(out, f.db)
	return out
}

// GetInstallationStatus returns a snapshot for GET /api/installation-status.
func (f *Framework) GetInstallationStatus() types.InstallationStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	dbCopy := make([]types.LocalInstallation, len(f.db))
	copy(dbCopy, f.db)
	return types.InstallationStatus{
		Database:           dbCopy,
		InstallPath:        f.installPath,
		PreexistingInstall: f.preexistingInstall,
	}
}

// WithWriteLock runs fn with the framework's write lock held, giving it
// direct access to mutate the database via the State it is handed. Used by pkg/tasks so task execution and the HTTP handler
// share exactly one critical section per top-level operation.
func (f *Framework) WithWriteLock(fn func(*State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&State{f: f})
}

// State is the mutation surface exposed inside WithWriteLock; it exists so
// callers cannot forget to hold the lock while touching the database.
type State struct {
	f *Framework
}

// Database returns the live (not copied) database slice for reading.
func (s *State) Database() []types.LocalInstallation {
	return s.f.db
}

// Put replaces or appends the LocalInstallation for entry.Name.
func (s *State) Put(entry types.LocalInstallation) {
	for i, e := range s.f.db {
		if e.Name == entry.Name {
			s.f.db[i] = entry
			return
		}
	}
	s.f.db = append(s.f.db, entry)
}

// Remove deletes the entry named name, if present.
func (s *State) Remove(name string) {
	for i, e := range s.f.db {
		if e.Name == name {
			s.f.db = append(s.f.db[:i], s.f.db[i+1:]...)
			return
		}
	}
}

// Get returns the entry named name and whether it was found.
func (s *State) Get(name string) (types.LocalInstallation, bool) {
	for _, e := range s.f.db {
		if e.Name == name {
			return e, true
		}
	}
	return types.LocalInstallation{}, false
}

// InstallPath returns the framework's install path.
func (s *State) InstallPath() string {
	return s.f.installPath
}

// SaveDatabase persists the current database to disk.
func (s *State) SaveDatabase() error {
	if err := database.Save(s.f.installPath, s.f.db); err != nil {
		return err
	}
	logger.Infof("saved installation database to %s", database.Path(s.f.installPath))
	return nil
}
