// Package platformshell is the thin, no-op-by-default boundary for the
// OS-specific collaborators spec.md keeps out of the core: Start Menu /
// desktop shortcut creation, and burning the maintenance tool's own
// executable plus its log file after a top-level uninstall.
//
// The teacher's original self-deletion approach (a detached
// `cmd /C ping 127.0.0.1 -n 3 & del <tool> <log>` on Windows) is
// deliberately not reproduced here; instead ScheduleCleanup re-invokes the
// current binary with the hidden `--cleanup <tool-path> <log-path>` flag
// and returns without waiting, and the spawned copy waits briefly before
// deleting the tool and log files.
package platformshell

import (
	"os"
	"os/exec"
	"time"

	"github.com/flanksource/commons/logger"
)

// ShortcutInstaller creates (or removes) OS-native launch shortcuts. The
// default implementation is a deliberate no-op: shortcut creation is a
// UI-boundary concern per spec.md's non-goals, not something the core
// needs to exercise to be correct.
type ShortcutInstaller interface {
	CreateShortcut(name, target string) error
	RemoveShortcut(name string) error
}

// SelfCleaner removes the maintenance tool's own executable and its log
// file once it is safe to do so (i.e. after the process that was holding
// them open has exited).
type SelfCleaner interface {
	// ScheduleCleanup re-invokes selfExe in a detached child with the
	// hidden cleanup flag and returns immediately; it does not wait for
	// the child.
	ScheduleCleanup(toolPath, logPath string) error
	// CleanupNow performs the actual deletion; called by the re-invoked
	// child process (see cmd/maintenancetool's --cleanup handling).
	CleanupNow(toolPath, logPath string) error
}

// CleanupFlag is the hidden CLI flag name used to re-invoke the binary as
// a cleanup helper.
const CleanupFlag = "--cleanup"

// noopShortcutInstaller is the default ShortcutInstaller: it does nothing
// and never fails, matching spec.md §9's "no-op fallback" guidance.
type noopShortcutInstaller struct{}

// NewShortcutInstaller returns the default no-op implementation.
func NewShortcutInstaller() ShortcutInstaller { return noopShortcutInstaller{} }

func (noopShortcutInstaller) CreateShortcut(name, target string) error { return nil }
func (noopShortcutInstaller) RemoveShortcut(name string) error         { return nil }

// selfCleaner is the default SelfCleaner, implemented via the detached
// re-invocation scheme described in the package doc comment.
type selfCleaner struct {
	selfExe string
}

// NewSelfCleaner returns the default SelfCleaner, using os.Executable()
// as the binary to re-invoke.
func NewSelfCleaner() (SelfCleaner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &selfCleaner{selfExe: exe}, nil
}

func (c *selfCleaner) ScheduleCleanup(toolPath, logPath string) error {
	cmd := exec.Command(c.selfExe, CleanupFlag, toolPath, logPath)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warnf("cleanup helper exited with error: %v", err)
		}
	}()
	return nil
}

// CleanupNow waits briefly for the parent process to release its file
// handles, then removes toolPath and logPath. Both removals are
// best-effort: a missing file is not an error, and a failure to remove
// one doesn't prevent trying the other.
func (c *selfCleaner) CleanupNow(toolPath, logPath string) error {
	time.Sleep(500 * time.Millisecond)

	var firstErr error
	for _, p := range []string{toolPath, logPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warnf("removing %s: %v", p, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
