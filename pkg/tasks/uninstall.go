package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/maintenancetool/pkg/tasktree"
)

// UninstallPackage removes name's LocalInstallation from the database and
// deletes its recorded paths in reverse order, so files are removed
// before the directories that contain them. If name is not present in
// the database it is a no-op (regardless of Optional); deletion failures
// for paths that ARE recorded are logged and do not abort the task.
type UninstallPackage struct {
	PackageName string
	Optional    bool
}

func (t *UninstallPackage) Name() string                  { return fmt.Sprintf("uninstall(%s)", t.PackageName) }
func (t *UninstallPackage) Dependencies() []tasktree.Task { return nil }

func (t *UninstallPackage) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	entry, ok := fw.Get(t.PackageName)
	if !ok {
		if progress != nil {
			progress(fmt.Sprintf("%s not installed, nothing to do", t.PackageName), 1)
		}
		return tasktree.None(), nil
	}

	installPath := fw.InstallPath()
	total := len(entry.Files)
	for i, rel := range reversed(entry.Files) {
		full := joinInstallPath(installPath, rel)
		if _, statErr := os.Stat(full); os.IsNotExist(statErr) {
			continue
		}

		if err := os.Remove(full); err != nil {
			logger.Warnf("uninstall %s: could not remove %s: %v", t.PackageName, full, err)
		}

		if progress != nil && total > 0 {
			progress(fmt.Sprintf("Removed %s", rel), float64(i+1)/float64(total+1))
		}
	}

	fw.Remove(t.PackageName)

	if progress != nil {
		progress(fmt.Sprintf("Uninstalled %s", t.PackageName), 1)
	}

	return tasktree.None(), nil
}

// reversed returns a new slice with paths in reverse order, so files are
// deleted before the directories that contain them (entry paths are
// recorded in creation order, each ancestor directory before the files
// inside it, so reversing yields files before their dirs).
func reversed(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[len(paths)-1-i] = p
	}
	return out
}
