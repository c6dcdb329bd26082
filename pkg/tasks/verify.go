package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
)

// VerifyInstallDir ensures the framework's install path exists, creating
// it if absent. When CleanInstall is set (a fresh, non-maintenance-mode
// install) it additionally requires the directory to be empty.
type VerifyInstallDir struct {
	CleanInstall bool
}

func (t *VerifyInstallDir) Name() string                  { return "verify-install-dir" }
func (t *VerifyInstallDir) Dependencies() []tasktree.Task { return nil }

func (t *VerifyInstallDir) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	installPath := fw.InstallPath()

	info, err := os.Stat(installPath)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(installPath, installFilePerm); mkErr != nil {
			return tasktree.Output{}, &errs.FilesystemError{Path: installPath, Err: mkErr}
		}
		if progress != nil {
			progress(fmt.Sprintf("Created %s", installPath), 1)
		}
		return tasktree.None(), nil
	}
	if err != nil {
		return tasktree.Output{}, &errs.FilesystemError{Path: installPath, Err: err}
	}
	if !info.IsDir() {
		return tasktree.Output{}, &errs.FilesystemError{Path: installPath, Err: fmt.Errorf("exists and is not a directory")}
	}

	if t.CleanInstall {
		entries, err := os.ReadDir(installPath)
		if err != nil {
			return tasktree.Output{}, &errs.FilesystemError{Path: installPath, Err: err}
		}
		if len(entries) > 0 {
			return tasktree.Output{}, &errs.FilesystemError{Path: installPath, Err: fmt.Errorf("directory is not empty")}
		}
	}

	if progress != nil {
		progress(fmt.Sprintf("Verified %s", installPath), 1)
	}
	return tasktree.None(), nil
}
