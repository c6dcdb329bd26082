package tasks

import (
	"context"
	"io"
	"os"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
)

// MaintenanceToolBaseName is the name the installer's own binary is
// copied to inside install_path, becoming the maintenance tool.
const MaintenanceToolBaseName = "maintenancetool"

// SaveExecutable copies the currently running executable to
// <install_path>/maintenancetool[.exe], the step that turns a fresh
// install into a maintenance-mode installation.
type SaveExecutable struct{}

func (t *SaveExecutable) Name() string                  { return "save-executable" }
func (t *SaveExecutable) Dependencies() []tasktree.Task { return nil }

func (t *SaveExecutable) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	self, err := os.Executable()
	if err != nil {
		return tasktree.Output{}, &errs.FilesystemError{Path: self, Err: err}
	}

	target := platform.Current().AddExtension(MaintenanceToolBaseName)
	full := joinInstallPath(fw.InstallPath(), target)

	src, err := os.Open(self)
	if err != nil {
		return tasktree.Output{}, &errs.FilesystemError{Path: self, Err: err}
	}
	defer src.Close()

	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, installFilePerm)
	if err != nil {
		return tasktree.Output{}, &errs.FilesystemError{Path: full, Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return tasktree.Output{}, &errs.FilesystemError{Path: full, Err: err}
	}

	if progress != nil {
		progress("Saved maintenance tool", 1)
	}
	return tasktree.None(), nil
}
