package tasks

import (
	"context"

	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/source"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// BuildInstallTask constructs the root InstallTask tree for an install
// operation: verify the install dir, install every item in items,
// uninstall every item in uninstallItems, save the database, and — on a
// fresh install — save the executable as the maintenance tool.
//
// Children run in this exact order (spec.md §4.8): VerifyInstallDir,
// InstallPackage(x) for each x in items, UninstallPackage(x,
// optional=false) for each x in uninstallItems, SaveDatabase, and
// SaveExecutable if freshInstall.
func BuildInstallTask(config types.Config, registry *source.Registry, client *httpclient.Client, items, uninstallItems []string, freshInstall bool) tasktree.Task {
	var children []tasktree.Task

	children = append(children, &VerifyInstallDir{CleanInstall: freshInstall})

	for _, name := range items {
		resolve := &ResolvePackage{PackageName: name, Config: config, Registry: registry}
		download := &DownloadPackage{PackageName: name, Resolve: resolve, Client: client}
		uninstallOld := &UninstallPackage{PackageName: name, Optional: true}
		install := &InstallPackage{PackageName: name, Download: download, Uninstall: uninstallOld}
		children = append(children, install)
	}

	for _, name := range uninstallItems {
		children = append(children, &UninstallPackage{PackageName: name, Optional: false})
	}

	children = append(children, &SaveDatabase{})

	if freshInstall {
		children = append(children, &SaveExecutable{})
	}

	return &InstallTask{children: children}
}

// InstallTask is the root of an install operation's dependency tree. Its
// own execution only emits a final wrap-up progress event; all real work
// happens in its children.
type InstallTask struct {
	children []tasktree.Task
}

func (t *InstallTask) Name() string                  { return "install" }
func (t *InstallTask) Dependencies() []tasktree.Task { return t.children }

func (t *InstallTask) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	if progress != nil {
		progress("Wrapping up...", 1)
	}
	return tasktree.None(), nil
}

// BuildUninstallTask constructs the root UninstallTask tree: uninstall
// every item in items (in order), then save the database.
func BuildUninstallTask(items []string) tasktree.Task {
	var children []tasktree.Task
	for _, name := range items {
		children = append(children, &UninstallPackage{PackageName: name, Optional: false})
	}
	children = append(children, &SaveDatabase{})
	return &UninstallTask{children: children}
}

// UninstallTask is the root of an uninstall operation's dependency tree.
type UninstallTask struct {
	children []tasktree.Task
}

func (t *UninstallTask) Name() string                  { return "uninstall" }
func (t *UninstallTask) Dependencies() []tasktree.Task { return t.children }

func (t *UninstallTask) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	if progress != nil {
		progress("Wrapping up...", 1)
	}
	return tasktree.None(), nil
}
