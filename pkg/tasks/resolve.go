// Package tasks implements the concrete task types that make up the
// install/uninstall dependency tree: resolving a package's current
// release, downloading its file, installing and uninstalling its files on
// disk, and the bookkeeping tasks (verify dir, save database, save
// executable) plus the two root tasks (InstallTask, UninstallTask).
package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/source"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// platformToken is the literal placeholder a PackageSource's match_regex
// contains, substituted with the running OS identifier before compiling.
const platformToken = "#PLATFORM#"

// ResolvePackage looks up name in the catalog, asks its source for
// releases, and picks the release with the greatest version that has at
// least one file matching the platform-substituted regex.
type ResolvePackage struct {
	PackageName string
	Config      types.Config
	Registry    *source.Registry
}

func (t *ResolvePackage) Name() string             { return fmt.Sprintf("resolve(%s)", t.PackageName) }
func (t *ResolvePackage) Dependencies() []tasktree.Task { return nil }

func (t *ResolvePackage) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	if progress != nil {
		progress("Resolving "+t.PackageName, 0)
	}

	pkg, ok := t.Config.PackageByName(t.PackageName)
	if !ok {
		return tasktree.Output{}, &errs.ConfigError{Field: "packages", Err: fmt.Errorf("unknown package %q", t.PackageName)}
	}

	pattern := strings.ReplaceAll(pkg.Source.MatchRegex, platformToken, platform.Current().OS)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return tasktree.Output{}, &errs.ConfigError{Field: "source.match", Err: fmt.Errorf("package %s: %w", t.PackageName, err)}
	}

	releases, err := t.Registry.Resolve(ctx, t.PackageName, pkg.Source)
	if err != nil {
		return tasktree.Output{}, err
	}

	var bestRelease *types.Release
	var bestFile types.File
	for i, r := range releases {
		var matchedFile types.File
		found := false
		for _, f := range r.Files {
			if re.MatchString(f.Name) {
				matchedFile = f
				found = true
				break
			}
		}
		if !found {
			continue
		}

		if bestRelease == nil || r.Version.Compare(bestRelease.Version) > 0 {
			bestRelease = &releases[i]
			bestFile = matchedFile
		}
	}

	if bestRelease == nil {
		return tasktree.Output{}, &errs.NoMatchingRelease{Package: t.PackageName, Regex: pattern}
	}

	if progress != nil {
		progress("Resolved "+t.PackageName, 1)
	}

	return tasktree.FileOutput(bestRelease.Version, bestFile), nil
}
