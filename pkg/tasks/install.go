package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/flanksource/maintenancetool/pkg/archive"
	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// installFilePerm is applied to extracted files and the directories that
// contain them on Unix; Windows ignores Go's permission bits beyond the
// read-only flag.
const installFilePerm = 0o770

// InstallPackage depends on DownloadPackage. If the download step returned
// Break, the existing database entry and its files are kept and nothing is
// extracted. Otherwise it first runs Uninstall (UninstallPackage(name,
// optional=true)) to remove any previously installed version, then opens
// the downloaded archive and extracts every entry under install_path with
// create-new semantics: a name collision with a file that already exists
// at that path is a hard FilesystemError.
type InstallPackage struct {
	PackageName string
	Download    tasktree.Task
	Uninstall   tasktree.Task
}

func (t *InstallPackage) Name() string { return fmt.Sprintf("install(%s)", t.PackageName) }
func (t *InstallPackage) Dependencies() []tasktree.Task {
	return []tasktree.Task{t.Download}
}

func (t *InstallPackage) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	download := inputs[0]

	if download.Kind == tasktree.OutputBreak {
		if progress != nil {
			progress(fmt.Sprintf("%s already up to date", t.PackageName), 1)
		}
		return tasktree.None(), nil
	}

	if _, err := t.Uninstall.Execute(ctx, nil, fw, nil); err != nil {
		return tasktree.Output{}, fmt.Errorf("%s: %w", t.Uninstall.Name(), err)
	}

	installPath := fw.InstallPath()

	a, err := archive.Open(download.File.Name, download.Contents)
	if err != nil {
		return tasktree.Output{}, err
	}

	recordedDirs := map[string]bool{}
	var createdPaths []string

	err = a.ForEach(func(index, total int, entryPath string, r io.Reader) error {
		if entryPath == "" {
			return nil
		}

		isDir := strings.HasSuffix(entryPath, "/")
		rel := strings.TrimSuffix(entryPath, "/")

		if err := ensureAncestorDirs(installPath, rel, recordedDirs, &createdPaths); err != nil {
			return err
		}

		if isDir {
			full := joinInstallPath(installPath, rel)
			if err := os.MkdirAll(full, installFilePerm); err != nil {
				return &errs.FilesystemError{Path: full, Err: err}
			}
			if !recordedDirs[rel] {
				recordedDirs[rel] = true
				createdPaths = append(createdPaths, rel)
			}
			return nil
		}

		full := joinInstallPath(installPath, rel)
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, installFilePerm)
		if err != nil {
			if os.IsExist(err) {
				return &errs.FilesystemError{Path: full, Err: fmt.Errorf("entry already exists: %w", err)}
			}
			return &errs.FilesystemError{Path: full, Err: err}
		}

		_, copyErr := io.Copy(f, r)
		closeErr := f.Close()
		if copyErr != nil {
			return &errs.FilesystemError{Path: full, Err: copyErr}
		}
		if closeErr != nil {
			return &errs.FilesystemError{Path: full, Err: closeErr}
		}

		createdPaths = append(createdPaths, rel)

		if progress != nil && total > 0 {
			progress(fmt.Sprintf("Extracted %s", rel), float64(index+1)/float64(total+1))
		}

		return nil
	})
	if err != nil {
		return tasktree.Output{}, err
	}

	fw.Put(types.LocalInstallation{
		Name:    t.PackageName,
		Version: download.Version,
		Files:   createdPaths,
	})

	if progress != nil {
		progress(fmt.Sprintf("Installed %s", t.PackageName), 1)
	}

	return tasktree.None(), nil
}

// ensureAncestorDirs creates every ancestor directory of rel under
// installPath that doesn't already exist, recording each ancestor not yet
// recorded for this package exactly once into createdPaths, whether or not
// it already existed on disk (in outermost-first order, as the spec
// requires for their later reverse-order deletion).
func ensureAncestorDirs(installPath, rel string, recorded map[string]bool, createdPaths *[]string) error {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	var segments []string
	for d := dir; d != "." && d != "/" && d != ""; d = path.Dir(d) {
		segments = append([]string{d}, segments...)
	}

	for _, seg := range segments {
		if recorded[seg] {
			continue
		}
		full := joinInstallPath(installPath, seg)
		if err := os.MkdirAll(full, installFilePerm); err != nil {
			return &errs.FilesystemError{Path: full, Err: err}
		}
		recorded[seg] = true
		*createdPaths = append(*createdPaths, seg)
	}
	return nil
}
