// Package database persists the installer's record of installed packages
// as a JSON array next to the installed files. Its presence is the signal
// that an install_path is in maintenance mode.
package database

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// FileName is the database's fixed on-disk name, placed directly under
// the install path.
const FileName = "metadata.json"

// Path returns the metadata.json path for the given install root.
func Path(installPath string) string {
	return filepath.Join(installPath, FileName)
}

// Load reads the database at installPath. A missing file is not an error:
// it returns an empty slice, matching a fresh (non-maintenance-mode)
// install directory.
func Load(installPath string) ([]types.LocalInstallation, error) {
	data, err := os.ReadFile(Path(installPath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &errs.FilesystemError{Path: Path(installPath), Err: err}
	}

	var entries []types.LocalInstallation
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &errs.FilesystemError{Path: Path(installPath), Err: err}
	}
	return entries, nil
}

// Exists reports whether installPath already has a database, i.e.
// whether it is in maintenance mode.
func Exists(installPath string) bool {
	_, err := os.Stat(Path(installPath))
	return err == nil
}

// Save writes entries to installPath's database, replacing any existing
// content. The write is not atomic across a crash mid-write (spec.md §4.5
// only requires write failure to surface as a hard error, not rollback),
// but it does write to a temp file first and rename into place so a
// concurrent reader never observes a half-written file.
func Save(installPath string, entries []types.LocalInstallation) error {
	if entries == nil {
		entries = []types.LocalInstallation{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &errs.FilesystemError{Path: Path(installPath), Err: err}
	}

	target := Path(installPath)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return &errs.FilesystemError{Path: target, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		return &errs.FilesystemError{Path: target, Err: err}
	}
	return nil
}
