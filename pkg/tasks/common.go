package tasks

import "path/filepath"

// joinInstallPath joins rel (a "/"-separated path as recorded in the
// database) onto the install root using the host's path separator.
func joinInstallPath(installPath, rel string) string {
	return filepath.Join(installPath, filepath.FromSlash(rel))
}
