package platformshell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopShortcutInstallerNeverFails(t *testing.T) {
	s := NewShortcutInstaller()
	assert.NoError(t, s.CreateShortcut("app", "/usr/bin/app"))
	assert.NoError(t, s.RemoveShortcut("app"))
}

func TestCleanupNowRemovesBothFilesAndToleratesMissing(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "maintenancetool")
	log := filepath.Join(dir, "installer.log")
	require.NoError(t, os.WriteFile(tool, []byte("x"), 0o640))
	require.NoError(t, os.WriteFile(log, []byte("y"), 0o640))

	c := &selfCleaner{selfExe: "/bin/true"}
	err := c.CleanupNow(tool, log)
	require.NoError(t, err)

	_, statErr := os.Stat(tool)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(log)
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, c.CleanupNow(tool, log))
}
