package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/maintenancetool/pkg/types"
	"github.com/flanksource/maintenancetool/pkg/version"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	entries, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, Exists(dir))
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	entries := []types.LocalInstallation{
		{Name: "foo", Version: version.Integer(2), Files: []string{"foo/bin", "foo"}},
	}

	require.NoError(t, Save(dir, entries))
	assert.True(t, Exists(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "foo", loaded[0].Name)
	assert.Equal(t, int64(2), loaded[0].Version.Int())
	assert.Equal(t, []string{"foo/bin", "foo"}, loaded[0].Files)
}

func TestSaveEmptyWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, nil))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
