package tasks

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/maintenancetool/pkg/database"
	"github.com/flanksource/maintenancetool/pkg/framework"
	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/source"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
	"github.com/flanksource/maintenancetool/pkg/types"
	"github.com/flanksource/maintenancetool/pkg/version"
)

func buildZipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, contents := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

type stubHandler struct {
	releases []types.Release
}

func (h *stubHandler) GetCurrentReleases(ctx context.Context, config map[string]any) ([]types.Release, error) {
	return h.releases, nil
}

func newTestFramework(t *testing.T, config types.Config, dir string) *framework.Framework {
	t.Helper()
	fw := framework.New(config)
	require.NoError(t, fw.SetInstallDir(dir))
	return fw
}

func runTree(fw *framework.Framework, root tasktree.Task) error {
	var execErr error
	fw.WithWriteLock(func(s *framework.State) {
		node := tasktree.Build(root)
		_, execErr = node.Execute(context.Background(), s, nil)
	})
	return execErr
}

func testConfig(pkg types.PackageDescription) types.Config {
	return types.Config{
		General:  types.GeneralConfig{Name: "testapp"},
		Packages: []types.PackageDescription{pkg},
	}
}

func TestFreshInstallSinglePackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buildZipBytes(t, map[string]string{"foo-linux": "binary-contents"}))
	}))
	defer server.Close()

	registry := source.NewRegistry()
	registry.Register("stub", &stubHandler{releases: []types.Release{
		{Version: version.Integer(1), Files: []types.File{{Name: "foo-linux.zip", URL: server.URL}}},
		{Version: version.Integer(2), Files: []types.File{{Name: "foo-linux.zip", URL: server.URL}}},
	}})

	pkg := types.PackageDescription{
		Name: "foo",
		Source: types.PackageSource{
			HandlerName: "stub",
			MatchRegex:  `foo-#PLATFORM#\.zip`,
		},
	}
	config := testConfig(pkg)

	dir := t.TempDir()
	fw := newTestFramework(t, config, dir)

	client := httpclient.Default()
	root := BuildInstallTask(config, registry, client, []string{"foo"}, nil, true)

	err := runTree(fw, root)
	require.NoError(t, err)

	db := fw.Database()
	require.Len(t, db, 1)
	assert.Equal(t, "foo", db[0].Name)
	assert.Equal(t, int64(2), db[0].Version.Int())
	assert.True(t, database.Exists(dir))
	_, statErr := os.Stat(filepath.Join(dir, MaintenanceToolBaseName))
	assert.NoError(t, statErr)
}

func TestUpdateSameVersionBreaks(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register("stub", &stubHandler{releases: []types.Release{
		{Version: version.Integer(2), Files: []types.File{{Name: "foo-linux.zip", URL: "http://unused"}}},
	}})

	pkg := types.PackageDescription{
		Name: "foo",
		Source: types.PackageSource{
			HandlerName: "stub",
			MatchRegex:  `foo-#PLATFORM#\.zip`,
		},
	}
	config := testConfig(pkg)

	dir := t.TempDir()
	require.NoError(t, database.Save(dir, []types.LocalInstallation{
		{Name: "foo", Version: version.Integer(2), Files: []string{"foo-bin"}},
	}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo-bin"), []byte("old"), 0o640))

	fw := newTestFramework(t, config, dir)
	client := httpclient.Default()
	root := BuildInstallTask(config, registry, client, []string{"foo"}, nil, false)

	err := runTree(fw, root)
	require.NoError(t, err)

	db := fw.Database()
	require.Len(t, db, 1)
	assert.Equal(t, int64(2), db[0].Version.Int())
	assert.Equal(t, []string{"foo-bin"}, db[0].Files)
}

func TestRegexMatchesZeroFilesErrors(t *testing.T) {
	registry := source.NewRegistry()
	registry.Register("stub", &stubHandler{releases: []types.Release{
		{Version: version.Integer(1), Files: []types.File{{Name: "foo-windows.zip", URL: "http://unused"}}},
	}})

	pkg := types.PackageDescription{
		Name: "foo",
		Source: types.PackageSource{
			HandlerName: "stub",
			MatchRegex:  `foo-#PLATFORM#\.zip`,
		},
	}
	config := testConfig(pkg)

	dir := t.TempDir()
	fw := newTestFramework(t, config, dir)
	client := httpclient.Default()
	root := BuildInstallTask(config, registry, client, []string{"foo"}, nil, true)

	err := runTree(fw, root)
	assert.Error(t, err)
}

func TestNonEmptyDirOnFreshInstallErrors(t *testing.T) {
	pkg := types.PackageDescription{
		Name: "foo",
		Source: types.PackageSource{
			HandlerName: "stub",
			MatchRegex:  `foo-#PLATFORM#\.zip`,
		},
	}
	config := testConfig(pkg)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preexisting"), []byte("x"), 0o640))

	fw := newTestFramework(t, config, dir)
	registry := source.NewRegistry()
	client := httpclient.Default()
	root := BuildInstallTask(config, registry, client, []string{"foo"}, nil, true)

	err := runTree(fw, root)
	assert.Error(t, err)

	db := fw.Database()
	assert.Empty(t, db)
}

func TestUninstallRemovesOneKeepsAnother(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo-bin"), []byte("f"), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bar-bin"), []byte("b"), 0o640))
	require.NoError(t, database.Save(dir, []types.LocalInstallation{
		{Name: "foo", Version: version.Integer(1), Files: []string{"foo-bin"}},
		{Name: "bar", Version: version.Integer(1), Files: []string{"bar-bin"}},
	}))

	config := types.Config{General: types.GeneralConfig{Name: "testapp"}}
	fw := newTestFramework(t, config, dir)

	root := BuildUninstallTask([]string{"foo"})
	err := runTree(fw, root)
	require.NoError(t, err)

	db := fw.Database()
	require.Len(t, db, 1)
	assert.Equal(t, "bar", db[0].Name)

	_, statErr := os.Stat(filepath.Join(dir, "foo-bin"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "bar-bin"))
	assert.NoError(t, statErr)
}

func TestArchiveEntryCollisionErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buildZipBytes(t, map[string]string{"shared-file": "contents"}))
	}))
	defer server.Close()

	registry := source.NewRegistry()
	registry.Register("stub", &stubHandler{releases: []types.Release{
		{Version: version.Integer(1), Files: []types.File{{Name: "pkg-linux.zip", URL: server.URL}}},
	}})

	pkgA := types.PackageDescription{
		Name:   "pkg-a",
		Source: types.PackageSource{HandlerName: "stub", MatchRegex: `pkg-#PLATFORM#\.zip`},
	}
	pkgB := types.PackageDescription{
		Name:   "pkg-b",
		Source: types.PackageSource{HandlerName: "stub", MatchRegex: `pkg-#PLATFORM#\.zip`},
	}
	config := types.Config{General: types.GeneralConfig{Name: "testapp"}, Packages: []types.PackageDescription{pkgA, pkgB}}

	dir := t.TempDir()
	fw := newTestFramework(t, config, dir)
	client := httpclient.Default()
	root := BuildInstallTask(config, registry, client, []string{"pkg-a", "pkg-b"}, nil, true)

	err := runTree(fw, root)
	assert.Error(t, err)

	db := fw.Database()
	require.Len(t, db, 1)
	assert.Equal(t, "pkg-a", db[0].Name)
}
