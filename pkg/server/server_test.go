package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/maintenancetool/pkg/database"
	"github.com/flanksource/maintenancetool/pkg/framework"
	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/source"
	"github.com/flanksource/maintenancetool/pkg/types"
	"github.com/flanksource/maintenancetool/pkg/version"
)

func startTestServer(t *testing.T, config types.Config, dir string) *Server {
	t.Helper()
	fw := framework.New(config)
	require.NoError(t, fw.SetInstallDir(dir))
	srv, err := New(fw, source.NewRegistry(), httpclient.Default(), nil)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestBindsOnLoopbackEphemeralPort(t *testing.T) {
	srv := startTestServer(t, types.Config{General: types.GeneralConfig{Name: "app"}}, t.TempDir())
	assert.Contains(t, srv.Addr(), "127.0.0.1:")
}

func TestConfigEndpointServesJSONP(t *testing.T) {
	config := types.Config{General: types.GeneralConfig{Name: "app"}}
	srv := startTestServer(t, config, t.TempDir())

	resp, err := http.Get("http://" + srv.Addr() + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInstallationStatusReflectsDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, database.Save(dir, []types.LocalInstallation{
		{Name: "foo", Version: version.Integer(1), Files: []string{"foo-bin"}},
	}))

	config := types.Config{General: types.GeneralConfig{Name: "app"}}
	srv := startTestServer(t, config, dir)

	resp, err := http.Get("http://" + srv.Addr() + "/api/installation-status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status types.InstallationStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.PreexistingInstall)
	require.Len(t, status.Database, 1)
	assert.Equal(t, "foo", status.Database[0].Name)
}

func TestUninstallStreamsNDJSONAndRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo-bin"), []byte("f"), 0o640))
	require.NoError(t, database.Save(dir, []types.LocalInstallation{
		{Name: "foo", Version: version.Integer(1), Files: []string{"foo-bin"}},
	}))

	config := types.Config{General: types.GeneralConfig{Name: "app"}}
	srv := startTestServer(t, config, dir)

	resp, err := http.Post("http://"+srv.Addr()+"/api/uninstall", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var sawFinalLine bool
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		require.NoError(t, json.Unmarshal(line, &raw))
		sawFinalLine = true
	}
	assert.True(t, sawFinalLine)

	_, statErr := os.Stat(filepath.Join(dir, "foo-bin"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultPathReportsNullWhenUnavailable(t *testing.T) {
	config := types.Config{General: types.GeneralConfig{Name: ""}}
	srv := startTestServer(t, config, t.TempDir())

	resp, err := http.Get("http://" + srv.Addr() + "/api/default-path")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Path *string `json:"path"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body.Path)
}
