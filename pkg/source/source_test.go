package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/types"
)

type fakeHandler struct {
	releases []types.Release
	err      error
}

func (f *fakeHandler) GetCurrentReleases(ctx context.Context, config map[string]any) ([]types.Release, error) {
	return f.releases, f.err
}

func TestRegistryResolveUnknownHandler(t *testing.T) {
	r := &Registry{handlers: map[string]Handler{}}
	_, err := r.Resolve(context.Background(), "foo", types.PackageSource{HandlerName: "nope"})
	assert.Error(t, err)
}

func TestRegistryResolveDelegates(t *testing.T) {
	r := &Registry{handlers: map[string]Handler{}}
	r.Register("stub", &fakeHandler{releases: []types.Release{{}}})

	releases, err := r.Resolve(context.Background(), "foo", types.PackageSource{HandlerName: "stub"})
	require.NoError(t, err)
	assert.Len(t, releases, 1)
}

func TestDirectURLHandlerRequiresConfig(t *testing.T) {
	h := NewDirectURLHandler()
	_, err := h.GetCurrentReleases(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestDirectURLHandlerTemplatesURL(t *testing.T) {
	h := NewDirectURLHandler()
	releases, err := h.GetCurrentReleases(context.Background(), map[string]any{
		"url":     "https://example.com/app-{{.os}}-{{.arch}}.zip",
		"version": "1.2.3",
	})
	require.NoError(t, err)
	require.Len(t, releases, 1)
	require.Len(t, releases[0].Files, 1)
	assert.Equal(t, "1.2.3", releases[0].Version.String())
	plat := platform.Current()
	assert.Equal(t, "https://example.com/app-"+plat.OS+"-"+plat.Arch+".zip", releases[0].Files[0].URL)
}
