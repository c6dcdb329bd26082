package bootconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDecodesEmbeddedCatalog(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, config.General.Name)
	assert.NotEmpty(t, config.Packages)

	core, ok := config.PackageByName("core")
	require.True(t, ok)
	assert.True(t, core.IsDefault())
	assert.Equal(t, "github_release", core.Source.HandlerName)
}

func TestDecodeRejectsMalformedTOML(t *testing.T) {
	_, err := Decode([]byte("not [ valid"))
	assert.Error(t, err)
}
