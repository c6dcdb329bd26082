package source

import (
	"context"
	"fmt"
	"path"

	"github.com/flanksource/gomplate/v3"

	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/types"
	"github.com/flanksource/maintenancetool/pkg/version"
)

// DirectURLHandler is a supplemental release source for packages that
// don't expose a releases API: a single, fixed release whose download URL
// is a template over {{.os}}, {{.arch}}, and {{.version}}. Config fields:
// "url" (required template), "version" (required), "name" (optional,
// defaults to the URL's basename).
type DirectURLHandler struct{}

// NewDirectURLHandler returns a DirectURLHandler.
func NewDirectURLHandler() *DirectURLHandler {
	return &DirectURLHandler{}
}

func (h *DirectURLHandler) GetCurrentReleases(ctx context.Context, config map[string]any) ([]types.Release, error) {
	urlTemplate, _ := config["url"].(string)
	versionStr, _ := config["version"].(string)
	if urlTemplate == "" || versionStr == "" {
		return nil, fmt.Errorf("direct_url source config requires \"url\" and \"version\"")
	}

	v, err := version.Parse(versionStr)
	if err != nil {
		return nil, fmt.Errorf("direct_url source config: %w", err)
	}

	plat := platform.Current()
	data := map[string]any{
		"os":      plat.OS,
		"arch":    plat.Arch,
		"version": versionStr,
	}

	url, err := gomplate.RunTemplate(data, gomplate.Template{Template: urlTemplate})
	if err != nil {
		return nil, fmt.Errorf("templating direct_url download url: %w", err)
	}

	name, _ := config["name"].(string)
	if name == "" {
		name = path.Base(url)
	}

	return []types.Release{
		{
			Version: v,
			Files:   []types.File{{Name: name, URL: url}},
		},
	}, nil
}
