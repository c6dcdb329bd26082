package tasks

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
	"github.com/flanksource/maintenancetool/pkg/utils"
)

// DownloadPackage depends on ResolvePackage. If the installed version
// already matches the resolved version it emits Break (no update
// needed); otherwise it streams the resolved file into memory and emits
// its bytes.
type DownloadPackage struct {
	PackageName string
	Resolve     tasktree.Task
	Client      *httpclient.Client
}

func (t *DownloadPackage) Name() string                  { return fmt.Sprintf("download(%s)", t.PackageName) }
func (t *DownloadPackage) Dependencies() []tasktree.Task { return []tasktree.Task{t.Resolve} }

func (t *DownloadPackage) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	resolved := inputs[0]

	if existing, ok := fw.Get(t.PackageName); ok && existing.Version.Compare(resolved.Version) == 0 {
		logger.V(2).Infof("%s already at version %s, skipping download", t.PackageName, resolved.Version)
		return tasktree.Break(), nil
	}

	logger.Infof("downloading %s from %s", t.PackageName, utils.ShortenURL(resolved.File.URL))

	var buf []byte
	err := t.Client.StreamFile(ctx, resolved.File.URL, func(chunk []byte, totalSizeHint int64) error {
		buf = append(buf, chunk...)
		if progress != nil {
			if totalSizeHint > 0 {
				progress(fmt.Sprintf("Downloading %s: %s / %s", resolved.File.Name, utils.FormatBytes(int64(len(buf))), utils.FormatBytes(totalSizeHint)), float64(len(buf))/float64(totalSizeHint))
			} else {
				progress(fmt.Sprintf("Downloading %s: %s", resolved.File.Name, utils.FormatBytes(int64(len(buf)))), 0)
			}
		}
		return nil
	})
	if err != nil {
		return tasktree.Output{}, err
	}

	if progress != nil {
		progress(fmt.Sprintf("Downloaded %s (%s)", resolved.File.Name, utils.FormatBytes(int64(len(buf)))), 1)
	}

	return tasktree.FileContentsOutput(resolved.Version, resolved.File, buf), nil
}
