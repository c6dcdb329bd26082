package tasks

import (
	"context"

	"github.com/flanksource/maintenancetool/pkg/tasktree"
)

// SaveDatabase writes the current in-memory database to disk.
type SaveDatabase struct{}

func (t *SaveDatabase) Name() string                  { return "save-database" }
func (t *SaveDatabase) Dependencies() []tasktree.Task { return nil }

func (t *SaveDatabase) Execute(ctx context.Context, inputs []tasktree.Output, fw tasktree.Framework, progress tasktree.ProgressFunc) (tasktree.Output, error) {
	if err := fw.SaveDatabase(); err != nil {
		return tasktree.Output{}, err
	}
	if progress != nil {
		progress("Saved installation database", 1)
	}
	return tasktree.None(), nil
}
