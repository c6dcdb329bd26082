// Package tasktree implements the dependency-tree task engine: tasks
// declare their children, the tree runs children before parents in
// declaration order, and scales each node's progress callback into its
// slice of the whole tree's [0, 1] range.
package tasktree

import (
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/maintenancetool/pkg/types"
	"github.com/flanksource/maintenancetool/pkg/version"
)

// OutputKind tags the variant held by an Output.
type OutputKind int

const (
	// OutputNone carries no payload.
	OutputNone OutputKind = iota
	// OutputFile carries a resolved version and file reference.
	OutputFile
	// OutputFileContents carries a resolved version, file reference, and
	// downloaded bytes.
	OutputFileContents
	// OutputBreak signals "no further action needed" to the parent that
	// contractually understands it (see pkg/tasks InstallPackage).
	OutputBreak
)

// Output is the tagged-variant result of executing a Task.
type Output struct {
	Kind     OutputKind
	Version  version.Version
	File     types.File
	Contents []byte
}

// None is the zero-payload Output.
func None() Output { return Output{Kind: OutputNone} }

// Break signals the "no update needed" / "nothing to do" variant.
func Break() Output { return Output{Kind: OutputBreak} }

// FileOutput builds an OutputFile variant.
func FileOutput(v version.Version, f types.File) Output {
	return Output{Kind: OutputFile, Version: v, File: f}
}

// FileContentsOutput builds an OutputFileContents variant.
func FileContentsOutput(v version.Version, f types.File, contents []byte) Output {
	return Output{Kind: OutputFileContents, Version: v, File: f, Contents: contents}
}

// ProgressFunc reports fractional progress in [0, 1] together with a
// human-readable status message.
type ProgressFunc func(message string, fraction float64)

// Task is one node's unit of work. Dependencies returns this task's
// children in declaration order; Execute receives each child's Output (in
// the same order) as inputs once all children have run.
type Task interface {
	Name() string
	Dependencies() []Task
	Execute(ctx context.Context, inputs []Output, fw Framework, progress ProgressFunc) (Output, error)
}

// Framework is the subset of the installer framework's locked state that
// tasks need: the chosen install path and direct, already-synchronized
// access to the installation database. It is satisfied by
// pkg/framework.State, which is only ever handed out while the
// framework's write lock is held, so none of these methods lock
// internally. Defined here (rather than imported from pkg/framework) so
// pkg/tasktree has no import-cycle on pkg/framework.
type Framework interface {
	InstallPath() string
	Database() []types.LocalInstallation
	Get(name string) (types.LocalInstallation, bool)
	Put(entry types.LocalInstallation)
	Remove(name string)
	SaveDatabase() error
}

// Node is one position in the dependency tree: a Task plus its already-
// built child nodes (mirroring Task.Dependencies(), computed once at
// build time).
type Node struct {
	Task     Task
	Children []*Node
}

// Build walks t.Dependencies() recursively to construct the tree rooted
// at t.
func Build(t Task) *Node {
	deps := t.Dependencies()
	children := make([]*Node, 0, len(deps))
	for _, d := range deps {
		children = append(children, Build(d))
	}
	return &Node{Task: t, Children: children}
}

// Execute runs the tree rooted at n: children run sequentially in
// declaration order, then the node's own task runs with their outputs as
// inputs. Progress callbacks from each child are rescaled into that
// child's 1/(N+1) slice of [0, 1]; the node's own progress occupies the
// final slice. parentProgress receives the rescaled overall fraction for
// this subtree.
func (n *Node) Execute(ctx context.Context, fw Framework, parentProgress ProgressFunc) (Output, error) {
	numChildren := len(n.Children)
	slices := numChildren + 1

	inputs := make([]Output, 0, numChildren)
	for i, child := range n.Children {
		idx := i
		childProgress := func(message string, fraction float64) {
			if parentProgress == nil {
				return
			}
			overall := fraction/float64(slices) + float64(idx)/float64(slices)
			parentProgress(message, overall)
		}

		out, err := child.Execute(ctx, fw, childProgress)
		if err != nil {
			return Output{}, fmt.Errorf("%s: %w", child.Task.Name(), err)
		}
		inputs = append(inputs, out)
	}

	ownProgress := func(message string, fraction float64) {
		if parentProgress == nil {
			return
		}
		overall := fraction/float64(slices) + float64(numChildren)/float64(slices)
		parentProgress(message, overall)
	}

	return n.Task.Execute(ctx, inputs, fw, ownProgress)
}

// Render produces an ASCII tree (matching the teacher's ├──/└──/│ style
// used elsewhere for hierarchical debug output) for logging.
func Render(n *Node) string {
	var b strings.Builder
	renderNode(&b, n, "", true)
	return b.String()
}

func renderNode(b *strings.Builder, n *Node, prefix string, last bool) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}
	if prefix == "" {
		b.WriteString(n.Task.Name() + "\n")
	} else {
		b.WriteString(prefix + connector + n.Task.Name() + "\n")
	}
	for i, child := range n.Children {
		renderNode(b, child, childPrefix, i == len(n.Children)-1)
	}
}
