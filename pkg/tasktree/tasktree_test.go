package tasktree

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/maintenancetool/pkg/types"
)

func TestTaskTree(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Task Tree Suite")
}

type fakeFramework struct{ path string }

func (f fakeFramework) InstallPath() string                             { return f.path }
func (f fakeFramework) Database() []types.LocalInstallation             { return nil }
func (f fakeFramework) Get(name string) (types.LocalInstallation, bool) { return types.LocalInstallation{}, false }
func (f fakeFramework) Put(entry types.LocalInstallation)               {}
func (f fakeFramework) Remove(name string)                              {}
func (f fakeFramework) SaveDatabase() error                             { return nil }

type recordingTask struct {
	name     string
	deps     []Task
	executed *[]string
	out      Output
}

func (t *recordingTask) Name() string         { return t.name }
func (t *recordingTask) Dependencies() []Task { return t.deps }
func (t *recordingTask) Execute(ctx context.Context, inputs []Output, fw Framework, progress ProgressFunc) (Output, error) {
	*t.executed = append(*t.executed, t.name)
	if progress != nil {
		progress("working", 0.5)
		progress("done", 1.0)
	}
	return t.out, nil
}

func buildSampleTree(order *[]string) *Node {
	child1 := &recordingTask{name: "child1", executed: order}
	child2 := &recordingTask{name: "child2", executed: order}
	root := &recordingTask{name: "root", deps: []Task{child1, child2}, executed: order}
	return Build(root)
}

var _ = Describe("Node.Execute", func() {
	var order []string

	BeforeEach(func() {
		order = nil
	})

	It("runs children before the parent, in declaration order", func() {
		node := buildSampleTree(&order)
		_, err := node.Execute(context.Background(), fakeFramework{}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"child1", "child2", "root"}))
	})

	Context("progress reporting", func() {
		It("stays within [0, 1] and never decreases", func() {
			node := buildSampleTree(&order)

			var seen []float64
			progress := func(message string, fraction float64) {
				seen = append(seen, fraction)
			}

			_, err := node.Execute(context.Background(), fakeFramework{}, progress)
			Expect(err).NotTo(HaveOccurred())

			for i, f := range seen {
				Expect(f).To(BeNumerically(">=", 0.0))
				Expect(f).To(BeNumerically("<=", 1.0))
				if i > 0 {
					Expect(f).To(BeNumerically(">=", seen[i-1]))
				}
			}
		})
	})
})

var _ = Describe("Render", func() {
	It("produces an ASCII tree with the last child on a └── branch", func() {
		var order []string
		node := buildSampleTree(&order)

		rendered := Render(node)
		Expect(rendered).To(ContainSubstring("root"))
		Expect(rendered).To(ContainSubstring("├── child1"))
		Expect(rendered).To(ContainSubstring("└── child2"))
	})
})
