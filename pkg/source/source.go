// Package source implements the Release Source registry: a mapping from
// handler name to a handler that turns a package's opaque config into a
// list of releases. The canonical handler queries GitHub releases; other
// handlers can be registered for packages with a different distribution
// model.
package source

import (
	"context"
	"sync"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// Handler resolves the current set of releases for a package from its
// opaque source config.
type Handler interface {
	GetCurrentReleases(ctx context.Context, config map[string]any) ([]types.Release, error)
}

// Registry is a name -> Handler lookup table, safe for concurrent reads
// after construction. The zero value is usable; register handlers with
// Register before first use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns a Registry pre-populated with the built-in handlers
// (github_release, direct_url).
func NewRegistry() *Registry {
	r := &Registry{handlers: map[string]Handler{}}
	r.Register("github_release", NewGitHubHandler())
	r.Register("direct_url", NewDirectURLHandler())
	return r
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = map[string]Handler{}
	}
	r.handlers[name] = h
}

// Resolve looks up handlerName and asks it for releases. An unregistered
// handler name is a hard SourceError, per spec.md §4.2.
func (r *Registry) Resolve(ctx context.Context, packageName string, src types.PackageSource) ([]types.Release, error) {
	r.mu.RLock()
	h, ok := r.handlers[src.HandlerName]
	r.mu.RUnlock()

	if !ok {
		return nil, &errs.SourceError{
			Handler: src.HandlerName,
			Package: packageName,
			Err:     unknownHandler(src.HandlerName),
		}
	}

	releases, err := h.GetCurrentReleases(ctx, src.Config)
	if err != nil {
		return nil, &errs.SourceError{Handler: src.HandlerName, Package: packageName, Err: err}
	}
	return releases, nil
}

type unknownHandler string

func (h unknownHandler) Error() string { return "unknown release source handler: " + string(h) }
