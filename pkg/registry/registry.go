package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/aretw0/joist/pkg/schema"
)

// Registry manages the components a document may reference.
// It implements ports.Resolver and is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]ports.Component
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]ports.Component),
	}
}

// Register adds a component to the registry.
// If a component with the same name exists, it is overwritten.
func (r *Registry) Register(c ports.Component) error {
	if c.Name == "" {
		return fmt.Errorf("component name is required")
	}
	if c.Canvas && c.Layout == "" {
		c.Layout = domain.LayoutVertical
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.Name] = c
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(cs ...ports.Component) *Registry {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Resolve looks up a component by name.
func (r *Registry) Resolve(name string) (ports.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered component names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Basic returns a registry with a small general purpose catalog: a vertical
// Container and a horizontal Row (both canvases), Text, Button and Image leaves.
func Basic() *Registry {
	return NewRegistry().MustRegister(
		ports.Component{Name: "Container", Canvas: true, Layout: domain.LayoutVertical},
		ports.Component{Name: "Row", Canvas: true, Layout: domain.LayoutHorizontal},
		ports.Component{Name: "Text", DefaultProps: domain.Props{"text": ""}, PropTypes: schema.Schema{"text": schema.String()}},
		ports.Component{Name: "Button", DefaultProps: domain.Props{"label": "Click"}, PropTypes: schema.Schema{
			"label":   schema.String(),
			"variant": schema.OneOf("primary", "secondary", "link"),
		}},
		ports.Component{Name: "Image", DefaultProps: domain.Props{"src": ""}, PropTypes: schema.Schema{
			"src": schema.String(),
			"alt": schema.String(),
		}},
	)
}

// AllowList returns a Resolver that only resolves names present in both the
// registry and names. An empty list allows everything.
func (r *Registry) AllowList(names []string) ports.Resolver {
	if len(names) == 0 {
		return r
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return ports.ResolverFunc(func(name string) (ports.Component, bool) {
		if !allowed[name] {
			return ports.Component{}, false
		}
		return r.Resolve(name)
	})
}
