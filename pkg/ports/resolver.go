package ports

import (
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/schema"
)

// Component is what a Resolver knows about a renderable component.
type Component struct {
	Name        string
	DisplayName string
	// Canvas marks components that are drop zones by default.
	Canvas bool
	Layout domain.Layout
	// DefaultProps are merged under the props of new nodes.
	DefaultProps domain.Props
	Rules        domain.Rules
	// PropTypes, when set, is checked whenever props are built or replaced.
	PropTypes schema.Schema
}

// Resolver maps persisted type names to components.
type Resolver interface {
	// Resolve returns the component registered under name.
	Resolve(name string) (Component, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Component, bool)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (Component, bool) {
	return f(name)
}
