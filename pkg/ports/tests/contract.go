package tests

import (
	"testing"

	"github.com/aretw0/joist/pkg/ports"
)

// ResolverContractTest is a reusable test suite that verifies if an adapter complies with ports.Resolver.
// known lists names the resolver must resolve; unknown lists names it must refuse.
func ResolverContractTest(t *testing.T, resolver ports.Resolver, known []string, unknown []string) {
	t.Helper()

	t.Run("Resolve_Known", func(t *testing.T) {
		for _, name := range known {
			c, ok := resolver.Resolve(name)
			if !ok {
				t.Fatalf("expected component %q to resolve", name)
			}
			if c.Name != name {
				t.Errorf("component %q resolved with name %q", name, c.Name)
			}
		}
	})

	t.Run("Resolve_Unknown", func(t *testing.T) {
		for _, name := range unknown {
			if _, ok := resolver.Resolve(name); ok {
				t.Errorf("expected component %q to be unresolvable", name)
			}
		}
	})

	t.Run("Resolve_Stable", func(t *testing.T) {
		for _, name := range known {
			a, _ := resolver.Resolve(name)
			b, _ := resolver.Resolve(name)
			if a.Name != b.Name || a.Canvas != b.Canvas || a.Layout != b.Layout {
				t.Errorf("component %q resolved differently across calls", name)
			}
		}
	})
}
