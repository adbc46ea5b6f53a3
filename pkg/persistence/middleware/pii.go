package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// Mask replaces redacted prop values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks prop and custom values
// whose keys match one of the patterns before they reach the store.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, documentID string, doc domain.SerializedNodes) error {
	// Clone so the caller's document keeps the real values.
	cloned := doc.Clone()
	for id, n := range cloned {
		maskMap(n.Props, m.patterns)
		maskMap(n.Custom, m.patterns)
		cloned[id] = n
	}
	return m.next.Save(ctx, documentID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, documentID string) (domain.SerializedNodes, error) {
	return m.next.Load(ctx, documentID)
}

func (m *piiMiddleware) Delete(ctx context.Context, documentID string) error {
	return m.next.Delete(ctx, documentID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case domain.Props:
			maskMap(sub, patterns)
		}
	}
}
