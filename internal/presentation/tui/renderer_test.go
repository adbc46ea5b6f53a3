package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestOutlineMarkdown(t *testing.T) {
	outline := &domain.OutlineNode{
		ID: domain.RootNodeID, Type: "Container", Canvas: true,
		Children: []*domain.OutlineNode{
			{ID: "node-title", Type: "Text", Hidden: true},
			{ID: "node-card", Type: "Card", DisplayName: "Pricing", Children: []*domain.OutlineNode{
				{ID: "card-header", Type: "Container", Canvas: true, Slot: "header"},
			}},
		},
	}

	want := "# home\n\n" +
		"- **Container** `rootNode` (canvas)\n" +
		"  - **Text** `node-title` (hidden)\n" +
		"  - **Pricing** `node-card`\n" +
		"    - _header_ → **Container** `card-header` (canvas)\n"
	assert.Equal(t, want, OutlineMarkdown("home", outline))
	assert.Equal(t, "", OutlineMarkdown("", nil))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
}
