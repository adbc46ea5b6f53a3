package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodeElement_FromYAML(t *testing.T) {
	src := `
component: Container
props:
  padding: 8
children:
  - component: Text
    props:
      text: hello
  - component: Button
    index: 0
    children:
      - component: Container
        slot: header
`
	var raw any
	require.NoError(t, yaml.Unmarshal([]byte(src), &raw))

	el, err := DecodeElement(raw)
	require.NoError(t, err)

	assert.Equal(t, "Container", el.Component)
	assert.Equal(t, 8, el.Props["padding"])
	require.Len(t, el.Children, 2)
	assert.Equal(t, "hello", el.Children[0].Props["text"])
	require.NotNil(t, el.Children[1].Index)
	assert.Equal(t, 0, *el.Children[1].Index)
	assert.Equal(t, "header", el.Children[1].Children[0].Slot)
}

func TestDecodeElement_Errors(t *testing.T) {
	_, err := DecodeElement(map[string]any{"props": map[string]any{}})
	assert.ErrorContains(t, err, "missing component")

	_, err = DecodeElement(map[string]any{"component": "Text", "colour": "red"})
	assert.ErrorContains(t, err, "failed to decode element")
}
