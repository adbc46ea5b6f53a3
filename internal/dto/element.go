package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Element is the declarative description of a subtree, as written in YAML
// templates, HTTP bodies and MCP tool arguments.
// It uses "mapstructure" tags so loosely typed maps decode into it.
type Element struct {
	// Component is the resolvable component name.
	Component string         `json:"component" yaml:"component" mapstructure:"component"`
	Props     map[string]any `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
	Children  []Element      `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`

	// Canvas forces the node to be a drop zone even if the component is not
	// registered as one.
	Canvas bool `json:"canvas,omitempty" yaml:"canvas,omitempty" mapstructure:"canvas"`
	// ID pins the node id instead of generating one.
	ID string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	// Slot links a canvas into a non-canvas parent under this name.
	Slot   string `json:"slot,omitempty" yaml:"slot,omitempty" mapstructure:"slot"`
	Layout string `json:"layout,omitempty" yaml:"layout,omitempty" mapstructure:"layout"`
	// Index is the insertion position in the parent; negative or absent appends.
	Index *int `json:"index,omitempty" yaml:"index,omitempty" mapstructure:"index"`
}

// DecodeElement converts a loosely typed value (YAML or JSON decoded map) into an Element.
func DecodeElement(v any) (Element, error) {
	var el Element
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &el,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Element{}, err
	}
	if err := dec.Decode(normalize(v)); err != nil {
		return Element{}, fmt.Errorf("failed to decode element: %w", err)
	}
	if el.Component == "" {
		return Element{}, fmt.Errorf("element missing component")
	}
	return el, nil
}

// normalize turns map[any]any (older YAML decoders) into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[fmt.Sprint(k)] = normalize(vv)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = normalize(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = normalize(vv)
		}
		return s
	default:
		return v
	}
}
