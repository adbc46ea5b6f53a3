// Package schema describes the props a component accepts.
//
// A Schema maps prop names to types. Props not listed are accepted as is and
// listed props are optional unless wrapped in Required, because component
// defaults usually fill them in:
//
//	button := schema.Schema{
//	    "label":   schema.Required(schema.String()),
//	    "variant": schema.OneOf("primary", "ghost"),
//	    "size":    schema.Number(),
//	}
//
//	err := schema.Validate(button, domain.Props{"label": "Buy", "size": 2})
//
// Schemas can also be written as type strings, which is how they appear in
// JSON and YAML:
//
//	{"label": "string!", "variant": "oneof(primary|ghost)", "tags": "[string]"}
package schema
