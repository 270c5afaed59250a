package pipeline

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// Schema builds the JSON Schema describing the tool's declared parameters.
// This is what the registry exposes on the wire, so the declared names and
// types stay observable through the full stage chain.
func (t Tool) Schema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(t.Params))
	required := make([]string, 0, len(t.Params))

	for _, p := range t.Params {
		properties[p.Name] = paramSchema(p.Type)

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func paramSchema(t ParamType) *jsonschema.Schema {
	switch t {
	case TypeString:
		return &jsonschema.Schema{Type: "string"}
	case TypeInt:
		return &jsonschema.Schema{Type: "integer"}
	case TypeFloat:
		return &jsonschema.Schema{Type: "number"}
	case TypeBool:
		return &jsonschema.Schema{Type: "boolean"}
	case TypeStringList:
		return &jsonschema.Schema{
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		}
	case TypeAny:
		return &jsonschema.Schema{Type: "object"}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
