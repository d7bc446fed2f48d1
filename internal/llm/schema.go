package llm

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the structured output expected
// back from a call. Adapters translate it to their native form.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// Order preserves property order for providers that honor it.
	Order    []string
	Required []string
	Items    *Schema
	Enum     []string
}

// Object builds an object schema; properties are given as alternating
// name/schema pairs in display order and all of them are required.
func Object(props ...any) *Schema {
	s := &Schema{Type: TypeObject, Properties: map[string]*Schema{}}
	for i := 0; i+1 < len(props); i += 2 {
		name, _ := props[i].(string)
		child, _ := props[i+1].(*Schema)
		if name == "" || child == nil {
			continue
		}
		s.Properties[name] = child
		s.Order = append(s.Order, name)
		s.Required = append(s.Required, name)
	}
	return s
}

// String builds a string schema.
func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

// Integer builds an integer schema.
func Integer(desc string) *Schema { return &Schema{Type: TypeInteger, Description: desc} }

// Enum builds a string schema restricted to values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

// ArrayOf builds an array schema.
func ArrayOf(items *Schema, desc string) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: items}
}

// Optional drops name from the required list of an object schema.
func (s *Schema) Optional(names ...string) *Schema {
	if s == nil {
		return nil
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := s.Required[:0:0]
	for _, r := range s.Required {
		if _, ok := drop[r]; !ok {
			kept = append(kept, r)
		}
	}
	s.Required = kept
	return s
}
