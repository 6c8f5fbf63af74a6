package sidekick

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SchemaFor generates a JSON Schema object from a struct type T.
//
// Field names come from json tags. Struct tags refine the schema:
//
//	type AllergyArgs struct {
//	    DrugName  string   `json:"drug_name" desc:"Drug to check" required:"true"`
//	    Allergies []string `json:"allergies" desc:"Documented allergies" required:"true"`
//	    Severity  string   `json:"severity" enum:"minor,moderate,major"`
//	}
//
// Supported tags: desc (description), required ("true" adds the field to the
// schema's required list), enum (comma-separated allowed string values).
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("schema: cannot reflect on interface type")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t.Kind())
	}

	node, err := structSchema(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// MustSchemaFor is like SchemaFor but panics on error.
// Useful for capability registration at process start.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

// schemaNode is the serialized form of a JSON Schema fragment.
type schemaNode struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Items       *schemaNode            `json:"items,omitempty"`
	Properties  map[string]*schemaNode `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

func structSchema(t reflect.Type) (*schemaNode, error) {
	node := &schemaNode{
		Type:       "object",
		Properties: make(map[string]*schemaNode),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop, err := fieldSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: field %s: %w", field.Name, err)
		}

		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			prop.Enum = strings.Split(enum, ",")
		}
		if field.Tag.Get("required") == "true" {
			node.Required = append(node.Required, name)
		}

		node.Properties[name] = prop
	}

	return node, nil
}

func fieldSchema(t reflect.Type) (*schemaNode, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &schemaNode{Type: "string"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &schemaNode{Type: "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return &schemaNode{Type: "number"}, nil

	case reflect.Bool:
		return &schemaNode{Type: "boolean"}, nil

	case reflect.Slice, reflect.Array:
		items, err := fieldSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &schemaNode{Type: "array", Items: items}, nil

	case reflect.Struct:
		return structSchema(t)

	case reflect.Map:
		return &schemaNode{Type: "object"}, nil

	default:
		return nil, fmt.Errorf("unsupported kind %s", t.Kind())
	}
}
