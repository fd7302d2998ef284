package declfile

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"tagmerge/internal/schema"
)

// --- Literal YAML methods ---

// UnmarshalYAML decodes any YAML value into its literal form.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}

	l.Value = v

	return nil
}

// MarshalYAML encodes the literal, keeping nested mapping order.
func (l Literal) MarshalYAML() (any, error) {
	return encodeValue(l.Value)
}

// --- Values YAML methods ---

// UnmarshalYAML decodes a mapping of attribute names to literal values.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of attribute values, got %s", node.Line, kindName(node.Kind))
	}

	decoded, err := decodeNode(node)
	if err != nil {
		return err
	}

	v.Attributes = decoded.(*schema.Attributes)

	return nil
}

// MarshalYAML encodes the values as an ordered mapping.
func (v Values) MarshalYAML() (any, error) {
	if v.Attributes == nil {
		return encodeValue(schema.NewAttributes())
	}

	return encodeValue(v.Attributes)
}

// IsZero reports whether no value is set, so omitempty drops it.
func (v Values) IsZero() bool {
	return v.Attributes.Len() == 0
}

// decodeNode converts a YAML node to a literal value: mappings become
// *schema.Attributes in document order, sequences []any and scalars bool,
// int64, float64 or string.
func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return decodeNode(node.Content[0])

	case yaml.AliasNode:
		return decodeNode(node.Alias)

	case yaml.ScalarNode:
		return decodeScalar(node)

	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))

		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil

	case yaml.MappingNode:
		attrs := make([]schema.Attribute, 0, len(node.Content)/2)
		seen := make(map[string]bool, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: attribute names must be scalars", key.Line)
			}

			if seen[key.Value] {
				return nil, fmt.Errorf("line %d: duplicate attribute %q", key.Line, key.Value)
			}

			seen[key.Value] = true

			v, err := decodeNode(value)
			if err != nil {
				return nil, err
			}

			attrs = append(attrs, schema.Attr(key.Value, v))
		}

		return schema.NewAttributes(attrs...), nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node %s", node.Line, kindName(node.Kind))
	}
}

func decodeScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}

		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, err
		}

		return i, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}

		return f, nil
	default:
		return node.Value, nil
	}
}

// encodeValue converts a literal or resolved value back to a YAML node.
func encodeValue(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *schema.Attributes:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

		for name, value := range x.All() {
			vn, err := encodeValue(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}

			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, vn)
		}

		return node, nil
	case schema.TagValue:
		return encodeValue(x.Attributes())
	case schema.TypeRef:
		return encodeValue(x.Name)
	case schema.EnumValue:
		return encodeValue(x.Name)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

		for i := range rv.Len() {
			item, err := encodeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}

			node.Content = append(node.Content, item)
		}

		return node, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}

	return node, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
