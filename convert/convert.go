// Package convert moves templated documents between JSON, YAML and the
// in-memory shapes understood by the templater, keeping mapping key order.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/awantoch/contentkit/constants"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Map is the ordered mapping shape produced by Decode.
type Map = orderedmap.OrderedMap[string, any]

// NewMap returns an empty ordered mapping.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// Decode parses a JSON or YAML document. Mappings become *Map so their key
// order survives a round trip; sequences become []any.
func Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return fromNode(&doc)
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, v)
		}
		return m, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// Encode writes v as indented JSON without HTML escaping. *Map values keep
// their insertion order.
func Encode(v any) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact.Bytes(), "", constants.JSONIndent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case *Map:
		buf.WriteByte('{')
		first := true
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSON(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		// Encoder terminates every value with a newline.
		buf.Truncate(buf.Len() - 1)
		return nil
	}
}

// EncodeYAML writes v as YAML using two-space indentation.
func EncodeYAML(v any) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			val, err := toNode(pair.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}, val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			c, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// ToPlain deep-copies v, turning every *Map into a map[string]any. Use it
// before handing data to code that only understands built-in maps. A non-nil
// visit is called with every original value and its copy.
func ToPlain(v any, visit func(src, dst any)) any {
	var out any
	switch x := v.(type) {
	case *Map:
		if x == nil {
			return v
		}
		m := make(map[string]any, x.Len())
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			m[pair.Key] = ToPlain(pair.Value, visit)
		}
		out = m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, item := range x {
			m[k] = ToPlain(item, visit)
		}
		out = m
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = ToPlain(item, visit)
		}
		out = items
	default:
		out = v
	}
	if visit != nil {
		visit(v, out)
	}
	return out
}
