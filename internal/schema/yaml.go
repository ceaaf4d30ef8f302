package schema

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a schema document written as YAML. The YAML node tree is
// converted to JSON text first so that property order survives — a plain
// map round trip would scramble it.
func DecodeYAML(data []byte) (*Property, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("parse schema yaml: empty document")
		}
		root = root.Content[0]
	}
	var buf bytes.Buffer
	if err := yamlToJSON(&buf, root); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	return Decode(buf.Bytes())
}

func yamlToJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := yamlToJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := yamlToJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return yamlScalarToJSON(buf, node)
	case yaml.AliasNode:
		return yamlToJSON(buf, node.Alias)
	default:
		return fmt.Errorf("unsupported yaml node kind %d", node.Kind)
	}
}

func yamlScalarToJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", node.Value, err)
		}
		buf.WriteString(strconv.FormatBool(b))
		return nil
	case "!!int", "!!float":
		buf.WriteString(node.Value)
		return nil
	default:
		data, err := json.Marshal(node.Value)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
}
