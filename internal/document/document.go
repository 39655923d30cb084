// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document reads and writes catalog documents: one YAML mapping per
// spreadsheet row, with keys in source column order.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/openkpis/sheetsync/internal/normalize"
)

// Field is one key of a document.
type Field struct {
	Name  string
	Value normalize.Value
}

// Document is an ordered mapping from field name to normalized value.
// Absent values are never stored.
type Document struct {
	Fields []Field
}

// Set adds or replaces a field, keeping the position of an existing key.
func (d *Document) Set(name string, v normalize.Value) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			d.Fields[i].Value = v
			return
		}
	}
	d.Fields = append(d.Fields, Field{Name: name, Value: v})
}

// Get returns the value for name.
func (d Document) Get(name string) (normalize.Value, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return normalize.Value{}, false
}

// Len returns the number of fields.
func (d Document) Len() int { return len(d.Fields) }

// Names returns field names in order.
func (d Document) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether both documents hold the same fields in the same order.
func (d Document) Equal(o Document) bool {
	if len(d.Fields) != len(o.Fields) {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i].Name != o.Fields[i].Name || !d.Fields[i].Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	return true
}

// Map returns the document as a plain map, lists as []string.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		m[f.Name] = f.Value.Interface()
	}
	return m
}

// MarshalYAML builds a mapping node so key order survives encoding.
func (d Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range d.Fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
		var val yaml.Node
		if err := val.Encode(f.Value.Interface()); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", f.Name, err)
		}
		node.Content = append(node.Content, key, &val)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping, keeping key order. Sequences become lists
// of strings; everything else decodes to its natural scalar type. Null and
// empty values are dropped.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: document is not a mapping", node.Line)
	}

	d.Fields = d.Fields[:0]
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		v, ok, err := decodeValue(val)
		if err != nil {
			return fmt.Errorf("field %s: %w", key.Value, err)
		}
		if ok {
			d.Set(key.Value, v)
		}
	}
	return nil
}

func decodeValue(node *yaml.Node) (normalize.Value, bool, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var items []any
		if err := node.Decode(&items); err != nil {
			return normalize.Value{}, false, err
		}
		strs := make([]string, 0, len(items))
		for _, it := range items {
			if it == nil {
				continue
			}
			strs = append(strs, fmt.Sprint(it))
		}
		if len(strs) == 0 {
			return normalize.Value{}, false, nil
		}
		return normalize.List(strs...), true, nil
	case yaml.ScalarNode, yaml.AliasNode:
		var raw any
		if err := node.Decode(&raw); err != nil {
			return normalize.Value{}, false, err
		}
		if raw == nil {
			return normalize.Value{}, false, nil
		}
		if s, ok := raw.(string); ok && s == "" {
			return normalize.Value{}, false, nil
		}
		return normalize.Scalar(raw), true, nil
	default:
		// Nested mappings are not produced by the emitter; keep them as text.
		out, err := yaml.Marshal(node)
		if err != nil {
			return normalize.Value{}, false, err
		}
		return normalize.Scalar(strings.TrimSpace(string(out))), true, nil
	}
}

// Marshal encodes d as YAML.
func Marshal(d Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes YAML into a Document. Empty input yields an empty document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if len(bytes.TrimSpace(data)) == 0 {
		return d, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return d, err
	}
	if len(node.Content) == 0 {
		return d, nil
	}
	if err := d.UnmarshalYAML(&node); err != nil {
		return d, err
	}
	return d, nil
}

// WriteFile writes d to path, creating parent directories.
func WriteFile(path string, d Document) error {
	data, err := Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Unmarshal(data)
}
