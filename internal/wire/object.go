// Package wire reads and writes the untyped document tree that game records
// travel in. Objects keep their key order so that written records match the
// field order of the hanab.live format.
package wire

import (
	"bytes"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object with insertion-ordered keys.
type Object []Member

// Lookup returns the value of the last member named key.
func (o Object) Lookup(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Map returns the members as a map. Later duplicates win.
func (o Object) Map() map[string]any {
	m := make(map[string]any, len(o))
	for _, mem := range o {
		m[mem.Key] = mem.Value
	}
	return m
}

// MarshalJSON writes the members in order, escaping &, < and > in strings.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, mem := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(mem.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(mem.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the members as an ordered mapping node.
func (o Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, mem := range o {
		val := &yaml.Node{}
		if err := val.Encode(mem.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: mem.Key},
			val,
		)
	}
	return node, nil
}
