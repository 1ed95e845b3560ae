package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is a text encoding of the document tree.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps "json", "yaml" or "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: json, yaml)", s)
	}
}

// FormatFromPath infers the Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// Unmarshal parses text into an untyped tree of map[string]any, []any, string,
// bool, nil and numbers. JSON numbers are kept as json.Number so integers never
// pass through float64.
//
// Postcondition: returns the tree of exactly one document, or a non-nil error.
func Unmarshal(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var tree any
		if err := dec.Decode(&tree); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		var extra any
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, errors.New("parsing JSON: trailing data after document")
		}
		return tree, nil
	case FormatYAML:
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Marshal renders a tree as text. indent only affects JSON; YAML is always block style.
// JSON strings escape &, < and > as \u0026, \u003c and \u003e, the same
// output hanab.live's server produces.
func Marshal(tree any, format Format, indent bool) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("writing JSON: %w", err)
		}
		if !indent {
			return data, nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, fmt.Errorf("indenting JSON: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("writing YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("writing YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
