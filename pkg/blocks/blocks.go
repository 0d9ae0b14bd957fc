// Package blocks models the declarative block-graph documents produced by
// the visual builder: typed nodes carrying field data, plus edges that
// express relationships between them.
package blocks

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xeipuuv/gojsonschema"
)

// Document is a block graph: typed nodes and informational edges. Edges are
// carried through but do not currently alter parsing.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges,omitempty"`
}

type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data Data   `json:"data"`
}

type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Data is a node's untyped payload with typed accessors.
type Data map[string]any

// String returns the first non-empty string value among keys.
func (d Data) String(keys ...string) string {
	for _, key := range keys {
		if v, ok := d[key].(string); ok && v != "" {
			return v
		}
	}

	return ""
}

// Float returns the first numeric value among keys. JSON numbers decode as
// float64; numeric strings are accepted too.
func (d Data) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := d[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}

	return 0, false
}

// Int returns the first integral value among keys.
func (d Data) Int(keys ...string) (int, bool) {
	f, ok := d.Float(keys...)
	if !ok {
		return 0, false
	}

	return int(f), true
}

// Strings returns the first string-list value among keys.
func (d Data) Strings(keys ...string) []string {
	for _, key := range keys {
		raw, ok := d[key].([]any)
		if !ok {
			continue
		}

		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

const documentSchema = `{
	"type": "object",
	"required": ["nodes"],
	"properties": {
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type"],
				"properties": {
					"id":   {"type": "string"},
					"type": {"type": "string", "minLength": 1},
					"data": {"type": "object"}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"from": {"type": "string"},
					"to":   {"type": "string"}
				}
			}
		}
	}
}`

// Parse validates raw JSON against the document schema and decodes it.
func Parse(raw []byte) (*Document, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("blocks document is not valid JSON: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("blocks document failed schema validation: %s", result.Errors()[0])
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding blocks document: %w", err)
	}

	return &doc, nil
}
