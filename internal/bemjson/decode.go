package bemjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeJSON parses a BEMJSON document.
func DecodeJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode BEMJSON: %w", err)
	}
	return FromAny(raw), nil
}

// DecodeYAML parses a BEMJSON document written as YAML.
func DecodeYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode BEMJSON YAML: %w", err)
	}
	return FromAny(raw), nil
}

// Decode picks the decoder from the file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func Decode(filename string, data []byte) (Value, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// Encode writes v as indented JSON without HTML escaping.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToAny(v)); err != nil {
		return nil, fmt.Errorf("failed to encode BEMJSON: %w", err)
	}
	return buf.Bytes(), nil
}
