// Package source reads form documents (JSON, YAML or TOML) into field
// records. A document is either a bare list of fields or an object with a
// "fields" list. Rules may be an object or the legacy list of single-rule
// objects; both merge into one rule set.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	ErrUnknownFormat = goerr.New("unknown document format")
	ErrMalformed     = goerr.New("malformed form document")
)

// Document is the object form of a form document.
type Document struct {
	Fields []field.Spec `json:"fields" yaml:"fields" toml:"fields"`
}

// ParseFormat maps a format name or file extension (with or without the
// dot) to a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", goerr.Wrap(ErrUnknownFormat, "cannot parse format", goerr.V("format", raw))
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatJSON
	}
	return format
}

// Decode parses data in the given format into records. An unknown kind fails
// with field.ErrUnknownKind.
func Decode(data []byte, format Format) ([]field.Record, error) {
	var raw any
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		raw = table
	default:
		return nil, goerr.Wrap(ErrUnknownFormat, "cannot decode document", goerr.V("format", format))
	}
	if err != nil {
		return nil, goerr.Wrap(ErrMalformed, err.Error(), goerr.V("format", format))
	}

	items, err := fieldList(normalize(raw))
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, goerr.Wrap(ErrMalformed, err.Error(), goerr.V("format", format))
	}
	var specs []field.Spec
	if err := json.Unmarshal(payload, &specs); err != nil {
		return nil, goerr.Wrap(ErrMalformed, err.Error(), goerr.V("format", format))
	}
	return field.Decode(specs)
}

// Encode writes records as a document in format. JSON output is indented.
func Encode(records []field.Record, format Format) ([]byte, error) {
	doc := Document{Fields: field.Encode(records)}
	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	}
	return nil, goerr.Wrap(ErrUnknownFormat, "cannot encode document", goerr.V("format", format))
}

func fieldList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return prepare(v)
	case map[string]any:
		list, ok := v["fields"].([]any)
		if !ok {
			if _, present := v["fields"]; present {
				return nil, goerr.Wrap(ErrMalformed, "fields must be a list")
			}
			return []any{}, nil
		}
		return prepare(list)
	case nil:
		return []any{}, nil
	}
	return nil, goerr.Wrap(ErrMalformed, fmt.Sprintf("unexpected document root %T", raw))
}

func prepare(items []any) ([]any, error) {
	for idx, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, goerr.Wrap(ErrMalformed, "field must be an object", goerr.V("index", idx))
		}
		if rules, ok := entry["rules"].([]any); ok {
			merged := make(map[string]any)
			for _, rule := range rules {
				if m, ok := rule.(map[string]any); ok {
					for name, value := range m {
						merged[name] = value
					}
				}
			}
			entry["rules"] = merged
		}
	}
	return items, nil
}

// normalize turns YAML's non-string map keys into strings so the tree can be
// marshalled as JSON.
func normalize(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = normalize(value)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = normalize(value)
		}
		return out
	case []any:
		for idx, value := range typed {
			typed[idx] = normalize(value)
		}
		return typed
	}
	return v
}
