package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload routes error paths onto form fields. Paths may be bare
// names ("S"), JSON pointers ("/body/S", "#/S/0") or dotted paths
// ("$.payload.S"). Paths that name no input field, display fields included,
// become form-level messages so nothing is lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	names := make(map[string]struct{}, len(form.Fields))
	for _, f := range form.Fields {
		if f.Display() {
			continue
		}
		names[f.Name] = struct{}{}
	}

	for rawPath, messages := range payload {
		clean := normalizeMessages(messages)
		if len(clean) == 0 {
			continue
		}
		name, ok := fieldForPath(rawPath, names)
		if !ok {
			mapping.Form = append(mapping.Form, clean...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], clean...))
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func fieldForPath(raw string, names map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	// Record ids contain dashes but never dots or slashes, so the whole
	// path is tried before it is split.
	trimmed := strings.TrimSpace(raw)
	if _, ok := names[trimmed]; ok {
		return trimmed, true
	}
	for _, segment := range pathSegments(trimmed) {
		if isWrapperSegment(segment) {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, ok := names[segment]; ok {
			return segment, true
		}
		return "", false
	}
	return "", false
}

func pathSegments(path string) []string {
	clean := strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func isWrapperSegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "body", "request", "payload", "data", "values":
		return true
	}
	return false
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return true
	}
	return false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
