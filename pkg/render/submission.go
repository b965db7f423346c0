package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

// MessageUnknownOption is reported when a multi field receives a value that
// is not one of its options.
const MessageUnknownOption = "Select one of the listed options"

// ValuesFromForm reads an HTML form post. String fields take the first
// posted value; array fields take every value posted under the name.
// Display-only fields are skipped.
func ValuesFromForm(form model.FormModel, posted url.Values) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, f := range form.Fields {
		if f.Display() {
			continue
		}
		if f.Type == model.FieldTypeArray {
			out[f.Name] = append([]string{}, posted[f.Name]...)
			continue
		}
		out[f.Name] = posted.Get(f.Name)
	}
	return out
}

// NormalizeValues coerces a decoded JSON payload onto the form: arrays become
// []string, scalars become strings and missing fields take their default.
// Keys that name no field are dropped.
func NormalizeValues(form model.FormModel, raw map[string]any) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, f := range form.Fields {
		if f.Display() {
			continue
		}
		v, ok := raw[f.Name]
		if !ok || v == nil {
			out[f.Name] = form.Defaults[f.Name]
			continue
		}
		if f.Type == model.FieldTypeArray {
			out[f.Name] = toStrings(v)
			continue
		}
		switch typed := v.(type) {
		case string:
			out[f.Name] = typed
		default:
			out[f.Name] = fmt.Sprint(typed)
		}
	}
	return out
}

// Validate checks values against each field's validation rules and, for
// array fields, against the declared options. The result maps field names to
// messages and is nil when every value passes.
func Validate(form model.FormModel, values map[string]any) map[string][]string {
	var errs map[string][]string
	add := func(name, message string) {
		if errs == nil {
			errs = make(map[string][]string)
		}
		errs[name] = append(errs[name], message)
	}

	for _, f := range form.Fields {
		if f.Display() {
			continue
		}
		value := values[f.Name]
		if msg := rules.Check(rules.FromValidationRules(f.Validations), value); msg != "" {
			add(f.Name, msg)
			continue
		}
		if f.Type == model.FieldTypeArray {
			allowed := make(map[string]struct{}, len(f.Enum))
			for _, option := range f.Enum {
				allowed[fmt.Sprint(option)] = struct{}{}
			}
			for _, picked := range toStrings(value) {
				if _, ok := allowed[picked]; !ok {
					add(f.Name, MessageUnknownOption)
					break
				}
			}
		}
	}
	return errs
}

func toStrings(v any) []string {
	switch typed := v.(type) {
	case []string:
		return append([]string{}, typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if strings.TrimSpace(typed) == "" {
			return []string{}
		}
		return []string{typed}
	case nil:
		return []string{}
	}
	return []string{fmt.Sprint(v)}
}
