package schema

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

// Messages used when kin-openapi reports a failure no field rule describes.
const (
	MessageNotString = "Value must be text"
	MessageNotList   = "Value must be a list of options"
	MessageDuplicate = "Options can only be picked once"
)

// Validator checks submissions against an exported schema.
type Validator struct {
	form   model.FormModel
	schema *openapi3.Schema
}

// NewValidator exports form once and reuses the schema for every call.
func NewValidator(form model.FormModel) *Validator {
	return &Validator{form: form, schema: Export(form)}
}

// Schema returns the exported schema.
func (v *Validator) Schema() *openapi3.Schema {
	return v.schema
}

// Validate checks values field by field and returns messages keyed by field
// name, or nil when everything passes. Values are normalised first, so
// missing entries take the form defaults. Empty values only fail the
// required rule.
func (v *Validator) Validate(values map[string]any) map[string][]string {
	normalised := render.NormalizeValues(v.form, values)

	var errs map[string][]string
	for _, f := range v.form.Fields {
		if f.Display() {
			continue
		}
		ref, ok := v.schema.Properties[f.Name]
		if !ok || ref.Value == nil {
			continue
		}
		messages := fieldMessages(f, ref.Value, toJSONValue(normalised[f.Name]))
		if len(messages) == 0 {
			continue
		}
		if errs == nil {
			errs = make(map[string][]string)
		}
		errs[f.Name] = messages
	}
	return errs
}

// Validate is a one-shot NewValidator(form).Validate(values).
func Validate(form model.FormModel, values map[string]any) map[string][]string {
	return NewValidator(form).Validate(values)
}

func fieldMessages(f model.Field, s *openapi3.Schema, value any) []string {
	if isEmpty(value) {
		if f.Required {
			return []string{messageFor(s, rules.KindRequired, rules.MessageRequired)}
		}
		return nil
	}

	err := s.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, schemaErr := range flatten(err) {
		msg := describe(s, schemaErr)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	return out
}

func describe(s *openapi3.Schema, err *openapi3.SchemaError) string {
	switch err.SchemaField {
	case "minLength":
		if s.MinLength == 1 {
			return messageFor(s, rules.KindRequired, rules.MessageRequired)
		}
		return messageFor(s, rules.KindMinLength, fmt.Sprintf(rules.MessageMinLength, s.MinLength))
	case "maxLength":
		limit := uint64(0)
		if s.MaxLength != nil {
			limit = *s.MaxLength
		}
		return messageFor(s, rules.KindMaxLength, fmt.Sprintf(rules.MessageMaxLength, limit))
	case "minItems":
		return messageFor(s, rules.KindRequired, rules.MessageRequired)
	case "enum":
		return render.MessageUnknownOption
	case "uniqueItems":
		return MessageDuplicate
	case "type":
		if s.Type != nil && s.Type.Is(openapi3.TypeArray) {
			return MessageNotList
		}
		return MessageNotString
	}
	return err.Reason
}

// flatten unpacks kin-openapi multi errors into their schema errors.
func flatten(err error) []*openapi3.SchemaError {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []*openapi3.SchemaError
		for _, inner := range multi {
			out = append(out, flatten(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []*openapi3.SchemaError{schemaErr}
	}
	return []*openapi3.SchemaError{{Reason: err.Error()}}
}

func messageFor(s *openapi3.Schema, kind, fallback string) string {
	messages, ok := s.Extensions[ExtensionMessages].(map[string]any)
	if !ok {
		return fallback
	}
	if msg, ok := messages[kind].(string); ok && msg != "" {
		return msg
	}
	return fallback
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// toJSONValue converts normalised values into the shapes VisitJSON accepts.
func toJSONValue(value any) any {
	switch v := value.(type) {
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	}
	return value
}
