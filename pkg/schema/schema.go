// Package schema exports a form model as an OpenAPI 3 object schema and
// validates submitted values against it.
package schema

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

// Extension keys written on every property schema.
const (
	ExtensionKind     = "x-formbuilder-kind"
	ExtensionMessages = "x-formbuilder-messages"
)

// OpenAPIVersion is the version stamped on exported documents.
const OpenAPIVersion = "3.0.3"

// Export converts form into an object schema with one property per input
// field. Display-only fields are omitted. Required strings carry minLength 1
// and required arrays carry minItems 1, since an empty value fails the
// required rule.
func Export(form model.FormModel) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = form.Title
	root.Description = form.Description

	for _, f := range form.Fields {
		if f.Display() {
			continue
		}
		root.WithProperty(f.Name, propertySchema(f))
		if f.Required {
			root.Required = append(root.Required, f.Name)
		}
	}
	return root
}

// Document wraps the exported schema in an OpenAPI document under
// components.schemas keyed by the form id.
func Document(form model.FormModel, version string) *openapi3.T {
	if version == "" {
		version = "1.0.0"
	}
	title := form.Title
	if title == "" {
		title = form.ID
	}
	return &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       title,
			Description: form.Description,
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				form.ID: openapi3.NewSchemaRef("", Export(form)),
			},
		},
	}
}

func propertySchema(f model.Field) *openapi3.Schema {
	var s *openapi3.Schema
	if f.Type == model.FieldTypeArray {
		items := openapi3.NewStringSchema()
		if len(f.Enum) > 0 {
			items.WithEnum(f.Enum...)
		}
		s = openapi3.NewArraySchema().WithItems(items)
		s.UniqueItems = true
		if len(f.Preselected) > 0 {
			def := make([]any, 0, len(f.Preselected))
			for _, v := range f.Preselected {
				def = append(def, v)
			}
			s.Default = def
		}
		if f.Required {
			s.MinItems = 1
		}
	} else {
		s = openapi3.NewStringSchema()
		if f.Required {
			s.MinLength = 1
		}
	}
	s.Title = f.Label
	s.Description = f.Description

	messages := make(map[string]any)
	for _, c := range rules.FromValidationRules(f.Validations) {
		messages[c.Kind] = c.Message
		n, ok := c.Value.(int)
		if !ok || f.Type == model.FieldTypeArray {
			continue
		}
		switch c.Kind {
		case rules.KindMinLength:
			if uint64(n) > s.MinLength {
				s.MinLength = uint64(n)
			}
		case rules.KindMaxLength:
			s.WithMaxLength(int64(n))
		}
	}

	s.Extensions = map[string]any{ExtensionKind: f.Kind}
	if len(messages) > 0 {
		s.Extensions[ExtensionMessages] = messages
	}
	return s
}
