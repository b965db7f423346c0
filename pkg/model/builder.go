package model

import (
	"fmt"
	"strconv"

	internalmodel "github.com/goliatone/go-formbuilder/internal/model"
	"github.com/goliatone/go-formbuilder/pkg/defaults"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

// Metadata keys set by the builder.
const (
	MetadataMultiline = "multiline"
	MetadataOutput    = "output"
)

// Builder converts field records into form models.
type Builder interface {
	Build(records []field.Record) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler    func(string) string
	formID     string
	decorators []Decorator
}

// WithLabeler overrides the label used for records whose heading is empty.
// The labeler receives the record kind.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithFormID sets FormModel.ID. Defaults to "form".
func WithFormID(id string) BuilderOption {
	return func(opts *builderOptions) {
		opts.formID = id
	}
}

// WithDecorators appends decorators run after mapping.
func WithDecorators(decorators ...Decorator) BuilderOption {
	return func(opts *builderOptions) {
		opts.decorators = append(opts.decorators, decorators...)
	}
}

type builder struct {
	opts builderOptions
}

// NewBuilder returns a Builder configured with options.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{
		labeler: internalmodel.DefaultLabeler,
		formID:  "form",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.labeler == nil {
		cfg.labeler = internalmodel.DefaultLabeler
	}
	return &builder{opts: cfg}
}

// Build is a shorthand for NewBuilder(options...).Build(records).
func Build(records []field.Record, options ...BuilderOption) (FormModel, error) {
	return NewBuilder(options...).Build(records)
}

func (b *builder) Build(records []field.Record) (FormModel, error) {
	form := FormModel{
		ID:       b.opts.formID,
		Fields:   make([]Field, 0, len(records)),
		Defaults: defaults.Derive(records),
	}

	for _, rec := range records {
		f, err := b.fieldFromRecord(rec)
		if err != nil {
			return FormModel{}, err
		}
		if form.Title == "" && f.Display() {
			form.Title = f.Label
			form.Description = f.Description
		}
		form.Fields = append(form.Fields, f)
	}

	for _, decorator := range b.opts.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return FormModel{}, fmt.Errorf("model builder: decorate: %w", err)
		}
	}

	if err := Validate(form); err != nil {
		return FormModel{}, err
	}
	return form, nil
}

func (b *builder) fieldFromRecord(rec field.Record) (Field, error) {
	constraints, err := rules.ForRecord(rec)
	if err != nil {
		return Field{}, fmt.Errorf("model builder: field %q: %w", rec.FieldID(), err)
	}

	f := Field{
		Name:        rec.FieldID(),
		Kind:        string(rec.Kind()),
		Type:        FieldTypeString,
		Required:    rules.Required(constraints),
		Default:     defaults.Zero(rec.Kind()),
		Validations: rules.ToValidationRules(constraints),
		Metadata: map[string]string{
			MetadataOutput: string(rec.Kind().Output()),
		},
	}

	field.Match(rec,
		func(t *field.Title) struct{} {
			f.Label = t.Title
			f.Description = t.Subtitle
			return struct{}{}
		},
		func(t *field.Text) struct{} {
			f.Label = b.label(t.Heading, rec.Kind())
			f.Placeholder = t.Placeholder
			f.Metadata[MetadataMultiline] = strconv.FormatBool(t.Long)
			return struct{}{}
		},
		func(m *field.Multi) struct{} {
			f.Type = FieldTypeArray
			f.Label = b.label(m.Heading, rec.Kind())
			f.Enum = make([]any, 0, len(m.Options))
			for _, option := range m.Options {
				f.Enum = append(f.Enum, option)
			}
			for _, idx := range m.SelectedIndices() {
				if idx < len(m.Options) {
					f.Preselected = append(f.Preselected, m.Options[idx])
				}
			}
			return struct{}{}
		},
	)
	return f, nil
}

func (b *builder) label(heading string, kind field.Kind) string {
	if heading != "" {
		return heading
	}
	return b.opts.labeler(string(kind))
}
