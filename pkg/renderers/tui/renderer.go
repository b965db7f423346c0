// Package tui collects a form submission interactively in a terminal. Each
// input field is prompted in form order and re-prompted until its rules
// pass; the collected values are serialized keyed by field name.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

// Submission is the result of a terminal session.
type Submission struct {
	Values map[string]any      `json:"values"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "✗ "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs Fill and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	submission, err := r.Fill(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(submission.Values)
}

// Fill prompts every input field and returns the values keyed by field name
// together with any errors that remain after a final validation pass. Errors
// in opts are shown before the matching prompt.
func (r *Renderer) Fill(ctx context.Context, form model.FormModel, opts render.RenderOptions) (Submission, error) {
	if ctx == nil {
		return Submission{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	if r.driver == nil {
		return Submission{}, errors.New("tui: prompt driver is nil")
	}

	state := NewState(opts.Values, opts.Errors)
	for _, f := range form.Fields {
		if err := r.promptField(ctx, form, f, state); err != nil {
			return Submission{}, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return Submission{}, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	values = render.NormalizeValues(form, values)
	return Submission{Values: values, Errors: render.Validate(form, values)}, nil
}

func (r *Renderer) promptField(ctx context.Context, form model.FormModel, f model.Field, state *State) error {
	if f.Display() {
		return r.info(ctx, displayTitle(f))
	}
	for _, msg := range state.ErrorsFor(f.Name) {
		if err := r.info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}

	constraints := rules.FromValidationRules(f.Validations)
	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, form, f, state)
		if err != nil {
			return err
		}
		msg := rules.Check(constraints, value)
		if msg == "" {
			state.SetValue(f.Name, value)
			return nil
		}
		if err := r.info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, displayLabel(f), msg)); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, f.Name)
		}
	}
}

func (r *Renderer) ask(ctx context.Context, form model.FormModel, f model.Field, state *State) (any, error) {
	label := displayLabel(f)

	if f.Type == model.FieldTypeArray {
		options := stringifyEnum(f.Enum)
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  options,
			Defaults: indicesOf(options, currentSelection(f, state)),
			Help:     f.Description,
		})
		if err != nil {
			return nil, err
		}
		return valuesFromIndices(options, indices), nil
	}

	def := defaultStringValue(state, f.Name, form.Defaults[f.Name])
	help := f.Description
	if help == "" && f.Placeholder != "" {
		help = "e.g. " + f.Placeholder
	}
	if f.Metadata[model.MetadataMultiline] == "true" {
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def, Help: help})
	}
	return r.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(f model.Field) string {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	if f.Required {
		label += " *"
	}
	return label
}

func displayTitle(f model.Field) string {
	if f.Description == "" {
		return f.Label
	}
	return f.Label + "\n" + f.Description
}

func currentSelection(f model.Field, state *State) []string {
	if v, ok := state.GetValue(f.Name); ok {
		switch typed := v.(type) {
		case []string:
			return typed
		case []any:
			return stringifyEnum(typed)
		}
	}
	return f.Preselected
}

func defaultStringValue(state *State, name string, def any) string {
	if v, ok := state.GetValue(name); ok && v != nil {
		return fmt.Sprint(v)
	}
	if def == nil {
		return ""
	}
	return fmt.Sprint(def)
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key, item)
			}
		case nil:
			flattened.Set(key, "")
		default:
			flattened.Set(key, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []string:
			for idx, item := range v {
				fmt.Fprintf(&b, "%s[%d]=%s\n", key, idx, item)
			}
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}
