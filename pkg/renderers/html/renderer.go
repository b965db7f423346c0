// Package html renders a form model as an HTML form using the embedded pongo2
// templates. Headings and subtitles pass through a bluemonday policy; every
// other value is escaped by the template engine.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

const formTemplate = "templates/form.tpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStyles     bool
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithInlineStyles toggles embedding the stylesheet in a <style> block. When
// disabled the form links the theme's "stylesheet" asset instead.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// WithSubmitLabel overrides the submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(label) != "" {
			cfg.submitLabel = label
		}
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	inlineStyles bool
	submitLabel  string
	stylesheet   string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		inlineStyles: true,
		submitLabel:  "Submit",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	r := &Renderer{
		templates:    renderer,
		inlineStyles: cfg.inlineStyles,
		submitLabel:  cfg.submitLabel,
	}
	if cfg.inlineStyles {
		r.stylesheet = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}

	data := map[string]any{
		"form":         form,
		"fields":       buildFieldViews(form, options),
		"action":       options.Action,
		"method":       method,
		"form_errors":  options.FormErrors,
		"theme":        buildThemeView(options.Theme),
		"submit_label": r.submitLabel,
		"stylesheet":   r.stylesheet,
	}
	if !r.inlineStyles && options.Theme != nil && options.Theme.AssetURL != nil {
		data["stylesheet_url"] = options.Theme.AssetURL("stylesheet")
	}

	result, err := r.templates.RenderTemplate(formTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type optionView struct {
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

type fieldView struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Display     bool         `json:"display"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required"`
	Multiline   bool         `json:"multiline"`
	MinLength   string       `json:"min_length,omitempty"`
	MaxLength   string       `json:"max_length,omitempty"`
	Value       string       `json:"value"`
	Options     []optionView `json:"options,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
}

func buildFieldViews(form model.FormModel, options render.RenderOptions) []fieldView {
	views := make([]fieldView, 0, len(form.Fields))
	for _, f := range form.Fields {
		view := fieldView{
			Name:        f.Name,
			Kind:        f.Kind,
			Display:     f.Display(),
			Label:       sanitizeText(f.Label),
			Description: sanitizeText(f.Description),
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Errors:      options.Errors[f.Name],
		}
		if view.Display {
			views = append(views, view)
			continue
		}

		view.Multiline, _ = strconv.ParseBool(f.Metadata[model.MetadataMultiline])
		for _, c := range rules.FromValidationRules(f.Validations) {
			n, ok := c.Value.(int)
			if !ok {
				continue
			}
			switch c.Kind {
			case rules.KindMinLength:
				view.MinLength = strconv.Itoa(n)
			case rules.KindMaxLength:
				view.MaxLength = strconv.Itoa(n)
			}
		}

		if f.Type == model.FieldTypeArray {
			checked := f.Preselected
			if v, ok := options.Values[f.Name]; ok {
				checked, _ = render.NormalizeValues(form, map[string]any{f.Name: v})[f.Name].([]string)
			}
			picked := make(map[string]bool, len(checked))
			for _, value := range checked {
				picked[value] = true
			}
			for _, option := range f.Enum {
				value := fmt.Sprint(option)
				view.Options = append(view.Options, optionView{Value: value, Checked: picked[value]})
			}
		} else if v := options.Value(form, f.Name); v != nil {
			view.Value = fmt.Sprint(v)
		}
		views = append(views, view)
	}
	return views
}

type themeView struct {
	Name    string `json:"name,omitempty"`
	Variant string `json:"variant,omitempty"`
	Style   string `json:"style,omitempty"`
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+cfg.CSSVars[key])
	}
	return themeView{Name: cfg.Theme, Variant: cfg.Variant, Style: strings.Join(parts, "; ")}
}
