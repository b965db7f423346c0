package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Action is the submission target. Empty means the renderer decides.
	Action string
	// Method overrides the submission verb. Defaults to POST.
	Method string
	// Values pre-populates rendered controls keyed by field name (record id).
	// Missing entries fall back to FormModel.Defaults.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field name.
	Errors map[string][]string
	// FormErrors lists messages not tied to a single field.
	FormErrors []string
	// Theme carries the resolved theme tokens and partial overrides.
	Theme *theme.RendererConfig
}

// Value returns the value to render for name, preferring explicit values
// over form defaults.
func (o RenderOptions) Value(form model.FormModel, name string) any {
	if v, ok := o.Values[name]; ok {
		return v
	}
	return form.Defaults[name]
}
