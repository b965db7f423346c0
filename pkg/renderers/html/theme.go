package html

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the built-in theme registered by NewThemes.
const DefaultThemeName = "formbuilder"

// ErrThemeNotFound is returned when a theme or variant is not registered.
var ErrThemeNotFound = errors.New("html renderer: theme not found")

// DefaultManifest describes the built-in look: a light base with a dark
// variant. Token names map to CSS custom properties prefixed with "--fb-".
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"accent":     "#4f46e5",
			"background": "#ffffff",
			"foreground": "#111827",
			"muted":      "#6b7280",
			"danger":     "#dc2626",
			"radius":     "6px",
		},
		Templates: map[string]string{
			"form": formTemplate,
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"accent":     "#818cf8",
					"background": "#111827",
					"foreground": "#f9fafb",
					"muted":      "#9ca3af",
				},
			},
		},
	}
}

// Themes keeps theme manifests and resolves a name and variant into the
// renderer configuration passed through render.RenderOptions.
type Themes struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes registers the default manifest followed by manifests. The first
// extra manifest, when given, becomes the default theme.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	t := &Themes{
		manifests:    make(map[string]*theme.Manifest),
		defaultTheme: DefaultThemeName,
	}
	all := append([]*theme.Manifest{DefaultManifest()}, manifests...)
	for _, manifest := range all {
		if err := t.Register(manifest); err != nil {
			return nil, err
		}
	}
	if len(manifests) > 0 && manifests[0] != nil {
		t.defaultTheme = manifests[0].Name
	}
	return t, nil
}

// Register validates manifest with go-theme and adds it, replacing any
// manifest with the same name.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("html renderer: theme manifest name is required")
	}
	if err := theme.NewRegistry().Register(manifest); err != nil {
		return fmt.Errorf("html renderer: invalid theme %q: %w", manifest.Name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[manifest.Name] = manifest
	return nil
}

// SetDefault changes the theme and variant used when a request names none.
func (t *Themes) SetDefault(name, variant string) error {
	if _, err := t.Select(name, variant); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defaultTheme = name
	t.defaultVariant = variant
	return nil
}

// Names lists registered theme names.
func (t *Themes) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.manifests))
	for name := range t.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector. Empty arguments fall back to the
// defaults; an unknown theme or variant returns ErrThemeNotFound.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if name == "" {
		name = t.defaultTheme
		if variant == "" {
			variant = t.defaultVariant
		}
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q variant %q", ErrThemeNotFound, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Config selects a theme and converts it into renderer configuration.
func (t *Themes) Config(name, variant string) (*theme.RendererConfig, error) {
	selection, err := t.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection), nil
}

// RendererConfig flattens a selection: variant tokens, templates and asset
// files override the base manifest, and every token is exposed as a
// "--fb-<token>" CSS variable.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	files := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--fb-"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}
