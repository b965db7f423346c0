package formbuilder

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

// ErrMissingSource is returned by Generate when a request names neither
// records nor a source.
var ErrMissingSource = goerr.New("request needs records or a source")

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Intent is the wire form of an editor gesture.
type Intent = collection.Intent

// Record is one field of a form document.
type Record = field.Record

// NewCollection returns an empty editable field collection.
func NewCollection(opts ...collection.Option) *collection.Collection {
	return collection.New(opts...)
}

// Request selects the records to render and how to render them.
type Request struct {
	// Records are rendered as given. When nil, Source is loaded instead.
	Records []field.Record
	Source  source.Source
	// Renderer names a registered renderer. Empty selects the default.
	Renderer string
	// Theme and Variant select a registered theme when RenderOptions.Theme
	// is nil.
	Theme         string
	Variant       string
	RenderOptions render.RenderOptions
}

// Generator loads form documents, builds their form model and renders it.
type Generator struct {
	registry    *render.Registry
	themes      *html.Themes
	loader      *source.Loader
	builderOpts []model.BuilderOption
	extra       []render.Renderer
}

type Option func(*Generator)

// WithRegistry replaces the renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(g *Generator) {
		g.registry = registry
	}
}

// WithRenderer registers an additional renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(g *Generator) {
		if renderer != nil {
			g.extra = append(g.extra, renderer)
		}
	}
}

// WithThemes sets the themes resolved for Request.Theme.
func WithThemes(themes *html.Themes) Option {
	return func(g *Generator) {
		g.themes = themes
	}
}

// WithLoader sets the loader used for Request.Source.
func WithLoader(loader *source.Loader) Option {
	return func(g *Generator) {
		g.loader = loader
	}
}

// WithBuilderOptions forwards options to the form model builder.
func WithBuilderOptions(options ...model.BuilderOption) Option {
	return func(g *Generator) {
		g.builderOpts = append(g.builderOpts, options...)
	}
}

// New constructs a Generator. Without WithRegistry the HTML renderer is
// registered as the default.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if g.registry == nil {
		renderer, err := html.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure html renderer")
		}
		registry, err := render.NewRegistry(renderer)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure renderer registry")
		}
		g.registry = registry
	}
	for _, renderer := range g.extra {
		if err := g.registry.Register(renderer); err != nil {
			return nil, goerr.Wrap(err, "failed to register renderer")
		}
	}
	if g.themes == nil {
		themes, err := html.NewThemes()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure themes")
		}
		g.themes = themes
	}
	if g.loader == nil {
		g.loader = source.NewLoader()
	}
	return g, nil
}

// Form resolves the request records and builds their form model.
func (g *Generator) Form(ctx context.Context, req Request) (model.FormModel, error) {
	records := req.Records
	if records == nil {
		if req.Source == nil {
			return model.FormModel{}, ErrMissingSource
		}
		loaded, err := g.loader.Load(ctx, req.Source)
		if err != nil {
			return model.FormModel{}, goerr.Wrap(err, "failed to load form document",
				goerr.V("location", req.Source.Location()))
		}
		records = loaded
	}

	form, err := model.Build(records, g.builderOpts...)
	if err != nil {
		return model.FormModel{}, goerr.Wrap(err, "failed to build form model")
	}
	return form, nil
}

// Generate builds the request's form model and renders it.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := g.Form(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := g.registry.Get(req.Renderer)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve renderer")
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := g.themes.Config(req.Theme, req.Variant)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve theme")
		}
		opts.Theme = cfg
	}

	out, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render form", goerr.V("renderer", renderer.Name()))
	}
	return out, nil
}

// Registry exposes the renderer registry.
func (g *Generator) Registry() *render.Registry {
	return g.registry
}

// GenerateHTML loads src and renders it with the default HTML renderer. It is
// the simplest entry point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, src source.Source, opts ...Option) ([]byte, error) {
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, Request{Source: src, Renderer: "html"})
}
