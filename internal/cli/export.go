package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/defaults"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

func cmdExport(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"x"},
		Usage:   "Write artifacts derived from a form document",
		Commands: []*cli.Command{
			exportCommand(out, "defaults", "Print the initial submission values", nil, exportDefaults),
			exportCommand(out, "schema", "Print the OpenAPI schema of the form", schemaFlags, exportSchema),
			exportCommand(out, "html", "Render the form as HTML", htmlFlags, exportHTML),
			exportCommand(out, "document", "Re-encode the document in another format", documentFlags, exportDocument),
		},
	}
}

// exportSettings carries the per-subcommand flag values.
type exportSettings struct {
	version  string
	theme    string
	variant  string
	inline   bool
	toFormat string
}

type exportFunc func(ctx context.Context, records []field.Record, s exportSettings) ([]byte, error)

func exportCommand(out io.Writer, name, usage string, extra func(*exportSettings) []cli.Flag, run exportFunc) *cli.Command {
	var settings exportSettings
	var outFile string
	var docCfg Document

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Write to a file instead of stdout",
			Destination: &outFile,
		},
	}
	if extra != nil {
		flags = append(flags, extra(&settings)...)
	}
	flags = append(flags, docCfg.Flags()...)

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			records, err := docCfg.Load(ctx)
			if err != nil {
				return err
			}
			payload, err := run(ctx, records, settings)
			if err != nil {
				return err
			}
			return writeOutput(ctx, out, outFile, payload)
		},
	}
}

func schemaFlags(s *exportSettings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "schema-version",
			Usage:       "Version stamped in the document info",
			Value:       "1.0.0",
			Destination: &s.version,
		},
	}
}

func htmlFlags(s *exportSettings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "theme",
			Usage:       "Theme name",
			Value:       html.DefaultThemeName,
			Sources:     cli.EnvVars("FORMBUILDER_THEME"),
			Destination: &s.theme,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "Theme variant",
			Sources:     cli.EnvVars("FORMBUILDER_THEME_VARIANT"),
			Destination: &s.variant,
		},
		&cli.BoolFlag{
			Name:        "inline-styles",
			Usage:       "Embed the stylesheet instead of linking the theme asset",
			Value:       true,
			Destination: &s.inline,
		},
	}
}

func documentFlags(s *exportSettings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Target format (json, yaml, toml)",
			Value:       string(source.FormatJSON),
			Destination: &s.toFormat,
		},
	}
}

func exportDefaults(_ context.Context, records []field.Record, _ exportSettings) ([]byte, error) {
	data, err := json.MarshalIndent(defaults.Derive(records), "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal defaults")
	}
	return data, nil
}

func exportSchema(ctx context.Context, records []field.Record, s exportSettings) ([]byte, error) {
	g, err := formbuilder.New()
	if err != nil {
		return nil, err
	}
	form, err := g.Form(ctx, formbuilder.Request{Records: records})
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema.Document(form, s.version), "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal schema")
	}
	return data, nil
}

func exportHTML(ctx context.Context, records []field.Record, s exportSettings) ([]byte, error) {
	renderer, err := html.New(html.WithInlineStyles(s.inline))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure html renderer")
	}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		return nil, err
	}
	g, err := formbuilder.New(formbuilder.WithRegistry(registry))
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, formbuilder.Request{
		Records:  records,
		Renderer: renderer.Name(),
		Theme:    s.theme,
		Variant:  s.variant,
	})
}

func exportDocument(_ context.Context, records []field.Record, s exportSettings) ([]byte, error) {
	format, err := source.ParseFormat(s.toFormat)
	if err != nil {
		return nil, err
	}
	data, err := source.Encode(records, format)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode document", goerr.V("format", format))
	}
	return data, nil
}
