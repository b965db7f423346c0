package cli

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

// promptDriver overrides the terminal driver used by fill when set.
var promptDriver tui.PromptDriver

func cmdFill(out io.Writer) *cli.Command {
	var outputFormat string
	var maxAttempts int
	var outFile string
	var docCfg Document

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output-format",
			Aliases:     []string{"f"},
			Usage:       "Submission format (json, form, pretty)",
			Value:       string(tui.OutputFormatJSON),
			Sources:     cli.EnvVars("FORMBUILDER_OUTPUT_FORMAT"),
			Destination: &outputFormat,
		},
		&cli.IntFlag{
			Name:        "max-attempts",
			Usage:       "Give up after this many invalid answers to one field (0 retries forever)",
			Value:       0,
			Sources:     cli.EnvVars("FORMBUILDER_MAX_ATTEMPTS"),
			Destination: &maxAttempts,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Write the submission to a file instead of stdout",
			Destination: &outFile,
		},
	}
	flags = append(flags, docCfg.Flags()...)

	return &cli.Command{
		Name:  "fill",
		Usage: "Fill a form in the terminal and print the submission",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			records, err := docCfg.Load(ctx)
			if err != nil {
				return err
			}
			form, err := model.Build(records)
			if err != nil {
				return goerr.Wrap(err, "failed to build form model")
			}

			opts := []tui.Option{
				tui.WithOutputFormat(tui.ParseOutputFormat(outputFormat)),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithOutput(os.Stderr),
			}
			if promptDriver != nil {
				opts = append(opts, tui.WithPromptDriver(promptDriver))
			}
			renderer, err := tui.New(opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to configure terminal renderer")
			}

			payload, err := renderer.Render(ctx, form, render.RenderOptions{})
			if err != nil {
				return goerr.Wrap(err, "failed to collect submission")
			}
			return writeOutput(ctx, out, outFile, payload)
		},
	}
}

// writeOutput writes payload to path, or to out when path is empty.
func writeOutput(ctx context.Context, out io.Writer, path string, payload []byte) error {
	payload = append(bytes.TrimRight(payload, "\n"), '\n')
	if path == "" {
		if _, err := out.Write(payload); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
		return nil
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write output", goerr.V("path", path))
	}
	logging.From(ctx).Info("output written", "path", path, "bytes", len(payload))
	return nil
}
