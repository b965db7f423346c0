// Package cli wires the formbuilder commands: serve runs the editor session
// over HTTP, fill collects a submission in the terminal and export writes
// derived artifacts of a form document.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
)

// Run executes the command line with args.
func Run(ctx context.Context, args []string, version string) error {
	return New(version, os.Stdout).Run(ctx, args)
}

// New builds the root command. Command output other than logs goes to out.
func New(version string, out io.Writer) *cli.Command {
	var loggerCfg Logger
	var closer func()

	return &cli.Command{
		Name:    "formbuilder",
		Usage:   "Edit, preview and fill form documents",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("starting formbuilder", "logger", loggerCfg, "version", version)
			return logging.With(ctx, logging.Default()), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdFill(out),
			cmdExport(out),
		},
	}
}
