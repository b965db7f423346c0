package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

// Logger holds the logging flags shared by every command.
type Logger struct {
	level  string
	format string
	output string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Category:    "Logging",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("FORMBUILDER_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Category:    "Logging",
			Usage:       "Log format (console, json)",
			Value:       logging.FormatConsole,
			Sources:     cli.EnvVars("FORMBUILDER_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Category:    "Logging",
			Usage:       "Log destination (stderr, stdout or a file path)",
			Value:       "stderr",
			Sources:     cli.EnvVars("FORMBUILDER_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

// LogValue keeps the configuration readable in log records.
func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure installs the process logger and returns a function releasing the
// log destination.
func (x *Logger) Configure() (func(), error) {
	level, err := logging.ParseLevel(x.level)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer
		closer = func() {}
	)
	switch x.output {
	case "", "stderr", "-":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(x.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() { logging.Close(context.Background(), f) }
	}

	logger, err := logging.New(x.format, level, w)
	if err != nil {
		closer()
		return nil, err
	}
	logging.SetDefault(logger)
	return closer, nil
}

// Document holds the flags selecting the form document to open.
type Document struct {
	location string
	format   string
	timeout  time.Duration
}

func (x *Document) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "document",
			Aliases:     []string{"d"},
			Category:    "Document",
			Usage:       "Form document path or http(s) URL; the sample form is used when empty",
			Sources:     cli.EnvVars("FORMBUILDER_DOCUMENT"),
			Destination: &x.location,
		},
		&cli.StringFlag{
			Name:        "document-format",
			Category:    "Document",
			Usage:       "Document format (json, yaml, toml); inferred when empty",
			Sources:     cli.EnvVars("FORMBUILDER_DOCUMENT_FORMAT"),
			Destination: &x.format,
		},
		&cli.DurationFlag{
			Name:        "document-timeout",
			Category:    "Document",
			Usage:       "Timeout for fetching remote documents",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("FORMBUILDER_DOCUMENT_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

// Load reads the configured document.
func (x *Document) Load(ctx context.Context) ([]field.Record, error) {
	if x.location == "" {
		logging.From(ctx).Info("no document given, opening the sample form")
		return source.Sample(), nil
	}

	src, err := source.Parse(x.location)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid document location", goerr.V("document", x.location))
	}
	opts := []source.Option{source.WithHTTPFallback(x.timeout)}
	if x.format != "" {
		format, err := source.ParseFormat(x.format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, source.WithFormat(format))
	}

	records, err := source.NewLoader(opts...).Load(ctx, src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load document", goerr.V("document", x.location))
	}
	logging.From(ctx).Debug("document loaded", "document", x.location, "fields", len(records))
	return records, nil
}
