package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
)

func cmdServe() *cli.Command {
	var addr string
	var themeName string
	var variant string
	var origins []string
	var docCfg Document

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("FORMBUILDER_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "theme",
			Usage:       "Default preview theme",
			Value:       html.DefaultThemeName,
			Sources:     cli.EnvVars("FORMBUILDER_THEME"),
			Destination: &themeName,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "Default preview theme variant",
			Sources:     cli.EnvVars("FORMBUILDER_THEME_VARIANT"),
			Destination: &variant,
		},
		&cli.StringSliceFlag{
			Name:        "origin",
			Usage:       "Host pattern allowed to open the websocket from another origin (repeatable)",
			Sources:     cli.EnvVars("FORMBUILDER_ORIGINS"),
			Destination: &origins,
		},
	}
	flags = append(flags, docCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the editor HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			records, err := docCfg.Load(ctx)
			if err != nil {
				return err
			}

			themes, err := html.NewThemes()
			if err != nil {
				return goerr.Wrap(err, "failed to configure themes")
			}
			if err := themes.SetDefault(themeName, variant); err != nil {
				return goerr.Wrap(err, "failed to select default theme")
			}

			handler, err := server.New(
				server.WithLogger(logger),
				server.WithThemes(themes),
				server.WithRecords(records),
				server.WithOriginPatterns(origins...),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", "addr", addr, "fields", len(records))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("context canceled, shutting down")
			case sig := <-sigCh:
				logger.Info("received shutdown signal", "signal", sig)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			logger.Info("server shutdown completed")
			return nil
		},
	}
}
