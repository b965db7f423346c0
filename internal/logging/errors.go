package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

// Error logs err with msg, expanding goerr values and stacks when present.
func Error(ctx context.Context, err error, msg string, attrs ...any) {
	if err == nil {
		return
	}
	logger := From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		attrs = append(attrs, "error", err.Error())
	}
	logger.Error(msg, attrs...)
}

// Close closes closer and logs a failure.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		From(ctx).Error("failed to close", slog.Any("error", err))
	}
}
