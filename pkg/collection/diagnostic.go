package collection

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/position"
)

var (
	// ErrNotFound marks an operation addressed to an id that is not in the
	// collection.
	ErrNotFound = goerr.New("field not found")
	// ErrInvalidVariant marks an operation that only applies to another kind
	// of record, such as appending an option to a title.
	ErrInvalidVariant = goerr.New("operation not valid for field kind")
	// ErrEmptyOption marks an append refused because an option is still
	// empty.
	ErrEmptyOption = goerr.New("fill the empty option first")
	// ErrDuplicateID is returned by Load when two records share an id.
	ErrDuplicateID = goerr.New("duplicate field id")
	// ErrUnknownIntent is returned by Apply for an unrecognised intent type.
	ErrUnknownIntent = goerr.New("unknown intent type")

	// ErrTypeMismatch marks a rule value of the wrong type.
	ErrTypeMismatch = field.ErrTypeMismatch
	// ErrMissingID is returned by Load for a record without id.
	ErrMissingID = field.ErrMissingID
)

// Reason classifies a refused operation.
type Reason string

const (
	ReasonNotFound       Reason = "not_found"
	ReasonInvalidVariant Reason = "invalid_variant"
	ReasonTypeMismatch   Reason = "type_mismatch"
	ReasonEmptyOption    Reason = "empty_option"
	ReasonOutOfRange     Reason = "out_of_range"
	ReasonInvalidField   Reason = "invalid_field"
)

// Operation names used in diagnostics and log records.
const (
	OpLoad         = "load"
	OpSelect       = "select"
	OpUpdateField  = "update-field"
	OpUpdateRule   = "update-rule"
	OpAppendOption = "append-option"
	OpUpdateOption = "update-option"
	OpDeleteOption = "delete-option"
	OpDeleteField  = "delete-field"
	OpInsert       = "insert"
	OpReorder      = "reorder"
)

// Diagnostic describes an operation that was refused and left the collection
// unchanged.
type Diagnostic struct {
	Op     string `json:"op"`
	ID     string `json:"id,omitempty"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
}

func (d Diagnostic) Error() string {
	if d.Err != nil {
		return d.Op + " " + d.ID + ": " + d.Err.Error()
	}
	return d.Op + " " + d.ID + ": " + string(d.Reason)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

func (c *Collection) refuse(op, id string, reason Reason, detail string) {
	diag := Diagnostic{Op: op, ID: id, Reason: reason, Detail: detail, Err: reasonErr(reason)}
	c.last = &diag

	level := slog.LevelDebug
	switch reason {
	case ReasonNotFound:
		level = slog.LevelWarn
	case ReasonEmptyOption:
		level = slog.LevelInfo
	}
	c.logger.Log(context.Background(), level, "field operation refused",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("reason", string(reason)),
		slog.String("detail", detail),
	)

	if c.diagnostics != nil {
		c.diagnostics(diag)
	}
}

func reasonErr(reason Reason) error {
	switch reason {
	case ReasonNotFound:
		return ErrNotFound
	case ReasonInvalidVariant:
		return ErrInvalidVariant
	case ReasonTypeMismatch:
		return ErrTypeMismatch
	case ReasonEmptyOption:
		return ErrEmptyOption
	case ReasonOutOfRange:
		return position.ErrOutOfRange
	case ReasonInvalidField:
		return field.ErrInvalidAttribute
	}
	return nil
}
