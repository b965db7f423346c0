package field

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrUnknownKind is returned when a kind tag does not name a variant.
	// Decoding a record with an unknown kind is a fatal construction error.
	ErrUnknownKind = goerr.New("unknown field kind")
	// ErrInvalidAttribute signals an attribute name that is not legal for
	// the record's variant (for example "title" on a short record).
	ErrInvalidAttribute = goerr.New("attribute not supported by field kind")
	// ErrTypeMismatch signals a rule value of the wrong primitive type.
	ErrTypeMismatch = goerr.New("rule value has the wrong type")
	// ErrUnsupportedRule signals a rule that is declared but not implemented
	// (valueAsNumber) or a rule name that does not exist at all.
	ErrUnsupportedRule = goerr.New("unsupported rule")
	// ErrMissingID is returned when decoding a record without identifier.
	ErrMissingID = goerr.New("field id is required")
)

// Context keys attached to wrapped errors.
const (
	FieldIDKey   = "field_id"
	FieldKindKey = "field_kind"
	RuleNameKey  = "rule"
	AttributeKey = "attribute"
)
