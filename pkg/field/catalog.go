package field

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMultiOption is the option a freshly dropped multiple-choice field
// starts with.
const DefaultMultiOption = "Your Options Here"

// IDGenerator produces a fresh, never reused identifier for a new record.
type IDGenerator func(kind Kind) string

// NewID is the default IDGenerator: a random UUID suffixed with the kind,
// e.g. "0f8fad5b-d9cb-469f-a165-70867728950e-short".
func NewID(kind Kind) string {
	return uuid.NewString() + "-" + string(kind)
}

// Template returns the empty-bodied catalog entry for kind. The returned
// record has no identifier; use NewFromTemplate to obtain an insertable one.
func Template(kind Kind) (Record, error) {
	switch kind {
	case KindTitle:
		return &Title{}, nil
	case KindShort:
		return &Text{}, nil
	case KindLong:
		return &Text{Long: true}, nil
	case KindMulti:
		return &Multi{
			Options:  []string{DefaultMultiOption},
			Selected: map[int]bool{},
		}, nil
	}
	return nil, goerr.Wrap(ErrUnknownKind, "no template for kind", goerr.V(FieldKindKey, string(kind)))
}

// NewFromTemplate instantiates the catalog template for kind and assigns it an
// identifier from gen (NewID when gen is nil).
func NewFromTemplate(kind Kind, gen IDGenerator) (Record, error) {
	rec, err := Template(kind)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		gen = NewID
	}
	rec.base().ID = gen(kind)
	return rec, nil
}
