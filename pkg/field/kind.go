package field

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Kind is the variant tag of a record.
type Kind string

const (
	KindTitle Kind = "title"
	KindShort Kind = "short"
	KindLong  Kind = "long"
	KindMulti Kind = "multi"
)

// Output describes the shape of the value a record produces on submission.
type Output string

const (
	OutputString      Output = "string"
	OutputStringArray Output = "stringArray"
)

// Kinds lists every kind in catalog order.
func Kinds() []Kind {
	return []Kind{KindTitle, KindShort, KindLong, KindMulti}
}

// ParseKind resolves a raw kind tag. Matching is case-insensitive and ignores
// surrounding whitespace.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTitle:
		return KindTitle, nil
	case KindShort:
		return KindShort, nil
	case KindLong:
		return KindLong, nil
	case KindMulti:
		return KindMulti, nil
	}
	return "", goerr.Wrap(ErrUnknownKind, "cannot parse kind", goerr.V("kind", raw))
}

// Output reports the submission value shape for the kind.
func (k Kind) Output() Output {
	if k == KindMulti {
		return OutputStringArray
	}
	return OutputString
}

func (k Kind) String() string {
	return string(k)
}
