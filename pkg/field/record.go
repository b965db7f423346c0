package field

import (
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// Attribute names accepted by SetAttribute.
const (
	AttrTitle       = "title"
	AttrSubtitle    = "subtitle"
	AttrHeading     = "heading"
	AttrPlaceholder = "placeholder"
)

// Record is one form-field definition. The interface is sealed: *Title,
// *Text and *Multi are the only implementations.
type Record interface {
	// FieldID returns the record's stable identifier.
	FieldID() string
	// FieldRules returns a copy of the record's validation rules.
	FieldRules() Rules
	// Kind reports the variant tag.
	Kind() Kind
	// Attributes lists the scalar attribute names legal for the variant.
	Attributes() []string
	// SetAttribute assigns a scalar attribute. Names that are not legal for
	// the variant return ErrInvalidAttribute and leave the record untouched.
	SetAttribute(name, value string) error
	// Clone returns a deep copy.
	Clone() Record

	base() *Base
}

// Base holds the attributes every variant shares.
type Base struct {
	ID    string
	Rules Rules
}

// FieldID implements Record.
func (b *Base) FieldID() string { return b.ID }

// FieldRules implements Record.
func (b *Base) FieldRules() Rules { return b.Rules.Clone() }

func (b *Base) base() *Base { return b }

func (b Base) clone() Base {
	return Base{ID: b.ID, Rules: b.Rules.Clone()}
}

// Title is a plain heading block. It collects no input; its rules are kept
// for shape compatibility but the editor never sets them.
type Title struct {
	Base
	Title    string
	Subtitle string
}

// Text is a single-line (short) or multi-line (long) input.
type Text struct {
	Base
	Long        bool
	Heading     string
	Placeholder string
}

// Multi is a multiple-choice input. Selected maps option indices to their
// preselected state.
type Multi struct {
	Base
	Heading  string
	Options  []string
	Selected map[int]bool
}

// Kind implements Record.
func (t *Title) Kind() Kind { return KindTitle }

// Kind implements Record.
func (t *Text) Kind() Kind {
	if t.Long {
		return KindLong
	}
	return KindShort
}

// Kind implements Record.
func (m *Multi) Kind() Kind { return KindMulti }

// Attributes implements Record.
func (t *Title) Attributes() []string { return []string{AttrTitle, AttrSubtitle} }

// Attributes implements Record.
func (t *Text) Attributes() []string { return []string{AttrHeading, AttrPlaceholder} }

// Attributes implements Record.
func (m *Multi) Attributes() []string { return []string{AttrHeading} }

// SetAttribute implements Record.
func (t *Title) SetAttribute(name, value string) error {
	switch name {
	case AttrTitle:
		t.Title = value
	case AttrSubtitle:
		t.Subtitle = value
	default:
		return invalidAttribute(t, name)
	}
	return nil
}

// SetAttribute implements Record.
func (t *Text) SetAttribute(name, value string) error {
	switch name {
	case AttrHeading:
		t.Heading = value
	case AttrPlaceholder:
		t.Placeholder = value
	default:
		return invalidAttribute(t, name)
	}
	return nil
}

// SetAttribute implements Record.
func (m *Multi) SetAttribute(name, value string) error {
	if name != AttrHeading {
		return invalidAttribute(m, name)
	}
	m.Heading = value
	return nil
}

// Clone implements Record.
func (t *Title) Clone() Record {
	out := *t
	out.Base = t.Base.clone()
	return &out
}

// Clone implements Record.
func (t *Text) Clone() Record {
	out := *t
	out.Base = t.Base.clone()
	return &out
}

// Clone implements Record.
func (m *Multi) Clone() Record {
	out := *m
	out.Base = m.Base.clone()
	if m.Options != nil {
		out.Options = append([]string(nil), m.Options...)
	}
	if m.Selected != nil {
		out.Selected = make(map[int]bool, len(m.Selected))
		for idx, on := range m.Selected {
			out.Selected[idx] = on
		}
	}
	return &out
}

// HasEmptyOption reports whether any option is the empty string.
func (m *Multi) HasEmptyOption() bool {
	for _, option := range m.Options {
		if option == "" {
			return true
		}
	}
	return false
}

// SelectedIndices returns the indices marked as selected, in ascending order.
func (m *Multi) SelectedIndices() []int {
	if len(m.Selected) == 0 {
		return nil
	}
	out := make([]int, 0, len(m.Selected))
	for idx, on := range m.Selected {
		if on {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Match dispatches r to the handler for its variant. r must not be nil.
func Match[T any](r Record, title func(*Title) T, text func(*Text) T, multi func(*Multi) T) T {
	switch v := r.(type) {
	case *Title:
		return title(v)
	case *Text:
		return text(v)
	case *Multi:
		return multi(v)
	}
	panic(fmt.Sprintf("field: unhandled record type %T", r))
}

// IsNil reports whether r is nil or a nil pointer of one of the variants.
func IsNil(r Record) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *Title:
		return v == nil
	case *Text:
		return v == nil
	case *Multi:
		return v == nil
	}
	return false
}

// RulesOf returns a pointer to r's live rules so callers can mutate them in
// place on a record they own.
func RulesOf(r Record) *Rules {
	return &r.base().Rules
}

// Heading returns the primary label of a record: the title for title
// records and the heading for every other kind.
func Heading(r Record) string {
	return Match(r,
		func(t *Title) string { return t.Title },
		func(t *Text) string { return t.Heading },
		func(m *Multi) string { return m.Heading },
	)
}

func invalidAttribute(r Record, name string) error {
	return goerr.Wrap(ErrInvalidAttribute, "cannot set attribute",
		goerr.V(FieldIDKey, r.FieldID()),
		goerr.V(FieldKindKey, string(r.Kind())),
		goerr.V(AttributeKey, name))
}
