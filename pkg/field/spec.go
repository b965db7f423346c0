package field

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Spec is the serialisable shape of a record used by load sources and HTTP
// payloads. Kind is the discriminant; the legacy "type" and "formId" keys are
// accepted on decode so documents exported by earlier editor builds still
// load. Selected uses string keys because TOML tables cannot carry integer
// keys.
type Spec struct {
	ID          string          `json:"id" yaml:"id" toml:"id"`
	Kind        string          `json:"kind" yaml:"kind" toml:"kind"`
	Output      Output          `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Title       string          `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Subtitle    string          `json:"subtitle,omitempty" yaml:"subtitle,omitempty" toml:"subtitle,omitempty"`
	Heading     string          `json:"heading,omitempty" yaml:"heading,omitempty" toml:"heading,omitempty"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	Options     []string        `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Selected    map[string]bool `json:"selected,omitempty" yaml:"selected,omitempty" toml:"selected,omitempty"`
	Rules       Rules           `json:"rules" yaml:"rules,omitempty" toml:"rules,omitempty"`

	LegacyType   string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	LegacyFormID string `json:"formId,omitempty" yaml:"formId,omitempty" toml:"formId,omitempty"`
}

// Record converts the spec into its variant. An unknown kind returns
// ErrUnknownKind and a missing identifier returns ErrMissingID.
func (s Spec) Record() (Record, error) {
	rawKind := firstNonEmpty(s.Kind, s.LegacyType)
	kind, err := ParseKind(rawKind)
	if err != nil {
		return nil, goerr.Wrap(err, "cannot decode field", goerr.V(FieldIDKey, s.ID))
	}
	id := strings.TrimSpace(firstNonEmpty(s.ID, s.LegacyFormID))
	if id == "" {
		return nil, goerr.Wrap(ErrMissingID, "cannot decode field", goerr.V(FieldKindKey, rawKind))
	}

	base := Base{ID: id, Rules: s.Rules.Clone()}
	switch kind {
	case KindTitle:
		return &Title{Base: base, Title: s.Title, Subtitle: s.Subtitle}, nil
	case KindShort, KindLong:
		return &Text{Base: base, Long: kind == KindLong, Heading: s.Heading, Placeholder: s.Placeholder}, nil
	default:
		selected, err := decodeSelected(s.Selected)
		if err != nil {
			return nil, goerr.Wrap(err, "cannot decode field", goerr.V(FieldIDKey, id))
		}
		return &Multi{
			Base:     base,
			Heading:  s.Heading,
			Options:  append([]string{}, s.Options...),
			Selected: selected,
		}, nil
	}
}

// SpecOf converts a record into its serialisable shape.
func SpecOf(r Record) Spec {
	spec := Spec{
		ID:     r.FieldID(),
		Kind:   string(r.Kind()),
		Output: r.Kind().Output(),
		Rules:  r.FieldRules(),
	}
	Match(r,
		func(t *Title) struct{} {
			spec.Title = t.Title
			spec.Subtitle = t.Subtitle
			return struct{}{}
		},
		func(t *Text) struct{} {
			spec.Heading = t.Heading
			spec.Placeholder = t.Placeholder
			return struct{}{}
		},
		func(m *Multi) struct{} {
			spec.Heading = m.Heading
			spec.Options = append([]string{}, m.Options...)
			spec.Selected = encodeSelected(m.Selected)
			return struct{}{}
		},
	)
	return spec
}

// Decode converts specs into records, stopping at the first invalid entry.
func Decode(specs []Spec) ([]Record, error) {
	out := make([]Record, 0, len(specs))
	for idx, spec := range specs {
		rec, err := spec.Record()
		if err != nil {
			return nil, goerr.Wrap(err, "cannot decode fields", goerr.V("index", idx))
		}
		out = append(out, rec)
	}
	return out, nil
}

// Encode converts records into specs, preserving order.
func Encode(records []Record) []Spec {
	out := make([]Spec, 0, len(records))
	for _, rec := range records {
		out = append(out, SpecOf(rec))
	}
	return out
}

func decodeSelected(raw map[string]bool) (map[int]bool, error) {
	out := make(map[int]bool, len(raw))
	for key, on := range raw {
		idx, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || idx < 0 {
			return nil, goerr.New("selected key must be a non-negative index", goerr.V("key", key))
		}
		out[idx] = on
	}
	return out, nil
}

func encodeSelected(selected map[int]bool) map[string]bool {
	if len(selected) == 0 {
		return nil
	}
	out := make(map[string]bool, len(selected))
	for idx, on := range selected {
		out[strconv.Itoa(idx)] = on
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
