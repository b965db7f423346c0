package field

import (
	"encoding/json"
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// Rule names understood by Rules.Set.
const (
	RuleRequired      = "required"
	RuleMinLength     = "minLength"
	RuleMaxLength     = "maxLength"
	RuleValueAsNumber = "valueAsNumber"
)

// Rules holds the abstract validation constraints attached to a record. A nil
// pointer means the rule is absent. ValueAsNumber is part of the document
// shape but has no implementation; translating a record that sets it fails
// with ErrUnsupportedRule.
type Rules struct {
	Required      *bool `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	MinLength     *int  `json:"minLength,omitempty" yaml:"minLength,omitempty" toml:"minLength,omitempty"`
	MaxLength     *int  `json:"maxLength,omitempty" yaml:"maxLength,omitempty" toml:"maxLength,omitempty"`
	ValueAsNumber *bool `json:"valueAsNumber,omitempty" yaml:"valueAsNumber,omitempty" toml:"valueAsNumber,omitempty"`
}

// RuleNames lists every rule name Set accepts.
func RuleNames() []string {
	return []string{RuleRequired, RuleMinLength, RuleMaxLength, RuleValueAsNumber}
}

// IsZero reports whether no rule is set.
func (r Rules) IsZero() bool {
	return r.Required == nil && r.MinLength == nil && r.MaxLength == nil && r.ValueAsNumber == nil
}

// Clone returns a copy that shares no pointers with r.
func (r Rules) Clone() Rules {
	return Rules{
		Required:      cloneBool(r.Required),
		MinLength:     cloneInt(r.MinLength),
		MaxLength:     cloneInt(r.MaxLength),
		ValueAsNumber: cloneBool(r.ValueAsNumber),
	}
}

// Set assigns value to the named rule. required and valueAsNumber take a
// bool; minLength and maxLength take a non-negative integer (any Go integer
// type, an integral float64 or a json.Number). A value of the wrong type
// returns ErrTypeMismatch and leaves r untouched; an unknown name returns
// ErrUnsupportedRule.
func (r *Rules) Set(name string, value any) error {
	switch name {
	case RuleRequired, RuleValueAsNumber:
		b, ok := value.(bool)
		if !ok {
			return goerr.Wrap(ErrTypeMismatch, "rule expects a bool",
				goerr.V(RuleNameKey, name), goerr.V("value", value))
		}
		if name == RuleRequired {
			r.Required = &b
		} else {
			r.ValueAsNumber = &b
		}
		return nil
	case RuleMinLength, RuleMaxLength:
		n, ok := asLength(value)
		if !ok {
			return goerr.Wrap(ErrTypeMismatch, "rule expects a non-negative integer",
				goerr.V(RuleNameKey, name), goerr.V("value", value))
		}
		if name == RuleMinLength {
			r.MinLength = &n
		} else {
			r.MaxLength = &n
		}
		return nil
	}
	return goerr.Wrap(ErrUnsupportedRule, "unknown rule name", goerr.V(RuleNameKey, name))
}

// Bool returns a pointer to b, handy when building Rules literals.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n, handy when building Rules literals.
func Int(n int) *int {
	return &n
}

func asLength(value any) (int, bool) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case float32:
		return asLength(float64(v))
	case float64:
		if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
