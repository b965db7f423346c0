// Package rules translates the abstract validation rules attached to a field
// record into concrete constraints with user facing messages, and evaluates
// submitted values against them.
package rules

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/internal/model"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// ErrUnsupportedRule is returned for rules that are declared on the record
// shape but have no implementation (valueAsNumber).
var ErrUnsupportedRule = field.ErrUnsupportedRule

// Constraint kinds, in emission order.
const (
	KindRequired  = model.ValidationRuleRequired
	KindMinLength = model.ValidationRuleMinLength
	KindMaxLength = model.ValidationRuleMaxLength
)

// Message formats. Length messages take the threshold.
const (
	MessageRequired  = "Field can't be empty"
	MessageMinLength = "Field must have at least %d characters"
	MessageMaxLength = "Field can't have more than %d characters"
)

// Constraint is one concrete check. Value is true for required and the
// threshold for length constraints.
type Constraint struct {
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Constraints translates r into constraints ordered required, minLength,
// maxLength. Absent, false and zero rules produce no constraint. A set
// valueAsNumber returns ErrUnsupportedRule.
func Constraints(r field.Rules) ([]Constraint, error) {
	if r.ValueAsNumber != nil {
		return nil, goerr.Wrap(ErrUnsupportedRule, "rule is not implemented",
			goerr.V(field.RuleNameKey, field.RuleValueAsNumber))
	}

	var out []Constraint
	if r.Required != nil && *r.Required {
		out = append(out, Constraint{Kind: KindRequired, Value: true, Message: MessageRequired})
	}
	if r.MinLength != nil && *r.MinLength > 0 {
		n := *r.MinLength
		out = append(out, Constraint{Kind: KindMinLength, Value: n, Message: fmt.Sprintf(MessageMinLength, n)})
	}
	if r.MaxLength != nil && *r.MaxLength > 0 {
		n := *r.MaxLength
		out = append(out, Constraint{Kind: KindMaxLength, Value: n, Message: fmt.Sprintf(MessageMaxLength, n)})
	}
	return out, nil
}

// ForRecord returns the constraints for rec. Title records collect no input
// and never produce constraints.
func ForRecord(rec field.Record) ([]Constraint, error) {
	if rec.Kind() == field.KindTitle {
		return nil, nil
	}
	out, err := Constraints(rec.FieldRules())
	if err != nil {
		return nil, goerr.Wrap(err, "cannot translate rules", goerr.V(field.FieldIDKey, rec.FieldID()))
	}
	return out, nil
}

// Required reports whether constraints contain a required check.
func Required(constraints []Constraint) bool {
	for _, c := range constraints {
		if c.Kind == KindRequired {
			return true
		}
	}
	return false
}

// ToValidationRules adapts constraints to the form model representation.
func ToValidationRules(constraints []Constraint) []model.ValidationRule {
	if len(constraints) == 0 {
		return nil
	}
	out := make([]model.ValidationRule, 0, len(constraints))
	for _, c := range constraints {
		params := map[string]string{"message": c.Message}
		switch v := c.Value.(type) {
		case int:
			params["value"] = strconv.Itoa(v)
		case bool:
			params["value"] = strconv.FormatBool(v)
		}
		out = append(out, model.ValidationRule{Kind: c.Kind, Params: params})
	}
	return out
}

// FromValidationRules rebuilds constraints from their form model
// representation. Unknown kinds and malformed thresholds are skipped.
func FromValidationRules(validations []model.ValidationRule) []Constraint {
	out := make([]Constraint, 0, len(validations))
	for _, v := range validations {
		c := Constraint{Kind: v.Kind, Message: v.Params["message"]}
		switch v.Kind {
		case KindRequired:
			c.Value = true
			if c.Message == "" {
				c.Message = MessageRequired
			}
		case KindMinLength, KindMaxLength:
			n, err := strconv.Atoi(v.Params["value"])
			if err != nil {
				continue
			}
			c.Value = n
			if c.Message == "" {
				format := MessageMinLength
				if v.Kind == KindMaxLength {
					format = MessageMaxLength
				}
				c.Message = fmt.Sprintf(format, n)
			}
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// Check evaluates a submitted value (string, []string or nil) against
// constraints and returns the message of the first one violated, or "" when
// the value passes. Length constraints apply to strings and count runes.
func Check(constraints []Constraint, value any) string {
	for _, c := range constraints {
		if violates(c, value) {
			return c.Message
		}
	}
	return ""
}

func violates(c Constraint, value any) bool {
	switch c.Kind {
	case KindRequired:
		switch v := value.(type) {
		case nil:
			return true
		case string:
			return v == ""
		case []string:
			return len(v) == 0
		case []any:
			return len(v) == 0
		}
		return false
	case KindMinLength, KindMaxLength:
		s, ok := value.(string)
		if !ok {
			return false
		}
		n, _ := c.Value.(int)
		length := utf8.RuneCountInString(s)
		if c.Kind == KindMinLength {
			// an empty optional value is left to the required check
			return length > 0 && length < n
		}
		return length > n
	}
	return false
}
