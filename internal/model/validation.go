package model

import (
	"errors"
	"fmt"
)

var (
	errFieldNameMissing   = errors.New("model builder: field name is required")
	errFieldNameDuplicate = errors.New("model builder: duplicate field name")
	errArrayWithoutEnum   = errors.New("model builder: array field requires enum options")
)

// ValidateForm checks the structural invariants renderers rely on: every
// field has a unique name and array fields carry their options.
func ValidateForm(form FormModel) error {
	seen := make(map[string]struct{}, len(form.Fields))
	for idx, f := range form.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w (index %d)", errFieldNameMissing, idx)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w %q", errFieldNameDuplicate, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type == FieldTypeArray && f.Enum == nil {
			return fmt.Errorf("%w: %q", errArrayWithoutEnum, f.Name)
		}
	}
	return nil
}
