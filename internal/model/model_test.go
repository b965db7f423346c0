package model

import (
	"errors"
	"testing"
)

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"short":       "Short",
		"first_name":  "First Name",
		"multi-pick":  "Multi Pick",
		"favoriteTea": "Favorite Tea",
		"":            "",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestValidateForm(t *testing.T) {
	valid := FormModel{Fields: []Field{
		{Name: "T", Kind: "title", Type: FieldTypeString},
		{Name: "M", Kind: "multi", Type: FieldTypeArray, Enum: []any{}},
	}}
	if err := ValidateForm(valid); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	tests := []struct {
		name string
		form FormModel
		want error
	}{
		{
			name: "missing name",
			form: FormModel{Fields: []Field{{Kind: "short"}}},
			want: errFieldNameMissing,
		},
		{
			name: "duplicate name",
			form: FormModel{Fields: []Field{{Name: "S"}, {Name: "S"}}},
			want: errFieldNameDuplicate,
		},
		{
			name: "array without options",
			form: FormModel{Fields: []Field{{Name: "M", Type: FieldTypeArray}}},
			want: errArrayWithoutEnum,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateForm(tt.form); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if !(Field{Kind: "title"}).Display() || (Field{Kind: "short"}).Display() {
		t.Fatalf("only titles are display fields")
	}
}
