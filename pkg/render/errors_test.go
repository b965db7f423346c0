package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestMapErrorPayload(t *testing.T) {
	form := model.FormModel{
		Fields: []model.Field{
			{Name: "ID_TITLE", Kind: "title"},
			{Name: "ID_SHORT", Type: model.FieldTypeString},
			{Name: "0f8fad5b-d9cb-469f-a165-70867728950e-multi", Type: model.FieldTypeArray},
		},
	}

	payload := map[string][]string{
		"/body/ID_SHORT": {"Field can't be empty", " Field can't be empty "},
		"$.payload.0f8fad5b-d9cb-469f-a165-70867728950e-multi[1]": {"Select one of the listed options"},
		"non_field_errors":    {"Form level error"},
		"/body/unknown-field": {"Falls back to the form"},
		"ID_TITLE":            {"Titles collect no input"},
		"":                    {"  "},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"ID_SHORT": {"Field can't be empty"},
		"0f8fad5b-d9cb-469f-a165-70867728950e-multi": {"Select one of the listed options"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Falls back to the form", "Form level error", "Titles collect no input"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	got := render.MergeFormErrors([]string{"a", " b "}, "b", "", "c")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}
