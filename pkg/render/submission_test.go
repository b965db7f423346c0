package render_test

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/rules"
)

func sampleForm(t *testing.T) model.FormModel {
	t.Helper()
	form, err := model.Build([]field.Record{
		&field.Title{Base: field.Base{ID: "T"}, Title: "Survey"},
		&field.Text{Base: field.Base{ID: "S", Rules: field.Rules{Required: field.Bool(true), MaxLength: field.Int(5)}}, Heading: "Name"},
		&field.Multi{Base: field.Base{ID: "M", Rules: field.Rules{Required: field.Bool(true)}}, Heading: "Pick", Options: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return form
}

func TestValuesFromForm(t *testing.T) {
	form := sampleForm(t)
	posted := url.Values{"S": {"Jane"}, "M": {"a", "b"}, "T": {"ignored"}}

	want := map[string]any{"S": "Jane", "M": []string{"a", "b"}}
	if diff := cmp.Diff(want, render.ValuesFromForm(form, posted)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeValues(t *testing.T) {
	form := sampleForm(t)
	got := render.NormalizeValues(form, map[string]any{"S": 42.0, "M": []any{"a"}, "extra": true})
	want := map[string]any{"S": "42", "M": []string{"a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}

	defaults := render.NormalizeValues(form, nil)
	if diff := cmp.Diff(map[string]any{"S": "", "M": []string{}}, defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	form := sampleForm(t)

	errs := render.Validate(form, map[string]any{"S": "", "M": []string{}})
	want := map[string][]string{
		"S": {rules.MessageRequired},
		"M": {rules.MessageRequired},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	errs = render.Validate(form, map[string]any{"S": "Jonathan", "M": []string{"z"}})
	want = map[string][]string{
		"S": {"Field can't have more than 5 characters"},
		"M": {render.MessageUnknownOption},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if errs := render.Validate(form, map[string]any{"S": "Jane", "M": []string{"b"}}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
