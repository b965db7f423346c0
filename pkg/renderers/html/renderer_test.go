package html_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func renderForm(t *testing.T, form model.FormModel, options render.RenderOptions, opts ...html.Option) string {
	t.Helper()

	renderer, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(testsupport.Context(), form, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func assertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, output)
		}
	}
}

func TestRendererIdentity(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" {
		t.Fatalf("name = %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", renderer.ContentType())
	}
}

func TestRendererRendersEveryKind(t *testing.T) {
	form := testsupport.MustBuildForm(t, testsupport.Records())

	output := renderForm(t, form, render.RenderOptions{Action: "/api/submit"})

	assertContains(t, output,
		`<form class="fb-form" id="form" action="/api/submit" method="post" novalidate`,
		`<h2>Tell Us About Yourself</h2>`,
		`<p>Please fill this section</p>`,
		`<input type="text" id="fb-S" name="S" value="" placeholder="Jane Doe" required maxlength="20">`,
		`<textarea id="fb-L" name="L" minlength="10"></textarea>`,
		`<input type="checkbox" name="M" value="Curious" checked> Curious`,
		`<input type="checkbox" name="M" value="Patient"> Patient`,
		`<button type="submit">Submit</button>`,
		`<style>`,
	)
}

func TestRendererFieldOrderFollowsForm(t *testing.T) {
	form := testsupport.MustBuildForm(t, testsupport.Records())
	output := renderForm(t, form, render.RenderOptions{})

	positions := make([]int, 0, 4)
	for _, marker := range []string{`id="T"`, `data-field="S"`, `data-field="L"`, `data-field="M"`} {
		idx := strings.Index(output, marker)
		if idx < 0 {
			t.Fatalf("marker %q missing", marker)
		}
		positions = append(positions, idx)
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			t.Fatalf("fields rendered out of order: %v", positions)
		}
	}
}

func TestRendererAppliesValuesAndErrors(t *testing.T) {
	form := testsupport.MustBuildForm(t, testsupport.Records())

	output := renderForm(t, form, render.RenderOptions{
		Method: "GET",
		Values: map[string]any{
			"S": "Ada",
			"L": "short",
			"M": []string{"Bold"},
		},
		Errors: map[string][]string{
			"L": {"too short"},
		},
		FormErrors: []string{"please review the form"},
	})

	assertContains(t, output,
		`method="get"`,
		`name="S" value="Ada"`,
		`minlength="10">short</textarea>`,
		`<input type="checkbox" name="M" value="Bold" checked> Bold`,
		`<input type="checkbox" name="M" value="Curious"> Curious`,
		`fb-field--long fb-field--invalid`,
		`<p class="fb-error">too short</p>`,
		`<li>please review the form</li>`,
	)
	assertNotContains(t, output, `action=`)
}

func TestRendererSanitizesMarkup(t *testing.T) {
	records := []field.Record{
		&field.Title{Base: field.Base{ID: "T"}, Title: `<script>alert(1)</script><b>Hello</b>`},
		&field.Text{Base: field.Base{ID: "S"}, Heading: "Name", Placeholder: `"><img src=x onerror=alert(1)>`},
	}
	form := testsupport.MustBuildForm(t, records)

	output := renderForm(t, form, render.RenderOptions{
		Values: map[string]any{"S": `</textarea><script>x()</script>`},
	})

	assertContains(t, output, `<h2><b>Hello</b></h2>`, `&lt;script&gt;x()&lt;/script&gt;`)
	assertNotContains(t, output, `<script>`, `<img`)
}

func TestRendererThemeAttributes(t *testing.T) {
	themes, err := html.NewThemes()
	if err != nil {
		t.Fatalf("new themes: %v", err)
	}
	cfg, err := themes.Config("", "dark")
	if err != nil {
		t.Fatalf("theme config: %v", err)
	}

	form := testsupport.MustBuildForm(t, testsupport.Records())
	output := renderForm(t, form, render.RenderOptions{Theme: cfg}, html.WithInlineStyles(false))

	assertContains(t, output,
		`data-theme="formbuilder"`,
		`data-theme-variant="dark"`,
		`--fb-accent: #818cf8`,
		`<link rel="stylesheet" href="/assets/formbuilder.css">`,
	)
	assertNotContains(t, output, `<style>`)
}

func TestRendererCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tpl": {Data: []byte(`{% for field in fields %}[{{ field.name }}:{{ field.kind }}]{% endfor %}`)},
	}
	form := testsupport.MustBuildForm(t, testsupport.Records())

	output := renderForm(t, form, render.RenderOptions{}, html.WithTemplatesFS(files), html.WithSubmitLabel("Send"))
	if output != "[T:title][S:short][L:long][M:multi]" {
		t.Fatalf("custom template output = %q", output)
	}
}
