package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	textAreas    []string
	multiIdx     [][]int
	infoMessages []string
	inputCfgs    []InputConfig
	selectCfgs   []SelectConfig
	inputPos     int
	textPos      int
	multiPos     int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestFill_CollectsEveryKind(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada"},
		textAreas: []string{"I build analytical engines"},
		multiIdx:  [][]int{{0, 2}},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := testsupport.MustBuildForm(t, testsupport.Records())

	got, err := r.Fill(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := Submission{Values: map[string]any{
		"S": "Ada",
		"L": "I build analytical engines",
		"M": []string{"Curious", "Bold"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) == 0 || driver.infoMessages[0] != "Tell Us About Yourself\nPlease fill this section" {
		t.Fatalf("expected title banner first, got %q", driver.infoMessages)
	}
	if driver.inputCfgs[0].Help != "e.g. Jane Doe" || !strings.HasSuffix(driver.inputCfgs[0].Message, " *") {
		t.Fatalf("unexpected input prompt: %+v", driver.inputCfgs[0])
	}
	if diff := cmp.Diff([]int{0}, driver.selectCfgs[0].Defaults); diff != "" {
		t.Fatalf("preselected defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_RepromptsUntilRulesPass(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Ada"},
		textAreas: []string{"short", ""},
		multiIdx:  [][]int{{}, {1}},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := testsupport.MustBuildForm(t, testsupport.Records())

	got, err := r.Fill(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got.Values["L"] != "" {
		t.Fatalf("optional long field should accept empty text, got %q", got.Values["L"])
	}

	wantInfo := []string{
		"Tell Us About Yourself\nPlease fill this section",
		"✗ What's your name *: Field can't be empty",
		"✗ Describe yourself: Field must have at least 10 characters",
		"✗ Which traits fit you *: Field can't be empty",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_MaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", ""}}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := testsupport.MustBuildForm(t, testsupport.Records())

	_, err = r.Fill(context.Background(), form, render.RenderOptions{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected 2 attempts, got %d", driver.inputPos)
	}
}

func TestFill_PrefillAndServerErrors(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Bob"},
		textAreas: []string{""},
		multiIdx:  [][]int{{2}},
	}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := testsupport.MustBuildForm(t, testsupport.Records())

	_, err = r.Fill(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"S": "Bobby", "M": []string{"Bold"}},
		Errors: map[string][]string{"S": {"name already taken"}},
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.inputCfgs[0].Default != "Bobby" {
		t.Fatalf("expected prefilled default, got %q", driver.inputCfgs[0].Default)
	}
	if diff := cmp.Diff([]int{2}, driver.selectCfgs[0].Defaults); diff != "" {
		t.Fatalf("prefilled selection mismatch (-want +got):\n%s", diff)
	}
	if driver.infoMessages[1] != "! name already taken" {
		t.Fatalf("expected server error before prompt, got %q", driver.infoMessages)
	}
}

func TestRender_OutputFormats(t *testing.T) {
	form := testsupport.MustBuildForm(t, testsupport.Records())

	tests := []struct {
		format      OutputFormat
		contentType string
		want        string
	}{
		{OutputFormatJSON, "application/json", `{"L":"","M":["Curious","Bold"],"S":"Ada"}`},
		{OutputFormatFormURLEncoded, "application/x-www-form-urlencoded", "L=&M=Curious&M=Bold&S=Ada"},
		{OutputFormatPrettyText, "text/plain", "L=\nM[0]=Curious\nM[1]=Bold\nS=Ada\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			driver := &stubDriver{
				inputs:    []string{"Ada"},
				textAreas: []string{""},
				multiIdx:  [][]int{{0, 2}},
			}
			r, err := New(WithPromptDriver(driver), WithOutputFormat(tt.format))
			if err != nil {
				t.Fatalf("new renderer: %v", err)
			}
			if r.ContentType() != tt.contentType {
				t.Fatalf("content type = %q", r.ContentType())
			}
			out, err := r.Render(context.Background(), form, render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if string(out) != tt.want {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRender_SubmitTransformerAndDriverErrors(t *testing.T) {
	form := testsupport.MustBuildForm(t, testsupport.Records())

	driver := &stubDriver{inputs: []string{"Ada"}, textAreas: []string{""}, multiIdx: [][]int{{0}}}
	r, _ := New(WithPromptDriver(driver), WithSubmitTransformer(func(map[string]any) (map[string]any, error) {
		return nil, errors.New("boom")
	}))
	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected transformer error, got %v", err)
	}

	r, _ = New(WithPromptDriver(&stubDriver{}))
	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error to propagate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, form, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestState(t *testing.T) {
	prefill := map[string]any{"M": []string{"a"}}
	state := NewState(prefill, map[string][]string{"S": {"bad"}})

	prefill["M"].([]string)[0] = "mutated"
	if v, _ := state.GetValue("M"); v.([]string)[0] != "a" {
		t.Fatalf("state shares prefill slices")
	}

	state.SetValue("S", "ok")
	if len(state.ErrorsFor("S")) != 0 {
		t.Fatalf("setting a value should clear its errors")
	}
	if ParseOutputFormat("pretty") != OutputFormatPrettyText || ParseOutputFormat("xml") != OutputFormatJSON {
		t.Fatalf("unexpected output format parsing")
	}
}
