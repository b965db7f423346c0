package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/defaults"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// maxBodyBytes bounds intent and submission payloads.
const maxBodyBytes = 1 << 20

// Shortcut is a keyboard binding a client may offer for an editor action.
type Shortcut struct {
	Action    string   `json:"action"`
	Keystroke []string `json:"keystroke"`
}

// Shortcuts lists the default editor key bindings.
var Shortcuts = []Shortcut{
	{Action: "save", Keystroke: []string{"control", "s"}},
	{Action: "hideEditor", Keystroke: []string{"control", `\`}},
	{Action: "preview", Keystroke: []string{"control", "p"}},
}

// SnapshotView is the wire form of a collection snapshot.
type SnapshotView struct {
	Fields     []field.Spec `json:"fields"`
	SelectedID string       `json:"selectedId,omitempty"`
}

// NewSnapshotView converts a snapshot for JSON responses.
func NewSnapshotView(s collection.Snapshot) SnapshotView {
	return SnapshotView{Fields: field.Encode(s.Records), SelectedID: s.SelectedID}
}

type intentResponse struct {
	collection.Result
	State SnapshotView `json:"state"`
}

type submitResponse struct {
	Valid      bool                `json:"valid"`
	Values     map[string]any      `json:"values"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
}

// Messages attached to rejected submissions.
const (
	MessageInvalidSubmission = "Please fix the highlighted fields"
	messageUnexpectedValue   = "Unexpected value for %q"
)

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, NewSnapshotView(s.session.Snapshot()))
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var in collection.Intent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to decode intent"), http.StatusBadRequest)
		return
	}

	res, snapshot, err := s.session.Apply(in)
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to apply intent", goerr.V("type", in.Type)), http.StatusBadRequest)
		return
	}
	writeJSON(w, r, http.StatusOK, intentResponse{Result: res, State: NewSnapshotView(snapshot)})
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, defaults.Derive(s.session.Records()))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	form, ok := s.buildForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, schema.Document(form, r.URL.Query().Get("version")))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	form, ok := s.buildForm(w, r)
	if !ok {
		return
	}
	s.renderPreview(w, r, form, render.RenderOptions{}, http.StatusOK)
}

// renderPreview writes the HTML form for the theme named in the query.
// Action and Method are always pointed at the submit endpoint.
func (s *Server) renderPreview(w http.ResponseWriter, r *http.Request, form model.FormModel, opts render.RenderOptions, status int) {
	query := r.URL.Query()
	cfg, err := s.themes.Config(query.Get("theme"), query.Get("variant"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, html.ErrThemeNotFound) {
			code = http.StatusBadRequest
		}
		handleError(w, r, goerr.Wrap(err, "failed to select theme"), code)
		return
	}

	opts.Action = "/api/submit"
	opts.Method = http.MethodPost
	opts.Theme = cfg
	out, err := s.preview.Render(r.Context(), form, opts)
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to render preview"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.preview.ContentType())
	w.WriteHeader(status)
	w.Write(out) //nolint:errcheck // header already committed
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := s.buildForm(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var values map[string]any
	var submitted []string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	htmlClient := false
	if mediaType == "application/json" {
		raw := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode submission"), http.StatusBadRequest)
			return
		}
		values = render.NormalizeValues(form, raw)
		for key := range raw {
			submitted = append(submitted, key)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to parse form submission"), http.StatusBadRequest)
			return
		}
		values = render.ValuesFromForm(form, r.PostForm)
		for key := range r.PostForm {
			submitted = append(submitted, key)
		}
		htmlClient = acceptsHTML(r)
	}

	mapped := render.MapErrorPayload(form, submissionErrors(form, values, submitted))
	if len(mapped.Fields) == 0 && len(mapped.Form) == 0 {
		writeJSON(w, r, http.StatusOK, submitResponse{Valid: true, Values: values})
		return
	}

	if htmlClient {
		s.renderPreview(w, r, form, render.RenderOptions{
			Values:     values,
			Errors:     mapped.Fields,
			FormErrors: render.MergeFormErrors([]string{MessageInvalidSubmission}, mapped.Form...),
		}, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, r, http.StatusUnprocessableEntity, submitResponse{
		Values:     values,
		Errors:     mapped.Fields,
		FormErrors: mapped.Form,
	})
}

// submissionErrors validates values and reports every submitted key that
// names no input field under its body path, so MapErrorPayload moves it to
// the form level.
func submissionErrors(form model.FormModel, values map[string]any, submitted []string) map[string][]string {
	payload := schema.Validate(form, values)
	for _, key := range submitted {
		if _, ok := values[key]; ok {
			continue
		}
		if payload == nil {
			payload = make(map[string][]string)
		}
		path := "/body/" + key
		payload[path] = append(payload[path], fmt.Sprintf(messageUnexpectedValue, key))
	}
	return payload
}

func acceptsHTML(r *http.Request) bool {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(accept))
		if err == nil && mediaType == "text/html" {
			return true
		}
	}
	return false
}

func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"shortcuts": Shortcuts})
}

func (s *Server) buildForm(w http.ResponseWriter, r *http.Request) (model.FormModel, bool) {
	form, err := model.Build(s.session.Records())
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to build form model"), http.StatusInternalServerError)
		return model.FormModel{}, false
	}
	return form, true
}
