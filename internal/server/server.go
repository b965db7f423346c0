// Package server exposes an editor session over HTTP: intents mutate the
// shared collection, snapshots stream over a websocket and the current
// fields can be previewed, exported and submitted.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
)

// Server routes editor requests to a Session.
type Server struct {
	router  *chi.Mux
	session *Session
	themes  *html.Themes
	preview *html.Renderer
	logger  *slog.Logger

	records []field.Record
	newID   field.IDGenerator
	origins []string
}

type Option func(*Server)

// WithLogger sets the logger used for access logs and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithThemes sets the themes available to the preview endpoint.
func WithThemes(themes *html.Themes) Option {
	return func(s *Server) {
		s.themes = themes
	}
}

// WithHTMLRenderer overrides the preview renderer.
func WithHTMLRenderer(renderer *html.Renderer) Option {
	return func(s *Server) {
		s.preview = renderer
	}
}

// WithRecords loads records into the session at startup.
func WithRecords(records []field.Record) Option {
	return func(s *Server) {
		s.records = records
	}
}

// WithIDGenerator overrides the identifier generator for inserted fields.
func WithIDGenerator(gen field.IDGenerator) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// WithOriginPatterns sets the hosts allowed to open the snapshot websocket
// from another origin.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, patterns...)
	}
}

// New constructs the server and loads the initial records.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.themes == nil {
		themes, err := html.NewThemes()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure themes")
		}
		s.themes = themes
	}
	if s.preview == nil {
		renderer, err := html.New(html.WithInlineStyles(false))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure preview renderer")
		}
		s.preview = renderer
	}

	s.session = NewSession(s.logger, collection.WithIDGenerator(s.newID))
	if s.records != nil {
		if err := s.session.Load(s.records); err != nil {
			return nil, goerr.Wrap(err, "failed to load records")
		}
	}

	s.routes()
	return s, nil
}

// Session returns the editor session served by s.
func (s *Server) Session() *Session {
	return s.session
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", s.handleFields)
		r.Post("/intents", s.handleIntent)
		r.Get("/defaults", s.handleDefaults)
		r.Get("/schema", s.handleSchema)
		r.Get("/preview", s.handlePreview)
		r.Post("/submit", s.handleSubmit)
		r.Get("/shortcuts", s.handleShortcuts)
		r.Get("/ws", s.handleWebsocket)
	})

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))
}

func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// handleError logs err and writes it as a JSON error body.
func handleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if err == nil {
		return
	}
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), err, "HTTP error", "status", status)
	} else {
		logging.From(r.Context()).Warn("HTTP error", "status", status, "error", err.Error())
	}

	data, _ := json.Marshal(errorResponse{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

type errorResponse struct {
	Error string `json:"error"`
}
