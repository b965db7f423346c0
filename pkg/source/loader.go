package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

// maxDocumentSize caps remote payloads.
const maxDocumentSize = 4 << 20

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the fs.FS used by FS sources.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources with a custom client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithHTTPFallback enables URL sources with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(l *Loader) {
		if l.http == nil {
			l.http = &http.Client{Timeout: timeout}
		}
	}
}

// WithFormat forces a format instead of inferring it from the location.
func WithFormat(format Format) Option {
	return func(l *Loader) {
		l.format = format
	}
}

// Loader reads form documents from files, an fs.FS or HTTP. URL sources are
// disabled unless an HTTP client is configured.
type Loader struct {
	fs     fs.FS
	http   *http.Client
	format Format
}

// NewLoader constructs a Loader.
func NewLoader(options ...Option) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads src and decodes it into records.
func (l *Loader) Load(ctx context.Context, src Source) ([]field.Record, error) {
	if src == nil {
		return nil, errors.New("source loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data   []byte
		format = l.format
		err    error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("source loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("source loader: http support disabled")
		}
		var contentType string
		data, contentType, err = l.fetch(ctx, src.Location())
		if format == "" {
			format = formatFromContentType(contentType)
		}
	default:
		err = fmt.Errorf("source loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("source loader: read %s: %w", src.Location(), err)
	}

	if format == "" {
		format = FormatFromPath(src.Location())
	}
	return Decode(data, format)
}

// LoadFile is shorthand for NewLoader().Load(ctx, FromFile(path)).
func LoadFile(ctx context.Context, path string) ([]field.Record, error) {
	return NewLoader().Load(ctx, FromFile(path))
}

// LoadFS reads name from files.
func LoadFS(ctx context.Context, files fs.FS, name string) ([]field.Record, error) {
	return NewLoader(WithFileSystem(files)).Load(ctx, FromFS(name))
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json, application/yaml, application/toml")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func formatFromContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case strings.HasSuffix(mediaType, "json"):
		return FormatJSON
	case strings.HasSuffix(mediaType, "yaml"):
		return FormatYAML
	case strings.HasSuffix(mediaType, "toml"):
		return FormatTOML
	}
	return ""
}
