// Package testsupport holds fixtures and helpers shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/field"
	pkgmodel "github.com/goliatone/go-formbuilder/pkg/model"
)

// Records returns a fresh copy of a small form covering every kind:
// title "T", short "S" (required, max 20), long "L" (min 10) and multi "M".
func Records() []field.Record {
	return []field.Record{
		&field.Title{Base: field.Base{ID: "T"}, Title: "Tell Us About Yourself", Subtitle: "Please fill this section"},
		&field.Text{
			Base:        field.Base{ID: "S", Rules: field.Rules{Required: field.Bool(true), MaxLength: field.Int(20)}},
			Heading:     "What's your name",
			Placeholder: "Jane Doe",
		},
		&field.Text{
			Base:    field.Base{ID: "L", Rules: field.Rules{MinLength: field.Int(10)}},
			Long:    true,
			Heading: "Describe yourself",
		},
		&field.Multi{
			Base:     field.Base{ID: "M", Rules: field.Rules{Required: field.Bool(true)}},
			Heading:  "Which traits fit you",
			Options:  []string{"Curious", "Patient", "Bold"},
			Selected: map[int]bool{0: true},
		},
	}
}

// MustCollection returns a collection loaded with records.
func MustCollection(t *testing.T, records []field.Record, opts ...collection.Option) *collection.Collection {
	t.Helper()

	c := collection.New(opts...)
	if err := c.Load(records); err != nil {
		t.Fatalf("load collection: %v", err)
	}
	return c
}

// MustBuildForm builds the form model for records.
func MustBuildForm(t *testing.T, records []field.Record, opts ...pkgmodel.BuilderOption) pkgmodel.FormModel {
	t.Helper()

	form, err := pkgmodel.Build(records, opts...)
	if err != nil {
		t.Fatalf("build form model: %v", err)
	}
	return form
}

// SnapshotRecorder is a collection observer that keeps every snapshot it
// receives. It is safe for concurrent use.
type SnapshotRecorder struct {
	mu        sync.Mutex
	snapshots []collection.Snapshot
}

// Observe implements collection.Observer.
func (r *SnapshotRecorder) Observe(s collection.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

// Snapshots returns the recorded snapshots in arrival order.
func (r *SnapshotRecorder) Snapshots() []collection.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]collection.Snapshot(nil), r.snapshots...)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareJSON decodes both payloads and returns a cmp diff of the results,
// so formatting differences do not count.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()

	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	return cmp.Diff(w, g)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
