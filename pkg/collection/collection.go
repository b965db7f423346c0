// Package collection implements the editable form document: an ordered
// sequence of field records plus the selection cross-reference, and every
// mutation the editor can apply to them.
//
// A Collection is not safe for concurrent use. Each operation runs to
// completion synchronously; callers that accept input from several
// goroutines serialise access themselves.
package collection

import (
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

// End is the drop target that appends a new field after the last record.
const End = "collection-end"

// Observer receives a fresh snapshot after every applied mutation.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Snapshot)

// Observe implements Observer.
func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used for refused operations. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides the identifier generator used by
// InsertFieldAfter.
func WithIDGenerator(gen field.IDGenerator) Option {
	return func(c *Collection) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithObserver registers an observer notified after every applied mutation.
func WithObserver(observer Observer) Option {
	return func(c *Collection) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithDiagnostics registers a callback receiving every refused operation.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(c *Collection) {
		c.diagnostics = fn
	}
}

// Collection owns the record sequence and the selected record id.
type Collection struct {
	records  []field.Record
	selected string

	logger      *slog.Logger
	newID       field.IDGenerator
	observers   []Observer
	diagnostics func(Diagnostic)

	last *Diagnostic
}

// New constructs an empty collection.
func New(opts ...Option) *Collection {
	c := &Collection{
		logger: slog.Default(),
		newID:  field.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Snapshot is a read-only copy of the collection state. Records are deep
// copies; mutating them does not affect the collection.
type Snapshot struct {
	Records    []field.Record
	SelectedID string
}

// Selected resolves the selection against the snapshot's records.
func (s Snapshot) Selected() (field.Record, bool) {
	if s.SelectedID == "" {
		return nil, false
	}
	for _, rec := range s.Records {
		if rec.FieldID() == s.SelectedID {
			return rec, true
		}
	}
	return nil, false
}

// Snapshot returns a deep copy of the current state.
func (c *Collection) Snapshot() Snapshot {
	return Snapshot{Records: c.Records(), SelectedID: c.selected}
}

// Records returns deep copies of the records in display order.
func (c *Collection) Records() []field.Record {
	out := make([]field.Record, len(c.records))
	for idx, rec := range c.records {
		out[idx] = rec.Clone()
	}
	return out
}

// Len reports the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Find returns a copy of the record with the given id.
func (c *Collection) Find(id string) (field.Record, bool) {
	idx, ok := c.indexOf(id)
	if !ok {
		return nil, false
	}
	return c.records[idx].Clone(), true
}

// Selected returns a copy of the selected record. The selection is stored as
// an id, so the result always reflects the latest committed mutation.
func (c *Collection) Selected() (field.Record, bool) {
	if c.selected == "" {
		return nil, false
	}
	return c.Find(c.selected)
}

// SelectedID returns the selected record id, or "" when nothing is selected.
func (c *Collection) SelectedID() string {
	return c.selected
}

// indexOf is the only lookup used by mutations.
func (c *Collection) indexOf(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for idx, rec := range c.records {
		if rec.FieldID() == id {
			return idx, true
		}
	}
	return 0, false
}

func (c *Collection) notify() {
	if len(c.observers) == 0 {
		return
	}
	for _, observer := range c.observers {
		observer.Observe(c.Snapshot())
	}
}
