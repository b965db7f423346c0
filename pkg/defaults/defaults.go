// Package defaults derives the initial value map handed to the submission
// form: one entry per record, keyed by record id.
package defaults

import (
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// Derive returns "" for title, short and long records and an empty
// []string for multi records. Empty input yields an empty, non-nil map.
func Derive(records []field.Record) map[string]any {
	out := make(map[string]any, len(records))
	for _, rec := range records {
		out[rec.FieldID()] = Zero(rec.Kind())
	}
	return out
}

// Zero returns the initial value for a kind.
func Zero(kind field.Kind) any {
	if kind.Output() == field.OutputStringArray {
		return []string{}
	}
	return ""
}

// Complete returns a copy of values with every record id present. Missing
// entries take their zero value; entries for unknown ids are dropped.
func Complete(records []field.Record, values map[string]any) map[string]any {
	out := Derive(records)
	for id := range out {
		if v, ok := values[id]; ok && v != nil {
			out[id] = v
		}
	}
	return out
}
