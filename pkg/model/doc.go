// Package model defines the typed form model consumed by renderers and the
// schema exporter. Build turns the editor's field records into a FormModel:
// one Field per record keyed by record id, constraint descriptions produced
// by the rules package (kind plus string params "value" and "message") and
// the default values map produced by the defaults package. Title records
// become display-only fields that renderers show as headings.
package model
