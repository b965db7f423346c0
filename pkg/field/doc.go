// Package field defines the form-field records edited by the builder. A
// record is one of four kinds (title, short, long, multi) modelled as a
// sealed sum type: *Title, *Text (short and long) and *Multi. Every record
// carries a stable identifier and a Rules value describing its validation
// constraints. Match dispatches over the variants and takes one handler per
// variant as a positional argument, so introducing a new variant breaks every
// call site at compile time instead of falling through silently.
//
// Records are created from the template catalog (NewFromTemplate) or decoded
// from the Spec wire shape used by load sources.
package field
