package collection

import (
	"slices"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/position"
)

// Load replaces the whole sequence with copies of records and clears the
// selection. Records must carry unique, non-empty ids; on error the
// collection is left as it was.
func (c *Collection) Load(records []field.Record) error {
	seen := make(map[string]int, len(records))
	next := make([]field.Record, 0, len(records))
	for idx, rec := range records {
		if field.IsNil(rec) || rec.FieldID() == "" {
			return goerr.Wrap(ErrMissingID, "cannot load fields", goerr.V("index", idx))
		}
		id := rec.FieldID()
		if first, dup := seen[id]; dup {
			return goerr.Wrap(ErrDuplicateID, "cannot load fields",
				goerr.V(field.FieldIDKey, id), goerr.V("index", idx), goerr.V("first_index", first))
		}
		seen[id] = idx
		next = append(next, rec.Clone())
	}

	c.records = next
	c.selected = ""
	c.logger.Debug("fields loaded", "count", len(next))
	c.notify()
	return nil
}

// Select toggles the selection: selecting the selected record clears it,
// any other known id becomes the selection. Unknown ids leave the selection
// unchanged.
func (c *Collection) Select(id string) bool {
	if id != "" && id == c.selected {
		c.selected = ""
		c.notify()
		return true
	}
	if _, ok := c.indexOf(id); !ok {
		c.refuse(OpSelect, id, ReasonNotFound, "")
		return false
	}
	c.selected = id
	c.notify()
	return true
}

// ClearSelection drops the selection, if any.
func (c *Collection) ClearSelection() bool {
	if c.selected == "" {
		return false
	}
	c.selected = ""
	c.notify()
	return true
}

// UpdateField sets a scalar attribute on the record. Attribute names that
// are not legal for the record's kind are ignored.
func (c *Collection) UpdateField(id, name, value string) bool {
	return c.mutate(OpUpdateField, id, func(rec field.Record) (Reason, string) {
		if err := rec.SetAttribute(name, value); err != nil {
			return ReasonInvalidField, name
		}
		return "", ""
	})
}

// UpdateRule sets a validation rule on the record. A value of the wrong type
// is ignored. valueAsNumber and unknown rule names return
// field.ErrUnsupportedRule.
func (c *Collection) UpdateRule(id, name string, value any) (bool, error) {
	if !slices.Contains(field.RuleNames(), name) {
		return false, goerr.Wrap(field.ErrUnsupportedRule, "unknown rule",
			goerr.V(field.FieldIDKey, id), goerr.V(field.RuleNameKey, name))
	}
	if name == field.RuleValueAsNumber {
		return false, goerr.Wrap(field.ErrUnsupportedRule, "rule has no implementation",
			goerr.V(field.FieldIDKey, id), goerr.V(field.RuleNameKey, name))
	}

	applied := c.mutate(OpUpdateRule, id, func(rec field.Record) (Reason, string) {
		if !ruleApplies(rec.Kind(), name) {
			return ReasonInvalidVariant, name
		}
		if err := field.RulesOf(rec).Set(name, value); err != nil {
			return ReasonTypeMismatch, name
		}
		return "", ""
	})
	return applied, nil
}

// AppendOption adds an empty option to a multi record. It is refused while
// any option is still empty.
func (c *Collection) AppendOption(id string) bool {
	return c.mutateMulti(OpAppendOption, id, func(m *field.Multi) (Reason, string) {
		if m.HasEmptyOption() {
			return ReasonEmptyOption, ""
		}
		m.Options = append(m.Options, "")
		return "", ""
	})
}

// UpdateOption replaces the option at index on a multi record.
func (c *Collection) UpdateOption(id string, index int, value string) bool {
	return c.mutateMulti(OpUpdateOption, id, func(m *field.Multi) (Reason, string) {
		if index < 0 || index >= len(m.Options) {
			return ReasonOutOfRange, strconv.Itoa(index)
		}
		m.Options[index] = value
		return "", ""
	})
}

// DeleteOption removes the option at index on a multi record. Later options
// and their selection entries shift down by one.
func (c *Collection) DeleteOption(id string, index int) bool {
	return c.mutateMulti(OpDeleteOption, id, func(m *field.Multi) (Reason, string) {
		options, err := position.RemoveAt(m.Options, index)
		if err != nil {
			return ReasonOutOfRange, strconv.Itoa(index)
		}
		m.Options = options

		if len(m.Selected) > 0 {
			shifted := make(map[int]bool, len(m.Selected))
			for idx, on := range m.Selected {
				switch {
				case idx < index:
					shifted[idx] = on
				case idx > index:
					shifted[idx-1] = on
				}
			}
			m.Selected = shifted
		}
		return "", ""
	})
}

// DeleteField removes the record and clears the selection when it pointed
// at it.
func (c *Collection) DeleteField(id string) bool {
	idx, ok := c.indexOf(id)
	if !ok {
		c.refuse(OpDeleteField, id, ReasonNotFound, "")
		return false
	}
	next, err := position.RemoveAt(c.records, idx)
	if err != nil {
		c.refuse(OpDeleteField, id, ReasonOutOfRange, err.Error())
		return false
	}
	c.records = next
	if c.selected == id {
		c.selected = ""
	}
	c.notify()
	return true
}

// InsertFieldAfter creates a record of kind from the template catalog and
// places it right after afterID. End, an empty afterID or an id that is not
// in the collection append at the end. The new record id is returned.
func (c *Collection) InsertFieldAfter(kind field.Kind, afterID string) (string, error) {
	rec, err := field.NewFromTemplate(kind, c.newID)
	if err != nil {
		return "", err
	}
	id := rec.FieldID()
	if _, taken := c.indexOf(id); taken {
		return "", goerr.Wrap(ErrDuplicateID, "generated id already in use", goerr.V(field.FieldIDKey, id))
	}

	at := len(c.records)
	if afterID != End {
		if idx, ok := c.indexOf(afterID); ok {
			at = idx + 1
		}
	}
	next, err := position.InsertAt(c.records, at, rec)
	if err != nil {
		return "", err
	}
	c.records = next
	c.notify()
	return id, nil
}

// MoveField moves the record fromID to the position currently held by toID.
// Unknown ids leave the order unchanged.
func (c *Collection) MoveField(fromID, toID string) bool {
	from, ok := c.indexOf(fromID)
	if !ok {
		c.refuse(OpReorder, fromID, ReasonNotFound, "from")
		return false
	}
	to, ok := c.indexOf(toID)
	if !ok {
		c.refuse(OpReorder, toID, ReasonNotFound, "to")
		return false
	}
	if from == to {
		return true
	}
	next, err := position.Move(c.records, from, to)
	if err != nil {
		c.refuse(OpReorder, fromID, ReasonOutOfRange, err.Error())
		return false
	}
	c.records = next
	c.notify()
	return true
}

// mutate clones the record, applies fn and commits the clone only when fn
// reports no refusal reason.
func (c *Collection) mutate(op, id string, fn func(field.Record) (Reason, string)) bool {
	idx, ok := c.indexOf(id)
	if !ok {
		c.refuse(op, id, ReasonNotFound, "")
		return false
	}
	draft := c.records[idx].Clone()
	if reason, detail := fn(draft); reason != "" {
		c.refuse(op, id, reason, detail)
		return false
	}
	c.records[idx] = draft
	c.notify()
	return true
}

func (c *Collection) mutateMulti(op, id string, fn func(*field.Multi) (Reason, string)) bool {
	return c.mutate(op, id, func(rec field.Record) (Reason, string) {
		m, ok := rec.(*field.Multi)
		if !ok {
			return ReasonInvalidVariant, string(rec.Kind())
		}
		return fn(m)
	})
}

func ruleApplies(kind field.Kind, name string) bool {
	switch kind {
	case field.KindShort, field.KindLong:
		return true
	case field.KindMulti:
		return name == field.RuleRequired
	}
	return false
}
