package collection

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

// IntentType names an editor gesture.
type IntentType string

const (
	IntentInsert       IntentType = "insert"
	IntentReorder      IntentType = "reorder"
	IntentSelect       IntentType = "select"
	IntentUpdateField  IntentType = "update-field"
	IntentUpdateRule   IntentType = "update-rule"
	IntentAppendOption IntentType = "append-option"
	IntentUpdateOption IntentType = "update-option"
	IntentDeleteOption IntentType = "delete-option"
	IntentDeleteField  IntentType = "delete-field"
)

// Intent is the wire form of an editor gesture. Drag and drop collaborators
// send insert {templateKind, afterId} and reorder {fromId, toId}; the
// property panel sends the remaining types keyed by id.
type Intent struct {
	Type         IntentType `json:"type"`
	ID           string     `json:"id,omitempty"`
	TemplateKind string     `json:"templateKind,omitempty"`
	AfterID      string     `json:"afterId,omitempty"`
	FromID       string     `json:"fromId,omitempty"`
	ToID         string     `json:"toId,omitempty"`
	Name         string     `json:"name,omitempty"`
	Index        int        `json:"index,omitempty"`
	Value        any        `json:"value,omitempty"`
}

// Result reports the outcome of Apply. A refused operation is not an error:
// Applied is false and Diagnostic explains why.
type Result struct {
	Applied    bool        `json:"applied"`
	ID         string      `json:"id,omitempty"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Apply dispatches an intent to the matching operation. Errors are reserved
// for malformed intents, unknown kinds and unsupported rules.
func (c *Collection) Apply(in Intent) (Result, error) {
	c.last = nil
	var (
		res Result
		err error
	)

	switch in.Type {
	case IntentInsert:
		kind, kerr := field.ParseKind(in.TemplateKind)
		if kerr != nil {
			return Result{}, kerr
		}
		after := in.AfterID
		if after == "" {
			after = End
		}
		res.ID, err = c.InsertFieldAfter(kind, after)
		res.Applied = err == nil
	case IntentReorder:
		res.ID = in.FromID
		res.Applied = c.MoveField(in.FromID, in.ToID)
	case IntentSelect:
		res.ID = in.ID
		res.Applied = c.Select(in.ID)
	case IntentUpdateField:
		res.ID = in.ID
		value, ok := in.Value.(string)
		if !ok {
			c.refuse(OpUpdateField, in.ID, ReasonTypeMismatch, in.Name)
			break
		}
		res.Applied = c.UpdateField(in.ID, in.Name, value)
	case IntentUpdateRule:
		res.ID = in.ID
		res.Applied, err = c.UpdateRule(in.ID, in.Name, in.Value)
	case IntentAppendOption:
		res.ID = in.ID
		res.Applied = c.AppendOption(in.ID)
	case IntentUpdateOption:
		res.ID = in.ID
		value, ok := in.Value.(string)
		if !ok {
			c.refuse(OpUpdateOption, in.ID, ReasonTypeMismatch, "value")
			break
		}
		res.Applied = c.UpdateOption(in.ID, in.Index, value)
	case IntentDeleteOption:
		res.ID = in.ID
		res.Applied = c.DeleteOption(in.ID, in.Index)
	case IntentDeleteField:
		res.ID = in.ID
		res.Applied = c.DeleteField(in.ID)
	default:
		return Result{}, goerr.Wrap(ErrUnknownIntent, "cannot apply intent", goerr.V("type", string(in.Type)))
	}

	if err != nil {
		return Result{}, err
	}
	if !res.Applied && c.last != nil {
		diag := *c.last
		res.Diagnostic = &diag
	}
	return res, nil
}
