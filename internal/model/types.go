package model

// FieldType describes the value shape a field submits.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeArray  FieldType = "array"
)

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
)

// ValidationRule represents a single validation constraint applied to a field.
// Length limits encode their threshold in Params["value"]; every rule carries
// the user facing text in Params["message"]. Values are strings to keep JSON
// snapshots stable.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models one entry of the rendered form. Name is the record id and is
// the key used for defaults, submitted values and errors.
type Field struct {
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Preselected []string          `json:"preselected,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Display reports whether the field only renders text and collects no input.
func (f Field) Display() bool {
	return f.Kind == "title"
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	ID          string            `json:"id"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Defaults    map[string]any    `json:"defaults"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field returns the field named name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
