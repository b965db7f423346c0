package source

import (
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// Sample form identifiers.
const (
	SampleTitleID = "ID_TITLE"
	SampleLongID  = "ID_LONG"
	SampleShortID = "ID_SHORT"
	SampleMultiID = "ID_MULTI"
)

// SampleDocument is the form the editor opens with when no document is
// given.
const SampleDocument = `{
  "fields": [
    {
      "id": "ID_TITLE",
      "kind": "title",
      "title": "Tell Us About Yourself",
      "subtitle": "Please fill this section and tell us about your experience",
      "rules": {}
    },
    {
      "id": "ID_LONG",
      "kind": "long",
      "heading": "Tell us your experiences!",
      "placeholder": "I'm familiar with many technologies such as...",
      "rules": {}
    },
    {
      "id": "ID_SHORT",
      "kind": "short",
      "heading": "What's your name",
      "placeholder": "Joseph Yusmita",
      "rules": {"required": true}
    },
    {
      "id": "ID_MULTI",
      "kind": "multi",
      "heading": "Which of these traits best describe you?",
      "options": ["A. Moody", "B. Expressive", "C. Calm and Collected"],
      "selected": {"1": true},
      "rules": {}
    }
  ]
}
`

// Sample decodes SampleDocument.
func Sample() []field.Record {
	records, err := Decode([]byte(SampleDocument), FormatJSON)
	if err != nil {
		panic(err)
	}
	return records
}
