// Package json implements the context engine for the JSON format.
package json

import (
	"encoding/json"

	"go.dedis.ch/privote/serde"
)

// jsonEngine is a context engine to marshal and unmarshal in JSON format.
//
// - implements serde.ContextEngine
type jsonEngine struct {
	indent bool
}

// NewContext returns a JSON context.
func NewContext() serde.Context {
	return serde.NewContext(jsonEngine{})
}

// NewIndentContext returns a JSON context producing human readable
// documents, as written by the command line.
func NewIndentContext() serde.Context {
	return serde.NewContext(jsonEngine{indent: true})
}

// GetFormat implements serde.ContextEngine. It returns the JSON format name.
func (e jsonEngine) GetFormat() serde.Format {
	return serde.FormatJSON
}

// Marshal implements serde.ContextEngine. It returns the bytes of the message
// marshaled in JSON format.
func (e jsonEngine) Marshal(m interface{}) ([]byte, error) {
	if e.indent {
		return json.MarshalIndent(m, "", "  ")
	}

	return json.Marshal(m)
}

// Unmarshal implements serde.ContextEngine. It populates the message using
// the JSON format definition.
func (e jsonEngine) Unmarshal(data []byte, m interface{}) error {
	return json.Unmarshal(data, m)
}
