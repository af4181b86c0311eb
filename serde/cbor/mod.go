// Package cbor implements the context engine for the CBOR format on top of
// fxamacker/cbor. Format definitions are shared with the JSON format: the
// CBOR encoder falls back to the json struct tags.
package cbor

import (
	"github.com/fxamacker/cbor/v2"
	"go.dedis.ch/privote/serde"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// cborEngine is a context engine to marshal and unmarshal in the
// deterministic CBOR encoding.
//
// - implements serde.ContextEngine
type cborEngine struct{}

// NewContext returns a CBOR context.
func NewContext() serde.Context {
	return serde.NewContext(cborEngine{})
}

// GetFormat implements serde.ContextEngine. It returns the CBOR format name.
func (cborEngine) GetFormat() serde.Format {
	return serde.FormatCBOR
}

// Marshal implements serde.ContextEngine.
func (cborEngine) Marshal(m interface{}) ([]byte, error) {
	return encMode.Marshal(m)
}

// Unmarshal implements serde.ContextEngine.
func (cborEngine) Unmarshal(data []byte, m interface{}) error {
	return decMode.Unmarshal(data, m)
}
