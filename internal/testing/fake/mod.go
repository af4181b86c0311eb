// Package fake provides fake implementations of the serde abstractions to
// test the failure paths of the formats.
package fake

import (
	"encoding/json"

	"go.dedis.ch/privote/serde"
	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// Err returns the message expected for a failure of the fakes, prefixed
// with the message of the caller.
func Err(msg string) string {
	return msg + ": " + fakeErr.Error()
}

// ContextEngine is a fake implementation of the serde.ContextEngine. It
// marshals in JSON unless it is configured to fail.
//
// - implements serde.ContextEngine
type ContextEngine struct {
	format serde.Format
	err    error
}

// NewContext returns a new JSON-like context.
func NewContext() serde.Context {
	return serde.NewContext(ContextEngine{format: serde.FormatJSON})
}

// NewContextWithFormat returns a new context for the format.
func NewContextWithFormat(f serde.Format) serde.Context {
	return serde.NewContext(ContextEngine{format: f})
}

// NewBadContext returns a context that fails to marshal and unmarshal.
func NewBadContext() serde.Context {
	return serde.NewContext(ContextEngine{format: serde.FormatJSON, err: fakeErr})
}

// GetFormat implements serde.ContextEngine.
func (ctx ContextEngine) GetFormat() serde.Format {
	return ctx.format
}

// Marshal implements serde.ContextEngine.
func (ctx ContextEngine) Marshal(message interface{}) ([]byte, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}

	return json.Marshal(message)
}

// Unmarshal implements serde.ContextEngine.
func (ctx ContextEngine) Unmarshal(data []byte, msg interface{}) error {
	if ctx.err != nil {
		return ctx.err
	}

	return json.Unmarshal(data, msg)
}

// Message is a fake implementation of a message.
//
// - implements serde.Message
type Message struct {
	Value string
}

// Serialize implements serde.Message.
func (m Message) Serialize(serde.Context) ([]byte, error) {
	return []byte(m.Value), nil
}

// Format is a fake format engine.
//
// - implements serde.FormatEngine
type Format struct {
	err error
	Msg serde.Message
}

// NewBadFormat returns a format that always fails.
func NewBadFormat() Format {
	return Format{err: fakeErr}
}

// Encode implements serde.FormatEngine.
func (f Format) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []byte("{}"), nil
}

// Decode implements serde.FormatEngine.
func (f Format) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.Msg, nil
}
