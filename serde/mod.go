// Package serde defines the serialization and deserialization mechanisms of
// the messages exchanged with the reporting layers: committee key files and
// vote plan statuses.
//
// A message implements Serialize and looks up the format engine registered
// for the format of the context, so that the encoding is selected at runtime
// by importing the engine packages.
package serde

// Format is the identifier type of a format implementation.
type Format string

const (
	// FormatJSON is the identifier for JSON formats.
	FormatJSON Format = "JSON"

	// FormatCBOR is the identifier for CBOR formats.
	FormatCBOR Format = "CBOR"
)

// Message is the interface that a message must implement.
type Message interface {
	// Serialize serializes the object by complying to the context format.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a message.
type Factory interface {
	// Deserialize returns the message from the data.
	Deserialize(ctx Context, data []byte) (Message, error)
}

// FormatEngine is the interface to implement to support a format for a
// message.
type FormatEngine interface {
	// Encode returns the bytes of the message according to the format.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message from the bytes.
	Decode(ctx Context, data []byte) (Message, error)
}
