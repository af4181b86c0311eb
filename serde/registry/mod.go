// Package registry defines the format registry mechanism.
//
// It also provides a default implementation that always returns a format,
// falling back to an empty one which fails every request.
package registry

import (
	"go.dedis.ch/privote/serde"
)

// Registry is an interface to register and get format engines for a specific
// format.
type Registry interface {
	// Register takes a format and its engine and it registers them so that the
	// engine can be looked up later.
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format.
	Get(serde.Format) serde.FormatEngine

	// Formats returns the registered formats in alphabetical order.
	Formats() []serde.Format
}
