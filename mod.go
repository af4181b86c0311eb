// Package privote implements the cryptographic core of a private voting
// system: homomorphic ElGamal ballots, zero-knowledge proofs of their
// validity and the threshold-decrypted tally of a vote plan.
package privote

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the Prometheus collectors created in the packages
// of the module. A caller registers them in its own registry.
var PromCollectors []prometheus.Collector
