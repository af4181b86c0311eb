// Package zkp implements the non-interactive zero-knowledge proofs of the
// voting protocol.
//
// Four kinds of proof exist: the unit vector proof attached to every ballot,
// the Chaum-Pedersen equality of discrete logarithms, the proof of correct
// decryption attached to every decryption share and the proof of correct key
// share generation of a committee member. They are made non-interactive with
// the Fiat-Shamir transform over a blake3 transcript that is domain separated
// per kind.
//
// Verification never panics on untrusted input: a malformed or invalid proof
// returns an error wrapping ErrVerification.
package zkp

import "golang.org/x/xerrors"

// ErrVerification is returned when a proof does not verify.
var ErrVerification = xerrors.New("verification error")
