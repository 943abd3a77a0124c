// Package rbxtest provides small helpers shared by this module's tests, kept
// out of the importable codec packages so test-only dependencies never leak
// into production builds.
package rbxtest

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a content-addressed digest of b, formatted as hex. It lets
// determinism tests assert that repeated encodes of the same Dom produce
// byte-identical output without checking in full golden files.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
