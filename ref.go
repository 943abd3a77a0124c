package rbxfile

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Ref is an opaque, process-unique identity for an Instance. The zero Ref is
// the distinguished "null" value; every other Ref is universally unique and
// stable for the lifetime of the process that generated it.
//
// Refs are never serialized verbatim: both codecs remap them to small
// integers (the "referent") when writing, and allocate fresh Refs when
// reading.
type Ref [16]byte

// IsNull reports whether r is the null reference.
func (r Ref) IsNull() bool {
	return r == Ref{}
}

// String returns a hex representation of the reference, or "null".
func (r Ref) String() string {
	if r.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%032X", [16]byte(r))
}

// NewRef generates a new, universally unique Ref. It panics if the system
// entropy source fails, which is the same failure mode as crypto/rand
// itself.
func NewRef() Ref {
	var r Ref
	if _, err := io.ReadFull(rand.Reader, r[:]); err != nil {
		panic(err)
	}
	// Guarantee the result is never the null Ref, however unlikely.
	if r.IsNull() {
		r[0] = 1
	}
	return r
}
