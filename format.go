package rbxfile

import (
	"bufio"
	"errors"
	"io"
)

// Format encodes and decodes a single file format for a Dom.
type Format interface {
	// Name returns the name of the format.
	Name() string

	// Magic returns a magic prefix that identifies the format. The string
	// may contain "?" wildcards that each match any one byte.
	Magic() string

	// Decode decodes data from r into a Dom.
	Decode(r io.Reader) (dom *Dom, roots []Ref, err error)

	// Encode encodes dom's roots (or, if roots is nil, dom.Roots()) to w.
	Encode(w io.Writer, dom *Dom, roots []Ref) (err error)
}

var formats []Format

// RegisterFormat registers a file format for use by DetectFormat and the
// package-level Decode.
func RegisterFormat(format Format) {
	formats = append(formats, format)
}

func matchMagic(magic string, b []byte) bool {
	if len(magic) != len(b) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// ErrFormat is returned when a format cannot be determined or found.
var ErrFormat = errors.New("rbxfile: unknown format")

// DetectFormat peeks at the header of r and returns the registered Format
// whose magic matches, or ErrFormat if none match. r is consumed only by the
// peek; a caller can still pass the returned *bufio.Reader on to Decode.
func DetectFormat(r io.Reader) (format Format, br *bufio.Reader, err error) {
	if b, ok := r.(*bufio.Reader); ok {
		br = b
	} else {
		br = bufio.NewReader(r)
	}

	for _, f := range formats {
		magic := f.Magic()
		header, err := br.Peek(len(magic))
		if err == nil && matchMagic(magic, header) {
			return f, br, nil
		}
	}
	return nil, br, ErrFormat
}

// Decode detects the format of r by its header and decodes it. Only
// registered formats are detected.
func Decode(r io.Reader) (dom *Dom, roots []Ref, err error) {
	format, br, err := DetectFormat(r)
	if err != nil {
		return nil, nil, err
	}
	return format.Decode(br)
}

// Encode encodes dom to w using the format named by name. Only registered
// formats can be encoded to.
func Encode(w io.Writer, name string, dom *Dom, roots []Ref) (err error) {
	for _, f := range formats {
		if f.Name() == name {
			return f.Encode(w, dom, roots)
		}
	}
	return ErrFormat
}
