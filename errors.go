package rbxfile

import "fmt"

// ErrInvalidInstanceId reports that a root or child Ref passed to an
// encoder is not present in the Dom.
type ErrInvalidInstanceId struct {
	Ref Ref
}

func (e ErrInvalidInstanceId) Error() string {
	return fmt.Sprintf("rbxfile: instance %s does not exist in Dom", e.Ref)
}

// ErrUnsupportedPropType reports that a property's value type has neither a
// binary encoding nor a default-value fallback.
type ErrUnsupportedPropType struct {
	Class    string
	Property string
	Type     VariantType
}

func (e ErrUnsupportedPropType) Error() string {
	return fmt.Sprintf("rbxfile: unsupported property type %s for %s.%s", e.Type, e.Class, e.Property)
}

// ErrPropTypeMismatch reports that a property's resolved value does not
// match its declared column type.
type ErrPropTypeMismatch struct {
	Class            string
	Property         string
	Expected, Actual VariantType
	InstanceFullName string
}

func (e ErrPropTypeMismatch) Error() string {
	return fmt.Sprintf("rbxfile: %s: property %s.%s expected type %s, got %s",
		e.InstanceFullName, e.Class, e.Property, e.Expected, e.Actual)
}

// ErrUnsupportedPropertyConversion reports that reflection expects a type
// for a property that no coercion rule can produce from the value's actual
// type.
type ErrUnsupportedPropertyConversion struct {
	Class            string
	Property         string
	Expected, Actual VariantType
}

func (e ErrUnsupportedPropertyConversion) Error() string {
	return fmt.Sprintf("rbxfile: cannot convert %s.%s from %s to %s", e.Class, e.Property, e.Actual, e.Expected)
}

// ErrUnknownProperty is returned only when the reflection policy is
// ErrorOnUnknown.
type ErrUnknownProperty struct {
	Class    string
	Property string
}

func (e ErrUnknownProperty) Error() string {
	return fmt.Sprintf("rbxfile: unknown property %s.%s", e.Class, e.Property)
}

// ErrNameMustBeString is returned by the XML and binary decoders when a
// decoded "Name" property is not a string.
type ErrNameMustBeString struct {
	Actual VariantType
}

func (e ErrNameMustBeString) Error() string {
	return fmt.Sprintf("rbxfile: Name property must be a string, got %s", e.Actual)
}

// ErrBadMagic reports that a binary file's leading magic/signature bytes do
// not match the expected header.
type ErrBadMagic struct {
	Got []byte
}

func (e ErrBadMagic) Error() string {
	return fmt.Sprintf("rbxfile: bad magic: % 02X", e.Got)
}

// ErrMalformedHeader reports a structurally invalid header, such as an
// unrecognized version.
type ErrMalformedHeader struct {
	Reason string
}

func (e ErrMalformedHeader) Error() string {
	return fmt.Sprintf("rbxfile: malformed header: %s", e.Reason)
}

// ErrInvalidChunk reports a chunk that failed to decode, named by its
// 4-byte signature and position.
type ErrInvalidChunk struct {
	Index  int
	Sig    string
	Reason string
}

func (e ErrInvalidChunk) Error() string {
	return fmt.Sprintf("rbxfile: chunk #%d %q: %s", e.Index, e.Sig, e.Reason)
}

// ErrTruncated reports that the stream ended in the middle of a chunk or
// record.
type ErrTruncated struct {
	Context string
}

func (e ErrTruncated) Error() string {
	return fmt.Sprintf("rbxfile: truncated: %s", e.Context)
}

// ErrWrongDocVersion reports an XML root element with a missing or
// unsupported version attribute.
type ErrWrongDocVersion struct {
	Got string
}

func (e ErrWrongDocVersion) Error() string {
	return fmt.Sprintf("rbxfile: unsupported document version %q", e.Got)
}

// ErrMissingAttribute reports an XML element lacking a required attribute.
type ErrMissingAttribute struct {
	Element string
	Name    string
}

func (e ErrMissingAttribute) Error() string {
	return fmt.Sprintf("rbxfile: <%s> missing required attribute %q", e.Element, e.Name)
}

// ErrUnexpectedXmlEvent reports a pull-parser event that the decoder's
// current state does not accept.
type ErrUnexpectedXmlEvent struct {
	State string
	Kind  string
}

func (e ErrUnexpectedXmlEvent) Error() string {
	return fmt.Sprintf("rbxfile: unexpected XML event %s while in state %s", e.Kind, e.State)
}
