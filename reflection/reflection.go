// Package reflection implements the reflection-lookup layer consumed by the
// binary and xml codecs: mapping a (class, property) pair to its canonical
// and serialized descriptors, and a class to its tags and default property
// values.
//
// The database itself is treated as a frozen, read-only lookup service; this
// package does not generate one from a vendor API dump (that is an external
// collaborator's concern, out of scope here). Callers construct a Database
// value directly, or leave it nil, in which case both codecs fall back to
// treating every property as observed.
package reflection

import "github.com/robloxfile/rbxdom"

// ServiceTag marks a class as a singleton under a root engine container.
const ServiceTag = "Service"

// PropertyDescriptor is the reflection record for a single property.
type PropertyDescriptor struct {
	// Canonical is the name under which the Dom stores the property's
	// value.
	Canonical string

	// Serialized is the name that appears on the wire. It may differ from
	// Canonical (a rename), or be empty if the property is read-only/
	// write-only and not persisted.
	Serialized string

	// DataType is the property's serialized value type.
	DataType rbxfile.VariantType
}

// Persisted reports whether the property has a serialized form at all.
func (d PropertyDescriptor) Persisted() bool {
	return d.Serialized != ""
}

// ClassDescriptor is the reflection record for a class.
type ClassDescriptor struct {
	Name       string
	Superclass string

	// Tags holds class tags such as ServiceTag.
	Tags map[string]bool

	// Properties maps canonical property name to its descriptor. Includes
	// properties declared directly on this class, not on ancestors.
	Properties map[string]PropertyDescriptor

	// DefaultProperties maps canonical property name to the value an
	// instance of this class has when the property is not explicitly set.
	// Includes only defaults declared directly on this class.
	DefaultProperties map[string]rbxfile.Value
}

// IsService reports whether the class is tagged as a Service.
func (c *ClassDescriptor) IsService() bool {
	return c != nil && c.Tags[ServiceTag]
}

// Database is a frozen lookup table from class name to ClassDescriptor.
// A nil *Database is valid and behaves as an empty database: every lookup
// fails, causing both codecs to fall back to properties "as observed",
// whatever Behavior they are configured with.
//
// Database is safe for concurrent read access from multiple encode/decode
// calls, since neither codec ever mutates it.
type Database struct {
	Classes map[string]*ClassDescriptor
}

// FindClass returns the descriptor for class itself by a direct lookup in
// Classes; superclasses are not consulted. Returns false if class is
// unknown.
func (db *Database) FindClass(class string) (*ClassDescriptor, bool) {
	if db == nil {
		return nil, false
	}
	c, ok := db.Classes[class]
	return c, ok
}

// FindPropertyDescriptors walks the superclass chain of class, starting at
// class itself, looking for a property whose canonical or serialized name
// equals name. Returns the first match and true, or the zero value and
// false if the database lacks the class or the property was never declared
// on any ancestor.
func (db *Database) FindPropertyDescriptors(class, name string) (desc PropertyDescriptor, ok bool) {
	if db == nil {
		return PropertyDescriptor{}, false
	}
	seen := map[string]bool{}
	for c, exists := db.Classes[class]; exists; c, exists = db.Classes[c.Superclass] {
		if seen[c.Name] {
			// Defend against a malformed database with a superclass cycle.
			break
		}
		seen[c.Name] = true

		if d, ok := c.Properties[name]; ok {
			return d, true
		}
		for _, d := range c.Properties {
			if d.Serialized == name {
				return d, true
			}
		}
		if c.Superclass == "" {
			break
		}
	}
	return PropertyDescriptor{}, false
}

// DefaultValue walks the superclass chain of class looking for a declared
// default for the canonical property name. Returns false if none of class's
// ancestors declare one.
func (db *Database) DefaultValue(class, canonical string) (rbxfile.Value, bool) {
	if db == nil {
		return nil, false
	}
	seen := map[string]bool{}
	for c, exists := db.Classes[class]; exists; c, exists = db.Classes[c.Superclass] {
		if seen[c.Name] {
			break
		}
		seen[c.Name] = true

		if v, ok := c.DefaultProperties[canonical]; ok {
			return v, true
		}
		if c.Superclass == "" {
			break
		}
	}
	return nil, false
}

// Behavior selects how a codec treats properties the Database does not
// know about. The zero value is IgnoreUnknown.
type Behavior int

const (
	// IgnoreUnknown silently skips properties the database does not know.
	IgnoreUnknown Behavior = iota

	// ReadUnknown passes unknown properties through by their on-wire name
	// without coercion, when decoding.
	ReadUnknown

	// WriteUnknown passes unknown properties through by their on-wire name
	// without coercion, when encoding.
	WriteUnknown

	// ErrorOnUnknown fails with an "unknown property" error.
	ErrorOnUnknown

	// NoReflection passes properties the database does not know through by
	// their as-seen name and type, when encoding and when decoding.
	// Properties the database does know are still renamed, typed and
	// filtered through it.
	NoReflection
)

func (b Behavior) String() string {
	switch b {
	case IgnoreUnknown:
		return "IgnoreUnknown"
	case ReadUnknown:
		return "ReadUnknown"
	case WriteUnknown:
		return "WriteUnknown"
	case ErrorOnUnknown:
		return "ErrorOnUnknown"
	case NoReflection:
		return "NoReflection"
	default:
		return "Invalid"
	}
}
