// The declare package is used to generate rbxfile structures in a
// declarative style.
//
// Most items have a Declare method, which returns a new rbxfile structure
// corresponding to the declared item.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/robloxfile/rbxdom/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"github.com/robloxfile/rbxdom"
)

// Root declares a set of top-level Instances to be built into a Dom.
type Root []instance

func build(dom *rbxfile.Dom, dinst instance, parent rbxfile.Ref, refs map[string]rbxfile.Ref, props map[rbxfile.Ref][]property) (rbxfile.Ref, error) {
	ref, err := dom.NewInstance(dinst.className, parent)
	if err != nil {
		return rbxfile.Ref{}, err
	}
	inst, _ := dom.Get(ref)
	inst.Name = dinst.className

	if dinst.reference != "" {
		refs[dinst.reference] = ref
	}
	props[ref] = dinst.properties

	for _, dchild := range dinst.children {
		if _, err := build(dom, dchild, ref, refs, props); err != nil {
			return rbxfile.Ref{}, err
		}
	}

	return ref, nil
}

// Declare evaluates the Root declaration, generating instances and property
// values, setting up the instance hierarchy, and resolving references.
func (droot Root) Declare() (*rbxfile.Dom, []rbxfile.Ref, error) {
	dom := rbxfile.NewDom()

	refs := map[string]rbxfile.Ref{}
	props := map[rbxfile.Ref][]property{}

	roots := make([]rbxfile.Ref, 0, len(droot))
	for _, dinst := range droot {
		ref, err := build(dom, dinst, rbxfile.Ref{}, refs, props)
		if err != nil {
			return nil, nil, err
		}
		roots = append(roots, ref)
	}

	applyProperties(dom, refs, props)
	return dom, roots, nil
}

func applyProperties(dom *rbxfile.Dom, refs map[string]rbxfile.Ref, props map[rbxfile.Ref][]property) {
	for ref, properties := range props {
		inst, ok := dom.Get(ref)
		if !ok {
			continue
		}
		for _, prop := range properties {
			value := prop.typ.value(refs, prop.value)
			if prop.name == "Name" {
				if s, ok := value.(rbxfile.ValueString); ok {
					inst.Name = string(s)
					continue
				}
			}
			inst.Set(prop.name, value)
		}
	}
}

type element interface {
	element()
}

type instance struct {
	className  string
	reference  string
	properties []property
	children   []instance
}

func (instance) element() {}

// Declare evaluates the Instance declaration on its own, returning a fresh
// Dom containing just this instance and its descendants, and the ref of the
// instance itself.
func (dinst instance) Declare() (*rbxfile.Dom, rbxfile.Ref, error) {
	dom := rbxfile.NewDom()

	refs := map[string]rbxfile.Ref{}
	props := map[rbxfile.Ref][]property{}

	ref, err := build(dom, dinst, rbxfile.Ref{}, refs, props)
	if err != nil {
		return nil, rbxfile.Ref{}, err
	}

	applyProperties(dom, refs, props)
	return dom, ref, nil
}

// Instance declares a rbxfile.Instance. It defines an instance with a class
// name, and a series of "elements". An element can be a Property
// declaration, which defines a property for the instance. An element can
// also be another Instance declaration, which becomes a child of the
// instance.
//
// An element can also be a "Ref" declaration, which defines a string that
// can be used to refer to the instance by properties with the Reference
// value type.
func Instance(className string, elements ...element) instance {
	inst := instance{className: className}

	for _, e := range elements {
		switch e := e.(type) {
		case Ref:
			inst.reference = string(e)
		case property:
			inst.properties = append(inst.properties, e)
		case instance:
			inst.children = append(inst.children, e)
		}
	}

	return inst
}

type property struct {
	name  string
	typ   Type
	value []interface{}
}

func (property) element() {}

// Property declares a property of a rbxfile.Instance. It defines the name of
// the property, a type corresponding to a rbxfile.Value, and the value of
// the property.
//
// The value argument may be one or more values of any type, which are
// asserted to a rbxfile.Value corresponding to the given type. If the
// value(s) cannot be asserted, then the zero value for the given type is
// returned instead.
func Property(name string, typ Type, value ...interface{}) property {
	return property{name: name, typ: typ, value: value}
}

// Declare evaluates the Property declaration in isolation, with no
// references available for a Reference-typed property.
func (prop property) Declare() rbxfile.Value {
	return prop.typ.value(nil, prop.value)
}

// Ref declares a string that can be used to refer to the Instance under
// which it was declared.
type Ref string

func (Ref) element() {}
