package rbxfile

import (
	"fmt"
)

// Instance represents a single Roblox instance within a Dom. An Instance
// value does not carry a pointer back to its owning Dom; all tree navigation
// (Parent, Children, ancestry) goes through Dom methods keyed by Ref, per the
// arena model: parent/child edges are Refs, not pointers.
type Instance struct {
	// ref is the instance's identity, assigned on construction and
	// immutable thereafter.
	ref Ref

	// Class indicates the instance's type, e.g. "Part" or "Workspace".
	Class string

	// Name is the logical "Name" property, surfaced as a field for
	// convenience. Codecs treat it uniformly with other properties during
	// I/O (see the binary and xml packages).
	Name string

	// Properties maps property name to value. The map excludes "Name",
	// which is always accessed through the Name field.
	Properties map[string]Value

	parent   Ref
	children []Ref
}

// Ref returns the instance's immutable identity.
func (inst *Instance) Ref() Ref {
	return inst.ref
}

// Parent returns the Ref of the instance's parent, or the null Ref if it has
// none.
func (inst *Instance) Parent() Ref {
	return inst.parent
}

// Children returns the ordered list of the instance's children. The
// returned slice is a copy; mutating it does not affect the Dom.
func (inst *Instance) Children() []Ref {
	out := make([]Ref, len(inst.children))
	copy(out, inst.children)
	return out
}

// Get returns the value of a property, or nil if it is not set. "Name" is
// not a valid argument; use the Name field directly.
func (inst *Instance) Get(property string) Value {
	return inst.Properties[property]
}

// Set assigns the value of a property. If value is nil, the property is
// removed instead.
func (inst *Instance) Set(property string, value Value) {
	if value == nil {
		delete(inst.Properties, property)
		return
	}
	if inst.Properties == nil {
		inst.Properties = make(map[string]Value)
	}
	inst.Properties[property] = value
}

////////////////////////////////////////////////////////////////////////////

// Dom is an arena of Instances addressed by Ref, plus the ordered list of
// top-level (parentless) instances.
//
// Invariants: every non-null parent/child Ref referenced by any Instance
// exists in the arena; parent and children agree (a child's Parent() equals
// the instance whose Children() contains it); the instance graph has no
// cycles.
type Dom struct {
	instances map[Ref]*Instance
	roots     []Ref
}

// NewDom returns an empty Dom.
func NewDom() *Dom {
	return &Dom{instances: make(map[Ref]*Instance)}
}

// Roots returns the ordered Refs of top-level instances (those with a null
// parent). The returned slice is a copy.
func (d *Dom) Roots() []Ref {
	out := make([]Ref, len(d.roots))
	copy(out, d.roots)
	return out
}

// Get returns the instance for ref, and whether it exists in the Dom.
func (d *Dom) Get(ref Ref) (*Instance, bool) {
	inst, ok := d.instances[ref]
	return inst, ok
}

// Len returns the number of instances in the Dom.
func (d *Dom) Len() int {
	return len(d.instances)
}

// NewInstance creates a new Instance of the given class and inserts it into
// the Dom under parent. If parent is the null Ref, the instance becomes a
// new root. Returns an error if parent is non-null and not present in the
// Dom, per the Dom invariant that every referenced parent must exist.
func (d *Dom) NewInstance(class string, parent Ref) (Ref, error) {
	if !parent.IsNull() {
		if _, ok := d.instances[parent]; !ok {
			return Ref{}, fmt.Errorf("rbxfile: parent %s does not exist in Dom", parent)
		}
	}

	ref := NewRef()
	for _, exists := d.instances[ref]; exists; _, exists = d.instances[ref] {
		ref = NewRef()
	}

	inst := &Instance{
		ref:        ref,
		Class:      class,
		Properties: make(map[string]Value),
	}
	d.instances[ref] = inst
	d.attach(ref, parent)
	return ref, nil
}

func (d *Dom) attach(ref, parent Ref) {
	inst := d.instances[ref]
	inst.parent = parent
	if parent.IsNull() {
		d.roots = append(d.roots, ref)
		return
	}
	p := d.instances[parent]
	p.children = append(p.children, ref)
}

func (d *Dom) detach(ref Ref) {
	inst := d.instances[ref]
	if inst.parent.IsNull() {
		d.roots = removeRef(d.roots, ref)
		return
	}
	p, ok := d.instances[inst.parent]
	if ok {
		p.children = removeRef(p.children, ref)
	}
}

func removeRef(s []Ref, ref Ref) []Ref {
	for i, r := range s {
		if r == ref {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// SetParent reparents ref to newParent, which may be the null Ref. Returns
// an error if ref or newParent (when non-null) are not in the Dom, if
// newParent is ref itself, or if newParent is a descendant of ref (which
// would create a cycle).
func (d *Dom) SetParent(ref, newParent Ref) error {
	inst, ok := d.instances[ref]
	if !ok {
		return fmt.Errorf("rbxfile: instance %s does not exist in Dom", ref)
	}
	if inst.parent == newParent {
		return nil
	}
	if newParent == ref {
		return fmt.Errorf("rbxfile: attempt to set %s as its own parent", ref)
	}
	if !newParent.IsNull() {
		if _, ok := d.instances[newParent]; !ok {
			return fmt.Errorf("rbxfile: parent %s does not exist in Dom", newParent)
		}
		if d.IsDescendantOf(newParent, ref) {
			return fmt.Errorf("rbxfile: setting parent of %s to %s would create a cycle", ref, newParent)
		}
	}

	d.detach(ref)
	d.attach(ref, newParent)
	return nil
}

// Remove detaches ref from its parent and deletes it, along with all of its
// descendants, from the Dom.
func (d *Dom) Remove(ref Ref) {
	inst, ok := d.instances[ref]
	if !ok {
		return
	}
	d.detach(ref)
	d.removeSubtree(ref)
	_ = inst
}

// ClearAllChildren removes all of ref's children, and their descendants,
// from the Dom. ref itself is left in place, with no children.
func (d *Dom) ClearAllChildren(ref Ref) {
	inst, ok := d.instances[ref]
	if !ok {
		return
	}
	children := inst.children
	inst.children = nil
	for _, child := range children {
		d.removeSubtree(child)
	}
}

func (d *Dom) removeSubtree(ref Ref) {
	inst, ok := d.instances[ref]
	if !ok {
		return
	}
	for _, child := range inst.children {
		d.removeSubtree(child)
	}
	delete(d.instances, ref)
}

// IsAncestorOf reports whether ref is an ancestor of descendant.
func (d *Dom) IsAncestorOf(ref, descendant Ref) bool {
	return d.IsDescendantOf(descendant, ref)
}

// IsDescendantOf reports whether ref is a descendant of ancestor.
func (d *Dom) IsDescendantOf(ref, ancestor Ref) bool {
	inst, ok := d.instances[ref]
	if !ok {
		return false
	}
	for p := inst.parent; !p.IsNull(); {
		if p == ancestor {
			return true
		}
		parentInst, ok := d.instances[p]
		if !ok {
			return false
		}
		p = parentInst.parent
	}
	return false
}

// FindFirstChild returns the first child of ref whose Name matches name, or
// the null Ref if none is found. If recursive is true and no direct child
// matches, each child's subtree is then searched in order, depth-first, by
// the same rule (direct children before deeper descendants at every level).
func (d *Dom) FindFirstChild(ref Ref, name string, recursive bool) Ref {
	inst, ok := d.instances[ref]
	if !ok {
		return Ref{}
	}
	for _, child := range inst.children {
		if c, ok := d.instances[child]; ok && c.Name == name {
			return child
		}
	}
	if recursive {
		for _, child := range inst.children {
			if found := d.FindFirstChild(child, name, true); !found.IsNull() {
				return found
			}
		}
	}
	return Ref{}
}

// GetFullName returns the dot-separated names of ref and each of its
// ancestors, outermost first.
func (d *Dom) GetFullName(ref Ref) string {
	var names []string
	for r := ref; !r.IsNull(); {
		inst, ok := d.instances[r]
		if !ok {
			break
		}
		names = append(names, inst.Name)
		r = inst.parent
	}
	var out string
	for i := len(names) - 1; i >= 0; i-- {
		if out != "" {
			out += "."
		}
		out += names[i]
	}
	return out
}

// Clone deep-copies the subtree rooted at ref (instance plus all
// descendants) into the same Dom, assigning fresh Refs throughout, and
// returns the ref of the copy's root. The copy is left unparented; the
// caller must SetParent it into place.
func (d *Dom) Clone(ref Ref) (Ref, error) {
	src, ok := d.instances[ref]
	if !ok {
		return Ref{}, fmt.Errorf("rbxfile: instance %s does not exist in Dom", ref)
	}
	clone, err := d.NewInstance(src.Class, Ref{})
	if err != nil {
		return Ref{}, err
	}
	dst := d.instances[clone]
	dst.Name = src.Name
	for name, value := range src.Properties {
		dst.Properties[name] = value
	}
	for _, child := range src.children {
		childClone, err := d.Clone(child)
		if err != nil {
			return Ref{}, err
		}
		if err := d.SetParent(childClone, clone); err != nil {
			return Ref{}, err
		}
	}
	return clone, nil
}
