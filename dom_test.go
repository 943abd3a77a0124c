package rbxfile

import "testing"

func TestNewInstance(t *testing.T) {
	dom := NewDom()

	ref, err := dom.NewInstance("Part", Ref{})
	if err != nil {
		t.Fatal(err)
	}
	inst, ok := dom.Get(ref)
	if !ok {
		t.Fatal("instance not found after creation")
	}
	if inst.Class != "Part" {
		t.Errorf("got Class %q, expected %q", inst.Class, "Part")
	}
	if ref.IsNull() {
		t.Error("unexpected null ref for created instance")
	}

	child, err := dom.NewInstance("IntValue", ref)
	if err != nil {
		t.Fatal(err)
	}
	childInst, _ := dom.Get(child)
	if childInst.Parent() != ref {
		t.Error("parent of child is not inst")
	}
	found := false
	for _, c := range inst.Children() {
		if c == child {
			found = true
		}
	}
	if !found {
		t.Error("child not found in parent's Children")
	}

	if _, err := dom.NewInstance("Orphan", NewRef()); err == nil {
		t.Error("expected error creating instance under nonexistent parent")
	}
}

type treeTest struct {
	a, b   Ref
	ar, dr bool
}

func testAncestry(t *testing.T, dom *Dom, groups ...treeTest) {
	t.Helper()
	for _, g := range groups {
		if r := dom.IsAncestorOf(g.a, g.b); r != g.ar {
			t.Errorf("IsAncestorOf(%s, %s) returned %t when %t was expected", g.a, g.b, r, g.ar)
		}
		if r := dom.IsDescendantOf(g.a, g.b); r != g.dr {
			t.Errorf("IsDescendantOf(%s, %s) returned %t when %t was expected", g.a, g.b, r, g.dr)
		}
	}
}

func namedInst(t *testing.T, dom *Dom, class string, parent Ref) Ref {
	t.Helper()
	ref, err := dom.NewInstance(class, parent)
	if err != nil {
		t.Fatal(err)
	}
	inst, _ := dom.Get(ref)
	inst.Name = class
	return ref
}

func TestInstanceHierarchy(t *testing.T) {
	dom := NewDom()
	parent := namedInst(t, dom, "Parent", Ref{})
	inst := namedInst(t, dom, "Instance", Ref{})
	sibling := namedInst(t, dom, "Sibling", parent)
	child := namedInst(t, dom, "Child", inst)
	desc := namedInst(t, dom, "Descendant", child)

	if p, _ := dom.Get(inst); !p.Parent().IsNull() {
		t.Error("expected null parent")
	}

	if err := dom.SetParent(inst, inst); err == nil {
		t.Error("no error on setting parent to self")
	}
	if err := dom.SetParent(inst, child); err == nil {
		t.Error("no error on setting parent to child")
	}
	if err := dom.SetParent(inst, desc); err == nil {
		t.Error("no error on setting parent to descendant")
	}
	if err := dom.SetParent(inst, parent); err != nil {
		t.Error("failed to set parent:", err)
	}
	if p, _ := dom.Get(inst); p.Parent() != parent {
		t.Error("unexpected parent")
	}
	if err := dom.SetParent(inst, parent); err != nil {
		t.Error("error on setting same parent:", err)
	}

	testAncestry(t, dom,
		treeTest{parent, Ref{}, false, false},
		treeTest{parent, parent, false, false},
		treeTest{parent, sibling, true, false},
		treeTest{parent, inst, true, false},
		treeTest{parent, child, true, false},
		treeTest{parent, desc, true, false},

		treeTest{sibling, Ref{}, false, false},
		treeTest{sibling, parent, false, true},
		treeTest{sibling, sibling, false, false},

		treeTest{inst, parent, false, true},
		treeTest{inst, child, true, false},
		treeTest{inst, desc, true, false},

		treeTest{child, parent, false, true},
		treeTest{child, inst, false, true},
		treeTest{child, desc, true, false},

		treeTest{desc, inst, false, true},
		treeTest{desc, child, false, true},
	)

	if err := dom.SetParent(sibling, Ref{}); err != nil {
		t.Error("failed to set parent:", err)
	}
	if p, _ := dom.Get(sibling); !p.Parent().IsNull() {
		t.Error("expected null parent")
	}
}

func TestDomRemove(t *testing.T) {
	dom := NewDom()
	parent := namedInst(t, dom, "Parent", Ref{})
	child := namedInst(t, dom, "Child", parent)
	grandchild := namedInst(t, dom, "Grandchild", child)

	dom.Remove(child)

	if _, ok := dom.Get(child); ok {
		t.Error("removed instance still present")
	}
	if _, ok := dom.Get(grandchild); ok {
		t.Error("descendant of removed instance still present")
	}
	if p, _ := dom.Get(parent); len(p.Children()) != 0 {
		t.Error("parent still lists removed child")
	}
}

func TestDomFindFirstChild(t *testing.T) {
	dom := NewDom()
	inst := namedInst(t, dom, "Instance", Ref{})
	child0 := namedInst(t, dom, "Child", inst)
	desc00 := namedInst(t, dom, "Desc", child0)
	namedInst(t, dom, "Desc", child0)
	child1 := namedInst(t, dom, "Child", inst)
	namedInst(t, dom, "Desc", child1)

	if c := dom.FindFirstChild(inst, "DoesNotExist", false); !c.IsNull() {
		t.Error("found child that does not exist")
	}
	if c := dom.FindFirstChild(inst, "Child", false); c != child0 {
		t.Error("failed to get first child")
	}
	if c := dom.FindFirstChild(inst, "Desc", false); !c.IsNull() {
		t.Error("expected null result for non-direct child")
	}
	if c := dom.FindFirstChild(inst, "Desc", true); c != desc00 {
		t.Error("failed to get first descendant (recursive)")
	}
}

func TestDomGetFullName(t *testing.T) {
	dom := NewDom()
	inst0 := namedInst(t, dom, "Grandparent", Ref{})
	inst1 := namedInst(t, dom, "Parent", inst0)
	inst2 := namedInst(t, dom, "Entity", inst1)

	if name := dom.GetFullName(inst2); name != "Grandparent.Parent.Entity" {
		t.Errorf("unexpected full name %q", name)
	}
}

func TestInstanceGetSet(t *testing.T) {
	dom := NewDom()
	ref := namedInst(t, dom, "Instance", Ref{})
	inst, _ := dom.Get(ref)

	if inst.Get("Property") != nil {
		t.Error("unexpected value returned from Get")
	}

	inst.Set("Property", ValueString("Value"))
	if v, ok := inst.Get("Property").(ValueString); !ok || string(v) != "Value" {
		t.Error("unexpected value of property")
	}

	inst.Set("Property", nil)
	if inst.Get("Property") != nil {
		t.Error("expected property to be removed by a nil Set")
	}
}

func TestDomClone(t *testing.T) {
	dom := NewDom()
	parentRef := namedInst(t, dom, "Instance", Ref{})
	parent, _ := dom.Get(parentRef)
	parent.Properties["Position"] = ValueVector3{X: 1, Y: 2, Z: 3}

	childRef := namedInst(t, dom, "Child", parentRef)
	child, _ := dom.Get(childRef)
	child.Properties["Size"] = ValueVector3{X: 4, Y: 5, Z: 6}

	outside := namedInst(t, dom, "Outside", Ref{})
	parent.Set("Reference", ValueRef{Ref: outside})

	cloneRef, err := dom.Clone(parentRef)
	if err != nil {
		t.Fatal(err)
	}
	clone, _ := dom.Get(cloneRef)

	if clone.Class != parent.Class {
		t.Error("cloned Class does not equal original")
	}
	if !clone.Parent().IsNull() {
		t.Error("expected null clone parent")
	}
	if clone.Name != parent.Name {
		t.Error("cloned Name does not equal original")
	}
	if clone.Properties["Position"] != parent.Properties["Position"] {
		t.Error("cloned Position property does not equal original")
	}
	if v, _ := clone.Properties["Reference"].(ValueRef); v.Ref != outside {
		t.Error("cloned Reference property does not equal original (refs are shared by value, not remapped)")
	}
	if cloneRef == parentRef {
		t.Error("clone shares the same ref as the original")
	}

	cloneChildren := clone.Children()
	if len(cloneChildren) != 1 {
		t.Fatalf("expected 1 child, got %d", len(cloneChildren))
	}
	cchild, _ := dom.Get(cloneChildren[0])
	if cchild.Class != child.Class {
		t.Error("cloned child Class does not equal original")
	}
	if cchild.Parent() != cloneRef {
		t.Error("clone child's parent is not the cloned instance")
	}
	if cchild.Properties["Size"] != child.Properties["Size"] {
		t.Error("cloned child Size property does not equal original")
	}
}
