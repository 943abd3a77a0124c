package rbxfile

import "testing"

func TestRefIsNull(t *testing.T) {
	var zero Ref
	if !zero.IsNull() {
		t.Error("zero Ref is not null")
	}
	if zero.String() != "null" {
		t.Errorf("zero Ref.String() = %q, want %q", zero.String(), "null")
	}

	r := NewRef()
	if r.IsNull() {
		t.Error("generated Ref is null")
	}
}

func TestNewRefUnique(t *testing.T) {
	seen := make(map[Ref]bool)
	for i := 0; i < 1000; i++ {
		r := NewRef()
		if seen[r] {
			t.Fatalf("NewRef produced a duplicate on iteration %d", i)
		}
		seen[r] = true
	}
}

func TestRefString(t *testing.T) {
	r := NewRef()
	s := r.String()
	if len(s) != 32 {
		t.Errorf("expected a 32-character hex string, got %q (len %d)", s, len(s))
	}
}
