package binary

import (
	"bytes"
	"testing"

	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/rbxtest"
)

func TestInterleaveRoundTrip(t *testing.T) {
	orig := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := append([]byte(nil), orig...)
	if err := interleave(b, 4); err != nil {
		t.Fatalf("interleave: %v", err)
	}
	if err := deinterleave(b, 4); err != nil {
		t.Fatalf("deinterleave: %v", err)
	}
	if !bytes.Equal(b, orig) {
		t.Fatalf("round trip mismatch: got %v, want %v", b, orig)
	}
}

func TestZigzagRoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 2, -2, 1<<30 - 1, -(1 << 30)} {
		if got := zigzagDecode(zigzagEncode(n)); got != n {
			t.Errorf("zigzag(%d) round trip got %d", n, got)
		}
	}
}

func TestRotateFloatRoundTrip(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 3.14159, -0.5} {
		if got := rotateFloatDecode(rotateFloatEncode(f)); got != f {
			t.Errorf("rotateFloat(%g) round trip got %g", f, got)
		}
	}
}

func TestDeltaRefsRoundTrip(t *testing.T) {
	refs := []int32{0, 3, 7, 2, 100, -5}
	deltas := deltaEncodeRefs(refs)
	got := deltaDecodeRefs(deltas)
	for i := range refs {
		if got[i] != refs[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], refs[i])
		}
	}
}

func TestCFrameOrientationTableRoundTrip(t *testing.T) {
	for code, m := range orientationMatrix {
		got, ok := codeForMatrix(m)
		if !ok || got != code {
			t.Errorf("matrix for code %#x did not round-trip (got code %#x, ok=%v)", code, got, ok)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dom := rbxfile.NewDom()
	root, err := dom.NewInstance("Workspace", rbxfile.Ref{})
	if err != nil {
		t.Fatal(err)
	}
	ws, _ := dom.Get(root)
	ws.Name = "Workspace"

	part, err := dom.NewInstance("Part", root)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := dom.Get(part)
	p.Name = "Base"
	p.Set("Transparency", rbxfile.ValueFloat32(0.5))
	p.Set("Anchored", rbxfile.ValueBool(true))
	p.Set("Position", rbxfile.ValueVector3{X: 1, Y: 2, Z: 3})

	enc := NewEncoder(Options{})
	var buf bytes.Buffer
	if err := enc.Encode(&buf, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := NewDecoder(Options{})
	decoded, roots, err := dec.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	decWs, ok := decoded.Get(roots[0])
	if !ok || decWs.Class != "Workspace" || decWs.Name != "Workspace" {
		t.Fatalf("root instance mismatch: %+v", decWs)
	}
	children := decWs.Children()
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	decPart, _ := decoded.Get(children[0])
	if decPart.Class != "Part" || decPart.Name != "Base" {
		t.Fatalf("part mismatch: %+v", decPart)
	}
	if v := decPart.Get("Transparency"); v == nil || v.(rbxfile.ValueFloat32) != 0.5 {
		t.Errorf("Transparency mismatch: %v", v)
	}
	if v := decPart.Get("Anchored"); v == nil || v.(rbxfile.ValueBool) != true {
		t.Errorf("Anchored mismatch: %v", v)
	}
	if v := decPart.Get("Position"); v == nil || v.(rbxfile.ValueVector3) != (rbxfile.ValueVector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Position mismatch: %v", v)
	}
}

// TestEncodeDeterministic asserts §4.2.4's ordering guarantee: encoding the
// same Dom twice produces byte-identical output, checked via digest rather
// than a checked-in golden file.
func TestEncodeDeterministic(t *testing.T) {
	dom := rbxfile.NewDom()
	root, err := dom.NewInstance("Workspace", rbxfile.Ref{})
	if err != nil {
		t.Fatal(err)
	}
	ws, _ := dom.Get(root)
	ws.Name = "Workspace"

	for i := 0; i < 5; i++ {
		part, err := dom.NewInstance("Part", root)
		if err != nil {
			t.Fatal(err)
		}
		p, _ := dom.Get(part)
		p.Name = "Base"
		p.Set("Transparency", rbxfile.ValueFloat32(float32(i)*0.1))
		p.Set("Anchored", rbxfile.ValueBool(i%2 == 0))
	}

	enc := NewEncoder(Options{})

	var first bytes.Buffer
	if err := enc.Encode(&first, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var second bytes.Buffer
	if err := enc.Encode(&second, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if got, want := rbxtest.Digest(first.Bytes()), rbxtest.Digest(second.Bytes()); got != want {
		t.Errorf("encode is not deterministic: digest %s != %s", got, want)
	}
}
