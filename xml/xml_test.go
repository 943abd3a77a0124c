package xml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/rbxtest"
)

func TestDocumentRoundTrip(t *testing.T) {
	src := `<roblox version="4">
	<Item class="Part" referent="RBX1">
		<Properties>
			<string name="Name">Base</string>
			<bool name="Anchored">true</bool>
		</Properties>
	</Item>
</roblox>
`
	doc := new(Document)
	if _, err := doc.ReadFrom(strings.NewReader(src)); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if doc.Root == nil || doc.Root.StartName != "roblox" {
		t.Fatalf("unexpected root: %+v", doc.Root)
	}
	if len(doc.Root.Tags) != 1 || doc.Root.Tags[0].StartName != "Item" {
		t.Fatalf("expected one Item tag, got %+v", doc.Root.Tags)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), `class="Part"`) {
		t.Fatalf("round-tripped document missing class attribute: %s", buf.String())
	}
}

func TestRobloxCodecEncodeDecodeRoundTrip(t *testing.T) {
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
	p.Set("Transparency", rbxfile.ValueFloat32(0.25))
	p.Set("Anchored", rbxfile.ValueBool(true))
	p.Set("Position", rbxfile.ValueVector3{X: 1, Y: 2, Z: 3})

	value, err := dom.NewInstance("ObjectValue", part)
	if err != nil {
		t.Fatal(err)
	}
	ov, _ := dom.Get(value)
	ov.Name = "Link"
	ov.Set("Value", rbxfile.ValueRef{Ref: root})

	codec := RobloxCodec{}
	var buf bytes.Buffer
	if err := NewSerializer(codec, codec).Serialize(&buf, dom, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	decoded, roots, err := NewSerializer(codec, codec).Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
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
	if v := decPart.Get("Transparency"); v == nil || v.(rbxfile.ValueFloat32) != 0.25 {
		t.Errorf("Transparency mismatch: %v", v)
	}
	if v := decPart.Get("Anchored"); v == nil || v.(rbxfile.ValueBool) != true {
		t.Errorf("Anchored mismatch: %v", v)
	}
	if v := decPart.Get("Position"); v == nil || v.(rbxfile.ValueVector3) != (rbxfile.ValueVector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Position mismatch: %v", v)
	}

	partChildren := decPart.Children()
	if len(partChildren) != 1 {
		t.Fatalf("expected 1 grandchild, got %d", len(partChildren))
	}
	decValue, _ := decoded.Get(partChildren[0])
	refVal, ok := decValue.Get("Value").(rbxfile.ValueRef)
	if !ok {
		t.Fatalf("Value property is not a ValueRef: %v", decValue.Get("Value"))
	}
	if refVal.Ref != roots[0] {
		t.Errorf("reference did not resolve to root: got %v, want %v", refVal.Ref, roots[0])
	}
}

// TestEncodeDeterministic asserts that encoding the same Dom twice produces
// byte-identical output, checked via digest rather than a checked-in golden
// file.
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

	codec := RobloxCodec{}

	var first, second bytes.Buffer
	if err := NewSerializer(codec, codec).Serialize(&first, dom, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := NewSerializer(codec, codec).Serialize(&second, dom, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	if got, want := rbxtest.Digest(first.Bytes()), rbxtest.Digest(second.Bytes()); got != want {
		t.Errorf("encode is not deterministic: digest %s != %s", got, want)
	}
}

func TestGetCanonTagAliasing(t *testing.T) {
	if got := canonicalXmlTagName("Object"); got != "Ref" {
		t.Errorf("expected legacy Object tag to alias to Ref, got %q", got)
	}
	if got := canonicalXmlTagName("string"); got != "string" {
		t.Errorf("expected string tag to pass through unchanged, got %q", got)
	}
}

func TestScanFloat(t *testing.T) {
	b := []byte("1.5 2.25 -3 ")
	f, i := scanFloat(b, 0)
	if f != 1.5 || i < 0 {
		t.Fatalf("first scan: got %g at %d", f, i)
	}
	f, i = scanFloat(b, i)
	if f != 2.25 || i < 0 {
		t.Fatalf("second scan: got %g at %d", f, i)
	}
	f, i = scanFloat(b, i)
	if f != -3 || i < 0 {
		t.Fatalf("third scan: got %g at %d", f, i)
	}
}
