package rbxfile

import (
	"bytes"
	"io"
	"testing"
)

type stubFormat struct {
	name, magic string
	encoded     string
}

func (f stubFormat) Name() string  { return f.name }
func (f stubFormat) Magic() string { return f.magic }

func (f stubFormat) Decode(r io.Reader) (*Dom, []Ref, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, nil, err
	}
	dom := NewDom()
	ref, err := dom.NewInstance("Stub", Ref{})
	if err != nil {
		return nil, nil, err
	}
	return dom, []Ref{ref}, nil
}

func (f stubFormat) Encode(w io.Writer, dom *Dom, roots []Ref) error {
	_, err := w.Write([]byte(f.encoded))
	return err
}

func TestDetectFormat(t *testing.T) {
	saved := formats
	formats = nil
	defer func() { formats = saved }()

	RegisterFormat(stubFormat{name: "stubxml", magic: "<stub", encoded: "<stub/>"})
	RegisterFormat(stubFormat{name: "stubbin", magic: "STUB", encoded: "STUBDATA"})

	format, _, err := DetectFormat(bytes.NewReader([]byte("<stub/>")))
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if format.Name() != "stubxml" {
		t.Errorf("got format %q, want %q", format.Name(), "stubxml")
	}

	if _, _, err := DetectFormat(bytes.NewReader([]byte("unknown data"))); err != ErrFormat {
		t.Errorf("expected ErrFormat for unrecognized header, got %v", err)
	}
}

func TestMatchMagicWildcard(t *testing.T) {
	saved := formats
	formats = nil
	defer func() { formats = saved }()

	RegisterFormat(stubFormat{name: "anybyte", magic: "ST?B", encoded: "STUB"})
	format, _, err := DetectFormat(bytes.NewReader([]byte("STUB")))
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if format.Name() != "anybyte" {
		t.Errorf("wildcard magic failed to match: got %q", format.Name())
	}
}

func TestPackageDecodeEncode(t *testing.T) {
	saved := formats
	formats = nil
	defer func() { formats = saved }()

	RegisterFormat(stubFormat{name: "stubxml", magic: "<stub", encoded: "<stub/>"})

	dom, roots, err := Decode(bytes.NewReader([]byte("<stub/>")))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	inst, ok := dom.Get(roots[0])
	if !ok || inst.Class != "Stub" {
		t.Fatalf("unexpected decoded instance: %+v", inst)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, "stubxml", dom, roots); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.String() != "<stub/>" {
		t.Errorf("unexpected encoded output: %q", buf.String())
	}

	if err := Encode(&buf, "nonexistent", dom, roots); err != ErrFormat {
		t.Errorf("expected ErrFormat for unregistered format name, got %v", err)
	}
}
