package binary

import (
	"io"

	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/reflection"
)

// Format adapts Encoder/Decoder to rbxfile.Format, for use with
// rbxfile.RegisterFormat and rbxfile.DetectFormat.
type Format struct {
	Options
}

func (Format) Name() string  { return "rbxl" }
func (Format) Magic() string { return header + "\x89\xff\r\n\x1a\n" }

func (f Format) Decode(r io.Reader) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error) {
	d := NewDecoder(f.Options)
	return d.Decode(r)
}

func (f Format) Encode(w io.Writer, dom *rbxfile.Dom, roots []rbxfile.Ref) error {
	e := NewEncoder(f.Options)
	return e.Encode(w, dom, roots)
}

// Register installs Format under the given reflection database and
// property-handling policy as the package-level "rbxl" format.
func Register(api *reflection.Database, behavior reflection.Behavior) {
	rbxfile.RegisterFormat(Format{Options{API: api, PropertyBehavior: behavior}})
}
