package xml

import (
	"errors"
	"io"

	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/reflection"
)

// Decoder decodes a Document into a Dom.
type Decoder interface {
	Decode(document *Document) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error)
}

// Encoder encodes a Dom's selected roots into a Document.
type Encoder interface {
	Encode(dom *rbxfile.Dom, roots []rbxfile.Ref) (document *Document, err error)
}

// Serializer implements functions that decode and encode directly between
// byte streams and Dom structures.
type Serializer struct {
	Decoder Decoder
	Encoder Encoder
}

// NewSerializer returns a new Serializer with a specified decoder and
// encoder. If either value is nil, the default RobloxCodec will be used in
// its place.
func NewSerializer(d Decoder, e Encoder) Serializer {
	s := Serializer{Decoder: d, Encoder: e}
	if d == nil || e == nil {
		var codec RobloxCodec
		if d == nil {
			s.Decoder = codec
		}
		if e == nil {
			s.Encoder = codec
		}
	}
	return s
}

// Deserialize decodes data from r into a Dom using the specified decoder.
func (s Serializer) Deserialize(r io.Reader) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error) {
	if s.Decoder == nil {
		return nil, nil, errors.New("a decoder has not been specified")
	}
	document := new(Document)
	if _, err = document.ReadFrom(r); err != nil {
		return nil, nil, errors.New("error parsing document: " + err.Error())
	}
	dom, roots, err = s.Decoder.Decode(document)
	if err != nil {
		return nil, nil, errors.New("error decoding data: " + err.Error())
	}
	return dom, roots, nil
}

// Serialize encodes dom's roots to w using the specified encoder.
func (s Serializer) Serialize(w io.Writer, dom *rbxfile.Dom, roots []rbxfile.Ref) (err error) {
	if s.Encoder == nil {
		return errors.New("an encoder has not been specified")
	}
	document, err := s.Encoder.Encode(dom, roots)
	if err != nil {
		return errors.New("error encoding data: " + err.Error())
	}
	if _, err = document.WriteTo(w); err != nil {
		return errors.New("error encoding format: " + err.Error())
	}
	return nil
}

// Format adapts RobloxCodec to rbxfile.Format, for use with
// rbxfile.RegisterFormat and rbxfile.DetectFormat.
type Format struct {
	Options
}

func (Format) Name() string  { return "rbxlx" }
func (Format) Magic() string { return "<roblox" }

func (f Format) Decode(r io.Reader) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error) {
	codec := RobloxCodec{Options: f.Options}
	return NewSerializer(codec, codec).Deserialize(r)
}

func (f Format) Encode(w io.Writer, dom *rbxfile.Dom, roots []rbxfile.Ref) error {
	codec := RobloxCodec{Options: f.Options}
	return NewSerializer(codec, codec).Serialize(w, dom, roots)
}

// Register installs Format under the given reflection database and
// property-handling policy as the package-level "rbxlx" format.
func Register(api *reflection.Database, behavior reflection.Behavior) {
	rbxfile.RegisterFormat(Format{Options{API: api, PropertyBehavior: behavior}})
}
