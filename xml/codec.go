package xml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/reflection"
)

// Options configures a RobloxCodec, shared with the binary codec's Options
// shape so callers can reuse one reflection.Database/Behavior pair across
// both formats.
type Options struct {
	// API is consulted for canonical/serialized property names, declared
	// value types, and class tags. A nil API falls back to guessing the
	// value type from the property tag's own name.
	API *reflection.Database

	// PropertyBehavior selects how unknown properties are handled.
	PropertyBehavior reflection.Behavior

	// ExcludeReferent omits the "referent" attribute on Item tags.
	ExcludeReferent bool

	// ExcludeExternal omits the standard <External> tags on the root.
	ExcludeExternal bool
}

// RobloxCodec implements Decoder and Encoder, emulating the engine's XML
// codec as closely as possible.
type RobloxCodec struct {
	Options
}

func (c RobloxCodec) Decode(document *Document) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error) {
	if document == nil {
		return nil, nil, fmt.Errorf("document is nil")
	}
	if document.Root == nil {
		return nil, nil, rbxfile.ErrMalformedHeader{Reason: "missing root tag"}
	}

	dec := &rdecoder{
		document:      document,
		codec:         c,
		dom:           rbxfile.NewDom(),
		referentToRef: make(map[string]rbxfile.Ref),
	}
	dec.decode()
	return dec.dom, dec.roots, dec.err
}

type rdecoder struct {
	document      *Document
	codec         RobloxCodec
	dom           *rbxfile.Dom
	err           error
	roots         []rbxfile.Ref
	referentToRef map[string]rbxfile.Ref
	pending       []pendingXmlRef
}

// pendingXmlRef is a Ref-typed property assignment deferred until every Item
// tag has been decoded and every referent is known, per §4.7's deferred
// reference resolution.
type pendingXmlRef struct {
	ref       rbxfile.Ref
	canonical string
	referent  string
}

func (dec *rdecoder) decode() {
	if dec.err != nil {
		return
	}

	dec.roots = dec.getItems(rbxfile.Ref{}, dec.document.Root.Tags)

	for _, p := range dec.pending {
		inst, ok := dec.dom.Get(p.ref)
		if !ok {
			continue
		}
		target := dec.referentToRef[p.referent] // zero Ref (null) if unresolved
		inst.Set(p.canonical, rbxfile.ValueRef{Ref: target})
	}
}

// getItems processes the child tags of an Item or the document root,
// allocating an Instance for each "Item" tag found and decoding its
// "Properties" tag, per §4.6-§4.7.
func (dec *rdecoder) getItems(parent rbxfile.Ref, tags []*Tag) (refs []rbxfile.Ref) {
	for _, tag := range tags {
		if tag.StartName != "Item" {
			continue
		}

		class, ok := tag.AttrValue("class")
		if !ok {
			dec.document.Warnings = append(dec.document.Warnings, fmt.Errorf("item with missing class attribute"))
			continue
		}

		ref, err := dec.dom.NewInstance(class, parent)
		if err != nil {
			dec.err = err
			return nil
		}

		if referent, ok := tag.AttrValue("referent"); ok && referent != "" && referent != "null" {
			dec.referentToRef[referent] = ref
		}

		var childTags []*Tag
		for _, sub := range tag.Tags {
			switch sub.StartName {
			case "Properties":
				dec.decodeProperties(sub.Tags, ref, class)
			case "Item":
				childTags = append(childTags, sub)
			}
		}
		dec.getItems(ref, childTags)
		refs = append(refs, ref)
	}
	return refs
}

func (dec *rdecoder) decodeProperties(tags []*Tag, ref rbxfile.Ref, class string) {
	inst, ok := dec.dom.Get(ref)
	if !ok {
		return
	}
	for _, tag := range tags {
		name, value, ok := dec.getProperty(tag, class)
		if !ok {
			continue
		}

		canonical := name
		if desc, found := dec.codec.API.FindPropertyDescriptors(class, name); found {
			canonical = desc.Canonical
		} else if dec.codec.API != nil {
			// A nil API means there is no reflection to consult, so every
			// property passes through as observed regardless of
			// PropertyBehavior (whose zero value, IgnoreUnknown, would
			// otherwise drop every property of a totally default codec).
			switch dec.codec.PropertyBehavior {
			case reflection.ErrorOnUnknown:
				dec.err = rbxfile.ErrUnknownProperty{Class: class, Property: name}
				return
			case reflection.IgnoreUnknown:
				continue
			}
		}

		if referent, isRef := value.(pendingXmlRefValue); isRef {
			if referent.referent != "" {
				dec.pending = append(dec.pending, pendingXmlRef{ref: ref, canonical: canonical, referent: referent.referent})
			}
			continue
		}

		if canonical == "Name" {
			sv, ok := value.(rbxfile.ValueString)
			if !ok {
				dec.err = rbxfile.ErrNameMustBeString{Actual: value.Type()}
				return
			}
			inst.Name = string(sv)
			continue
		}
		inst.Set(canonical, value)
	}
}

// pendingXmlRefValue marks a decoded <Ref> tag whose target Instance hasn't
// necessarily been created yet; it is never stored in an Instance, only
// passed through decodeProperties to pendingXmlRef.
type pendingXmlRefValue struct{ referent string }

func (pendingXmlRefValue) Type() rbxfile.VariantType { return rbxfile.TypeRef }
func (v pendingXmlRefValue) String() string {
	if v.referent == "" {
		return "null"
	}
	return v.referent
}

func (dec *rdecoder) getProperty(tag *Tag, class string) (name string, value rbxfile.Value, ok bool) {
	name, ok = tag.AttrValue("name")
	if !ok {
		return "", nil, false
	}

	valueType := canonicalXmlTagName(tag.StartName)
	if desc, found := dec.codec.API.FindPropertyDescriptors(class, name); found {
		valueType = xmlTagForVariantType(desc.DataType)
	}

	value, ok = dec.getValue(tag, valueType)
	return name, value, ok
}

// canonicalXmlTagName maps legacy tag spellings still found in older rbxlx
// files onto the tag names getValue switches on.
func canonicalXmlTagName(tagName string) string {
	if tagName == "Object" {
		return "Ref"
	}
	return tagName
}

func xmlTagForVariantType(vt rbxfile.VariantType) string {
	switch vt {
	case rbxfile.TypeString:
		return "string"
	case rbxfile.TypeBinaryString:
		return "BinaryString"
	case rbxfile.TypeContent:
		return "Content"
	case rbxfile.TypeBool:
		return "bool"
	case rbxfile.TypeInt32:
		return "int"
	case rbxfile.TypeInt64:
		return "int64"
	case rbxfile.TypeFloat32:
		return "float"
	case rbxfile.TypeFloat64:
		return "double"
	case rbxfile.TypeUDim:
		return "UDim"
	case rbxfile.TypeUDim2:
		return "UDim2"
	case rbxfile.TypeFaces:
		return "Faces"
	case rbxfile.TypeAxes:
		return "Axes"
	case rbxfile.TypeColor3:
		return "Color3"
	case rbxfile.TypeColor3uint8:
		return "Color3uint8"
	case rbxfile.TypeVector2:
		return "Vector2"
	case rbxfile.TypeVector3:
		return "Vector3"
	case rbxfile.TypeVector2int16:
		return "Vector2int16"
	case rbxfile.TypeVector3int16:
		return "Vector3int16"
	case rbxfile.TypeCFrame:
		return "CoordinateFrame"
	case rbxfile.TypeEnum:
		return "token"
	case rbxfile.TypeRef:
		return "Ref"
	case rbxfile.TypeNumberSequence:
		return "NumberSequence"
	case rbxfile.TypeColorSequence:
		return "ColorSequence"
	case rbxfile.TypeNumberRange:
		return "NumberRange"
	case rbxfile.TypeRect:
		return "Rect2D"
	case rbxfile.TypePhysicalProperties:
		return "PhysicalProperties"
	default:
		return ""
	}
}

// getValue reads a rbxfile.Value from a property tag, using valueType to
// determine how the tag's content is interpreted.
func (dec *rdecoder) getValue(tag *Tag, valueType string) (value rbxfile.Value, ok bool) {
	switch valueType {
	case "Axes":
		var bits int32
		components{"axes": &bits}.getFrom(tag)
		return rbxfile.ValueAxes(bits & 0x7), true

	case "BinaryString":
		d := base64.NewDecoder(base64.StdEncoding, strings.NewReader(getContent(tag)))
		v, err := io.ReadAll(d)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueBinaryString(v), true

	case "bool":
		switch getContent(tag) {
		case "false", "False", "FALSE":
			return rbxfile.ValueBool(false), true
		case "true", "True", "TRUE":
			return rbxfile.ValueBool(true), true
		default:
			return nil, false
		}

	case "CoordinateFrame":
		v := rbxfile.ValueCFrame{}
		components{
			"X": &v.Position.X, "Y": &v.Position.Y, "Z": &v.Position.Z,
			"R00": &v.Rotation[0], "R01": &v.Rotation[1], "R02": &v.Rotation[2],
			"R10": &v.Rotation[3], "R11": &v.Rotation[4], "R12": &v.Rotation[5],
			"R20": &v.Rotation[6], "R21": &v.Rotation[7], "R22": &v.Rotation[8],
		}.getFrom(tag)
		return v, true

	case "Color3":
		content := getContent(tag)
		if len(content) > 0 {
			n, err := strconv.ParseUint(content, 10, 32)
			if err != nil {
				return nil, false
			}
			return rbxfile.ValueColor3{
				R: float32(n&0x00FF0000>>16) / 255,
				G: float32(n&0x0000FF00>>8) / 255,
				B: float32(n&0x000000FF) / 255,
			}, true
		}
		v := rbxfile.ValueColor3{}
		components{"R": &v.R, "G": &v.G, "B": &v.B}.getFrom(tag)
		return v, true

	case "Color3uint8":
		n, err := strconv.ParseUint(getContent(tag), 10, 32)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueColor3uint8{
			R: byte(n & 0x00FF0000 >> 16),
			G: byte(n & 0x0000FF00 >> 8),
			B: byte(n & 0x000000FF),
		}, true

	case "Content":
		for _, sub := range tag.Tags {
			switch sub.StartName {
			case "url":
				return rbxfile.ValueContent(getContent(sub)), true
			case "hash", "binary", "null":
				return rbxfile.ValueContent(""), true
			}
		}
		return rbxfile.ValueContent(""), true

	case "double":
		v, err := strconv.ParseFloat(getContent(tag), 64)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueFloat64(v), true

	case "Faces":
		var bits int32
		components{"faces": &bits}.getFrom(tag)
		return rbxfile.ValueFaces(bits & 0x3F), true

	case "float":
		v, err := strconv.ParseFloat(getContent(tag), 32)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueFloat32(v), true

	case "int":
		v, err := strconv.ParseInt(getContent(tag), 10, 32)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueInt32(v), true

	case "int64":
		v, err := strconv.ParseInt(getContent(tag), 10, 64)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueInt64(v), true

	case "Ref":
		content := getContent(tag)
		if content == "" || content == "null" {
			return pendingXmlRefValue{}, true
		}
		return pendingXmlRefValue{referent: content}, true

	case "string":
		return rbxfile.ValueString(getContent(tag)), true

	case "token":
		v, err := strconv.ParseUint(getContent(tag), 10, 32)
		if err != nil {
			return nil, false
		}
		return rbxfile.ValueEnum(v), true

	case "UDim2":
		v := rbxfile.ValueUDim2{}
		components{
			"XS": &v.X.Scale, "XO": &v.X.Offset,
			"YS": &v.Y.Scale, "YO": &v.Y.Offset,
		}.getFrom(tag)
		return v, true

	case "Vector2":
		v := rbxfile.ValueVector2{}
		components{"X": &v.X, "Y": &v.Y}.getFrom(tag)
		return v, true

	case "Vector2int16":
		v := rbxfile.ValueVector2int16{}
		components{"X": &v.X, "Y": &v.Y}.getFrom(tag)
		return v, true

	case "Vector3":
		v := rbxfile.ValueVector3{}
		components{"X": &v.X, "Y": &v.Y, "Z": &v.Z}.getFrom(tag)
		return v, true

	case "Vector3int16":
		v := rbxfile.ValueVector3int16{}
		components{"X": &v.X, "Y": &v.Y, "Z": &v.Z}.getFrom(tag)
		return v, true

	case "NumberSequence":
		b := []byte(getContent(tag))
		var v rbxfile.ValueNumberSequence
		for i := 0; i < len(b); {
			var nsk rbxfile.NumberSequenceKeypoint
			nsk.Time, i = scanFloat(b, i)
			nsk.Value, i = scanFloat(b, i)
			nsk.Envelope, i = scanFloat(b, i)
			if i < 0 {
				return nil, false
			}
			v = append(v, nsk)
		}
		if len(v) < 2 {
			return nil, false
		}
		return v, true

	case "ColorSequence":
		b := []byte(getContent(tag))
		var v rbxfile.ValueColorSequence
		for i := 0; i < len(b); {
			var csk rbxfile.ColorSequenceKeypoint
			csk.Time, i = scanFloat(b, i)
			csk.Value.R, i = scanFloat(b, i)
			csk.Value.G, i = scanFloat(b, i)
			csk.Value.B, i = scanFloat(b, i)
			csk.Envelope, i = scanFloat(b, i)
			if i < 0 {
				return nil, false
			}
			v = append(v, csk)
		}
		if len(v) < 2 {
			return nil, false
		}
		return v, true

	case "NumberRange":
		b := []byte(getContent(tag))
		v := rbxfile.ValueNumberRange{}
		i := 0
		v.Min, i = scanFloat(b, i)
		v.Max, i = scanFloat(b, i)
		if i < 0 {
			return nil, false
		}
		return v, true

	case "Rect2D":
		var min, max *Tag
		components{"min": &min, "max": &max}.getFrom(tag)
		v := rbxfile.ValueRect{}
		components{"X": &v.Min.X, "Y": &v.Min.Y}.getFrom(min)
		components{"X": &v.Max.X, "Y": &v.Max.Y}.getFrom(max)
		return v, true

	case "PhysicalProperties":
		v := rbxfile.ValuePhysicalProperties{}
		var cp *Tag
		components{
			"CustomPhysics":    &cp,
			"Density":          &v.Density,
			"Friction":         &v.Friction,
			"Elasticity":       &v.Elasticity,
			"FrictionWeight":   &v.FrictionWeight,
			"ElasticityWeight": &v.ElasticityWeight,
		}.getFrom(tag)
		if cp != nil {
			v.Custom = getContent(cp) == "true"
		}
		return v, true
	}

	return nil, false
}

func scanFloat(b []byte, i int) (float32, int) {
	if i < 0 || i >= len(b) {
		return 0, -1
	}
	s := i
	for ; i < len(b); i++ {
		if isSpace(b[i]) {
			f, err := strconv.ParseFloat(string(b[s:i]), 32)
			if err != nil {
				return 0, -1
			}
			for ; i < len(b); i++ {
				if !isSpace(b[i]) {
					break
				}
			}
			return float32(f), i
		}
	}
	return 0, -1
}

type components map[string]interface{}

func (c components) getFrom(tag *Tag) {
	if tag == nil {
		return
	}
	done := map[string]bool{}
	for _, sub := range tag.Tags {
		p, ok := c[sub.StartName]
		if !ok || done[sub.StartName] {
			continue
		}
		done[sub.StartName] = true
		switch v := p.(type) {
		case *int16:
			if n, err := strconv.ParseInt(getContent(sub), 10, 16); err == nil {
				*v = int16(n)
			}
		case *int32:
			if n, err := strconv.ParseInt(getContent(sub), 10, 32); err == nil {
				*v = int32(n)
			}
		case *float32:
			if n, err := strconv.ParseFloat(getContent(sub), 32); err == nil {
				*v = float32(n)
			}
		case **Tag:
			*v = sub
		}
	}
}

func getContent(tag *Tag) string {
	if tag.CData != nil {
		return string(tag.CData)
	}
	return tag.Text
}

type rencoder struct {
	dom      *rbxfile.Dom
	codec    RobloxCodec
	document *Document
	referent map[rbxfile.Ref]string
	err      error
}

func (c RobloxCodec) Encode(dom *rbxfile.Dom, roots []rbxfile.Ref) (document *Document, err error) {
	if roots == nil {
		roots = dom.Roots()
	}
	enc := &rencoder{
		dom:      dom,
		codec:    c,
		referent: make(map[rbxfile.Ref]string),
	}
	enc.encode(roots)
	return enc.document, enc.err
}

func (enc *rencoder) refFor(ref rbxfile.Ref) string {
	if ref.IsNull() {
		return "null"
	}
	if s, ok := enc.referent[ref]; ok {
		return s
	}
	s := "RBX" + strconv.Itoa(len(enc.referent))
	enc.referent[ref] = s
	return s
}

func (enc *rencoder) encode(roots []rbxfile.Ref) {
	enc.document = &Document{
		Prefix: "",
		Indent: "\t",
		Root:   NewRoot(),
	}
	if !enc.codec.ExcludeExternal {
		enc.document.Root.Tags = append(enc.document.Root.Tags,
			&Tag{StartName: "External", Text: "null"},
			&Tag{StartName: "External", Text: "nil"},
		)
	}
	for _, ref := range roots {
		enc.encodeInstance(ref, enc.document.Root)
	}
}

type sortTagsByNameAttr []*Tag

func (t sortTagsByNameAttr) Len() int      { return len(t) }
func (t sortTagsByNameAttr) Less(i, j int) bool {
	ni, _ := t[i].AttrValue("name")
	nj, _ := t[j].AttrValue("name")
	return ni < nj
}
func (t sortTagsByNameAttr) Swap(i, j int) { t[i], t[j] = t[j], t[i] }

func (enc *rencoder) encodeInstance(ref rbxfile.Ref, parent *Tag) {
	inst, ok := enc.dom.Get(ref)
	if !ok {
		enc.err = rbxfile.ErrInvalidInstanceId{Ref: ref}
		return
	}

	properties := enc.encodeProperties(inst)
	item := NewItem(inst.Class, enc.refFor(ref), properties...)
	if enc.codec.ExcludeReferent {
		item.SetAttrValue("referent", "")
	}
	parent.Tags = append(parent.Tags, item)

	for _, child := range inst.Children() {
		enc.encodeInstance(child, item)
	}
}

func (enc *rencoder) encodeProperties(inst *rbxfile.Instance) (tags []*Tag) {
	nameTag := enc.encodeProperty(inst.Class, "Name", rbxfile.ValueString(inst.Name))

	names := make([]string, 0, len(inst.Properties))
	for name := range inst.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var rest []*Tag
	for _, name := range names {
		value := inst.Properties[name]
		wireName := name
		if desc, found := enc.codec.API.FindPropertyDescriptors(inst.Class, name); found {
			if !desc.Persisted() {
				continue
			}
			wireName = desc.Serialized
		} else if enc.codec.API != nil && enc.codec.PropertyBehavior == reflection.ErrorOnUnknown {
			enc.err = rbxfile.ErrUnknownProperty{Class: inst.Class, Property: name}
			return
		} else if enc.codec.API != nil && enc.codec.PropertyBehavior == reflection.IgnoreUnknown {
			continue
		}

		tag := enc.encodeProperty(inst.Class, wireName, value)
		if tag != nil {
			rest = append(rest, tag)
		}
	}
	sort.Sort(sortTagsByNameAttr(rest))

	tags = append(tags, nameTag)
	tags = append(tags, rest...)
	return tags
}

func (enc *rencoder) encodeProperty(class, prop string, value rbxfile.Value) *Tag {
	attr := []Attr{{Name: "name", Value: prop}}
	switch value := value.(type) {
	case rbxfile.ValueAxes:
		return &Tag{StartName: "Axes", Attr: attr, Tags: []*Tag{
			{StartName: "axes", NoIndent: true, Text: strconv.FormatUint(uint64(value)&0x7, 10)},
		}}

	case rbxfile.ValueBinaryString:
		buf := new(bytes.Buffer)
		sw := &lineSplit{w: buf, s: 72, n: 72}
		bw := base64.NewEncoder(base64.StdEncoding, sw)
		bw.Write([]byte(value))
		bw.Close()
		tag := &Tag{StartName: "BinaryString", Attr: attr, NoIndent: true}
		encodeContent(tag, buf.String())
		return tag

	case rbxfile.ValueBool:
		v := "false"
		if value {
			v = "true"
		}
		return &Tag{StartName: "bool", Attr: attr, NoIndent: true, Text: v}

	case rbxfile.ValueCFrame:
		return &Tag{StartName: "CoordinateFrame", Attr: attr, Tags: []*Tag{
			{StartName: "X", NoIndent: true, Text: encodeFloat(value.Position.X)},
			{StartName: "Y", NoIndent: true, Text: encodeFloat(value.Position.Y)},
			{StartName: "Z", NoIndent: true, Text: encodeFloat(value.Position.Z)},
			{StartName: "R00", NoIndent: true, Text: encodeFloat(value.Rotation[0])},
			{StartName: "R01", NoIndent: true, Text: encodeFloat(value.Rotation[1])},
			{StartName: "R02", NoIndent: true, Text: encodeFloat(value.Rotation[2])},
			{StartName: "R10", NoIndent: true, Text: encodeFloat(value.Rotation[3])},
			{StartName: "R11", NoIndent: true, Text: encodeFloat(value.Rotation[4])},
			{StartName: "R12", NoIndent: true, Text: encodeFloat(value.Rotation[5])},
			{StartName: "R20", NoIndent: true, Text: encodeFloat(value.Rotation[6])},
			{StartName: "R21", NoIndent: true, Text: encodeFloat(value.Rotation[7])},
			{StartName: "R22", NoIndent: true, Text: encodeFloat(value.Rotation[8])},
		}}

	case rbxfile.ValueColor3:
		r := uint64(value.R * 255)
		g := uint64(value.G * 255)
		b := uint64(value.B * 255)
		return &Tag{StartName: "Color3", Attr: attr, NoIndent: true,
			Text: strconv.FormatUint(0xFF<<24|r<<16|g<<8|b, 10)}

	case rbxfile.ValueColor3uint8:
		r, g, b := uint64(value.R), uint64(value.G), uint64(value.B)
		return &Tag{StartName: "Color3uint8", Attr: attr, NoIndent: true,
			Text: strconv.FormatUint(0xFF<<24|r<<16|g<<8|b, 10)}

	case rbxfile.ValueContent:
		tag := &Tag{StartName: "Content", Attr: attr, NoIndent: true, Tags: []*Tag{{NoIndent: true}}}
		if len(value) == 0 {
			tag.Tags[0].StartName = "null"
		} else {
			tag.Tags[0].StartName = "url"
			tag.Tags[0].Text = string(value)
		}
		return tag

	case rbxfile.ValueFloat64:
		return &Tag{StartName: "double", Attr: attr, NoIndent: true, Text: encodeDouble(float64(value))}

	case rbxfile.ValueFaces:
		return &Tag{StartName: "Faces", Attr: attr, Tags: []*Tag{
			{StartName: "faces", NoIndent: true, Text: strconv.FormatUint(uint64(value)&0x3F, 10)},
		}}

	case rbxfile.ValueFloat32:
		return &Tag{StartName: "float", Attr: attr, NoIndent: true, Text: encodeFloat(float32(value))}

	case rbxfile.ValueInt32:
		return &Tag{StartName: "int", Attr: attr, NoIndent: true, Text: strconv.FormatInt(int64(value), 10)}

	case rbxfile.ValueInt64:
		return &Tag{StartName: "int64", Attr: attr, NoIndent: true, Text: strconv.FormatInt(int64(value), 10)}

	case rbxfile.ValueRef:
		return &Tag{StartName: "Ref", Attr: attr, NoIndent: true, Text: enc.refFor(value.Ref)}

	case rbxfile.ValueString:
		return &Tag{StartName: "string", Attr: attr, NoIndent: true, Text: string(value)}

	case rbxfile.ValueEnum:
		return &Tag{StartName: "token", Attr: attr, NoIndent: true, Text: strconv.FormatUint(uint64(value), 10)}

	case rbxfile.ValueUDim2:
		return &Tag{StartName: "UDim2", Attr: attr, Tags: []*Tag{
			{StartName: "XS", NoIndent: true, Text: encodeFloat(value.X.Scale)},
			{StartName: "XO", NoIndent: true, Text: strconv.FormatInt(int64(value.X.Offset), 10)},
			{StartName: "YS", NoIndent: true, Text: encodeFloat(value.Y.Scale)},
			{StartName: "YO", NoIndent: true, Text: strconv.FormatInt(int64(value.Y.Offset), 10)},
		}}

	case rbxfile.ValueVector2:
		return &Tag{StartName: "Vector2", Attr: attr, Tags: []*Tag{
			{StartName: "X", NoIndent: true, Text: encodeFloat(value.X)},
			{StartName: "Y", NoIndent: true, Text: encodeFloat(value.Y)},
		}}

	case rbxfile.ValueVector2int16:
		return &Tag{StartName: "Vector2int16", Attr: attr, Tags: []*Tag{
			{StartName: "X", NoIndent: true, Text: strconv.FormatInt(int64(value.X), 10)},
			{StartName: "Y", NoIndent: true, Text: strconv.FormatInt(int64(value.Y), 10)},
		}}

	case rbxfile.ValueVector3:
		return &Tag{StartName: "Vector3", Attr: attr, Tags: []*Tag{
			{StartName: "X", NoIndent: true, Text: encodeFloat(value.X)},
			{StartName: "Y", NoIndent: true, Text: encodeFloat(value.Y)},
			{StartName: "Z", NoIndent: true, Text: encodeFloat(value.Z)},
		}}

	case rbxfile.ValueVector3int16:
		return &Tag{StartName: "Vector3int16", Attr: attr, Tags: []*Tag{
			{StartName: "X", NoIndent: true, Text: strconv.FormatInt(int64(value.X), 10)},
			{StartName: "Y", NoIndent: true, Text: strconv.FormatInt(int64(value.Y), 10)},
			{StartName: "Z", NoIndent: true, Text: strconv.FormatInt(int64(value.Z), 10)},
		}}

	case rbxfile.ValueNumberSequence:
		var b []byte
		for _, nsk := range value {
			b = append(b, []byte(encodeFloatPrec(nsk.Time, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(nsk.Value, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(nsk.Envelope, 6))...)
			b = append(b, ' ')
		}
		return &Tag{StartName: "NumberSequence", Attr: attr, Text: string(b)}

	case rbxfile.ValueColorSequence:
		var b []byte
		for _, csk := range value {
			b = append(b, []byte(encodeFloatPrec(csk.Time, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(csk.Value.R, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(csk.Value.G, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(csk.Value.B, 6))...)
			b = append(b, ' ')
			b = append(b, []byte(encodeFloatPrec(csk.Envelope, 6))...)
			b = append(b, ' ')
		}
		return &Tag{StartName: "ColorSequence", Attr: attr, Text: string(b)}

	case rbxfile.ValueNumberRange:
		b := append([]byte(encodeFloatPrec(value.Min, 6)), ' ')
		b = append(b, []byte(encodeFloatPrec(value.Max, 6))...)
		return &Tag{StartName: "NumberRange", Attr: attr, Text: string(b)}

	case rbxfile.ValueRect:
		return &Tag{StartName: "Rect2D", Attr: attr, Tags: []*Tag{
			{StartName: "min", Tags: []*Tag{
				{StartName: "X", NoIndent: true, Text: encodeFloat(value.Min.X)},
				{StartName: "Y", NoIndent: true, Text: encodeFloat(value.Min.Y)},
			}},
			{StartName: "max", Tags: []*Tag{
				{StartName: "X", NoIndent: true, Text: encodeFloat(value.Max.X)},
				{StartName: "Y", NoIndent: true, Text: encodeFloat(value.Max.Y)},
			}},
		}}

	case rbxfile.ValuePhysicalProperties:
		if !value.Custom {
			return &Tag{StartName: "PhysicalProperties", Attr: attr, Tags: []*Tag{
				{StartName: "CustomPhysics", Text: "false"},
			}}
		}
		return &Tag{StartName: "PhysicalProperties", Attr: attr, Tags: []*Tag{
			{StartName: "CustomPhysics", Text: "true"},
			{StartName: "Density", Text: encodeFloat(value.Density)},
			{StartName: "Friction", Text: encodeFloat(value.Friction)},
			{StartName: "Elasticity", Text: encodeFloat(value.Elasticity)},
			{StartName: "FrictionWeight", Text: encodeFloat(value.FrictionWeight)},
			{StartName: "ElasticityWeight", Text: encodeFloat(value.ElasticityWeight)},
		}}
	}

	return nil
}

type lineSplit struct {
	w io.Writer
	s int
	n int
}

func (l *lineSplit) Write(p []byte) (n int, err error) {
	for i := 0; ; {
		var q []byte
		if len(p[i:]) < l.n {
			q = p[i:]
		} else {
			q = p[i : i+l.n]
		}
		n, err = l.w.Write(q)
		if n < len(q) {
			return
		}
		l.n -= len(q)
		i += len(q)
		if i >= len(p) {
			break
		}
		if l.n <= 0 {
			if _, e := l.w.Write([]byte{'\n'}); e != nil {
				return
			}
			l.n = l.s
		}
	}
	return
}

func encodeFloat(f float32) string {
	return fixFloatExp(strconv.FormatFloat(float64(f), 'g', 9, 32), 3)
}

func encodeFloatPrec(f float32, prec int) string {
	return fixFloatExp(strconv.FormatFloat(float64(f), 'g', prec, 32), 3)
}

func fixFloatExp(s string, n int) string {
	if e := strings.Index(s, "e"); e >= 0 {
		exp := s[e+2:]
		if len(exp) < n {
			s = s[:e+2] + strings.Repeat("0", n-len(exp)) + exp
		}
	}
	return s
}

func encodeDouble(f float64) string {
	return strconv.FormatFloat(f, 'g', 9, 64)
}

func encodeContent(tag *Tag, text string) {
	if len(text) > 0 && !strings.Contains(text, "]]>") {
		tag.CData = []byte(text)
		return
	}
	tag.Text = text
}
