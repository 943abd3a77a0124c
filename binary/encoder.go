// Package binary implements the chunked binary place/model file format: a
// header, a sequence of chunks (META/INST/PROP/PRNT/END), each LZ4-compressed
// except END and chunks with an empty payload, and a columnar encoding of
// property values within each PROP chunk.
package binary

import (
	"bytes"
	"io"
	"sort"

	"github.com/anaminus/parse"
	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/reflection"
)

// header is the fixed 8-byte magic that opens every binary file.
const header = "<roblox!"

// signature is the fixed 6-byte marker following the magic.
const signature = "\x89\xff\r\n\x1a\n"

// Options configures an Encoder or Decoder.
type Options struct {
	// API is the reflection database consulted for canonical/serialized
	// name mapping, default values, and class tags. A nil API causes every
	// property to be treated as observed, whatever PropertyBehavior is set to.
	API *reflection.Database

	// PropertyBehavior selects how unknown properties are handled.
	PropertyBehavior reflection.Behavior
}

// Encoder writes a Dom to the binary format.
type Encoder struct {
	Options

	// Warnings accumulates non-fatal notices from the most recent Encode
	// call.
	Warnings []error
}

// NewEncoder returns an Encoder configured with opts.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{Options: opts}
}

// Encode writes dom's selected roots (or, if roots is nil, dom.Roots()) to
// w. Encode does not flush any output if it returns an error.
func (e *Encoder) Encode(w io.Writer, dom *rbxfile.Dom, roots []rbxfile.Ref) error {
	e.Warnings = nil
	if roots == nil {
		roots = dom.Roots()
	}

	relevant, err := enumerate(dom, roots)
	if err != nil {
		return err
	}

	referents := make(map[rbxfile.Ref]int32, len(relevant))
	for i, ref := range relevant {
		referents[ref] = int32(i)
	}

	types, order, err := e.collectTypes(dom, relevant)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString(signature)

	fw := parse.NewBinaryWriter(&buf)
	if fw.Number(uint16(0)) { // version
		return fw.End()
	}
	if fw.Number(uint32(len(order))) { // type count
		return fw.End()
	}
	if fw.Number(uint32(len(relevant))) { // instance count
		return fw.End()
	}
	if fw.Bytes(make([]byte, 8)) { // reserved
		return fw.End()
	}
	if err := fw.End(); err != nil {
		return err
	}

	if err := writeChunk(&buf, sigMETA, nil); err != nil {
		return err
	}

	for _, class := range order {
		ti := types[class]
		payload, err := encodeInstChunk(ti, referents)
		if err != nil {
			return err
		}
		if err := writeChunk(&buf, sigINST, payload); err != nil {
			return err
		}

		var propNames []string
		for name := range ti.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)
		for _, name := range propNames {
			prop := ti.Properties[name]
			payload, err := e.encodePropChunk(dom, ti, name, prop, referents)
			if err != nil {
				return err
			}
			if err := writeChunk(&buf, sigPROP, payload); err != nil {
				return err
			}
		}
	}

	prntPayload, err := encodePrntChunk(relevant, dom, referents)
	if err != nil {
		return err
	}
	if err := writeChunk(&buf, sigPRNT, prntPayload); err != nil {
		return err
	}

	end := &rawChunk{signature: sigEND, compressed: false, payload: []byte("</roblox>")}
	ew := parse.NewBinaryWriter(&buf)
	if end.writeTo(ew) {
		return ew.End()
	}
	if err := ew.End(); err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return err
}

func writeChunk(buf *bytes.Buffer, sig chunkSignature, payload []byte) error {
	c := &rawChunk{signature: sig, compressed: len(payload) > 0, payload: payload}
	fw := parse.NewBinaryWriter(buf)
	if c.writeTo(fw) {
		return fw.End()
	}
	return fw.End()
}

// enumerate performs a breadth-first walk from roots, visiting every
// instance once, per §4.2 step 1.
func enumerate(dom *rbxfile.Dom, roots []rbxfile.Ref) ([]rbxfile.Ref, error) {
	var order []rbxfile.Ref
	visited := make(map[rbxfile.Ref]bool)
	queue := append([]rbxfile.Ref(nil), roots...)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if visited[ref] {
			continue
		}
		inst, ok := dom.Get(ref)
		if !ok {
			return nil, rbxfile.ErrInvalidInstanceId{Ref: ref}
		}
		visited[ref] = true
		order = append(order, ref)
		queue = append(queue, inst.Children()...)
	}
	return order, nil
}

// collectTypes groups relevant instances by class and resolves each
// property's column descriptor, per §4.2 step 2.
func (e *Encoder) collectTypes(dom *rbxfile.Dom, relevant []rbxfile.Ref) (map[string]*TypeInfo, []string, error) {
	types := make(map[string]*TypeInfo)
	var order []string

	for _, ref := range relevant {
		inst, _ := dom.Get(ref)
		ti, ok := types[inst.Class]
		if !ok {
			ti = newTypeInfo(uint32(len(order)), inst.Class)
			if cd, found := e.API.FindClass(inst.Class); found {
				ti.IsService = cd.IsService()
			}
			types[inst.Class] = ti
			order = append(order, inst.Class)
		}
		ti.Instances = append(ti.Instances, ref)

		if _, ok := ti.Properties["Name"]; !ok {
			ti.Properties["Name"] = &PropInfo{Tag: tagString, Serialized: "Name", Default: rbxfile.ValueString("")}
		}

		for propName, value := range inst.Properties {
			canonical, serialized := propName, propName
			if desc, found := e.API.FindPropertyDescriptors(inst.Class, propName); found {
				canonical = desc.Canonical
				serialized = desc.Serialized
				if serialized == "" {
					continue // not persisted
				}
			} else if e.API != nil {
				switch e.PropertyBehavior {
				case reflection.ErrorOnUnknown:
					return nil, nil, rbxfile.ErrUnknownProperty{Class: inst.Class, Property: propName}
				case reflection.IgnoreUnknown:
					continue
				}
			}

			vt := value.Type()
			tag, ok := tagForVariantType[vt]
			if !ok {
				return nil, nil, rbxfile.ErrUnsupportedPropType{Class: inst.Class, Property: canonical, Type: vt}
			}

			prop, exists := ti.Properties[canonical]
			if !exists {
				def, err := e.resolveDefault(inst.Class, canonical, vt)
				if err != nil {
					return nil, nil, err
				}
				prop = &PropInfo{Tag: tag, Serialized: serialized, Default: def}
				ti.Properties[canonical] = prop
			}
			if propName != canonical {
				if prop.Aliases == nil {
					prop.Aliases = make(map[string]bool)
				}
				prop.Aliases[propName] = true
			}
		}
	}

	sort.Strings(order)
	return types, order, nil
}

func (e *Encoder) resolveDefault(class, canonical string, vt rbxfile.VariantType) (rbxfile.Value, error) {
	if v, ok := e.API.DefaultValue(class, canonical); ok {
		return v, nil
	}
	if v, ok := defaultValueFor(vt); ok {
		return v, nil
	}
	return nil, rbxfile.ErrUnsupportedPropType{Class: class, Property: canonical, Type: vt}
}

func encodeInstChunk(ti *TypeInfo, referents map[rbxfile.Ref]int32) ([]byte, error) {
	var buf bytes.Buffer
	fw := parse.NewBinaryWriter(&buf)
	if fw.Number(ti.ID) {
		return nil, fw.End()
	}
	if writeBinString(fw, ti.Class) {
		return nil, fw.End()
	}
	var isService uint8
	if ti.IsService {
		isService = 1
	}
	if fw.Number(isService) {
		return nil, fw.End()
	}
	if fw.Number(uint32(len(ti.Instances))) {
		return nil, fw.End()
	}
	if err := fw.End(); err != nil {
		return nil, err
	}

	ids := make([]int32, len(ti.Instances))
	for i, ref := range ti.Instances {
		ids[i] = referents[ref]
	}
	buf.Write(int32ColumnBytes(deltaEncodeRefs(ids)))

	if ti.IsService {
		buf.Write(bytes.Repeat([]byte{1}, len(ti.Instances)))
	}

	return buf.Bytes(), nil
}

func writeBinString(fw *parse.BinaryWriter, s string) bool {
	if fw.Number(uint32(len(s))) {
		return true
	}
	return fw.Bytes([]byte(s))
}

func (e *Encoder) encodePropChunk(dom *rbxfile.Dom, ti *TypeInfo, canonical string, prop *PropInfo, referents map[rbxfile.Ref]int32) ([]byte, error) {
	values := make([]rbxfile.Value, len(ti.Instances))
	for i, ref := range ti.Instances {
		inst, _ := dom.Get(ref)
		var v rbxfile.Value
		switch {
		case canonical == "Name":
			v = rbxfile.ValueString(inst.Name)
		default:
			if found := inst.Get(canonical); found != nil {
				v = found
			} else {
				for alias := range prop.Aliases {
					if found := inst.Get(alias); found != nil {
						v = found
						break
					}
				}
			}
			if v == nil {
				v = prop.Default
			}
		}

		if prop.Tag == tagRef {
			rv, ok := v.(rbxfile.ValueRef)
			if !ok {
				return nil, rbxfile.ErrPropTypeMismatch{
					Class: ti.Class, Property: canonical,
					Expected: rbxfile.TypeRef, Actual: v.Type(),
					InstanceFullName: dom.GetFullName(ref),
				}
			}
			referent := int32(-1)
			if !rv.Ref.IsNull() {
				if r, ok := referents[rv.Ref]; ok {
					referent = r
				}
			}
			values[i] = refColumnValue{referent: referent}
			continue
		}

		if tagForVariantType[v.Type()] != prop.Tag {
			return nil, rbxfile.ErrPropTypeMismatch{
				Class: ti.Class, Property: canonical,
				Expected: variantTypeForTag[prop.Tag], Actual: v.Type(),
				InstanceFullName: dom.GetFullName(ref),
			}
		}
		values[i] = v
	}

	var buf bytes.Buffer
	fw := parse.NewBinaryWriter(&buf)
	if fw.Number(ti.ID) {
		return nil, fw.End()
	}
	if writeBinString(fw, prop.Serialized) {
		return nil, fw.End()
	}
	if fw.Number(uint8(prop.Tag)) {
		return nil, fw.End()
	}
	if err := fw.End(); err != nil {
		return nil, err
	}

	col, err := encodeColumn(prop.Tag, values)
	if err != nil {
		return nil, err
	}
	buf.Write(col)
	return buf.Bytes(), nil
}

func encodePrntChunk(relevant []rbxfile.Ref, dom *rbxfile.Dom, referents map[rbxfile.Ref]int32) ([]byte, error) {
	var buf bytes.Buffer
	fw := parse.NewBinaryWriter(&buf)
	if fw.Number(uint8(0)) { // version
		return nil, fw.End()
	}
	if fw.Number(uint32(len(relevant))) {
		return nil, fw.End()
	}
	if err := fw.End(); err != nil {
		return nil, err
	}

	subjects := make([]int32, len(relevant))
	parents := make([]int32, len(relevant))
	for i, ref := range relevant {
		subjects[i] = referents[ref]
		inst, _ := dom.Get(ref)
		p := inst.Parent()
		if p.IsNull() {
			parents[i] = -1
			continue
		}
		if pr, ok := referents[p]; ok {
			parents[i] = pr
		} else {
			parents[i] = -1
		}
	}

	buf.Write(int32ColumnBytes(deltaEncodeRefs(subjects)))
	buf.Write(int32ColumnBytes(deltaEncodeRefs(parents)))
	return buf.Bytes(), nil
}
