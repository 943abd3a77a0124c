package binary

import (
	"bytes"
	"io"

	"github.com/anaminus/parse"
	"github.com/robloxfile/rbxdom"
	"github.com/robloxfile/rbxdom/errors"
	"github.com/robloxfile/rbxdom/reflection"
)

// Decoder reads the binary format into a Dom.
type Decoder struct {
	Options

	// Warnings accumulates non-fatal notices from the most recent Decode
	// call: unknown chunk names skipped, unknown properties dropped under
	// IgnoreUnknown, and similar.
	Warnings errors.Errors
}

// NewDecoder returns a Decoder configured with opts.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{Options: opts}
}

// decodedType is the decode-side counterpart of TypeInfo: enough to resolve
// PROP chunks (class, for reflection lookup) and scatter columns back into
// instances (refs, in the same order the INST chunk listed them).
type decodedType struct {
	class     string
	isService bool
	refs      []rbxfile.Ref
}

type warnUnknownChunk struct {
	sig chunkSignature
}

func (w warnUnknownChunk) Error() string {
	return "binary: skipped unknown chunk " + w.sig.String()
}

type warnUnknownProperty struct {
	class, property string
}

func (w warnUnknownProperty) Error() string {
	return "binary: dropped unknown property " + w.class + "." + w.property
}

// pendingRef is a Ref-typed property assignment deferred until every INST
// chunk has been decoded, since a Ref property may target an instance of
// any class, emitted in a later chunk than the one assigning it.
type pendingRef struct {
	ref       rbxfile.Ref
	canonical string
	referent  int32
}

// Decode reads a complete binary file from r and returns the resulting Dom
// and its top-level instances.
func (d *Decoder) Decode(r io.Reader) (dom *rbxfile.Dom, roots []rbxfile.Ref, err error) {
	d.Warnings = nil

	magic := make([]byte, 8)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, rbxfile.ErrTruncated{Context: "header magic"}
	}
	if string(magic) != header {
		return nil, nil, rbxfile.ErrBadMagic{Got: magic}
	}
	sig := make([]byte, 6)
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, nil, rbxfile.ErrTruncated{Context: "header signature"}
	}
	if string(sig) != signature {
		return nil, nil, rbxfile.ErrBadMagic{Got: sig}
	}

	fr := parse.NewBinaryReader(r)
	var version uint16
	if fr.Number(&version) {
		return nil, nil, fr.End()
	}
	if version != 0 {
		return nil, nil, rbxfile.ErrMalformedHeader{Reason: "unsupported version"}
	}
	var typeCount, instanceCount uint32
	if fr.Number(&typeCount) {
		return nil, nil, fr.End()
	}
	if fr.Number(&instanceCount) {
		return nil, nil, fr.End()
	}
	reserved := make([]byte, 8)
	if fr.Bytes(reserved) {
		return nil, nil, fr.End()
	}
	if err := fr.End(); err != nil {
		return nil, nil, err
	}

	dom = rbxfile.NewDom()
	byType := make(map[uint32]*decodedType)
	referentToRef := make(map[int32]rbxfile.Ref)
	var pending []pendingRef

	var prntSubjects, prntParents []int32
	ended := false

	for {
		c := &rawChunk{}
		if c.decode(fr) {
			return nil, nil, fr.End()
		}

		switch c.signature {
		case sigMETA:
			// No metadata is currently surfaced on the Dom; see the design
			// notes on the open metadata-preservation question.

		case sigINST:
			id, class, isService, refs, err := d.decodeInstChunk(c.payload, dom, referentToRef)
			if err != nil {
				return nil, nil, err
			}
			byType[id] = &decodedType{class: class, isService: isService, refs: refs}

		case sigPROP:
			more, err := d.decodePropChunk(c.payload, dom, byType)
			if err != nil {
				return nil, nil, err
			}
			pending = append(pending, more...)

		case sigPRNT:
			subjects, parents, err := decodePrntChunk(c.payload)
			if err != nil {
				return nil, nil, err
			}
			prntSubjects, prntParents = subjects, parents

		case sigEND:
			ended = true

		default:
			d.Warnings = append(d.Warnings, warnUnknownChunk{sig: c.signature})
		}

		if ended {
			break
		}
	}

	for _, p := range pending {
		inst, ok := dom.Get(p.ref)
		if !ok {
			continue
		}
		target := referentToRef[p.referent] // zero Ref (null) if unresolved
		inst.Set(p.canonical, rbxfile.ValueRef{Ref: target})
	}

	if len(prntSubjects) != len(prntParents) {
		return nil, nil, rbxfile.ErrInvalidChunk{Sig: "PRNT", Reason: "subjects/parents length mismatch"}
	}
	for i := range prntSubjects {
		child, ok := referentToRef[prntSubjects[i]]
		if !ok {
			continue
		}
		parent := rbxfile.Ref{}
		if prntParents[i] >= 0 {
			if p, ok := referentToRef[prntParents[i]]; ok {
				parent = p
			}
		}
		if err := dom.SetParent(child, parent); err != nil {
			return nil, nil, err
		}
	}

	return dom, dom.Roots(), nil
}

func readBinString(fr *parse.BinaryReader) (string, error) {
	var length uint32
	if fr.Number(&length) {
		return "", fr.End()
	}
	s := make([]byte, length)
	if fr.Bytes(s) {
		return "", fr.End()
	}
	return string(s), nil
}

// decodeInstChunk parses an INST chunk, allocates fresh Instances in the
// Dom for each referent, and records the referent→Ref mapping used to
// resolve PROP Ref columns and the PRNT chunk.
func (d *Decoder) decodeInstChunk(
	payload []byte,
	dom *rbxfile.Dom,
	referentToRef map[int32]rbxfile.Ref,
) (id uint32, class string, isService bool, refs []rbxfile.Ref, err error) {
	fr := parse.NewBinaryReader(bytes.NewReader(payload))
	if fr.Number(&id) {
		return 0, "", false, nil, fr.End()
	}
	if class, err = readBinString(fr); err != nil {
		return 0, "", false, nil, err
	}
	var isServiceByte uint8
	if fr.Number(&isServiceByte) {
		return 0, "", false, nil, fr.End()
	}
	isService = isServiceByte != 0

	var count uint32
	if fr.Number(&count) {
		return 0, "", false, nil, fr.End()
	}

	idsRaw := make([]byte, count*4)
	if count > 0 {
		if fr.Bytes(idsRaw) {
			return 0, "", false, nil, fr.End()
		}
	}

	if isService {
		getService := make([]byte, count)
		if fr.Bytes(getService) {
			return 0, "", false, nil, fr.End()
		}
	}
	if err = fr.End(); err != nil {
		return 0, "", false, nil, err
	}

	deltas, err := int32ColumnFromBytes(idsRaw, int(count))
	if err != nil {
		return 0, "", false, nil, err
	}
	referents := deltaDecodeRefs(deltas)

	refs = make([]rbxfile.Ref, count)
	for i, referent := range referents {
		ref, nerr := dom.NewInstance(class, rbxfile.Ref{})
		if nerr != nil {
			return 0, "", false, nil, nerr
		}
		refs[i] = ref
		referentToRef[referent] = ref
	}

	return id, class, isService, refs, nil
}

func (d *Decoder) decodePropChunk(payload []byte, dom *rbxfile.Dom, byType map[uint32]*decodedType) ([]pendingRef, error) {
	fr := parse.NewBinaryReader(bytes.NewReader(payload))
	var typeID uint32
	if fr.Number(&typeID) {
		return nil, fr.End()
	}
	serialized, err := readBinString(fr)
	if err != nil {
		return nil, err
	}
	var tagByte uint8
	if fr.Number(&tagByte) {
		return nil, fr.End()
	}
	raw, err := fr.All()
	if err != nil {
		return nil, err
	}

	ti, ok := byType[typeID]
	if !ok {
		d.Warnings = append(d.Warnings, warnUnknownChunk{})
		return nil, nil
	}

	canonical := serialized
	if desc, found := d.API.FindPropertyDescriptors(ti.class, serialized); found {
		canonical = desc.Canonical
	} else if d.API != nil && d.PropertyBehavior != reflection.NoReflection {
		// A nil API means there is no reflection to consult in the first
		// place, so every property passes through as observed regardless
		// of PropertyBehavior (whose zero value, IgnoreUnknown, would
		// otherwise drop every property of a totally default Decoder).
		switch d.PropertyBehavior {
		case reflection.ErrorOnUnknown:
			return nil, rbxfile.ErrUnknownProperty{Class: ti.class, Property: serialized}
		case reflection.IgnoreUnknown:
			d.Warnings = append(d.Warnings, warnUnknownProperty{class: ti.class, property: serialized})
			return nil, nil
		// ReadUnknown falls through, keeping the as-seen (serialized) name.
		default:
		}
	}

	tag := typeTag(tagByte)
	vt := variantTypeForTag[tag]
	return scatterColumn(raw, tag, vt, ti, canonical, dom)
}

// scatterColumn decodes a column payload and writes each value into its
// instance. Ref columns are returned as pendingRef entries instead of
// resolved immediately, since their targets may not be known yet.
func scatterColumn(raw []byte, tag typeTag, vt rbxfile.VariantType, ti *decodedType, canonical string, dom *rbxfile.Dom) ([]pendingRef, error) {
	n := len(ti.refs)

	if tag == tagRef {
		deltas, err := int32ColumnFromBytes(raw, n)
		if err != nil {
			return nil, err
		}
		referents := deltaDecodeRefs(deltas)
		pending := make([]pendingRef, 0, n)
		for i, ref := range ti.refs {
			pending = append(pending, pendingRef{ref: ref, canonical: canonical, referent: referents[i]})
		}
		return pending, nil
	}

	values, err := decodeColumn(tag, vt, raw, n)
	if err != nil {
		return nil, err
	}
	for i, ref := range ti.refs {
		inst, ok := dom.Get(ref)
		if !ok {
			continue
		}
		if canonical == "Name" {
			sv, ok := values[i].(rbxfile.ValueString)
			if !ok {
				return nil, rbxfile.ErrNameMustBeString{Actual: values[i].Type()}
			}
			inst.Name = string(sv)
			continue
		}
		inst.Set(canonical, values[i])
	}
	return nil, nil
}

func decodePrntChunk(payload []byte) ([]int32, []int32, error) {
	fr := parse.NewBinaryReader(bytes.NewReader(payload))
	var version uint8
	if fr.Number(&version) {
		return nil, nil, fr.End()
	}
	var count uint32
	if fr.Number(&count) {
		return nil, nil, fr.End()
	}
	body, err := fr.All()
	if err != nil {
		return nil, nil, err
	}
	if len(body) != int(count)*8 {
		return nil, nil, rbxfile.ErrTruncated{Context: "PRNT arrays"}
	}
	subjDeltas, err := int32ColumnFromBytes(body[:count*4], int(count))
	if err != nil {
		return nil, nil, err
	}
	parDeltas, err := int32ColumnFromBytes(body[count*4:], int(count))
	if err != nil {
		return nil, nil, err
	}
	return deltaDecodeRefs(subjDeltas), deltaDecodeRefs(parDeltas), nil
}
