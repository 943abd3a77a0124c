package binary

import "github.com/robloxfile/rbxdom"

// typeTag is the on-wire byte identifying a property's binary value type.
type typeTag byte

const (
	tagString      typeTag = 0x1
	tagBool        typeTag = 0x2
	tagInt32       typeTag = 0x3
	tagFloat32     typeTag = 0x4
	tagFloat64     typeTag = 0x5
	tagUDim        typeTag = 0x6
	tagUDim2       typeTag = 0x7
	tagRay         typeTag = 0x8
	tagFaces       typeTag = 0x9
	tagAxes        typeTag = 0xA
	tagBrickColor  typeTag = 0xB
	tagColor3      typeTag = 0xC
	tagVector2     typeTag = 0xD
	tagVector3     typeTag = 0xE
	tagVector2int  typeTag = 0xF
	tagCFrame      typeTag = 0x10
	tagEnum        typeTag = 0x12
	tagRef         typeTag = 0x13
	tagVector3int  typeTag = 0x14
	tagNumSeq      typeTag = 0x15
	tagColorSeq    typeTag = 0x16
	tagNumRange    typeTag = 0x17
	tagRect        typeTag = 0x18
	tagPhysProps   typeTag = 0x19
	tagColor3uint8 typeTag = 0x1A
	tagInt64       typeTag = 0x1B
)

// tagForVariantType is a pure function mapping a Value's type to its binary
// wire tag. The absence of an entry is UnsupportedPropType.
var tagForVariantType = map[rbxfile.VariantType]typeTag{
	rbxfile.TypeString:             tagString,
	rbxfile.TypeBinaryString:       tagString,
	rbxfile.TypeContent:            tagString,
	rbxfile.TypeBool:               tagBool,
	rbxfile.TypeInt32:              tagInt32,
	rbxfile.TypeFloat32:            tagFloat32,
	rbxfile.TypeFloat64:            tagFloat64,
	rbxfile.TypeUDim:               tagUDim,
	rbxfile.TypeUDim2:              tagUDim2,
	rbxfile.TypeFaces:              tagFaces,
	rbxfile.TypeAxes:               tagAxes,
	rbxfile.TypeColor3:             tagColor3,
	rbxfile.TypeVector2:            tagVector2,
	rbxfile.TypeVector3:            tagVector3,
	rbxfile.TypeVector2int16:       tagVector2int,
	rbxfile.TypeCFrame:             tagCFrame,
	rbxfile.TypeEnum:               tagEnum,
	rbxfile.TypeRef:                tagRef,
	rbxfile.TypeVector3int16:       tagVector3int,
	rbxfile.TypeNumberSequence:     tagNumSeq,
	rbxfile.TypeColorSequence:      tagColorSeq,
	rbxfile.TypeNumberRange:        tagNumRange,
	rbxfile.TypeRect:               tagRect,
	rbxfile.TypePhysicalProperties: tagPhysProps,
	rbxfile.TypeColor3uint8:        tagColor3uint8,
	rbxfile.TypeInt64:              tagInt64,
}

var variantTypeForTag = func() map[typeTag]rbxfile.VariantType {
	m := make(map[typeTag]rbxfile.VariantType, len(tagForVariantType))
	for vt, tag := range tagForVariantType {
		// String/BinaryString/Content collide on tagString; String wins the
		// reverse mapping since the binary format cannot distinguish them
		// without reflection telling us the declared property type.
		if _, exists := m[tag]; exists && tag == tagString && vt != rbxfile.TypeString {
			continue
		}
		m[tag] = vt
	}
	return m
}()

// PropInfo is the codec-internal record of a single property column shared
// by every instance of a TypeInfo.
type PropInfo struct {
	// Tag is the binary wire type of the column.
	Tag typeTag

	// Serialized is the on-wire property name.
	Serialized string

	// Aliases holds observed property names other than the canonical one
	// that should resolve to this column, e.g. historical renames.
	Aliases map[string]bool

	// Default is used for any instance in the TypeInfo that does not carry
	// an explicit value for this property.
	Default rbxfile.Value
}

// TypeInfo is the codec-internal record of one engine class within a single
// encode or decode session.
type TypeInfo struct {
	// ID is the sequential type identifier assigned within this session.
	ID uint32

	// Class is the engine class name.
	Class string

	// IsService marks instances of this class as engine singletons.
	IsService bool

	// Instances lists the Refs belonging to this class, in discovery
	// order.
	Instances []rbxfile.Ref

	// Properties maps canonical property name to its column descriptor.
	Properties map[string]*PropInfo
}

func newTypeInfo(id uint32, class string) *TypeInfo {
	return &TypeInfo{
		ID:         id,
		Class:      class,
		Properties: make(map[string]*PropInfo),
	}
}

// defaultValueFor returns the type-based fallback default for vt, per the
// encoder's default-value fallback table, and whether one exists.
func defaultValueFor(vt rbxfile.VariantType) (rbxfile.Value, bool) {
	switch vt {
	case rbxfile.TypeString:
		return rbxfile.ValueString(""), true
	case rbxfile.TypeBinaryString:
		return rbxfile.ValueBinaryString(nil), true
	case rbxfile.TypeContent:
		return rbxfile.ValueContent(""), true
	case rbxfile.TypeBool:
		return rbxfile.ValueBool(false), true
	case rbxfile.TypeInt32:
		return rbxfile.ValueInt32(0), true
	case rbxfile.TypeInt64:
		return rbxfile.ValueInt64(0), true
	case rbxfile.TypeFloat32:
		return rbxfile.ValueFloat32(0), true
	case rbxfile.TypeFloat64:
		return rbxfile.ValueFloat64(0), true
	case rbxfile.TypeUDim:
		return rbxfile.ValueUDim{}, true
	case rbxfile.TypeUDim2:
		return rbxfile.ValueUDim2{}, true
	case rbxfile.TypeFaces:
		return rbxfile.ValueFaces(0), true
	case rbxfile.TypeAxes:
		return rbxfile.ValueAxes(0), true
	case rbxfile.TypeCFrame:
		return rbxfile.ValueCFrame{Rotation: rbxfile.IdentityRotation}, true
	case rbxfile.TypeColor3:
		return rbxfile.ValueColor3{}, true
	case rbxfile.TypeColor3uint8:
		return rbxfile.ValueColor3uint8{}, true
	case rbxfile.TypeVector2:
		return rbxfile.ValueVector2{}, true
	case rbxfile.TypeVector3:
		return rbxfile.ValueVector3{}, true
	case rbxfile.TypeVector2int16:
		return rbxfile.ValueVector2int16{}, true
	case rbxfile.TypeVector3int16:
		return rbxfile.ValueVector3int16{}, true
	case rbxfile.TypeEnum:
		return rbxfile.ValueEnum(0), true
	case rbxfile.TypeRef:
		return rbxfile.ValueRef{}, true
	case rbxfile.TypeNumberRange:
		return rbxfile.ValueNumberRange{}, true
	case rbxfile.TypeNumberSequence:
		return rbxfile.ValueNumberSequence{{Time: 0}, {Time: 1}}, true
	case rbxfile.TypeColorSequence:
		return rbxfile.ValueColorSequence{{Time: 0}, {Time: 1}}, true
	case rbxfile.TypeRect:
		return rbxfile.ValueRect{}, true
	default:
		return nil, false
	}
}
