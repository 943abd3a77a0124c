// Package rbxfile implements a library for decoding and encoding Roblox
// instance file formats.
//
// This package can be used to manipulate Roblox instance trees outside of the
// Roblox client. Such data structures begin with a Dom struct, which is an
// arena of Instances addressed by Ref. Each Instance carries a class name, a
// set of properties, and parent/child edges expressed as Refs into the same
// Dom.
//
// Each property holds a Value of a particular VariantType. Every concrete
// value type is prefixed with "Value" and implements the Value interface.
package rbxfile

import (
	"fmt"
)

// VariantType is the discriminant of a Value.
type VariantType byte

const (
	TypeInvalid VariantType = iota
	TypeString
	TypeBinaryString
	TypeContent
	TypeBool
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeUDim
	TypeUDim2
	TypeRect
	TypeCFrame
	TypeColor3
	TypeColor3uint8
	TypeVector2
	TypeVector2int16
	TypeVector3
	TypeVector3int16
	TypeNumberSequence
	TypeColorSequence
	TypeNumberRange
	TypeFaces
	TypeAxes
	TypePhysicalProperties
	TypeEnum
	TypeRef
)

var typeStrings = map[VariantType]string{
	TypeString:             "String",
	TypeBinaryString:       "BinaryString",
	TypeContent:            "Content",
	TypeBool:               "Bool",
	TypeInt32:              "Int32",
	TypeInt64:              "Int64",
	TypeFloat32:            "Float32",
	TypeFloat64:            "Float64",
	TypeUDim:               "UDim",
	TypeUDim2:              "UDim2",
	TypeRect:               "Rect",
	TypeCFrame:             "CFrame",
	TypeColor3:             "Color3",
	TypeColor3uint8:        "Color3uint8",
	TypeVector2:            "Vector2",
	TypeVector2int16:       "Vector2int16",
	TypeVector3:            "Vector3",
	TypeVector3int16:       "Vector3int16",
	TypeNumberSequence:     "NumberSequence",
	TypeColorSequence:      "ColorSequence",
	TypeNumberRange:        "NumberRange",
	TypeFaces:              "Faces",
	TypeAxes:               "Axes",
	TypePhysicalProperties: "PhysicalProperties",
	TypeEnum:               "Enum",
	TypeRef:                "Ref",
}

// String returns a string representation of the type. If the type is not
// valid, the returned value is "Invalid".
func (t VariantType) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return "Invalid"
}

// TypeFromString returns a VariantType from its string representation.
// TypeInvalid is returned if the string does not name an existing type.
func TypeFromString(s string) VariantType {
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}

// Value holds a value of a particular VariantType. Each Value implementation
// is a small value type (not a pointer), so that property maps can be copied
// cheaply. Most implementations can be compared with ==; ValueBinaryString,
// ValueNumberSequence and ValueColorSequence are slices and cannot.
type Value interface {
	// Type returns an identifier indicating the VariantType of the value.
	Type() VariantType

	// String returns a string representation of the current value.
	String() string
}

// NewValue returns a new Value of the given type, set to the type's zero
// value. Returns nil if the type is not valid.
func NewValue(typ VariantType) Value {
	gen, ok := valueGenerators[typ]
	if !ok {
		return nil
	}
	return gen()
}

type valueGenerator func() Value

var valueGenerators = map[VariantType]valueGenerator{
	TypeString:             func() Value { return ValueString("") },
	TypeBinaryString:       func() Value { return ValueBinaryString(nil) },
	TypeContent:            func() Value { return ValueContent("") },
	TypeBool:               func() Value { return ValueBool(false) },
	TypeInt32:              func() Value { return ValueInt32(0) },
	TypeInt64:              func() Value { return ValueInt64(0) },
	TypeFloat32:            func() Value { return ValueFloat32(0) },
	TypeFloat64:            func() Value { return ValueFloat64(0) },
	TypeUDim:               func() Value { return ValueUDim{} },
	TypeUDim2:              func() Value { return ValueUDim2{} },
	TypeRect:               func() Value { return ValueRect{} },
	TypeCFrame:             func() Value { return ValueCFrame{Rotation: IdentityRotation} },
	TypeColor3:             func() Value { return ValueColor3{} },
	TypeColor3uint8:        func() Value { return ValueColor3uint8{} },
	TypeVector2:            func() Value { return ValueVector2{} },
	TypeVector2int16:       func() Value { return ValueVector2int16{} },
	TypeVector3:            func() Value { return ValueVector3{} },
	TypeVector3int16:       func() Value { return ValueVector3int16{} },
	TypeNumberSequence:     func() Value { return ValueNumberSequence(nil) },
	TypeColorSequence:      func() Value { return ValueColorSequence(nil) },
	TypeNumberRange:        func() Value { return ValueNumberRange{} },
	TypeFaces:              func() Value { return ValueFaces(0) },
	TypeAxes:               func() Value { return ValueAxes(0) },
	TypePhysicalProperties: func() Value { return ValuePhysicalProperties{} },
	TypeEnum:               func() Value { return ValueEnum(0) },
	TypeRef:                func() Value { return ValueRef{} },
}

////////////////////////////////////////////////////////////////////////////
// Primitives

type ValueString string

func (ValueString) Type() VariantType  { return TypeString }
func (v ValueString) String() string   { return string(v) }

type ValueBinaryString []byte

func (ValueBinaryString) Type() VariantType { return TypeBinaryString }
func (v ValueBinaryString) String() string  { return string(v) }

type ValueContent string

func (ValueContent) Type() VariantType { return TypeContent }
func (v ValueContent) String() string  { return string(v) }

type ValueBool bool

func (ValueBool) Type() VariantType { return TypeBool }
func (v ValueBool) String() string {
	if v {
		return "true"
	}
	return "false"
}

type ValueInt32 int32

func (ValueInt32) Type() VariantType { return TypeInt32 }
func (v ValueInt32) String() string  { return fmt.Sprintf("%d", int32(v)) }

type ValueInt64 int64

func (ValueInt64) Type() VariantType { return TypeInt64 }
func (v ValueInt64) String() string  { return fmt.Sprintf("%d", int64(v)) }

type ValueFloat32 float32

func (ValueFloat32) Type() VariantType { return TypeFloat32 }
func (v ValueFloat32) String() string  { return fmt.Sprintf("%g", float32(v)) }

type ValueFloat64 float64

func (ValueFloat64) Type() VariantType { return TypeFloat64 }
func (v ValueFloat64) String() string  { return fmt.Sprintf("%g", float64(v)) }

////////////////////////////////////////////////////////////////////////////
// Geometry

type ValueUDim struct {
	Scale  float32
	Offset int32
}

func (ValueUDim) Type() VariantType { return TypeUDim }
func (v ValueUDim) String() string  { return fmt.Sprintf("{%g, %d}", v.Scale, v.Offset) }

type ValueUDim2 struct {
	X, Y ValueUDim
}

func (ValueUDim2) Type() VariantType { return TypeUDim2 }
func (v ValueUDim2) String() string  { return fmt.Sprintf("{%s, %s}", v.X, v.Y) }

type ValueRect struct {
	Min, Max ValueVector2
}

func (ValueRect) Type() VariantType { return TypeRect }
func (v ValueRect) String() string  { return fmt.Sprintf("{%s, %s}", v.Min, v.Max) }

type ValueVector2 struct {
	X, Y float32
}

func (ValueVector2) Type() VariantType { return TypeVector2 }
func (v ValueVector2) String() string  { return fmt.Sprintf("{%g, %g}", v.X, v.Y) }

type ValueVector2int16 struct {
	X, Y int16
}

func (ValueVector2int16) Type() VariantType { return TypeVector2int16 }
func (v ValueVector2int16) String() string  { return fmt.Sprintf("{%d, %d}", v.X, v.Y) }

type ValueVector3 struct {
	X, Y, Z float32
}

func (ValueVector3) Type() VariantType { return TypeVector3 }
func (v ValueVector3) String() string  { return fmt.Sprintf("{%g, %g, %g}", v.X, v.Y, v.Z) }

type ValueVector3int16 struct {
	X, Y, Z int16
}

func (ValueVector3int16) Type() VariantType { return TypeVector3int16 }
func (v ValueVector3int16) String() string  { return fmt.Sprintf("{%d, %d, %d}", v.X, v.Y, v.Z) }

// IdentityRotation is the 3x3 identity rotation matrix, row-major, used as
// the default ValueCFrame.Rotation.
var IdentityRotation = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

// ValueCFrame is a position plus a 3x3 orthonormal rotation matrix, stored
// row-major. The rotation is taken as provided and never renormalized.
type ValueCFrame struct {
	Position ValueVector3
	Rotation [9]float32
}

func (ValueCFrame) Type() VariantType { return TypeCFrame }
func (v ValueCFrame) String() string {
	return fmt.Sprintf("{%s, %v}", v.Position, v.Rotation)
}

////////////////////////////////////////////////////////////////////////////
// Color

// ValueColor3 holds components in [0, 1], stored as float32 without
// clamping.
type ValueColor3 struct {
	R, G, B float32
}

func (ValueColor3) Type() VariantType { return TypeColor3 }
func (v ValueColor3) String() string  { return fmt.Sprintf("{%g, %g, %g}", v.R, v.G, v.B) }

type ValueColor3uint8 struct {
	R, G, B byte
}

func (ValueColor3uint8) Type() VariantType { return TypeColor3uint8 }
func (v ValueColor3uint8) String() string  { return fmt.Sprintf("{%d, %d, %d}", v.R, v.G, v.B) }

////////////////////////////////////////////////////////////////////////////
// Sequences

type NumberSequenceKeypoint struct {
	Time     float32
	Value    float32
	Envelope float32
}

// ValueNumberSequence requires at least 2 keypoints on decode.
type ValueNumberSequence []NumberSequenceKeypoint

func (ValueNumberSequence) Type() VariantType { return TypeNumberSequence }
func (v ValueNumberSequence) String() string  { return fmt.Sprintf("%v", []NumberSequenceKeypoint(v)) }

type ColorSequenceKeypoint struct {
	Time     float32
	Value    ValueColor3
	Envelope float32
}

// ValueColorSequence requires at least 2 keypoints on decode.
type ValueColorSequence []ColorSequenceKeypoint

func (ValueColorSequence) Type() VariantType { return TypeColorSequence }
func (v ValueColorSequence) String() string  { return fmt.Sprintf("%v", []ColorSequenceKeypoint(v)) }

type ValueNumberRange struct {
	Min, Max float32
}

func (ValueNumberRange) Type() VariantType { return TypeNumberRange }
func (v ValueNumberRange) String() string  { return fmt.Sprintf("{%g, %g}", v.Min, v.Max) }

////////////////////////////////////////////////////////////////////////////
// Sets

// ValueFaces is a 6-bit set over {Right, Top, Back, Left, Bottom, Front}, in
// that bit order, LSB first.
type ValueFaces byte

const (
	FaceRight ValueFaces = 1 << iota
	FaceTop
	FaceBack
	FaceLeft
	FaceBottom
	FaceFront
)

func (ValueFaces) Type() VariantType { return TypeFaces }
func (v ValueFaces) String() string  { return fmt.Sprintf("0x%02X", byte(v)) }

// ValueAxes is a 3-bit set over {X, Y, Z}, LSB first.
type ValueAxes byte

const (
	AxisX ValueAxes = 1 << iota
	AxisY
	AxisZ
)

func (ValueAxes) Type() VariantType { return TypeAxes }
func (v ValueAxes) String() string  { return fmt.Sprintf("0x%02X", byte(v)) }

////////////////////////////////////////////////////////////////////////////
// Misc

// ValuePhysicalProperties is an optional tuple; Custom indicates whether the
// numeric fields are present.
type ValuePhysicalProperties struct {
	Custom            bool
	Density           float32
	Friction          float32
	Elasticity        float32
	FrictionWeight    float32
	ElasticityWeight  float32
}

func (ValuePhysicalProperties) Type() VariantType { return TypePhysicalProperties }
func (v ValuePhysicalProperties) String() string {
	if !v.Custom {
		return "{}"
	}
	return fmt.Sprintf("{%g, %g, %g, %g, %g}", v.Density, v.Friction, v.Elasticity, v.FrictionWeight, v.ElasticityWeight)
}

type ValueEnum uint32

func (ValueEnum) Type() VariantType { return TypeEnum }
func (v ValueEnum) String() string  { return fmt.Sprintf("%d", uint32(v)) }

// ValueRef holds an optional reference to another Instance, expressed as a
// Ref into the same Dom. A zero Ref (IsNull true) means no referent.
type ValueRef struct {
	Ref Ref
}

func (ValueRef) Type() VariantType { return TypeRef }
func (v ValueRef) String() string {
	if v.Ref.IsNull() {
		return "null"
	}
	return v.Ref.String()
}
