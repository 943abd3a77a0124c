package declare

import (
	"strings"

	"github.com/robloxfile/rbxdom"
)

// Type corresponds to a rbxfile.VariantType.
type Type byte

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

const (
	_ Type = iota
	String
	BinaryString
	Content
	Bool
	Int
	Float
	Double
	Int64
	UDim
	UDim2
	Faces
	Axes
	Color3
	Color3uint8
	Vector2
	Vector3
	CFrame
	EnumValue
	Reference
	Vector3int16
	Vector2int16
	NumberSequence
	ColorSequence
	NumberRange
	Rect
	PhysicalProperties
)

// TypeFromString returns a Type from its string representation. Type(0) is
// returned if the string does not represent an existing Type.
func TypeFromString(s string) Type {
	s = strings.ToLower(s)
	for typ, str := range typeStrings {
		if s == strings.ToLower(str) {
			return typ
		}
	}
	return 0
}

var typeStrings = map[Type]string{
	String:             "String",
	BinaryString:       "BinaryString",
	Content:            "Content",
	Bool:               "Bool",
	Int:                "Int",
	Float:              "Float",
	Double:             "Double",
	Int64:              "Int64",
	UDim:               "UDim",
	UDim2:              "UDim2",
	Faces:              "Faces",
	Axes:               "Axes",
	Color3:             "Color3",
	Vector2:            "Vector2",
	Vector3:            "Vector3",
	CFrame:             "CFrame",
	EnumValue:          "EnumValue",
	Reference:          "Reference",
	Vector3int16:       "Vector3int16",
	Vector2int16:       "Vector2int16",
	NumberSequence:     "NumberSequence",
	ColorSequence:      "ColorSequence",
	NumberRange:        "NumberRange",
	Rect:               "Rect",
	PhysicalProperties: "PhysicalProperties",
	Color3uint8:        "Color3uint8",
}

// variantType maps a declare.Type onto its corresponding rbxfile.VariantType,
// used only by NewValue for the zero-value fallback.
var variantType = map[Type]rbxfile.VariantType{
	String:             rbxfile.TypeString,
	BinaryString:       rbxfile.TypeBinaryString,
	Content:            rbxfile.TypeContent,
	Bool:               rbxfile.TypeBool,
	Int:                rbxfile.TypeInt32,
	Float:              rbxfile.TypeFloat32,
	Double:             rbxfile.TypeFloat64,
	Int64:              rbxfile.TypeInt64,
	UDim:               rbxfile.TypeUDim,
	UDim2:              rbxfile.TypeUDim2,
	Faces:              rbxfile.TypeFaces,
	Axes:               rbxfile.TypeAxes,
	Color3:             rbxfile.TypeColor3,
	Color3uint8:        rbxfile.TypeColor3uint8,
	Vector2:            rbxfile.TypeVector2,
	Vector3:            rbxfile.TypeVector3,
	CFrame:             rbxfile.TypeCFrame,
	EnumValue:          rbxfile.TypeEnum,
	Reference:          rbxfile.TypeRef,
	Vector3int16:       rbxfile.TypeVector3int16,
	Vector2int16:       rbxfile.TypeVector2int16,
	NumberSequence:     rbxfile.TypeNumberSequence,
	ColorSequence:      rbxfile.TypeColorSequence,
	NumberRange:        rbxfile.TypeNumberRange,
	Rect:               rbxfile.TypeRect,
	PhysicalProperties: rbxfile.TypePhysicalProperties,
}

func normInt16(v interface{}) int16 {
	switch v := v.(type) {
	case int:
		return int16(v)
	case int16:
		return v
	case int32:
		return int16(v)
	case int64:
		return int16(v)
	case float32:
		return int16(v)
	case float64:
		return int16(v)
	}
	return 0
}

func normInt32(v interface{}) int32 {
	switch v := v.(type) {
	case int:
		return int32(v)
	case int16:
		return int32(v)
	case int32:
		return v
	case int64:
		return int32(v)
	case float32:
		return int32(v)
	case float64:
		return int32(v)
	}
	return 0
}

func normInt64(v interface{}) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func normUint8(v interface{}) uint8 {
	switch v := v.(type) {
	case int:
		return uint8(v)
	case uint8:
		return v
	case int32:
		return uint8(v)
	case float32:
		return uint8(v)
	case float64:
		return uint8(v)
	}
	return 0
}

func normUint32(v interface{}) uint32 {
	switch v := v.(type) {
	case int:
		return uint32(v)
	case uint32:
		return v
	case int32:
		return uint32(v)
	case int64:
		return uint32(v)
	case float32:
		return uint32(v)
	case float64:
		return uint32(v)
	}
	return 0
}

func normFloat32(v interface{}) float32 {
	switch v := v.(type) {
	case int:
		return float32(v)
	case int16:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	case float32:
		return v
	case float64:
		return float32(v)
	}
	return 0
}

func normFloat64(v interface{}) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func normBool(v interface{}) bool {
	vv, _ := v.(bool)
	return vv
}

func assertValue(t Type, v interface{}) (value rbxfile.Value, ok bool) {
	switch t {
	case String:
		value, ok = v.(rbxfile.ValueString)
	case BinaryString:
		value, ok = v.(rbxfile.ValueBinaryString)
	case Content:
		value, ok = v.(rbxfile.ValueContent)
	case Bool:
		value, ok = v.(rbxfile.ValueBool)
	case Int:
		value, ok = v.(rbxfile.ValueInt32)
	case Float:
		value, ok = v.(rbxfile.ValueFloat32)
	case Double:
		value, ok = v.(rbxfile.ValueFloat64)
	case Int64:
		value, ok = v.(rbxfile.ValueInt64)
	case UDim:
		value, ok = v.(rbxfile.ValueUDim)
	case UDim2:
		value, ok = v.(rbxfile.ValueUDim2)
	case Faces:
		value, ok = v.(rbxfile.ValueFaces)
	case Axes:
		value, ok = v.(rbxfile.ValueAxes)
	case Color3:
		value, ok = v.(rbxfile.ValueColor3)
	case Color3uint8:
		value, ok = v.(rbxfile.ValueColor3uint8)
	case Vector2:
		value, ok = v.(rbxfile.ValueVector2)
	case Vector3:
		value, ok = v.(rbxfile.ValueVector3)
	case CFrame:
		value, ok = v.(rbxfile.ValueCFrame)
	case EnumValue:
		value, ok = v.(rbxfile.ValueEnum)
	case Reference:
		value, ok = v.(rbxfile.ValueRef)
	case Vector3int16:
		value, ok = v.(rbxfile.ValueVector3int16)
	case Vector2int16:
		value, ok = v.(rbxfile.ValueVector2int16)
	case NumberSequence:
		value, ok = v.(rbxfile.ValueNumberSequence)
	case ColorSequence:
		value, ok = v.(rbxfile.ValueColorSequence)
	case NumberRange:
		value, ok = v.(rbxfile.ValueNumberRange)
	case Rect:
		value, ok = v.(rbxfile.ValueRect)
	case PhysicalProperties:
		value, ok = v.(rbxfile.ValuePhysicalProperties)
	}
	return
}

// value evaluates a property declaration's raw arguments into a
// rbxfile.Value, resolving Reference declarations against refs (a map from
// declared reference name to the already-allocated Ref).
func (t Type) value(refs map[string]rbxfile.Ref, v []interface{}) rbxfile.Value {
	if len(v) == 0 {
		goto zero
	}

	if value, ok := assertValue(t, v[0]); ok {
		return value
	}

	switch t {
	case String, BinaryString, Content:
		switch v := v[0].(type) {
		case string:
			return stringValue(t, v)
		case []byte:
			return stringValue(t, string(v))
		}
	case Bool:
		if b, ok := v[0].(bool); ok {
			return rbxfile.ValueBool(b)
		}
	case Int:
		return rbxfile.ValueInt32(normInt32(v[0]))
	case Float:
		return rbxfile.ValueFloat32(normFloat32(v[0]))
	case Double:
		return rbxfile.ValueFloat64(normFloat64(v[0]))
	case Int64:
		return rbxfile.ValueInt64(normInt64(v[0]))
	case UDim:
		if len(v) == 2 {
			return rbxfile.ValueUDim{Scale: normFloat32(v[0]), Offset: normInt32(v[1])}
		}
	case UDim2:
		switch len(v) {
		case 2:
			x, _ := v[0].(rbxfile.ValueUDim)
			y, _ := v[1].(rbxfile.ValueUDim)
			return rbxfile.ValueUDim2{X: x, Y: y}
		case 4:
			return rbxfile.ValueUDim2{
				X: rbxfile.ValueUDim{Scale: normFloat32(v[0]), Offset: normInt32(v[1])},
				Y: rbxfile.ValueUDim{Scale: normFloat32(v[2]), Offset: normInt32(v[3])},
			}
		}
	case Faces:
		if len(v) == 1 {
			return rbxfile.ValueFaces(normUint8(v[0]))
		}
	case Axes:
		if len(v) == 1 {
			return rbxfile.ValueAxes(normUint8(v[0]))
		}
	case Color3:
		if len(v) == 3 {
			return rbxfile.ValueColor3{R: normFloat32(v[0]), G: normFloat32(v[1]), B: normFloat32(v[2])}
		}
	case Color3uint8:
		if len(v) == 3 {
			return rbxfile.ValueColor3uint8{R: normUint8(v[0]), G: normUint8(v[1]), B: normUint8(v[2])}
		}
	case Vector2:
		if len(v) == 2 {
			return rbxfile.ValueVector2{X: normFloat32(v[0]), Y: normFloat32(v[1])}
		}
	case Vector3:
		if len(v) == 3 {
			return rbxfile.ValueVector3{X: normFloat32(v[0]), Y: normFloat32(v[1]), Z: normFloat32(v[2])}
		}
	case CFrame:
		switch len(v) {
		case 10:
			p, _ := v[0].(rbxfile.ValueVector3)
			return rbxfile.ValueCFrame{
				Position: p,
				Rotation: [9]float32{
					normFloat32(v[1]), normFloat32(v[2]), normFloat32(v[3]),
					normFloat32(v[4]), normFloat32(v[5]), normFloat32(v[6]),
					normFloat32(v[7]), normFloat32(v[8]), normFloat32(v[9]),
				},
			}
		case 12:
			return rbxfile.ValueCFrame{
				Position: rbxfile.ValueVector3{X: normFloat32(v[0]), Y: normFloat32(v[1]), Z: normFloat32(v[2])},
				Rotation: [9]float32{
					normFloat32(v[3]), normFloat32(v[4]), normFloat32(v[5]),
					normFloat32(v[6]), normFloat32(v[7]), normFloat32(v[8]),
					normFloat32(v[9]), normFloat32(v[10]), normFloat32(v[11]),
				},
			}
		}
	case EnumValue:
		return rbxfile.ValueEnum(normUint32(v[0]))
	case Reference:
		switch v := v[0].(type) {
		case string:
			return rbxfile.ValueRef{Ref: refs[v]}
		case []byte:
			return rbxfile.ValueRef{Ref: refs[string(v)]}
		case rbxfile.Ref:
			return rbxfile.ValueRef{Ref: v}
		}
	case Vector3int16:
		if len(v) == 3 {
			return rbxfile.ValueVector3int16{X: normInt16(v[0]), Y: normInt16(v[1]), Z: normInt16(v[2])}
		}
	case Vector2int16:
		if len(v) == 2 {
			return rbxfile.ValueVector2int16{X: normInt16(v[0]), Y: normInt16(v[1])}
		}
	case NumberSequence:
		if len(v) > 0 {
			if _, ok := v[0].(rbxfile.NumberSequenceKeypoint); ok {
				ns := make(rbxfile.ValueNumberSequence, len(v))
				for i, k := range v {
					k, _ := k.(rbxfile.NumberSequenceKeypoint)
					ns[i] = k
				}
				return ns
			}
			if len(v)%3 == 0 {
				ns := make(rbxfile.ValueNumberSequence, len(v)/3)
				for i := 0; i < len(v); i += 3 {
					ns[i/3] = rbxfile.NumberSequenceKeypoint{
						Time:     normFloat32(v[i+0]),
						Value:    normFloat32(v[i+1]),
						Envelope: normFloat32(v[i+2]),
					}
				}
				return ns
			}
		}
	case ColorSequence:
		if len(v) > 0 {
			if _, ok := v[0].(rbxfile.ColorSequenceKeypoint); ok {
				cs := make(rbxfile.ValueColorSequence, len(v))
				for i, k := range v {
					k, _ := k.(rbxfile.ColorSequenceKeypoint)
					cs[i] = k
				}
				return cs
			}
			if len(v)%5 == 0 {
				cs := make(rbxfile.ValueColorSequence, len(v)/5)
				for i := 0; i < len(v); i += 5 {
					cs[i/5] = rbxfile.ColorSequenceKeypoint{
						Time:     normFloat32(v[i+0]),
						Value:    rbxfile.ValueColor3{R: normFloat32(v[i+1]), G: normFloat32(v[i+2]), B: normFloat32(v[i+3])},
						Envelope: normFloat32(v[i+4]),
					}
				}
				return cs
			}
		}
	case NumberRange:
		if len(v) == 2 {
			return rbxfile.ValueNumberRange{Min: normFloat32(v[0]), Max: normFloat32(v[1])}
		}
	case Rect:
		switch len(v) {
		case 2:
			min, _ := v[0].(rbxfile.ValueVector2)
			max, _ := v[1].(rbxfile.ValueVector2)
			return rbxfile.ValueRect{Min: min, Max: max}
		case 4:
			return rbxfile.ValueRect{
				Min: rbxfile.ValueVector2{X: normFloat32(v[0]), Y: normFloat32(v[1])},
				Max: rbxfile.ValueVector2{X: normFloat32(v[2]), Y: normFloat32(v[3])},
			}
		}
	case PhysicalProperties:
		switch len(v) {
		case 0:
			return rbxfile.ValuePhysicalProperties{}
		case 5:
			return rbxfile.ValuePhysicalProperties{
				Custom:           true,
				Density:          normFloat32(v[0]),
				Friction:         normFloat32(v[1]),
				Elasticity:       normFloat32(v[2]),
				FrictionWeight:   normFloat32(v[3]),
				ElasticityWeight: normFloat32(v[4]),
			}
		}
	}

zero:
	if vt, ok := variantType[t]; ok {
		if zv := rbxfile.NewValue(vt); zv != nil {
			return zv
		}
	}
	return rbxfile.ValueString("")
}

func stringValue(t Type, s string) rbxfile.Value {
	switch t {
	case BinaryString:
		return rbxfile.ValueBinaryString(s)
	case Content:
		return rbxfile.ValueContent(s)
	default:
		return rbxfile.ValueString(s)
	}
}
