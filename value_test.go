package rbxfile

import (
	"reflect"
	"strings"
	"testing"
)

var testTypes []VariantType

func init() {
	testTypes = make([]VariantType, len(typeStrings))
	for i := range testTypes {
		testTypes[i] = VariantType(i + 1)
	}
}

func TestVariantType_String(t *testing.T) {
	if TypeString.String() != "String" {
		t.Error("unexpected result")
	}
	if TypeInvalid.String() != "Invalid" || VariantType(len(testTypes)+1).String() != "Invalid" {
		t.Error("expected Invalid string")
	}
}

func TestTypeFromString(t *testing.T) {
	for _, typ := range testTypes {
		if st := TypeFromString(typ.String()); st != typ {
			t.Errorf("expected type %s from TypeFromString (got %s)", typ, st)
		}
	}
	if TypeFromString("String") != TypeString {
		t.Error("unexpected result from TypeFromString")
	}
	if TypeFromString("UnknownType") != TypeInvalid {
		t.Error("unexpected result from TypeFromString")
	}
}

func TestNewValue(t *testing.T) {
	for _, typ := range testTypes {
		v := NewValue(typ)
		if v == nil {
			t.Errorf("NewValue(%s) returned nil", typ)
			continue
		}
		name := reflect.ValueOf(v).Type().Name()
		if strings.TrimPrefix(name, "Value") != typ.String() {
			t.Errorf("type %s does not match Type%s", name, typ)
		}
		if v.Type() != typ {
			t.Errorf("Type() of NewValue(%s) returned %s", typ, v.Type())
		}
	}
	if NewValue(TypeInvalid) != nil {
		t.Error("expected nil value for invalid type")
	}
}

type testCompareString struct {
	v Value
	s string
}

func testCompareStrings(t *testing.T, vts []testCompareString) {
	t.Helper()
	for _, vt := range vts {
		if vt.v.String() != vt.s {
			t.Errorf("unexpected result from String method of value %q (%q expected, got %q)", vt.v.Type(), vt.s, vt.v.String())
		}
	}
}

func TestValueString_String(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValueString(""), ""},
		{ValueString("hello"), "hello"},
	})
}

func TestValueBool_String(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValueBool(false), "false"},
		{ValueBool(true), "true"},
	})
}

func TestValueInt32_String(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValueInt32(0), "0"},
		{ValueInt32(-42), "-42"},
	})
}

func TestValueVector3_String(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValueVector3{X: 1, Y: 2, Z: 3}, "{1, 2, 3}"},
		{ValueVector3{}, "{0, 0, 0}"},
	})
}

func TestValueRef_String(t *testing.T) {
	ref := NewRef()
	testCompareStrings(t, []testCompareString{
		{ValueRef{}, "null"},
		{ValueRef{Ref: ref}, ref.String()},
	})
}

func TestValueFaces(t *testing.T) {
	v := ValueFaces(FaceRight | FaceTop)
	if v.Type() != TypeFaces {
		t.Error("unexpected Type()")
	}
	if v&FaceRight == 0 || v&FaceTop == 0 {
		t.Error("expected both FaceRight and FaceTop bits set")
	}
	if v&FaceBack != 0 {
		t.Error("unexpected FaceBack bit set")
	}
}

func TestValueAxes(t *testing.T) {
	v := ValueAxes(AxisX | AxisZ)
	if v.Type() != TypeAxes {
		t.Error("unexpected Type()")
	}
	if v&AxisX == 0 || v&AxisZ == 0 {
		t.Error("expected both AxisX and AxisZ bits set")
	}
	if v&AxisY != 0 {
		t.Error("unexpected AxisY bit set")
	}
}

func TestValuePhysicalProperties_String(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValuePhysicalProperties{}, "{}"},
		{ValuePhysicalProperties{Custom: true, Density: 1, Friction: 2, Elasticity: 3, FrictionWeight: 4, ElasticityWeight: 5}, "{1, 2, 3, 4, 5}"},
	})
}
