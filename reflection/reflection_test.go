package reflection

import (
	"testing"

	"github.com/robloxfile/rbxdom"
)

func testDatabase() *Database {
	return &Database{
		Classes: map[string]*ClassDescriptor{
			"Instance": {
				Name: "Instance",
				Properties: map[string]PropertyDescriptor{
					"Name": {Canonical: "Name", Serialized: "Name", DataType: rbxfile.TypeString},
				},
			},
			"PVInstance": {
				Name:       "PVInstance",
				Superclass: "Instance",
			},
			"BasePart": {
				Name:       "BasePart",
				Superclass: "PVInstance",
				Properties: map[string]PropertyDescriptor{
					"Anchored":     {Canonical: "Anchored", Serialized: "Anchored", DataType: rbxfile.TypeBool},
					"Transparency": {Canonical: "Transparency", Serialized: "Transparency", DataType: rbxfile.TypeFloat32},
					"Size":         {Canonical: "Size", Serialized: "size_old_serialized", DataType: rbxfile.TypeVector3},
					"Internal":     {Canonical: "Internal", Serialized: "", DataType: rbxfile.TypeBool},
				},
				DefaultProperties: map[string]rbxfile.Value{
					"Anchored": rbxfile.ValueBool(false),
				},
			},
			"Part": {
				Name:       "Part",
				Superclass: "BasePart",
				Tags:       map[string]bool{},
			},
			"Workspace": {
				Name:       "Workspace",
				Superclass: "Instance",
				Tags:       map[string]bool{ServiceTag: true},
			},
		},
	}
}

func TestNilDatabaseFallsBackToAsObserved(t *testing.T) {
	var db *Database

	if _, ok := db.FindClass("Part"); ok {
		t.Error("FindClass on nil Database should fail")
	}
	if _, ok := db.FindPropertyDescriptors("Part", "Anchored"); ok {
		t.Error("FindPropertyDescriptors on nil Database should fail")
	}
	if _, ok := db.DefaultValue("Part", "Anchored"); ok {
		t.Error("DefaultValue on nil Database should fail")
	}
}

func TestFindClass(t *testing.T) {
	db := testDatabase()

	cd, ok := db.FindClass("Part")
	if !ok || cd.Name != "Part" {
		t.Fatalf("FindClass(Part) = %+v, %t", cd, ok)
	}
	if _, ok := db.FindClass("NoSuchClass"); ok {
		t.Error("expected FindClass to fail for an unknown class")
	}
}

func TestIsService(t *testing.T) {
	db := testDatabase()

	ws, _ := db.FindClass("Workspace")
	if !ws.IsService() {
		t.Error("expected Workspace to be tagged as a service")
	}
	part, _ := db.FindClass("Part")
	if part.IsService() {
		t.Error("did not expect Part to be tagged as a service")
	}
	var nilClass *ClassDescriptor
	if nilClass.IsService() {
		t.Error("nil *ClassDescriptor must not be a service")
	}
}

func TestFindPropertyDescriptorsInherited(t *testing.T) {
	db := testDatabase()

	desc, ok := db.FindPropertyDescriptors("Part", "Anchored")
	if !ok || desc.Canonical != "Anchored" {
		t.Fatalf("expected to find Anchored via BasePart, got %+v, %t", desc, ok)
	}

	desc, ok = db.FindPropertyDescriptors("Part", "Name")
	if !ok || desc.Canonical != "Name" {
		t.Fatalf("expected to find Name via Instance, got %+v, %t", desc, ok)
	}

	if _, ok := db.FindPropertyDescriptors("Part", "DoesNotExist"); ok {
		t.Error("expected lookup of an undeclared property to fail")
	}
}

func TestFindPropertyDescriptorsBySerializedAlias(t *testing.T) {
	db := testDatabase()

	desc, ok := db.FindPropertyDescriptors("Part", "size_old_serialized")
	if !ok || desc.Canonical != "Size" {
		t.Fatalf("expected lookup by serialized alias to resolve to canonical Size, got %+v, %t", desc, ok)
	}
}

func TestPropertyDescriptorPersisted(t *testing.T) {
	db := testDatabase()

	desc, _ := db.FindPropertyDescriptors("Part", "Anchored")
	if !desc.Persisted() {
		t.Error("expected Anchored to be persisted")
	}

	desc, _ = db.FindPropertyDescriptors("Part", "Internal")
	if desc.Persisted() {
		t.Error("expected a property with an empty Serialized name to be reported as not persisted")
	}
}

func TestDefaultValueInherited(t *testing.T) {
	db := testDatabase()

	v, ok := db.DefaultValue("Part", "Anchored")
	if !ok {
		t.Fatal("expected to find a default for Anchored via BasePart")
	}
	if b, ok := v.(rbxfile.ValueBool); !ok || bool(b) != false {
		t.Errorf("unexpected default value: %v", v)
	}

	if _, ok := db.DefaultValue("Part", "DoesNotExist"); ok {
		t.Error("expected DefaultValue to fail for an undeclared property")
	}
}

func TestBehaviorString(t *testing.T) {
	cases := map[Behavior]string{
		IgnoreUnknown:   "IgnoreUnknown",
		ReadUnknown:     "ReadUnknown",
		WriteUnknown:    "WriteUnknown",
		ErrorOnUnknown:  "ErrorOnUnknown",
		NoReflection:    "NoReflection",
		Behavior(99):    "Invalid",
	}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Errorf("Behavior(%d).String() = %q, want %q", b, got, want)
		}
	}
}
