package schema

import (
	"errors"
	"testing"
	"time"
)

type testLevel int

var testLevelEnum = NewEnum("testLevel", map[string]int{"Low": 1, "High": 2})

func (testLevel) EnumType() *EnumType { return testLevelEnum }

func TestBuildQuote(t *testing.T) {
	d, err := NewBuilder("Quote").
		AutoIncrementKey("Id").
		Text("Symbol", NotNull).
		Double("Price").
		DateTime("AsOf").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if d.Table != "Quote" {
		t.Fatalf("got table %s", d.Table)
	}
	names := d.ColumnNames()
	want := []string{"Id", "Symbol", "Price", "AsOf"}
	if len(names) != len(want) {
		t.Fatalf("got %d columns", len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("column %d: got %s want %s", i, names[i], want[i])
		}
	}
	key := d.Key()
	if key.Name != "Id" || !key.PrimaryKey || !key.AutoIncrement || key.NotNull {
		t.Fatalf("bad key field %+v", key)
	}
	if f, _ := d.Field("Symbol"); !f.NotNull || f.Kind != Text {
		t.Fatalf("bad Symbol field %+v", f)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := NewBuilder("NoKey").Text("A").Build()
	if !errors.Is(err, ErrNoPrimaryKey) {
		t.Fatalf("expected ErrNoPrimaryKey, got %v", err)
	}

	_, err = NewBuilder("TwoKeys").Int32("A", PrimaryKey).Int32("B", PrimaryKey).Build()
	if !errors.Is(err, ErrMultiplePrimaryKeys) {
		t.Fatalf("expected ErrMultiplePrimaryKeys, got %v", err)
	}

	_, err = NewBuilder("BadAuto").Text("Id", PrimaryKey|AutoIncrement).Build()
	if !errors.Is(err, ErrBadAutoIncrement) {
		t.Fatalf("expected ErrBadAutoIncrement, got %v", err)
	}

	_, err = NewBuilder("Bad Name").AutoIncrementKey("Id").Build()
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}

	_, err = NewBuilder("Dup").AutoIncrementKey("Id").Text("A").Text("A").Build()
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestInfer(t *testing.T) {
	var lvl *testLevel
	d := NewBuilder("Inferred").
		Infer("Id", int32(0), PrimaryKey|AutoIncrement).
		Infer("Count", int64(0)).
		Infer("Ratio", 1.5).
		Infer("Flag", (*bool)(nil)).
		Infer("When", time.Time{}).
		Infer("Level", lvl).
		Infer("Blob", []int{1}).
		MustBuild()

	cases := []struct {
		name     string
		kind     Kind
		nullable bool
	}{
		{"Id", Integer32, false},
		{"Count", Integer64, false},
		{"Ratio", Double, false},
		{"Flag", Boolean, true},
		{"When", DateTime, false},
		{"Level", Enumeration, true},
		{"Blob", Text, false},
	}
	for _, c := range cases {
		f, ok := d.Field(c.name)
		if !ok {
			t.Fatalf("missing field %s", c.name)
		}
		if f.Kind != c.kind || f.Nullable != c.nullable {
			t.Fatalf("%s: got kind %s nullable %v", c.name, f.Kind, f.Nullable)
		}
	}
	if f, _ := d.Field("Level"); f.Enum != testLevelEnum {
		t.Fatal("enum type not captured")
	}
}

func TestEnumType(t *testing.T) {
	if v, err := testLevelEnum.Parse("high"); err != nil || v != 2 {
		t.Fatalf("got %d %v", v, err)
	}
	if v, err := testLevelEnum.Parse("1"); err != nil || v != 1 {
		t.Fatalf("got %d %v", v, err)
	}
	if _, err := testLevelEnum.Parse("7"); err == nil {
		t.Fatal("expected error for non-member value")
	}
	if testLevelEnum.NameOf(2) != "High" || testLevelEnum.NameOf(9) != "9" {
		t.Fatal("bad NameOf")
	}
	if et, ok := Enums.Lookup("testLevel"); !ok || et != testLevelEnum {
		t.Fatal("enum not registered")
	}
	names := testLevelEnum.Names()
	if len(names) != 2 || names[0] != "Low" || names[1] != "High" {
		t.Fatalf("got names %v", names)
	}
}

func TestEnumCaseCollision(t *testing.T) {
	if _, err := BuildEnum("collide", map[string]int{"High": 1, "HIGH": 2}); err == nil {
		t.Fatal("expected error for names equal ignoring case")
	}
	if _, ok := Enums.Lookup("collide"); ok {
		t.Fatal("BuildEnum should not register")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected NewEnum to panic")
		}
	}()
	NewEnum("collidePanic", map[string]int{"low": 1, "Low": 2})
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(NewBuilder("B").AutoIncrementKey("Id").MustBuild())
	r.Register(NewBuilder("A").AutoIncrementKey("Id").MustBuild())
	r.Register(NewBuilder("B").AutoIncrementKey("Id").Text("X").MustBuild())
	all := r.All()
	if len(all) != 2 || all[0].Table != "B" || all[1].Table != "A" {
		t.Fatal("registration order not kept")
	}
	if d, _ := r.Lookup("B"); len(d.Fields) != 2 {
		t.Fatal("re-registration did not replace descriptor")
	}
}
