package catalog

import "testing"

func TestLookup(t *testing.T) {
	d, ok := Lookup("desk")
	if !ok {
		t.Fatal("desk should exist")
	}
	if d.Name != "Desk" || d.WidthUnits <= 0 || d.LengthUnits <= 0 {
		t.Errorf("desk definition = %+v", d)
	}

	if _, ok := Lookup("submarine"); ok {
		t.Error("unknown type should not resolve")
	}
}

func TestAllEntriesAreValid(t *testing.T) {
	for _, d := range All() {
		if err := d.Validate(); err != nil {
			t.Errorf("catalog entry %q invalid: %v", d.TypeID, err)
		}
		if d.Color == "" {
			t.Errorf("catalog entry %q has no color", d.TypeID)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0].TypeID = "mutated"
	if All()[0].TypeID == "mutated" {
		t.Error("mutating the returned slice must not affect the catalog")
	}
}
