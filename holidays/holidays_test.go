package holidays

import "testing"

func testTable() *Table {
	return NewTable([]Holiday{
		{Date: "2026-12-25", Name: "Navidad"},
		{Date: "2026-01-01", Name: "Año Nuevo"},
		{Date: "2026-07-06", Name: "San Fermín"},
	})
}

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(table.All()) == 0 {
		t.Fatal("embedded holiday table is empty")
	}
	if !table.IsHoliday("2026-01-01") {
		t.Error("2026-01-01 should be a bank holiday")
	}
}

func TestLookup(t *testing.T) {
	table := testTable()

	if !table.IsHoliday("2026-07-06") {
		t.Error("IsHoliday(2026-07-06) = false, want true")
	}
	if table.IsHoliday("2026-07-07") {
		t.Error("IsHoliday(2026-07-07) = true, want false")
	}

	name, ok := table.Name("2026-12-25")
	if !ok || name != "Navidad" {
		t.Errorf("Name(2026-12-25) = (%q, %v), want (Navidad, true)", name, ok)
	}
	if _, ok := table.Name("2026-02-02"); ok {
		t.Error("Name(2026-02-02) found, want miss")
	}
}

func TestInRange(t *testing.T) {
	table := testTable()

	got := table.InRange("2026-06-01", "2026-12-31")
	if len(got) != 2 {
		t.Fatalf("InRange() returned %d holidays, want 2", len(got))
	}
	// Date order regardless of construction order.
	if got[0].Date != "2026-07-06" || got[1].Date != "2026-12-25" {
		t.Errorf("InRange() not in date order: %+v", got)
	}

	if got := table.InRange("2027-01-01", "2027-12-31"); len(got) != 0 {
		t.Errorf("InRange() outside data = %+v, want empty", got)
	}
}

func TestAllIsACopy(t *testing.T) {
	table := testTable()
	all := table.All()
	all[0].Name = "mutated"

	if name, _ := table.Name(all[0].Date); name == "mutated" {
		t.Error("All() must return a copy, not the internal slice")
	}
}
