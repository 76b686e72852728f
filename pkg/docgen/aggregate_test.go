package docgen

import (
	"math"
	"testing"
)

func TestAggregateGroupsAndSums(t *testing.T) {
	rows := []RowValues{
		{"col_po": "PO-1", "col_item": "A", "col_desc": "Hide lots 1", "col_qty_sf": 10.0, "col_amount": 100.25},
		{"col_po": "PO-1", "col_item": "A", "col_desc": "Hide lots 2", "col_qty_sf": 5.0, "col_amount": 50.25},
		{"col_po": "PO-2", "col_item": "B", "col_desc": "Crust", "col_qty_sf": 2.0, "col_amount": 20.0},
	}

	got := Aggregate(rows, []string{"col_po", "col_item"}, []string{"col_qty_sf", "col_amount"}, 2)
	if got.Skipped != 0 {
		t.Fatalf("Expected 0 skipped rows, got %d", got.Skipped)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(got.Rows))
	}

	first := got.Rows[0]
	if first["col_po"] != "PO-1" || first["col_item"] != "A" {
		t.Errorf("Expected first group PO-1/A, got %v/%v", first["col_po"], first["col_item"])
	}
	if first["col_qty_sf"] != 15.0 {
		t.Errorf("Expected quantity 15, got %v", first["col_qty_sf"])
	}
	if first["col_amount"] != 150.5 {
		t.Errorf("Expected amount 150.5, got %v", first["col_amount"])
	}
	// Non-numeric columns keep the first occurrence's value.
	if first["col_desc"] != "Hide lots 1" {
		t.Errorf("Expected first occurrence description, got %v", first["col_desc"])
	}
}

func TestAggregateSkipsRowsMissingKeys(t *testing.T) {
	rows := make([]RowValues, 0, 10)
	for i := 0; i < 10; i++ {
		row := RowValues{"col_po": "PO-1", "col_qty_sf": 1.0}
		if i == 4 {
			row = RowValues{"col_qty_sf": 1.0}
		}
		rows = append(rows, row)
	}

	got := Aggregate(rows, []string{"col_po"}, []string{"col_qty_sf"}, 2)
	if got.Skipped != 1 {
		t.Fatalf("Expected 1 skipped row, got %d", got.Skipped)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(got.Rows))
	}
	if got.Rows[0]["col_qty_sf"] != 9.0 {
		t.Errorf("Expected 9 contributing rows to sum to 9, got %v", got.Rows[0]["col_qty_sf"])
	}
}

func TestAggregateBlankKeyCountsAsMissing(t *testing.T) {
	rows := []RowValues{
		{"col_po": "PO-1", "col_item": "A", "col_qty_sf": 1.0},
		{"col_po": "  ", "col_item": "A", "col_qty_sf": 1.0},
		{"col_po": nil, "col_item": "A", "col_qty_sf": 1.0},
	}

	got := Aggregate(rows, []string{"col_po", "col_item"}, []string{"col_qty_sf"}, 2)
	if got.Skipped != 2 {
		t.Errorf("Expected blank and nil keys to be skipped, got %d", got.Skipped)
	}
	if len(got.Rows) != 1 {
		t.Errorf("Expected 1 group, got %d", len(got.Rows))
	}
}

func TestAggregateGroupOrderFollowsFirstOccurrence(t *testing.T) {
	rows := []RowValues{
		{"col_po": "B", "col_qty_sf": 1.0},
		{"col_po": "A", "col_qty_sf": 1.0},
		{"col_po": "B", "col_qty_sf": 1.0},
		{"col_po": "C", "col_qty_sf": 1.0},
	}

	got := Aggregate(rows, []string{"col_po"}, []string{"col_qty_sf"}, 2)
	want := []string{"B", "A", "C"}
	if len(got.Rows) != len(want) {
		t.Fatalf("Expected %d groups, got %d", len(want), len(got.Rows))
	}
	for i, po := range want {
		if got.Rows[i]["col_po"] != po {
			t.Errorf("Group %d: expected %s, got %v", i, po, got.Rows[i]["col_po"])
		}
	}
}

func TestAggregateSumsAreOrderInvariant(t *testing.T) {
	rows := []RowValues{
		{"col_po": "PO-1", "col_amount": 0.25},
		{"col_po": "PO-1", "col_amount": "2.5*1.2*0.8"},
		{"col_po": "PO-1", "col_amount": "1,000.5"},
		{"col_po": "PO-1", "col_amount": 7.0},
	}
	reversed := make([]RowValues, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}

	a := Aggregate(rows, []string{"col_po"}, []string{"col_amount"}, 2)
	b := Aggregate(reversed, []string{"col_po"}, []string{"col_amount"}, 2)
	if a.Rows[0]["col_amount"] != b.Rows[0]["col_amount"] {
		t.Errorf("Sum depends on row order: %v vs %v", a.Rows[0]["col_amount"], b.Rows[0]["col_amount"])
	}
	// 0.25 + 2.4 + 1000.5 + 7 = 1010.15
	if a.Rows[0]["col_amount"] != 1010.15 {
		t.Errorf("Expected 1010.15, got %v", a.Rows[0]["col_amount"])
	}
}

func TestAggregateRoundsOnlyTheFinalSum(t *testing.T) {
	// Rounding each contribution to 0 decimals would give 0; the correct
	// final-value rounding gives 1.
	rows := []RowValues{
		{"col_po": "PO-1", "col_qty_sf": 0.4},
		{"col_po": "PO-1", "col_qty_sf": 0.4},
		{"col_po": "PO-1", "col_qty_sf": 0.4},
	}

	got := Aggregate(rows, []string{"col_po"}, []string{"col_qty_sf"}, 0)
	if got.Rows[0]["col_qty_sf"] != 1.0 {
		t.Errorf("Expected 1, got %v", got.Rows[0]["col_qty_sf"])
	}
}

func TestAggregateNoKeysMakesSingleGroup(t *testing.T) {
	rows := []RowValues{
		{"col_qty_sf": 1.0},
		{"col_qty_sf": 2.0},
	}

	got := Aggregate(rows, nil, []string{"col_qty_sf"}, 2)
	if len(got.Rows) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(got.Rows))
	}
	if got.Rows[0]["col_qty_sf"] != 3.0 {
		t.Errorf("Expected 3, got %v", got.Rows[0]["col_qty_sf"])
	}
}

func TestToNumberCoercions(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{7, 7, true},
		{"3.25", 3.25, true},
		{"1,234.5", 1234.5, true},
		{"2.5*1.2*0.8", 2.4, true},
		{"(2+3)*4", 20, true},
		{"HIDE LOT 4", 0, false},
		{"", 0, false},
		{nil, 0, false},
	}

	for _, c := range cases {
		got, ok := toNumber(c.in)
		if ok != c.ok {
			t.Errorf("toNumber(%v): expected ok=%v, got %v", c.in, c.ok, ok)
			continue
		}
		if ok && math.Abs(got-c.want) > 1e-9 {
			t.Errorf("toNumber(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}
