package docgen

import (
	"testing"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
)

func blockCfg() *docconfig.SheetConfig {
	return &docconfig.SheetConfig{
		StartRow:         5,
		BlockKeyColumnID: "col_po",
		HeaderToWrite: []*docconfig.HeaderEntry{
			{Row: 0, Col: 0, Text: "P.O Nº", ID: "col_po"},
			{Row: 0, Col: 1, Text: "ITEM Nº", ID: "col_item"},
			{Row: 0, Col: 2, Text: "Quantity", ID: "col_qty_sf"},
			{Row: 0, Col: 3, Text: "Amount", ID: "col_amount"},
		},
		Mappings: map[string]interface{}{},
		FooterConfigurations: &docconfig.FooterConfig{
			SumColumnIDs: []string{"col_amount"},
		},
	}
}

func blockRows(keys ...string) []RowValues {
	rows := make([]RowValues, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, RowValues{"col_po": k, "col_qty_sf": 1.0, "col_amount": 10.0})
	}
	return rows
}

func TestSplitBlocksMaximalRuns(t *testing.T) {
	// A re-occurring key value starts a new block; only contiguous rows
	// share one.
	rows := blockRows("PO-1", "PO-1", "PO-2", "PO-2", "PO-1")

	blocks, err := SplitBlocks(rows, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	wantKeys := []string{"PO-1", "PO-2", "PO-1"}
	wantLens := []int{2, 2, 1}
	for i, b := range blocks {
		if b.Key != wantKeys[i] {
			t.Errorf("Block %d: expected key %s, got %s", i, wantKeys[i], b.Key)
		}
		if len(b.Rows) != wantLens[i] {
			t.Errorf("Block %d: expected %d rows, got %d", i, wantLens[i], len(b.Rows))
		}
	}
}

func TestSplitBlocksLayout(t *testing.T) {
	// StartRow 5 with a one-row header puts the first header at row 4.
	rows := blockRows("PO-1", "PO-1", "PO-2")

	blocks, err := SplitBlocks(rows, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	first := blocks[0]
	if first.Origin != 4 || first.DataStart != 5 || first.DataEnd != 6 {
		t.Errorf("Expected first block at 4/5-6, got %d/%d-%d", first.Origin, first.DataStart, first.DataEnd)
	}
	if first.Footer.Row != 7 {
		t.Errorf("Expected first footer at row 7, got %d", first.Footer.Row)
	}

	// Default spacing leaves one blank row after the footer.
	second := blocks[1]
	if second.Origin != 9 || second.DataStart != 10 || second.DataEnd != 10 {
		t.Errorf("Expected second block at 9/10-10, got %d/%d-%d", second.Origin, second.DataStart, second.DataEnd)
	}
	if second.Footer.Row != 11 {
		t.Errorf("Expected second footer at row 11, got %d", second.Footer.Row)
	}
}

func TestSplitBlocksRangesNeverOverlap(t *testing.T) {
	rows := blockRows("A", "B", "C", "D", "D", "E")

	blocks, err := SplitBlocks(rows, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Origin <= blocks[i-1].EndRow() {
			t.Errorf("Block %d starts at %d, inside block %d ending at %d",
				i, blocks[i].Origin, i-1, blocks[i-1].EndRow())
		}
	}
}

func TestSplitBlocksZeroRows(t *testing.T) {
	blocks, err := SplitBlocks(nil, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("Expected zero blocks for zero rows, got %d", len(blocks))
	}
}

func TestSplitBlocksWithoutKeyColumn(t *testing.T) {
	cfg := blockCfg()
	cfg.BlockKeyColumnID = ""
	rows := blockRows("PO-1", "PO-2", "PO-3")

	blocks, err := SplitBlocks(rows, "Packing list", cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Expected a single block, got %d", len(blocks))
	}
	if len(blocks[0].Rows) != 3 {
		t.Errorf("Expected all 3 rows in the block, got %d", len(blocks[0].Rows))
	}
}

func TestSplitBlocksConfiguredSpacing(t *testing.T) {
	cfg := blockCfg()
	spacing := 4
	cfg.RowSpacing = &spacing
	rows := blockRows("PO-1", "PO-2")

	blocks, err := SplitBlocks(rows, "Packing list", cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// First footer at row 6, so the second block starts at 6+4.
	if blocks[1].Origin != 10 {
		t.Errorf("Expected second block origin 10, got %d", blocks[1].Origin)
	}
}

func TestSplitBlocksAdjacentSpacing(t *testing.T) {
	cfg := blockCfg()
	spacing := 1
	cfg.RowSpacing = &spacing
	rows := blockRows("PO-1", "PO-2")

	blocks, err := SplitBlocks(rows, "Packing list", cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// Spacing 1 is honored as configured: the second header sits directly
	// under the first footer at row 6.
	if blocks[1].Origin != 7 {
		t.Errorf("Expected second block origin 7, got %d", blocks[1].Origin)
	}
}

func TestSplitBlocksNumericKeyValues(t *testing.T) {
	rows := []RowValues{
		{"col_po": 1001.0, "col_amount": 1.0},
		{"col_po": 1001.0, "col_amount": 1.0},
		{"col_po": 1002.0, "col_amount": 1.0},
	}

	blocks, err := SplitBlocks(rows, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Key != "1001" {
		t.Errorf("Expected key 1001, got %s", blocks[0].Key)
	}
}

func TestSplitBlocksRejectsHeaderAboveSheet(t *testing.T) {
	cfg := blockCfg()
	cfg.StartRow = 1

	_, err := SplitBlocks(blockRows("PO-1"), "Packing list", cfg)
	if err == nil {
		t.Fatal("Expected an error when the header has no room above the data")
	}
}

func TestSplitBlocksPerBlockFooterTotals(t *testing.T) {
	rows := []RowValues{
		{"col_po": "PO-1", "col_amount": 10.25},
		{"col_po": "PO-1", "col_amount": 20.25},
		{"col_po": "PO-2", "col_amount": 5.0},
	}

	blocks, err := SplitBlocks(rows, "Packing list", blockCfg())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if blocks[0].Footer.Total != 30.5 {
		t.Errorf("Expected first block total 30.5, got %v", blocks[0].Footer.Total)
	}
	if blocks[1].Footer.Total != 5.0 {
		t.Errorf("Expected second block total 5, got %v", blocks[1].Footer.Total)
	}
}
