package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenSeedsMissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping_config.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file to be created: %v", err)
	}

	table := store.Snapshot()
	if table.Sheets["INV"] != "Invoice" {
		t.Errorf("Expected default sheet mapping INV -> Invoice, got %q", table.Sheets["INV"])
	}
	if len(table.Headers) != 7 {
		t.Errorf("Expected 7 default header mappings, got %d", len(table.Headers))
	}
	if table.Fallback.PartialMatchingThreshold != 0.7 {
		t.Errorf("Expected default threshold 0.7, got %f", table.Fallback.PartialMatchingThreshold)
	}
}

func TestAddAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping_config.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.AddSheetMapping("INVOICE_2024", "Invoice")
	store.AddHeaderMapping("P.O NUMBER", "col_po")
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	table := reopened.Snapshot()
	if table.Sheets["INVOICE_2024"] != "Invoice" {
		t.Errorf("Expected saved sheet mapping, got %q", table.Sheets["INVOICE_2024"])
	}
	if table.Headers["P.O NUMBER"] != "col_po" {
		t.Errorf("Expected saved header mapping, got %q", table.Headers["P.O NUMBER"])
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping_config.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	snapshot := store.Snapshot()
	store.AddSheetMapping("NEW", "Invoice")

	if _, ok := snapshot.Sheets["NEW"]; ok {
		t.Error("Expected snapshot to be unaffected by later edits")
	}
}

func TestParseConfigKeepsFallbackDefaults(t *testing.T) {
	raw := []byte(`{
		"sheet_name_mappings": {"mappings": {"INV": "Invoice"}},
		"header_text_mappings": {"mappings": {}},
		"fallback_strategies": {"case_insensitive_matching": false}
	}`)

	table, err := parseConfig(raw)
	if err != nil {
		t.Fatalf("parseConfig failed: %v", err)
	}
	if table.Fallback.CaseInsensitiveMatching {
		t.Error("Expected case-insensitive matching to be disabled")
	}
	if table.Fallback.PartialMatchingThreshold != 0.7 {
		t.Errorf("Expected absent threshold to default to 0.7, got %f", table.Fallback.PartialMatchingThreshold)
	}
	if !table.Fallback.PatternMatching {
		t.Error("Expected absent pattern flag to default to true")
	}
}

func TestParseConfigRejectsInvalidJSON(t *testing.T) {
	if _, err := parseConfig([]byte(`{"sheet_name_mappings":`)); err == nil {
		t.Fatal("Expected error for truncated JSON, got nil")
	}
}

func TestWriteReportFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "mapping_config.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	r := NewResolver(store.Snapshot())
	r.ResolveSheet("XYZ_SHEET")
	r.ResolveSheet("INVO")

	reportPath := filepath.Join(dir, "mapping_report.txt")
	if err := store.WriteReport(reportPath, r.Report()); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Read report failed: %v", err)
	}
	text := string(raw)

	for _, want := range []string{
		"Mapping Report",
		strings.Repeat("=", 50),
		"Unrecognized Items and Suggestions:",
		"• Sheet:XYZ_SHEET",
		"• Suggestion: sheet 'INVO' -> 'INV'",
		"Current Sheet Mappings:",
		"'INV' -> 'Invoice'",
		"Current Header Mappings (7 total):",
		"'Amount' -> 'col_amount'",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected report to contain %q\nreport:\n%s", want, text)
		}
	}
}

func TestWriteReportWithoutItems(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "mapping_config.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	reportPath := filepath.Join(dir, "mapping_report.txt")
	if err := store.WriteReport(reportPath, nil); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	raw, _ := os.ReadFile(reportPath)
	if !strings.Contains(string(raw), "No unrecognized items found.") {
		t.Errorf("Expected empty-report notice, got:\n%s", string(raw))
	}
}
