package docconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validTemplateJSON() string {
	return `{
  "sheets_to_process": ["Invoice"],
  "sheet_data_map": {"Invoice": "aggregation"},
  "data_mapping": {
    "Invoice": {
      "start_row": 20,
      "header_to_write": [
        {"row": 0, "col": 0, "text": "Mark & Nº", "id": "col_static", "rowspan": 2},
        {"row": 0, "col": 1, "text": "P.O Nº", "id": "col_po", "rowspan": 2},
        {"row": 0, "col": 2, "text": "ITEM Nº", "id": "col_item", "rowspan": 2},
        {"row": 0, "col": 3, "text": "Description", "id": "col_desc", "rowspan": 2},
        {"row": 0, "col": 4, "text": "Quantity", "colspan": 2},
        {"row": 1, "col": 4, "text": "PCS", "id": "col_qty_pcs"},
        {"row": 1, "col": 5, "text": "SF", "id": "col_qty_sf"},
        {"row": 0, "col": 6, "text": "Unit price", "id": "col_unit_price", "rowspan": 2},
        {"row": 0, "col": 7, "text": "Amount", "id": "col_amount", "rowspan": 2}
      ],
      "mappings": {"col_po": "P.O Nº", "col_amount": "Amount"},
      "footer_configurations": {
        "total_text": "TOTAL:",
        "total_text_column_id": 0,
        "pallet_count_column_id": "col_item",
        "sum_column_ids": ["col_qty_pcs", "col_qty_sf", "col_amount"],
        "merge_rules": [{"start_column_id": "2", "colspan": 3}],
        "number_formats": {"col_amount": {"number_format": "#,##0.00"}},
        "style": {"font": {"bold": true}}
      },
      "styling": {
        "default_font": {"name": "Times New Roman", "size": 12},
        "header_font": {"name": "Times New Roman", "size": 12, "bold": true}
      }
    }
  }
}`
}

func mustParse(t *testing.T, raw string) *Template {
	t.Helper()
	tpl, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Expected template to parse, got error: %v", err)
	}
	return tpl
}

func TestParseValidTemplate(t *testing.T) {
	tpl := mustParse(t, validTemplateJSON())
	sheet := tpl.Sheet("Invoice")
	if sheet == nil {
		t.Fatal("Expected Invoice sheet config")
	}
	if sheet.StartRow != 20 {
		t.Fatalf("Expected start row 20, got %d", sheet.StartRow)
	}
	if w := sheet.Width(); w != 8 {
		t.Fatalf("Expected width 8, got %d", w)
	}
	if src := tpl.DataSource("Invoice"); src != DataSourceAggregation {
		t.Fatalf("Expected aggregation data source, got %q", src)
	}
	footer := sheet.FooterConfigurations
	if footer.TotalText != "TOTAL:" {
		t.Fatalf("Expected total text TOTAL:, got %q", footer.TotalText)
	}
	pos, err := ResolveColumn(*footer.TotalTextColumnID, sheet, "Invoice")
	if err != nil {
		t.Fatalf("Expected total text column to resolve, got error: %v", err)
	}
	if pos != 1 {
		t.Fatalf("Expected total text at position 1, got %d", pos)
	}
	rule := footer.MergeRules[0]
	start, err := ResolveColumn(rule.StartColumnID, sheet, "Invoice")
	if err != nil {
		t.Fatalf("Expected merge start to resolve, got error: %v", err)
	}
	if start != 3 || rule.ColSpan != 3 {
		t.Fatalf("Expected merge spanning positions 3-5, got start %d colspan %d", start, rule.ColSpan)
	}
	if footer.NumberFormats["col_amount"].NumberFormat != "#,##0.00" {
		t.Fatalf("Expected number format for col_amount, got %+v", footer.NumberFormats)
	}
}

func TestParseRejectsMissingSheetDataMapEntry(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"sheet_data_map": {"Invoice": "aggregation"}`, `"sheet_data_map": {}`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if tplErr.Sheet != "Invoice" || tplErr.Field != "sheet_data_map" {
		t.Fatalf("Expected sheet_data_map error for Invoice, got %+v", tplErr)
	}
}

func TestParseRejectsMissingDataMappingEntry(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"sheets_to_process": ["Invoice"]`, `"sheets_to_process": ["Invoice", "Contract"]`, 1)
	raw = strings.Replace(raw, `"sheet_data_map": {"Invoice": "aggregation"}`, `"sheet_data_map": {"Invoice": "aggregation", "Contract": "aggregation"}`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if tplErr.Sheet != "Contract" || tplErr.Field != "data_mapping" {
		t.Fatalf("Expected data_mapping error for Contract, got %+v", tplErr)
	}
}

func TestParseRejectsHeaderWithoutIDOrColSpan(t *testing.T) {
	raw := strings.Replace(
		validTemplateJSON(),
		`{"row": 0, "col": 4, "text": "Quantity", "colspan": 2}`,
		`{"row": 0, "col": 4, "text": "Quantity"}`,
		1,
	)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if !strings.Contains(tplErr.Reason, "id or a colspan") {
		t.Fatalf("Expected id-or-colspan reason, got %q", tplErr.Reason)
	}
}

func TestParseRejectsBlankHeaderText(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"text": "Amount"`, `"text": "  "`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if !strings.Contains(tplErr.Field, "text") {
		t.Fatalf("Expected a text field error, got %+v", tplErr)
	}
}

func TestParseRejectsBadHeaderFont(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"header_font": {"name": "Times New Roman", "size": 12, "bold": true}`, `"header_font": {"name": "Times New Roman", "size": 0}`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if tplErr.Field != "styling.header_font.size" {
		t.Fatalf("Expected header font size error, got %+v", tplErr)
	}
}

func TestParseRejectsNegativeStartRow(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"start_row": 20`, `"start_row": -1`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if tplErr.Field != "start_row" {
		t.Fatalf("Expected start_row error, got %+v", tplErr)
	}
}

func TestParseRejectsZeroRowSpacing(t *testing.T) {
	raw := strings.Replace(validTemplateJSON(), `"start_row": 20`, `"start_row": 20, "row_spacing": 0`, 1)
	_, err := Parse([]byte(raw))
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("Expected *TemplateError, got %v", err)
	}
	if tplErr.Field != "row_spacing" {
		t.Fatalf("Expected row_spacing error, got %+v", tplErr)
	}
}

func TestLoadYAMLTemplate(t *testing.T) {
	raw := `sheets_to_process:
  - Invoice
sheet_data_map:
  Invoice: processed_tables_data
data_mapping:
  Invoice:
    start_row: 20
    block_key_column_id: col_po
    header_to_write:
      - {row: 0, col: 0, text: "P.O Nº", id: col_po}
      - {row: 0, col: 1, text: Amount, id: col_amount}
    mappings:
      col_po:
        source: purchase_order
    footer_configurations:
      total_text_column_id: "0"
      sum_column_ids: [col_amount]
    styling:
      default_font: {name: Arial, size: 10}
      header_font: {name: Arial, size: 11, bold: true}
`
	dir := t.TempDir()
	path := filepath.Join(dir, "template.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	tpl, err := Load(path)
	if err != nil {
		t.Fatalf("Expected YAML template to load, got error: %v", err)
	}
	if src := tpl.DataSource("Invoice"); src != DataSourceProcessedTables {
		t.Fatalf("Expected legacy source to normalize, got %q", src)
	}
	sheet := tpl.Sheet("Invoice")
	nested, ok := sheet.Mappings["col_po"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected nested mapping to normalize to string keys, got %T", sheet.Mappings["col_po"])
	}
	if nested["source"] != "purchase_order" {
		t.Fatalf("Expected nested mapping value, got %v", nested)
	}
	pos, err := ResolveColumn(*sheet.FooterConfigurations.TotalTextColumnID, sheet, "Invoice")
	if err != nil || pos != 1 {
		t.Fatalf("Expected quoted index to resolve to 1, got %d, %v", pos, err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tpl := mustParse(t, validTemplateJSON())
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "generated.json")
	if err := Save(path, tpl); err != nil {
		t.Fatalf("Expected save to succeed, got error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("Expected temp file to be renamed away")
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Expected saved template to load, got error: %v", err)
	}
	sheet := loaded.Sheet("Invoice")
	if sheet.StartRow != 20 || sheet.Width() != 8 {
		t.Fatalf("Expected round-tripped sheet layout, got start %d width %d", sheet.StartRow, sheet.Width())
	}
	rule := sheet.FooterConfigurations.MergeRules[0]
	start, err := ResolveColumn(rule.StartColumnID, sheet, "Invoice")
	if err != nil || start != 3 {
		t.Fatalf("Expected merge rule to survive round trip, got %d, %v", start, err)
	}
}

func TestSaveRejectsInvalidTemplate(t *testing.T) {
	tpl := mustParse(t, validTemplateJSON())
	tpl.Sheet("Invoice").HeaderToWrite = nil
	dir := t.TempDir()
	if err := Save(filepath.Join(dir, "bad.json"), tpl); err == nil {
		t.Fatal("Expected save to reject an invalid template")
	}
}

func TestNormalizeDataSource(t *testing.T) {
	if got := NormalizeDataSource("processed_tables_multi"); got != DataSourceProcessedTables {
		t.Fatalf("Expected processed_tables, got %q", got)
	}
	if got := NormalizeDataSource("aggregation"); got != DataSourceAggregation {
		t.Fatalf("Expected aggregation, got %q", got)
	}
	if got := NormalizeDataSource("mystery"); got != "mystery" {
		t.Fatalf("Expected unknown source to pass through, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tpl := mustParse(t, validTemplateJSON())
	copied := tpl.Clone()
	copied.Sheet("Invoice").StartRow = 99
	copied.Sheet("Invoice").HeaderToWrite[0].Text = "changed"
	copied.Sheet("Invoice").Styling.DefaultFont.Name = "Arial"
	copied.SheetDataMap["Invoice"] = "processed_tables"
	orig := tpl.Sheet("Invoice")
	if orig.StartRow != 20 {
		t.Fatalf("Expected original start row untouched, got %d", orig.StartRow)
	}
	if orig.HeaderToWrite[0].Text != "Mark & Nº" {
		t.Fatalf("Expected original header untouched, got %q", orig.HeaderToWrite[0].Text)
	}
	if orig.Styling.DefaultFont.Name != "Times New Roman" {
		t.Fatalf("Expected original font untouched, got %q", orig.Styling.DefaultFont.Name)
	}
	if tpl.SheetDataMap["Invoice"] != "aggregation" {
		t.Fatalf("Expected original data map untouched, got %q", tpl.SheetDataMap["Invoice"])
	}
}
