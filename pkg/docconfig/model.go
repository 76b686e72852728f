// Package docconfig models the per-customer template configuration that
// drives document generation: sheet layouts, column definitions, footer
// rules, and styling. Configs load from JSON or YAML and serialize back in
// the same structural shape, so generated configs stay interchangeable
// with hand-written templates.
package docconfig

import "maps"

// Data source kinds for sheet_data_map entries.
const (
	DataSourceAggregation     = "aggregation"
	DataSourceProcessedTables = "processed_tables"
)

// Pallet count policies for footer configurations.
const (
	PalletModeDistinct    = "distinct"
	PalletModePassthrough = "passthrough"
)

// NormalizeDataSource folds legacy sheet_data_map spellings into the two
// recognized kinds. Unknown values are returned unchanged.
func NormalizeDataSource(s string) string {
	switch s {
	case "processed_tables_data", "processed_tables_multi":
		return DataSourceProcessedTables
	default:
		return s
	}
}

// FontSpec is a font descriptor carried through the pipeline. Only name
// and size are overlaid from quantity data; the rest passes through.
type FontSpec struct {
	Name string  `json:"name" yaml:"name"`
	Size float64 `json:"size" yaml:"size"`
	Bold bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
}

// HeaderEntry is one cell of the header block. Entries with an ID define a
// data column; entries with only a colspan are parent headers spanning
// their children. Row and Col are 0-based offsets from the header origin.
type HeaderEntry struct {
	Row     int    `json:"row" yaml:"row"`
	Col     int    `json:"col" yaml:"col"`
	Text    string `json:"text" yaml:"text"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	RowSpan int    `json:"rowspan,omitempty" yaml:"rowspan,omitempty"`
	ColSpan int    `json:"colspan,omitempty" yaml:"colspan,omitempty"`
}

// MergeRule merges a contiguous run of footer cells starting at the
// resolved start column.
type MergeRule struct {
	StartColumnID ColumnRef `json:"start_column_id" yaml:"start_column_id"`
	ColSpan       int       `json:"colspan" yaml:"colspan"`
}

// NumberFormatRule wraps a spreadsheet number format code.
type NumberFormatRule struct {
	NumberFormat string `json:"number_format" yaml:"number_format"`
}

// FooterConfig describes the footer row of a sheet or table block: where
// the total text and pallet count go, which columns get sums, and how
// footer cells merge.
type FooterConfig struct {
	TotalText           string                      `json:"total_text,omitempty" yaml:"total_text,omitempty"`
	TotalTextColumnID   *ColumnRef                  `json:"total_text_column_id,omitempty" yaml:"total_text_column_id,omitempty"`
	PalletCountColumnID *ColumnRef                  `json:"pallet_count_column_id,omitempty" yaml:"pallet_count_column_id,omitempty"`
	PalletCountMode     string                      `json:"pallet_count_mode,omitempty" yaml:"pallet_count_mode,omitempty"`
	PalletCountKey      string                      `json:"pallet_count_key,omitempty" yaml:"pallet_count_key,omitempty"`
	SumColumnIDs        []string                    `json:"sum_column_ids,omitempty" yaml:"sum_column_ids,omitempty"`
	MergeRules          []MergeRule                 `json:"merge_rules,omitempty" yaml:"merge_rules,omitempty"`
	NumberFormats       map[string]NumberFormatRule `json:"number_formats,omitempty" yaml:"number_formats,omitempty"`
	Style               map[string]interface{}      `json:"style,omitempty" yaml:"style,omitempty"`
}

// Styling holds the presentation attributes the document writer consumes.
type Styling struct {
	DefaultFont        *FontSpec          `json:"default_font,omitempty" yaml:"default_font,omitempty"`
	HeaderFont         *FontSpec          `json:"header_font,omitempty" yaml:"header_font,omitempty"`
	DefaultAlignment   map[string]string  `json:"default_alignment,omitempty" yaml:"default_alignment,omitempty"`
	HeaderAlignment    map[string]string  `json:"header_alignment,omitempty" yaml:"header_alignment,omitempty"`
	ColumnIDWidths     map[string]float64 `json:"column_id_widths,omitempty" yaml:"column_id_widths,omitempty"`
	RowHeights         map[string]float64 `json:"row_heights,omitempty" yaml:"row_heights,omitempty"`
	ForceTextFormatIDs []string           `json:"force_text_format_ids,omitempty" yaml:"force_text_format_ids,omitempty"`
}

// SheetConfig configures one canonical sheet. Mappings is business-logic
// payload the engine passes through untouched.
type SheetConfig struct {
	StartRow             int                    `json:"start_row" yaml:"start_row"`
	RowSpacing           *int                   `json:"row_spacing,omitempty" yaml:"row_spacing,omitempty"`
	AggregationKeys      []string               `json:"aggregation_keys,omitempty" yaml:"aggregation_keys,omitempty"`
	NumericColumnIDs     []string               `json:"numeric_column_ids,omitempty" yaml:"numeric_column_ids,omitempty"`
	BlockKeyColumnID     string                 `json:"block_key_column_id,omitempty" yaml:"block_key_column_id,omitempty"`
	DecimalPrecision     *int                   `json:"decimal_precision,omitempty" yaml:"decimal_precision,omitempty"`
	HeaderToWrite        []*HeaderEntry         `json:"header_to_write" yaml:"header_to_write"`
	Mappings             map[string]interface{} `json:"mappings" yaml:"mappings"`
	FooterConfigurations *FooterConfig          `json:"footer_configurations" yaml:"footer_configurations"`
	Styling              *Styling               `json:"styling" yaml:"styling"`
}

// Width returns the sheet's declared column count, derived from the
// rightmost header entry including its span.
func (s *SheetConfig) Width() int {
	width := 1
	for _, h := range s.HeaderToWrite {
		span := h.ColSpan
		if span < 1 {
			span = 1
		}
		if end := h.Col + span; end > width {
			width = end
		}
	}
	return width
}

// ColumnPosition returns the 1-based position of a canonical column id, or
// false when no header entry declares it.
func (s *SheetConfig) ColumnPosition(id string) (int, bool) {
	for _, h := range s.HeaderToWrite {
		if h.ID == id {
			return h.Col + 1, true
		}
	}
	return 0, false
}

// ColumnIDs returns the declared column ids in header order.
func (s *SheetConfig) ColumnIDs() []string {
	var ids []string
	for _, h := range s.HeaderToWrite {
		if h.ID != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// HeaderRowCount returns how many rows the header block occupies.
func (s *SheetConfig) HeaderRowCount() int {
	rows := 0
	for _, h := range s.HeaderToWrite {
		span := h.RowSpan
		if span < 1 {
			span = 1
		}
		if end := h.Row + span; end > rows {
			rows = end
		}
	}
	return rows
}

// Template is the full per-customer configuration document.
type Template struct {
	SheetsToProcess []string                `json:"sheets_to_process" yaml:"sheets_to_process"`
	SheetDataMap    map[string]string       `json:"sheet_data_map" yaml:"sheet_data_map"`
	DataMapping     map[string]*SheetConfig `json:"data_mapping" yaml:"data_mapping"`
}

// Sheet returns the config for a canonical sheet name, or nil.
func (t *Template) Sheet(name string) *SheetConfig {
	return t.DataMapping[name]
}

// DataSource returns the normalized data source kind for a sheet.
func (t *Template) DataSource(name string) string {
	return NormalizeDataSource(t.SheetDataMap[name])
}

// Clone returns a deep copy of the template. Generation runs mutate their
// copy and leave the loaded template untouched.
func (t *Template) Clone() *Template {
	out := &Template{
		SheetsToProcess: append([]string(nil), t.SheetsToProcess...),
		SheetDataMap:    make(map[string]string, len(t.SheetDataMap)),
		DataMapping:     make(map[string]*SheetConfig, len(t.DataMapping)),
	}
	for k, v := range t.SheetDataMap {
		out.SheetDataMap[k] = v
	}
	for name, sheet := range t.DataMapping {
		out.DataMapping[name] = sheet.clone()
	}
	return out
}

func (s *SheetConfig) clone() *SheetConfig {
	out := &SheetConfig{
		StartRow:         s.StartRow,
		AggregationKeys:  append([]string(nil), s.AggregationKeys...),
		NumericColumnIDs: append([]string(nil), s.NumericColumnIDs...),
		BlockKeyColumnID: s.BlockKeyColumnID,
	}
	if s.RowSpacing != nil {
		spacing := *s.RowSpacing
		out.RowSpacing = &spacing
	}
	if s.DecimalPrecision != nil {
		precision := *s.DecimalPrecision
		out.DecimalPrecision = &precision
	}
	out.HeaderToWrite = make([]*HeaderEntry, len(s.HeaderToWrite))
	for i, h := range s.HeaderToWrite {
		entry := *h
		out.HeaderToWrite[i] = &entry
	}
	out.Mappings = copyGenericMap(s.Mappings)
	if out.Mappings == nil {
		out.Mappings = make(map[string]interface{})
	}
	if s.FooterConfigurations != nil {
		footer := *s.FooterConfigurations
		footer.SumColumnIDs = append([]string(nil), s.FooterConfigurations.SumColumnIDs...)
		footer.MergeRules = append([]MergeRule(nil), s.FooterConfigurations.MergeRules...)
		footer.NumberFormats = maps.Clone(s.FooterConfigurations.NumberFormats)
		footer.Style = copyGenericMap(s.FooterConfigurations.Style)
		if s.FooterConfigurations.TotalTextColumnID != nil {
			ref := *s.FooterConfigurations.TotalTextColumnID
			footer.TotalTextColumnID = &ref
		}
		if s.FooterConfigurations.PalletCountColumnID != nil {
			ref := *s.FooterConfigurations.PalletCountColumnID
			footer.PalletCountColumnID = &ref
		}
		out.FooterConfigurations = &footer
	}
	if s.Styling != nil {
		styling := *s.Styling
		if s.Styling.DefaultFont != nil {
			font := *s.Styling.DefaultFont
			styling.DefaultFont = &font
		}
		if s.Styling.HeaderFont != nil {
			font := *s.Styling.HeaderFont
			styling.HeaderFont = &font
		}
		styling.DefaultAlignment = maps.Clone(s.Styling.DefaultAlignment)
		styling.HeaderAlignment = maps.Clone(s.Styling.HeaderAlignment)
		styling.ColumnIDWidths = maps.Clone(s.Styling.ColumnIDWidths)
		styling.RowHeights = maps.Clone(s.Styling.RowHeights)
		styling.ForceTextFormatIDs = append([]string(nil), s.Styling.ForceTextFormatIDs...)
		out.Styling = &styling
	}
	return out
}

// copyGenericMap deep-copies the nested map-and-slice structure that loose
// JSON/YAML values carry, so a clone never shares mutable state with its
// source. Scalars pass through as-is.
func copyGenericMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = copyGenericValue(v)
	}
	return out
}

func copyGenericValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyGenericMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyGenericValue(item)
		}
		return out
	default:
		return v
	}
}
