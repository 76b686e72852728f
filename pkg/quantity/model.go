// Package quantity defines the raw per-sheet data model produced by the
// upstream extraction step, together with a strict loader for its JSON form.
// Everything downstream (mapping, merging, aggregation) consumes this model
// read-only.
package quantity

import "strings"

// FontInfo carries the font family and size detected for a region of a
// source sheet. It passes through the pipeline untouched.
type FontInfo struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// HeaderPosition locates one raw header label on the source sheet.
// Row and Column are 1-based worksheet coordinates.
type HeaderPosition struct {
	Keyword string `json:"keyword"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
}

// Cell is one header/value pair of a row record. Rows keep their cells in
// source order, so a row behaves as an ordered mapping from raw header text
// to value.
type Cell struct {
	Header string      `json:"header"`
	Value  interface{} `json:"value"`
}

// Row is one extracted data row in source order.
type Row []Cell

// Get returns the value for the given raw header text.
func (r Row) Get(header string) (interface{}, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return nil, false
}

// FooterInfo describes a detected footer region, when the extractor found
// one.
type FooterInfo struct {
	Row            int      `json:"row"`
	Font           FontInfo `json:"font"`
	HasFormulas    bool     `json:"has_formulas,omitempty"`
	FormulaColumns []int    `json:"formula_columns,omitempty"`
}

// SheetData is the extracted content of a single source sheet.
type SheetData struct {
	SheetName       string           `json:"sheet_name"`
	HeaderFont      FontInfo         `json:"header_font"`
	DataFont        FontInfo         `json:"data_font"`
	StartRow        int              `json:"start_row"`
	HeaderPositions []HeaderPosition `json:"header_positions"`
	Rows            []Row            `json:"rows,omitempty"`
	FooterInfo      *FooterInfo      `json:"footer_info,omitempty"`
}

// HeaderTexts returns the raw header labels in source order.
func (s *SheetData) HeaderTexts() []string {
	texts := make([]string, 0, len(s.HeaderPositions))
	for _, hp := range s.HeaderPositions {
		texts = append(texts, hp.Keyword)
	}
	return texts
}

// AnalysisData is the complete quantity analysis document for one source
// file. Immutable after load.
type AnalysisData struct {
	FilePath  string      `json:"file_path"`
	Timestamp string      `json:"timestamp"`
	Sheets    []SheetData `json:"sheets"`
}

// SheetNames returns the raw sheet names in document order.
func (d *AnalysisData) SheetNames() []string {
	names := make([]string, 0, len(d.Sheets))
	for _, s := range d.Sheets {
		names = append(names, s.SheetName)
	}
	return names
}

// Sheet returns the sheet with the given raw name, or nil.
func (d *AnalysisData) Sheet(name string) *SheetData {
	for i := range d.Sheets {
		if d.Sheets[i].SheetName == name {
			return &d.Sheets[i]
		}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
