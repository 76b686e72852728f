package quantity

import (
	"encoding/json"
	"fmt"
	"os"
)

// MalformedDataError reports a structural problem in a quantity analysis
// document. It is fatal at load time; Sheet names the offending sheet when
// the problem is sheet-scoped.
type MalformedDataError struct {
	Sheet  string
	Field  string
	Reason string
}

func (e *MalformedDataError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("malformed quantity data: sheet %q: %s: %s", e.Sheet, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed quantity data: %s: %s", e.Field, e.Reason)
}

// Load reads and validates a quantity analysis JSON document from disk.
func Load(path string) (*AnalysisData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quantity data %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a quantity analysis JSON document.
func Parse(raw []byte) (*AnalysisData, error) {
	var data AnalysisData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode quantity data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate checks the structural invariants of the document. Any violation
// is a *MalformedDataError.
func (d *AnalysisData) Validate() error {
	if isBlank(d.FilePath) {
		return &MalformedDataError{Field: "file_path", Reason: "must be a non-empty string"}
	}
	if isBlank(d.Timestamp) {
		return &MalformedDataError{Field: "timestamp", Reason: "must be a non-empty string"}
	}
	if len(d.Sheets) == 0 {
		return &MalformedDataError{Field: "sheets", Reason: "must be a non-empty list"}
	}
	for i := range d.Sheets {
		if err := d.Sheets[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SheetData) validate() error {
	if isBlank(s.SheetName) {
		return &MalformedDataError{Field: "sheet_name", Reason: "must be a non-empty string"}
	}
	if err := s.HeaderFont.validate(s.SheetName, "header_font"); err != nil {
		return err
	}
	if err := s.DataFont.validate(s.SheetName, "data_font"); err != nil {
		return err
	}
	if s.StartRow < 0 {
		return &MalformedDataError{Sheet: s.SheetName, Field: "start_row", Reason: "must be a non-negative integer"}
	}
	if s.HeaderPositions == nil {
		return &MalformedDataError{Sheet: s.SheetName, Field: "header_positions", Reason: "must be a list"}
	}
	for i, hp := range s.HeaderPositions {
		if isBlank(hp.Keyword) {
			return &MalformedDataError{
				Sheet:  s.SheetName,
				Field:  fmt.Sprintf("header_positions[%d].keyword", i),
				Reason: "must be a non-empty string",
			}
		}
		if hp.Row < 0 || hp.Column < 0 {
			return &MalformedDataError{
				Sheet:  s.SheetName,
				Field:  fmt.Sprintf("header_positions[%d]", i),
				Reason: "row and column must be non-negative integers",
			}
		}
	}
	for ri, row := range s.Rows {
		for ci, cell := range row {
			if isBlank(cell.Header) {
				return &MalformedDataError{
					Sheet:  s.SheetName,
					Field:  fmt.Sprintf("rows[%d][%d].header", ri, ci),
					Reason: "must be a non-empty string",
				}
			}
		}
	}
	if s.FooterInfo != nil && s.FooterInfo.Row < 0 {
		return &MalformedDataError{Sheet: s.SheetName, Field: "footer_info.row", Reason: "must be a non-negative integer"}
	}
	return nil
}

func (f FontInfo) validate(sheet, field string) error {
	if isBlank(f.Name) {
		return &MalformedDataError{Sheet: sheet, Field: field + ".name", Reason: "must be a non-empty string"}
	}
	if f.Size <= 0 {
		return &MalformedDataError{Sheet: sheet, Field: field + ".size", Reason: "must be a positive number"}
	}
	return nil
}
