package docconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// TemplateError reports a structural problem in a template configuration.
// It is fatal at load time; Sheet names the offending sheet when the
// problem is sheet-scoped.
type TemplateError struct {
	Sheet  string
	Field  string
	Reason string
}

func (e *TemplateError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("invalid template config: sheet %q: %s: %s", e.Sheet, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid template config: %s: %s", e.Field, e.Reason)
}

// Load reads and validates a template configuration from disk. The format
// is chosen by file extension: .yaml and .yml decode as YAML, everything
// else as JSON.
func Load(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template config %s: %w", path, err)
	}
	if isYAMLPath(path) {
		return ParseYAML(raw)
	}
	return Parse(raw)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Parse decodes and validates a JSON template configuration.
func Parse(raw []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template config: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ParseYAML decodes and validates a YAML template configuration.
func ParseYAML(raw []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template config: %w", err)
	}
	tpl.normalizeYAML()
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// normalizeYAML rewrites the opaque map blobs yaml.v2 decodes with
// interface{} keys into string-keyed maps so they behave like their JSON
// counterparts.
func (t *Template) normalizeYAML() {
	for _, sheet := range t.DataMapping {
		if sheet == nil {
			continue
		}
		sheet.Mappings = normalizeStringMap(sheet.Mappings)
		if sheet.FooterConfigurations != nil {
			sheet.FooterConfigurations.Style = normalizeStringMap(sheet.FooterConfigurations.Style)
		}
	}
}

func normalizeStringMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case map[string]interface{}:
		return normalizeStringMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Validate checks the structural invariants of the configuration. Any
// violation is a *TemplateError.
func (t *Template) Validate() error {
	if len(t.SheetsToProcess) == 0 {
		return &TemplateError{Field: "sheets_to_process", Reason: "must be a non-empty list"}
	}
	if t.SheetDataMap == nil {
		return &TemplateError{Field: "sheet_data_map", Reason: "must be a mapping"}
	}
	if t.DataMapping == nil {
		return &TemplateError{Field: "data_mapping", Reason: "must be a mapping"}
	}
	for _, name := range t.SheetsToProcess {
		if strings.TrimSpace(name) == "" {
			return &TemplateError{Field: "sheets_to_process", Reason: "sheet names must be non-empty strings"}
		}
		if _, ok := t.SheetDataMap[name]; !ok {
			return &TemplateError{Sheet: name, Field: "sheet_data_map", Reason: "missing entry for processed sheet"}
		}
		if t.DataMapping[name] == nil {
			return &TemplateError{Sheet: name, Field: "data_mapping", Reason: "missing entry for processed sheet"}
		}
	}
	for name, sheet := range t.DataMapping {
		if sheet == nil {
			return &TemplateError{Sheet: name, Field: "data_mapping", Reason: "sheet config must be a mapping"}
		}
		if err := sheet.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SheetConfig) validate(name string) error {
	if s.StartRow < 0 {
		return &TemplateError{Sheet: name, Field: "start_row", Reason: "must be a non-negative integer"}
	}
	if s.RowSpacing != nil && *s.RowSpacing < 1 {
		return &TemplateError{Sheet: name, Field: "row_spacing", Reason: "must be a positive integer"}
	}
	if len(s.HeaderToWrite) == 0 {
		return &TemplateError{Sheet: name, Field: "header_to_write", Reason: "must be a non-empty list"}
	}
	for i, h := range s.HeaderToWrite {
		if h == nil {
			return &TemplateError{Sheet: name, Field: fmt.Sprintf("header_to_write[%d]", i), Reason: "must be a mapping"}
		}
		if err := h.validate(name, i); err != nil {
			return err
		}
	}
	if s.Mappings == nil {
		return &TemplateError{Sheet: name, Field: "mappings", Reason: "must be a mapping"}
	}
	if s.FooterConfigurations == nil {
		return &TemplateError{Sheet: name, Field: "footer_configurations", Reason: "must be a mapping"}
	}
	if err := s.FooterConfigurations.validate(name); err != nil {
		return err
	}
	if s.Styling == nil {
		return &TemplateError{Sheet: name, Field: "styling", Reason: "must be a mapping"}
	}
	if err := validateFont(name, "styling.default_font", s.Styling.DefaultFont); err != nil {
		return err
	}
	if err := validateFont(name, "styling.header_font", s.Styling.HeaderFont); err != nil {
		return err
	}
	if s.DecimalPrecision != nil && *s.DecimalPrecision < 0 {
		return &TemplateError{Sheet: name, Field: "decimal_precision", Reason: "must be a non-negative integer"}
	}
	return nil
}

func (h *HeaderEntry) validate(sheet string, i int) error {
	field := func(sub string) string { return fmt.Sprintf("header_to_write[%d].%s", i, sub) }
	if h.Row < 0 {
		return &TemplateError{Sheet: sheet, Field: field("row"), Reason: "must be a non-negative integer"}
	}
	if h.Col < 0 {
		return &TemplateError{Sheet: sheet, Field: field("col"), Reason: "must be a non-negative integer"}
	}
	if strings.TrimSpace(h.Text) == "" {
		return &TemplateError{Sheet: sheet, Field: field("text"), Reason: "must be a non-empty string"}
	}
	if h.ID == "" && h.ColSpan == 0 {
		return &TemplateError{Sheet: sheet, Field: fmt.Sprintf("header_to_write[%d]", i), Reason: "must declare an id or a colspan"}
	}
	if h.RowSpan < 0 {
		return &TemplateError{Sheet: sheet, Field: field("rowspan"), Reason: "must be a positive integer"}
	}
	if h.ColSpan < 0 {
		return &TemplateError{Sheet: sheet, Field: field("colspan"), Reason: "must be a positive integer"}
	}
	return nil
}

func (f *FooterConfig) validate(sheet string) error {
	if f.PalletCountMode != "" &&
		f.PalletCountMode != PalletModeDistinct &&
		f.PalletCountMode != PalletModePassthrough {
		return &TemplateError{
			Sheet:  sheet,
			Field:  "footer_configurations.pallet_count_mode",
			Reason: fmt.Sprintf("must be %q or %q", PalletModeDistinct, PalletModePassthrough),
		}
	}
	for i, rule := range f.MergeRules {
		if rule.ColSpan < 1 {
			return &TemplateError{
				Sheet:  sheet,
				Field:  fmt.Sprintf("footer_configurations.merge_rules[%d].colspan", i),
				Reason: "must be a positive integer",
			}
		}
	}
	return nil
}

func validateFont(sheet, field string, f *FontSpec) error {
	if f == nil {
		return &TemplateError{Sheet: sheet, Field: field, Reason: "must be present"}
	}
	if strings.TrimSpace(f.Name) == "" {
		return &TemplateError{Sheet: sheet, Field: field + ".name", Reason: "must be a non-empty string"}
	}
	if f.Size <= 0 {
		return &TemplateError{Sheet: sheet, Field: field + ".size", Reason: "must be a positive number"}
	}
	return nil
}
