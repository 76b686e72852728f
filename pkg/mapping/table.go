// Package mapping resolves raw sheet names and header texts from quantity
// data to the canonical identifiers used by template configurations. It
// applies an ordered chain of fallback strategies and records every
// resolution attempt in a run report.
package mapping

// FallbackConfig controls which fallback strategies run after an exact
// match fails, and how unresolved items are reported.
type FallbackConfig struct {
	CaseInsensitiveMatching  bool    `json:"case_insensitive_matching"`
	PartialMatchingThreshold float64 `json:"partial_matching_threshold"`
	PatternMatching          bool    `json:"pattern_matching"`
	LogUnrecognizedItems     bool    `json:"log_unrecognized_items"`
	CreateSuggestions        bool    `json:"create_suggestions"`
}

// DefaultFallbackConfig returns the fallback settings used when the mapping
// config file omits them.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		CaseInsensitiveMatching:  true,
		PartialMatchingThreshold: 0.7,
		PatternMatching:          true,
		LogUnrecognizedItems:     true,
		CreateSuggestions:        true,
	}
}

// Table holds the sheet-name and header-text mappings together with the
// fallback settings. A Table loaded for a generation run is a snapshot;
// edits made through the Store do not affect resolvers already built on it.
type Table struct {
	Sheets   map[string]string
	Headers  map[string]string
	Fallback FallbackConfig
}

// DefaultTable returns the built-in mappings used to seed a new config file.
func DefaultTable() *Table {
	return &Table{
		Sheets: map[string]string{
			"INV": "Invoice",
			"PAK": "Packing list",
			"CON": "Contract",
		},
		Headers: map[string]string{
			"Mark & Nº":   "col_static",
			"P.O Nº":      "col_po",
			"ITEM Nº":     "col_item",
			"Description": "col_desc",
			"Quantity":    "col_qty_sf",
			"Unit price":  "col_unit_price",
			"Amount":      "col_amount",
		},
		Fallback: DefaultFallbackConfig(),
	}
}

// Clone returns a deep copy so a running resolution never observes
// concurrent edits to the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Sheets:   make(map[string]string, len(t.Sheets)),
		Headers:  make(map[string]string, len(t.Headers)),
		Fallback: t.Fallback,
	}
	for k, v := range t.Sheets {
		out.Sheets[k] = v
	}
	for k, v := range t.Headers {
		out.Headers[k] = v
	}
	return out
}
