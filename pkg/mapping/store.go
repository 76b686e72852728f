package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	sheetMappingsComment  = "Map quantity data sheet names to template config sheet names"
	headerMappingsComment = "Map header texts from quantity data to column IDs in template"
)

type mappingSection struct {
	Comment  string            `json:"comment"`
	Mappings map[string]string `json:"mappings"`
}

type configFile struct {
	SheetNameMappings  mappingSection `json:"sheet_name_mappings"`
	HeaderTextMappings mappingSection `json:"header_text_mappings"`
	FallbackStrategies FallbackConfig `json:"fallback_strategies"`
}

// Store loads and persists a mapping config file. The generation pipeline
// only ever reads a snapshot; writes happen through the admin tooling.
type Store struct {
	path  string
	table *Table
}

// Open reads the mapping config at path. A missing file is seeded with the
// default mappings and written out before returning.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		s.table = DefaultTable()
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mapping config: %w", err)
	}
	table, err := parseConfig(raw)
	if err != nil {
		return nil, err
	}
	s.table = table
	return s, nil
}

func parseConfig(raw []byte) (*Table, error) {
	// Absent fallback keys keep their defaults, present keys override.
	cfg := configFile{FallbackStrategies: DefaultFallbackConfig()}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON in mapping config: %w", err)
	}

	table := &Table{
		Sheets:   cfg.SheetNameMappings.Mappings,
		Headers:  cfg.HeaderTextMappings.Mappings,
		Fallback: cfg.FallbackStrategies,
	}
	if table.Sheets == nil {
		table.Sheets = make(map[string]string)
	}
	if table.Headers == nil {
		table.Headers = make(map[string]string)
	}
	return table, nil
}

// Snapshot returns an independent copy of the current table for use by a
// generation run.
func (s *Store) Snapshot() *Table {
	return s.table.Clone()
}

// AddSheetMapping registers a raw sheet name for a canonical sheet id.
// Call Save to persist.
func (s *Store) AddSheetMapping(raw, canonical string) {
	s.table.Sheets[raw] = canonical
}

// AddHeaderMapping registers a raw header text for a canonical column id.
// Call Save to persist.
func (s *Store) AddHeaderMapping(raw, canonical string) {
	s.table.Headers[raw] = canonical
}

// SheetMappings returns the current sheet mappings in sorted key order.
func (s *Store) SheetMappings() map[string]string {
	return s.Snapshot().Sheets
}

// HeaderMappings returns the current header mappings.
func (s *Store) HeaderMappings() map[string]string {
	return s.Snapshot().Headers
}

// Save writes the table back to the config file. The write goes through a
// temp file and a rename so readers never observe a half-written config.
func (s *Store) Save() error {
	cfg := configFile{
		SheetNameMappings:  mappingSection{Comment: sheetMappingsComment, Mappings: s.table.Sheets},
		HeaderTextMappings: mappingSection{Comment: headerMappingsComment, Mappings: s.table.Headers},
		FallbackStrategies: s.table.Fallback,
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("save mapping config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("save mapping config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save mapping config: %w", err)
	}
	return nil
}

// WriteReport writes a plain-text mapping report to path, listing the
// report's unresolved items and suggestions followed by the mappings
// currently in the store. A nil report lists the mappings only.
func (s *Store) WriteReport(path string, report *Report) error {
	if err := os.WriteFile(path, []byte(s.RenderReport(report)), 0o644); err != nil {
		return fmt.Errorf("write mapping report: %w", err)
	}
	return nil
}

// RenderReport returns the report text that WriteReport persists.
func (s *Store) RenderReport(report *Report) string {
	var b strings.Builder

	b.WriteString("Mapping Report\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	var items []string
	if report != nil {
		items = report.Items()
	}
	if len(items) > 0 {
		b.WriteString("Unrecognized Items and Suggestions:\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, item := range items {
			b.WriteString("• " + item + "\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No unrecognized items found.\n\n")
	}

	b.WriteString("Current Sheet Mappings:\n")
	b.WriteString(strings.Repeat("-", 25) + "\n")
	for _, raw := range sortedKeys(s.table.Sheets) {
		fmt.Fprintf(&b, "'%s' -> '%s'\n", raw, s.table.Sheets[raw])
	}

	fmt.Fprintf(&b, "\nCurrent Header Mappings (%d total):\n", len(s.table.Headers))
	b.WriteString(strings.Repeat("-", 25) + "\n")
	for _, raw := range sortedKeys(s.table.Headers) {
		fmt.Fprintf(&b, "'%s' -> '%s'\n", raw, s.table.Headers[raw])
	}

	return b.String()
}
