package docgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
)

// Merge rule failure kinds.
const (
	MergeOverlap     = "overlapping_merge_rule"
	MergeOutOfBounds = "merge_span_out_of_bounds"
)

// MergeRuleError is a fatal merge-rule validation failure. A corrupted
// merge is worse than no merge, so these abort before any output is
// written.
type MergeRuleError struct {
	Kind  string
	Sheet string
	Start int
	End   int
	Width int
}

func (e *MergeRuleError) Error() string {
	if e.Kind == MergeOutOfBounds {
		return fmt.Sprintf("merge span %d-%d exceeds sheet %q width %d", e.Start, e.End, e.Sheet, e.Width)
	}
	return fmt.Sprintf("overlapping merge span %d-%d on sheet %q footer row", e.Start, e.End, e.Sheet)
}

// MergeSpan is a validated merge of footer columns Start through End,
// inclusive, 1-based.
type MergeSpan struct {
	Start int
	End   int
}

// SumColumn is a footer column that receives a sum over the data rows.
type SumColumn struct {
	ID       string
	Position int
}

// FooterLayout is the resolved footer of one sheet or table block: where
// the total text and pallet count land, the computed total, the sum
// columns, and the validated merge spans. Positions left at 0 mean the
// template declared no placement.
type FooterLayout struct {
	Row           int
	TotalText     string
	TotalColumn   int
	Total         float64
	PalletColumn  int
	PalletCount   int
	PalletText    string
	SumColumns    []SumColumn
	Merges        []MergeSpan
	NumberFormats map[int]string
}

// ComputeFooter resolves the footer placements for a block or sheet,
// computes the total of the designated amount column and the pallet count,
// and validates the merge rules. defaultPallets is used when the count
// mode is distinct but no pallet key column is declared (one per table
// block, zero for a sheet-level footer).
func ComputeFooter(sheetName string, cfg *docconfig.SheetConfig, rows []RowValues, footerRow, defaultPallets int) (*FooterLayout, error) {
	layout := &FooterLayout{Row: footerRow, TotalText: "TOTAL:"}
	footer := cfg.FooterConfigurations
	if footer == nil {
		return layout, nil
	}
	if footer.TotalText != "" {
		layout.TotalText = footer.TotalText
	}

	if footer.TotalTextColumnID != nil {
		pos, err := docconfig.ResolveColumn(*footer.TotalTextColumnID, cfg, sheetName)
		if err != nil {
			return nil, err
		}
		layout.TotalColumn = pos
	}
	if footer.PalletCountColumnID != nil {
		pos, err := docconfig.ResolveColumn(*footer.PalletCountColumnID, cfg, sheetName)
		if err != nil {
			return nil, err
		}
		layout.PalletColumn = pos
	}

	for _, id := range footer.SumColumnIDs {
		pos, err := docconfig.ResolveColumn(docconfig.ColumnID(id), cfg, sheetName)
		if err != nil {
			return nil, err
		}
		layout.SumColumns = append(layout.SumColumns, SumColumn{ID: id, Position: pos})
	}

	if amount := amountColumnID(footer.SumColumnIDs); amount != "" {
		var sum float64
		for _, row := range rows {
			n, _ := toNumber(row[amount])
			sum += n
		}
		layout.Total = roundTo(sum, decimalPrecision(cfg))
	}

	layout.PalletCount = palletCount(footer, rows, defaultPallets)
	layout.PalletText = palletText(layout.PalletCount)

	if len(footer.NumberFormats) > 0 {
		layout.NumberFormats = make(map[int]string, len(footer.NumberFormats))
		keys := make([]string, 0, len(footer.NumberFormats))
		for key := range footer.NumberFormats {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			pos, err := docconfig.ResolveColumn(docconfig.ParseColumnRef(key), cfg, sheetName)
			if err != nil {
				return nil, err
			}
			layout.NumberFormats[pos] = footer.NumberFormats[key].NumberFormat
		}
	}

	width := cfg.Width()
	for _, rule := range footer.MergeRules {
		start, err := docconfig.ResolveColumn(rule.StartColumnID, cfg, sheetName)
		if err != nil {
			return nil, err
		}
		end := start + rule.ColSpan - 1
		if end > width {
			return nil, &MergeRuleError{Kind: MergeOutOfBounds, Sheet: sheetName, Start: start, End: end, Width: width}
		}
		for _, prev := range layout.Merges {
			if start <= prev.End && prev.Start <= end {
				return nil, &MergeRuleError{Kind: MergeOverlap, Sheet: sheetName, Start: start, End: end, Width: width}
			}
		}
		layout.Merges = append(layout.Merges, MergeSpan{Start: start, End: end})
	}

	return layout, nil
}

// amountColumnID picks the column whose sum becomes the footer total:
// col_amount when present among the sum columns, else the first of them.
func amountColumnID(ids []string) string {
	for _, id := range ids {
		if id == "col_amount" {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func palletCount(footer *docconfig.FooterConfig, rows []RowValues, defaultPallets int) int {
	mode := footer.PalletCountMode
	if mode == "" {
		mode = docconfig.PalletModeDistinct
	}
	if mode == docconfig.PalletModePassthrough {
		if footer.PalletCountKey != "" && len(rows) > 0 {
			if n, ok := toNumber(rows[0][footer.PalletCountKey]); ok {
				return int(n)
			}
		}
		return defaultPallets
	}
	if footer.PalletCountKey == "" {
		return defaultPallets
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		v := strings.TrimSpace(formatValue(row[footer.PalletCountKey]))
		if v == "" {
			continue
		}
		seen[v] = true
	}
	return len(seen)
}

// palletText renders the footer pallet cell, singular for exactly one.
func palletText(n int) string {
	if n == 1 {
		return "1 PALLET"
	}
	return fmt.Sprintf("%d PALLETS", n)
}

func decimalPrecision(cfg *docconfig.SheetConfig) int {
	if cfg.DecimalPrecision != nil {
		return *cfg.DecimalPrecision
	}
	return 2
}
