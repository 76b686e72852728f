package docgen

import (
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/quantity"
)

// sheetMerge is the per-sheet product of the merge step: the canonical
// name, the raw-header to column-id translation built while overlaying
// header texts, and counts for the outcome summary.
type sheetMerge struct {
	canonical  string
	headerMap  map[string]string
	resolved   int
	unresolved int
}

// mergeSheet overlays one quantity sheet onto its canonical config: start
// row, fonts, and header display texts. Template columns are never deleted
// or reordered; columns the data does not mention keep their defaults, and
// the opaque business payload is untouched. In strict mode the first
// unresolved header aborts the run.
func mergeSheet(cfg *docconfig.SheetConfig, data *quantity.SheetData, resolver *mapping.Resolver, result *Result, canonical string, strict bool) (*sheetMerge, error) {
	cfg.StartRow = data.StartRow
	overlayFonts(cfg, data)

	merge := &sheetMerge{canonical: canonical, headerMap: make(map[string]string)}
	for _, raw := range data.HeaderTexts() {
		id, ok := resolver.ResolveHeader(raw)
		merge.headerMap[raw] = id // empty id marks a known miss
		if !ok {
			if strict {
				return nil, &mapping.UnresolvedError{Kind: mapping.KindHeader, Raw: raw}
			}
			merge.unresolved++
			continue
		}
		merge.resolved++
		if !setHeaderText(cfg, id, raw) {
			result.warnf("sheet %s: no template column for %s (header %q)", canonical, id, raw)
		}
	}
	return merge, nil
}

// overlayFonts carries the extracted font name and size onto the template
// styling. Only name and size move; bold and the other attributes stay
// template-owned. The footer style font follows the header font.
func overlayFonts(cfg *docconfig.SheetConfig, data *quantity.SheetData) {
	if cfg.Styling == nil {
		cfg.Styling = &docconfig.Styling{}
	}
	if cfg.Styling.DefaultFont == nil {
		cfg.Styling.DefaultFont = &docconfig.FontSpec{}
	}
	if cfg.Styling.HeaderFont == nil {
		cfg.Styling.HeaderFont = &docconfig.FontSpec{}
	}
	cfg.Styling.DefaultFont.Name = data.DataFont.Name
	cfg.Styling.DefaultFont.Size = data.DataFont.Size
	cfg.Styling.HeaderFont.Name = data.HeaderFont.Name
	cfg.Styling.HeaderFont.Size = data.HeaderFont.Size

	if cfg.FooterConfigurations == nil || cfg.FooterConfigurations.Style == nil {
		return
	}
	font, ok := cfg.FooterConfigurations.Style["font"].(map[string]interface{})
	if !ok {
		return
	}
	font["name"] = data.HeaderFont.Name
	font["size"] = data.HeaderFont.Size
}

func setHeaderText(cfg *docconfig.SheetConfig, id, text string) bool {
	for _, h := range cfg.HeaderToWrite {
		if h.ID == id {
			h.Text = text
			return true
		}
	}
	return false
}

// translateRows rewrites raw-header keyed rows into column-id keyed rows
// using the translation built during the merge. Cell headers the merge did
// not see resolve once through the resolver and the verdict is cached, so
// each distinct raw header lands on the report exactly once. Cells that
// stay unresolved are dropped from the row; the second return value names
// the first such header for strict-mode callers.
func translateRows(rows []quantity.Row, headerMap map[string]string, resolver *mapping.Resolver) ([]RowValues, string) {
	missed := ""
	out := make([]RowValues, 0, len(rows))
	for _, row := range rows {
		values := make(RowValues, len(row))
		for _, cell := range row {
			id, seen := headerMap[cell.Header]
			if !seen {
				id, _ = resolver.ResolveHeader(cell.Header)
				headerMap[cell.Header] = id
				if id == "" && missed == "" {
					missed = cell.Header
				}
			}
			if id == "" {
				continue
			}
			values[id] = cell.Value
		}
		out = append(out, values)
	}
	return out, missed
}
