// Package docwriter applies a resolved generation plan to an output
// workbook: header blocks, data rows, table blocks, footer rows with SUM
// formulas, validated merge spans, and the fonts carried through the
// pipeline. Cosmetic concerns beyond that (print areas, borders, paper
// layout) are out of its hands.
package docwriter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docgen"
)

// Writer renders generation plans onto an excelize workbook. Style and
// column-name lookups are cached per Writer, so one Writer serves one
// output document.
type Writer struct {
	file         *excelize.File
	styleCache   map[string]int
	colNameCache map[int]string
}

// New returns a Writer over a fresh workbook.
func New() *Writer {
	return newWriter(excelize.NewFile())
}

// Open returns a Writer over an existing template workbook, so generated
// content lands next to the template's static cells.
func Open(path string) (*Writer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open template workbook %s: %w", path, err)
	}
	return newWriter(f), nil
}

func newWriter(f *excelize.File) *Writer {
	return &Writer{
		file:         f,
		styleCache:   make(map[string]int),
		colNameCache: make(map[int]string),
	}
}

// File exposes the underlying workbook for callers that need to apply
// their own finishing touches.
func (w *Writer) File() *excelize.File {
	return w.file
}

// Close releases the workbook resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

// SaveAs writes the workbook to path.
func (w *Writer) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Bytes returns the workbook as an in-memory xlsx document.
func (w *Writer) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := w.file.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Apply renders every sheet plan onto the workbook, in plan order.
func (w *Writer) Apply(plan *docgen.Plan) error {
	for i, sp := range plan.Sheets {
		if err := w.ensureSheet(sp.Name, i == 0); err != nil {
			return err
		}
		if err := w.writeSheet(sp); err != nil {
			return err
		}
	}
	return nil
}

// ensureSheet makes the target sheet exist. On a fresh workbook the first
// plan takes over the default sheet instead of leaving an empty Sheet1
// behind.
func (w *Writer) ensureSheet(name string, first bool) error {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if idx >= 0 {
		return nil
	}
	if first && len(w.file.GetSheetList()) == 1 && w.file.GetSheetList()[0] == "Sheet1" {
		return w.file.SetSheetName("Sheet1", name)
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return nil
}

func (w *Writer) writeSheet(sp *docgen.SheetPlan) error {
	cfg := sp.Config
	if err := w.applyColumnWidths(sp.Name, cfg); err != nil {
		return err
	}

	switch sp.DataSource {
	case docconfig.DataSourceAggregation:
		origin := cfg.StartRow - cfg.HeaderRowCount()
		if err := w.writeHeader(sp.Name, cfg, origin); err != nil {
			return err
		}
		if err := w.writeRows(sp.Name, cfg, sp.Rows, sp.DataStart); err != nil {
			return err
		}
		if sp.Footer != nil {
			if err := w.writeFooter(sp.Name, cfg, sp.Footer, sumRange{sp.DataStart, sp.DataEnd}); err != nil {
				return err
			}
		}

	case docconfig.DataSourceProcessedTables:
		for i := range sp.Blocks {
			block := &sp.Blocks[i]
			if err := w.writeHeader(sp.Name, cfg, block.Origin); err != nil {
				return err
			}
			if err := w.writeRows(sp.Name, cfg, block.Rows, block.DataStart); err != nil {
				return err
			}
			if err := w.writeFooter(sp.Name, cfg, block.Footer, sumRange{block.DataStart, block.DataEnd}); err != nil {
				return err
			}
		}
		if sp.GrandTotal != nil {
			if err := w.writeGrandTotal(sp.Name, cfg, sp.GrandTotal, sp.Blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeHeader renders the header block with its top-left corner at origin.
// Entry coordinates are 0-based offsets from that corner; entries spanning
// several rows or columns are merged.
func (w *Writer) writeHeader(sheet string, cfg *docconfig.SheetConfig, origin int) error {
	styleID, err := w.headerStyle(cfg)
	if err != nil {
		return err
	}
	for _, h := range cfg.HeaderToWrite {
		row := origin + h.Row
		col := h.Col + 1
		cell := w.cellAddress(col, row)
		if err := w.file.SetCellValue(sheet, cell, h.Text); err != nil {
			return fmt.Errorf("sheet %s: write header cell %s: %w", sheet, cell, err)
		}
		endRow, endCol := row, col
		if h.RowSpan > 1 {
			endRow = row + h.RowSpan - 1
		}
		if h.ColSpan > 1 {
			endCol = col + h.ColSpan - 1
		}
		if endRow != row || endCol != col {
			if err := w.file.MergeCell(sheet, cell, w.cellAddress(endCol, endRow)); err != nil {
				return fmt.Errorf("sheet %s: merge header cell %s: %w", sheet, cell, err)
			}
		}
		if styleID != 0 {
			if err := w.file.SetCellStyle(sheet, cell, w.cellAddress(endCol, endRow), styleID); err != nil {
				return fmt.Errorf("sheet %s: style header cell %s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// writeRows streams data rows starting at worksheet row start, placing each
// value at its column's declared position.
func (w *Writer) writeRows(sheet string, cfg *docconfig.SheetConfig, rows []docgen.RowValues, start int) error {
	styleID, err := w.dataStyle(cfg)
	if err != nil {
		return err
	}
	textStyleID, err := w.textDataStyle(cfg)
	if err != nil {
		return err
	}
	forceText := make(map[string]bool)
	if cfg.Styling != nil {
		for _, id := range cfg.Styling.ForceTextFormatIDs {
			forceText[id] = true
		}
	}

	for i, row := range rows {
		rowNum := start + i
		for _, id := range cfg.ColumnIDs() {
			pos, ok := cfg.ColumnPosition(id)
			if !ok {
				continue
			}
			v, present := row[id]
			if !present {
				continue
			}
			cell := w.cellAddress(pos, rowNum)
			if err := w.file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("sheet %s: write cell %s: %w", sheet, cell, err)
			}
			style := styleID
			if forceText[id] {
				style = textStyleID
			}
			if style != 0 {
				if err := w.file.SetCellStyle(sheet, cell, cell, style); err != nil {
					return fmt.Errorf("sheet %s: style cell %s: %w", sheet, cell, err)
				}
			}
		}
	}
	return nil
}

type sumRange struct {
	start, end int
}

// writeFooter renders a footer layout: total text, pallet text, SUM
// formulas over the data range, declared number formats, and the validated
// merge spans.
func (w *Writer) writeFooter(sheet string, cfg *docconfig.SheetConfig, layout *docgen.FooterLayout, data sumRange) error {
	if err := w.writeFooterLabels(sheet, cfg, layout); err != nil {
		return err
	}
	for _, sc := range layout.SumColumns {
		cell := w.cellAddress(sc.Position, layout.Row)
		formula := fmt.Sprintf("SUM(%s:%s)",
			w.cellAddress(sc.Position, data.start), w.cellAddress(sc.Position, data.end))
		if data.end < data.start {
			// Empty data range: a zero beats a broken formula.
			if err := w.file.SetCellValue(sheet, cell, 0); err != nil {
				return fmt.Errorf("sheet %s: write footer cell %s: %w", sheet, cell, err)
			}
		} else if err := w.file.SetCellFormula(sheet, cell, formula); err != nil {
			return fmt.Errorf("sheet %s: write footer formula %s: %w", sheet, cell, err)
		}
	}
	return w.finishFooter(sheet, cfg, layout)
}

// writeGrandTotal renders the summary footer after the last block. Its sums
// reference the per-block footer cells so the workbook stays live when a
// block value is edited.
func (w *Writer) writeGrandTotal(sheet string, cfg *docconfig.SheetConfig, layout *docgen.FooterLayout, blocks []docgen.TableBlock) error {
	if err := w.writeFooterLabels(sheet, cfg, layout); err != nil {
		return err
	}
	for _, sc := range layout.SumColumns {
		cell := w.cellAddress(sc.Position, layout.Row)
		refs := make([]string, 0, len(blocks))
		for i := range blocks {
			refs = append(refs, w.cellAddress(sc.Position, blocks[i].Footer.Row))
		}
		formula := "SUM(" + joinRefs(refs) + ")"
		if err := w.file.SetCellFormula(sheet, cell, formula); err != nil {
			return fmt.Errorf("sheet %s: write grand total %s: %w", sheet, cell, err)
		}
	}
	return w.finishFooter(sheet, cfg, layout)
}

func (w *Writer) writeFooterLabels(sheet string, cfg *docconfig.SheetConfig, layout *docgen.FooterLayout) error {
	styleID, err := w.footerStyle(cfg)
	if err != nil {
		return err
	}
	if layout.TotalColumn > 0 {
		cell := w.cellAddress(layout.TotalColumn, layout.Row)
		if err := w.file.SetCellValue(sheet, cell, layout.TotalText); err != nil {
			return fmt.Errorf("sheet %s: write total text %s: %w", sheet, cell, err)
		}
		if styleID != 0 {
			w.file.SetCellStyle(sheet, cell, cell, styleID)
		}
	}
	if layout.PalletColumn > 0 {
		cell := w.cellAddress(layout.PalletColumn, layout.Row)
		if err := w.file.SetCellValue(sheet, cell, layout.PalletText); err != nil {
			return fmt.Errorf("sheet %s: write pallet text %s: %w", sheet, cell, err)
		}
		if styleID != 0 {
			w.file.SetCellStyle(sheet, cell, cell, styleID)
		}
	}
	return nil
}

// finishFooter applies number formats and merge spans once the footer
// values are in place. Merge spans arrive pre-validated; a failure here is
// a workbook-level error, not a layout one.
func (w *Writer) finishFooter(sheet string, cfg *docconfig.SheetConfig, layout *docgen.FooterLayout) error {
	for pos, format := range layout.NumberFormats {
		styleID, err := w.numberFormatStyle(cfg, format)
		if err != nil {
			return err
		}
		cell := w.cellAddress(pos, layout.Row)
		if err := w.file.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return fmt.Errorf("sheet %s: format footer cell %s: %w", sheet, cell, err)
		}
	}
	for _, span := range layout.Merges {
		start := w.cellAddress(span.Start, layout.Row)
		end := w.cellAddress(span.End, layout.Row)
		if err := w.file.MergeCell(sheet, start, end); err != nil {
			return fmt.Errorf("sheet %s: merge footer %s:%s: %w", sheet, start, end, err)
		}
	}
	return nil
}

func (w *Writer) applyColumnWidths(sheet string, cfg *docconfig.SheetConfig) error {
	if cfg.Styling == nil {
		return nil
	}
	for id, width := range cfg.Styling.ColumnIDWidths {
		pos, ok := cfg.ColumnPosition(id)
		if !ok {
			continue
		}
		name := w.colName(pos)
		if err := w.file.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("sheet %s: set width of column %s: %w", sheet, name, err)
		}
	}
	return nil
}

// ApplyReplacements runs the text replacement processor over every string
// cell already present in the workbook, so placeholder tokens in template
// cells pick up their resolved values.
func (w *Writer) ApplyReplacements(vals docgen.Values) error {
	if vals.Empty() {
		return nil
	}
	for _, sheet := range w.file.GetSheetList() {
		rows, err := w.file.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: read cells: %w", sheet, err)
		}
		for r, row := range rows {
			for c, text := range row {
				if text == "" {
					continue
				}
				replaced := docgen.Replace(text, vals)
				if replaced == text {
					continue
				}
				cell := w.cellAddress(c+1, r+1)
				if err := w.file.SetCellValue(sheet, cell, replaced); err != nil {
					return fmt.Errorf("sheet %s: replace cell %s: %w", sheet, cell, err)
				}
			}
		}
	}
	return nil
}

// colName returns the column letter for a 1-based position, with caching.
func (w *Writer) colName(col int) string {
	if name, ok := w.colNameCache[col]; ok {
		return name
	}
	name, _ := excelize.ColumnNumberToName(col)
	w.colNameCache[col] = name
	return name
}

func (w *Writer) cellAddress(col, row int) string {
	return fmt.Sprintf("%s%d", w.colName(col), row)
}

func joinRefs(refs []string) string {
	out := ""
	for i, r := range refs {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return out
}
