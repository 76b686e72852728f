package docgen

import (
	"fmt"
	"strings"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
)

// TableBlock is one contiguous run of rows sharing a block key, laid out
// as its own small table: header block, data rows, footer row.
type TableBlock struct {
	Key       string
	Rows      []RowValues
	Origin    int // worksheet row where the block's header begins
	DataStart int
	DataEnd   int
	Footer    *FooterLayout
}

// EndRow returns the last worksheet row the block occupies.
func (b *TableBlock) EndRow() int {
	return b.Footer.Row
}

type run struct {
	key  string
	rows []RowValues
}

// splitRuns partitions rows into maximal contiguous runs of equal
// block-key values. Block boundaries follow source order: a value change
// starts a new run even when the value occurred before. An empty key
// column id puts all rows in a single run.
func splitRuns(rows []RowValues, blockKey string) []run {
	if len(rows) == 0 {
		return nil
	}
	if blockKey == "" {
		return []run{{rows: rows}}
	}
	current := run{key: blockKeyValue(rows[0], blockKey), rows: []RowValues{rows[0]}}
	var runs []run
	for _, row := range rows[1:] {
		key := blockKeyValue(row, blockKey)
		if key != current.key {
			runs = append(runs, current)
			current = run{key: key, rows: []RowValues{row}}
			continue
		}
		current.rows = append(current.rows, row)
	}
	return append(runs, current)
}

func blockKeyValue(row RowValues, id string) string {
	return strings.TrimSpace(formatValue(row[id]))
}

// SplitBlocks partitions rows into table blocks and lays them out on the
// sheet. The first block's header sits where the sheet's header would;
// each following block starts at the previous block's ending row plus the
// configured inter-block spacing, so row ranges are strictly increasing.
// Zero input rows produce zero blocks.
func SplitBlocks(rows []RowValues, sheetName string, cfg *docconfig.SheetConfig) ([]TableBlock, error) {
	runs := splitRuns(rows, cfg.BlockKeyColumnID)
	if len(runs) == 0 {
		return nil, nil
	}
	origin, err := headerOrigin(sheetName, cfg)
	if err != nil {
		return nil, err
	}
	headerRows := cfg.HeaderRowCount()
	spacing := interBlockSpacing(cfg)

	blocks := make([]TableBlock, 0, len(runs))
	for _, r := range runs {
		dataStart := origin + headerRows
		dataEnd := dataStart + len(r.rows) - 1
		footer, err := ComputeFooter(sheetName, cfg, r.rows, dataEnd+1, 1)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, TableBlock{
			Key:       r.key,
			Rows:      r.rows,
			Origin:    origin,
			DataStart: dataStart,
			DataEnd:   dataEnd,
			Footer:    footer,
		})
		origin = footer.Row + spacing
	}
	return blocks, nil
}

// headerOrigin returns the worksheet row where the sheet's header block
// begins. StartRow is the first data row, so the header sits immediately
// above it.
func headerOrigin(sheetName string, cfg *docconfig.SheetConfig) (int, error) {
	origin := cfg.StartRow - cfg.HeaderRowCount()
	if origin < 1 {
		return 0, fmt.Errorf("sheet %s: start_row %d leaves no room for %d header rows",
			sheetName, cfg.StartRow, cfg.HeaderRowCount())
	}
	return origin, nil
}

// interBlockSpacing returns the configured spacing with a one-blank-row
// default when the template declares none. Anything below 1 would overlap
// blocks, so programmatic configs are clamped to adjacent.
func interBlockSpacing(cfg *docconfig.SheetConfig) int {
	if cfg.RowSpacing == nil {
		return 2
	}
	if *cfg.RowSpacing < 1 {
		return 1
	}
	return *cfg.RowSpacing
}
