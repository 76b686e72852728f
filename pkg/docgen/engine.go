package docgen

import (
	"time"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/quantity"
)

// Options configure a generation run.
type Options struct {
	// Strict promotes unresolved sheet and header mappings to fatal errors.
	Strict bool
}

// Engine runs the generation pipeline over one mapping table snapshot.
// Each call builds its own resolver and report, so a single Engine may
// serve sequential runs; concurrent runs should each get their own.
type Engine struct {
	table *mapping.Table
	opts  Options
}

// New returns an engine over the given mapping table snapshot.
func New(table *mapping.Table, opts Options) *Engine {
	return &Engine{table: table, opts: opts}
}

type mergedSheet struct {
	data  *quantity.SheetData
	merge *sheetMerge
}

type runState struct {
	result   *Result
	resolver *mapping.Resolver
	sheets   map[string]*mergedSheet
}

// GenerateConfig merges the quantity data into the template, runs the full
// layout pipeline over the merged config, and returns the resolved
// configuration together with the run's resolution report. The write plans
// are discarded, but their validation is not: a config the document writer
// would reject (invalid column reference, bad merge rule, header without
// room) aborts here with no output. The input template is never mutated.
// Unresolved sheets are recorded and skipped; the rest of the run continues.
func (e *Engine) GenerateConfig(tpl *docconfig.Template, data *quantity.AnalysisData) (*Result, error) {
	plan, err := e.Plan(tpl, data)
	if err != nil {
		return nil, err
	}
	return plan.Result, nil
}

func (e *Engine) merge(tpl *docconfig.Template, data *quantity.AnalysisData) (*runState, error) {
	started := time.Now()
	resolver := mapping.NewResolver(e.table)
	merged := tpl.Clone()
	rs := &runState{
		result:   &Result{Config: merged, Report: resolver.Report()},
		resolver: resolver,
		sheets:   make(map[string]*mergedSheet),
	}

	for i := range data.Sheets {
		sheet := &data.Sheets[i]
		outcome := SheetOutcome{RawName: sheet.SheetName, Rows: len(sheet.Rows)}

		canonical, ok := resolver.ResolveSheet(sheet.SheetName)
		if !ok {
			if e.opts.Strict {
				return nil, &mapping.UnresolvedError{Kind: mapping.KindSheet, Raw: sheet.SheetName}
			}
			rs.result.Sheets = append(rs.result.Sheets, outcome)
			continue
		}
		outcome.Canonical = canonical
		outcome.Resolved = true

		cfg := merged.Sheet(canonical)
		if cfg == nil {
			rs.result.warnf("no template entry for sheet %s (raw %q)", canonical, sheet.SheetName)
			rs.result.Sheets = append(rs.result.Sheets, outcome)
			continue
		}
		if _, dup := rs.sheets[canonical]; dup {
			rs.result.warnf("sheet %s already merged; ignoring duplicate source %q", canonical, sheet.SheetName)
			rs.result.Sheets = append(rs.result.Sheets, outcome)
			continue
		}

		m, err := mergeSheet(cfg, sheet, resolver, rs.result, canonical, e.opts.Strict)
		if err != nil {
			return nil, err
		}
		outcome.HeadersResolved = m.resolved
		outcome.HeadersUnresolved = m.unresolved
		rs.result.Sheets = append(rs.result.Sheets, outcome)
		rs.sheets[canonical] = &mergedSheet{data: sheet, merge: m}
	}

	rs.result.Elapsed = time.Since(started)
	return rs, nil
}

// Plan runs the full pipeline and returns the write plans the document
// writer consumes, one per processed sheet in sheets_to_process order.
// Sheets without quantity data, or with an unknown data source, are warned
// about and skipped; fatal layout errors abort with no plan.
func (e *Engine) Plan(tpl *docconfig.Template, data *quantity.AnalysisData) (*Plan, error) {
	started := time.Now()
	rs, err := e.merge(tpl, data)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Result: rs.result}
	for _, name := range rs.result.Config.SheetsToProcess {
		ms := rs.sheets[name]
		if ms == nil {
			rs.result.warnf("no quantity data for sheet %s", name)
			continue
		}
		sp, err := e.planSheet(name, rs, ms)
		if err != nil {
			return nil, err
		}
		if sp != nil {
			plan.Sheets = append(plan.Sheets, sp)
		}
	}

	rs.result.Elapsed = time.Since(started)
	return plan, nil
}

func (e *Engine) planSheet(name string, rs *runState, ms *mergedSheet) (*SheetPlan, error) {
	cfg := rs.result.Config.Sheet(name)
	source := rs.result.Config.DataSource(name)

	rows, missed := translateRows(ms.data.Rows, ms.merge.headerMap, rs.resolver)
	if e.opts.Strict && missed != "" {
		return nil, &mapping.UnresolvedError{Kind: mapping.KindHeader, Raw: missed}
	}

	sp := &SheetPlan{Name: name, Config: cfg, DataSource: source}
	switch source {
	case docconfig.DataSourceAggregation:
		if _, err := headerOrigin(name, cfg); err != nil {
			return nil, err
		}
		agg := Aggregate(rows, cfg.AggregationKeys, numericColumns(cfg), decimalPrecision(cfg))
		if agg.Skipped > 0 {
			rs.result.warnf("sheet %s: skipped %d rows missing aggregation keys", name, agg.Skipped)
		}
		sp.Rows = agg.Rows
		sp.SkippedRows = agg.Skipped
		sp.DataStart = cfg.StartRow
		sp.DataEnd = cfg.StartRow + len(agg.Rows) - 1
		footer, err := ComputeFooter(name, cfg, agg.Rows, sp.DataEnd+1, 0)
		if err != nil {
			return nil, err
		}
		sp.Footer = footer

	case docconfig.DataSourceProcessedTables:
		blocks, err := SplitBlocks(rows, name, cfg)
		if err != nil {
			return nil, err
		}
		sp.Blocks = blocks
		if len(blocks) > 1 {
			grand, err := grandTotal(name, cfg, rows, blocks)
			if err != nil {
				return nil, err
			}
			sp.GrandTotal = grand
		}

	default:
		rs.result.warnf("sheet %s: unknown data source %q, skipped", name, source)
		return nil, nil
	}
	return sp, nil
}

// grandTotal computes the summary footer written after the last block when
// a sheet splits into more than one table. Its pallet count is the sum of
// the per-block counts.
func grandTotal(name string, cfg *docconfig.SheetConfig, rows []RowValues, blocks []TableBlock) (*FooterLayout, error) {
	last := blocks[len(blocks)-1]
	row := last.Footer.Row + interBlockSpacing(cfg)
	pallets := 0
	for _, b := range blocks {
		pallets += b.Footer.PalletCount
	}
	layout, err := ComputeFooter(name, cfg, rows, row, pallets)
	if err != nil {
		return nil, err
	}
	layout.PalletCount = pallets
	layout.PalletText = palletText(pallets)
	return layout, nil
}

// numericColumns returns the template-declared numeric columns, falling
// back to the footer sum columns when none are declared.
func numericColumns(cfg *docconfig.SheetConfig) []string {
	if len(cfg.NumericColumnIDs) > 0 {
		return cfg.NumericColumnIDs
	}
	if cfg.FooterConfigurations != nil {
		return cfg.FooterConfigurations.SumColumnIDs
	}
	return nil
}
