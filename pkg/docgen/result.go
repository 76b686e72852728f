// Package docgen is the document generation engine: it merges extracted
// quantity data into a template configuration, aggregates or partitions the
// row data per sheet, and computes validated footer layouts. The package is
// a synchronous pipeline with no internal locking; callers that run several
// generations concurrently give each its own Engine and mapping snapshot.
package docgen

import (
	"fmt"
	"time"

	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
)

// RowValues is one data row keyed by canonical column id.
type RowValues map[string]interface{}

// SheetOutcome summarizes how one quantity sheet fared during merging.
type SheetOutcome struct {
	RawName           string `json:"raw_name"`
	Canonical         string `json:"canonical,omitempty"`
	Resolved          bool   `json:"resolved"`
	HeadersResolved   int    `json:"headers_resolved"`
	HeadersUnresolved int    `json:"headers_unresolved"`
	Rows              int    `json:"rows"`
}

// Result is the outcome of a generation run: the resolved configuration,
// the full resolution report, per-sheet outcomes, and accumulated warnings.
// Recoverable issues live here; fatal ones abort the run with an error and
// no Result.
type Result struct {
	Config   *docconfig.Template `json:"config"`
	Report   *mapping.Report     `json:"-"`
	Sheets   []SheetOutcome      `json:"sheets"`
	Warnings []string            `json:"warnings,omitempty"`
	Elapsed  time.Duration       `json:"elapsed"`
}

// Unresolved reports whether any sheet or header stayed unresolved.
func (r *Result) Unresolved() bool {
	return r.Report != nil && r.Report.HasUnresolved()
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SheetPlan is the fully resolved write plan for one canonical sheet. For
// aggregation sheets Rows and Footer are set; for multi-table sheets Blocks
// carry their own rows and footers, plus an optional grand total.
type SheetPlan struct {
	Name        string
	Config      *docconfig.SheetConfig
	DataSource  string
	Rows        []RowValues
	DataStart   int
	DataEnd     int
	Footer      *FooterLayout
	Blocks      []TableBlock
	GrandTotal  *FooterLayout
	SkippedRows int
}

// Plan is the artifact the document writer consumes: the run result plus
// one SheetPlan per processed sheet, in sheets_to_process order.
type Plan struct {
	Result *Result
	Sheets []*SheetPlan
}
