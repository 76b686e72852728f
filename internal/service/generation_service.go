package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/khaihoang/tradedoc_generation_sample/internal/logger"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docgen"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docwriter"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/quantity"
)

// GenerateRequest carries one generation invocation: parsed quantity data,
// the template to merge against, and the strictness of mapping resolution.
type GenerateRequest struct {
	Data         *quantity.AnalysisData
	TemplatePath string
	Strict       bool
}

// ExportRequest extends GenerateRequest with the document-writing inputs.
// WorkbookPath is optional; empty means a fresh workbook.
type ExportRequest struct {
	GenerateRequest
	WorkbookPath string
	Values       docgen.Values
}

// SheetSummary describes one quantity sheet for show-info surfaces.
type SheetSummary struct {
	Name       string `json:"name"`
	StartRow   int    `json:"start_row"`
	Headers    int    `json:"headers"`
	Rows       int    `json:"rows"`
	HeaderFont string `json:"header_font"`
	DataFont   string `json:"data_font"`
}

// AnalysisSummary is the show-info view of a quantity analysis document.
type AnalysisSummary struct {
	FilePath  string         `json:"file_path"`
	Timestamp string         `json:"timestamp"`
	Sheets    []SheetSummary `json:"sheets"`
}

type GenerationService interface {
	GenerateConfig(ctx context.Context, req GenerateRequest) (*docgen.Result, error)
	ExportDocument(ctx context.Context, req ExportRequest) ([]byte, *docgen.Result, error)
	Describe(ctx context.Context, data *quantity.AnalysisData) *AnalysisSummary
}

// GenerationOptions configure the service from the environment. TemplateDir
// anchors relative template paths; ForceStrict promotes every run to strict
// mapping resolution regardless of the request.
type GenerationOptions struct {
	MappingConfigPath string
	TemplateDir       string
	ForceStrict       bool
}

type generationService struct {
	opts GenerationOptions
}

// NewGenerationService returns a generation service whose runs snapshot the
// mapping config named by the options.
func NewGenerationService(opts GenerationOptions) GenerationService {
	return &generationService{opts: opts}
}

// snapshot loads an immutable mapping table for one invocation. Concurrent
// admin edits never reach a run that has already started.
func (s *generationService) snapshot() (*mapping.Table, error) {
	store, err := mapping.Open(s.opts.MappingConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load mapping config: %w", err)
	}
	return store.Snapshot(), nil
}

// templatePath anchors relative request paths under the configured template
// directory. Absolute paths pass through untouched.
func (s *generationService) templatePath(p string) string {
	if s.opts.TemplateDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.opts.TemplateDir, p)
}

func (s *generationService) strict(requested bool) bool {
	return requested || s.opts.ForceStrict
}

func (s *generationService) GenerateConfig(ctx context.Context, req GenerateRequest) (*docgen.Result, error) {
	table, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	tpl, err := docconfig.Load(s.templatePath(req.TemplatePath))
	if err != nil {
		return nil, err
	}

	engine := docgen.New(table, docgen.Options{Strict: s.strict(req.Strict)})
	result, err := engine.GenerateConfig(tpl, req.Data)
	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "generated config for %s: %d sheets, %d warnings in %s",
		req.Data.FilePath, len(result.Sheets), len(result.Warnings), result.Elapsed)
	return result, nil
}

func (s *generationService) ExportDocument(ctx context.Context, req ExportRequest) ([]byte, *docgen.Result, error) {
	table, err := s.snapshot()
	if err != nil {
		return nil, nil, err
	}
	tpl, err := docconfig.Load(s.templatePath(req.TemplatePath))
	if err != nil {
		return nil, nil, err
	}

	engine := docgen.New(table, docgen.Options{Strict: s.strict(req.Strict)})
	plan, err := engine.Plan(tpl, req.Data)
	if err != nil {
		return nil, nil, err
	}

	var w *docwriter.Writer
	if req.WorkbookPath != "" {
		w, err = docwriter.Open(req.WorkbookPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		w = docwriter.New()
	}
	defer w.Close()

	if err := w.Apply(plan); err != nil {
		return nil, nil, err
	}
	if err := w.ApplyReplacements(req.Values); err != nil {
		return nil, nil, err
	}
	raw, err := w.Bytes()
	if err != nil {
		return nil, nil, err
	}
	logger.InfoLog(ctx, "exported document for %s: %d sheets, %d bytes",
		req.Data.FilePath, len(plan.Sheets), len(raw))
	return raw, plan.Result, nil
}

func (s *generationService) Describe(ctx context.Context, data *quantity.AnalysisData) *AnalysisSummary {
	summary := &AnalysisSummary{FilePath: data.FilePath, Timestamp: data.Timestamp}
	for i := range data.Sheets {
		sheet := &data.Sheets[i]
		summary.Sheets = append(summary.Sheets, SheetSummary{
			Name:       sheet.SheetName,
			StartRow:   sheet.StartRow,
			Headers:    len(sheet.HeaderPositions),
			Rows:       len(sheet.Rows),
			HeaderFont: fontLabel(sheet.HeaderFont),
			DataFont:   fontLabel(sheet.DataFont),
		})
	}
	return summary
}

func fontLabel(f quantity.FontInfo) string {
	return fmt.Sprintf("%s %s", f.Name, strings.TrimSuffix(fmt.Sprintf("%g", f.Size), ".0"))
}

// ExportFileName derives the attachment name for an exported document from
// the analyzed source file.
func ExportFileName(data *quantity.AnalysisData) string {
	base := filepath.Base(data.FilePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" || name == "." {
		name = "document"
	}
	return name + "_generated.xlsx"
}
