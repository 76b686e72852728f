package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/khaihoang/tradedoc_generation_sample/internal/logger"
	"github.com/khaihoang/tradedoc_generation_sample/internal/service"
	"github.com/khaihoang/tradedoc_generation_sample/internal/service/serviceutils"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docconfig"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/docgen"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/mapping"
	"github.com/khaihoang/tradedoc_generation_sample/pkg/quantity"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GenerationHandler struct {
	svc service.GenerationService
}

func NewGenerationHandler(svc service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

type generateRequest struct {
	QuantityData *quantity.AnalysisData `json:"quantity_data"`
	TemplatePath string                 `json:"template_path"`
	Strict       bool                   `json:"strict"`
}

type exportRequest struct {
	generateRequest
	WorkbookPath string            `json:"workbook_path"`
	FileName     string            `json:"file_name"`
	Replacements *replacementBlock `json:"replacements"`
}

type replacementBlock struct {
	InvoiceNo       string            `json:"invoice_no"`
	InvoiceDate     string            `json:"invoice_date"`
	Reference       string            `json:"reference"`
	CustomerName    string            `json:"customer_name"`
	CustomerAddress string            `json:"customer_address"`
	Description     string            `json:"description"`
	Custom          map[string]string `json:"custom"`
}

func (r *replacementBlock) values() docgen.Values {
	if r == nil {
		return docgen.Values{}
	}
	return docgen.Values{
		InvoiceNo:       r.InvoiceNo,
		InvoiceDate:     r.InvoiceDate,
		Reference:       r.Reference,
		CustomerName:    r.CustomerName,
		CustomerAddress: r.CustomerAddress,
		Description:     r.Description,
		Custom:          r.Custom,
	}
}

type generateResponse struct {
	Result      *docgen.Result `json:"result"`
	ReportItems []string       `json:"report_items,omitempty"`
}

func (req *generateRequest) validate() error {
	if req.QuantityData == nil {
		return fmt.Errorf("quantity_data is required")
	}
	if err := req.QuantityData.Validate(); err != nil {
		return err
	}
	if req.TemplatePath == "" {
		return fmt.Errorf("template_path is required")
	}
	return nil
}

// GenerateConfigHandler runs the generation pipeline and returns the
// resolved configuration plus the resolution report.
func (h *GenerationHandler) GenerateConfigHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid generation request", err)
	}

	result, err := h.svc.GenerateConfig(ctx, service.GenerateRequest{
		Data:         req.QuantityData,
		TemplatePath: req.TemplatePath,
		Strict:       req.Strict,
	})
	if err != nil {
		return serviceutils.ResponseError(c, generationStatus(err), "Config generation failed", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Config generated", generateResponse{
		Result:      result,
		ReportItems: result.Report.Items(),
	})
}

// ExportDocumentHandler runs the pipeline plus the document writer and
// streams the workbook back as an attachment.
func (h *GenerationHandler) ExportDocumentHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid export request", err)
	}

	raw, result, err := h.svc.ExportDocument(ctx, service.ExportRequest{
		GenerateRequest: service.GenerateRequest{
			Data:         req.QuantityData,
			TemplatePath: req.TemplatePath,
			Strict:       req.Strict,
		},
		WorkbookPath: req.WorkbookPath,
		Values:       req.Replacements.values(),
	})
	if err != nil {
		return serviceutils.ResponseError(c, generationStatus(err), "Document export failed", err)
	}

	name := req.FileName
	if name == "" {
		name = service.ExportFileName(req.QuantityData)
	}
	logger.DebugLog(ctx, "export %s: %d warnings", name, len(result.Warnings))

	c.Response().Header().Set(echo.HeaderContentType, excelContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, name))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(raw)))
	_, err = c.Response().Write(raw)
	return err
}

// DescribeHandler returns the show-info summary of a quantity analysis
// document without running the pipeline.
func (h *GenerationHandler) DescribeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var data quantity.AnalysisData
	if err := c.Bind(&data); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := data.Validate(); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid quantity data", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Quantity data described", h.svc.Describe(ctx, &data))
}

// generationStatus distinguishes caller mistakes (bad references, broken
// layouts, unresolved mappings in strict mode) from server-side failures.
func generationStatus(err error) int {
	var colErr *docconfig.InvalidColumnReferenceError
	var mergeErr *docgen.MergeRuleError
	var unresolvedErr *mapping.UnresolvedError
	var tplErr *docconfig.TemplateError
	var dataErr *quantity.MalformedDataError
	if errors.As(err, &colErr) || errors.As(err, &mergeErr) ||
		errors.As(err, &unresolvedErr) || errors.As(err, &tplErr) || errors.As(err, &dataErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
