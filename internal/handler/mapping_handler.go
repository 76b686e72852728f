package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/khaihoang/tradedoc_generation_sample/internal/service"
	"github.com/khaihoang/tradedoc_generation_sample/internal/service/serviceutils"
)

type MappingHandler struct {
	svc service.MappingService
}

func NewMappingHandler(svc service.MappingService) *MappingHandler {
	return &MappingHandler{svc: svc}
}

type addMappingRequest struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
}

func (h *MappingHandler) ListHandler(c echo.Context) error {
	listing, err := h.svc.List(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load mappings", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Mappings listed", listing)
}

func (h *MappingHandler) AddSheetHandler(c echo.Context) error {
	var req addMappingRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.svc.AddSheetMapping(c.Request().Context(), req.Raw, req.Canonical); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to add sheet mapping", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Sheet mapping added", req)
}

func (h *MappingHandler) AddHeaderHandler(c echo.Context) error {
	var req addMappingRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.svc.AddHeaderMapping(c.Request().Context(), req.Raw, req.Canonical); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to add header mapping", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Header mapping added", req)
}

// ReportHandler returns the plain-text mapping report listing the current
// mappings. Unresolved items only appear on generation runs; this surface
// serves the administrative snapshot.
func (h *MappingHandler) ReportHandler(c echo.Context) error {
	text, err := h.svc.Report(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to render mapping report", err)
	}
	return c.String(http.StatusOK, text)
}
