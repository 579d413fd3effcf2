package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	BaseHandler
	leadService   services.LeadService
	exportService services.ExportService
}

func NewLeadHandler(leadService services.LeadService, exportService services.ExportService, logger utils.Logger) *LeadHandler {
	return &LeadHandler{
		BaseHandler:   NewBaseHandler(logger),
		leadService:   leadService,
		exportService: exportService,
	}
}

// GetLead retrieves a lead with its deals
// @Summary Get lead
// @Tags leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} ErrorResponse
// @Router /leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	lead, err := h.leadService.Get(c.Request.Context(), p, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatus moves a lead through the pipeline
// @Summary Update lead status
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param status body services.UpdateLeadStatusRequest true "New status"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /leads/{id}/status [put]
func (h *LeadHandler) UpdateLeadStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.leadService.UpdateStatus(c.Request.Context(), p, id, &req, requestInfo(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lead status updated", gin.H{"status": req.Status})
}

// CreateDeal opens a deal for a lead
// @Summary Create deal
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param deal body services.CreateDealRequest true "Deal"
// @Success 201 {object} models.Deal
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /leads/{id}/deals [post]
func (h *LeadHandler) CreateDeal(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	leadID := ParseStringIDParam(c, "id")
	if leadID == "" {
		return
	}

	var req services.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	deal, err := h.leadService.CreateDeal(c.Request.Context(), p, leadID, &req, requestInfo(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// UpdateDealStage moves a deal to another stage
// @Summary Update deal stage
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param stage body services.UpdateDealStageRequest true "New stage"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /deals/{id}/stage [put]
func (h *LeadHandler) UpdateDealStage(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateDealStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.leadService.UpdateDealStage(c.Request.Context(), p, id, &req, requestInfo(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Deal stage updated", gin.H{"stage": req.Stage})
}

// ExportLeads downloads the leads behind a filter token
// @Summary Export leads
// @Tags leads
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param filters query string false "Filter token"
// @Param range query string false "Date range"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /leads/export [get]
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Exporting leads", "format", req.Format)

	file, err := h.exportService.ExportLeads(c.Request.Context(), p, &req, requestInfo(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("X-Row-Count", strconv.Itoa(file.RowCount))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
