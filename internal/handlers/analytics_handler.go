package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/crm-service/internal/analytics"
	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// EncodeFiltersRequest carries the rows of the query builder.
type EncodeFiltersRequest struct {
	Rows []analytics.FilterRow `json:"rows"`
}

type EncodeFiltersResponse struct {
	Token string `json:"token"`
}

// FieldDescriptor tells the query builder which operators a field takes.
type FieldDescriptor struct {
	Field     analytics.Field      `json:"field"`
	Class     analytics.TypeClass  `json:"class"`
	Operators []analytics.Operator `json:"operators"`
}

// GetOverview returns lead statistics for a filter token
// @Summary Analytics overview
// @Description Malformed tokens and unusable filter rows are ignored, never rejected
// @Tags analytics
// @Produce json
// @Param filters query string false "Filter token"
// @Param range query string false "all, 7d, 30d, 90d, month, year"
// @Success 200 {object} services.AnalyticsOverview
// @Failure 403 {object} ErrorResponse
// @Router /analytics [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	overview, err := h.analyticsService.Overview(c.Request.Context(), p, c.Query("filters"), c.Query("range"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ListLeads lists the leads matching a filter token
// @Summary List leads
// @Tags analytics
// @Produce json
// @Param filters query string false "Filter token"
// @Param range query string false "all, 7d, 30d, 90d, month, year"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.LeadPage
// @Router /leads [get]
func (h *AnalyticsHandler) ListLeads(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	page, err := h.analyticsService.Leads(c.Request.Context(), p, c.Query("filters"), c.Query("range"), parseListOptions(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// EncodeFilters turns builder rows into a URL token
// @Summary Encode filters
// @Tags analytics
// @Accept json
// @Produce json
// @Param rows body EncodeFiltersRequest true "Filter rows"
// @Success 200 {object} EncodeFiltersResponse
// @Failure 400 {object} ErrorResponse
// @Router /analytics/filters/encode [post]
func (h *AnalyticsHandler) EncodeFilters(c *gin.Context) {
	var req EncodeFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	token, err := h.analyticsService.EncodeFilters(c.Request.Context(), req.Rows)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, EncodeFiltersResponse{Token: token})
}

// ListFields describes every filterable field
// @Summary Filterable fields
// @Tags analytics
// @Produce json
// @Success 200 {array} FieldDescriptor
// @Router /analytics/fields [get]
func (h *AnalyticsHandler) ListFields(c *gin.Context) {
	fields := analytics.Fields()
	out := make([]FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		class, _ := analytics.ClassOf(f)
		out = append(out, FieldDescriptor{
			Field:     f,
			Class:     class,
			Operators: analytics.LegalOperators(class),
		})
	}
	c.JSON(http.StatusOK, out)
}
