package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
	}
}

// ListAuditLogs lists the company's audit trail, newest first
// @Summary List audit logs
// @Tags audit
// @Produce json
// @Param action query string false "Action filter"
// @Param entity_type query string false "Entity type filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.AuditPage
// @Failure 403 {object} ErrorResponse
// @Router /audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filters repositories.AuditFilters
	if action := strings.TrimSpace(c.Query("action")); action != "" {
		filters.Action = &action
	}
	if entityType := strings.TrimSpace(c.Query("entity_type")); entityType != "" {
		filters.EntityType = &entityType
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	page, err := h.auditService.List(c.Request.Context(), p, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
