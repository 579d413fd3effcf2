package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SAP-F-2025/crm-service/internal/auth"
	"github.com/SAP-F-2025/crm-service/internal/repositories"
	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HandlerManager struct {
	publicQuizHandler *PublicQuizHandler
	quizHandler       *QuizHandler
	analyticsHandler  *AnalyticsHandler
	leadHandler       *LeadHandler
	auditHandler      *AuditHandler

	repo     repositories.Repository
	verifier auth.Verifier
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	repo repositories.Repository,
	verifier auth.Verifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		publicQuizHandler: NewPublicQuizHandler(serviceManager.Quiz(), serviceManager.Submission(), logger),
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), logger),
		leadHandler:       NewLeadHandler(serviceManager.Lead(), serviceManager.Export(), logger),
		auditHandler:      NewAuditHandler(serviceManager.Audit(), logger),
		repo:              repo,
		verifier:          verifier,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public quiz form
	public := v1.Group("/public")
	{
		public.GET("/quizzes/:slug", hm.publicQuizHandler.GetQuiz)
		public.POST("/quizzes/:slug/submissions", hm.publicQuizHandler.Submit)
	}

	secured := v1.Group("")
	secured.Use(auth.RequireAuth(hm.verifier, hm.companyExists))
	{
		quizzes := secured.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/publish", hm.quizHandler.PublishQuiz)
		}

		analyticsGroup := secured.Group("/analytics")
		{
			analyticsGroup.GET("", hm.analyticsHandler.GetOverview)
			analyticsGroup.GET("/fields", hm.analyticsHandler.ListFields)
			analyticsGroup.POST("/filters/encode", hm.analyticsHandler.EncodeFilters)
		}

		leads := secured.Group("/leads")
		{
			leads.GET("", hm.analyticsHandler.ListLeads)
			leads.GET("/export", auth.RequirePermission(auth.PermLeadsExport), hm.leadHandler.ExportLeads)
			leads.GET("/:id", hm.leadHandler.GetLead)
			leads.PUT("/:id/status", hm.leadHandler.UpdateLeadStatus)
			leads.POST("/:id/deals", hm.leadHandler.CreateDeal)
		}

		secured.PUT("/deals/:id/stage", hm.leadHandler.UpdateDealStage)

		secured.GET("/audit", auth.RequirePermission(auth.PermAuditRead), hm.auditHandler.ListAuditLogs)
	}
}

// HealthCheck reports whether the database answers
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := hm.repo.Ping(ctx); err != nil {
		utils.GetLoggerFromContext(c).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "crm-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "crm-service",
	})
}

func (hm *HandlerManager) companyExists(ctx context.Context, companyID string) (bool, error) {
	_, err := hm.repo.Company().GetByID(ctx, nil, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
