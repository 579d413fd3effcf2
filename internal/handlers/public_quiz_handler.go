package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/crm-service/internal/services"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// PublicQuizHandler serves the anonymous quiz form. No authentication.
type PublicQuizHandler struct {
	BaseHandler
	quizService       services.QuizService
	submissionService services.SubmissionService
}

func NewPublicQuizHandler(
	quizService services.QuizService,
	submissionService services.SubmissionService,
	logger utils.Logger,
) *PublicQuizHandler {
	return &PublicQuizHandler{
		BaseHandler:       NewBaseHandler(logger),
		quizService:       quizService,
		submissionService: submissionService,
	}
}

// GetQuiz returns a published quiz by slug
// @Summary Get public quiz
// @Tags public
// @Produce json
// @Param slug path string true "Quiz slug"
// @Success 200 {object} services.PublicQuiz
// @Failure 404 {object} ErrorResponse
// @Router /public/quizzes/{slug} [get]
func (h *PublicQuizHandler) GetQuiz(c *gin.Context) {
	slug := ParseStringIDParam(c, "slug")
	if slug == "" {
		return
	}

	quiz, err := h.quizService.GetPublic(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// Submit records a quiz submission and creates a lead
// @Summary Submit quiz
// @Description Scores the responses, extracts contact details and stores a lead
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Quiz slug"
// @Param submission body services.SubmissionRequest true "Responses"
// @Success 201 {object} services.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /public/quizzes/{slug}/submissions [post]
func (h *PublicQuizHandler) Submit(c *gin.Context) {
	slug := ParseStringIDParam(c, "slug")
	if slug == "" {
		return
	}

	var req services.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	// Client supplied values are never trusted for these
	req.Metadata.IPAddress = c.ClientIP()
	req.Metadata.UserAgent = c.Request.UserAgent()

	h.LogRequest(c, "Submitting quiz", "slug", slug, "responses", len(req.Responses))

	result, err := h.submissionService.Submit(c.Request.Context(), slug, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
