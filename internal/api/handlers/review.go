package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aloysiustan/teachrate-backend/internal/scoring"
	"github.com/aloysiustan/teachrate-backend/internal/services"
	"github.com/aloysiustan/teachrate-backend/internal/storage"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// SubmitReview runs a new review through the scoring pipeline. A pending
// result carries the review id and modify type for the follow-up call.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID := c.GetUint("user_id")

	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	result, err := h.reviewService.SubmitReview(teacherID, userID, req)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	utils.SendSuccess(c, submitMessage(result), result)
}

// ModifyReview is the reconciliation endpoint: resubmit (modify_type 1) or
// cancel (modify_type 2) a pending review.
func (h *ReviewHandler) ModifyReview(c *gin.Context) {
	userID := c.GetUint("user_id")

	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	reviewID, err := parseIDParam(c, "review_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid review ID")
		return
	}

	var req services.ModifyReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	result, err := h.reviewService.ModifyReview(teacherID, userID, reviewID, req)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	utils.SendSuccess(c, submitMessage(result), result)
}

func submitMessage(result *services.SubmitResult) string {
	switch result.Outcome {
	case services.OutcomeAccepted:
		return "Review accepted"
	case services.OutcomeCancelled:
		return "Review cancelled and marked unreliable"
	default:
		return result.Warning
	}
}

func sendPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scoring.ErrScoringUnavailable):
		utils.SendError(c, http.StatusBadGateway, "Scoring service unavailable", err)
	case errors.Is(err, storage.ErrPersistenceUnavailable):
		utils.SendInternalError(c, "Failed to store review", err)
	case errors.Is(err, storage.ErrReviewNotFound):
		utils.SendNotFound(c, "Review not found")
	default:
		utils.SendError(c, http.StatusBadRequest, "Failed to process review", err)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
