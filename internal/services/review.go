package services

import (
	"errors"
	"fmt"

	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/scoring"
	"github.com/aloysiustan/teachrate-backend/internal/storage"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"github.com/aloysiustan/teachrate-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Terminal and pending outcomes of a review submission.
const (
	OutcomeAccepted                = "accepted"
	OutcomePendingAIConfirm        = "pending_ai_confirm"
	OutcomePendingAggregateConfirm = "pending_aggregate_confirm"
	OutcomeCancelled               = "cancelled"
)

// Reconciliation entry points. Type 1 resubmits a diverging review, type 2
// cancels it and marks the stored row unreliable.
const (
	ModifyTypeResubmit = 1
	ModifyTypeCancel   = 2
)

// ErrInvalidInput rejects a submission before any scoring happens.
var ErrInvalidInput = errors.New("invalid review input")

// ReviewService runs a review submission through aspect detection, the
// sentiment and bias models, and the accept/reconcile decision. Scorers are
// injected so the engine never owns model lifecycle.
type ReviewService struct {
	ledger    storage.Ledger
	sentiment scoring.Scorer
	bias      scoring.Scorer
}

func NewReviewService(ledger storage.Ledger, sentiment, bias scoring.Scorer) *ReviewService {
	return &ReviewService{
		ledger:    ledger,
		sentiment: sentiment,
		bias:      bias,
	}
}

type SubmitReviewRequest struct {
	Comment        string `json:"comment" binding:"required"`
	FallbackRating int    `json:"fallback_rating" binding:"required"`
	ReliableFlag   string `json:"reliable_flag"`
}

type ModifyReviewRequest struct {
	ModifyType     int    `json:"modify_type" binding:"required"`
	Comment        string `json:"comment"`
	FallbackRating int    `json:"fallback_rating"`
}

// SubmitResult carries the outcome of one submission round. ModifyType is
// set on pending outcomes so the caller knows which reconciliation entry
// point to hit next.
type SubmitResult struct {
	Outcome         string         `json:"outcome"`
	Review          *models.Review `json:"review,omitempty"`
	AggregatedScore float64        `json:"aggregated_score"`
	ModifyType      int            `json:"modify_type,omitempty"`
	Warning         string         `json:"warning,omitempty"`
}

// SubmitReview drives a single submission to a terminal or pending state.
// It is synchronous and request-scoped; a scoring failure aborts before any
// write, and aggregate races between interleaved submissions are accepted.
func (s *ReviewService) SubmitReview(teacherID, userID uint, req SubmitReviewRequest) (*SubmitResult, error) {
	comment, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.ledger.TeacherExists(teacherID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("teacher not found")
	}

	aspects := scoring.DetectAspects(comment)

	rating := req.FallbackRating
	flag := models.FlagManual
	sentimentCount := 0
	if len(aspects) > 0 {
		labels, err := s.sentiment.Score(comment, aspects)
		if err != nil {
			return nil, err
		}
		if len(labels) > 0 {
			rating = scoring.DeriveRating(labelValues(labels))
			flag = models.FlagAI
			sentimentCount = len(labels)
		}
	}

	biasRating, biasFlag, err := s.scoreBias(comment, aspects, sentimentCount)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		TeacherID:    teacherID,
		UserID:       userID,
		Rating:       rating,
		Comment:      comment,
		Flag:         flag,
		BiasRating:   biasRating,
		BiasFlag:     biasFlag,
		ReliableFlag: models.ReliableVerified,
	}

	if err := s.ledger.CreateReview(review); err != nil {
		return nil, err
	}

	aggregated, err := s.ledger.TeacherAggregate(teacherID)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"teacher_id": teacherID,
		"review_id":  review.ID,
		"rating":     rating,
		"flag":       flag,
		"aggregate":  aggregated,
	}).Debug("review scored")

	return s.decide(review, req.FallbackRating, aggregated), nil
}

// decide applies the reconciliation tie-break in order: AI/fallback
// divergence first, then aggregate divergence, then accept.
func (s *ReviewService) decide(review *models.Review, fallbackRating int, aggregated float64) *SubmitResult {
	result := &SubmitResult{
		Review:          review,
		AggregatedScore: aggregated,
	}

	diff := fallbackRating - review.Rating
	if diff < 0 {
		diff = -diff
	}
	if review.Flag == models.FlagAI && diff > 1 {
		result.Outcome = OutcomePendingAIConfirm
		result.ModifyType = ModifyTypeResubmit
		result.Warning = "AI-determined rating and manual rating varies. Please re-confirm your submission."
		return result
	}

	rating := float64(review.Rating)
	if aggregated+1 <= rating || rating <= aggregated-1 {
		result.Outcome = OutcomePendingAggregateConfirm
		result.ModifyType = ModifyTypeResubmit
		result.Warning = "Your previous review differs by a huge margin from the reviewee's ratings. Please try again. If not, cancel to proceed regardless."
		return result
	}

	result.Outcome = OutcomeAccepted
	return result
}

// scoreBias derives the bias rating for a submission. The divisor is the
// sentiment label count, not the bias label count (inherited numeric
// scheme). No usable signal degrades to rating 1 / Unbiased instead of
// failing the submission.
func (s *ReviewService) scoreBias(comment string, aspects []string, sentimentCount int) (int, string, error) {
	labels, err := s.bias.Score(comment, aspects)
	if err != nil {
		return 0, "", err
	}

	biasRating := scoring.DeriveRatingWithDivisor(labelValues(labels), sentimentCount)
	if biasRating == 0 {
		return 1, models.BiasFlagUnbiased, nil
	}
	if scoring.IsBiased(biasRating) {
		return biasRating, models.BiasFlagBiased, nil
	}
	return biasRating, models.BiasFlagUnbiased, nil
}

// ModifyReview is the reconciliation boundary for a pending review. A
// resubmission discards the pending row before re-running the pipeline, so
// at most one row exists per reconciliation session.
func (s *ReviewService) ModifyReview(teacherID, userID, reviewID uint, req ModifyReviewRequest) (*SubmitResult, error) {
	review, err := s.ledger.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.TeacherID != teacherID {
		return nil, errors.New("review does not belong to this teacher")
	}

	switch req.ModifyType {
	case ModifyTypeResubmit:
		// Reject bad replacement input before the pending row is touched;
		// otherwise the session's only row would be lost to a no-op.
		if _, err := validateSubmission(SubmitReviewRequest{
			Comment:        req.Comment,
			FallbackRating: req.FallbackRating,
		}); err != nil {
			return nil, err
		}
		if err := s.ledger.DeleteReview(reviewID); err != nil {
			return nil, err
		}
		return s.SubmitReview(teacherID, userID, SubmitReviewRequest{
			Comment:        req.Comment,
			FallbackRating: req.FallbackRating,
		})
	case ModifyTypeCancel:
		if err := s.ledger.MarkUnreliable(reviewID); err != nil {
			return nil, err
		}
		review.ReliableFlag = models.ReliableUnreliable
		return &SubmitResult{
			Outcome: OutcomeCancelled,
			Review:  review,
		}, nil
	default:
		return nil, errors.New("invalid modify type, use 1 (resubmit) or 2 (cancel)")
	}
}

// validateSubmission returns the sanitized review text or ErrInvalidInput.
func validateSubmission(req SubmitReviewRequest) (string, error) {
	comment := utils.SanitizeString(req.Comment)
	if comment == "" {
		return "", fmt.Errorf("%w: review text is required", ErrInvalidInput)
	}
	if !utils.IsValidRating(req.FallbackRating) {
		return "", fmt.Errorf("%w: fallback rating must be between 1 and 5", ErrInvalidInput)
	}
	return comment, nil
}

func labelValues(scores []scoring.AspectScore) []int {
	labels := make([]int, 0, len(scores))
	for _, score := range scores {
		labels = append(labels, score.Label)
	}
	return labels
}
