package services

import (
	"fmt"
	"testing"

	"github.com/aloysiustan/teachrate-backend/internal/database"
	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/scoring"
	"github.com/aloysiustan/teachrate-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubScorer satisfies scoring.Scorer with canned labels. It mirrors the
// real adapters' short-circuit: an empty aspect set returns nothing and is
// not counted as a model call.
type stubScorer struct {
	labels []scoring.AspectScore
	err    error
	calls  int
}

func (s *stubScorer) Score(text string, aspects []string) ([]scoring.AspectScore, error) {
	if len(aspects) == 0 {
		return nil, nil
	}
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.labels, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestTeacher(t *testing.T, db *gorm.DB) *models.Teacher {
	t.Helper()
	school := models.School{Name: "Hillview Secondary"}
	require.NoError(t, db.Create(&school).Error)
	teacher := models.Teacher{Name: "Dana Lee", SchoolID: school.ID, IsActive: true}
	require.NoError(t, db.Create(&teacher).Error)
	return &teacher
}

func newReviewService(db *gorm.DB, sentiment, bias scoring.Scorer) *ReviewService {
	return NewReviewService(storage.NewGormLedger(db), sentiment, bias)
}

func reviewCount(t *testing.T, db *gorm.DB, teacherID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("teacher_id = ?", teacherID).Count(&count).Error)
	return count
}

func TestSubmitReviewManualFallbackAccepted(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{}
	bias := &stubScorer{}
	svc := newReviewService(db, sentiment, bias)

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Very good, highly recommended",
		FallbackRating: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.Equal(t, 4, result.Review.Rating)
	assert.Equal(t, models.FlagManual, result.Review.Flag)
	assert.InDelta(t, 4.0, result.AggregatedScore, 0.0001)

	// No aspect detected: neither model may be invoked.
	assert.Zero(t, sentiment.calls)
	assert.Zero(t, bias.calls)

	// Bias degrades without signal instead of failing.
	assert.Equal(t, 1, result.Review.BiasRating)
	assert.Equal(t, models.BiasFlagUnbiased, result.Review.BiasFlag)

	assert.EqualValues(t, 1, reviewCount(t, db, teacher.ID))
}

func TestSubmitReviewAIDivergence(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{
		{Aspect: "exam", Label: 1},
		{Aspect: "exam", Label: 2},
	}}
	bias := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: -1}}}
	svc := newReviewService(db, sentiment, bias)

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "The exam was unreasonably difficult",
		FallbackRating: 2,
	})
	require.NoError(t, err)

	// Labels [1,2] derive a clamped rating of 5; |2-5| > 1.
	assert.Equal(t, OutcomePendingAIConfirm, result.Outcome)
	assert.Equal(t, ModifyTypeResubmit, result.ModifyType)
	assert.Equal(t, 5, result.Review.Rating)
	assert.Equal(t, models.FlagAI, result.Review.Flag)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, 1, sentiment.calls)

	// The pending row is persisted; reconciliation works on it.
	assert.EqualValues(t, 1, reviewCount(t, db, teacher.ID))
}

func TestSubmitReviewAggregateDivergence(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Review{
			TeacherID: teacher.ID, UserID: 9, Rating: 4, BiasRating: 1,
		}).Error)
	}
	svc := newReviewService(db, &stubScorer{}, &stubScorer{})

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Really not worth it at all",
		FallbackRating: 2,
	})
	require.NoError(t, err)

	// Rating matches the fallback exactly, yet diverges from the running
	// aggregate by more than 1.
	assert.Equal(t, OutcomePendingAggregateConfirm, result.Outcome)
	assert.Equal(t, ModifyTypeResubmit, result.ModifyType)
	assert.Equal(t, 2, result.Review.Rating)
}

func TestAIDivergenceCheckedBeforeAggregate(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	require.NoError(t, db.Create(&models.Review{
		TeacherID: teacher.ID, UserID: 9, Rating: 1, BiasRating: 1,
	}).Error)

	sentiment := &stubScorer{labels: []scoring.AspectScore{{Aspect: "lecture", Label: 1}}}
	bias := &stubScorer{labels: []scoring.AspectScore{{Aspect: "lecture", Label: -1}}}
	svc := newReviewService(db, sentiment, bias)

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "The lecture changed my life",
		FallbackRating: 2,
	})
	require.NoError(t, err)

	// Both the AI/fallback and the aggregate condition hold; the AI check
	// wins the tie-break.
	assert.Equal(t, OutcomePendingAIConfirm, result.Outcome)
}

func TestModifyReviewCancel(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: 1}}}
	svc := newReviewService(db, sentiment, &stubScorer{})

	pending, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Best exam experience ever",
		FallbackRating: 1,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomePendingAIConfirm, pending.Outcome)

	result, err := svc.ModifyReview(teacher.ID, 1, pending.Review.ID, ModifyReviewRequest{
		ModifyType: ModifyTypeCancel,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Equal(t, models.ReliableUnreliable, result.Review.ReliableFlag)

	// The row survives, flagged; no new row appears.
	var stored models.Review
	require.NoError(t, db.First(&stored, pending.Review.ID).Error)
	assert.Equal(t, models.ReliableUnreliable, stored.ReliableFlag)
	assert.Equal(t, pending.Review.Comment, stored.Comment)
	assert.EqualValues(t, 1, reviewCount(t, db, teacher.ID))
}

func TestModifyReviewResubmitReplacesPendingRow(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: 1}}}
	svc := newReviewService(db, sentiment, &stubScorer{})

	pending, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Best exam experience ever",
		FallbackRating: 1,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomePendingAIConfirm, pending.Outcome)

	result, err := svc.ModifyReview(teacher.ID, 1, pending.Review.ID, ModifyReviewRequest{
		ModifyType:     ModifyTypeResubmit,
		Comment:        "Very good, highly recommended",
		FallbackRating: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.NotEqual(t, pending.Review.ID, result.Review.ID)

	// Exactly one row per reconciliation session: the pending one is gone.
	assert.EqualValues(t, 1, reviewCount(t, db, teacher.ID))
	var gone models.Review
	err = db.First(&gone, pending.Review.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestModifyReviewResubmitInvalidInputKeepsPendingRow(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: 1}}}
	svc := newReviewService(db, sentiment, &stubScorer{})

	pending, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Best exam experience ever",
		FallbackRating: 1,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomePendingAIConfirm, pending.Outcome)

	bad := []ModifyReviewRequest{
		{ModifyType: ModifyTypeResubmit, Comment: "   ", FallbackRating: 3},
		{ModifyType: ModifyTypeResubmit, Comment: "Second attempt", FallbackRating: 0},
	}
	for _, req := range bad {
		_, err := svc.ModifyReview(teacher.ID, 1, pending.Review.ID, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	// A rejected resubmission must leave the pending row in place so the
	// user can still retry or cancel.
	var stored models.Review
	require.NoError(t, db.First(&stored, pending.Review.ID).Error)
	assert.EqualValues(t, 1, reviewCount(t, db, teacher.ID))

	result, err := svc.ModifyReview(teacher.ID, 1, pending.Review.ID, ModifyReviewRequest{
		ModifyType: ModifyTypeCancel,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
}

func TestSubmitReviewScoringFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{err: fmt.Errorf("%w: connection refused", scoring.ErrScoringUnavailable)}
	svc := newReviewService(db, sentiment, &stubScorer{})

	_, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "The exam went badly",
		FallbackRating: 3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrScoringUnavailable)
	assert.EqualValues(t, 0, reviewCount(t, db, teacher.ID))
}

func TestSubmitReviewBiasFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: 0}}}
	bias := &stubScorer{err: fmt.Errorf("%w: timeout", scoring.ErrScoringUnavailable)}
	svc := newReviewService(db, sentiment, bias)

	_, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "The exam went fine",
		FallbackRating: 3,
	})
	assert.ErrorIs(t, err, scoring.ErrScoringUnavailable)
	assert.EqualValues(t, 0, reviewCount(t, db, teacher.ID))
}

func TestBiasRatingDividesBySentimentLabelCount(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{labels: []scoring.AspectScore{
		{Aspect: "exam", Label: 1},
		{Aspect: "grading", Label: 1},
	}}
	// Three bias labels, star sum 13, divided by the two sentiment labels.
	bias := &stubScorer{labels: []scoring.AspectScore{
		{Aspect: "exam", Label: 0},
		{Aspect: "grading", Label: 1},
		{Aspect: "grading", Label: 1},
	}}
	svc := newReviewService(db, sentiment, bias)

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "exam and grading were great",
		FallbackRating: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.Equal(t, 5, result.Review.BiasRating)
	assert.Equal(t, models.BiasFlagBiased, result.Review.BiasFlag)
}

func TestBiasDegradesWhenSentimentReturnsNoLabels(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{} // aspects detected, but no labels come back
	bias := &stubScorer{labels: []scoring.AspectScore{{Aspect: "exam", Label: 1}}}
	svc := newReviewService(db, sentiment, bias)

	result, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "The exam was okay",
		FallbackRating: 3,
	})
	require.NoError(t, err)

	// Sentiment produced nothing: rating falls back, and the bias divisor
	// is zero, so bias degrades instead of dividing by zero.
	assert.Equal(t, models.FlagManual, result.Review.Flag)
	assert.Equal(t, 3, result.Review.Rating)
	assert.Equal(t, 1, result.Review.BiasRating)
	assert.Equal(t, models.BiasFlagUnbiased, result.Review.BiasFlag)
}

func TestSubmitReviewValidation(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	sentiment := &stubScorer{}
	svc := newReviewService(db, sentiment, &stubScorer{})

	_, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "   ",
		FallbackRating: 3,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
			Comment:        "The exam",
			FallbackRating: rating,
		})
		assert.ErrorIs(t, err, ErrInvalidInput, "fallback rating %d", rating)
	}

	assert.Zero(t, sentiment.calls)
	assert.EqualValues(t, 0, reviewCount(t, db, teacher.ID))
}

func TestSubmitReviewUnknownTeacher(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService(db, &stubScorer{}, &stubScorer{})

	_, err := svc.SubmitReview(999, 1, SubmitReviewRequest{
		Comment:        "Very good, highly recommended",
		FallbackRating: 4,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacher not found")
}

func TestModifyReviewWrongTeacher(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	other := models.Teacher{Name: "Sam Ong", SchoolID: teacher.SchoolID, IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	svc := newReviewService(db, &stubScorer{}, &stubScorer{})

	pending, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Very good, highly recommended",
		FallbackRating: 4,
	})
	require.NoError(t, err)

	_, err = svc.ModifyReview(other.ID, 1, pending.Review.ID, ModifyReviewRequest{
		ModifyType: ModifyTypeCancel,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestModifyReviewInvalidType(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	svc := newReviewService(db, &stubScorer{}, &stubScorer{})

	pending, err := svc.SubmitReview(teacher.ID, 1, SubmitReviewRequest{
		Comment:        "Very good, highly recommended",
		FallbackRating: 4,
	})
	require.NoError(t, err)

	_, err = svc.ModifyReview(teacher.ID, 1, pending.Review.ID, ModifyReviewRequest{
		ModifyType: 3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid modify type")
}

func TestModifyReviewUnknownReview(t *testing.T) {
	db := newTestDB(t)
	teacher := newTestTeacher(t, db)
	svc := newReviewService(db, &stubScorer{}, &stubScorer{})

	_, err := svc.ModifyReview(teacher.ID, 1, 12345, ModifyReviewRequest{
		ModifyType: ModifyTypeCancel,
	})
	assert.ErrorIs(t, err, storage.ErrReviewNotFound)
}
