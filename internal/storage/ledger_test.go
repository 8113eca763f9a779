package storage

import (
	"fmt"
	"testing"

	"github.com/aloysiustan/teachrate-backend/internal/database"
	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestLedger(t *testing.T) (*GormLedger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewGormLedger(db), db
}

func seedTeacher(t *testing.T, db *gorm.DB) *models.Teacher {
	t.Helper()
	school := models.School{Name: "Test School"}
	require.NoError(t, db.Create(&school).Error)
	teacher := models.Teacher{Name: "Jordan Smith", SchoolID: school.ID, IsActive: true}
	require.NoError(t, db.Create(&teacher).Error)
	return &teacher
}

func TestCreateAndGetReview(t *testing.T) {
	ledger, db := newTestLedger(t)
	teacher := seedTeacher(t, db)

	review := &models.Review{
		TeacherID:    teacher.ID,
		UserID:       1,
		Rating:       4,
		Comment:      "solid lectures",
		Flag:         models.FlagManual,
		BiasRating:   1,
		BiasFlag:     models.BiasFlagUnbiased,
		ReliableFlag: models.ReliableVerified,
	}
	require.NoError(t, ledger.CreateReview(review))
	require.NotZero(t, review.ID)

	got, err := ledger.GetReviewByID(review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Rating, got.Rating)
	assert.Equal(t, review.Comment, got.Comment)
	assert.Equal(t, models.ReliableVerified, got.ReliableFlag)
}

func TestGetReviewByIDNotFound(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.GetReviewByID(999)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteReview(t *testing.T) {
	ledger, db := newTestLedger(t)
	teacher := seedTeacher(t, db)

	review := &models.Review{TeacherID: teacher.ID, UserID: 1, Rating: 3, BiasRating: 1}
	require.NoError(t, ledger.CreateReview(review))

	require.NoError(t, ledger.DeleteReview(review.ID))

	_, err := ledger.GetReviewByID(review.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestMarkUnreliable(t *testing.T) {
	ledger, db := newTestLedger(t)
	teacher := seedTeacher(t, db)

	review := &models.Review{
		TeacherID:    teacher.ID,
		UserID:       1,
		Rating:       3,
		BiasRating:   1,
		ReliableFlag: models.ReliableVerified,
	}
	require.NoError(t, ledger.CreateReview(review))

	require.NoError(t, ledger.MarkUnreliable(review.ID))

	got, err := ledger.GetReviewByID(review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReliableUnreliable, got.ReliableFlag)

	// Marking again is a no-op, never a reset.
	require.NoError(t, ledger.MarkUnreliable(review.ID))
	got, err = ledger.GetReviewByID(review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReliableUnreliable, got.ReliableFlag)
}

func TestMarkUnreliableNotFound(t *testing.T) {
	ledger, _ := newTestLedger(t)
	assert.ErrorIs(t, ledger.MarkUnreliable(42), ErrReviewNotFound)
}

func TestTeacherAggregate(t *testing.T) {
	ledger, db := newTestLedger(t)
	teacher := seedTeacher(t, db)

	// No reviews yet: aggregate is 0.0, not an error.
	aggregate, err := ledger.TeacherAggregate(teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, aggregate)

	for _, rating := range []int{5, 4, 3} {
		require.NoError(t, ledger.CreateReview(&models.Review{
			TeacherID:  teacher.ID,
			UserID:     1,
			Rating:     rating,
			BiasRating: 1,
		}))
	}

	aggregate, err = ledger.TeacherAggregate(teacher.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, aggregate, 0.0001)
}

func TestTeacherExists(t *testing.T) {
	ledger, db := newTestLedger(t)
	teacher := seedTeacher(t, db)

	exists, err := ledger.TeacherExists(teacher.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ledger.TeacherExists(teacher.ID + 100)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deactivated teachers do not accept new reviews.
	require.NoError(t, db.Model(teacher).Update("is_active", false).Error)
	exists, err = ledger.TeacherExists(teacher.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
