package storage

import (
	"errors"
	"fmt"

	"github.com/aloysiustan/teachrate-backend/internal/models"
	"gorm.io/gorm"
)

// ErrPersistenceUnavailable wraps ledger I/O failures. In-flight submissions
// abort on it; the caller resubmits.
var ErrPersistenceUnavailable = errors.New("review ledger unavailable")

// ErrReviewNotFound is returned when a review id does not exist.
var ErrReviewNotFound = errors.New("review not found")

// Ledger is the persistence boundary the reconciliation engine depends on.
// The aggregate mean is owned by the ledger, not the engine.
type Ledger interface {
	CreateReview(review *models.Review) error
	GetReviewByID(id uint) (*models.Review, error)
	DeleteReview(id uint) error
	MarkUnreliable(id uint) error
	TeacherAggregate(teacherID uint) (float64, error)
	TeacherExists(teacherID uint) (bool, error)
}

// GormLedger implements Ledger on a GORM database.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) CreateReview(review *models.Review) error {
	if err := l.db.Create(review).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (l *GormLedger) GetReviewByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := l.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return &review, nil
}

func (l *GormLedger) DeleteReview(id uint) error {
	if err := l.db.Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// MarkUnreliable flips the reliability flag on a cancelled review. The
// transition is one-way; nothing in the ledger sets a review back to
// Verified.
func (l *GormLedger) MarkUnreliable(id uint) error {
	result := l.db.Model(&models.Review{}).
		Where("id = ?", id).
		Update("reliable_flag", models.ReliableUnreliable)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// TeacherAggregate recomputes the teacher's mean rating over all reviews.
// A teacher with no reviews aggregates to 0.0.
func (l *GormLedger) TeacherAggregate(teacherID uint) (float64, error) {
	var aggregate *float64
	err := l.db.Model(&models.Review{}).
		Where("teacher_id = ?", teacherID).
		Select("AVG(rating)").
		Scan(&aggregate).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if aggregate == nil {
		return 0.0, nil
	}
	return *aggregate, nil
}

func (l *GormLedger) TeacherExists(teacherID uint) (bool, error) {
	var count int64
	err := l.db.Model(&models.Teacher{}).
		Where("id = ? AND is_active = ?", teacherID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return count > 0, nil
}
