package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/storage"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	QueryTimeout    = 30 * time.Second
)

var (
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrSchoolNotFound  = errors.New("school not found")
	ErrInvalidFilter   = errors.New("invalid filter parameters")
	ErrDatabaseQuery   = errors.New("database query failed")
)

type TeacherService struct {
	db     *gorm.DB
	ledger storage.Ledger
}

func NewTeacherService(db *gorm.DB, ledger storage.Ledger) *TeacherService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &TeacherService{
		db:     db,
		ledger: ledger,
	}
}

type TeacherFilter struct {
	Search   string `form:"search" validate:"max=255"`
	SchoolID uint   `form:"school_id"`
	Page     int    `form:"page" validate:"min=1"`
	Limit    int    `form:"limit" validate:"min=1,max=100"`
}

type TeacherSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

type TeacherListResponse struct {
	Teachers []TeacherSummary `json:"teachers"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
}

// TeacherProfile is the public view of a teacher: identity plus the
// aggregate recomputed from the review ledger on every read.
type TeacherProfile struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	SchoolName      string  `json:"school_name"`
	PhotoURL        string  `json:"photo_url,omitempty"`
	AggregatedScore float64 `json:"aggregated_score"`
	StarBar         int     `json:"star_bar"`
	ReviewCount     int64   `json:"review_count"`
}

type TeacherReviewResponse struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	Flag         string `json:"flag"`
	BiasFlag     string `json:"bias_flag"`
	ReliableFlag string `json:"reliable_flag"`
	CreatedAt    string `json:"created_at"`
}

// ValidateAndNormalize validates and normalizes filter parameters
func (f *TeacherFilter) ValidateAndNormalize() error {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	f.Search = strings.TrimSpace(f.Search)
	if len(f.Search) > 255 {
		return fmt.Errorf("%w: search term too long", ErrInvalidFilter)
	}

	return nil
}

// SearchTeachers retrieves teachers with name search and pagination (public
// access - active teachers only)
func (s *TeacherService) SearchTeachers(ctx context.Context, filter TeacherFilter) (*TeacherListResponse, error) {
	if err := filter.ValidateAndNormalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var total int64
	query := s.db.WithContext(ctx).Model(&models.Teacher{}).Where("is_active = ?", true)

	if filter.Search != "" {
		query = query.Where("LOWER(teachers.name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.SchoolID != 0 {
		query = query.Where("school_id = ?", filter.SchoolID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count teachers: %v", ErrDatabaseQuery, err)
	}

	if total == 0 {
		return &TeacherListResponse{
			Teachers: []TeacherSummary{},
			Total:    0,
			Page:     filter.Page,
			Limit:    filter.Limit,
			Pages:    0,
		}, nil
	}

	var teachers []models.Teacher
	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("School").
		Offset(offset).
		Limit(filter.Limit).
		Order("teachers.name ASC").
		Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch teachers: %v", ErrDatabaseQuery, err)
	}

	summaries := make([]TeacherSummary, 0, len(teachers))
	for _, teacher := range teachers {
		summaries = append(summaries, TeacherSummary{
			ID:         teacher.ID,
			Name:       teacher.Name,
			SchoolName: teacher.School.Name,
			PhotoURL:   teacher.PhotoURL,
		})
	}

	pages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		pages++
	}

	return &TeacherListResponse{
		Teachers: summaries,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Pages:    pages,
	}, nil
}

// GetTeacherProfile retrieves a teacher with the aggregate score recomputed
// from the ledger. The star bar is the aggregate rounded to whole stars.
func (s *TeacherService) GetTeacherProfile(ctx context.Context, id uint) (*TeacherProfile, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: invalid teacher ID", ErrInvalidFilter)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var teacher models.Teacher
	if err := s.db.WithContext(ctx).
		Preload("School").
		Where("id = ? AND is_active = ?", id, true).
		First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch teacher: %v", ErrDatabaseQuery, err)
	}

	aggregated, err := s.ledger.TeacherAggregate(teacher.ID)
	if err != nil {
		return nil, err
	}

	var reviewCount int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("teacher_id = ?", teacher.ID).
		Count(&reviewCount).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count reviews: %v", ErrDatabaseQuery, err)
	}

	return &TeacherProfile{
		ID:              teacher.ID,
		Name:            teacher.Name,
		SchoolName:      teacher.School.Name,
		PhotoURL:        teacher.PhotoURL,
		AggregatedScore: aggregated,
		StarBar:         starBar(aggregated),
		ReviewCount:     reviewCount,
	}, nil
}

// GetTeacherReviews lists a teacher's reviews newest-first with the
// reviewer's username.
func (s *TeacherService) GetTeacherReviews(ctx context.Context, teacherID uint, page, limit int) ([]TeacherReviewResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	var teacher models.Teacher
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", teacherID, true).
		First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch teacher: %v", ErrDatabaseQuery, err)
	}

	var reviews []models.Review
	offset := (page - 1) * limit
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("teacher_id = ?", teacherID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch reviews: %v", ErrDatabaseQuery, err)
	}

	response := make([]TeacherReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		username := "Anonymous"
		if review.User.ID != 0 {
			username = review.User.Username
		}
		response = append(response, TeacherReviewResponse{
			ID:           review.ID,
			Username:     username,
			Rating:       review.Rating,
			Comment:      review.Comment,
			Flag:         review.Flag,
			BiasFlag:     review.BiasFlag,
			ReliableFlag: review.ReliableFlag,
			CreatedAt:    review.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return response, nil
}

// GetSchools lists all schools ordered by name.
func (s *TeacherService) GetSchools(ctx context.Context) ([]models.School, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	schools := make([]models.School, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&schools).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch schools: %v", ErrDatabaseQuery, err)
	}

	return schools, nil
}

// starBar converts an aggregate score to a whole-star count for the profile
// display. Ties round half to even, so a 2.5 aggregate shows 2 stars.
func starBar(aggregated float64) int {
	stars := int(math.RoundToEven(aggregated))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}
