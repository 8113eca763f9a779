// services/admin.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/aloysiustan/teachrate-backend/internal/config"
	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"gorm.io/gorm"
)

type AdminService struct {
	db           *gorm.DB
	cfg          *config.Config
	emailService *EmailService
	s3Service    *S3Service
}

func NewAdminService(db *gorm.DB, cfg *config.Config, emailService *EmailService) *AdminService {
	return &AdminService{
		db:           db,
		cfg:          cfg,
		emailService: emailService,
		s3Service:    NewS3Service(cfg.S3Region, cfg.S3BucketName, cfg.S3AccessKey, cfg.S3SecretKey),
	}
}

type DashboardStats struct {
	SchoolCount       int64 `json:"school_count"`
	TeacherCount      int64 `json:"teacher_count"`
	ReviewCount       int64 `json:"review_count"`
	AIReviewCount     int64 `json:"ai_review_count"`
	BiasedReviewCount int64 `json:"biased_review_count"`
	UnreliableCount   int64 `json:"unreliable_count"`
	UserCount         int64 `json:"user_count"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		model interface{}
		query map[string]interface{}
		dest  *int64
	}{
		{&models.School{}, nil, &stats.SchoolCount},
		{&models.Teacher{}, map[string]interface{}{"is_active": true}, &stats.TeacherCount},
		{&models.Review{}, nil, &stats.ReviewCount},
		{&models.Review{}, map[string]interface{}{"flag": models.FlagAI}, &stats.AIReviewCount},
		{&models.Review{}, map[string]interface{}{"bias_flag": models.BiasFlagBiased}, &stats.BiasedReviewCount},
		{&models.Review{}, map[string]interface{}{"reliable_flag": models.ReliableUnreliable}, &stats.UnreliableCount},
		{&models.User{}, map[string]interface{}{"is_active": true}, &stats.UserCount},
	}

	for _, c := range counts {
		query := s.db.Model(c.model)
		if c.query != nil {
			query = query.Where(c.query)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %v", err)
		}
	}

	return stats, nil
}

func (s *AdminService) CreateSchool(req *models.CreateSchoolRequest) (*models.School, error) {
	if req == nil {
		return nil, errors.New("school request cannot be nil")
	}

	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, errors.New("school name is required")
	}

	var existing models.School
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, errors.New("school already exists")
	}

	school := &models.School{Name: name}
	if err := s.db.Create(school).Error; err != nil {
		return nil, fmt.Errorf("failed to create school: %v", err)
	}

	return school, nil
}

func (s *AdminService) CreateTeacher(req *models.CreateTeacherRequest) (*models.Teacher, error) {
	if req == nil {
		return nil, errors.New("teacher request cannot be nil")
	}

	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, errors.New("teacher name is required")
	}

	var school models.School
	if err := s.db.First(&school, req.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to look up school: %v", err)
	}

	teacher := &models.Teacher{
		Name:     name,
		SchoolID: school.ID,
		IsActive: true,
	}

	if err := s.db.Create(teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to create teacher: %v", err)
	}

	teacher.School = school
	return teacher, nil
}

func (s *AdminService) UpdateTeacher(teacherID uint, req *models.UpdateTeacherRequest) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.db.First(&teacher, teacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to find teacher: %v", err)
	}

	if req.Name != nil {
		teacher.Name = utils.SanitizeString(*req.Name)
	}
	if req.SchoolID != nil {
		var school models.School
		if err := s.db.First(&school, *req.SchoolID).Error; err != nil {
			return nil, ErrSchoolNotFound
		}
		teacher.SchoolID = school.ID
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}

	if err := s.db.Save(&teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to update teacher: %v", err)
	}

	s.db.Preload("School").First(&teacher, teacher.ID)
	return &teacher, nil
}

// UploadTeacherPhoto replaces the teacher's profile photo, deleting the
// previous S3 object after the new one is stored.
func (s *AdminService) UploadTeacherPhoto(teacherID uint, file multipart.File, header *multipart.FileHeader) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.db.First(&teacher, teacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to find teacher: %v", err)
	}

	result, err := s.s3Service.UploadPhoto(file, header)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %v", err)
	}

	oldKey := teacher.PhotoKey
	teacher.PhotoKey = result.Key
	teacher.PhotoURL = result.URL

	if err := s.db.Save(&teacher).Error; err != nil {
		s.s3Service.DeletePhoto(result.Key)
		return nil, fmt.Errorf("failed to save teacher photo: %v", err)
	}

	if oldKey != "" {
		s.s3Service.DeletePhoto(oldKey)
	}

	return &teacher, nil
}

// DeleteTeacher deactivates a teacher. Reviews stay in the ledger; the
// profile simply stops being served.
func (s *AdminService) DeleteTeacher(teacherID uint) error {
	var teacher models.Teacher
	if err := s.db.First(&teacher, teacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return fmt.Errorf("failed to find teacher: %v", err)
	}

	if err := s.db.Model(&teacher).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to delete teacher: %v", err)
	}

	return nil
}

// GetUnreliableReviews lists cancelled reviews for the moderation view.
func (s *AdminService) GetUnreliableReviews() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").Preload("Teacher").
		Where("reliable_flag = ?", models.ReliableUnreliable).
		Order("updated_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, errors.New("failed to fetch unreliable reviews")
	}

	return reviews, nil
}

// GetAIReviews lists reviews whose rating came from the sentiment model.
func (s *AdminService) GetAIReviews() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").Preload("Teacher").
		Where("flag = ?", models.FlagAI).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, errors.New("failed to fetch AI reviews")
	}

	return reviews, nil
}
