package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	db                *gorm.DB
	jwtSecret         string
	validationService *ValidationService
	emailService      *EmailService
	baseURL           string
}

func NewAuthService(db *gorm.DB, jwtSecret string, validationService *ValidationService, emailService *EmailService, baseURL string) *AuthService {
	return &AuthService{
		db:                db,
		jwtSecret:         jwtSecret,
		validationService: validationService,
		emailService:      emailService,
		baseURL:           baseURL,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
}

type AuthResponse struct {
	Token utils.TokenPair `json:"tokens"`
	User  models.User     `json:"user"`
}

func (s *AuthService) Signup(req SignupRequest) (*AuthResponse, error) {
	if !utils.IsValidUsername(req.Username) {
		return nil, errors.New("username must be 3-32 characters (letters, digits, underscores)")
	}

	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}

	if !utils.IsValidPassword(req.Password) {
		return nil, errors.New("password must be at least 8 characters")
	}

	// Deliverability check on top of the format check
	if s.validationService != nil {
		emailValid, err := s.validationService.IsEmailValid(req.Email)
		if err != nil {
			return nil, fmt.Errorf("email validation failed: %v", err)
		}
		if !emailValid {
			return nil, errors.New("email address is not valid or deliverable")
		}
	}

	if req.Role == "" {
		req.Role = "reviewer"
	}

	if !utils.IsValidRole(req.Role) {
		return nil, errors.New("invalid role")
	}

	var existingUser models.User
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user already exists")
	}

	user := models.User{
		Username: utils.SanitizeString(req.Username),
		Email:    utils.SanitizeString(req.Email),
		Password: req.Password, // Will be hashed in BeforeCreate hook
		Role:     req.Role,
		IsActive: true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, errors.New("failed to create user")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("username = ? AND is_active = ?", req.Username, true).First(&user).Error; err != nil {
		return nil, errors.New("invalid credentials")
	}

	if !user.CheckPassword(req.Password) {
		return nil, errors.New("invalid credentials")
	}

	// Revoke all existing refresh tokens for this user
	s.db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("is_revoked", true)

	return s.issueTokens(&user)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate tokens")
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
		IsRevoked: false,
	}

	if err := s.db.Create(&refreshToken).Error; err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &AuthResponse{
		Token: *tokenPair,
		User:  *user,
	}, nil
}

func (s *AuthService) RefreshToken(req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if claims.Type != string(utils.RefreshToken) {
		return nil, errors.New("invalid token type")
	}

	var refreshToken models.RefreshToken
	if err := s.db.Where("token = ? AND is_revoked = ? AND expires_at > ?", req.RefreshToken, false, time.Now()).
		First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found or expired")
		}
		return nil, err
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", refreshToken.UserID, true).
		First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}

	// Transactional revoke and new insert
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	refreshToken.IsRevoked = true
	if err := tx.Save(&refreshToken).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to revoke old token")
	}

	tokenPair, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		tx.Rollback()
		return nil, errors.New("failed to generate new tokens")
	}

	newRefresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Unix(tokenPair.RefreshTokenExpiresAt, 0),
		IsRevoked: false,
	}

	if err := tx.Create(&newRefresh).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("failed to store new refresh token")
	}

	tx.Commit()

	return &AuthResponse{
		Token: *tokenPair,
		User:  user,
	}, nil
}

func (s *AuthService) Logout(refreshToken string) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token = ?", refreshToken).
		Update("is_revoked", true).Error
}

func (s *AuthService) LogoutAll(userID uint) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("is_revoked", true).Error
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func (s *AuthService) generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) ForgotPassword(req ForgotPasswordRequest) error {
	if !utils.IsValidEmail(req.Email) {
		return errors.New("invalid email format")
	}

	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		return nil // Don't reveal if email exists
	}

	resetToken, err := s.generateSecureToken()
	if err != nil {
		return errors.New("failed to generate reset token")
	}

	s.db.Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND is_used = ?", user.ID, false).
		Update("is_used", true)

	passwordResetToken := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(1 * time.Hour),
		IsUsed:    false,
	}

	if err := s.db.Create(&passwordResetToken).Error; err != nil {
		return errors.New("failed to create reset token")
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordResetEmail(user.Email, resetToken, s.baseURL); err != nil {
			fmt.Printf("Failed to send password reset email: %v\n", err)
		}
	}

	return nil
}

func (s *AuthService) ResetPassword(req ResetPasswordRequest) error {
	if !utils.IsValidPassword(req.NewPassword) {
		return errors.New("password must be at least 8 characters")
	}

	var resetToken models.PasswordResetToken
	if err := s.db.Where("token = ? AND is_used = ? AND expires_at > ?",
		req.Token, false, time.Now()).First(&resetToken).Error; err != nil {
		return errors.New("invalid or expired reset token")
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", resetToken.UserID, true).First(&user).Error; err != nil {
		return errors.New("user not found")
	}

	if err := user.UpdatePassword(req.NewPassword); err != nil {
		return errors.New("failed to update password")
	}

	if err := s.db.Save(&user).Error; err != nil {
		return errors.New("failed to save new password")
	}

	resetToken.IsUsed = true
	s.db.Save(&resetToken)

	s.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", user.ID).
		Update("is_revoked", true)

	return nil
}

func (s *AuthService) ChangePassword(userID uint, req ChangePasswordRequest) error {
	if !utils.IsValidPassword(req.NewPassword) {
		return errors.New("password must be at least 8 characters")
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return errors.New("user not found")
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return errors.New("current password is incorrect")
	}

	if err := user.UpdatePassword(req.NewPassword); err != nil {
		return errors.New("failed to update password")
	}

	if err := s.db.Save(&user).Error; err != nil {
		return errors.New("failed to save new password")
	}

	return nil
}

func (s *AuthService) ValidateResetToken(token string) (*models.User, error) {
	var resetToken models.PasswordResetToken
	if err := s.db.Where("token = ? AND is_used = ? AND expires_at > ?",
		token, false, time.Now()).First(&resetToken).Error; err != nil {
		return nil, errors.New("invalid or expired reset token")
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", resetToken.UserID, true).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}

	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uint, req UpdateProfileRequest) (*models.User, error) {
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}

	if req.Username != "" && !utils.IsValidUsername(req.Username) {
		return nil, errors.New("username must be 3-32 characters (letters, digits, underscores)")
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}

	if req.Username != "" {
		user.Username = utils.SanitizeString(req.Username)
	}
	user.Email = utils.SanitizeString(req.Email)

	if err := s.db.Save(&user).Error; err != nil {
		return nil, errors.New("failed to update profile")
	}

	return &user, nil
}
