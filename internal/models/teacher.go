package models

import (
	"time"
)

type School struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teachers []Teacher `json:"teachers,omitempty"`
}

type Teacher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	SchoolID  uint      `json:"school_id" gorm:"not null"`
	PhotoKey  string    `json:"-"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	// No column default: a zero value here must round-trip as written,
	// so activation is always set explicitly on create.
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	School  School   `json:"school,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

// Request structs for API
type CreateSchoolRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTeacherRequest struct {
	Name     string `json:"name" binding:"required"`
	SchoolID uint   `json:"school_id" binding:"required"`
}

type UpdateTeacherRequest struct {
	Name     *string `json:"name,omitempty"`
	SchoolID *uint   `json:"school_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
