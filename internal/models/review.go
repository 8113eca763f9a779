package models

import (
	"time"
)

// Rating provenance.
const (
	FlagAI     = "AI"
	FlagManual = "Manual"
)

// Bias classification.
const (
	BiasFlagBiased   = "Biased"
	BiasFlagUnbiased = "Unbiased"
)

// Reliability. ReliableUnreliable is terminal: a review never transitions
// back to Verified once cancelled.
const (
	ReliableVerified   = "Verified"
	ReliableUnreliable = "Unreliable"
)

type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TeacherID    uint      `json:"teacher_id" gorm:"not null;index"`
	UserID       uint      `json:"user_id" gorm:"not null"`
	Rating       int       `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	Comment      string    `json:"comment"`
	Flag         string    `json:"flag" gorm:"default:Manual"`
	BiasRating   int       `json:"bias_rating" gorm:"check:bias_rating >= 1 AND bias_rating <= 5"`
	BiasFlag     string    `json:"bias_flag" gorm:"default:Unbiased"`
	ReliableFlag string    `json:"reliable_flag" gorm:"default:Verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	User    User    `json:"user,omitempty"`
	Teacher Teacher `json:"teacher,omitempty"`
}
