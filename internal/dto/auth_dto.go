package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SignupRequest registers a student account.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionProfile describes the signed-in user and their role-specific id.
type SessionProfile struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	StudentID  *uint  `json:"student_id,omitempty"`
	LecturerID *uint  `json:"lecturer_id,omitempty"`
	AdminID    *uint  `json:"admin_id,omitempty"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      SessionProfile `json:"user"`
}

// NewSessionProfile builds a profile from a user and whichever role row exists.
func NewSessionProfile(user models.User, studentID, lecturerID, adminID *uint) SessionProfile {
	return SessionProfile{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		StudentID:  studentID,
		LecturerID: lecturerID,
		AdminID:    adminID,
	}
}
