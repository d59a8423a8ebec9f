package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// UserCreateRequest creates an account and its role profile.
type UserCreateRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=8,max=72"`
	Role               string `json:"role" validate:"required,oneof=admin lecturer student"`
	FirstName          string `json:"first_name" validate:"required,max=100"`
	LastName           string `json:"last_name" validate:"required,max=100"`
	Phone              string `json:"phone" validate:"omitempty,max=32"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=64"`
	EmployeeID         string `json:"employee_id" validate:"omitempty,max=64"`
	Department         string `json:"department" validate:"omitempty,max=120"`
	Specialization     string `json:"specialization" validate:"omitempty,max=120"`
}

// UserUpdateRequest patches an account.
type UserUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Status    *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UserListRequest filters users.
type UserListRequest struct {
	Role   string `query:"role" validate:"omitempty,oneof=admin lecturer student"`
	Search string `query:"search"`
}

// UserResponse serializes an account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a user model.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// LecturerCreateRequest creates a lecturer account with its profile.
type LecturerCreateRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	EmployeeID     string `json:"employee_id" validate:"required,max=64"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Department     string `json:"department" validate:"omitempty,max=120"`
	Specialization string `json:"specialization" validate:"omitempty,max=120"`
}

// LecturerUpdateRequest patches a lecturer profile.
type LecturerUpdateRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Department     *string `json:"department" validate:"omitempty,max=120"`
	Specialization *string `json:"specialization" validate:"omitempty,max=120"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// LecturerResponse serializes a lecturer profile.
type LecturerResponse struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	EmployeeID     string    `json:"employee_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Department     string    `json:"department"`
	Specialization string    `json:"specialization"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewLecturerResponse maps a lecturer model.
func NewLecturerResponse(lecturer models.Lecturer) LecturerResponse {
	return LecturerResponse{
		ID:             lecturer.ID,
		UserID:         lecturer.UserID,
		EmployeeID:     lecturer.EmployeeID,
		FirstName:      lecturer.FirstName,
		LastName:       lecturer.LastName,
		Email:          lecturer.Email,
		Phone:          lecturer.Phone,
		Department:     lecturer.Department,
		Specialization: lecturer.Specialization,
		Status:         lecturer.Status,
		CreatedAt:      lecturer.CreatedAt,
	}
}
