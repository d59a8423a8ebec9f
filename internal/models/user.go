package models

import "time"

// Roles a user account can hold.
const (
	RoleAdmin    = "admin"
	RoleLecturer = "lecturer"
	RoleStudent  = "student"
)

// User is a login account. Role-specific data lives in Student, Lecturer or Admin.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;index;not null" json:"role"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Status       string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins the first and last name.
func (u User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

// Student is the academic profile of a student user.
type Student struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	AdmissionID        *uint      `gorm:"uniqueIndex" json:"admission_id"`
	RegistrationNumber string     `gorm:"size:64;uniqueIndex;not null" json:"registration_number"`
	FirstName          string     `gorm:"size:100;not null" json:"first_name"`
	LastName           string     `gorm:"size:100;not null" json:"last_name"`
	Email              string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone              string     `gorm:"size:32" json:"phone"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	Gender             string     `gorm:"size:16" json:"gender"`
	Address            string     `gorm:"size:255" json:"address"`
	City               string     `gorm:"size:100" json:"city"`
	Country            string     `gorm:"size:100" json:"country"`
	Status             string     `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	User               User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// FullName joins the first and last name.
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// Lecturer is the teaching profile of a lecturer user.
type Lecturer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	EmployeeID     string    `gorm:"size:64;uniqueIndex;not null" json:"employee_id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone          string    `gorm:"size:32" json:"phone"`
	Department     string    `gorm:"size:120" json:"department"`
	Specialization string    `gorm:"size:120" json:"specialization"`
	Status         string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	User           User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// FullName joins the first and last name.
func (l Lecturer) FullName() string {
	return joinName(l.FirstName, l.LastName)
}

// Admin is the profile of an administrator user.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
