package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// CourseCreateRequest creates a course.
type CourseCreateRequest struct {
	CourseCode    string `json:"course_code" validate:"required,max=32"`
	CourseName    string `json:"course_name" validate:"required,max=255"`
	Description   string `json:"description" validate:"omitempty,max=5000"`
	DurationYears int    `json:"duration_years" validate:"required,gte=1,lte=10"`
	TotalCredits  int    `json:"total_credits" validate:"gte=0"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CourseUpdateRequest patches a course.
type CourseUpdateRequest struct {
	CourseName    *string `json:"course_name" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	DurationYears *int    `json:"duration_years" validate:"omitempty,gte=1,lte=10"`
	TotalCredits  *int    `json:"total_credits" validate:"omitempty,gte=0"`
	Status        *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CourseResponse serializes a course.
type CourseResponse struct {
	ID            uint      `json:"id"`
	CourseCode    string    `json:"course_code"`
	CourseName    string    `json:"course_name"`
	Description   string    `json:"description"`
	DurationYears int       `json:"duration_years"`
	TotalCredits  int       `json:"total_credits"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewCourseResponse maps a course model.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:            course.ID,
		CourseCode:    course.CourseCode,
		CourseName:    course.CourseName,
		Description:   course.Description,
		DurationYears: course.DurationYears,
		TotalCredits:  course.TotalCredits,
		Status:        course.Status,
		CreatedAt:     course.CreatedAt,
		UpdatedAt:     course.UpdatedAt,
	}
}

// SubjectCreateRequest creates a subject. LecturerID may be omitted.
type SubjectCreateRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,gt=0"`
	SubjectCode string `json:"subject_code" validate:"required,max=32"`
	SubjectName string `json:"subject_name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Credits     int    `json:"credits" validate:"gte=0,lte=30"`
	Semester    int    `json:"semester" validate:"required,gte=1,lte=12"`
	LecturerID  *uint  `json:"lecturer_id" validate:"omitempty,gt=0"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive draft"`
}

// SubjectUpdateRequest patches a subject. UnassignLecturer clears the lecturer.
type SubjectUpdateRequest struct {
	SubjectName      *string `json:"subject_name" validate:"omitempty,min=1,max=255"`
	Description      *string `json:"description" validate:"omitempty,max=5000"`
	Credits          *int    `json:"credits" validate:"omitempty,gte=0,lte=30"`
	Semester         *int    `json:"semester" validate:"omitempty,gte=1,lte=12"`
	LecturerID       *uint   `json:"lecturer_id" validate:"omitempty,gt=0"`
	UnassignLecturer bool    `json:"unassign_lecturer"`
	Status           *string `json:"status" validate:"omitempty,oneof=active inactive draft"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	CourseID   *uint  `query:"course_id"`
	LecturerID *uint  `query:"lecturer_id"`
	Status     string `query:"status" validate:"omitempty,oneof=active inactive draft"`
}

// SubjectResponse serializes a subject.
type SubjectResponse struct {
	ID           uint      `json:"id"`
	CourseID     uint      `json:"course_id"`
	CourseName   string    `json:"course_name,omitempty"`
	SubjectCode  string    `json:"subject_code"`
	SubjectName  string    `json:"subject_name"`
	Description  string    `json:"description"`
	Credits      int       `json:"credits"`
	Semester     int       `json:"semester"`
	LecturerID   *uint     `json:"lecturer_id"`
	LecturerName string    `json:"lecturer_name,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSubjectResponse maps a subject with its preloaded relations.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	response := SubjectResponse{
		ID:          subject.ID,
		CourseID:    subject.CourseID,
		CourseName:  subject.Course.CourseName,
		SubjectCode: subject.SubjectCode,
		SubjectName: subject.SubjectName,
		Description: subject.Description,
		Credits:     subject.Credits,
		Semester:    subject.Semester,
		LecturerID:  subject.LecturerID,
		Status:      subject.Status,
		CreatedAt:   subject.CreatedAt,
	}
	if subject.Lecturer != nil {
		response.LecturerName = subject.Lecturer.FullName()
	}
	return response
}
