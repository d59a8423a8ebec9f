package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// EnrollmentCreateRequest enrolls a student in a course.
type EnrollmentCreateRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	CourseID  uint   `json:"course_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"omitempty,oneof=active completed dropped suspended"`
}

// EnrollmentUpdateRequest changes an enrollment status.
type EnrollmentUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed dropped suspended"`
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID *uint  `query:"student_id"`
	CourseID  *uint  `query:"course_id"`
	Status    string `query:"status" validate:"omitempty,oneof=active completed dropped suspended"`
}

// EnrollmentResponse serializes an enrollment.
type EnrollmentResponse struct {
	ID                 uint      `json:"id"`
	StudentID          uint      `json:"student_id"`
	StudentName        string    `json:"student_name,omitempty"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	CourseID           uint      `json:"course_id"`
	CourseName         string    `json:"course_name,omitempty"`
	EnrollmentDate     time.Time `json:"enrollment_date"`
	Status             string    `json:"status"`
}

// NewEnrollmentResponse maps an enrollment with preloaded relations.
func NewEnrollmentResponse(e models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		StudentName:        e.Student.FullName(),
		RegistrationNumber: e.Student.RegistrationNumber,
		CourseID:           e.CourseID,
		CourseName:         e.Course.CourseName,
		EnrollmentDate:     e.EnrollmentDate,
		Status:             e.Status,
	}
}
