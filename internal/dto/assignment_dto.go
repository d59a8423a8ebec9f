package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload to create an assignment.
type AssignmentCreateRequest struct {
	SubjectID      uint      `json:"subject_id" validate:"required,gt=0"`
	Title          string    `json:"title" validate:"required,min=3,max=255"`
	Description    string    `json:"description" validate:"omitempty,max=10000"`
	AssignmentType string    `json:"assignment_type" validate:"omitempty,oneof=homework project lab assessment"`
	TotalMarks     float64   `json:"total_marks" validate:"omitempty,gt=0,lte=1000"`
	DueDate        time.Time `json:"due_date" validate:"required"`
}

// AssignmentUpdateRequest patches an assignment.
type AssignmentUpdateRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description    *string    `json:"description" validate:"omitempty,max=10000"`
	AssignmentType *string    `json:"assignment_type" validate:"omitempty,oneof=homework project lab assessment"`
	TotalMarks     *float64   `json:"total_marks" validate:"omitempty,gt=0,lte=1000"`
	DueDate        *time.Time `json:"due_date"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	SubjectID  *uint `query:"subject_id"`
	LecturerID *uint `query:"lecturer_id"`
	StudentID  *uint `query:"student_id"`
}

// AssignmentResponse is returned to API clients.
type AssignmentResponse struct {
	ID             uint      `json:"id"`
	SubjectID      uint      `json:"subject_id"`
	SubjectCode    string    `json:"subject_code,omitempty"`
	SubjectName    string    `json:"subject_name,omitempty"`
	LecturerID     *uint     `json:"lecturer_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AssignmentType string    `json:"assignment_type"`
	TotalMarks     float64   `json:"total_marks"`
	DueDate        time.Time `json:"due_date"`
	Overdue        bool      `json:"overdue"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAssignmentResponse maps an assignment relative to now.
func NewAssignmentResponse(assignment models.Assignment, now time.Time) AssignmentResponse {
	return AssignmentResponse{
		ID:             assignment.ID,
		SubjectID:      assignment.SubjectID,
		SubjectCode:    assignment.Subject.SubjectCode,
		SubjectName:    assignment.Subject.SubjectName,
		LecturerID:     assignment.LecturerID,
		Title:          assignment.Title,
		Description:    assignment.Description,
		AssignmentType: assignment.AssignmentType,
		TotalMarks:     assignment.TotalMarks,
		DueDate:        assignment.DueDate,
		Overdue:        assignment.IsPastDue(now),
		CreatedAt:      assignment.CreatedAt,
		UpdatedAt:      assignment.UpdatedAt,
	}
}
