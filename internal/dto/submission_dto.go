package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submission upload.
type SubmissionCreateRequest struct {
	AssignmentID   uint   `form:"assignment_id" validate:"required,gt=0"`
	SubmissionText string `form:"submission_text" validate:"omitempty,max=20000"`
}

// SubmissionGradeRequest records marks for a submission.
type SubmissionGradeRequest struct {
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	Feedback      string  `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	LecturerID   *uint   `query:"lecturer_id"`
	SubjectID    *uint   `query:"subject_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted graded"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                   uint       `json:"id"`
	AssignmentID         uint       `json:"assignment_id"`
	AssignmentTitle      string     `json:"assignment_title,omitempty"`
	StudentID            uint       `json:"student_id"`
	StudentName          string     `json:"student_name,omitempty"`
	RegistrationNumber   string     `json:"registration_number,omitempty"`
	SubmissionText       string     `json:"submission_text"`
	FileURL              string     `json:"file_url"`
	FileName             string     `json:"file_name"`
	SubmissionDate       time.Time  `json:"submission_date"`
	IsLate               bool       `json:"is_late"`
	Status               string     `json:"status"`
	MarksObtained        *float64   `json:"marks_obtained"`
	AssignmentPercentage *float64   `json:"assignment_percentage"`
	GradeLetter          string     `json:"grade_letter"`
	Feedback             string     `json:"feedback"`
	GradedBy             *uint      `json:"graded_by"`
	GradedAt             *time.Time `json:"graded_at"`
}

// NewSubmissionResponse maps a submission with preloaded assignment and student.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                   submission.ID,
		AssignmentID:         submission.AssignmentID,
		AssignmentTitle:      submission.Assignment.Title,
		StudentID:            submission.StudentID,
		StudentName:          submission.Student.FullName(),
		RegistrationNumber:   submission.Student.RegistrationNumber,
		SubmissionText:       submission.SubmissionText,
		FileURL:              submission.FileURL,
		FileName:             submission.FileName,
		SubmissionDate:       submission.SubmissionDate,
		IsLate:               submission.IsLate,
		Status:               submission.Status,
		MarksObtained:        submission.MarksObtained,
		AssignmentPercentage: submission.AssignmentPercentage,
		GradeLetter:          submission.GradeLetter,
		Feedback:             submission.Feedback,
		GradedBy:             submission.GradedBy,
		GradedAt:             submission.GradedAt,
	}
}
