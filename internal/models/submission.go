package models

import "time"

// Submission is a student's answer to an assignment.
type Submission struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	AssignmentID         uint       `gorm:"uniqueIndex:idx_submission_assignment_student;not null" json:"assignment_id"`
	StudentID            uint       `gorm:"uniqueIndex:idx_submission_assignment_student;not null" json:"student_id"`
	SubmissionText       string     `gorm:"type:text" json:"submission_text"`
	FileURL              string     `gorm:"size:512" json:"file_url"`
	FileName             string     `gorm:"size:255" json:"file_name"`
	SubmissionDate       time.Time  `gorm:"not null" json:"submission_date"`
	IsLate               bool       `gorm:"not null;default:false" json:"is_late"`
	Status               string     `gorm:"size:32;not null" json:"status"`
	MarksObtained        *float64   `json:"marks_obtained"`
	AssignmentPercentage *float64   `json:"assignment_percentage"`
	GradeLetter          string     `gorm:"size:4" json:"grade_letter"`
	Feedback             string     `gorm:"type:text" json:"feedback"`
	GradedBy             *uint      `json:"graded_by"`
	GradedAt             *time.Time `json:"graded_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Assignment           Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student              Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission has marks.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
