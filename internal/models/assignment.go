package models

import "time"

// Assignment types offered to lecturers.
const (
	AssignmentTypeHomework   = "homework"
	AssignmentTypeProject    = "project"
	AssignmentTypeLab        = "lab"
	AssignmentTypeAssessment = "assessment"
)

// Assignment is coursework set for a subject.
type Assignment struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	SubjectID      uint         `gorm:"index;not null" json:"subject_id"`
	LecturerID     *uint        `gorm:"index" json:"lecturer_id"`
	Title          string       `gorm:"size:255;not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	AssignmentType string       `gorm:"size:32;not null;default:homework" json:"assignment_type"`
	TotalMarks     float64      `gorm:"not null;default:100" json:"total_marks"`
	DueDate        time.Time    `gorm:"not null" json:"due_date"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Subject        Subject      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions    []Submission `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
