package models

import "time"

const (
	GradeStatusDraft     = "draft"
	GradeStatusFinalized = "finalized"
)

// SubjectGrade is the overall grade of a student in a subject. Components are
// nil until recorded and FinalPercentage is nil unless both are present.
type SubjectGrade struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	StudentID                 uint       `gorm:"uniqueIndex:idx_grade_student_subject;not null" json:"student_id"`
	SubjectID                 uint       `gorm:"uniqueIndex:idx_grade_student_subject;not null" json:"subject_id"`
	AssignmentGradePercentage *float64   `json:"assignment_grade_percentage"`
	ExamMarks                 *float64   `json:"exam_marks"`
	ExamPercentage            *float64   `json:"exam_percentage"`
	FinalPercentage           *float64   `json:"final_percentage"`
	GradeLetter               string     `gorm:"size:4" json:"grade_letter"`
	GradeStatus               string     `gorm:"size:16;not null;default:draft" json:"grade_status"`
	GradedBy                  *uint      `json:"graded_by"`
	GradedAt                  *time.Time `json:"graded_at"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
	Student                   Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject                   Subject    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// GradeBand is a row of the letter lookup table used as the authoritative
// letter mapping.
type GradeBand struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Letter        string  `gorm:"size:4;uniqueIndex;not null" json:"letter"`
	MinPercentage float64 `gorm:"not null" json:"min_percentage"`
	GradePoints   float64 `gorm:"not null" json:"grade_points"`
}
