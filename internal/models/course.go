package models

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	// SubjectStatusDraft marks a subject that is not yet offered.
	SubjectStatusDraft = "draft"
)

// Course is a degree programme made of subjects.
type Course struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CourseCode    string    `gorm:"size:32;uniqueIndex;not null" json:"course_code"`
	CourseName    string    `gorm:"size:255;not null" json:"course_name"`
	Description   string    `gorm:"type:text" json:"description"`
	DurationYears int       `gorm:"not null;default:1" json:"duration_years"`
	TotalCredits  int       `gorm:"not null;default:0" json:"total_credits"`
	Status        string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Subjects      []Subject `json:"subjects,omitempty"`
}

// Subject is a taught unit of a course. A nil LecturerID means unassigned.
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"index;not null" json:"course_id"`
	SubjectCode string    `gorm:"size:32;uniqueIndex;not null" json:"subject_code"`
	SubjectName string    `gorm:"size:255;not null" json:"subject_name"`
	Description string    `gorm:"type:text" json:"description"`
	Credits     int       `gorm:"not null;default:0" json:"credits"`
	Semester    int       `gorm:"not null;default:1" json:"semester"`
	LecturerID  *uint     `gorm:"index" json:"lecturer_id"`
	Status      string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Lecturer    *Lecturer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
