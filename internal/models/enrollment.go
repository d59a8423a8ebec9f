package models

import "time"

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusDropped   = "dropped"
	EnrollmentStatusSuspended = "suspended"
)

// Enrollment places a student in a course.
type Enrollment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"student_id"`
	CourseID       uint      `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"course_id"`
	EnrollmentDate time.Time `gorm:"not null" json:"enrollment_date"`
	Status         string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Student        Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course         Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
