package models

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/admission"
)

// Admission is an application submitted through the public form.
type Admission struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	FirstName         string              `gorm:"size:100;not null" json:"first_name"`
	LastName          string              `gorm:"size:100;not null" json:"last_name"`
	Email             string              `gorm:"size:255;index;not null" json:"email"`
	Phone             string              `gorm:"size:32;not null" json:"phone"`
	DateOfBirth       time.Time           `gorm:"not null" json:"date_of_birth"`
	Gender            string              `gorm:"size:16;not null" json:"gender"`
	Address           string              `gorm:"size:255;not null" json:"address"`
	City              string              `gorm:"size:100;not null" json:"city"`
	Country           string              `gorm:"size:100;not null" json:"country"`
	PreviousSchool    string              `gorm:"size:255;not null" json:"previous_school"`
	Qualification     string              `gorm:"size:64;not null" json:"qualification"`
	YearOfCompletion  int                 `gorm:"not null" json:"year_of_completion"`
	SelectedCourseID  uint                `gorm:"index;not null" json:"selected_course_id"`
	StudyMode         string              `gorm:"size:32;not null" json:"study_mode"`
	ApplicationStatus string              `gorm:"size:32;index;not null;default:pending" json:"application_status"`
	AppliedDate       time.Time           `gorm:"not null" json:"applied_date"`
	ReviewedDate      *time.Time          `json:"reviewed_date"`
	AdminFeedback     string              `gorm:"type:text" json:"admin_feedback"`
	ReviewedBy        *uint               `json:"reviewed_by"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	SelectedCourse    Course              `gorm:"foreignKey:SelectedCourseID" json:"-"`
	Documents         []AdmissionDocument `json:"-"`
}

// Review extracts the workflow fields.
func (a Admission) Review() admission.Review {
	return admission.Review{
		Status:        admission.Status(a.ApplicationStatus),
		ReviewedBy:    a.ReviewedBy,
		ReviewedDate:  a.ReviewedDate,
		AdminFeedback: a.AdminFeedback,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ApplyReview copies workflow fields back onto the admission.
func (a *Admission) ApplyReview(r admission.Review) {
	a.ApplicationStatus = string(r.Status)
	a.ReviewedBy = r.ReviewedBy
	a.ReviewedDate = r.ReviewedDate
	a.AdminFeedback = r.AdminFeedback
	a.UpdatedAt = r.UpdatedAt
}

// Document types accepted with an application.
const (
	DocumentTypeTranscript  = "transcript"
	DocumentTypeCertificate = "certificate"
	DocumentTypeIDProof     = "id_proof"
	DocumentTypePhoto       = "photo"
	DocumentTypeOther       = "other"
)

// AdmissionDocument is a file attached to an application.
type AdmissionDocument struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdmissionID  uint      `gorm:"index;not null" json:"admission_id"`
	DocumentType string    `gorm:"size:32;not null" json:"document_type"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Checksum     string    `gorm:"size:64" json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
	Admission    Admission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
