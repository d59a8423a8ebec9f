package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// AdmissionCreateRequest is the public application form.
type AdmissionCreateRequest struct {
	FirstName        string `json:"first_name" validate:"required,max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,max=32"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	Address          string `json:"address" validate:"required,max=255"`
	City             string `json:"city" validate:"required,max=100"`
	Country          string `json:"country" validate:"required,max=100"`
	PreviousSchool   string `json:"previous_school" validate:"required,max=255"`
	Qualification    string `json:"qualification" validate:"required,oneof=high-school associate bachelor other"`
	YearOfCompletion int    `json:"year_of_completion" validate:"required,gte=1990"`
	SelectedCourseID uint   `json:"selected_course_id" validate:"required,gt=0"`
	StudyMode        string `json:"study_mode" validate:"required,oneof=full-time part-time"`
}

// AdmissionStatusRequest is an admin decision.
type AdmissionStatusRequest struct {
	ApplicationStatus string `json:"application_status" validate:"required,oneof=under_review approved rejected"`
	AdminFeedback     string `json:"admin_feedback" validate:"omitempty,max=5000"`
}

// AdmissionListRequest filters the admin list.
type AdmissionListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending under_review approved rejected completed"`
	Search string `query:"search"`
}

// AdmissionTrackRequest looks an application up by id or email.
type AdmissionTrackRequest struct {
	ID    uint   `query:"id"`
	Email string `query:"email" validate:"omitempty,email"`
}

// AdmissionResponse serializes an application for admins.
type AdmissionResponse struct {
	ID                 uint                        `json:"id"`
	FirstName          string                      `json:"first_name"`
	LastName           string                      `json:"last_name"`
	Email              string                      `json:"email"`
	Phone              string                      `json:"phone"`
	DateOfBirth        string                      `json:"date_of_birth"`
	Gender             string                      `json:"gender"`
	Address            string                      `json:"address"`
	City               string                      `json:"city"`
	Country            string                      `json:"country"`
	PreviousSchool     string                      `json:"previous_school"`
	Qualification      string                      `json:"qualification"`
	YearOfCompletion   int                         `json:"year_of_completion"`
	SelectedCourseID   uint                        `json:"selected_course_id"`
	SelectedCourseName string                      `json:"selected_course_name,omitempty"`
	StudyMode          string                      `json:"study_mode"`
	ApplicationStatus  string                      `json:"application_status"`
	AppliedDate        time.Time                   `json:"applied_date"`
	ReviewedDate       *time.Time                  `json:"reviewed_date"`
	AdminFeedback      string                      `json:"admin_feedback"`
	ReviewedBy         *uint                       `json:"reviewed_by"`
	Documents          []AdmissionDocumentResponse `json:"documents,omitempty"`
}

// NewAdmissionResponse maps an admission and any preloaded documents.
func NewAdmissionResponse(a models.Admission) AdmissionResponse {
	response := AdmissionResponse{
		ID:                 a.ID,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Email:              a.Email,
		Phone:              a.Phone,
		DateOfBirth:        a.DateOfBirth.Format("2006-01-02"),
		Gender:             a.Gender,
		Address:            a.Address,
		City:               a.City,
		Country:            a.Country,
		PreviousSchool:     a.PreviousSchool,
		Qualification:      a.Qualification,
		YearOfCompletion:   a.YearOfCompletion,
		SelectedCourseID:   a.SelectedCourseID,
		SelectedCourseName: a.SelectedCourse.CourseName,
		StudyMode:          a.StudyMode,
		ApplicationStatus:  a.ApplicationStatus,
		AppliedDate:        a.AppliedDate,
		ReviewedDate:       a.ReviewedDate,
		AdminFeedback:      a.AdminFeedback,
		ReviewedBy:         a.ReviewedBy,
	}
	for _, doc := range a.Documents {
		response.Documents = append(response.Documents, NewAdmissionDocumentResponse(doc))
	}
	return response
}

// AdmissionTrackResponse is the public status view of an application.
type AdmissionTrackResponse struct {
	ID                 uint       `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	SelectedCourseName string     `json:"selected_course_name"`
	ApplicationStatus  string     `json:"application_status"`
	AppliedDate        time.Time  `json:"applied_date"`
	ReviewedDate       *time.Time `json:"reviewed_date"`
	AdminFeedback      string     `json:"admin_feedback"`
}

// NewAdmissionTrackResponse maps an admission for the tracking page.
func NewAdmissionTrackResponse(a models.Admission) AdmissionTrackResponse {
	return AdmissionTrackResponse{
		ID:                 a.ID,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		SelectedCourseName: a.SelectedCourse.CourseName,
		ApplicationStatus:  a.ApplicationStatus,
		AppliedDate:        a.AppliedDate,
		ReviewedDate:       a.ReviewedDate,
		AdminFeedback:      a.AdminFeedback,
	}
}

// AdmissionDocumentRequest carries the multipart form fields of a document upload.
type AdmissionDocumentRequest struct {
	DocumentType string `form:"document_type" validate:"required,oneof=transcript certificate id_proof photo other"`
}

// AdmissionDocumentResponse serializes an uploaded document.
type AdmissionDocumentResponse struct {
	ID           uint      `json:"id"`
	AdmissionID  uint      `json:"admission_id"`
	DocumentType string    `json:"document_type"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdmissionDocumentResponse maps a document model.
func NewAdmissionDocumentResponse(doc models.AdmissionDocument) AdmissionDocumentResponse {
	return AdmissionDocumentResponse{
		ID:           doc.ID,
		AdmissionID:  doc.AdmissionID,
		DocumentType: doc.DocumentType,
		FileName:     doc.FileName,
		FileURL:      doc.FileURL,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		CreatedAt:    doc.CreatedAt,
	}
}

// EnrollmentLogEntry shows whether an admission has turned into an enrollment.
type EnrollmentLogEntry struct {
	AdmissionID        uint       `json:"admission_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	CourseName         string     `json:"course_name"`
	ApplicationStatus  string     `json:"application_status"`
	ReviewedDate       *time.Time `json:"reviewed_date"`
	StudentID          *uint      `json:"student_id"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	EnrollmentStatus   string     `json:"enrollment_status"`
}

// ReconcileResult reports what an enrollment repair run did.
type ReconcileResult struct {
	Checked        int      `json:"checked"`
	UsersCreated   int      `json:"users_created"`
	StudentsLinked int      `json:"students_linked"`
	Enrollments    int      `json:"enrollments_created"`
	Completed      int      `json:"completed"`
	Errors         []string `json:"errors"`
}
