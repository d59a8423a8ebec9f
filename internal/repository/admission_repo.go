package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// ErrStatusChanged reports that an admission moved on after it was read.
var ErrStatusChanged = errors.New("admission status changed since it was read")

// AdmissionFilter narrows admission listings.
type AdmissionFilter struct {
	Status   string
	Statuses []string
	Search   string
}

// ReconcileInput carries everything needed to turn an approved admission
// into a user, a student profile and an enrollment.
type ReconcileInput struct {
	Admission          models.Admission
	PasswordHash       string
	RegistrationNumber string
	Now                time.Time
}

// ReconcileOutcome reports which rows had to be created.
type ReconcileOutcome struct {
	UserCreated        bool
	StudentCreated     bool
	EnrollmentCreated  bool
	StudentID          uint
	RegistrationNumber string
}

// AdmissionRepository persists applications and their documents.
type AdmissionRepository interface {
	Create(ctx context.Context, admission *models.Admission) error
	GetByID(ctx context.Context, id uint) (models.Admission, error)
	LatestByEmail(ctx context.Context, email string) (models.Admission, error)
	List(ctx context.Context, filter AdmissionFilter) ([]models.Admission, error)
	UpdateReview(ctx context.Context, admission *models.Admission, from string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Reconcile(ctx context.Context, input ReconcileInput) (ReconcileOutcome, error)
	StudentsForAdmissions(ctx context.Context, ids []uint) (map[uint]models.Student, error)

	CreateDocument(ctx context.Context, doc *models.AdmissionDocument) error
	ListDocuments(ctx context.Context, admissionID uint) ([]models.AdmissionDocument, error)
	GetDocument(ctx context.Context, id uint) (models.AdmissionDocument, error)
	DeleteDocument(ctx context.Context, id uint) error
}

type admissionRepository struct {
	db *gorm.DB
}

// NewAdmissionRepository constructs the admission repository.
func NewAdmissionRepository(db *gorm.DB) AdmissionRepository {
	return &admissionRepository{db: db}
}

func (r *admissionRepository) Create(ctx context.Context, admission *models.Admission) error {
	return r.db.WithContext(ctx).Omit("SelectedCourse", "Documents").Create(admission).Error
}

func (r *admissionRepository) GetByID(ctx context.Context, id uint) (models.Admission, error) {
	var admission models.Admission
	err := r.db.WithContext(ctx).
		Preload("SelectedCourse").
		Preload("Documents").
		First(&admission, id).Error
	if err != nil {
		return models.Admission{}, err
	}
	return admission, nil
}

func (r *admissionRepository) LatestByEmail(ctx context.Context, email string) (models.Admission, error) {
	var admission models.Admission
	err := r.db.WithContext(ctx).
		Preload("SelectedCourse").
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("applied_date DESC, id DESC").
		First(&admission).Error
	if err != nil {
		return models.Admission{}, err
	}
	return admission, nil
}

func (r *admissionRepository) List(ctx context.Context, filter AdmissionFilter) ([]models.Admission, error) {
	query := r.db.WithContext(ctx).Model(&models.Admission{}).Preload("SelectedCourse")
	if filter.Status != "" {
		query = query.Where("application_status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("application_status IN ?", filter.Statuses)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	var admissions []models.Admission
	if err := query.Order("applied_date DESC, id DESC").Find(&admissions).Error; err != nil {
		return nil, err
	}
	return admissions, nil
}

// UpdateReview writes only the workflow columns, and only while the stored
// status is still from.
func (r *admissionRepository) UpdateReview(ctx context.Context, admission *models.Admission, from string) error {
	db := r.db.WithContext(ctx)
	result := db.
		Model(&models.Admission{}).
		Where("id = ? AND application_status = ?", admission.ID, from).
		Updates(map[string]interface{}{
			"application_status": admission.ApplicationStatus,
			"reviewed_by":        admission.ReviewedBy,
			"reviewed_date":      admission.ReviewedDate,
			"admin_feedback":     admission.AdminFeedback,
			"updated_at":         admission.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Admission{}).Where("id = ?", admission.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStatusChanged
}

func (r *admissionRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		ApplicationStatus string
		Total             int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Admission{}).
		Select("application_status, COUNT(*) AS total").
		Group("application_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ApplicationStatus] = row.Total
	}
	return counts, nil
}

// Reconcile finds or creates the user, student and enrollment for the
// admission and stores its workflow columns, all in one transaction.
func (r *admissionRepository) Reconcile(ctx context.Context, input ReconcileInput) (ReconcileOutcome, error) {
	var outcome ReconcileOutcome
	a := input.Admission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		email := strings.ToLower(strings.TrimSpace(a.Email))

		var user models.User
		err := tx.Where("LOWER(email) = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        email,
				PasswordHash: input.PasswordHash,
				Role:         models.RoleStudent,
				FirstName:    a.FirstName,
				LastName:     a.LastName,
				Status:       models.StatusActive,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			outcome.UserCreated = true
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		case user.Role != models.RoleStudent:
			return fmt.Errorf("email %s belongs to a %s account", email, user.Role)
		}

		var student models.Student
		err = tx.Where("admission_id = ? OR user_id = ?", a.ID, user.ID).First(&student).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			dob := a.DateOfBirth
			admissionID := a.ID
			student = models.Student{
				UserID:             user.ID,
				AdmissionID:        &admissionID,
				RegistrationNumber: input.RegistrationNumber,
				FirstName:          a.FirstName,
				LastName:           a.LastName,
				Email:              email,
				Phone:              a.Phone,
				DateOfBirth:        &dob,
				Gender:             a.Gender,
				Address:            a.Address,
				City:               a.City,
				Country:            a.Country,
				Status:             models.StatusActive,
			}
			if err := tx.Omit("User").Create(&student).Error; err != nil {
				return fmt.Errorf("create student: %w", err)
			}
			outcome.StudentCreated = true
		case err != nil:
			return fmt.Errorf("find student: %w", err)
		case student.AdmissionID == nil:
			admissionID := a.ID
			if err := tx.Model(&student).Update("admission_id", admissionID).Error; err != nil {
				return fmt.Errorf("link student: %w", err)
			}
		}
		outcome.StudentID = student.ID
		outcome.RegistrationNumber = student.RegistrationNumber

		var enrollment models.Enrollment
		err = tx.Where("student_id = ? AND course_id = ?", student.ID, a.SelectedCourseID).First(&enrollment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			enrollment = models.Enrollment{
				StudentID:      student.ID,
				CourseID:       a.SelectedCourseID,
				EnrollmentDate: input.Now,
				Status:         models.EnrollmentStatusActive,
			}
			if err := tx.Omit("Student", "Course").Create(&enrollment).Error; err != nil {
				return fmt.Errorf("create enrollment: %w", err)
			}
			outcome.EnrollmentCreated = true
		case err != nil:
			return fmt.Errorf("find enrollment: %w", err)
		}

		return tx.Model(&models.Admission{}).
			Where("id = ?", a.ID).
			Updates(map[string]interface{}{
				"application_status": a.ApplicationStatus,
				"updated_at":         a.UpdatedAt,
			}).Error
	})
	if err != nil {
		return ReconcileOutcome{}, err
	}
	return outcome, nil
}

// StudentsForAdmissions maps admission ids to the student created from them.
func (r *admissionRepository) StudentsForAdmissions(ctx context.Context, ids []uint) (map[uint]models.Student, error) {
	result := make(map[uint]models.Student, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).Where("admission_id IN ?", ids).Find(&students).Error; err != nil {
		return nil, err
	}
	for _, student := range students {
		if student.AdmissionID != nil {
			result[*student.AdmissionID] = student
		}
	}
	return result, nil
}

func (r *admissionRepository) CreateDocument(ctx context.Context, doc *models.AdmissionDocument) error {
	return r.db.WithContext(ctx).Omit("Admission").Create(doc).Error
}

func (r *admissionRepository) ListDocuments(ctx context.Context, admissionID uint) ([]models.AdmissionDocument, error) {
	var docs []models.AdmissionDocument
	if err := r.db.WithContext(ctx).Where("admission_id = ?", admissionID).Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *admissionRepository) GetDocument(ctx context.Context, id uint) (models.AdmissionDocument, error) {
	var doc models.AdmissionDocument
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return models.AdmissionDocument{}, err
	}
	return doc, nil
}

func (r *admissionRepository) DeleteDocument(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AdmissionDocument{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
