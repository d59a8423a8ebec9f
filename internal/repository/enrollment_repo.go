package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID *uint
	CourseID  *uint
	Status    string
}

// EnrollmentRepository manages course enrollments.
type EnrollmentRepository interface {
	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error)
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id uint) error
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Enrollment, error)
	SubjectIDsForStudent(ctx context.Context, studentID uint) ([]uint, error)
	CountStudentsForLecturer(ctx context.Context, lecturerID uint) (int64, error)
	ListForLecturer(ctx context.Context, lecturerID uint) ([]models.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Preload("Student").Preload("Course")
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var enrollments []models.Enrollment
	if err := query.Order("enrollment_date DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).Preload("Student").Preload("Course").First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Create(enrollment).Error
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Save(enrollment).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Enrollment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBySubject returns the enrollments of the course the subject belongs to,
// ordered by registration number.
func (r *enrollmentRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	db := r.db.WithContext(ctx)
	err := db.
		Model(&models.Enrollment{}).
		Preload("Student").
		Where("course_id = (?)", db.Model(&models.Subject{}).Select("course_id").Where("id = ?", subjectID)).
		Where("status <> ?", models.EnrollmentStatusDropped).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(enrollments, func(i, j int) bool {
		return enrollments[i].Student.RegistrationNumber < enrollments[j].Student.RegistrationNumber
	})
	return enrollments, nil
}

// SubjectIDsForStudent returns the subjects of every course the student is actively enrolled in.
func (r *enrollmentRepository) SubjectIDsForStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	db := r.db.WithContext(ctx)
	err := db.
		Model(&models.Subject{}).
		Where("course_id IN (?)", db.Model(&models.Enrollment{}).Select("course_id").
			Where("student_id = ? AND status = ?", studentID, models.EnrollmentStatusActive)).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountStudentsForLecturer counts distinct students enrolled in courses that
// hold at least one of the lecturer's subjects.
func (r *enrollmentRepository) CountStudentsForLecturer(ctx context.Context, lecturerID uint) (int64, error) {
	var total int64
	db := r.db.WithContext(ctx)
	err := db.
		Model(&models.Enrollment{}).
		Where("course_id IN (?)", db.Model(&models.Subject{}).Select("course_id").Where("lecturer_id = ?", lecturerID)).
		Where("status = ?", models.EnrollmentStatusActive).
		Distinct("student_id").
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListForLecturer returns the enrollments, dropped ones excluded, of every
// course holding at least one of the lecturer's subjects.
func (r *enrollmentRepository) ListForLecturer(ctx context.Context, lecturerID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	db := r.db.WithContext(ctx)
	err := db.
		Model(&models.Enrollment{}).
		Preload("Student").
		Preload("Course").
		Where("course_id IN (?)", db.Model(&models.Subject{}).Select("course_id").Where("lecturer_id = ?", lecturerID)).
		Where("status <> ?", models.EnrollmentStatusDropped).
		Order("enrollment_date ASC, id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
