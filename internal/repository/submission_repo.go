package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SubmissionFilter describes filters when listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	StudentIDs   []uint
	LecturerID   *uint
	SubjectID    *uint
	Status       *string
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student").Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student").Save(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Assignment").Preload("Assignment.Subject").Preload("Student").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Submission{}).Preload("Assignment").Preload("Student")

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.StudentIDs != nil {
		if len(filter.StudentIDs) == 0 {
			return []models.Submission{}, nil
		}
		query = query.Where("student_id IN ?", filter.StudentIDs)
	}
	if filter.SubjectID != nil {
		query = query.Where("assignment_id IN (?)", db.Model(&models.Assignment{}).Select("id").Where("subject_id = ?", *filter.SubjectID))
	}
	if filter.LecturerID != nil {
		subjects := db.Model(&models.Subject{}).Select("id").Where("lecturer_id = ?", *filter.LecturerID)
		query = query.Where("assignment_id IN (?)", db.Model(&models.Assignment{}).Select("id").Where("subject_id IN (?)", subjects))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submission_date DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
