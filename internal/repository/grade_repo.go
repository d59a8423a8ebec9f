package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// GradeRepository stores subject grades and the letter lookup table.
type GradeRepository interface {
	Get(ctx context.Context, studentID, subjectID uint) (models.SubjectGrade, error)
	Upsert(ctx context.Context, grade *models.SubjectGrade) error
	ListBySubject(ctx context.Context, subjectID uint) ([]models.SubjectGrade, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.SubjectGrade, error)
	AveragesForLecturer(ctx context.Context, lecturerID uint) (map[uint]float64, error)
	LetterFor(ctx context.Context, percentage float64) (string, error)
	SeedBands(ctx context.Context, bands []models.GradeBand) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs the grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Get(ctx context.Context, studentID, subjectID uint) (models.SubjectGrade, error) {
	var grade models.SubjectGrade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		First(&grade).Error
	if err != nil {
		return models.SubjectGrade{}, err
	}
	return grade, nil
}

// Upsert creates the grade or overwrites the existing one for the same
// student and subject.
func (r *gradeRepository) Upsert(ctx context.Context, grade *models.SubjectGrade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SubjectGrade
		err := tx.Where("student_id = ? AND subject_id = ?", grade.StudentID, grade.SubjectID).First(&existing).Error
		switch {
		case err == nil:
			grade.ID = existing.ID
			grade.CreatedAt = existing.CreatedAt
			return tx.Omit("Student", "Subject").Save(grade).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Omit("Student", "Subject").Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "student_id"}, {Name: "subject_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"assignment_grade_percentage", "exam_marks", "exam_percentage",
					"final_percentage", "grade_letter", "grade_status", "graded_by", "graded_at", "updated_at",
				}),
			}).Create(grade).Error
		default:
			return err
		}
	})
}

func (r *gradeRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.SubjectGrade, error) {
	var grades []models.SubjectGrade
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *gradeRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.SubjectGrade, error) {
	var grades []models.SubjectGrade
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}
	return grades, nil
}

// AveragesForLecturer returns each student's mean final percentage over the
// lecturer's subjects. Grades without a final percentage are skipped.
func (r *gradeRepository) AveragesForLecturer(ctx context.Context, lecturerID uint) (map[uint]float64, error) {
	var rows []struct {
		StudentID uint
		Average   float64
	}
	db := r.db.WithContext(ctx)
	err := db.
		Model(&models.SubjectGrade{}).
		Select("student_id, AVG(final_percentage) AS average").
		Where("final_percentage IS NOT NULL").
		Where("subject_id IN (?)", db.Model(&models.Subject{}).Select("id").Where("lecturer_id = ?", lecturerID)).
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	averages := make(map[uint]float64, len(rows))
	for _, row := range rows {
		averages[row.StudentID] = row.Average
	}
	return averages, nil
}

// LetterFor looks the letter up in grade_bands. It returns
// gorm.ErrRecordNotFound when no band covers the percentage.
func (r *gradeRepository) LetterFor(ctx context.Context, percentage float64) (string, error) {
	var band models.GradeBand
	err := r.db.WithContext(ctx).
		Where("min_percentage <= ?", percentage).
		Order("min_percentage DESC").
		Limit(1).
		Take(&band).Error
	if err != nil {
		return "", err
	}
	return band.Letter, nil
}

func (r *gradeRepository) SeedBands(ctx context.Context, bands []models.GradeBand) error {
	if len(bands) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "letter"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_percentage", "grade_points"}),
	}).Create(&bands).Error
}
