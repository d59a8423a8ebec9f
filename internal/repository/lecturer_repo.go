package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// LecturerRepository manages lecturer profiles.
type LecturerRepository interface {
	List(ctx context.Context) ([]models.Lecturer, error)
	GetByID(ctx context.Context, id uint) (models.Lecturer, error)
	Update(ctx context.Context, lecturer *models.Lecturer) error
	Delete(ctx context.Context, id uint) error
}

type lecturerRepository struct {
	db *gorm.DB
}

// NewLecturerRepository constructs the lecturer repository.
func NewLecturerRepository(db *gorm.DB) LecturerRepository {
	return &lecturerRepository{db: db}
}

func (r *lecturerRepository) List(ctx context.Context) ([]models.Lecturer, error) {
	var lecturers []models.Lecturer
	if err := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&lecturers).Error; err != nil {
		return nil, err
	}
	return lecturers, nil
}

func (r *lecturerRepository) GetByID(ctx context.Context, id uint) (models.Lecturer, error) {
	var lecturer models.Lecturer
	if err := r.db.WithContext(ctx).First(&lecturer, id).Error; err != nil {
		return models.Lecturer{}, err
	}
	return lecturer, nil
}

func (r *lecturerRepository) Update(ctx context.Context, lecturer *models.Lecturer) error {
	return r.db.WithContext(ctx).Omit("User").Save(lecturer).Error
}

// Delete removes the lecturer and its account and leaves their subjects unassigned.
func (r *lecturerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lecturer models.Lecturer
		if err := tx.First(&lecturer, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Subject{}).Where("lecturer_id = ?", id).Update("lecturer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&lecturer).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, lecturer.UserID).Error
	})
}
