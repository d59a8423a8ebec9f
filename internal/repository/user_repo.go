package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   string
	Search string
}

// UserRepository persists accounts together with their role profile.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	CreateWithProfile(ctx context.Context, user *models.User, profile interface{}) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	StudentByUserID(ctx context.Context, userID uint) (models.Student, error)
	LecturerByUserID(ctx context.Context, userID uint) (models.Lecturer, error)
	AdminByUserID(ctx context.Context, userID uint) (models.Admin, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the account repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern, pattern)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateWithProfile inserts the user and, in the same transaction, the profile
// row (*models.Student, *models.Lecturer or *models.Admin) with its UserID set.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User, profile interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		switch p := profile.(type) {
		case *models.Student:
			p.UserID = user.ID
			return tx.Omit("User").Create(p).Error
		case *models.Lecturer:
			p.UserID = user.ID
			return tx.Omit("User").Create(p).Error
		case *models.Admin:
			p.UserID = user.ID
			return tx.Omit("User").Create(p).Error
		default:
			return nil
		}
	})
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, profile := range []interface{}{&models.Student{}, &models.Lecturer{}, &models.Admin{}} {
			if err := tx.Where("user_id = ?", id).Delete(profile).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) StudentByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *userRepository) LecturerByUserID(ctx context.Context, userID uint) (models.Lecturer, error) {
	var lecturer models.Lecturer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&lecturer).Error; err != nil {
		return models.Lecturer{}, err
	}
	return lecturer, nil
}

func (r *userRepository) AdminByUserID(ctx context.Context, userID uint) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}
