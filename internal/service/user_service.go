package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// UserService manages accounts for administrators.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, req dto.UserCreateRequest, session Session) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, req dto.UserUpdateRequest, session Session) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
}

type userService struct {
	users     repository.UserRepository
	students  repository.StudentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, students repository.StudentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		students:  students,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) ([]dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, repository.UserFilter{Role: req.Role, Search: req.Search})
	if err != nil {
		return nil, apperror.Persistence("list users", err)
	}
	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, storeError("get user", "user", id, err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, req dto.UserCreateRequest, session Session) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, apperror.Persistence("lookup user", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Status:       models.StatusActive,
	}

	var profile interface{}
	switch req.Role {
	case models.RoleStudent:
		registration := strings.TrimSpace(req.RegistrationNumber)
		if registration == "" {
			return dto.UserResponse{}, validation("registration_number", "", "registration_number is required for students")
		}
		if _, err := s.students.GetByRegistrationNumber(ctx, registration); err == nil {
			return dto.UserResponse{}, validation("registration_number", registration, "registration number "+registration+" is already assigned")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, apperror.Persistence("lookup student", err)
		}
		profile = &models.Student{
			RegistrationNumber: registration,
			FirstName:          user.FirstName,
			LastName:           user.LastName,
			Email:              email,
			Phone:              req.Phone,
			Status:             models.StatusActive,
		}
	case models.RoleLecturer:
		employeeID := strings.TrimSpace(req.EmployeeID)
		if employeeID == "" {
			return dto.UserResponse{}, validation("employee_id", "", "employee_id is required for lecturers")
		}
		profile = &models.Lecturer{
			EmployeeID:     employeeID,
			FirstName:      user.FirstName,
			LastName:       user.LastName,
			Email:          email,
			Phone:          req.Phone,
			Department:     req.Department,
			Specialization: req.Specialization,
			Status:         models.StatusActive,
		}
	case models.RoleAdmin:
		profile = &models.Admin{FirstName: user.FirstName, LastName: user.LastName, Email: email}
	}

	if err := s.users.CreateWithProfile(ctx, &user, profile); err != nil {
		return dto.UserResponse{}, apperror.Persistence("create user", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "user.created",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"role": user.Role, "email": user.Email},
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, req dto.UserUpdateRequest, session Session) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, storeError("get user", "user", id, err)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, apperror.Persistence("update user", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"password_changed": req.Password != nil},
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint, session Session) error {
	if session.UserID == id {
		return validation("id", id, "administrators cannot delete their own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError("delete user", "user", id, err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "user.deleted",
		EntityType: "user",
		EntityID:   &id,
	})
	s.logger.Info().Uint("user_id", id).Uint("actor_id", session.UserID).Msg("user deleted")
	return nil
}
