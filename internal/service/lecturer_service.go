package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// LecturerService manages lecturer profiles.
type LecturerService interface {
	List(ctx context.Context) ([]dto.LecturerResponse, error)
	Create(ctx context.Context, req dto.LecturerCreateRequest, session Session) (dto.LecturerResponse, error)
	Update(ctx context.Context, id uint, req dto.LecturerUpdateRequest, session Session) (dto.LecturerResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
}

type lecturerService struct {
	lecturers repository.LecturerRepository
	users     UserService
	userRepo  repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewLecturerService constructs the lecturer service. Account creation goes
// through the user service so the user and profile rows stay in step.
func NewLecturerService(lecturers repository.LecturerRepository, users UserService, userRepo repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) LecturerService {
	return &lecturerService{
		lecturers: lecturers,
		users:     users,
		userRepo:  userRepo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "lecturer_service").Logger(),
	}
}

func (s *lecturerService) List(ctx context.Context) ([]dto.LecturerResponse, error) {
	lecturers, err := s.lecturers.List(ctx)
	if err != nil {
		return nil, apperror.Persistence("list lecturers", err)
	}
	responses := make([]dto.LecturerResponse, 0, len(lecturers))
	for _, lecturer := range lecturers {
		responses = append(responses, dto.NewLecturerResponse(lecturer))
	}
	return responses, nil
}

func (s *lecturerService) Create(ctx context.Context, req dto.LecturerCreateRequest, session Session) (dto.LecturerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LecturerResponse{}, err
	}

	user, err := s.users.Create(ctx, dto.UserCreateRequest{
		Email:          req.Email,
		Password:       req.Password,
		Role:           models.RoleLecturer,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		EmployeeID:     req.EmployeeID,
		Department:     req.Department,
		Specialization: req.Specialization,
	}, session)
	if err != nil {
		return dto.LecturerResponse{}, err
	}

	lecturer, err := s.userRepo.LecturerByUserID(ctx, user.ID)
	if err != nil {
		return dto.LecturerResponse{}, storeError("get lecturer", "lecturer", user.ID, err)
	}
	return dto.NewLecturerResponse(lecturer), nil
}

func (s *lecturerService) Update(ctx context.Context, id uint, req dto.LecturerUpdateRequest, session Session) (dto.LecturerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LecturerResponse{}, err
	}

	lecturer, err := s.lecturers.GetByID(ctx, id)
	if err != nil {
		return dto.LecturerResponse{}, storeError("get lecturer", "lecturer", id, err)
	}

	if req.FirstName != nil {
		lecturer.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		lecturer.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		lecturer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Department != nil {
		lecturer.Department = strings.TrimSpace(*req.Department)
	}
	if req.Specialization != nil {
		lecturer.Specialization = strings.TrimSpace(*req.Specialization)
	}
	if req.Status != nil {
		lecturer.Status = *req.Status
	}

	if err := s.lecturers.Update(ctx, &lecturer); err != nil {
		return dto.LecturerResponse{}, apperror.Persistence("update lecturer", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "lecturer.updated",
		EntityType: "lecturer",
		EntityID:   &lecturer.ID,
	})
	return dto.NewLecturerResponse(lecturer), nil
}

// Delete removes the lecturer; their subjects become unassigned.
func (s *lecturerService) Delete(ctx context.Context, id uint, session Session) error {
	if err := s.lecturers.Delete(ctx, id); err != nil {
		return storeError("delete lecturer", "lecturer", id, err)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "lecturer.deleted",
		EntityType: "lecturer",
		EntityID:   &id,
	})
	return nil
}
