package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// CourseService manages degree programmes.
type CourseService interface {
	List(ctx context.Context, status string) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, req dto.CourseCreateRequest, session Session) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, req dto.CourseUpdateRequest, session Session) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, status string) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, apperror.Persistence("list courses", err)
	}
	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}
	return responses, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, storeError("get course", "course", id, err)
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, req dto.CourseCreateRequest, session Session) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	course := models.Course{
		CourseCode:    strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		CourseName:    strings.TrimSpace(req.CourseName),
		Description:   strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		DurationYears: req.DurationYears,
		TotalCredits:  req.TotalCredits,
		Status:        status,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, apperror.Persistence("create course", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "course.created",
		EntityType: "course",
		EntityID:   &course.ID,
		Metadata:   map[string]interface{}{"course_code": course.CourseCode},
	})
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, req dto.CourseUpdateRequest, session Session) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, storeError("get course", "course", id, err)
	}

	if req.CourseName != nil {
		course.CourseName = strings.TrimSpace(*req.CourseName)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(s.sanitizer.Sanitize(*req.Description))
	}
	if req.DurationYears != nil {
		course.DurationYears = *req.DurationYears
	}
	if req.TotalCredits != nil {
		course.TotalCredits = *req.TotalCredits
	}
	if req.Status != nil {
		course.Status = *req.Status
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, apperror.Persistence("update course", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "course.updated",
		EntityType: "course",
		EntityID:   &course.ID,
	})
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, id uint, session Session) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return storeError("delete course", "course", id, err)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "course.deleted",
		EntityType: "course",
		EntityID:   &id,
	})
	return nil
}
