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

// SubjectService manages the subjects of a course and their lecturer.
type SubjectService interface {
	List(ctx context.Context, filter dto.SubjectFilter) ([]dto.SubjectResponse, error)
	Get(ctx context.Context, id uint) (dto.SubjectResponse, error)
	Create(ctx context.Context, req dto.SubjectCreateRequest, session Session) (dto.SubjectResponse, error)
	Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest, session Session) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	courses   repository.CourseRepository
	lecturers repository.LecturerRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(subjects repository.SubjectRepository, courses repository.CourseRepository, lecturers repository.LecturerRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) SubjectService {
	return &subjectService{
		subjects:  subjects,
		courses:   courses,
		lecturers: lecturers,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) List(ctx context.Context, filter dto.SubjectFilter) ([]dto.SubjectResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}
	subjects, err := s.subjects.List(ctx, repository.SubjectFilter{
		CourseID:   filter.CourseID,
		LecturerID: filter.LecturerID,
		Status:     filter.Status,
	})
	if err != nil {
		return nil, apperror.Persistence("list subjects", err)
	}
	return subjectResponses(subjects), nil
}

func (s *subjectService) Get(ctx context.Context, id uint) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, storeError("get subject", "subject", id, err)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Create(ctx context.Context, req dto.SubjectCreateRequest, session Session) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}
	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		return dto.SubjectResponse{}, storeError("get course", "course", req.CourseID, err)
	}
	if err := s.ensureLecturer(ctx, req.LecturerID); err != nil {
		return dto.SubjectResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	subject := models.Subject{
		CourseID:    req.CourseID,
		SubjectCode: strings.ToUpper(strings.TrimSpace(req.SubjectCode)),
		SubjectName: strings.TrimSpace(req.SubjectName),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		Credits:     req.Credits,
		Semester:    req.Semester,
		LecturerID:  req.LecturerID,
		Status:      status,
	}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, apperror.Persistence("create subject", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "subject.created",
		EntityType: "subject",
		EntityID:   &subject.ID,
		Metadata:   map[string]interface{}{"subject_code": subject.SubjectCode, "course_id": subject.CourseID},
	})
	return s.Get(ctx, subject.ID)
}

func (s *subjectService) Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest, session Session) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, storeError("get subject", "subject", id, err)
	}

	if req.SubjectName != nil {
		subject.SubjectName = strings.TrimSpace(*req.SubjectName)
	}
	if req.Description != nil {
		subject.Description = strings.TrimSpace(s.sanitizer.Sanitize(*req.Description))
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Status != nil {
		subject.Status = *req.Status
	}
	switch {
	case req.UnassignLecturer:
		subject.LecturerID = nil
	case req.LecturerID != nil:
		if err := s.ensureLecturer(ctx, req.LecturerID); err != nil {
			return dto.SubjectResponse{}, err
		}
		subject.LecturerID = req.LecturerID
	}

	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, apperror.Persistence("update subject", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "subject.updated",
		EntityType: "subject",
		EntityID:   &subject.ID,
		Metadata:   map[string]interface{}{"lecturer_id": subject.LecturerID},
	})
	return s.Get(ctx, subject.ID)
}

func (s *subjectService) Delete(ctx context.Context, id uint, session Session) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		return storeError("delete subject", "subject", id, err)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "subject.deleted",
		EntityType: "subject",
		EntityID:   &id,
	})
	return nil
}

func (s *subjectService) ensureLecturer(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.lecturers.GetByID(ctx, *id); err != nil {
		return storeError("get lecturer", "lecturer", *id, err)
	}
	return nil
}

func subjectResponses(subjects []models.Subject) []dto.SubjectResponse {
	responses := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, dto.NewSubjectResponse(subject))
	}
	return responses
}
