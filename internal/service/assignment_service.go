package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter, session Session) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, session Session) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, session Session) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	subjects    repository.SubjectRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, subjects repository.SubjectRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:        repo,
		subjects:    subjects,
		enrollments: enrollments,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter, session Session) ([]dto.AssignmentResponse, error) {
	repoFilter := repository.AssignmentFilter{
		SubjectID:  filter.SubjectID,
		LecturerID: filter.LecturerID,
	}

	studentID := filter.StudentID
	if session.IsStudent() {
		studentID = session.StudentID
		if studentID == nil {
			return []dto.AssignmentResponse{}, nil
		}
	}
	if studentID != nil {
		subjectIDs, err := s.enrollments.SubjectIDsForStudent(ctx, *studentID)
		if err != nil {
			return nil, apperror.Persistence("list student subjects", err)
		}
		if len(subjectIDs) == 0 {
			return []dto.AssignmentResponse{}, nil
		}
		repoFilter.SubjectIDs = subjectIDs
	}

	assignments, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, apperror.Persistence("list assignments", err)
	}

	now := s.now()
	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment, now))
	}
	return responses, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, storeError("get assignment", "assignment", id, err)
	}
	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, session Session) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, payload.SubjectID)
	if err != nil {
		return dto.AssignmentResponse{}, storeError("get subject", "subject", payload.SubjectID, err)
	}
	if err := ownsSubject(session, subject); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !payload.DueDate.After(s.now()) {
		return dto.AssignmentResponse{}, validation("due_date", payload.DueDate, "due date must be in the future")
	}

	kind := payload.AssignmentType
	if kind == "" {
		kind = models.AssignmentTypeHomework
	}
	totalMarks := payload.TotalMarks
	if totalMarks <= 0 {
		totalMarks = 100
	}

	assignment := models.Assignment{
		SubjectID:      subject.ID,
		LecturerID:     subject.LecturerID,
		Title:          strings.TrimSpace(payload.Title),
		Description:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		AssignmentType: kind,
		TotalMarks:     totalMarks,
		DueDate:        payload.DueDate,
	}
	if session.LecturerID != nil {
		assignment.LecturerID = session.LecturerID
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, apperror.Persistence("create assignment", err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("subject_id", subject.ID).Msg("assignment created")

	assignment.Subject = subject
	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, session Session) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, storeError("get assignment", "assignment", id, err)
	}
	if err := ownsSubject(session, assignment.Subject); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.AssignmentType != nil {
		assignment.AssignmentType = *payload.AssignmentType
	}
	if payload.TotalMarks != nil {
		assignment.TotalMarks = *payload.TotalMarks
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, apperror.Persistence("update assignment", err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, session Session) error {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError("get assignment", "assignment", id, err)
	}
	if err := ownsSubject(session, assignment.Subject); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete assignment", "assignment", id, err)
	}
	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

// ownsSubject lets admins through and restricts lecturers to their own subjects.
func ownsSubject(session Session, subject models.Subject) error {
	if session.IsAdmin() {
		return nil
	}
	if session.IsLecturer() && session.LecturerID != nil && subject.LecturerID != nil && *subject.LecturerID == *session.LecturerID {
		return nil
	}
	return fmt.Errorf("subject %d: %w", subject.ID, ErrForbidden)
}
