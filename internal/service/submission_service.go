package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter, session Session) ([]dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, session Session) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, id uint, payload dto.SubmissionGradeRequest, session Session) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	intake      FileIntake
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, intake FileIntake, activity ActivityRecorder, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		enrollments: enrollments,
		validator:   validate,
		intake:      intake,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter, session Session) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		LecturerID:   filter.LecturerID,
		SubjectID:    filter.SubjectID,
		Status:       filter.Status,
	}
	switch {
	case session.IsStudent():
		if session.StudentID == nil {
			return []dto.SubmissionResponse{}, nil
		}
		repoFilter.StudentID = session.StudentID
	case session.IsLecturer():
		repoFilter.LecturerID = session.LecturerID
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, apperror.Persistence("list submissions", err)
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}
	return responses, nil
}

// Create stores a student's submission. Submitting again before grading
// replaces the earlier answer; late submissions are accepted and flagged.
func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader, session Session) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !session.IsStudent() || session.StudentID == nil {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	studentID := *session.StudentID

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.SubmissionText))
	if file == nil && text == "" {
		return dto.SubmissionResponse{}, validation("file", nil, "a file or submission text is required")
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, storeError("get assignment", "assignment", payload.AssignmentID, err)
	}

	subjectIDs, err := s.enrollments.SubjectIDsForStudent(ctx, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, apperror.Persistence("list student subjects", err)
	}
	if !containsUint(subjectIDs, assignment.SubjectID) {
		return dto.SubmissionResponse{}, fmt.Errorf("not enrolled in subject %d: %w", assignment.SubjectID, ErrForbidden)
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, apperror.Persistence("get submission", err)
	}
	if exists && submission.IsGraded() {
		return dto.SubmissionResponse{}, validation("assignment_id", assignment.ID, "submission has already been graded")
	}

	now := s.now()
	submission.AssignmentID = assignment.ID
	submission.StudentID = studentID
	submission.SubmissionText = text
	submission.SubmissionDate = now
	submission.IsLate = assignment.IsPastDue(now)
	submission.Status = models.SubmissionStatusSubmitted

	if file != nil {
		stored, err := s.intake.Store(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileURL = stored.URL
		submission.FileName = stored.FileName
	}

	if exists {
		err = s.submissions.Update(ctx, &submission)
	} else {
		err = s.submissions.Create(ctx, &submission)
	}
	if err != nil {
		return dto.SubmissionResponse{}, apperror.Persistence("save submission", err)
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, storeError("get submission", "submission", submission.ID, err)
	}

	s.logger.Info().Uint("submission_id", created.ID).Bool("late", created.IsLate).Msg("submission stored")
	return dto.NewSubmissionResponse(created), nil
}

// Grade records marks and derives the assignment percentage and a letter preview.
func (s *submissionService) Grade(ctx context.Context, id uint, payload dto.SubmissionGradeRequest, session Session) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, storeError("get submission", "submission", id, err)
	}
	if err := ownsSubject(session, submission.Assignment.Subject); err != nil {
		return dto.SubmissionResponse{}, err
	}

	total := submission.Assignment.TotalMarks
	if payload.MarksObtained > total {
		return dto.SubmissionResponse{}, validation("marks_obtained", payload.MarksObtained,
			fmt.Sprintf("marks obtained cannot exceed total marks (%g)", total))
	}

	marks := payload.MarksObtained
	percentage := grading.AssignmentPercentage(marks, total)
	gradedAt := s.now()
	gradedBy := session.UserID

	submission.MarksObtained = &marks
	submission.AssignmentPercentage = &percentage
	submission.GradeLetter = string(grading.LetterGrade(percentage))
	submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.GradedBy = &gradedBy

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, apperror.Persistence("grade submission", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "submission.graded",
		EntityType: "submission",
		EntityID:   &submission.ID,
		Metadata: map[string]interface{}{
			"assignment_id": submission.AssignmentID,
			"student_id":    submission.StudentID,
			"marks":         marks,
			"percentage":    percentage,
		},
	})

	return dto.NewSubmissionResponse(submission), nil
}

func containsUint(values []uint, target uint) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
