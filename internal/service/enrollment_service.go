package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-go-api/internal/admission"
	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

const (
	enrollmentLogEnrolled = "Enrolled"
	enrollmentLogPending  = "Pending Enrollment"
)

// EnrollmentService manages enrollments and repairs approved admissions that
// never became students.
type EnrollmentService interface {
	List(ctx context.Context, filter dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error)
	Create(ctx context.Context, req dto.EnrollmentCreateRequest, session Session) (dto.EnrollmentResponse, error)
	Update(ctx context.Context, id uint, req dto.EnrollmentUpdateRequest, session Session) (dto.EnrollmentResponse, error)
	Delete(ctx context.Context, id uint, session Session) error
	Reconcile(ctx context.Context, session Session) (dto.ReconcileResult, error)
	EnrollmentLog(ctx context.Context) ([]dto.EnrollmentLogEntry, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	admissions  repository.AdmissionRepository
	students    repository.StudentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      events.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
	password    func() (string, error)
}

// EnrollmentDependencies groups the repositories the enrollment service reads.
type EnrollmentDependencies struct {
	Enrollments repository.EnrollmentRepository
	Admissions  repository.AdmissionRepository
	Students    repository.StudentRepository
	Courses     repository.CourseRepository
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(deps EnrollmentDependencies, validate *validator.Validate, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) EnrollmentService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &enrollmentService{
		enrollments: deps.Enrollments,
		admissions:  deps.Admissions,
		students:    deps.Students,
		courses:     deps.Courses,
		validator:   validate,
		activity:    activity,
		events:      publisher,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/enrollment"),
		now:         time.Now,
		password:    randomPasswordHash,
	}
}

func (s *enrollmentService) List(ctx context.Context, filter dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}
	records, err := s.enrollments.List(ctx, repository.EnrollmentFilter{
		StudentID: filter.StudentID,
		CourseID:  filter.CourseID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, apperror.Persistence("list enrollments", err)
	}
	responses := make([]dto.EnrollmentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewEnrollmentResponse(record))
	}
	return responses, nil
}

func (s *enrollmentService) Create(ctx context.Context, req dto.EnrollmentCreateRequest, session Session) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		return dto.EnrollmentResponse{}, storeError("get student", "student", req.StudentID, err)
	}
	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		return dto.EnrollmentResponse{}, storeError("get course", "course", req.CourseID, err)
	}

	existing, err := s.enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &req.StudentID, CourseID: &req.CourseID})
	if err != nil {
		return dto.EnrollmentResponse{}, apperror.Persistence("list enrollments", err)
	}
	if len(existing) > 0 {
		return dto.EnrollmentResponse{}, validation("course_id", req.CourseID, "student is already enrolled in this course")
	}

	status := req.Status
	if status == "" {
		status = models.EnrollmentStatusActive
	}
	record := models.Enrollment{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		EnrollmentDate: s.now(),
		Status:         status,
	}
	if err := s.enrollments.Create(ctx, &record); err != nil {
		return dto.EnrollmentResponse{}, apperror.Persistence("create enrollment", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "enrollment.created",
		EntityType: "enrollment",
		EntityID:   &record.ID,
		Metadata:   map[string]interface{}{"student_id": record.StudentID, "course_id": record.CourseID},
	})

	return s.reload(ctx, record.ID)
}

func (s *enrollmentService) Update(ctx context.Context, id uint, req dto.EnrollmentUpdateRequest, session Session) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}
	record, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return dto.EnrollmentResponse{}, storeError("get enrollment", "enrollment", id, err)
	}
	from := record.Status
	record.Status = req.Status
	if err := s.enrollments.Update(ctx, &record); err != nil {
		return dto.EnrollmentResponse{}, apperror.Persistence("update enrollment", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "enrollment.updated",
		EntityType: "enrollment",
		EntityID:   &record.ID,
		Metadata:   map[string]interface{}{"from": from, "to": record.Status},
	})
	return dto.NewEnrollmentResponse(record), nil
}

func (s *enrollmentService) Delete(ctx context.Context, id uint, session Session) error {
	if err := s.enrollments.Delete(ctx, id); err != nil {
		return storeError("delete enrollment", "enrollment", id, err)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "enrollment.deleted",
		EntityType: "enrollment",
		EntityID:   &id,
	})
	return nil
}

func (s *enrollmentService) reload(ctx context.Context, id uint) (dto.EnrollmentResponse, error) {
	record, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return dto.EnrollmentResponse{}, storeError("get enrollment", "enrollment", id, err)
	}
	return dto.NewEnrollmentResponse(record), nil
}

// Reconcile walks approved and completed admissions and creates whatever user,
// student or enrollment row is missing. Each admission is handled in its own
// transaction; one failure never stops the rest. Running it twice creates
// nothing the second time.
func (s *enrollmentService) Reconcile(ctx context.Context, session Session) (dto.ReconcileResult, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.reconcile")
	defer span.End()

	records, err := s.admissions.List(ctx, repository.AdmissionFilter{
		Statuses: []string{string(admission.StatusApproved), string(admission.StatusCompleted)},
	})
	if err != nil {
		err = apperror.Persistence("list admissions", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_failed")
		return dto.ReconcileResult{}, err
	}

	result := dto.ReconcileResult{Errors: []string{}}
	for i, record := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, skipped := range records[i:] {
				result.Errors = append(result.Errors, fmt.Sprintf("admission %d: %v", skipped.ID, ctxErr))
			}
			break
		}
		result.Checked++

		outcome, changed, err := s.reconcileOne(ctx, record)
		if err != nil {
			s.logger.Warn().Err(err).Uint("admission_id", record.ID).Msg("reconcile admission failed")
			result.Errors = append(result.Errors, fmt.Sprintf("admission %d: %v", record.ID, err))
			continue
		}
		if outcome.UserCreated {
			result.UsersCreated++
			observability.EnrollmentsReconciled().WithLabelValues("user").Inc()
		}
		if outcome.StudentCreated {
			result.StudentsLinked++
			observability.EnrollmentsReconciled().WithLabelValues("student").Inc()
		}
		if outcome.EnrollmentCreated {
			result.Enrollments++
			observability.EnrollmentsReconciled().WithLabelValues("enrollment").Inc()
		}
		if changed {
			result.Completed++
		}
	}

	span.SetAttributes(
		attribute.Int("reconcile.checked", result.Checked),
		attribute.Int("reconcile.errors", len(result.Errors)),
	)

	if err := s.events.Publish(ctx, events.SubjectEnrollments, events.EnrollmentsReconciled{
		Checked:     result.Checked,
		Users:       result.UsersCreated,
		Enrollments: result.Enrollments,
		Completed:   result.Completed,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish reconcile event")
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "admissions.reconciled",
		EntityType: "admission",
		Metadata: map[string]interface{}{
			"checked":     result.Checked,
			"users":       result.UsersCreated,
			"students":    result.StudentsLinked,
			"enrollments": result.Enrollments,
			"completed":   result.Completed,
			"errors":      len(result.Errors),
		},
	})

	s.logger.Info().
		Int("checked", result.Checked).
		Int("enrollments", result.Enrollments).
		Int("completed", result.Completed).
		Int("errors", len(result.Errors)).
		Msg("admission reconciliation finished")

	return result, nil
}

func (s *enrollmentService) reconcileOne(ctx context.Context, record models.Admission) (repository.ReconcileOutcome, bool, error) {
	now := s.now()
	next, changed, err := admission.Complete(record.Review(), now)
	if err != nil {
		return repository.ReconcileOutcome{}, false, err
	}
	record.ApplyReview(next)

	hash, err := s.password()
	if err != nil {
		return repository.ReconcileOutcome{}, false, err
	}

	outcome, err := s.admissions.Reconcile(ctx, repository.ReconcileInput{
		Admission:          record,
		PasswordHash:       hash,
		RegistrationNumber: RegistrationNumber(record.ID, now),
		Now:                now,
	})
	if err != nil {
		return repository.ReconcileOutcome{}, false, err
	}
	return outcome, changed, nil
}

// EnrollmentLog lists every approved or completed admission with whether a
// student profile exists for it.
func (s *enrollmentService) EnrollmentLog(ctx context.Context) ([]dto.EnrollmentLogEntry, error) {
	records, err := s.admissions.List(ctx, repository.AdmissionFilter{
		Statuses: []string{string(admission.StatusApproved), string(admission.StatusCompleted)},
	})
	if err != nil {
		return nil, apperror.Persistence("list admissions", err)
	}

	ids := make([]uint, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	students, err := s.admissions.StudentsForAdmissions(ctx, ids)
	if err != nil {
		return nil, apperror.Persistence("students for admissions", err)
	}

	entries := make([]dto.EnrollmentLogEntry, 0, len(records))
	for _, record := range records {
		entry := dto.EnrollmentLogEntry{
			AdmissionID:       record.ID,
			Name:              record.FirstName + " " + record.LastName,
			Email:             record.Email,
			CourseName:        record.SelectedCourse.CourseName,
			ApplicationStatus: record.ApplicationStatus,
			ReviewedDate:      record.ReviewedDate,
			EnrollmentStatus:  enrollmentLogPending,
		}
		if student, ok := students[record.ID]; ok {
			id := student.ID
			entry.StudentID = &id
			entry.RegistrationNumber = student.RegistrationNumber
			entry.EnrollmentStatus = enrollmentLogEnrolled
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RegistrationNumber builds the number assigned to a student created from an admission.
func RegistrationNumber(admissionID uint, now time.Time) string {
	return fmt.Sprintf("REG%d%05d", now.Year(), admissionID)
}

func randomPasswordHash() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return HashPassword(hex.EncodeToString(buf))
}
