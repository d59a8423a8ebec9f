package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/admission"
	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AdmissionService runs the public application form and the admin review workflow.
type AdmissionService interface {
	Submit(ctx context.Context, req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error)
	Track(ctx context.Context, req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error)
	List(ctx context.Context, req dto.AdmissionListRequest) ([]dto.AdmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.AdmissionResponse, error)
	ChangeStatus(ctx context.Context, id uint, req dto.AdmissionStatusRequest, session Session) (dto.AdmissionResponse, error)
	UploadDocument(ctx context.Context, id uint, req dto.AdmissionDocumentRequest, file *multipart.FileHeader) (dto.AdmissionDocumentResponse, error)
	ListDocuments(ctx context.Context, id uint) ([]dto.AdmissionDocumentResponse, error)
	DeleteDocument(ctx context.Context, docID uint, session Session) error
}

type admissionService struct {
	admissions repository.AdmissionRepository
	courses    repository.CourseRepository
	validator  *validator.Validate
	intake     FileIntake
	sanitizer  *bluemonday.Policy
	activity   ActivityRecorder
	events     events.Publisher
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewAdmissionService constructs the admission service.
func NewAdmissionService(admissions repository.AdmissionRepository, courses repository.CourseRepository, validate *validator.Validate, intake FileIntake, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) AdmissionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &admissionService{
		admissions: admissions,
		courses:    courses,
		validator:  validate,
		intake:     intake,
		sanitizer:  bluemonday.StrictPolicy(),
		activity:   activity,
		events:     publisher,
		logger:     logger.With().Str("component", "admission_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/admission"),
		now:        time.Now,
	}
}

func (s *admissionService) Submit(ctx context.Context, req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdmissionTrackResponse{}, err
	}

	now := s.now()
	if req.YearOfCompletion > now.Year() {
		return dto.AdmissionTrackResponse{}, validation("year_of_completion", req.YearOfCompletion, "year of completion cannot be in the future")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return dto.AdmissionTrackResponse{}, validation("date_of_birth", req.DateOfBirth, "date of birth must be YYYY-MM-DD")
	}
	if !dob.Before(now) {
		return dto.AdmissionTrackResponse{}, validation("date_of_birth", req.DateOfBirth, "date of birth must be in the past")
	}

	course, err := s.courses.GetByID(ctx, req.SelectedCourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdmissionTrackResponse{}, validation("selected_course_id", req.SelectedCourseID, "selected course does not exist")
		}
		return dto.AdmissionTrackResponse{}, apperror.Persistence("get course", err)
	}
	if course.Status != models.StatusActive {
		return dto.AdmissionTrackResponse{}, validation("selected_course_id", req.SelectedCourseID, "selected course is not accepting applications")
	}

	record := models.Admission{
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:             strings.TrimSpace(req.Phone),
		DateOfBirth:       dob,
		Gender:            req.Gender,
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		Country:           strings.TrimSpace(req.Country),
		PreviousSchool:    strings.TrimSpace(req.PreviousSchool),
		Qualification:     req.Qualification,
		YearOfCompletion:  req.YearOfCompletion,
		SelectedCourseID:  course.ID,
		StudyMode:         req.StudyMode,
		ApplicationStatus: string(admission.StatusPending),
		AppliedDate:       now,
	}
	if err := s.admissions.Create(ctx, &record); err != nil {
		return dto.AdmissionTrackResponse{}, apperror.Persistence("create admission", err)
	}

	s.logger.Info().Uint("admission_id", record.ID).Uint("course_id", course.ID).Msg("admission submitted")

	record.SelectedCourse = course
	return dto.NewAdmissionTrackResponse(record), nil
}

func (s *admissionService) Track(ctx context.Context, req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdmissionTrackResponse{}, err
	}

	var (
		record models.Admission
		err    error
	)
	switch {
	case req.ID > 0:
		record, err = s.admissions.GetByID(ctx, req.ID)
		if err == nil && req.Email != "" && !strings.EqualFold(record.Email, strings.TrimSpace(req.Email)) {
			err = gorm.ErrRecordNotFound
		}
	case strings.TrimSpace(req.Email) != "":
		record, err = s.admissions.LatestByEmail(ctx, req.Email)
	default:
		return dto.AdmissionTrackResponse{}, validation("id", nil, "an application id or email is required")
	}
	if err != nil {
		key := interface{}(req.ID)
		if req.ID == 0 {
			key = req.Email
		}
		return dto.AdmissionTrackResponse{}, storeError("track admission", "admission", key, err)
	}

	return dto.NewAdmissionTrackResponse(record), nil
}

func (s *admissionService) List(ctx context.Context, req dto.AdmissionListRequest) ([]dto.AdmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	records, err := s.admissions.List(ctx, repository.AdmissionFilter{Status: req.Status, Search: req.Search})
	if err != nil {
		return nil, apperror.Persistence("list admissions", err)
	}
	responses := make([]dto.AdmissionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewAdmissionResponse(record))
	}
	return responses, nil
}

func (s *admissionService) Get(ctx context.Context, id uint) (dto.AdmissionResponse, error) {
	record, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return dto.AdmissionResponse{}, storeError("get admission", "admission", id, err)
	}
	return dto.NewAdmissionResponse(record), nil
}

// ChangeStatus applies an admin decision through the admission workflow and
// writes only the workflow columns.
func (s *admissionService) ChangeStatus(ctx context.Context, id uint, req dto.AdmissionStatusRequest, session Session) (dto.AdmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "admission.transition")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("admission.id", int64(id)),
		attribute.String("admission.to", req.ApplicationStatus),
	)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AdmissionResponse{}, err
	}
	to, err := admission.ParseStatus(req.ApplicationStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AdmissionResponse{}, err
	}

	record, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		err = storeError("get admission", "admission", id, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup_failed")
		return dto.AdmissionResponse{}, err
	}

	from := record.ApplicationStatus
	feedback := strings.TrimSpace(s.sanitizer.Sanitize(req.AdminFeedback))
	next, err := admission.Transition(record.Review(), to, session.UserID, feedback, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_transition")
		return dto.AdmissionResponse{}, err
	}

	record.ApplyReview(next)
	if err := s.admissions.UpdateReview(ctx, &record, from); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			err = apperror.InvalidTransitionError{From: from, To: string(to)}
		} else {
			err = storeError("update admission", "admission", id, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.AdmissionResponse{}, err
	}

	observability.AdmissionTransitions().WithLabelValues(string(to)).Inc()

	if err := s.events.Publish(ctx, events.SubjectAdmissionStatus, events.AdmissionStatusChanged{
		AdmissionID: record.ID,
		From:        from,
		To:          record.ApplicationStatus,
		ReviewedBy:  record.ReviewedBy,
		ChangedAt:   record.UpdatedAt,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("admission_id", record.ID).Msg("failed to publish admission event")
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "admission.status_changed",
		EntityType: "admission",
		EntityID:   &record.ID,
		Metadata: map[string]interface{}{
			"from":     from,
			"to":       record.ApplicationStatus,
			"feedback": record.AdminFeedback,
			"email":    record.Email,
		},
	})

	s.logger.Info().Uint("admission_id", record.ID).Str("from", from).Str("to", record.ApplicationStatus).Msg("admission status changed")
	return dto.NewAdmissionResponse(record), nil
}

func (s *admissionService) UploadDocument(ctx context.Context, id uint, req dto.AdmissionDocumentRequest, file *multipart.FileHeader) (dto.AdmissionDocumentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdmissionDocumentResponse{}, err
	}

	record, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return dto.AdmissionDocumentResponse{}, storeError("get admission", "admission", id, err)
	}
	if admission.Status(record.ApplicationStatus).Terminal() {
		return dto.AdmissionDocumentResponse{}, validation("admission_id", id, "documents cannot be added to a closed application")
	}

	stored, err := s.intake.Store(ctx, file)
	if err != nil {
		return dto.AdmissionDocumentResponse{}, err
	}

	doc := models.AdmissionDocument{
		AdmissionID:  record.ID,
		DocumentType: req.DocumentType,
		FileName:     stored.FileName,
		FileURL:      stored.URL,
		MimeType:     stored.MimeType,
		SizeBytes:    stored.SizeBytes,
		Checksum:     stored.Checksum,
	}
	if err := s.admissions.CreateDocument(ctx, &doc); err != nil {
		return dto.AdmissionDocumentResponse{}, apperror.Persistence("create document", err)
	}

	s.logger.Info().Uint("admission_id", record.ID).Str("document_type", doc.DocumentType).Msg("admission document uploaded")
	return dto.NewAdmissionDocumentResponse(doc), nil
}

func (s *admissionService) ListDocuments(ctx context.Context, id uint) ([]dto.AdmissionDocumentResponse, error) {
	if _, err := s.admissions.GetByID(ctx, id); err != nil {
		return nil, storeError("get admission", "admission", id, err)
	}
	docs, err := s.admissions.ListDocuments(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("list documents", err)
	}
	responses := make([]dto.AdmissionDocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.NewAdmissionDocumentResponse(doc))
	}
	return responses, nil
}

func (s *admissionService) DeleteDocument(ctx context.Context, docID uint, session Session) error {
	doc, err := s.admissions.GetDocument(ctx, docID)
	if err != nil {
		return storeError("get document", "document", docID, err)
	}
	if err := s.admissions.DeleteDocument(ctx, docID); err != nil {
		return storeError("delete document", "document", docID, err)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "admission.document_deleted",
		EntityType: "admission_document",
		EntityID:   &doc.ID,
		Metadata:   map[string]interface{}{"admission_id": doc.AdmissionID, "document_type": doc.DocumentType},
	})
	return nil
}
