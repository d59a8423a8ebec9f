package service

import (
	"context"
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
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// ReportService builds the admin reports.
type ReportService interface {
	Generate(ctx context.Context, req dto.ReportRequest) (dto.ReportResponse, error)
}

type reportService struct {
	reports    repository.ReportRepository
	admissions repository.AdmissionRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(reports repository.ReportRepository, admissions repository.AdmissionRepository, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		reports:    reports,
		admissions: admissions,
		validator:  validate,
		logger:     logger.With().Str("component", "report_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/report"),
		now:        time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, req dto.ReportRequest) (dto.ReportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReportResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "report.generate")
	defer span.End()
	span.SetAttributes(attribute.String("report.type", req.Type))

	var (
		rows interface{}
		err  error
	)
	switch req.Type {
	case dto.ReportEnrollment:
		rows, err = s.enrollment(ctx)
	case dto.ReportGrades:
		rows, err = s.grades(ctx)
	case dto.ReportAssignments:
		rows, err = s.assignments(ctx)
	case dto.ReportAdmissions:
		rows, err = s.admissionCounts(ctx)
	default:
		err = validation("type", req.Type, "unknown report type")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_failed")
		return dto.ReportResponse{}, err
	}

	return dto.ReportResponse{Type: req.Type, GeneratedAt: s.now().UTC(), Rows: rows}, nil
}

func (s *reportService) enrollment(ctx context.Context) ([]dto.EnrollmentReportRow, error) {
	stats, err := s.reports.EnrollmentByCourse(ctx)
	if err != nil {
		return nil, apperror.Persistence("enrollment report", err)
	}
	rows := make([]dto.EnrollmentReportRow, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, dto.EnrollmentReportRow{
			CourseID:   stat.CourseID,
			CourseCode: stat.CourseCode,
			CourseName: stat.CourseName,
			Active:     stat.Active,
			Completed:  stat.Completed,
			Dropped:    stat.Dropped,
			Suspended:  stat.Suspended,
			Total:      stat.Total,
		})
	}
	return rows, nil
}

func (s *reportService) grades(ctx context.Context) ([]dto.GradeReportRow, error) {
	stats, err := s.reports.GradesBySubject(ctx)
	if err != nil {
		return nil, apperror.Persistence("grade report", err)
	}
	rows := make([]dto.GradeReportRow, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, dto.GradeReportRow{
			SubjectID:       stat.SubjectID,
			SubjectCode:     stat.SubjectCode,
			SubjectName:     stat.SubjectName,
			Graded:          stat.Graded,
			AverageFinal:    round1Ptr(stat.AverageFinal),
			HighestFinal:    round1Ptr(stat.HighestFinal),
			LowestFinal:     round1Ptr(stat.LowestFinal),
			FailingStudents: stat.Failing,
		})
	}
	return rows, nil
}

func (s *reportService) assignments(ctx context.Context) ([]dto.AssignmentReportRow, error) {
	stats, err := s.reports.AssignmentStats(ctx)
	if err != nil {
		return nil, apperror.Persistence("assignment report", err)
	}
	rows := make([]dto.AssignmentReportRow, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, dto.AssignmentReportRow{
			AssignmentID: stat.AssignmentID,
			Title:        stat.Title,
			SubjectCode:  stat.SubjectCode,
			DueDate:      stat.DueDate,
			Submissions:  stat.Submissions,
			Late:         stat.Late,
			Graded:       stat.Graded,
			AverageScore: round1Ptr(stat.AveragePct),
		})
	}
	return rows, nil
}

// admissionCounts lists every status in workflow order, zero counts included.
func (s *reportService) admissionCounts(ctx context.Context) ([]dto.AdmissionReportRow, error) {
	counts, err := s.admissions.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Persistence("admission report", err)
	}
	rows := make([]dto.AdmissionReportRow, 0, len(admission.Statuses))
	for _, status := range admission.Statuses {
		rows = append(rows, dto.AdmissionReportRow{Status: string(status), Count: counts[string(status)]})
	}
	return rows, nil
}

func round1Ptr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	rounded := grading.Round1(*value)
	return &rounded
}
