package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// Template formats.
const (
	TemplateCSV  = "csv"
	TemplateXLSX = "xlsx"
)

// TemplateFile is a generated download.
type TemplateFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// BulkRejectedError carries the parse errors of a rejected bulk file.
type BulkRejectedError struct {
	Errors []apperror.ValidationError
}

func (e BulkRejectedError) Error() string {
	if len(e.Errors) == 0 {
		return "bulk upload rejected"
	}
	return e.Errors[0].Error()
}

func (e BulkRejectedError) Is(target error) bool {
	return target == apperror.ErrValidation
}

// Messages lists the error messages in order.
func (e BulkRejectedError) Messages() []string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return messages
}

// GradingService covers the lecturer grading page, bulk upload and student grades.
type GradingService interface {
	LecturerSubjects(ctx context.Context, session Session) ([]dto.SubjectResponse, error)
	Roster(ctx context.Context, subjectID uint, session Session) (dto.SubjectRosterResponse, error)
	Preview(ctx context.Context, subjectID uint, req dto.GradeSaveRequest) (dto.GradePreviewResponse, error)
	SaveGrade(ctx context.Context, subjectID uint, req dto.GradeSaveRequest, session Session) (dto.SubjectGradeResponse, error)
	BulkCSV(ctx context.Context, subjectID uint, r io.Reader, session Session) (dto.BulkGradeResponse, error)
	BulkXLSX(ctx context.Context, subjectID uint, r io.Reader, session Session) (dto.BulkGradeResponse, error)
	BulkRecords(ctx context.Context, subjectID uint, req dto.BulkGradeRequest, session Session) (dto.BulkGradeResponse, error)
	Template(ctx context.Context, subjectID uint, format string, session Session) (TemplateFile, error)
	StudentGrades(ctx context.Context, session Session) (dto.StudentGradesResponse, error)
	Transcript(ctx context.Context, session Session) (TemplateFile, error)
	Writer(session Session) grading.GradeWriter
}

type gradingService struct {
	subjects    repository.SubjectRepository
	enrollments repository.EnrollmentRepository
	grades      repository.GradeRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      events.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// GradingDependencies groups the repositories used by the grading service.
type GradingDependencies struct {
	Subjects    repository.SubjectRepository
	Enrollments repository.EnrollmentRepository
	Grades      repository.GradeRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
}

// NewGradingService constructs the grading service.
func NewGradingService(deps GradingDependencies, validate *validator.Validate, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) GradingService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &gradingService{
		subjects:    deps.Subjects,
		enrollments: deps.Enrollments,
		grades:      deps.Grades,
		assignments: deps.Assignments,
		submissions: deps.Submissions,
		validator:   validate,
		activity:    activity,
		events:      publisher,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) LecturerSubjects(ctx context.Context, session Session) ([]dto.SubjectResponse, error) {
	filter := repository.SubjectFilter{}
	if !session.IsAdmin() {
		if session.LecturerID == nil {
			return []dto.SubjectResponse{}, nil
		}
		filter.LecturerID = session.LecturerID
	}
	subjects, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("list subjects", err)
	}
	return subjectResponses(subjects), nil
}

func (s *gradingService) Roster(ctx context.Context, subjectID uint, session Session) (dto.SubjectRosterResponse, error) {
	subject, err := s.ownedSubject(ctx, subjectID, session)
	if err != nil {
		return dto.SubjectRosterResponse{}, err
	}

	enrollments, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return dto.SubjectRosterResponse{}, apperror.Persistence("list roster", err)
	}
	grades, err := s.grades.ListBySubject(ctx, subjectID)
	if err != nil {
		return dto.SubjectRosterResponse{}, apperror.Persistence("list grades", err)
	}
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{SubjectID: &subjectID})
	if err != nil {
		return dto.SubjectRosterResponse{}, apperror.Persistence("list submissions", err)
	}
	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{SubjectID: &subjectID})
	if err != nil {
		return dto.SubjectRosterResponse{}, apperror.Persistence("list assignments", err)
	}

	gradeByStudent := make(map[uint]models.SubjectGrade, len(grades))
	for _, grade := range grades {
		gradeByStudent[grade.StudentID] = grade
	}
	submissionsByStudent := make(map[uint][]dto.SubmissionResponse)
	for _, submission := range submissions {
		submissionsByStudent[submission.StudentID] = append(submissionsByStudent[submission.StudentID], dto.NewSubmissionResponse(submission))
	}

	students := make([]dto.RosterEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		entry := dto.RosterEntry{
			StudentID:          enrollment.StudentID,
			RegistrationNumber: enrollment.Student.RegistrationNumber,
			FirstName:          enrollment.Student.FirstName,
			LastName:           enrollment.Student.LastName,
			Email:              enrollment.Student.Email,
			EnrollmentStatus:   enrollment.Status,
			Submissions:        submissionsByStudent[enrollment.StudentID],
		}
		if entry.Submissions == nil {
			entry.Submissions = []dto.SubmissionResponse{}
		}
		var assignmentPct, examPct *float64
		if grade, ok := gradeByStudent[enrollment.StudentID]; ok {
			response := dto.NewSubjectGradeResponse(grade)
			entry.Grade = &response
			assignmentPct, examPct = grade.AssignmentGradePercentage, grade.ExamPercentage
		}
		preview, letter := grading.Preview(assignmentPct, examPct)
		entry.PreviewPercentage = grading.Round1(preview)
		entry.PreviewLetter = string(letter)
		students = append(students, entry)
	}

	now := s.now()
	assignmentResponses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentResponses = append(assignmentResponses, dto.NewAssignmentResponse(assignment, now))
	}

	return dto.SubjectRosterResponse{
		Subject:     dto.NewSubjectResponse(subject),
		Students:    students,
		Assignments: assignmentResponses,
	}, nil
}

// Preview computes the final percentage and authoritative letter without
// storing anything. A missing component yields a null percentage and no letter.
func (s *gradingService) Preview(ctx context.Context, subjectID uint, req dto.GradeSaveRequest) (dto.GradePreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GradePreviewResponse{}, err
	}
	if err := checkSubjectMatch(subjectID, req.SubjectID); err != nil {
		return dto.GradePreviewResponse{}, err
	}

	final := grading.FinalFromComponents(req.AssignmentGradePercentage, req.ExamPercentage)
	response := dto.GradePreviewResponse{FinalPercentage: final}
	if final != nil {
		response.GradeLetter = string(s.letterFor(ctx, *final))
	}
	return response, nil
}

func (s *gradingService) SaveGrade(ctx context.Context, subjectID uint, req dto.GradeSaveRequest, session Session) (dto.SubjectGradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.save")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.subject_id", int64(subjectID)),
		attribute.Int64("grading.student_id", int64(req.StudentID)),
	)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubjectGradeResponse{}, err
	}
	if err := checkSubjectMatch(subjectID, req.SubjectID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subject_mismatch")
		return dto.SubjectGradeResponse{}, err
	}
	if _, err := s.ownedSubject(ctx, subjectID, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subject_denied")
		return dto.SubjectGradeResponse{}, err
	}
	if err := s.ensureOnRoster(ctx, subjectID, req.StudentID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_not_enrolled")
		return dto.SubjectGradeResponse{}, err
	}

	grade, err := s.persist(ctx, gradeChange{
		StudentID:      req.StudentID,
		SubjectID:      subjectID,
		AssignmentPct:  req.AssignmentGradePercentage,
		ExamMarks:      req.ExamMarks,
		ExamPct:        req.ExamPercentage,
		SubmittedGrade: grading.Letter(strings.TrimSpace(req.GradeLetter)),
	}, session, "single")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.SubjectGradeResponse{}, err
	}

	span.SetAttributes(attribute.String("grading.letter", grade.GradeLetter))
	return dto.NewSubjectGradeResponse(grade), nil
}

func (s *gradingService) BulkCSV(ctx context.Context, subjectID uint, r io.Reader, session Session) (dto.BulkGradeResponse, error) {
	return s.bulkFromFile(ctx, subjectID, session, "csv", func(known []grading.KnownStudent) grading.ParseResult {
		return grading.ParseBulkCSV(r, subjectID, known)
	})
}

func (s *gradingService) BulkXLSX(ctx context.Context, subjectID uint, r io.Reader, session Session) (dto.BulkGradeResponse, error) {
	return s.bulkFromFile(ctx, subjectID, session, "xlsx", func(known []grading.KnownStudent) grading.ParseResult {
		return grading.ParseBulkXLSX(r, subjectID, known)
	})
}

// BulkRecords applies inline-table records. Unknown students and
// out-of-range values reject the whole batch before anything is written.
// Repeated rows for a student collapse to the last one, and students listed
// in Remove are dropped, as in the inline editor.
func (s *gradingService) BulkRecords(ctx context.Context, subjectID uint, req dto.BulkGradeRequest, session Session) (dto.BulkGradeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BulkGradeResponse{}, err
	}
	if _, err := s.ownedSubject(ctx, subjectID, session); err != nil {
		return dto.BulkGradeResponse{}, err
	}
	known, err := s.knownStudents(ctx, subjectID)
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}
	onRoster := make(map[uint]struct{}, len(known))
	for _, student := range known {
		onRoster[student.StudentID] = struct{}{}
	}

	var rejected []apperror.ValidationError
	for i, record := range req.Records {
		if _, ok := onRoster[record.StudentID]; !ok {
			rejected = append(rejected, apperror.ValidationError{Field: "student_id", Row: i + 1, Value: record.StudentID,
				Message: "Student ID " + uintString(record.StudentID) + " is not enrolled in this subject"})
			continue
		}
		if outOfRange(record.AssignmentGradePercentage) || outOfRange(record.ExamPercentage) {
			rejected = append(rejected, apperror.ValidationError{Field: "percentage", Row: i + 1,
				Message: "Percentages must be between 0 and 100 for student ID " + uintString(record.StudentID)})
		}
	}
	if len(rejected) > 0 {
		observability.BulkGradeRecords().WithLabelValues("rejected").Add(float64(len(req.Records)))
		return dto.BulkGradeResponse{Total: len(req.Records), Errors: []grading.RecordError{}, ParseErrors: BulkRejectedError{Errors: rejected}.Messages()},
			BulkRejectedError{Errors: rejected}
	}

	registrations := make(map[uint]string, len(known))
	for _, student := range known {
		registrations[student.StudentID] = student.RegistrationNumber
	}
	table := grading.NewTable()
	for _, record := range req.Records {
		table.SetAssignment(record.StudentID, registrations[record.StudentID], record.AssignmentGradePercentage)
		table.SetExam(record.StudentID, "", record.ExamPercentage)
	}
	for _, id := range req.Remove {
		table.Remove(id)
	}
	if table.Len() == 0 {
		return dto.BulkGradeResponse{Errors: []grading.RecordError{}}, nil
	}

	return s.apply(ctx, subjectID, table.Records(), session, "table"), nil
}

func (s *gradingService) bulkFromFile(ctx context.Context, subjectID uint, session Session, source string, parse func([]grading.KnownStudent) grading.ParseResult) (dto.BulkGradeResponse, error) {
	if _, err := s.ownedSubject(ctx, subjectID, session); err != nil {
		return dto.BulkGradeResponse{}, err
	}
	known, err := s.knownStudents(ctx, subjectID)
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}

	parsed := parse(known)
	if !parsed.OK() {
		rejected := BulkRejectedError{Errors: parsed.Errors}
		observability.BulkGradeRecords().WithLabelValues("rejected").Inc()
		s.logger.Info().Uint("subject_id", subjectID).Str("source", source).Str("reason", rejected.Error()).Msg("bulk grade file rejected")
		return dto.BulkGradeResponse{Errors: []grading.RecordError{}, ParseErrors: rejected.Messages()}, rejected
	}

	return s.apply(ctx, subjectID, parsed.Records, session, source), nil
}

func (s *gradingService) apply(ctx context.Context, subjectID uint, records []grading.Record, session Session, source string) dto.BulkGradeResponse {
	ctx, span := s.tracer.Start(ctx, "grading.bulk_apply")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.subject_id", int64(subjectID)),
		attribute.Int("grading.records", len(records)),
		attribute.String("grading.source", source),
	)

	applier := grading.NewBulkApplier(s.Writer(session))
	result := applier.Apply(ctx, subjectID, records, func(p grading.Progress) {
		s.logger.Debug().Uint("subject_id", subjectID).Int("completed", p.Completed).Int("attempted", p.Attempted).Int("total", p.Total).Msg("bulk grade progress")
	})

	observability.BulkGradeRecords().WithLabelValues("applied").Add(float64(result.Completed))
	observability.BulkGradeRecords().WithLabelValues("failed").Add(float64(len(result.Errors)))
	span.SetAttributes(attribute.Int("grading.completed", result.Completed))
	if len(result.Errors) > 0 {
		span.SetStatus(codes.Error, "partial_failure")
	}

	if err := s.events.Publish(ctx, events.SubjectGradesBulk, events.BulkGradesApplied{
		SubjectID: subjectID,
		Source:    source,
		Completed: result.Completed,
		Total:     result.Total,
		Failed:    len(result.Errors),
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish bulk grade event")
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Session:    session,
		Action:     "grades.bulk_uploaded",
		EntityType: "subject",
		EntityID:   &subjectID,
		Metadata: map[string]interface{}{
			"source":    source,
			"completed": result.Completed,
			"total":     result.Total,
			"failed":    len(result.Errors),
		},
	})

	s.logger.Info().Uint("subject_id", subjectID).Int("completed", result.Completed).Int("total", result.Total).Msg("bulk grades applied")
	return dto.NewBulkGradeResponse(result)
}

// Writer returns a GradeWriter that stores grades on behalf of session.
// Inputs come from the bulk path, which always carries both components.
func (s *gradingService) Writer(session Session) grading.GradeWriter {
	return grading.GradeWriterFunc(func(ctx context.Context, input grading.GradeInput) error {
		assignmentPct := input.AssignmentGradePercentage
		examPct := input.ExamPercentage
		examMarks := input.ExamMarks
		_, err := s.persist(ctx, gradeChange{
			StudentID:      input.StudentID,
			SubjectID:      input.SubjectID,
			AssignmentPct:  &assignmentPct,
			ExamMarks:      &examMarks,
			ExamPct:        &examPct,
			SubmittedGrade: input.GradeLetter,
		}, session, "bulk")
		return err
	})
}

type gradeChange struct {
	StudentID      uint
	SubjectID      uint
	AssignmentPct  *float64
	ExamMarks      *float64
	ExamPct        *float64
	SubmittedGrade grading.Letter
}

// persist computes the final percentage and letter and upserts the grade.
// With both components present the stored letter is the authoritative one;
// otherwise the grade stays a draft carrying any valid submitted letter.
func (s *gradingService) persist(ctx context.Context, change gradeChange, session Session, source string) (models.SubjectGrade, error) {
	final := grading.FinalFromComponents(change.AssignmentPct, change.ExamPct)

	grade := models.SubjectGrade{
		StudentID:                 change.StudentID,
		SubjectID:                 change.SubjectID,
		AssignmentGradePercentage: change.AssignmentPct,
		ExamMarks:                 change.ExamMarks,
		ExamPercentage:            change.ExamPct,
		FinalPercentage:           final,
		GradeStatus:               models.GradeStatusDraft,
	}

	if final != nil {
		authoritative := s.letterFor(ctx, *final)
		letter := grading.Reconcile(change.SubmittedGrade, authoritative)
		if change.SubmittedGrade != "" && change.SubmittedGrade != letter {
			s.logger.Debug().Str("submitted", string(change.SubmittedGrade)).Str("stored", string(letter)).Msg("submitted letter replaced by authoritative letter")
		}
		grade.GradeLetter = string(letter)
		grade.GradeStatus = models.GradeStatusFinalized
	} else if change.SubmittedGrade.Valid() {
		grade.GradeLetter = string(change.SubmittedGrade)
	}

	now := s.now()
	grade.GradedAt = &now
	if session.UserID > 0 {
		gradedBy := session.UserID
		grade.GradedBy = &gradedBy
	}

	if err := s.grades.Upsert(ctx, &grade); err != nil {
		return models.SubjectGrade{}, apperror.Persistence("save grade", err)
	}

	observability.GradesSaved().WithLabelValues(source).Inc()
	if err := s.events.Publish(ctx, events.SubjectGradeSaved, events.GradeSaved{
		StudentID:       grade.StudentID,
		SubjectID:       grade.SubjectID,
		FinalPercentage: grade.FinalPercentage,
		GradeLetter:     grade.GradeLetter,
		GradedBy:        grade.GradedBy,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish grade event")
	}

	if source == "single" {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Session:    session,
			Action:     "grade.saved",
			EntityType: "subject_grade",
			EntityID:   &grade.ID,
			Metadata: map[string]interface{}{
				"student_id":   grade.StudentID,
				"subject_id":   grade.SubjectID,
				"grade_letter": grade.GradeLetter,
				"grade_status": grade.GradeStatus,
			},
		})
	}

	return grade, nil
}

// letterFor asks the grade band table first and falls back to the built-in
// thresholds when no band matches or the lookup fails.
func (s *gradingService) letterFor(ctx context.Context, final float64) grading.Letter {
	letter, err := s.grades.LetterFor(ctx, final)
	if err == nil && grading.Letter(letter).Valid() {
		return grading.Letter(letter)
	}

	observability.GradeLetterFallbacks().Inc()
	event := s.logger.Warn().Float64("final_percentage", final)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		event = event.Err(err)
	}
	event.Msg("grade band lookup missed, using built-in thresholds")
	return grading.LetterGrade(final)
}

func (s *gradingService) Template(ctx context.Context, subjectID uint, format string, session Session) (TemplateFile, error) {
	subject, err := s.ownedSubject(ctx, subjectID, session)
	if err != nil {
		return TemplateFile{}, err
	}

	enrollments, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return TemplateFile{}, apperror.Persistence("list roster", err)
	}
	grades, err := s.grades.ListBySubject(ctx, subjectID)
	if err != nil {
		return TemplateFile{}, apperror.Persistence("list grades", err)
	}
	gradeByStudent := make(map[uint]models.SubjectGrade, len(grades))
	for _, grade := range grades {
		gradeByStudent[grade.StudentID] = grade
	}

	rows := make([]grading.TemplateRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := grading.TemplateRow{SubjectID: subjectID, RegistrationNumber: enrollment.Student.RegistrationNumber}
		if grade, ok := gradeByStudent[enrollment.StudentID]; ok {
			row.AssignmentPercentage = grade.AssignmentGradePercentage
			row.ExamPercentage = grade.ExamPercentage
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	file := TemplateFile{}
	switch format {
	case TemplateXLSX:
		err = grading.WriteTemplateXLSX(&buf, rows)
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		format = TemplateCSV
		err = grading.WriteTemplate(&buf, rows)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return TemplateFile{}, err
	}

	file.Name = grading.TemplateFilename(subject.SubjectCode, subject.ID, format)
	file.Data = buf.Bytes()
	return file, nil
}

func (s *gradingService) StudentGrades(ctx context.Context, session Session) (dto.StudentGradesResponse, error) {
	grades, rows, err := s.studentRows(ctx, session)
	if err != nil {
		return dto.StudentGradesResponse{}, err
	}

	responses := make([]dto.StudentGradeResponse, 0, len(grades))
	for _, grade := range grades {
		letter := grading.Letter(grade.GradeLetter)
		response := dto.StudentGradeResponse{
			SubjectID:       grade.SubjectID,
			SubjectCode:     grade.Subject.SubjectCode,
			SubjectName:     grade.Subject.SubjectName,
			Credits:         grade.Subject.Credits,
			Semester:        grade.Subject.Semester,
			FinalPercentage: grade.FinalPercentage,
			GradeLetter:     grade.GradeLetter,
			GradeStatus:     grade.GradeStatus,
			UpdatedAt:       grade.UpdatedAt,
		}
		if letter.Valid() {
			response.GradePoints = grading.GradePoints(letter)
		}
		responses = append(responses, response)
	}

	gpa, credits := grading.GPA(rows)
	return dto.StudentGradesResponse{Grades: responses, GPA: gpa, TotalCredits: credits}, nil
}

func (s *gradingService) Transcript(ctx context.Context, session Session) (TemplateFile, error) {
	_, rows, err := s.studentRows(ctx, session)
	if err != nil {
		return TemplateFile{}, err
	}

	var buf bytes.Buffer
	if err := grading.WriteTranscript(&buf, rows); err != nil {
		return TemplateFile{}, err
	}
	return TemplateFile{
		Name:        "transcript_" + uintString(*session.StudentID) + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func (s *gradingService) studentRows(ctx context.Context, session Session) ([]models.SubjectGrade, []grading.TranscriptRow, error) {
	if session.StudentID == nil {
		return nil, nil, ErrForbidden
	}
	grades, err := s.grades.ListByStudent(ctx, *session.StudentID)
	if err != nil {
		return nil, nil, apperror.Persistence("list grades", err)
	}

	rows := make([]grading.TranscriptRow, 0, len(grades))
	for _, grade := range grades {
		rows = append(rows, grading.TranscriptRow{
			SubjectName:     grade.Subject.SubjectName,
			SubjectCode:     grade.Subject.SubjectCode,
			Credits:         grade.Subject.Credits,
			Letter:          grading.Letter(grade.GradeLetter),
			FinalPercentage: grade.FinalPercentage,
			Date:            grade.UpdatedAt,
		})
	}
	return grades, rows, nil
}

func (s *gradingService) ownedSubject(ctx context.Context, subjectID uint, session Session) (models.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return models.Subject{}, storeError("get subject", "subject", subjectID, err)
	}
	if err := ownsSubject(session, subject); err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (s *gradingService) knownStudents(ctx context.Context, subjectID uint) ([]grading.KnownStudent, error) {
	enrollments, err := s.enrollments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, apperror.Persistence("list roster", err)
	}
	known := make([]grading.KnownStudent, 0, len(enrollments))
	for _, enrollment := range enrollments {
		known = append(known, grading.KnownStudent{
			StudentID:          enrollment.StudentID,
			RegistrationNumber: enrollment.Student.RegistrationNumber,
		})
	}
	return known, nil
}

func (s *gradingService) ensureOnRoster(ctx context.Context, subjectID, studentID uint) error {
	known, err := s.knownStudents(ctx, subjectID)
	if err != nil {
		return err
	}
	for _, student := range known {
		if student.StudentID == studentID {
			return nil
		}
	}
	return apperror.NotFoundError{Entity: "enrolled student", ID: studentID}
}

func checkSubjectMatch(pathSubjectID, bodySubjectID uint) error {
	if bodySubjectID != 0 && bodySubjectID != pathSubjectID {
		return apperror.ValidationError{Field: "subject_id", Value: bodySubjectID, Message: "subject_id does not match the subject being graded"}
	}
	return nil
}

func outOfRange(pct float64) bool {
	return pct < 0 || pct > 100
}
