package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Meta    json.RawMessage `json:"meta"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

// withSession injects the locals the JWT middleware would set.
func withSession(role string, userID uint, profile string, profileID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		if profile != "" {
			c.Locals(profile, profileID)
		}
		return c.Next()
	}
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

type stubGradingService struct {
	preview     func(subjectID uint, req dto.GradeSaveRequest) (dto.GradePreviewResponse, error)
	save        func(subjectID uint, req dto.GradeSaveRequest, session service.Session) (dto.SubjectGradeResponse, error)
	bulkCSV     func(subjectID uint, body string, session service.Session) (dto.BulkGradeResponse, error)
	bulkRecords func(subjectID uint, req dto.BulkGradeRequest) (dto.BulkGradeResponse, error)
	template    func(subjectID uint, format string) (service.TemplateFile, error)
	lastSession service.Session
}

func (s *stubGradingService) LecturerSubjects(_ context.Context, session service.Session) ([]dto.SubjectResponse, error) {
	s.lastSession = session
	return []dto.SubjectResponse{}, nil
}

func (s *stubGradingService) Roster(context.Context, uint, service.Session) (dto.SubjectRosterResponse, error) {
	return dto.SubjectRosterResponse{}, nil
}

func (s *stubGradingService) Preview(_ context.Context, subjectID uint, req dto.GradeSaveRequest) (dto.GradePreviewResponse, error) {
	return s.preview(subjectID, req)
}

func (s *stubGradingService) SaveGrade(_ context.Context, subjectID uint, req dto.GradeSaveRequest, session service.Session) (dto.SubjectGradeResponse, error) {
	s.lastSession = session
	return s.save(subjectID, req, session)
}

func (s *stubGradingService) BulkCSV(_ context.Context, subjectID uint, r io.Reader, session service.Session) (dto.BulkGradeResponse, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}
	return s.bulkCSV(subjectID, string(body), session)
}

func (s *stubGradingService) BulkXLSX(context.Context, uint, io.Reader, service.Session) (dto.BulkGradeResponse, error) {
	return dto.BulkGradeResponse{}, nil
}

func (s *stubGradingService) BulkRecords(_ context.Context, subjectID uint, req dto.BulkGradeRequest, _ service.Session) (dto.BulkGradeResponse, error) {
	return s.bulkRecords(subjectID, req)
}

func (s *stubGradingService) Template(_ context.Context, subjectID uint, format string, _ service.Session) (service.TemplateFile, error) {
	return s.template(subjectID, format)
}

func (s *stubGradingService) StudentGrades(context.Context, service.Session) (dto.StudentGradesResponse, error) {
	return dto.StudentGradesResponse{}, nil
}

func (s *stubGradingService) Transcript(context.Context, service.Session) (service.TemplateFile, error) {
	return service.TemplateFile{Name: "transcript.csv", ContentType: "text/csv", Data: []byte("\"Subject Name\"\n")}, nil
}

func (s *stubGradingService) Writer(service.Session) grading.GradeWriter {
	return grading.GradeWriterFunc(func(context.Context, grading.GradeInput) error { return nil })
}

type stubAdmissionService struct {
	submit       func(req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error)
	track        func(req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error)
	changeStatus func(id uint, req dto.AdmissionStatusRequest) (dto.AdmissionResponse, error)
}

func (s *stubAdmissionService) Submit(_ context.Context, req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error) {
	return s.submit(req)
}

func (s *stubAdmissionService) Track(_ context.Context, req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error) {
	return s.track(req)
}

func (s *stubAdmissionService) List(context.Context, dto.AdmissionListRequest) ([]dto.AdmissionResponse, error) {
	return []dto.AdmissionResponse{}, nil
}

func (s *stubAdmissionService) Get(context.Context, uint) (dto.AdmissionResponse, error) {
	return dto.AdmissionResponse{}, nil
}

func (s *stubAdmissionService) ChangeStatus(_ context.Context, id uint, req dto.AdmissionStatusRequest, _ service.Session) (dto.AdmissionResponse, error) {
	return s.changeStatus(id, req)
}

func (s *stubAdmissionService) UploadDocument(context.Context, uint, dto.AdmissionDocumentRequest, *multipart.FileHeader) (dto.AdmissionDocumentResponse, error) {
	return dto.AdmissionDocumentResponse{}, nil
}

func (s *stubAdmissionService) ListDocuments(context.Context, uint) ([]dto.AdmissionDocumentResponse, error) {
	return []dto.AdmissionDocumentResponse{}, nil
}

func (s *stubAdmissionService) DeleteDocument(context.Context, uint, service.Session) error {
	return nil
}

type stubEnrollmentService struct {
	reconciled int
}

func (s *stubEnrollmentService) List(context.Context, dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error) {
	return []dto.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) Create(context.Context, dto.EnrollmentCreateRequest, service.Session) (dto.EnrollmentResponse, error) {
	return dto.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) Update(context.Context, uint, dto.EnrollmentUpdateRequest, service.Session) (dto.EnrollmentResponse, error) {
	return dto.EnrollmentResponse{}, nil
}

func (s *stubEnrollmentService) Delete(context.Context, uint, service.Session) error {
	return nil
}

func (s *stubEnrollmentService) Reconcile(context.Context, service.Session) (dto.ReconcileResult, error) {
	s.reconciled++
	return dto.ReconcileResult{Checked: 2, UsersCreated: 1, Completed: 2, Errors: []string{}}, nil
}

func (s *stubEnrollmentService) EnrollmentLog(context.Context) ([]dto.EnrollmentLogEntry, error) {
	return []dto.EnrollmentLogEntry{}, nil
}
