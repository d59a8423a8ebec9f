package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/handler"
)

func admissionApp(svc *stubAdmissionService, enrollments *stubEnrollmentService) *fiber.App {
	app := fiber.New()
	h := handler.NewAdmissionHandler(svc, enrollments, zerolog.Nop())
	admin := withSession("admin", 1, "admin_id", 1)
	h.Register(app.Group("/api/v1/admissions"), passThrough, admin, passThrough)
	h.RegisterReconcile(app.Group("/api/v1/admin/admissions", admin))
	return app
}

func TestAdmissionHandlerSubmitValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := &stubAdmissionService{
		submit: func(req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error) {
			if err := validate.Struct(req); err != nil {
				return dto.AdmissionTrackResponse{}, err
			}
			return dto.AdmissionTrackResponse{ID: 1, ApplicationStatus: "pending"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admissions", strings.NewReader(`{"first_name":"Ada","email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := admissionApp(svc, &stubEnrollmentService{}).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.False(t, payload.Success)
	require.Contains(t, string(payload.Details), `"field":"email"`)
	require.Contains(t, string(payload.Details), `"field":"selected_course_id"`)
}

func TestAdmissionHandlerTrack(t *testing.T) {
	applied := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &stubAdmissionService{
		track: func(req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error) {
			if req.ID == 7 {
				return dto.AdmissionTrackResponse{ID: 7, ApplicationStatus: "under_review", AppliedDate: applied}, nil
			}
			return dto.AdmissionTrackResponse{}, apperror.NotFoundError{Entity: "admission", ID: req.ID}
		},
	}
	app := admissionApp(svc, &stubEnrollmentService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admissions/track?id=7", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(decodeEnvelope(t, resp).Data), `"application_status":"under_review"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admissions/track?id=8", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admissions/track?id=abc", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdmissionHandlerInvalidTransitionIsConflict(t *testing.T) {
	svc := &stubAdmissionService{
		changeStatus: func(id uint, req dto.AdmissionStatusRequest) (dto.AdmissionResponse, error) {
			return dto.AdmissionResponse{}, apperror.InvalidTransitionError{From: "rejected", To: req.ApplicationStatus}
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admissions/4/status", strings.NewReader(`{"application_status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := admissionApp(svc, &stubEnrollmentService{}).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "cannot transition from rejected to approved", decodeEnvelope(t, resp).Error)
}

func TestAdmissionHandlerReconcile(t *testing.T) {
	enrollments := &stubEnrollmentService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/admissions/reconcile", nil)
	resp, err := admissionApp(&stubAdmissionService{}, enrollments).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, enrollments.reconciled)
	require.Contains(t, string(decodeEnvelope(t, resp).Data), `"users_created":1`)
}
