package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"success": true, "message": "login successful",
				"data": map[string]interface{}{"token": "abc", "user": map[string]interface{}{"user_id": 3, "email": "ada@example.com"}},
			})
		case "/api/v1/auth/me":
			if r.Header.Get("Authorization") != "Bearer abc" {
				writeEnvelope(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "error": "missing authorization header", "message": "missing authorization header"})
				return
			}
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "message": "profile retrieved", "data": map[string]interface{}{"user_id": 3, "email": "ada@example.com"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := New(server.URL + "/")
	_, err := c.Me(context.Background())
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))

	auth, err := c.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "abc", auth.Token)

	profile, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint(3), profile.UserID)
}

func TestAPIErrorCarriesDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success": false,
			"error":   "validation failed",
			"message": "validation failed",
			"details": []map[string]interface{}{{"field": "email", "message": "must be a valid email address"}},
		})
	}))
	defer server.Close()

	_, err := New(server.URL).SubmitAdmission(context.Background(), dto.AdmissionCreateRequest{FirstName: "Ada"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "validation failed", apiErr.Message)
	require.Contains(t, string(apiErr.Details), "email")
}

func TestTrackAdmissionQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/admissions/track", r.URL.Path)
		require.Equal(t, "12", r.URL.Query().Get("id"))
		require.Equal(t, "ada@example.com", r.URL.Query().Get("email"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "message": "application found", "data": map[string]interface{}{"id": 12, "application_status": "pending"}})
	}))
	defer server.Close()

	track, err := New(server.URL).TrackAdmission(context.Background(), dto.AdmissionTrackRequest{ID: 12, Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, uint(12), track.ID)
	require.Equal(t, "pending", track.ApplicationStatus)
}

func TestTemplateDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/grading/subjects/4/template.csv" {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = io.WriteString(w, "\"subject_id\",\"student_registration_number\",\"assignment_percentage\",\"exam_percentage\"\n")
			return
		}
		writeEnvelope(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "subject not found", "message": "subject not found"})
	}))
	defer server.Close()

	c := New(server.URL, WithToken("t"))
	body, err := c.Template(context.Background(), 4, "csv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "\"subject_id\""))

	_, err = c.Template(context.Background(), 5, "csv")
	require.Equal(t, http.StatusNotFound, StatusCode(err))
	require.Contains(t, err.Error(), "subject not found")
}

func TestClientDrivesBulkApplier(t *testing.T) {
	var (
		mu       sync.Mutex
		received []dto.GradeSaveRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/grading/subjects/9/grades", r.URL.Path)
		require.Equal(t, "Bearer lecturer-token", r.Header.Get("Authorization"))

		var req dto.GradeSaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		received = append(received, req)
		mu.Unlock()

		if req.StudentID == 2 {
			writeEnvelope(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "internal server error", "message": "internal server error"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "message": "grade saved", "data": map[string]interface{}{"student_id": req.StudentID, "subject_id": 9}})
	}))
	defer server.Close()

	c := New(server.URL, WithToken("lecturer-token"))
	applier := grading.NewBulkApplier(c)

	var progress []grading.Progress
	result := applier.Apply(context.Background(), 9, []grading.Record{
		{StudentID: 1, AssignmentGradePercentage: 80, ExamPercentage: 70},
		{StudentID: 2, AssignmentGradePercentage: 60, ExamPercentage: 50},
		{StudentID: 3, AssignmentGradePercentage: 90, ExamPercentage: 95},
	}, func(p grading.Progress) { progress = append(progress, p) })

	require.Equal(t, 2, result.Completed)
	require.Equal(t, 3, result.Total)
	require.Len(t, result.Errors, 1)
	require.Equal(t, uint(2), result.Errors[0].StudentID)
	require.Len(t, progress, 3)

	require.Len(t, received, 3)
	require.Equal(t, "", received[0].GradeLetter)
	require.False(t, received[0].DryRun)
	require.InDelta(t, 70, *received[0].ExamPercentage, 0.001)
}

func TestKnownStudentsFromRoster(t *testing.T) {
	roster := dto.SubjectRosterResponse{Students: []dto.RosterEntry{
		{StudentID: 4, RegistrationNumber: "REG202500004"},
		{StudentID: 7, RegistrationNumber: "REG202500007"},
	}}

	known := KnownStudents(roster)
	require.Equal(t, []grading.KnownStudent{
		{StudentID: 4, RegistrationNumber: "REG202500004"},
		{StudentID: 7, RegistrationNumber: "REG202500007"},
	}, known)
}

func TestLecturerStudentsSearchQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/lecturer/students", r.URL.Path)
		require.Equal(t, "REG2024", r.URL.Query().Get("search"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "message": "students retrieved", "data": []map[string]interface{}{
			{"student_id": 4, "registration_number": "REG2024004", "average_score": 71.5, "courses_enrolled": 2},
			{"student_id": 5, "registration_number": "REG2024005", "average_score": nil, "courses_enrolled": 1},
		}})
	}))
	defer server.Close()

	students, err := New(server.URL).LecturerStudents(context.Background(), "REG2024")
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.InDelta(t, 71.5, *students[0].AverageScore, 0.0001)
	require.Nil(t, students[1].AverageScore)
}
