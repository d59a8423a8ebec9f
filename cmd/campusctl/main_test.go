package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/dto"
)

func fakeAPI(t *testing.T, saved *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/grading/subjects/9":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true, "message": "roster retrieved",
				"data": map[string]interface{}{
					"students": []map[string]interface{}{
						{"student_id": 4, "registration_number": "REG202500004"},
						{"student_id": 7, "registration_number": "REG202500007"},
					},
				},
			})
		case "/api/v1/grading/subjects/9/grades":
			var req dto.GradeSaveRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.StudentID == 7 {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "internal server error", "message": "internal server error"})
				return
			}
			atomic.AddInt32(saved, 1)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "grade saved", "data": map[string]interface{}{"student_id": req.StudentID}})
		case "/api/v1/grading/subjects/9/template.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("\"subject_id\",\"student_registration_number\",\"assignment_percentage\",\"exam_percentage\"\n"))
		case "/api/v1/lecturer/students":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true, "message": "students retrieved",
				"data": []map[string]interface{}{
					{"student_id": 4, "registration_number": "REG202500004", "first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com", "courses_enrolled": 2, "average_score": 81.5},
					{"student_id": 7, "registration_number": "REG202500007", "first_name": "Alan", "last_name": "Turing", "email": "alan@example.com", "courses_enrolled": 1, "average_score": nil},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "not found", "message": "not found"})
		}
	}))
}

func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(config.Config{APIBaseURL: baseURL})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGradesUploadAppliesEveryRecord(t *testing.T) {
	var saved int32
	server := fakeAPI(t, &saved)
	defer server.Close()

	file := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"subject_id,student_registration_number,assignment_percentage,exam_percentage\n"+
			"9,REG202500004,80,70\n"+
			"9,REG202500007,60,50\n"), 0o600))

	out, err := run(t, server.URL, "grades", "upload", "--subject", "9", "--file", file)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&saved))
	require.Contains(t, out, "1 of 2 grades saved")
	require.Contains(t, out, "Error uploading grade for student ID 7")
}

func TestGradesUploadRejectsBadFileBeforeSaving(t *testing.T) {
	var saved int32
	server := fakeAPI(t, &saved)
	defer server.Close()

	file := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"subject_id,student_registration_number,assignment_percentage,exam_percentage\n"+
			"9,REG202500004,80,70\n"+
			"3,REG202500007,60,50\n"), 0o600))

	out, err := run(t, server.URL, "grades", "upload", "--subject", "9", "--file", file)
	require.EqualError(t, err, "grade file rejected")
	require.Zero(t, atomic.LoadInt32(&saved))
	require.Contains(t, out, "Subject ID mismatch at row 3")
}

func TestGradesTemplateWritesFile(t *testing.T) {
	var saved int32
	server := fakeAPI(t, &saved)
	defer server.Close()

	target := filepath.Join(t.TempDir(), "subject-9.csv")
	out, err := run(t, server.URL, "grades", "template", "--subject", "9", "--out", target)
	require.NoError(t, err)
	require.Contains(t, out, "written to")

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(content), "\"student_registration_number\"")
}

func TestReconcileLocalNeedsDatabase(t *testing.T) {
	_, err := run(t, "http://localhost:0", "admissions", "reconcile")
	require.ErrorContains(t, err, "database url must be provided")
}

func TestStudentsListPrintsAverages(t *testing.T) {
	var saved int32
	server := fakeAPI(t, &saved)
	defer server.Close()

	out, err := run(t, server.URL, "students", "list", "--search", "REG2025")
	require.NoError(t, err)
	require.Contains(t, out, "REG202500004\tGrace Hopper\tgrace@example.com\t2 courses\t81.5")
	require.Contains(t, out, "REG202500007\tAlan Turing\talan@example.com\t1 courses\t-")
	require.Contains(t, out, "2 students")
}
