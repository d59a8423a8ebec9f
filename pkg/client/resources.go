package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/noah-isme/campus-go-api/internal/dto"
)

// Deleted is the payload returned by delete endpoints.
type Deleted struct {
	ID uint `json:"id"`
}

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	env, err := call[dto.AuthResponse](ctx, c, http.MethodPost, "/auth/login", nil, req)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	c.token = env.Data.Token
	return env.Data, nil
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context) (dto.SessionProfile, error) {
	env, err := call[dto.SessionProfile](ctx, c, http.MethodGet, "/auth/me", nil, nil)
	return env.Data, err
}

// Courses lists courses, optionally by status.
func (c *Client) Courses(ctx context.Context, status string) ([]dto.CourseResponse, error) {
	q := url.Values{}
	setString(q, "status", status)
	env, err := call[[]dto.CourseResponse](ctx, c, http.MethodGet, "/courses", q, nil)
	return env.Data, err
}

func (c *Client) CreateCourse(ctx context.Context, req dto.CourseCreateRequest) (dto.CourseResponse, error) {
	env, err := call[dto.CourseResponse](ctx, c, http.MethodPost, "/courses", nil, req)
	return env.Data, err
}

func (c *Client) UpdateCourse(ctx context.Context, id uint, req dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	env, err := call[dto.CourseResponse](ctx, c, http.MethodPut, idPath("/courses", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteCourse(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/courses", id), nil, nil)
	return err
}

// Subjects lists subjects matching the filter.
func (c *Client) Subjects(ctx context.Context, filter dto.SubjectFilter) ([]dto.SubjectResponse, error) {
	q := url.Values{}
	setUint(q, "course_id", filter.CourseID)
	setUint(q, "lecturer_id", filter.LecturerID)
	setString(q, "status", filter.Status)
	env, err := call[[]dto.SubjectResponse](ctx, c, http.MethodGet, "/subjects", q, nil)
	return env.Data, err
}

func (c *Client) CreateSubject(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	env, err := call[dto.SubjectResponse](ctx, c, http.MethodPost, "/subjects", nil, req)
	return env.Data, err
}

func (c *Client) UpdateSubject(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	env, err := call[dto.SubjectResponse](ctx, c, http.MethodPut, idPath("/subjects", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteSubject(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/subjects", id), nil, nil)
	return err
}

// Users lists accounts (admin).
func (c *Client) Users(ctx context.Context, req dto.UserListRequest) ([]dto.UserResponse, error) {
	q := url.Values{}
	setString(q, "role", req.Role)
	setString(q, "search", req.Search)
	env, err := call[[]dto.UserResponse](ctx, c, http.MethodGet, "/admin/users", q, nil)
	return env.Data, err
}

func (c *Client) CreateUser(ctx context.Context, req dto.UserCreateRequest) (dto.UserResponse, error) {
	env, err := call[dto.UserResponse](ctx, c, http.MethodPost, "/admin/users", nil, req)
	return env.Data, err
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	env, err := call[dto.UserResponse](ctx, c, http.MethodPut, idPath("/admin/users", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/admin/users", id), nil, nil)
	return err
}

// Lecturers lists lecturer profiles (admin).
func (c *Client) Lecturers(ctx context.Context) ([]dto.LecturerResponse, error) {
	env, err := call[[]dto.LecturerResponse](ctx, c, http.MethodGet, "/admin/lecturers", nil, nil)
	return env.Data, err
}

func (c *Client) CreateLecturer(ctx context.Context, req dto.LecturerCreateRequest) (dto.LecturerResponse, error) {
	env, err := call[dto.LecturerResponse](ctx, c, http.MethodPost, "/admin/lecturers", nil, req)
	return env.Data, err
}

func (c *Client) UpdateLecturer(ctx context.Context, id uint, req dto.LecturerUpdateRequest) (dto.LecturerResponse, error) {
	env, err := call[dto.LecturerResponse](ctx, c, http.MethodPut, idPath("/admin/lecturers", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteLecturer(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/admin/lecturers", id), nil, nil)
	return err
}

// Assignments lists assignments visible to the caller.
func (c *Client) Assignments(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	q := url.Values{}
	setUint(q, "subject_id", filter.SubjectID)
	setUint(q, "lecturer_id", filter.LecturerID)
	setUint(q, "student_id", filter.StudentID)
	env, err := call[[]dto.AssignmentResponse](ctx, c, http.MethodGet, "/assignments", q, nil)
	return env.Data, err
}

func (c *Client) CreateAssignment(ctx context.Context, req dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	env, err := call[dto.AssignmentResponse](ctx, c, http.MethodPost, "/assignments", nil, req)
	return env.Data, err
}

func (c *Client) UpdateAssignment(ctx context.Context, id uint, req dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	env, err := call[dto.AssignmentResponse](ctx, c, http.MethodPut, idPath("/assignments", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/assignments", id), nil, nil)
	return err
}

// Submissions lists submissions matching the filter.
func (c *Client) Submissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	q := url.Values{}
	setUint(q, "assignment_id", filter.AssignmentID)
	setUint(q, "student_id", filter.StudentID)
	setUint(q, "lecturer_id", filter.LecturerID)
	setUint(q, "subject_id", filter.SubjectID)
	if filter.Status != nil {
		setString(q, "status", *filter.Status)
	}
	env, err := call[[]dto.SubmissionResponse](ctx, c, http.MethodGet, "/submissions", q, nil)
	return env.Data, err
}

// Submit hands in work for an assignment. file may be nil for text-only answers.
func (c *Client) Submit(ctx context.Context, req dto.SubmissionCreateRequest, file *FilePart) (dto.SubmissionResponse, error) {
	fields := map[string]string{"assignment_id": fmt.Sprint(req.AssignmentID)}
	if req.SubmissionText != "" {
		fields["submission_text"] = req.SubmissionText
	}
	if file != nil && file.Field == "" {
		file.Field = "file"
	}
	env, err := upload[dto.SubmissionResponse](ctx, c, "/submissions", fields, file)
	return env.Data, err
}

func (c *Client) GradeSubmission(ctx context.Context, id uint, req dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	env, err := call[dto.SubmissionResponse](ctx, c, http.MethodPut, idPath("/submissions", id)+"/grade", nil, req)
	return env.Data, err
}

// Enrollments lists enrollments matching the filter.
func (c *Client) Enrollments(ctx context.Context, filter dto.EnrollmentFilter) ([]dto.EnrollmentResponse, error) {
	q := url.Values{}
	setUint(q, "student_id", filter.StudentID)
	setUint(q, "course_id", filter.CourseID)
	setString(q, "status", filter.Status)
	env, err := call[[]dto.EnrollmentResponse](ctx, c, http.MethodGet, "/enrollments", q, nil)
	return env.Data, err
}

func (c *Client) CreateEnrollment(ctx context.Context, req dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	env, err := call[dto.EnrollmentResponse](ctx, c, http.MethodPost, "/enrollments", nil, req)
	return env.Data, err
}

func (c *Client) UpdateEnrollment(ctx context.Context, id uint, req dto.EnrollmentUpdateRequest) (dto.EnrollmentResponse, error) {
	env, err := call[dto.EnrollmentResponse](ctx, c, http.MethodPut, idPath("/enrollments", id), nil, req)
	return env.Data, err
}

func (c *Client) DeleteEnrollment(ctx context.Context, id uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/enrollments", id), nil, nil)
	return err
}

// SubmitAdmission files a public application.
func (c *Client) SubmitAdmission(ctx context.Context, req dto.AdmissionCreateRequest) (dto.AdmissionTrackResponse, error) {
	env, err := call[dto.AdmissionTrackResponse](ctx, c, http.MethodPost, "/admissions", nil, req)
	return env.Data, err
}

// TrackAdmission looks an application up by id, email or both.
func (c *Client) TrackAdmission(ctx context.Context, req dto.AdmissionTrackRequest) (dto.AdmissionTrackResponse, error) {
	q := url.Values{}
	if req.ID != 0 {
		q.Set("id", fmt.Sprint(req.ID))
	}
	setString(q, "email", req.Email)
	env, err := call[dto.AdmissionTrackResponse](ctx, c, http.MethodGet, "/admissions/track", q, nil)
	return env.Data, err
}

func (c *Client) Admissions(ctx context.Context, req dto.AdmissionListRequest) ([]dto.AdmissionResponse, error) {
	q := url.Values{}
	setString(q, "status", req.Status)
	setString(q, "search", req.Search)
	env, err := call[[]dto.AdmissionResponse](ctx, c, http.MethodGet, "/admissions", q, nil)
	return env.Data, err
}

func (c *Client) Admission(ctx context.Context, id uint) (dto.AdmissionResponse, error) {
	env, err := call[dto.AdmissionResponse](ctx, c, http.MethodGet, idPath("/admissions", id), nil, nil)
	return env.Data, err
}

func (c *Client) ChangeAdmissionStatus(ctx context.Context, id uint, req dto.AdmissionStatusRequest) (dto.AdmissionResponse, error) {
	env, err := call[dto.AdmissionResponse](ctx, c, http.MethodPut, idPath("/admissions", id)+"/status", nil, req)
	return env.Data, err
}

// UploadDocument attaches a supporting document to an application.
func (c *Client) UploadDocument(ctx context.Context, admissionID uint, documentType, name string, content io.Reader) (dto.AdmissionDocumentResponse, error) {
	env, err := upload[dto.AdmissionDocumentResponse](ctx, c, idPath("/admissions", admissionID)+"/documents",
		map[string]string{"document_type": documentType},
		&FilePart{Field: "file", Name: name, Content: content})
	return env.Data, err
}

func (c *Client) Documents(ctx context.Context, admissionID uint) ([]dto.AdmissionDocumentResponse, error) {
	env, err := call[[]dto.AdmissionDocumentResponse](ctx, c, http.MethodGet, idPath("/admissions", admissionID)+"/documents", nil, nil)
	return env.Data, err
}

func (c *Client) DeleteDocument(ctx context.Context, documentID uint) error {
	_, err := call[Deleted](ctx, c, http.MethodDelete, idPath("/admissions/documents", documentID), nil, nil)
	return err
}

// ReconcileAdmissions runs the enrollment repair job on the server.
func (c *Client) ReconcileAdmissions(ctx context.Context) (dto.ReconcileResult, error) {
	env, err := call[dto.ReconcileResult](ctx, c, http.MethodPost, "/admin/admissions/reconcile", nil, nil)
	return env.Data, err
}

func (c *Client) EnrollmentLog(ctx context.Context) ([]dto.EnrollmentLogEntry, error) {
	env, err := call[[]dto.EnrollmentLogEntry](ctx, c, http.MethodGet, "/admin/admissions/enrollment-log", nil, nil)
	return env.Data, err
}

// MyProfile returns the calling student's profile.
func (c *Client) MyProfile(ctx context.Context) (dto.StudentProfileResponse, error) {
	env, err := call[dto.StudentProfileResponse](ctx, c, http.MethodGet, "/students/me", nil, nil)
	return env.Data, err
}

// LecturerStudents lists the calling lecturer's students matching search.
func (c *Client) LecturerStudents(ctx context.Context, search string) ([]dto.LecturerStudentResponse, error) {
	q := url.Values{}
	setString(q, "search", search)
	env, err := call[[]dto.LecturerStudentResponse](ctx, c, http.MethodGet, "/lecturer/students", q, nil)
	return env.Data, err
}
