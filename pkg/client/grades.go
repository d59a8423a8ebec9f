package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
)

func subjectPath(subjectID uint, suffix string) string {
	return fmt.Sprintf("/grading/subjects/%d%s", subjectID, suffix)
}

// GradingSubjects lists the subjects the caller may grade.
func (c *Client) GradingSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	env, err := call[[]dto.SubjectResponse](ctx, c, http.MethodGet, "/grading/subjects", nil, nil)
	return env.Data, err
}

// Roster returns the subject, its enrolled students and their grades.
func (c *Client) Roster(ctx context.Context, subjectID uint) (dto.SubjectRosterResponse, error) {
	env, err := call[dto.SubjectRosterResponse](ctx, c, http.MethodGet, subjectPath(subjectID, ""), nil, nil)
	return env.Data, err
}

// KnownStudents turns a roster into the lookup table used by the bulk parser.
func KnownStudents(roster dto.SubjectRosterResponse) []grading.KnownStudent {
	known := make([]grading.KnownStudent, 0, len(roster.Students))
	for _, entry := range roster.Students {
		known = append(known, grading.KnownStudent{StudentID: entry.StudentID, RegistrationNumber: entry.RegistrationNumber})
	}
	return known
}

// SaveGrade upserts one grade.
func (c *Client) SaveGrade(ctx context.Context, subjectID uint, req dto.GradeSaveRequest) (dto.SubjectGradeResponse, error) {
	req.DryRun = false
	env, err := call[dto.SubjectGradeResponse](ctx, c, http.MethodPost, subjectPath(subjectID, "/grades"), nil, req)
	return env.Data, err
}

// PreviewGrade computes the final percentage and letter without storing them.
func (c *Client) PreviewGrade(ctx context.Context, subjectID uint, req dto.GradeSaveRequest) (dto.GradePreviewResponse, error) {
	req.DryRun = true
	env, err := call[dto.GradePreviewResponse](ctx, c, http.MethodPost, subjectPath(subjectID, "/grades"), nil, req)
	return env.Data, err
}

// BulkCSV uploads a bulk grade file for the server to parse and apply.
func (c *Client) BulkCSV(ctx context.Context, subjectID uint, csvText []byte) (dto.BulkGradeResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, subjectPath(subjectID, "/bulk"), nil, bytes.NewReader(csvText))
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}
	req.Header.Set("Content-Type", "text/csv")
	resp, err := c.send(req)
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}
	env, err := decode[dto.BulkGradeResponse](resp)
	return env.Data, err
}

// BulkRecords applies already-parsed records on the server.
func (c *Client) BulkRecords(ctx context.Context, subjectID uint, records []grading.Record) (dto.BulkGradeResponse, error) {
	env, err := call[dto.BulkGradeResponse](ctx, c, http.MethodPost, subjectPath(subjectID, "/bulk"), nil, dto.BulkGradeRequest{Records: records})
	return env.Data, err
}

// Template downloads the grade template; format is "csv" or "xlsx".
func (c *Client) Template(ctx context.Context, subjectID uint, format string) ([]byte, error) {
	if format != "xlsx" {
		format = "csv"
	}
	return c.download(ctx, subjectPath(subjectID, "/template."+format))
}

// MyGrades returns the calling student's grades.
func (c *Client) MyGrades(ctx context.Context) (dto.StudentGradesResponse, error) {
	env, err := call[dto.StudentGradesResponse](ctx, c, http.MethodGet, "/grades/me", url.Values{}, nil)
	return env.Data, err
}

// Transcript downloads the calling student's transcript CSV.
func (c *Client) Transcript(ctx context.Context) ([]byte, error) {
	return c.download(ctx, "/grades/me/transcript.csv")
}

// WriteGrade lets the client act as the bulk applier's store. An empty
// letter is omitted so the server derives it.
func (c *Client) WriteGrade(ctx context.Context, input grading.GradeInput) error {
	assignment := input.AssignmentGradePercentage
	exam := input.ExamPercentage
	marks := input.ExamMarks
	_, err := c.SaveGrade(ctx, input.SubjectID, dto.GradeSaveRequest{
		StudentID:                 input.StudentID,
		SubjectID:                 input.SubjectID,
		AssignmentGradePercentage: &assignment,
		ExamMarks:                 &marks,
		ExamPercentage:            &exam,
		GradeLetter:               string(input.GradeLetter),
	})
	return err
}

var _ grading.GradeWriter = (*Client)(nil)
