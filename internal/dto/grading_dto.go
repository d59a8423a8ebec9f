package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
)

// GradeSaveRequest is the single-record grading payload. With DryRun set the
// server computes the result without storing it.
type GradeSaveRequest struct {
	StudentID                 uint     `json:"student_id" validate:"required,gt=0"`
	SubjectID                 uint     `json:"subject_id" validate:"omitempty,gt=0"`
	AssignmentGradePercentage *float64 `json:"assignment_grade_percentage" validate:"omitempty,gte=0,lte=100"`
	ExamMarks                 *float64 `json:"exam_marks" validate:"omitempty,gte=0"`
	ExamPercentage            *float64 `json:"exam_percentage" validate:"omitempty,gte=0,lte=100"`
	GradeLetter               string   `json:"grade_letter" validate:"omitempty,max=4"`
	DryRun                    bool     `json:"dryRun"`
}

// GradePreviewResponse is the dry-run result.
type GradePreviewResponse struct {
	FinalPercentage *float64 `json:"final_percentage"`
	GradeLetter     string   `json:"grade_letter"`
}

// SubjectGradeResponse serializes a grade record.
type SubjectGradeResponse struct {
	ID                        uint       `json:"id"`
	StudentID                 uint       `json:"student_id"`
	SubjectID                 uint       `json:"subject_id"`
	AssignmentGradePercentage *float64   `json:"assignment_grade_percentage"`
	ExamMarks                 *float64   `json:"exam_marks"`
	ExamPercentage            *float64   `json:"exam_percentage"`
	FinalPercentage           *float64   `json:"final_percentage"`
	GradeLetter               string     `json:"grade_letter"`
	GradeStatus               string     `json:"grade_status"`
	GradedBy                  *uint      `json:"graded_by"`
	GradedAt                  *time.Time `json:"graded_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// NewSubjectGradeResponse maps a grade model.
func NewSubjectGradeResponse(grade models.SubjectGrade) SubjectGradeResponse {
	return SubjectGradeResponse{
		ID:                        grade.ID,
		StudentID:                 grade.StudentID,
		SubjectID:                 grade.SubjectID,
		AssignmentGradePercentage: grade.AssignmentGradePercentage,
		ExamMarks:                 grade.ExamMarks,
		ExamPercentage:            grade.ExamPercentage,
		FinalPercentage:           grade.FinalPercentage,
		GradeLetter:               grade.GradeLetter,
		GradeStatus:               grade.GradeStatus,
		GradedBy:                  grade.GradedBy,
		GradedAt:                  grade.GradedAt,
		UpdatedAt:                 grade.UpdatedAt,
	}
}

// RosterEntry is one enrolled student on a subject's grading page.
type RosterEntry struct {
	StudentID          uint                  `json:"student_id"`
	RegistrationNumber string                `json:"registration_number"`
	FirstName          string                `json:"first_name"`
	LastName           string                `json:"last_name"`
	Email              string                `json:"email"`
	EnrollmentStatus   string                `json:"enrollment_status"`
	Grade              *SubjectGradeResponse `json:"grade"`
	PreviewPercentage  float64               `json:"preview_percentage"`
	PreviewLetter      string                `json:"preview_letter"`
	Submissions        []SubmissionResponse  `json:"submissions"`
}

// SubjectRosterResponse is the grading view of a subject.
type SubjectRosterResponse struct {
	Subject     SubjectResponse      `json:"subject"`
	Students    []RosterEntry        `json:"students"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// BulkGradeRequest carries inline-table records.
type BulkGradeRequest struct {
	Records []grading.Record `json:"records" validate:"required,min=1,dive"`
	Remove  []uint           `json:"remove"`
}

// BulkGradeResponse reports the outcome of a bulk apply or a failed parse.
type BulkGradeResponse struct {
	Completed   int                   `json:"completed"`
	Total       int                   `json:"total"`
	Errors      []grading.RecordError `json:"errors"`
	ParseErrors []string              `json:"parse_errors,omitempty"`
}

// NewBulkGradeResponse maps an apply result.
func NewBulkGradeResponse(result grading.BulkResult) BulkGradeResponse {
	errs := result.Errors
	if errs == nil {
		errs = []grading.RecordError{}
	}
	return BulkGradeResponse{Completed: result.Completed, Total: result.Total, Errors: errs}
}

// StudentGradeResponse is a grade as shown to the student.
type StudentGradeResponse struct {
	SubjectID       uint      `json:"subject_id"`
	SubjectCode     string    `json:"subject_code"`
	SubjectName     string    `json:"subject_name"`
	Credits         int       `json:"credits"`
	Semester        int       `json:"semester"`
	FinalPercentage *float64  `json:"final_percentage"`
	GradeLetter     string    `json:"grade_letter"`
	GradePoints     float64   `json:"grade_points"`
	GradeStatus     string    `json:"grade_status"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StudentGradesResponse lists a student's grades with a GPA over lettered subjects.
type StudentGradesResponse struct {
	Grades       []StudentGradeResponse `json:"grades"`
	GPA          float64                `json:"gpa"`
	TotalCredits int                    `json:"total_credits"`
}
