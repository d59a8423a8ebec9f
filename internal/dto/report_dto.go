package dto

import "time"

// Report types accepted by the reports endpoint.
const (
	ReportEnrollment  = "enrollment"
	ReportGrades      = "grades"
	ReportAssignments = "assignments"
	ReportAdmissions  = "admissions"
)

// ReportRequest selects a report.
type ReportRequest struct {
	Type string `query:"type" validate:"required,oneof=enrollment grades assignments admissions"`
}

// ReportResponse wraps the rows of a generated report.
type ReportResponse struct {
	Type        string      `json:"type"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        interface{} `json:"rows"`
}

// EnrollmentReportRow counts enrollments per course.
type EnrollmentReportRow struct {
	CourseID   uint   `json:"course_id"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Active     int64  `json:"active"`
	Completed  int64  `json:"completed"`
	Dropped    int64  `json:"dropped"`
	Suspended  int64  `json:"suspended"`
	Total      int64  `json:"total"`
}

// GradeReportRow aggregates grades per subject.
type GradeReportRow struct {
	SubjectID       uint     `json:"subject_id"`
	SubjectCode     string   `json:"subject_code"`
	SubjectName     string   `json:"subject_name"`
	Graded          int64    `json:"graded"`
	AverageFinal    *float64 `json:"average_final_percentage"`
	HighestFinal    *float64 `json:"highest_final_percentage"`
	LowestFinal     *float64 `json:"lowest_final_percentage"`
	FailingStudents int64    `json:"failing_students"`
}

// AssignmentReportRow aggregates submissions per assignment.
type AssignmentReportRow struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	SubjectCode  string    `json:"subject_code"`
	DueDate      time.Time `json:"due_date"`
	Submissions  int64     `json:"submissions"`
	Late         int64     `json:"late"`
	Graded       int64     `json:"graded"`
	AverageScore *float64  `json:"average_percentage"`
}

// AdmissionReportRow counts applications per status.
type AdmissionReportRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
