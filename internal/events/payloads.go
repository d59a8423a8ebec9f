package events

import "time"

// AdmissionStatusChanged is published after an admin decision.
type AdmissionStatusChanged struct {
	AdmissionID uint      `json:"admission_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ReviewedBy  *uint     `json:"reviewed_by,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

// GradeSaved is published for each persisted subject grade.
type GradeSaved struct {
	StudentID       uint     `json:"student_id"`
	SubjectID       uint     `json:"subject_id"`
	FinalPercentage *float64 `json:"final_percentage,omitempty"`
	GradeLetter     string   `json:"grade_letter"`
	GradedBy        *uint    `json:"graded_by,omitempty"`
}

// BulkGradesApplied summarises a bulk upload.
type BulkGradesApplied struct {
	SubjectID uint   `json:"subject_id"`
	Source    string `json:"source"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Failed    int    `json:"failed"`
}

// EnrollmentsReconciled summarises a reconcile run.
type EnrollmentsReconciled struct {
	Checked     int `json:"checked"`
	Users       int `json:"users_created"`
	Enrollments int `json:"enrollments_created"`
	Completed   int `json:"completed"`
}
