package dto

import "time"

// AdminDashboardResponse summarises the whole college.
type AdminDashboardResponse struct {
	TotalStudents    int64            `json:"total_students"`
	TotalLecturers   int64            `json:"total_lecturers"`
	TotalCourses     int64            `json:"total_courses"`
	ActiveSubjects   int64            `json:"active_subjects"`
	AdmissionsByStat map[string]int64 `json:"admissions_by_status"`
	PendingReviews   int64            `json:"pending_reviews"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// LecturerDashboardResponse summarises a lecturer's teaching load.
type LecturerDashboardResponse struct {
	TotalStudents       int64     `json:"total_students"`
	ActiveSubjects      int64     `json:"active_subjects"`
	TotalAssignments    int64     `json:"total_assignments"`
	UngradedSubmissions int64     `json:"ungraded_submissions"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// StudentDashboardResponse summarises a student's progress.
type StudentDashboardResponse struct {
	EnrolledSubjects   int                  `json:"enrolled_subjects"`
	TotalAssignments   int                  `json:"total_assignments"`
	Submitted          int                  `json:"submitted"`
	Pending            int                  `json:"pending"`
	Overdue            int                  `json:"overdue"`
	AverageFinal       *float64             `json:"average_final_percentage"`
	GPA                float64              `json:"gpa"`
	UpcomingAssignment []AssignmentProgress `json:"upcoming_assignments"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

// AssignmentProgress describes one assignment from the student's point of view.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	SubjectName  string    `json:"subject_name"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"`
	Overdue      bool      `json:"overdue"`
}
