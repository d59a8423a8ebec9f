package dto

import "time"

// StudentProfile is the personal part of a student's own profile.
type StudentProfile struct {
	StudentID          uint       `json:"student_id"`
	RegistrationNumber string     `json:"registration_number"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	Gender             string     `json:"gender"`
	Address            string     `json:"address"`
	City               string     `json:"city"`
	Country            string     `json:"country"`
	EnrollmentDate     *time.Time `json:"enrollment_date"`
	EnrollmentStatus   string     `json:"enrollment_status"`
}

// StudentAcademics summarises a student's standing.
type StudentAcademics struct {
	GPA                float64  `json:"gpa"`
	AverageFinal       *float64 `json:"average_final"`
	TotalCourses       int      `json:"total_courses_enrolled"`
	TotalSubmissions   int      `json:"total_submissions"`
	GradedSubmissions  int      `json:"graded_submissions"`
	PendingSubmissions int      `json:"pending_submissions"`
}

// StudentCourse is one course on a student's profile.
type StudentCourse struct {
	CourseID         uint      `json:"course_id"`
	CourseCode       string    `json:"course_code"`
	CourseName       string    `json:"course_name"`
	Description      string    `json:"description"`
	TotalCredits     int       `json:"total_credits"`
	EnrollmentDate   time.Time `json:"enrollment_date"`
	EnrollmentStatus string    `json:"enrollment_status"`
}

// StudentProfileResponse is returned by GET /students/me.
type StudentProfileResponse struct {
	Profile   StudentProfile   `json:"profile"`
	Academics StudentAcademics `json:"academics"`
	Courses   []StudentCourse  `json:"courses"`
}

// LecturerStudentResponse is one row of a lecturer's student list.
type LecturerStudentResponse struct {
	StudentID          uint      `json:"student_id"`
	RegistrationNumber string    `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	EnrollmentDate     time.Time `json:"enrollment_date"`
	EnrollmentStatus   string    `json:"enrollment_status"`
	AverageScore       *float64  `json:"average_score"`
	CoursesEnrolled    int       `json:"courses_enrolled"`
}
