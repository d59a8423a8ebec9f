package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// CourseEnrollmentStat counts enrollments per status for a course.
type CourseEnrollmentStat struct {
	CourseID   uint
	CourseCode string
	CourseName string
	Active     int64
	Completed  int64
	Dropped    int64
	Suspended  int64
	Total      int64
}

// SubjectGradeStat aggregates final percentages for a subject.
type SubjectGradeStat struct {
	SubjectID    uint
	SubjectCode  string
	SubjectName  string
	Graded       int64
	AverageFinal *float64
	HighestFinal *float64
	LowestFinal  *float64
	Failing      int64
}

// AssignmentStat aggregates submissions for an assignment.
type AssignmentStat struct {
	AssignmentID uint
	Title        string
	SubjectCode  string
	DueDate      time.Time
	Submissions  int64
	Late         int64
	Graded       int64
	AveragePct   *float64
}

// CollegeCounts holds the headline numbers of the admin dashboard.
type CollegeCounts struct {
	Students       int64
	Lecturers      int64
	Courses        int64
	ActiveSubjects int64
}

// LecturerCounts holds the headline numbers of a lecturer dashboard.
type LecturerCounts struct {
	ActiveSubjects      int64
	Assignments         int64
	UngradedSubmissions int64
}

// ReportRepository runs aggregate queries for reports and dashboards.
type ReportRepository interface {
	EnrollmentByCourse(ctx context.Context) ([]CourseEnrollmentStat, error)
	GradesBySubject(ctx context.Context) ([]SubjectGradeStat, error)
	AssignmentStats(ctx context.Context) ([]AssignmentStat, error)
	CollegeCounts(ctx context.Context) (CollegeCounts, error)
	LecturerCounts(ctx context.Context, lecturerID uint) (LecturerCounts, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs the reporting repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) EnrollmentByCourse(ctx context.Context) ([]CourseEnrollmentStat, error) {
	var rows []CourseEnrollmentStat
	err := r.db.WithContext(ctx).
		Table("courses").
		Select(`courses.id AS course_id, courses.course_code, courses.course_name,
			SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS active,
			SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS completed,
			SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS dropped,
			SUM(CASE WHEN enrollments.status = ? THEN 1 ELSE 0 END) AS suspended,
			COUNT(enrollments.id) AS total`,
			models.EnrollmentStatusActive, models.EnrollmentStatusCompleted,
			models.EnrollmentStatusDropped, models.EnrollmentStatusSuspended).
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Group("courses.id, courses.course_code, courses.course_name").
		Order("courses.course_code ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GradesBySubject(ctx context.Context) ([]SubjectGradeStat, error) {
	var rows []SubjectGradeStat
	err := r.db.WithContext(ctx).
		Table("subjects").
		Select(`subjects.id AS subject_id, subjects.subject_code, subjects.subject_name,
			COUNT(subject_grades.final_percentage) AS graded,
			AVG(subject_grades.final_percentage) AS average_final,
			MAX(subject_grades.final_percentage) AS highest_final,
			MIN(subject_grades.final_percentage) AS lowest_final,
			SUM(CASE WHEN subject_grades.grade_letter = ? THEN 1 ELSE 0 END) AS failing`, "F").
		Joins("LEFT JOIN subject_grades ON subject_grades.subject_id = subjects.id").
		Group("subjects.id, subjects.subject_code, subjects.subject_name").
		Order("subjects.subject_code ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) AssignmentStats(ctx context.Context) ([]AssignmentStat, error) {
	var rows []AssignmentStat
	err := r.db.WithContext(ctx).
		Table("assignments").
		Select(`assignments.id AS assignment_id, assignments.title, subjects.subject_code, assignments.due_date,
			COUNT(submissions.id) AS submissions,
			SUM(CASE WHEN submissions.is_late = ? THEN 1 ELSE 0 END) AS late,
			SUM(CASE WHEN submissions.status = ? THEN 1 ELSE 0 END) AS graded,
			AVG(submissions.assignment_percentage) AS average_pct`, true, models.SubmissionStatusGraded).
		Joins("JOIN subjects ON subjects.id = assignments.subject_id").
		Joins("LEFT JOIN submissions ON submissions.assignment_id = assignments.id").
		Group("assignments.id, assignments.title, subjects.subject_code, assignments.due_date").
		Order("assignments.due_date ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CollegeCounts(ctx context.Context) (CollegeCounts, error) {
	var counts CollegeCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Student{}).Count(&counts.Students).Error; err != nil {
		return CollegeCounts{}, err
	}
	if err := db.Model(&models.Lecturer{}).Count(&counts.Lecturers).Error; err != nil {
		return CollegeCounts{}, err
	}
	if err := db.Model(&models.Course{}).Count(&counts.Courses).Error; err != nil {
		return CollegeCounts{}, err
	}
	if err := db.Model(&models.Subject{}).Where("status = ?", models.StatusActive).Count(&counts.ActiveSubjects).Error; err != nil {
		return CollegeCounts{}, err
	}
	return counts, nil
}

func (r *reportRepository) LecturerCounts(ctx context.Context, lecturerID uint) (LecturerCounts, error) {
	var counts LecturerCounts
	db := r.db.WithContext(ctx)
	subjects := db.Model(&models.Subject{}).Select("id").Where("lecturer_id = ?", lecturerID)

	if err := db.Model(&models.Subject{}).Where("lecturer_id = ? AND status = ?", lecturerID, models.StatusActive).Count(&counts.ActiveSubjects).Error; err != nil {
		return LecturerCounts{}, err
	}
	if err := db.Model(&models.Assignment{}).Where("subject_id IN (?)", subjects).Count(&counts.Assignments).Error; err != nil {
		return LecturerCounts{}, err
	}
	err := db.Model(&models.Submission{}).
		Where("assignment_id IN (?)", db.Model(&models.Assignment{}).Select("id").Where("subject_id IN (?)", subjects)).
		Where("marks_obtained IS NULL").
		Count(&counts.UngradedSubmissions).Error
	if err != nil {
		return LecturerCounts{}, err
	}
	return counts, nil
}
