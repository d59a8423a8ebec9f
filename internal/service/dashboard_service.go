package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/admission"
	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

const upcomingLimit = 5

// DashboardService produces the per-role dashboards.
type DashboardService interface {
	Admin(ctx context.Context) (dto.AdminDashboardResponse, error)
	Lecturer(ctx context.Context, session Session) (dto.LecturerDashboardResponse, error)
	Student(ctx context.Context, session Session) (dto.StudentDashboardResponse, error)
}

// DashboardDependencies groups the repositories the dashboards aggregate.
type DashboardDependencies struct {
	Reports     repository.ReportRepository
	Admissions  repository.AdmissionRepository
	Enrollments repository.EnrollmentRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Grades      repository.GradeRepository
}

type dashboardService struct {
	deps     DashboardDependencies
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables caching.
func NewDashboardService(deps DashboardDependencies, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		deps:     deps,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Admin(ctx context.Context) (dto.AdminDashboardResponse, error) {
	var response dto.AdminDashboardResponse
	if s.lookup(ctx, "admin", "dashboard:admin", &response) {
		return response, nil
	}

	counts, err := s.deps.Reports.CollegeCounts(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, apperror.Persistence("college counts", err)
	}
	byStatus, err := s.deps.Admissions.CountByStatus(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, apperror.Persistence("count admissions", err)
	}
	for _, status := range admission.Statuses {
		if _, ok := byStatus[string(status)]; !ok {
			byStatus[string(status)] = 0
		}
	}

	response = dto.AdminDashboardResponse{
		TotalStudents:    counts.Students,
		TotalLecturers:   counts.Lecturers,
		TotalCourses:     counts.Courses,
		ActiveSubjects:   counts.ActiveSubjects,
		AdmissionsByStat: byStatus,
		PendingReviews:   byStatus[string(admission.StatusPending)] + byStatus[string(admission.StatusUnderReview)],
		GeneratedAt:      s.now().UTC(),
	}
	s.store(ctx, "dashboard:admin", response)
	return response, nil
}

func (s *dashboardService) Lecturer(ctx context.Context, session Session) (dto.LecturerDashboardResponse, error) {
	if session.LecturerID == nil {
		return dto.LecturerDashboardResponse{}, fmt.Errorf("lecturer dashboard: %w", ErrForbidden)
	}
	lecturerID := *session.LecturerID
	key := fmt.Sprintf("dashboard:lecturer:%d", lecturerID)

	var response dto.LecturerDashboardResponse
	if s.lookup(ctx, "lecturer", key, &response) {
		return response, nil
	}

	counts, err := s.deps.Reports.LecturerCounts(ctx, lecturerID)
	if err != nil {
		return dto.LecturerDashboardResponse{}, apperror.Persistence("lecturer counts", err)
	}
	students, err := s.deps.Enrollments.CountStudentsForLecturer(ctx, lecturerID)
	if err != nil {
		return dto.LecturerDashboardResponse{}, apperror.Persistence("count students", err)
	}

	response = dto.LecturerDashboardResponse{
		TotalStudents:       students,
		ActiveSubjects:      counts.ActiveSubjects,
		TotalAssignments:    counts.Assignments,
		UngradedSubmissions: counts.UngradedSubmissions,
		GeneratedAt:         s.now().UTC(),
	}
	s.store(ctx, key, response)
	return response, nil
}

func (s *dashboardService) Student(ctx context.Context, session Session) (dto.StudentDashboardResponse, error) {
	if session.StudentID == nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("student dashboard: %w", ErrForbidden)
	}
	studentID := *session.StudentID
	key := fmt.Sprintf("dashboard:student:%d", studentID)

	var response dto.StudentDashboardResponse
	if s.lookup(ctx, "student", key, &response) {
		return response, nil
	}

	subjectIDs, err := s.deps.Enrollments.SubjectIDsForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, apperror.Persistence("student subjects", err)
	}
	if subjectIDs == nil {
		subjectIDs = []uint{}
	}
	assignments, err := s.deps.Assignments.List(ctx, repository.AssignmentFilter{SubjectIDs: subjectIDs})
	if err != nil {
		return dto.StudentDashboardResponse{}, apperror.Persistence("list assignments", err)
	}
	submissions, err := s.deps.Submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentDashboardResponse{}, apperror.Persistence("list submissions", err)
	}
	grades, err := s.deps.Grades.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, apperror.Persistence("list grades", err)
	}

	response = s.buildStudent(len(subjectIDs), assignments, submissions, grades)
	s.store(ctx, key, response)
	return response, nil
}

func (s *dashboardService) buildStudent(subjects int, assignments []models.Assignment, submissions []models.Submission, grades []models.SubjectGrade) dto.StudentDashboardResponse {
	now := s.now()
	submitted := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		submitted[submission.AssignmentID] = submission
	}

	response := dto.StudentDashboardResponse{
		EnrolledSubjects:   subjects,
		TotalAssignments:   len(assignments),
		UpcomingAssignment: make([]dto.AssignmentProgress, 0, upcomingLimit),
		GeneratedAt:        now.UTC(),
	}

	for _, assignment := range assignments {
		if _, ok := submitted[assignment.ID]; ok {
			response.Submitted++
			continue
		}

		overdue := assignment.IsPastDue(now)
		if overdue {
			response.Overdue++
		} else {
			response.Pending++
		}
		if len(response.UpcomingAssignment) < upcomingLimit {
			status := "pending"
			if overdue {
				status = "overdue"
			}
			response.UpcomingAssignment = append(response.UpcomingAssignment, dto.AssignmentProgress{
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
				SubjectName:  assignment.Subject.SubjectName,
				DueDate:      assignment.DueDate,
				Status:       status,
				Overdue:      overdue,
			})
		}
	}

	rows := make([]grading.TranscriptRow, 0, len(grades))
	var total float64
	var counted int
	for _, grade := range grades {
		if grade.FinalPercentage != nil {
			total += *grade.FinalPercentage
			counted++
		}
		rows = append(rows, grading.TranscriptRow{
			Credits: grade.Subject.Credits,
			Letter:  grading.Letter(grade.GradeLetter),
		})
	}
	if counted > 0 {
		average := grading.Round1(total / float64(counted))
		response.AverageFinal = &average
	}
	response.GPA, _ = grading.GPA(rows)

	return response
}

// lookup fills out from the cache and reports whether it was a hit.
func (s *dashboardService) lookup(ctx context.Context, dashboard, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read dashboard cache")
		}
		observability.DashboardCacheLookups().WithLabelValues(dashboard, "miss").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable dashboard cache entry")
		observability.DashboardCacheLookups().WithLabelValues(dashboard, "miss").Inc()
		return false
	}
	observability.DashboardCacheLookups().WithLabelValues(dashboard, "hit").Inc()
	s.logger.Debug().Str("key", key).Msg("dashboard cache hit")
	return true
}

func (s *dashboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store dashboard cache")
	}
}
