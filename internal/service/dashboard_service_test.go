package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

func newDashboardService(t *testing.T, h gradingHarness, cache *redis.Client) *dashboardService {
	t.Helper()
	svc := NewDashboardService(DashboardDependencies{
		Reports:     repository.NewReportRepository(h.db),
		Admissions:  repository.NewAdmissionRepository(h.db),
		Enrollments: repository.NewEnrollmentRepository(h.db),
		Assignments: repository.NewAssignmentRepository(h.db),
		Submissions: repository.NewSubmissionRepository(h.db),
		Grades:      repository.NewGradeRepository(h.db),
	}, cache, time.Minute, testLogger())
	return svc.(*dashboardService)
}

func seedAssignments(t *testing.T, h gradingHarness, now time.Time) (past, future models.Assignment) {
	t.Helper()
	lecturerID := h.fixture.lecturer.ID
	past = models.Assignment{SubjectID: h.fixture.subject.ID, LecturerID: &lecturerID, Title: "Loops", AssignmentType: models.AssignmentTypeHomework, TotalMarks: 100, DueDate: now.Add(-48 * time.Hour)}
	future = models.Assignment{SubjectID: h.fixture.subject.ID, LecturerID: &lecturerID, Title: "Recursion", AssignmentType: models.AssignmentTypeProject, TotalMarks: 50, DueDate: now.Add(72 * time.Hour)}
	require.NoError(t, h.db.Omit("Subject", "Submissions").Create(&past).Error)
	require.NoError(t, h.db.Omit("Subject", "Submissions").Create(&future).Error)
	return past, future
}

func TestStudentDashboardCountsAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	h := newGradingHarness(t, 2)
	now := time.Now()
	seedAssignments(t, h, now)
	ctx := context.Background()

	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 h.fixture.students[0].ID,
		AssignmentGradePercentage: ptrFloat(92),
		ExamPercentage:            ptrFloat(92),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)

	svc := newDashboardService(t, h, cache)
	session := h.fixture.studentSession(0)

	dashboard, err := svc.Student(ctx, session)
	require.NoError(t, err)
	require.Equal(t, 1, dashboard.EnrolledSubjects)
	require.Equal(t, 2, dashboard.TotalAssignments)
	require.Equal(t, 0, dashboard.Submitted)
	require.Equal(t, 1, dashboard.Pending)
	require.Equal(t, 1, dashboard.Overdue)
	require.Len(t, dashboard.UpcomingAssignment, 2)
	require.NotNil(t, dashboard.AverageFinal)
	require.InDelta(t, 92, *dashboard.AverageFinal, 0.0001)
	require.Equal(t, 4.0, dashboard.GPA)
	require.True(t, mr.Exists("dashboard:student:"+uintString(h.fixture.students[0].ID)))

	// A cached read ignores later changes until the entry expires.
	lecturerID := h.fixture.lecturer.ID
	extra := models.Assignment{SubjectID: h.fixture.subject.ID, LecturerID: &lecturerID, Title: "Graphs", TotalMarks: 10, DueDate: now.Add(time.Hour)}
	require.NoError(t, h.db.Omit("Subject", "Submissions").Create(&extra).Error)

	cached, err := svc.Student(ctx, session)
	require.NoError(t, err)
	require.Equal(t, 2, cached.TotalAssignments)

	mr.FastForward(2 * time.Minute)
	fresh, err := svc.Student(ctx, session)
	require.NoError(t, err)
	require.Equal(t, 3, fresh.TotalAssignments)
}

func TestLecturerDashboardWithoutCache(t *testing.T) {
	h := newGradingHarness(t, 3)
	now := time.Now()
	past, _ := seedAssignments(t, h, now)
	require.NoError(t, h.db.Omit("Assignment", "Student").Create(&models.Submission{
		AssignmentID: past.ID, StudentID: h.fixture.students[0].ID, SubmissionDate: now, Status: models.SubmissionStatusSubmitted, SubmissionText: "done",
	}).Error)

	svc := newDashboardService(t, h, nil)
	dashboard, err := svc.Lecturer(context.Background(), h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, int64(3), dashboard.TotalStudents)
	require.Equal(t, int64(1), dashboard.ActiveSubjects)
	require.Equal(t, int64(2), dashboard.TotalAssignments)
	require.Equal(t, int64(1), dashboard.UngradedSubmissions)

	_, err = svc.Lecturer(context.Background(), h.fixture.studentSession(0))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAdminDashboardListsEveryStatus(t *testing.T) {
	h := newGradingHarness(t, 2)
	svc := newDashboardService(t, h, nil)

	dashboard, err := svc.Admin(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), dashboard.TotalStudents)
	require.Equal(t, int64(1), dashboard.TotalLecturers)
	require.Equal(t, int64(1), dashboard.TotalCourses)
	require.Len(t, dashboard.AdmissionsByStat, 5)
	require.Zero(t, dashboard.PendingReviews)
}
