package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

func newEnrollmentHarness(t *testing.T, students int) (EnrollmentService, AdmissionService, campusFixture, *memoryPublisher, *memoryActivityRepo) {
	t.Helper()
	h := newAdmissionHarness(t)
	for i := 0; i < students; i++ {
		extra := seedStudent(t, h, i)
		h.fixture.students = append(h.fixture.students, extra)
	}

	publisher := &memoryPublisher{}
	activityRepo := &memoryActivityRepo{}
	svc := NewEnrollmentService(EnrollmentDependencies{
		Enrollments: repository.NewEnrollmentRepository(h.db),
		Admissions:  repository.NewAdmissionRepository(h.db),
		Students:    repository.NewStudentRepository(h.db),
		Courses:     repository.NewCourseRepository(h.db),
	}, testValidator(), NewActivityService(activityRepo, testLogger()), publisher, testLogger())
	impl := svc.(*enrollmentService)
	impl.now = func() time.Time { return admissionClock }
	impl.password = func() (string, error) { return "hashed", nil }
	return svc, h.svc, h.fixture, publisher, activityRepo
}

func seedStudent(t *testing.T, h admissionHarness, i int) models.Student {
	t.Helper()
	user := models.User{Email: "enrolled" + uintString(uint(i)) + "@example.com", PasswordHash: "x", Role: models.RoleStudent, Status: models.StatusActive}
	require.NoError(t, h.db.Create(&user).Error)
	student := models.Student{UserID: user.ID, RegistrationNumber: "REG2023" + uintString(uint(100+i)), FirstName: "Enrolled", LastName: "Student", Email: user.Email, Status: models.StatusActive}
	require.NoError(t, h.db.Omit("User").Create(&student).Error)
	return student
}

func TestReconcileCreatesMissingRowsOnce(t *testing.T) {
	svc, admissions, f, publisher, activity := newEnrollmentHarness(t, 0)
	ctx := context.Background()

	approved, err := admissions.Submit(ctx, applicationFor(f.course.ID, "grace@example.com"))
	require.NoError(t, err)
	_, err = admissions.ChangeStatus(ctx, approved.ID, dto.AdmissionStatusRequest{ApplicationStatus: "approved"}, adminSession())
	require.NoError(t, err)
	pending, err := admissions.Submit(ctx, applicationFor(f.course.ID, "later@example.com"))
	require.NoError(t, err)

	result, err := svc.Reconcile(ctx, adminSession())
	require.NoError(t, err)
	require.Equal(t, 1, result.Checked)
	require.Equal(t, 1, result.UsersCreated)
	require.Equal(t, 1, result.StudentsLinked)
	require.Equal(t, 1, result.Enrollments)
	require.Equal(t, 1, result.Completed)
	require.Empty(t, result.Errors)

	stored, err := admissions.Get(ctx, approved.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", stored.ApplicationStatus)
	untouched, err := admissions.Get(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, "pending", untouched.ApplicationStatus)

	enrollments, err := svc.List(ctx, dto.EnrollmentFilter{CourseID: &f.course.ID})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, RegistrationNumber(approved.ID, admissionClock), enrollments[0].RegistrationNumber)
	require.Equal(t, models.EnrollmentStatusActive, enrollments[0].Status)

	again, err := svc.Reconcile(ctx, adminSession())
	require.NoError(t, err)
	require.Equal(t, 1, again.Checked)
	require.Zero(t, again.UsersCreated)
	require.Zero(t, again.StudentsLinked)
	require.Zero(t, again.Enrollments)
	require.Zero(t, again.Completed)

	require.Contains(t, publisher.subjects(), events.SubjectEnrollments)
	require.Contains(t, activity.actions(), "admissions.reconciled")
}

type cancellingAdmissions struct {
	repository.AdmissionRepository
	cancel context.CancelFunc
}

func (c cancellingAdmissions) List(ctx context.Context, filter repository.AdmissionFilter) ([]models.Admission, error) {
	records, err := c.AdmissionRepository.List(ctx, filter)
	c.cancel()
	return records, err
}

func TestReconcileCancelledContextMarksRemaining(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		created, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, email))
		require.NoError(t, err)
		_, err = h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "approved"}, adminSession())
		require.NoError(t, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc := NewEnrollmentService(EnrollmentDependencies{
		Enrollments: repository.NewEnrollmentRepository(h.db),
		Admissions:  cancellingAdmissions{AdmissionRepository: repository.NewAdmissionRepository(h.db), cancel: cancel},
		Students:    repository.NewStudentRepository(h.db),
		Courses:     repository.NewCourseRepository(h.db),
	}, testValidator(), nil, nil, testLogger())

	result, err := svc.Reconcile(runCtx, adminSession())
	require.NoError(t, err)
	require.Zero(t, result.Checked)
	require.Len(t, result.Errors, 2)

	stored, err := h.svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "approved", stored.ApplicationStatus)
}

func TestEnrollmentLogReportsState(t *testing.T) {
	svc, admissions, f, _, _ := newEnrollmentHarness(t, 0)
	ctx := context.Background()
	created, err := admissions.Submit(ctx, applicationFor(f.course.ID, "grace@example.com"))
	require.NoError(t, err)
	_, err = admissions.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "approved"}, adminSession())
	require.NoError(t, err)

	entries, err := svc.EnrollmentLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Pending Enrollment", entries[0].EnrollmentStatus)
	require.Nil(t, entries[0].StudentID)

	_, err = svc.Reconcile(ctx, adminSession())
	require.NoError(t, err)

	entries, err = svc.EnrollmentLog(ctx)
	require.NoError(t, err)
	require.Equal(t, "Enrolled", entries[0].EnrollmentStatus)
	require.NotNil(t, entries[0].StudentID)
	require.Equal(t, "Grace Hopper", entries[0].Name)
}

func TestEnrollmentCRUD(t *testing.T) {
	svc, _, f, _, _ := newEnrollmentHarness(t, 1)
	ctx := context.Background()
	student := f.students[0]

	created, err := svc.Create(ctx, dto.EnrollmentCreateRequest{StudentID: student.ID, CourseID: f.course.ID}, adminSession())
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, created.Status)
	require.Equal(t, "BSc Computer Science", created.CourseName)

	_, err = svc.Create(ctx, dto.EnrollmentCreateRequest{StudentID: student.ID, CourseID: f.course.ID}, adminSession())
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, dto.EnrollmentCreateRequest{StudentID: 9999, CourseID: f.course.ID}, adminSession())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := svc.Update(ctx, created.ID, dto.EnrollmentUpdateRequest{Status: models.EnrollmentStatusDropped}, adminSession())
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusDropped, updated.Status)

	require.NoError(t, svc.Delete(ctx, created.ID, adminSession()))
	require.ErrorIs(t, svc.Delete(ctx, created.ID, adminSession()), apperror.ErrNotFound)
}
