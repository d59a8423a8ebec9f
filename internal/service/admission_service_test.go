package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/admission"
	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

var admissionClock = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type admissionHarness struct {
	db        *gorm.DB
	fixture   campusFixture
	svc       AdmissionService
	storage   *storageStub
	activity  *memoryActivityRepo
	publisher *memoryPublisher
}

func newAdmissionHarness(t *testing.T) admissionHarness {
	t.Helper()
	db := newServiceDB(t)
	f := seedCampus(t, db, 0)
	storage := &storageStub{}
	activityRepo := &memoryActivityRepo{}
	publisher := &memoryPublisher{}

	svc := NewAdmissionService(
		repository.NewAdmissionRepository(db),
		repository.NewCourseRepository(db),
		testValidator(),
		NewFileIntake(storage, 5, nil, testLogger()),
		NewActivityService(activityRepo, testLogger()),
		publisher,
		testLogger(),
	)
	svc.(*admissionService).now = func() time.Time { return admissionClock }
	return admissionHarness{db: db, fixture: f, svc: svc, storage: storage, activity: activityRepo, publisher: publisher}
}

func applicationFor(courseID uint, email string) dto.AdmissionCreateRequest {
	return dto.AdmissionCreateRequest{
		FirstName:        "Grace",
		LastName:         "Hopper",
		Email:            email,
		Phone:            "+1 555 0100",
		DateOfBirth:      "2005-12-09",
		Gender:           "female",
		Address:          "1 Navy Way",
		City:             "Arlington",
		Country:          "USA",
		PreviousSchool:   "Central High",
		Qualification:    "high-school",
		YearOfCompletion: 2024,
		SelectedCourseID: courseID,
		StudyMode:        "full-time",
	}
}

func TestAdmissionSubmitAndTrack(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()

	created, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "Grace@Example.com"))
	require.NoError(t, err)
	require.Equal(t, string(admission.StatusPending), created.ApplicationStatus)
	require.Equal(t, "BSc Computer Science", created.SelectedCourseName)
	require.Equal(t, admissionClock, created.AppliedDate.UTC())

	byEmail, err := h.svc.Track(ctx, dto.AdmissionTrackRequest{Email: "grace@example.com"})
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := h.svc.Track(ctx, dto.AdmissionTrackRequest{ID: created.ID})
	require.NoError(t, err)
	require.Equal(t, "Grace", byID.FirstName)

	_, err = h.svc.Track(ctx, dto.AdmissionTrackRequest{ID: created.ID, Email: "someone@example.com"})
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.svc.Track(ctx, dto.AdmissionTrackRequest{})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAdmissionSubmitValidation(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()

	future := applicationFor(h.fixture.course.ID, "a@example.com")
	future.YearOfCompletion = admissionClock.Year() + 1
	_, err := h.svc.Submit(ctx, future)
	require.ErrorIs(t, err, apperror.ErrValidation)

	tooOld := applicationFor(h.fixture.course.ID, "a@example.com")
	tooOld.YearOfCompletion = 1989
	_, err = h.svc.Submit(ctx, tooOld)
	require.Error(t, err)

	missingCourse := applicationFor(h.fixture.course.ID+100, "a@example.com")
	_, err = h.svc.Submit(ctx, missingCourse)
	require.ErrorIs(t, err, apperror.ErrValidation)

	badEmail := applicationFor(h.fixture.course.ID, "not-an-email")
	_, err = h.svc.Submit(ctx, badEmail)
	require.Error(t, err)
}

func TestAdmissionChangeStatusWorkflow(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()
	created, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "grace@example.com"))
	require.NoError(t, err)

	review, err := h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "under_review", AdminFeedback: "ignored"}, adminSession())
	require.NoError(t, err)
	require.Equal(t, "under_review", review.ApplicationStatus)
	require.Nil(t, review.ReviewedBy)
	require.Nil(t, review.ReviewedDate)
	require.Empty(t, review.AdminFeedback)

	approved, err := h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "approved", AdminFeedback: "<b>Welcome</b> aboard"}, adminSession())
	require.NoError(t, err)
	require.Equal(t, "approved", approved.ApplicationStatus)
	require.Equal(t, "Welcome aboard", approved.AdminFeedback)
	require.NotNil(t, approved.ReviewedBy)
	require.Equal(t, uint(1), *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedDate)

	_, err = h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "rejected"}, adminSession())
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = h.svc.ChangeStatus(ctx, created.ID+50, dto.AdmissionStatusRequest{ApplicationStatus: "approved"}, adminSession())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	stored, err := h.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", stored.ApplicationStatus)

	require.Equal(t, []string{events.SubjectAdmissionStatus, events.SubjectAdmissionStatus}, h.publisher.subjects())
	require.Equal(t, []string{"admission.status_changed", "admission.status_changed"}, h.activity.actions())
	require.Equal(t, "***", h.activity.entries[1].Metadata["email"])
}

func TestAdmissionListFiltersByStatus(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()
	first, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "one@example.com"))
	require.NoError(t, err)
	_, err = h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "two@example.com"))
	require.NoError(t, err)
	_, err = h.svc.ChangeStatus(ctx, first.ID, dto.AdmissionStatusRequest{ApplicationStatus: "rejected"}, adminSession())
	require.NoError(t, err)

	pending, err := h.svc.List(ctx, dto.AdmissionListRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "two@example.com", pending[0].Email)

	all, err := h.svc.List(ctx, dto.AdmissionListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAdmissionDocuments(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()
	created, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "grace@example.com"))
	require.NoError(t, err)

	doc, err := h.svc.UploadDocument(ctx, created.ID, dto.AdmissionDocumentRequest{DocumentType: models.DocumentTypeTranscript}, buildFileHeader(t, "transcript.pdf", pdfBytes))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", doc.MimeType)
	require.Equal(t, "https://cdn.example.com/transcript.pdf", doc.FileURL)

	docs, err := h.svc.ListDocuments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, h.svc.DeleteDocument(ctx, doc.ID, adminSession()))
	require.ErrorIs(t, h.svc.DeleteDocument(ctx, doc.ID, adminSession()), apperror.ErrNotFound)

	_, err = h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "rejected"}, adminSession())
	require.NoError(t, err)
	_, err = h.svc.UploadDocument(ctx, created.ID, dto.AdmissionDocumentRequest{DocumentType: models.DocumentTypePhoto}, buildFileHeader(t, "photo.pdf", pdfBytes))
	require.ErrorIs(t, err, apperror.ErrValidation)
}

type staleAdmissions struct {
	repository.AdmissionRepository
	status string
}

func (s staleAdmissions) GetByID(ctx context.Context, id uint) (models.Admission, error) {
	record, err := s.AdmissionRepository.GetByID(ctx, id)
	record.ApplicationStatus = s.status
	return record, err
}

func TestAdmissionChangeStatusLosesRaceWithoutWriting(t *testing.T) {
	h := newAdmissionHarness(t)
	ctx := context.Background()
	created, err := h.svc.Submit(ctx, applicationFor(h.fixture.course.ID, "ada@example.com"))
	require.NoError(t, err)
	_, err = h.svc.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "approved"}, adminSession())
	require.NoError(t, err)

	// A second admin still holds the pending copy it read before the approval.
	racing := NewAdmissionService(
		staleAdmissions{AdmissionRepository: repository.NewAdmissionRepository(h.db), status: "pending"},
		repository.NewCourseRepository(h.db),
		testValidator(),
		NewFileIntake(h.storage, 5, nil, testLogger()),
		nil,
		nil,
		testLogger(),
	)
	_, err = racing.ChangeStatus(ctx, created.ID, dto.AdmissionStatusRequest{ApplicationStatus: "rejected", AdminFeedback: "late"}, adminSession())
	var invalid apperror.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "pending", invalid.From)
	require.Equal(t, "rejected", invalid.To)

	stored, err := h.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", stored.ApplicationStatus)
	require.Empty(t, stored.AdminFeedback)
}
