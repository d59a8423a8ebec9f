package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

type gradingHarness struct {
	db        *gorm.DB
	fixture   campusFixture
	svc       GradingService
	activity  *memoryActivityRepo
	publisher *memoryPublisher
}

func newGradingHarness(t *testing.T, students int) gradingHarness {
	t.Helper()
	db := newServiceDB(t)
	f := seedCampus(t, db, students)
	activityRepo := &memoryActivityRepo{}
	publisher := &memoryPublisher{}
	svc := NewGradingService(GradingDependencies{
		Subjects:    repository.NewSubjectRepository(db),
		Enrollments: repository.NewEnrollmentRepository(db),
		Grades:      repository.NewGradeRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
	}, testValidator(), NewActivityService(activityRepo, testLogger()), publisher, testLogger())
	return gradingHarness{db: db, fixture: f, svc: svc, activity: activityRepo, publisher: publisher}
}

func (h gradingHarness) storedGrade(t *testing.T, studentID uint) models.SubjectGrade {
	t.Helper()
	grade, err := repository.NewGradeRepository(h.db).Get(context.Background(), studentID, h.fixture.subject.ID)
	require.NoError(t, err)
	return grade
}

func TestGradingSaveFallsBackToBuiltInBands(t *testing.T) {
	h := newGradingHarness(t, 1)
	student := h.fixture.students[0]

	resp, err := h.svc.SaveGrade(context.Background(), h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 student.ID,
		AssignmentGradePercentage: ptrFloat(90),
		ExamPercentage:            ptrFloat(84),
		GradeLetter:               "B",
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.NotNil(t, resp.FinalPercentage)
	require.InDelta(t, 86.4, *resp.FinalPercentage, 0.0001)
	require.Equal(t, "A", resp.GradeLetter)
	require.Equal(t, models.GradeStatusFinalized, resp.GradeStatus)
	require.Equal(t, h.fixture.lecturer.UserID, *resp.GradedBy)

	require.Contains(t, h.activity.actions(), "grade.saved")
	require.Contains(t, h.publisher.subjects(), events.SubjectGradeSaved)
}

func TestGradingSaveUsesGradeBandTable(t *testing.T) {
	h := newGradingHarness(t, 1)
	require.NoError(t, repository.NewGradeRepository(h.db).SeedBands(context.Background(), []models.GradeBand{
		{Letter: "B", MinPercentage: 0, GradePoints: 3},
	}))

	resp, err := h.svc.SaveGrade(context.Background(), h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 h.fixture.students[0].ID,
		AssignmentGradePercentage: ptrFloat(90),
		ExamPercentage:            ptrFloat(84),
		GradeLetter:               "A",
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, "B", resp.GradeLetter)
}

func TestGradingSaveWithMissingComponentStaysDraft(t *testing.T) {
	h := newGradingHarness(t, 1)
	student := h.fixture.students[0]

	resp, err := h.svc.SaveGrade(context.Background(), h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 student.ID,
		AssignmentGradePercentage: ptrFloat(70),
		GradeLetter:               "C+",
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Nil(t, resp.FinalPercentage)
	require.Nil(t, resp.ExamPercentage)
	require.Equal(t, "C+", resp.GradeLetter)
	require.Equal(t, models.GradeStatusDraft, resp.GradeStatus)

	// A second save for the same pair overwrites the first.
	resp, err = h.svc.SaveGrade(context.Background(), h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 student.ID,
		AssignmentGradePercentage: ptrFloat(70),
		ExamPercentage:            ptrFloat(50),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.InDelta(t, 58, *resp.FinalPercentage, 0.0001)
	require.Equal(t, "D", h.storedGrade(t, student.ID).GradeLetter)
}

func TestGradingSaveRejectsForeignLecturerAndUnknownStudent(t *testing.T) {
	h := newGradingHarness(t, 1)
	ctx := context.Background()
	req := dto.GradeSaveRequest{StudentID: h.fixture.students[0].ID, AssignmentGradePercentage: ptrFloat(50), ExamPercentage: ptrFloat(50)}

	other := Session{UserID: 99, Role: models.RoleLecturer, LecturerID: ptrUint(99)}
	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, req, other)
	require.ErrorIs(t, err, ErrForbidden)

	req.StudentID = 4242
	_, err = h.svc.SaveGrade(ctx, h.fixture.subject.ID, req, h.fixture.lecturerSession())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	req.StudentID = h.fixture.students[0].ID
	req.SubjectID = h.fixture.subject.ID + 1
	_, err = h.svc.SaveGrade(ctx, h.fixture.subject.ID, req, h.fixture.lecturerSession())
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGradingPreviewDoesNotPersist(t *testing.T) {
	h := newGradingHarness(t, 1)
	ctx := context.Background()
	studentID := h.fixture.students[0].ID

	preview, err := h.svc.Preview(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{StudentID: studentID, AssignmentGradePercentage: ptrFloat(100), ExamPercentage: ptrFloat(90)})
	require.NoError(t, err)
	require.InDelta(t, 94, *preview.FinalPercentage, 0.0001)
	require.Equal(t, "A+", preview.GradeLetter)

	partial, err := h.svc.Preview(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{StudentID: studentID, ExamPercentage: ptrFloat(90)})
	require.NoError(t, err)
	require.Nil(t, partial.FinalPercentage)
	require.Empty(t, partial.GradeLetter)

	_, err = repository.NewGradeRepository(h.db).Get(ctx, studentID, h.fixture.subject.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGradingBulkCSVAppliesEveryRow(t *testing.T) {
	h := newGradingHarness(t, 2)
	subjectID := h.fixture.subject.ID
	csv := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		uintString(subjectID) + ",REG2024001,80,90\n" +
		uintString(subjectID) + ",REG2024002,40,30\n"

	resp, err := h.svc.BulkCSV(context.Background(), subjectID, strings.NewReader(csv), h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, 2, resp.Completed)
	require.Equal(t, 2, resp.Total)
	require.Empty(t, resp.Errors)

	first := h.storedGrade(t, h.fixture.students[0].ID)
	require.InDelta(t, 86, *first.FinalPercentage, 0.0001)
	require.Equal(t, "A", first.GradeLetter)
	second := h.storedGrade(t, h.fixture.students[1].ID)
	require.Equal(t, "F", second.GradeLetter)

	require.Contains(t, h.publisher.subjects(), events.SubjectGradesBulk)
	require.Contains(t, h.activity.actions(), "grades.bulk_uploaded")
	require.NotContains(t, h.activity.actions(), "grade.saved")
}

func TestGradingBulkCSVRejectsWholeFile(t *testing.T) {
	h := newGradingHarness(t, 2)
	subjectID := h.fixture.subject.ID
	csv := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		uintString(subjectID) + ",REG2024001,80,90\n" +
		uintString(subjectID) + ",REG9999999,40,30\n"

	resp, err := h.svc.BulkCSV(context.Background(), subjectID, strings.NewReader(csv), h.fixture.lecturerSession())
	require.Error(t, err)
	require.ErrorIs(t, err, apperror.ErrValidation)

	var rejected BulkRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Len(t, rejected.Errors, 1)
	require.Contains(t, resp.ParseErrors[0], "REG9999999")

	_, err = repository.NewGradeRepository(h.db).Get(context.Background(), h.fixture.students[0].ID, subjectID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGradingBulkRecordsRejectsOutOfRange(t *testing.T) {
	h := newGradingHarness(t, 1)
	subjectID := h.fixture.subject.ID

	_, err := h.svc.BulkRecords(context.Background(), subjectID, dto.BulkGradeRequest{Records: []grading.Record{
		{StudentID: h.fixture.students[0].ID, AssignmentGradePercentage: 120, ExamPercentage: 50},
	}}, h.fixture.lecturerSession())
	require.ErrorIs(t, err, apperror.ErrValidation)

	resp, err := h.svc.BulkRecords(context.Background(), subjectID, dto.BulkGradeRequest{Records: []grading.Record{
		{StudentID: h.fixture.students[0].ID, AssignmentGradePercentage: 60, ExamPercentage: 70},
	}}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, 1, resp.Completed)
	require.Equal(t, "C", h.storedGrade(t, h.fixture.students[0].ID).GradeLetter)
}

func TestGradingTemplateCarriesCurrentGrades(t *testing.T) {
	h := newGradingHarness(t, 2)
	ctx := context.Background()
	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 h.fixture.students[0].ID,
		AssignmentGradePercentage: ptrFloat(75),
		ExamPercentage:            ptrFloat(65),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)

	file, err := h.svc.Template(ctx, h.fixture.subject.ID, TemplateCSV, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Contains(t, file.ContentType, "text/csv")
	require.True(t, strings.HasSuffix(file.Name, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, `"subject_id","student_registration_number","assignment_percentage","exam_percentage"`, strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1], `"REG2024001"`)
	require.Contains(t, lines[1], `"75"`)
	require.Contains(t, lines[2], `"REG2024002"`)

	parsed := grading.ParseBulkCSV(strings.NewReader(string(file.Data)), h.fixture.subject.ID, []grading.KnownStudent{
		{StudentID: h.fixture.students[0].ID, RegistrationNumber: "REG2024001"},
		{StudentID: h.fixture.students[1].ID, RegistrationNumber: "REG2024002"},
	})
	require.True(t, parsed.OK())
	require.Len(t, parsed.Records, 2)
}

func TestGradingStudentGradesAndTranscript(t *testing.T) {
	h := newGradingHarness(t, 1)
	ctx := context.Background()
	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 h.fixture.students[0].ID,
		AssignmentGradePercentage: ptrFloat(82),
		ExamPercentage:            ptrFloat(82),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)

	grades, err := h.svc.StudentGrades(ctx, h.fixture.studentSession(0))
	require.NoError(t, err)
	require.Len(t, grades.Grades, 1)
	require.Equal(t, "B+", grades.Grades[0].GradeLetter)
	require.Equal(t, 3.5, grades.GPA)
	require.Equal(t, 4, grades.TotalCredits)

	file, err := h.svc.Transcript(ctx, h.fixture.studentSession(0))
	require.NoError(t, err)
	require.Contains(t, string(file.Data), `"Programming","CS101","4","B+","82.0","3.5"`)

	_, err = h.svc.StudentGrades(ctx, h.fixture.lecturerSession())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGradingBulkRecordsCollapseRepeatedStudents(t *testing.T) {
	h := newGradingHarness(t, 3)
	students := h.fixture.students

	resp, err := h.svc.BulkRecords(context.Background(), h.fixture.subject.ID, dto.BulkGradeRequest{
		Records: []grading.Record{
			{StudentID: students[0].ID, AssignmentGradePercentage: 50, ExamPercentage: 50},
			{StudentID: students[1].ID, AssignmentGradePercentage: 80, ExamPercentage: 80},
			{StudentID: students[0].ID, AssignmentGradePercentage: 90, ExamPercentage: 95},
			{StudentID: students[2].ID, AssignmentGradePercentage: 40, ExamPercentage: 40},
		},
		Remove: []uint{students[2].ID},
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	require.Equal(t, 2, resp.Completed)

	first := h.storedGrade(t, students[0].ID)
	require.InDelta(t, 93, *first.FinalPercentage, 0.0001)
	require.Equal(t, "A+", first.GradeLetter)

	_, err = repository.NewGradeRepository(h.db).Get(context.Background(), students[2].ID, h.fixture.subject.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGradingRosterPreviewCountsMissingAsZero(t *testing.T) {
	h := newGradingHarness(t, 2)
	ctx := context.Background()
	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 h.fixture.students[0].ID,
		AssignmentGradePercentage: ptrFloat(90),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)

	roster, err := h.svc.Roster(ctx, h.fixture.subject.ID, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Len(t, roster.Students, 2)

	drafted := roster.Students[0]
	require.NotNil(t, drafted.Grade)
	require.Nil(t, drafted.Grade.FinalPercentage)
	require.Equal(t, 36.0, drafted.PreviewPercentage)
	require.Equal(t, "F", drafted.PreviewLetter)

	ungraded := roster.Students[1]
	require.Nil(t, ungraded.Grade)
	require.Equal(t, 0.0, ungraded.PreviewPercentage)
	require.Equal(t, "F", ungraded.PreviewLetter)
}

// An untouched template writes a missing exam as 0, so importing it back
// finalizes the draft with a zero exam.
func TestGradingTemplateReimportFillsMissingExamWithZero(t *testing.T) {
	h := newGradingHarness(t, 1)
	ctx := context.Background()
	student := h.fixture.students[0]
	_, err := h.svc.SaveGrade(ctx, h.fixture.subject.ID, dto.GradeSaveRequest{
		StudentID:                 student.ID,
		AssignmentGradePercentage: ptrFloat(80),
	}, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, models.GradeStatusDraft, h.storedGrade(t, student.ID).GradeStatus)

	file, err := h.svc.Template(ctx, h.fixture.subject.ID, TemplateCSV, h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Contains(t, string(file.Data), `"80","0"`)

	resp, err := h.svc.BulkCSV(ctx, h.fixture.subject.ID, strings.NewReader(string(file.Data)), h.fixture.lecturerSession())
	require.NoError(t, err)
	require.Equal(t, 1, resp.Completed)

	stored := h.storedGrade(t, student.ID)
	require.NotNil(t, stored.ExamPercentage)
	require.Equal(t, 0.0, *stored.ExamPercentage)
	require.InDelta(t, 32, *stored.FinalPercentage, 0.0001)
	require.Equal(t, models.GradeStatusFinalized, stored.GradeStatus)
}
