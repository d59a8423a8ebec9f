package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type campusFixture struct {
	lecturer models.Lecturer
	course   models.Course
	subject  models.Subject
	students []models.Student
}

func (f campusFixture) lecturerSession() Session {
	id := f.lecturer.ID
	return Session{UserID: f.lecturer.UserID, Role: models.RoleLecturer, LecturerID: &id}
}

func (f campusFixture) studentSession(i int) Session {
	id := f.students[i].ID
	return Session{UserID: f.students[i].UserID, Role: models.RoleStudent, StudentID: &id}
}

func adminSession() Session {
	id := uint(1)
	return Session{UserID: 1, Role: models.RoleAdmin, AdminID: &id}
}

func seedCampus(t *testing.T, db *gorm.DB, studentCount int) campusFixture {
	t.Helper()
	f := campusFixture{}

	lecturerUser := models.User{Email: "lecturer@example.com", PasswordHash: "x", Role: models.RoleLecturer, Status: models.StatusActive}
	require.NoError(t, db.Create(&lecturerUser).Error)
	f.lecturer = models.Lecturer{UserID: lecturerUser.ID, EmployeeID: "EMP001", FirstName: "Ada", LastName: "Lovelace", Email: lecturerUser.Email, Status: models.StatusActive}
	require.NoError(t, db.Omit("User").Create(&f.lecturer).Error)

	f.course = models.Course{CourseCode: "BSC-CS", CourseName: "BSc Computer Science", DurationYears: 3, Status: models.StatusActive}
	require.NoError(t, db.Create(&f.course).Error)

	lecturerID := f.lecturer.ID
	f.subject = models.Subject{CourseID: f.course.ID, SubjectCode: "CS101", SubjectName: "Programming", Credits: 4, Semester: 1, LecturerID: &lecturerID, Status: models.StatusActive}
	require.NoError(t, db.Omit("Course", "Lecturer").Create(&f.subject).Error)

	for i := 0; i < studentCount; i++ {
		user := models.User{Email: fmt.Sprintf("student%d@example.com", i+1), PasswordHash: "x", Role: models.RoleStudent, Status: models.StatusActive}
		require.NoError(t, db.Create(&user).Error)
		student := models.Student{
			UserID:             user.ID,
			RegistrationNumber: fmt.Sprintf("REG2024%03d", i+1),
			FirstName:          "Student",
			LastName:           fmt.Sprintf("%d", i+1),
			Email:              user.Email,
			Status:             models.StatusActive,
		}
		require.NoError(t, db.Omit("User").Create(&student).Error)
		enrollment := models.Enrollment{StudentID: student.ID, CourseID: f.course.ID, EnrollmentDate: time.Now(), Status: models.EnrollmentStatusActive}
		require.NoError(t, db.Omit("Student", "Course").Create(&enrollment).Error)
		f.students = append(f.students, student)
	}
	return f
}

func ptrFloat(v float64) *float64 {
	return &v
}

func ptrUint(v uint) *uint {
	return &v
}

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func (m *memoryActivityRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type recordedEvent struct {
	subject string
	payload interface{}
}

type memoryPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *memoryPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{subject: subject, payload: payload})
	return nil
}

func (p *memoryPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	subjects := make([]string, 0, len(p.events))
	for _, event := range p.events {
		subjects = append(subjects, event.subject)
	}
	return subjects
}

type storageStub struct {
	uploaded bytes.Buffer
	names    []string
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return "https://cdn.example.com/" + name, nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
