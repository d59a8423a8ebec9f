package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// StudentService serves the student's own profile and the lecturer's student list.
type StudentService interface {
	Profile(ctx context.Context, session Session) (dto.StudentProfileResponse, error)
	LecturerStudents(ctx context.Context, session Session, search string) ([]dto.LecturerStudentResponse, error)
}

// StudentDependencies groups the repositories the student views read.
type StudentDependencies struct {
	Students    repository.StudentRepository
	Enrollments repository.EnrollmentRepository
	Submissions repository.SubmissionRepository
	Grades      repository.GradeRepository
}

type studentService struct {
	deps   StudentDependencies
	logger zerolog.Logger
}

// NewStudentService builds the student view service.
func NewStudentService(deps StudentDependencies, logger zerolog.Logger) StudentService {
	return &studentService{
		deps:   deps,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Profile(ctx context.Context, session Session) (dto.StudentProfileResponse, error) {
	if session.StudentID == nil {
		return dto.StudentProfileResponse{}, fmt.Errorf("student profile: %w", ErrForbidden)
	}
	studentID := *session.StudentID

	student, err := s.deps.Students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProfileResponse{}, apperror.NotFoundError{Entity: "student", ID: studentID}
		}
		return dto.StudentProfileResponse{}, apperror.Persistence("load student", err)
	}
	enrollments, err := s.deps.Enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentProfileResponse{}, apperror.Persistence("list enrollments", err)
	}
	submissions, err := s.deps.Submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentProfileResponse{}, apperror.Persistence("list submissions", err)
	}
	grades, err := s.deps.Grades.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentProfileResponse{}, apperror.Persistence("list grades", err)
	}

	response := dto.StudentProfileResponse{
		Profile: dto.StudentProfile{
			StudentID:          student.ID,
			RegistrationNumber: student.RegistrationNumber,
			FirstName:          student.FirstName,
			LastName:           student.LastName,
			Email:              student.Email,
			Phone:              student.Phone,
			DateOfBirth:        student.DateOfBirth,
			Gender:             student.Gender,
			Address:            student.Address,
			City:               student.City,
			Country:            student.Country,
		},
		Courses: make([]dto.StudentCourse, 0, len(enrollments)),
	}

	// The profile carries the earliest enrollment.
	for i, enrollment := range enrollments {
		if i == 0 || enrollment.EnrollmentDate.Before(*response.Profile.EnrollmentDate) {
			date := enrollment.EnrollmentDate
			response.Profile.EnrollmentDate = &date
			response.Profile.EnrollmentStatus = enrollment.Status
		}
		response.Courses = append(response.Courses, dto.StudentCourse{
			CourseID:         enrollment.CourseID,
			CourseCode:       enrollment.Course.CourseCode,
			CourseName:       enrollment.Course.CourseName,
			Description:      enrollment.Course.Description,
			TotalCredits:     enrollment.Course.TotalCredits,
			EnrollmentDate:   enrollment.EnrollmentDate,
			EnrollmentStatus: enrollment.Status,
		})
	}
	response.Academics.TotalCourses = len(enrollments)

	response.Academics.TotalSubmissions = len(submissions)
	for _, submission := range submissions {
		if submission.IsGraded() {
			response.Academics.GradedSubmissions++
		} else {
			response.Academics.PendingSubmissions++
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
		response.Academics.AverageFinal = &average
	}
	response.Academics.GPA, _ = grading.GPA(rows)

	return response, nil
}

// LecturerStudents lists the students enrolled in courses the lecturer
// teaches. search matches the full name or email case-insensitively and the
// registration number as a substring.
func (s *studentService) LecturerStudents(ctx context.Context, session Session, search string) ([]dto.LecturerStudentResponse, error) {
	if session.LecturerID == nil {
		return nil, fmt.Errorf("lecturer students: %w", ErrForbidden)
	}
	lecturerID := *session.LecturerID

	enrollments, err := s.deps.Enrollments.ListForLecturer(ctx, lecturerID)
	if err != nil {
		return nil, apperror.Persistence("list lecturer enrollments", err)
	}
	averages, err := s.deps.Grades.AveragesForLecturer(ctx, lecturerID)
	if err != nil {
		return nil, apperror.Persistence("average lecturer grades", err)
	}

	search = strings.TrimSpace(search)
	byStudent := make(map[uint]*dto.LecturerStudentResponse)
	courses := make(map[uint]map[uint]struct{})
	for _, enrollment := range enrollments {
		student := enrollment.Student
		if !matchesStudent(student, search) {
			continue
		}
		entry, ok := byStudent[student.ID]
		if !ok {
			entry = &dto.LecturerStudentResponse{
				StudentID:          student.ID,
				RegistrationNumber: student.RegistrationNumber,
				FirstName:          student.FirstName,
				LastName:           student.LastName,
				Email:              student.Email,
				EnrollmentDate:     enrollment.EnrollmentDate,
				EnrollmentStatus:   enrollment.Status,
			}
			if average, ok := averages[student.ID]; ok {
				rounded := grading.Round1(average)
				entry.AverageScore = &rounded
			}
			byStudent[student.ID] = entry
			courses[student.ID] = make(map[uint]struct{})
		}
		courses[student.ID][enrollment.CourseID] = struct{}{}
	}

	result := make([]dto.LecturerStudentResponse, 0, len(byStudent))
	for id, entry := range byStudent {
		entry.CoursesEnrolled = len(courses[id])
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		if result[i].FirstName != result[j].FirstName {
			return result[i].FirstName < result[j].FirstName
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func matchesStudent(student models.Student, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(student.FullName()), needle) ||
		strings.Contains(strings.ToLower(student.Email), needle) ||
		strings.Contains(student.RegistrationNumber, search)
}
