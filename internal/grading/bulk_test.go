package grading

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var roster = []KnownStudent{
	{StudentID: 1, RegistrationNumber: "REG2024001"},
	{StudentID: 2, RegistrationNumber: "REG2024002"},
	{StudentID: 3, RegistrationNumber: "REG2024003"},
}

func TestParseBulkCSVValid(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001,80,90\n" +
		"\n" +
		"7,REG2024002,65.5,70\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.True(t, result.OK())
	require.Len(t, result.Records, 2)
	require.Equal(t, Record{StudentID: 1, RegistrationNumber: "REG2024001", AssignmentGradePercentage: 80, ExamPercentage: 90}, result.Records[0])
	require.Equal(t, 65.5, result.Records[1].AssignmentGradePercentage)
}

func TestParseBulkCSVSubjectMismatchAbortsWholeFile(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001,80,90\n" +
		"8,REG2024002,70,70\n" +
		"7,REG2024003,60,60\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 3, result.Errors[0].Row)
	require.Contains(t, result.Errors[0].Error(), "Subject ID mismatch at row 3. Expected 7, got 8.")
}

func TestParseBulkCSVInvalidNumber(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001,eighty,90\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "Invalid numbers in row 2", result.Errors[0].Message)
}

func TestParseBulkCSVUnknownRegistration(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001,80,90\n" +
		"7,REG9999999,80,90\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Message, "REG9999999")
}

func TestParseBulkCSVOutOfRange(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001,101,90\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
}

func TestParseBulkCSVMissingColumn(t *testing.T) {
	input := "subject_id,student_registration_number,exam_percentage\n7,REG2024001,90\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.Empty(t, result.Records)
	require.Contains(t, result.Errors[0].Message, "assignment_percentage")
}

func TestParseBulkCSVSkipsShortRows(t *testing.T) {
	input := "subject_id,student_registration_number,assignment_percentage,exam_percentage\n" +
		"7,REG2024001\n" +
		"7,REG2024002,50,50\n"

	result := ParseBulkCSV(strings.NewReader(input), 7, roster)
	require.True(t, result.OK())
	require.Len(t, result.Records, 1)
	require.Equal(t, uint(2), result.Records[0].StudentID)
}

type recordingWriter struct {
	failFor map[uint]error
	applied []GradeInput
}

func (w *recordingWriter) WriteGrade(_ context.Context, input GradeInput) error {
	if err, ok := w.failFor[input.StudentID]; ok {
		return err
	}
	w.applied = append(w.applied, input)
	return nil
}

func TestBulkApplierIsolatesFailures(t *testing.T) {
	writer := &recordingWriter{failFor: map[uint]error{13: errors.New("database is locked")}}
	records := []Record{
		{StudentID: 11, AssignmentGradePercentage: 80, ExamPercentage: 80},
		{StudentID: 12, AssignmentGradePercentage: 70, ExamPercentage: 75},
		{StudentID: 13, AssignmentGradePercentage: 60, ExamPercentage: 65},
		{StudentID: 14, AssignmentGradePercentage: 90, ExamPercentage: 95},
		{StudentID: 15, AssignmentGradePercentage: 50, ExamPercentage: 55},
	}

	var seen []Progress
	result := NewBulkApplier(writer).Apply(context.Background(), 7, records, func(p Progress) {
		seen = append(seen, p)
	})

	require.Equal(t, 4, result.Completed)
	require.Equal(t, 5, result.Total)
	require.Len(t, result.Errors, 1)
	require.Equal(t, uint(13), result.Errors[0].StudentID)
	require.Contains(t, result.Errors[0].Message, "student ID 13")
	require.Contains(t, result.Errors[0].Message, "database is locked")

	applied := make([]uint, 0, len(writer.applied))
	for _, input := range writer.applied {
		applied = append(applied, input.StudentID)
		require.Equal(t, uint(7), input.SubjectID)
	}
	require.Equal(t, []uint{11, 12, 14, 15}, applied)

	require.Len(t, seen, 5)
	require.Equal(t, Progress{Completed: 2, Attempted: 3, Total: 5}, seen[2])
}

// Bulk records leave the letter empty for the store to fill in, unlike the
// single-record dialog which sends a reconciled letter.
func TestBulkApplySendsEmptyLetterUnlikeDialog(t *testing.T) {
	writer := &recordingWriter{}
	NewBulkApplier(writer).Apply(context.Background(), 7, []Record{{StudentID: 1, AssignmentGradePercentage: 95, ExamPercentage: 95}}, nil)

	require.Len(t, writer.applied, 1)
	require.Equal(t, Letter(""), writer.applied[0].GradeLetter)
	require.Equal(t, 0.0, writer.applied[0].ExamMarks)

	_, preview := Preview(&writer.applied[0].AssignmentGradePercentage, &writer.applied[0].ExamPercentage)
	require.Equal(t, LetterAPlus, preview)
}

func TestBulkApplierCancelledContext(t *testing.T) {
	writer := &recordingWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewBulkApplier(writer).Apply(ctx, 7, []Record{{StudentID: 1}, {StudentID: 2}}, nil)
	require.Equal(t, 0, result.Completed)
	require.Equal(t, 2, result.Total)
	require.Len(t, result.Errors, 2)
	require.Empty(t, writer.applied)
}

func TestTemplateRoundTrip(t *testing.T) {
	a1, e1 := 82.5, 91.0
	a3 := 40.0
	rows := []TemplateRow{
		{SubjectID: 7, RegistrationNumber: "REG2024001", AssignmentPercentage: &a1, ExamPercentage: &e1},
		{SubjectID: 7, RegistrationNumber: "REG2024002"},
		{SubjectID: 7, RegistrationNumber: "REG2024003", AssignmentPercentage: &a3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, rows))
	require.True(t, strings.HasPrefix(buf.String(), `"subject_id","student_registration_number","assignment_percentage","exam_percentage"`))
	require.Contains(t, buf.String(), `"7","REG2024001","82.5","91"`)

	result := ParseBulkCSV(bytes.NewReader(buf.Bytes()), 7, roster)
	require.True(t, result.OK())
	require.Equal(t, []Record{
		{StudentID: 1, RegistrationNumber: "REG2024001", AssignmentGradePercentage: 82.5, ExamPercentage: 91},
		{StudentID: 2, RegistrationNumber: "REG2024002", AssignmentGradePercentage: 0, ExamPercentage: 0},
		{StudentID: 3, RegistrationNumber: "REG2024003", AssignmentGradePercentage: 40, ExamPercentage: 0},
	}, result.Records)
}

func TestTemplateXLSXRoundTrip(t *testing.T) {
	a, e := 77.0, 64.25
	rows := []TemplateRow{{SubjectID: 7, RegistrationNumber: "REG2024002", AssignmentPercentage: &a, ExamPercentage: &e}}

	var buf bytes.Buffer
	require.NoError(t, WriteTemplateXLSX(&buf, rows))

	result := ParseBulkXLSX(bytes.NewReader(buf.Bytes()), 7, roster)
	require.True(t, result.OK())
	require.Equal(t, []Record{{StudentID: 2, RegistrationNumber: "REG2024002", AssignmentGradePercentage: 77, ExamPercentage: 64.25}}, result.Records)
}

func TestTemplateFilename(t *testing.T) {
	require.Equal(t, "grades_CS_101_7_template.csv", TemplateFilename("CS 101", 7, "csv"))
	require.Equal(t, "grades_MATH2_3_template.xlsx", TemplateFilename("MATH2", 3, "xlsx"))
}

func TestTableEditsKeepInsertionOrder(t *testing.T) {
	table := NewTable()
	table.SetExam(2, "REG2024002", 70)
	table.SetAssignment(1, "REG2024001", 90)
	table.SetAssignment(2, "", 60)
	table.SetExam(3, "REG2024003", 50)
	table.Remove(1)
	table.Remove(42)

	require.Equal(t, 2, table.Len())
	require.Equal(t, []Record{
		{StudentID: 2, RegistrationNumber: "REG2024002", AssignmentGradePercentage: 60, ExamPercentage: 70},
		{StudentID: 3, RegistrationNumber: "REG2024003", AssignmentGradePercentage: 0, ExamPercentage: 50},
	}, table.Records())
}
