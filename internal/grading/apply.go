package grading

import (
	"context"
	"fmt"
)

// GradeInput is one grade upsert sent to the store. An empty GradeLetter asks
// the store to derive the letter itself.
type GradeInput struct {
	StudentID                 uint
	SubjectID                 uint
	AssignmentGradePercentage float64
	ExamMarks                 float64
	ExamPercentage            float64
	GradeLetter               Letter
}

// GradeWriter persists a single grade.
type GradeWriter interface {
	WriteGrade(ctx context.Context, input GradeInput) error
}

// GradeWriterFunc adapts a function to GradeWriter.
type GradeWriterFunc func(ctx context.Context, input GradeInput) error

// WriteGrade calls f.
func (f GradeWriterFunc) WriteGrade(ctx context.Context, input GradeInput) error {
	return f(ctx, input)
}

// RecordError describes a record that could not be applied.
type RecordError struct {
	StudentID uint   `json:"student_id"`
	Message   string `json:"message"`
}

func (e RecordError) Error() string {
	return e.Message
}

// BulkResult summarises a bulk apply.
type BulkResult struct {
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Errors    []RecordError `json:"errors"`
}

// Progress is reported after every record.
type Progress struct {
	Completed int
	Attempted int
	Total     int
}

// BulkApplier applies records one at a time, in order, continuing past failures.
type BulkApplier struct {
	writer GradeWriter
}

// NewBulkApplier wraps a grade writer.
func NewBulkApplier(writer GradeWriter) *BulkApplier {
	return &BulkApplier{writer: writer}
}

// Apply writes every record for the subject. Letters are left empty so the
// store computes them. A cancelled context marks the remaining records as
// failed; records already written stay written.
func (a *BulkApplier) Apply(ctx context.Context, subjectID uint, records []Record, progress func(Progress)) BulkResult {
	result := BulkResult{Total: len(records), Errors: []RecordError{}}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, RecordError{
				StudentID: record.StudentID,
				Message:   fmt.Sprintf("Error uploading grade for student ID %d: %v", record.StudentID, err),
			})
		} else {
			err := a.writer.WriteGrade(ctx, GradeInput{
				StudentID:                 record.StudentID,
				SubjectID:                 subjectID,
				AssignmentGradePercentage: record.AssignmentGradePercentage,
				ExamMarks:                 0,
				ExamPercentage:            record.ExamPercentage,
				GradeLetter:               "",
			})
			if err != nil {
				result.Errors = append(result.Errors, RecordError{
					StudentID: record.StudentID,
					Message:   fmt.Sprintf("Error uploading grade for student ID %d: %v", record.StudentID, err),
				})
			} else {
				result.Completed++
			}
		}

		if progress != nil {
			progress(Progress{Completed: result.Completed, Attempted: i + 1, Total: result.Total})
		}
	}

	return result
}
