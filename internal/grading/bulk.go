package grading

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/campus-go-api/internal/apperror"
)

// Column names of the bulk grade file.
const (
	ColumnSubjectID            = "subject_id"
	ColumnRegistrationNumber   = "student_registration_number"
	ColumnAssignmentPercentage = "assignment_percentage"
	ColumnExamPercentage       = "exam_percentage"
)

// Header is the required first row of a bulk grade file.
var Header = []string{ColumnSubjectID, ColumnRegistrationNumber, ColumnAssignmentPercentage, ColumnExamPercentage}

// KnownStudent is an enrolled student a registration number can resolve to.
type KnownStudent struct {
	StudentID          uint
	RegistrationNumber string
}

// Record is a parsed grade row ready to be applied.
type Record struct {
	StudentID                 uint    `json:"student_id"`
	RegistrationNumber        string  `json:"student_registration_number,omitempty"`
	AssignmentGradePercentage float64 `json:"assignment_grade_percentage"`
	ExamPercentage            float64 `json:"exam_percentage"`
}

// ParseResult holds either all parsed records or the single error that stopped the parse.
type ParseResult struct {
	Records []Record
	Errors  []apperror.ValidationError
}

// OK reports whether the parse produced no errors.
func (r ParseResult) OK() bool {
	return len(r.Errors) == 0
}

// ParseBulkCSV reads a bulk grade CSV for one subject. Parsing is all or
// nothing: the first bad row discards every record and is the only error.
func ParseBulkCSV(r io.Reader, subjectID uint, known []KnownStudent) ParseResult {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return failed(apperror.ValidationError{Field: "file", Message: fmt.Sprintf("Malformed CSV: %v", err)})
		}
		rows = append(rows, row)
	}

	return ParseRows(rows, subjectID, known)
}

// ParseRows validates already split rows, the first being the header.
func ParseRows(rows [][]string, subjectID uint, known []KnownStudent) ParseResult {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return failed(apperror.ValidationError{Field: "file", Message: "File is empty"})
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return failed(apperror.ValidationError{Field: name, Row: 1, Message: fmt.Sprintf("Missing required column: %s", name)})
		}
	}

	byRegistration := make(map[string]uint, len(known))
	for _, student := range known {
		byRegistration[strings.TrimSpace(student.RegistrationNumber)] = student.StudentID
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < len(Header) {
			continue
		}

		record, err := parseRow(row, columns, i+2, subjectID, byRegistration)
		if err != nil {
			return failed(*err)
		}
		records = append(records, record)
	}

	return ParseResult{Records: records}
}

func parseRow(row []string, columns map[string]int, rowNum int, subjectID uint, byRegistration map[string]uint) (Record, *apperror.ValidationError) {
	value := func(name string) string {
		if idx, ok := columns[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	rawSubject := value(ColumnSubjectID)
	rowSubject, err := strconv.ParseUint(rawSubject, 10, 64)
	if err != nil || uint(rowSubject) != subjectID {
		return Record{}, &apperror.ValidationError{
			Field: ColumnSubjectID,
			Row:   rowNum,
			Value: rawSubject,
			Message: fmt.Sprintf("Subject ID mismatch at row %d. Expected %d, got %s. This CSV file cannot be used for the selected subject.",
				rowNum, subjectID, rawSubject),
		}
	}

	assignment, okAssignment := parsePercentage(value(ColumnAssignmentPercentage))
	exam, okExam := parsePercentage(value(ColumnExamPercentage))
	if !okAssignment || !okExam {
		return Record{}, &apperror.ValidationError{
			Field:   ColumnAssignmentPercentage + "," + ColumnExamPercentage,
			Row:     rowNum,
			Message: fmt.Sprintf("Invalid numbers in row %d", rowNum),
		}
	}
	if assignment < 0 || assignment > 100 || exam < 0 || exam > 100 {
		return Record{}, &apperror.ValidationError{
			Field:   ColumnAssignmentPercentage + "," + ColumnExamPercentage,
			Row:     rowNum,
			Message: fmt.Sprintf("Percentages must be between 0 and 100 in row %d", rowNum),
		}
	}

	registration := value(ColumnRegistrationNumber)
	studentID, ok := byRegistration[registration]
	if !ok {
		return Record{}, &apperror.ValidationError{
			Field:   ColumnRegistrationNumber,
			Row:     rowNum,
			Value:   registration,
			Message: fmt.Sprintf("Student %s not found in this subject (row %d)", registration, rowNum),
		}
	}

	return Record{
		StudentID:                 studentID,
		RegistrationNumber:        registration,
		AssignmentGradePercentage: assignment,
		ExamPercentage:            exam,
	}, nil
}

func parsePercentage(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func dropBlankRows(rows [][]string) [][]string {
	kept := rows[:0:0]
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, row)
		}
	}
	return kept
}

func failed(err apperror.ValidationError) ParseResult {
	return ParseResult{Records: nil, Errors: []apperror.ValidationError{err}}
}
