package grading

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TemplateRow is one student line of a grade template.
type TemplateRow struct {
	SubjectID            uint
	RegistrationNumber   string
	AssignmentPercentage *float64
	ExamPercentage       *float64
}

// Cells renders the row in header order. Missing components are written as 0.
func (r TemplateRow) Cells() []string {
	return []string{
		strconv.FormatUint(uint64(r.SubjectID), 10),
		r.RegistrationNumber,
		formatPercentage(r.AssignmentPercentage),
		formatPercentage(r.ExamPercentage),
	}
}

// WriteTemplate writes the header and rows as CSV with every field double quoted.
func WriteTemplate(w io.Writer, rows []TemplateRow) error {
	buf := bufio.NewWriter(w)
	if err := writeQuoted(buf, Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuoted(buf, row.Cells()); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// TemplateFilename names the template download for a subject.
func TemplateFilename(subjectCode string, subjectID uint, ext string) string {
	code := strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' || r == '"' {
			return '_'
		}
		return r
	}, strings.TrimSpace(subjectCode))
	if ext == "" {
		ext = "csv"
	}
	return fmt.Sprintf("grades_%s_%d_template.%s", code, subjectID, ext)
}

func writeQuoted(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(cell, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

// formatPercentage writes a missing component as 0, so re-importing an
// untouched template finalizes draft grades with that component at zero.
func formatPercentage(value *float64) string {
	if value == nil {
		return "0"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
