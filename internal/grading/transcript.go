package grading

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"time"
)

// TranscriptHeader is the column order of a transcript export.
var TranscriptHeader = []string{"Subject Name", "Subject Code", "Credits", "Grade", "Final Percentage", "Grade Points", "Date"}

// TranscriptRow is one subject on a student's transcript.
type TranscriptRow struct {
	SubjectName     string
	SubjectCode     string
	Credits         int
	Letter          Letter
	FinalPercentage *float64
	Date            time.Time
}

// WriteTranscript writes the transcript as CSV with every field double quoted.
// Final percentages are rounded to one decimal and left blank when missing.
func WriteTranscript(w io.Writer, rows []TranscriptRow) error {
	buf := bufio.NewWriter(w)
	if err := writeQuoted(buf, TranscriptHeader); err != nil {
		return err
	}
	for _, row := range rows {
		final := ""
		if row.FinalPercentage != nil {
			final = strconv.FormatFloat(Round1(*row.FinalPercentage), 'f', 1, 64)
		}
		points := ""
		if row.Letter.Valid() {
			points = strconv.FormatFloat(GradePoints(row.Letter), 'f', 1, 64)
		}
		cells := []string{
			row.SubjectName,
			row.SubjectCode,
			strconv.Itoa(row.Credits),
			string(row.Letter),
			final,
			points,
			row.Date.Format("2006-01-02"),
		}
		if err := writeQuoted(buf, cells); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// GPA is the credit-weighted mean of grade points over rows with a valid
// letter. Rows with zero credits count once. It returns 0 and 0 when nothing
// is lettered.
func GPA(rows []TranscriptRow) (gpa float64, credits int) {
	var weighted float64
	var weight int
	for _, row := range rows {
		if !row.Letter.Valid() {
			continue
		}
		w := row.Credits
		if w <= 0 {
			w = 1
		}
		weighted += GradePoints(row.Letter) * float64(w)
		weight += w
		credits += row.Credits
	}
	if weight == 0 {
		return 0, 0
	}
	return math.Round(weighted/float64(weight)*100) / 100, credits
}
