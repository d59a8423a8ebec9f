package grading

import "math"

const (
	// AssignmentWeight is the share of the assignment component in the final percentage.
	AssignmentWeight = 0.4
	// ExamWeight is the share of the exam component in the final percentage.
	ExamWeight = 0.6
)

// FinalPercentage combines the assignment and exam components. The result is not rounded.
func FinalPercentage(assignmentPct, examPct float64) float64 {
	return assignmentPct*AssignmentWeight + examPct*ExamWeight
}

// FinalFromComponents returns nil unless both components are present.
func FinalFromComponents(assignmentPct, examPct *float64) *float64 {
	if assignmentPct == nil || examPct == nil {
		return nil
	}
	final := FinalPercentage(*assignmentPct, *examPct)
	return &final
}

// Preview computes the placeholder values shown before a record exists;
// missing components count as zero here and only here.
func Preview(assignmentPct, examPct *float64) (float64, Letter) {
	var a, e float64
	if assignmentPct != nil {
		a = *assignmentPct
	}
	if examPct != nil {
		e = *examPct
	}
	final := FinalPercentage(a, e)
	return final, LetterGrade(final)
}

// AssignmentPercentage converts obtained marks to a percentage of total marks.
func AssignmentPercentage(marksObtained, totalMarks float64) float64 {
	if totalMarks <= 0 {
		return 0
	}
	return marksObtained / totalMarks * 100
}

// Round1 rounds to one decimal place for display.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}
