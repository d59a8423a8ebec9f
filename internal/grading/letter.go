package grading

import "math"

// Letter is a letter grade such as "A+" or "F".
type Letter string

const (
	LetterAPlus Letter = "A+"
	LetterA     Letter = "A"
	LetterBPlus Letter = "B+"
	LetterB     Letter = "B"
	LetterCPlus Letter = "C+"
	LetterC     Letter = "C"
	LetterDPlus Letter = "D+"
	LetterD     Letter = "D"
	LetterF     Letter = "F"
)

// Band is an inclusive lower bound and the letter it maps to.
type Band struct {
	MinPercentage float64
	Letter        Letter
}

// Bands lists the letter thresholds in descending order.
var Bands = []Band{
	{MinPercentage: 90, Letter: LetterAPlus},
	{MinPercentage: 85, Letter: LetterA},
	{MinPercentage: 80, Letter: LetterBPlus},
	{MinPercentage: 75, Letter: LetterB},
	{MinPercentage: 70, Letter: LetterCPlus},
	{MinPercentage: 65, Letter: LetterC},
	{MinPercentage: 60, Letter: LetterDPlus},
	{MinPercentage: 55, Letter: LetterD},
	{MinPercentage: 0, Letter: LetterF},
}

var gradePoints = map[Letter]float64{
	LetterAPlus: 4.0,
	LetterA:     4.0,
	LetterBPlus: 3.5,
	LetterB:     3.0,
	LetterCPlus: 2.5,
	LetterC:     2.0,
	LetterDPlus: 1.5,
	LetterD:     1.0,
	LetterF:     0,
}

// LetterGrade maps a percentage to its letter. Input outside [0, 100] is
// clamped to the nearest band.
func LetterGrade(percentage float64) Letter {
	pct := Clamp(percentage)
	for _, band := range Bands {
		if pct >= band.MinPercentage {
			return band.Letter
		}
	}
	return LetterF
}

// Clamp bounds a percentage to [0, 100]. NaN becomes 0.
func Clamp(percentage float64) float64 {
	switch {
	case math.IsNaN(percentage):
		return 0
	case percentage < 0:
		return 0
	case percentage > 100:
		return 100
	default:
		return percentage
	}
}

// Reconcile picks the letter to persist. A non-empty authoritative letter
// always wins over the locally computed preview.
func Reconcile(preview, authoritative Letter) Letter {
	if authoritative != "" {
		return authoritative
	}
	return preview
}

// Valid reports whether l is one of the known letters.
func (l Letter) Valid() bool {
	_, ok := gradePoints[l]
	return ok
}

// GradePoints returns the four-point scale value for a letter, zero for unknown letters.
func GradePoints(l Letter) float64 {
	return gradePoints[l]
}
