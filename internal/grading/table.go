package grading

// Table collects inline grade edits keyed by student. A student entered for
// the first time gets 0 for the component not yet set.
type Table struct {
	order   []uint
	entries map[uint]*Record
}

// NewTable returns an empty edit table.
func NewTable() *Table {
	return &Table{entries: make(map[uint]*Record)}
}

// SetAssignment records the assignment percentage for a student.
func (t *Table) SetAssignment(studentID uint, registration string, pct float64) {
	t.entry(studentID, registration).AssignmentGradePercentage = pct
}

// SetExam records the exam percentage for a student.
func (t *Table) SetExam(studentID uint, registration string, pct float64) {
	t.entry(studentID, registration).ExamPercentage = pct
}

// Remove drops a student's pending edit.
func (t *Table) Remove(studentID uint) {
	if _, ok := t.entries[studentID]; !ok {
		return
	}
	delete(t.entries, studentID)
	for i, id := range t.order {
		if id == studentID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of pending edits.
func (t *Table) Len() int {
	return len(t.order)
}

// Records returns the edits in the order students were first entered.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		records = append(records, *t.entries[id])
	}
	return records
}

func (t *Table) entry(studentID uint, registration string) *Record {
	if record, ok := t.entries[studentID]; ok {
		if registration != "" {
			record.RegistrationNumber = registration
		}
		return record
	}
	record := &Record{StudentID: studentID, RegistrationNumber: registration}
	t.entries[studentID] = record
	t.order = append(t.order, studentID)
	return record
}
