package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&Lecturer{},
		&Course{},
		&Subject{},
		&Student{},
		&Enrollment{},
		&Assignment{},
		&Submission{},
		&GradeBand{},
		&SubjectGrade{},
		&Admission{},
		&AdmissionDocument{},
		&ActivityLog{},
	}
}
