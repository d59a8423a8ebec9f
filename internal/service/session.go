package service

import (
	"strings"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// Session identifies the authenticated caller of a service operation.
type Session struct {
	UserID        uint
	Role          string
	StudentID     *uint
	LecturerID    *uint
	AdminID       *uint
	CorrelationID string
}

// SystemSession is used for work started by the process itself.
var SystemSession = Session{Role: "system"}

func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, models.RoleAdmin)
}

func (s Session) IsLecturer() bool {
	return strings.EqualFold(s.Role, models.RoleLecturer)
}

func (s Session) IsStudent() bool {
	return strings.EqualFold(s.Role, models.RoleStudent)
}
