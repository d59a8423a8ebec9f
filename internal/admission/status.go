package admission

import (
	"strings"
	"time"

	"github.com/noah-isme/campus-go-api/internal/apperror"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted}

// reviewTransitions are the moves an admin may make.
var reviewTransitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
}

// Review holds the fields a transition writes.
type Review struct {
	Status        Status
	ReviewedBy    *uint
	ReviewedDate  *time.Time
	AdminFeedback string
	UpdatedAt     time.Time
}

// ParseStatus validates a status string.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if status == known {
			return status, nil
		}
	}
	return "", apperror.ValidationError{Field: "application_status", Value: raw, Message: "unknown application status " + raw}
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransition reports whether an admin may move an application from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range reviewTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition applies an admin decision and returns the updated review.
// Approve and reject stamp the reviewer, feedback and review date; moving to
// under_review only changes status and the update time. The input is never
// modified.
func Transition(current Review, to Status, reviewerID uint, feedback string, now time.Time) (Review, error) {
	if !CanTransition(current.Status, to) {
		return current, apperror.InvalidTransitionError{From: string(current.Status), To: string(to)}
	}

	next := current
	next.Status = to
	next.UpdatedAt = now

	if to == StatusApproved || to == StatusRejected {
		reviewer := reviewerID
		reviewed := now
		next.ReviewedBy = &reviewer
		next.ReviewedDate = &reviewed
		next.AdminFeedback = strings.TrimSpace(feedback)
	}

	return next, nil
}

// Complete marks an approved application as enrolled. Completing an
// application that is already completed is a no-op and reports changed=false.
func Complete(current Review, now time.Time) (next Review, changed bool, err error) {
	switch current.Status {
	case StatusCompleted:
		return current, false, nil
	case StatusApproved:
		next = current
		next.Status = StatusCompleted
		next.UpdatedAt = now
		return next, true, nil
	default:
		return current, false, apperror.InvalidTransitionError{From: string(current.Status), To: string(StatusCompleted)}
	}
}
