package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsMatchTheirSentinels(t *testing.T) {
	require.ErrorIs(t, ValidationError{Field: "email", Message: "email is required"}, ErrValidation)
	require.ErrorIs(t, NotFoundError{Entity: "admission", ID: 7}, ErrNotFound)
	require.ErrorIs(t, InvalidTransitionError{From: "rejected", To: "approved"}, ErrInvalidTransition)
	require.ErrorIs(t, PersistenceError{Op: "save grade", Err: errors.New("boom")}, ErrPersistence)
}

func TestPersistenceKeepsOriginalMessage(t *testing.T) {
	root := errors.New("UNIQUE constraint failed")
	err := Persistence("save grade", root)

	require.ErrorIs(t, err, root)
	require.Equal(t, "save grade: UNIQUE constraint failed", err.Error())
}

func TestPersistenceDoesNotRewrapClassifiedErrors(t *testing.T) {
	notFound := fmt.Errorf("lookup: %w", NotFoundError{Entity: "subject", ID: 3})

	require.Equal(t, notFound, Persistence("load subject", notFound))
	require.Nil(t, Persistence("noop", nil))
}

func TestValidationErrorMessageFallback(t *testing.T) {
	err := ValidationError{Field: "exam_percentage", Row: 4, Value: "abc"}
	require.Equal(t, "invalid value abc for exam_percentage at row 4", err.Error())
}
