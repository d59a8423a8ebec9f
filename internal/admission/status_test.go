package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperror"
)

func TestTransitionPendingToUnderReviewStampsOnlyStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	next, err := Transition(Review{Status: StatusPending}, StatusUnderReview, 9, "looks fine", now)

	require.NoError(t, err)
	require.Equal(t, StatusUnderReview, next.Status)
	require.Equal(t, now, next.UpdatedAt)
	require.Nil(t, next.ReviewedBy)
	require.Nil(t, next.ReviewedDate)
	require.Empty(t, next.AdminFeedback)
}

func TestTransitionApproveStampsReviewer(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	for _, from := range []Status{StatusPending, StatusUnderReview} {
		next, err := Transition(Review{Status: from}, StatusApproved, 4, "  Welcome aboard ", now)
		require.NoError(t, err)
		require.Equal(t, StatusApproved, next.Status)
		require.NotNil(t, next.ReviewedBy)
		require.Equal(t, uint(4), *next.ReviewedBy)
		require.Equal(t, now, *next.ReviewedDate)
		require.Equal(t, "Welcome aboard", next.AdminFeedback)
	}
}

func TestTransitionRejectAllowsEmptyFeedback(t *testing.T) {
	next, err := Transition(Review{Status: StatusUnderReview}, StatusRejected, 1, "", time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusRejected, next.Status)
	require.Empty(t, next.AdminFeedback)
}

func TestTransitionFromTerminalStatesFails(t *testing.T) {
	for _, from := range []Status{StatusRejected, StatusCompleted} {
		require.True(t, from.Terminal())
		for _, to := range Statuses {
			current := Review{Status: from, AdminFeedback: "original"}
			next, err := Transition(current, to, 1, "changed", time.Now())
			require.ErrorIs(t, err, apperror.ErrInvalidTransition)
			require.Equal(t, current, next)
		}
	}
}

func TestTransitionRejectsBackwardsAndSelfMoves(t *testing.T) {
	_, err := Transition(Review{Status: StatusApproved}, StatusUnderReview, 1, "", time.Now())
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = Transition(Review{Status: StatusPending}, StatusPending, 1, "", time.Now())
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)

	_, err = Transition(Review{Status: StatusApproved}, StatusCompleted, 1, "", time.Now())
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestCompleteIsIdempotent(t *testing.T) {
	now := time.Now()
	reviewer := uint(3)
	next, changed, err := Complete(Review{Status: StatusApproved, ReviewedBy: &reviewer}, now)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, StatusCompleted, next.Status)
	require.Equal(t, &reviewer, next.ReviewedBy)

	again, changed, err := Complete(next, now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, next, again)

	_, _, err = Complete(Review{Status: StatusPending}, now)
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Under_Review ")
	require.NoError(t, err)
	require.Equal(t, StatusUnderReview, status)

	_, err = ParseStatus("archived")
	require.ErrorIs(t, err, apperror.ErrValidation)
}
