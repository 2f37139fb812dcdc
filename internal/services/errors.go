package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/examsync-backend/internal/platform/apierr"
)

var (
	ErrUnknownUser   = apierr.New(http.StatusUnauthorized, "unknown_user", errors.New("unknown user"))
	ErrEmptyDeviceID = apierr.New(http.StatusBadRequest, "invalid_device_id", errors.New("device_id is required"))
	ErrBatchTooLarge = apierr.New(http.StatusRequestEntityTooLarge, "batch_too_large", errors.New("too many attempts in one batch"))
	ErrInvalidLimit  = apierr.New(http.StatusBadRequest, "invalid_limit", errors.New("limit must be >= 0"))

	ErrLeaderboardUnavailable = apierr.New(http.StatusServiceUnavailable, "leaderboard_unavailable", errors.New("leaderboard cache unavailable"))
)

// outcomeStatus labels a failed call: rejected for caller errors, failed otherwise.
func outcomeStatus(err error) string {
	if status, _ := apierr.From(err); status < http.StatusInternalServerError {
		return "rejected"
	}
	return "failed"
}

// pushFailed wraps a storage failure; the client retries the identical batch.
func pushFailed(err error) error {
	return apierr.New(http.StatusInternalServerError, "push_failed", err)
}
