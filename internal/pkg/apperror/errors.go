package apperror

import (
	"errors"

	"disaster-locator-bot/internal/constant"
)

var (
	// ErrSessionNotFound means the user never sent a trigger message.
	ErrSessionNotFound = errors.New("session not found")

	ErrResourceStoreUnavailable   = errors.New("resource store unavailable")
	ErrExternalServiceUnavailable = errors.New("external service unavailable")
	ErrTokenExtractionFailed      = errors.New("token extraction failed")
	ErrNoResultsFound             = errors.New("no results found")

	// ErrMalformedFeature is recovered locally: the record is skipped and the batch goes on.
	ErrMalformedFeature = errors.New("malformed feature")
)

// UserMessage maps a resolution failure onto the text shown to the user.
// Only a missing session and an empty result get specific guidance; every
// other failure collapses into one generic apology.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return constant.RestartPromptText
	case errors.Is(err, ErrNoResultsFound):
		return constant.NoResultsText
	default:
		return constant.GenericErrorText
	}
}
