package domain

import "errors"

var (
	// ErrInvalidTime means the input could not be normalized to "HH:MM".
	ErrInvalidTime = errors.New("invalid time")

	// ErrDuplicateTime means the reminder time is already set for the user.
	ErrDuplicateTime = errors.New("reminder time already set")

	// ErrTimeLimit means the user already holds MaxReminderTimes entries.
	ErrTimeLimit = errors.New("reminder time limit reached")

	// ErrTimeNotSet means the time to remove is not in the user's set.
	ErrTimeNotSet = errors.New("no reminder at that time")

	// ErrNoProfile means no profile record exists for the chat.
	ErrNoProfile = errors.New("no profile")
)
