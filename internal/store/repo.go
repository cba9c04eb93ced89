package store

import (
	"context"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
)

// Repo defines storage operations for notification profiles and dedup records.
type Repo interface {
	// UpsertActive ensures a profile exists and is active. A new profile gets
	// reminderTimes ["22:00"] unless explicitTime is given; an existing
	// profile keeps its userkey, task-refresh opt-in and creation timestamp.
	UpsertActive(ctx context.Context, chatID int64, explicitTime string) error

	// Deactivate turns reminders off without deleting the record, so a later
	// UpsertActive restores the previous configuration.
	Deactivate(ctx context.Context, chatID int64) error

	// ReplaceReminderTime discards all reminder times in favor of the given
	// one and marks the profile active.
	ReplaceReminderTime(ctx context.Context, chatID int64, t string) error

	// AddReminderTime inserts a reminder time, keeping the set sorted. It
	// fails with domain.ErrDuplicateTime or domain.ErrTimeLimit without
	// mutating state.
	AddReminderTime(ctx context.Context, chatID int64, t string) error

	// RemoveReminderTime removes a reminder time. Removing the last one
	// deactivates the profile but keeps the record. Fails with
	// domain.ErrNoProfile or domain.ErrTimeNotSet.
	RemoveReminderTime(ctx context.Context, chatID int64, t string) error

	ListReminderTimes(ctx context.Context, chatID int64) ([]string, error)

	SetTaskRefresh(ctx context.Context, chatID int64, enabled bool) error
	// GetTaskRefresh returns the opt-in flag and whether a profile exists.
	GetTaskRefresh(ctx context.Context, chatID int64) (enabled, found bool, err error)

	// SetUserkey stores the Ethos correlation key; an empty string clears it.
	SetUserkey(ctx context.Context, chatID int64, userkey string) error
	// GetUserkey returns the stored key; ok is false when unset or cleared.
	GetUserkey(ctx context.Context, chatID int64) (key string, ok bool, err error)

	GetProfile(ctx context.Context, chatID int64) (*domain.Profile, error)

	// UsersDueAt returns active users with any reminder time in the given
	// UTC hour, each user at most once.
	UsersDueAt(ctx context.Context, hour int) ([]domain.Profile, error)

	AllActiveUsers(ctx context.Context) ([]domain.Profile, error)

	// UsersForTaskRefresh returns active users opted into the daily reset
	// broadcast (default on).
	UsersForTaskRefresh(ctx context.Context) ([]domain.Profile, error)

	// ReminderTimeHistogram maps each reminder time to the number of active
	// users scheduled at it.
	ReminderTimeHistogram(ctx context.Context) (map[string]int, error)

	GetDedup(ctx context.Context, chatID int64, kind domain.Kind) (*domain.DedupRecord, error)
	PutDedup(ctx context.Context, rec *domain.DedupRecord) error

	Close() error
}
