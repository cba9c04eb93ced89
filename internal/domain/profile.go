package domain

import "time"

// Kind distinguishes the notification streams the bot sends.
type Kind string

const (
	KindReminder    Kind = "reminder"
	KindTaskRefresh Kind = "task_refresh"
)

const (
	// MaxReminderTimes caps how many reminder slots a single user may hold.
	MaxReminderTimes = 3

	// DefaultReminderTime is assigned to newly created profiles, two hours
	// before the daily task reset at midnight UTC.
	DefaultReminderTime = "22:00"
)

// Profile holds per-chat notification preferences.
type Profile struct {
	ChatID        int64
	Active        bool
	ReminderTimes []string // "HH:MM" in UTC, sorted, at most MaxReminderTimes
	TaskRefresh   bool     // daily reset broadcast opt-in, independent of reminders
	Userkey       string   // Ethos userkey, empty when not linked
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasTimeAtHour reports whether any of the profile's reminder times falls
// within the given UTC hour.
func (p *Profile) HasTimeAtHour(hour int) bool {
	for _, t := range p.ReminderTimes {
		if len(t) >= 2 && t[:2] == twoDigits(hour) {
			return true
		}
	}
	return false
}

func twoDigits(n int) string {
	return string([]byte{'0' + byte(n/10), '0' + byte(n%10)})
}

// DedupRecord tracks the last delivered notification of one kind to one chat.
type DedupRecord struct {
	ChatID      int64
	Kind        Kind
	SentAt      time.Time
	Fingerprint string
}
