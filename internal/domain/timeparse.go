package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Accepts "18:00", "6:30pm", "6pm", "18". The am/pm suffix is optional and
// a bare hour means minute 00.
var reminderTimeRe = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)?$`)

// canonicalTimeRe matches the stored zero-padded form.
var canonicalTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ParseReminderTime normalizes human time input to canonical "HH:MM" UTC.
// Case and all whitespace are ignored, so every string FormatTimeDisplay
// produces (e.g. "6:30 PM UTC") parses back.
func ParseReminderTime(input string) (string, error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(input), ""))
	cleaned = strings.TrimSuffix(cleaned, "utc")

	m := reminderTimeRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, input)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, input)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ValidReminderTime reports whether t is already in canonical "HH:MM" form.
func ValidReminderTime(t string) bool {
	return canonicalTimeRe.MatchString(t)
}

// FormatTimeDisplay renders canonical "HH:MM" as "h:MM AM/PM UTC".
// Hour 0 displays as 12 AM and hour 12 as 12 PM.
func FormatTimeDisplay(time24 string) string {
	parts := strings.SplitN(time24, ":", 2)
	if len(parts) != 2 {
		return time24
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time24
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time24
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	displayHour := hour
	switch {
	case hour == 0:
		displayHour = 12
	case hour > 12:
		displayHour = hour - 12
	}
	return fmt.Sprintf("%d:%02d %s UTC", displayHour, minute, period)
}
