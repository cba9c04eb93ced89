package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReminderTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"18:00", "18:00"},
		{"6:30", "06:30"},
		{"6pm", "18:00"},
		{"6PM", "18:00"},
		{"9:30am", "09:30"},
		{"11:45pm", "23:45"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"18", "18:00"},
		{"6", "06:00"},
		{"0", "00:00"},
		{"  22:00  ", "22:00"},
		{"6 pm", "18:00"},
	}
	for _, tc := range cases {
		got, err := ParseReminderTime(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseReminderTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "25:00", "9:75am", "24", "18pm", "13pm", "half past six", "6:5", "12:60"} {
		_, err := ParseReminderTime(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, ErrInvalidTime), "input %q", in)
	}
}

func TestParseReminderTime_AcceptsDisplayForm(t *testing.T) {
	// Every string FormatTimeDisplay produces must parse back to its source.
	for _, canonical := range []string{"00:00", "06:30", "12:00", "13:05", "22:00", "23:59"} {
		display := FormatTimeDisplay(canonical)
		got, err := ParseReminderTime(display)
		require.NoError(t, err, "display %q", display)
		assert.Equal(t, canonical, got, "display %q", display)
	}
}

func TestFormatTimeDisplay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"00:00", "12:00 AM UTC"},
		{"12:00", "12:00 PM UTC"},
		{"18:00", "6:00 PM UTC"},
		{"09:30", "9:30 AM UTC"},
		{"23:45", "11:45 PM UTC"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatTimeDisplay(tc.in))
	}
}

func TestValidReminderTime(t *testing.T) {
	assert.True(t, ValidReminderTime("22:00"))
	assert.True(t, ValidReminderTime("00:00"))
	assert.False(t, ValidReminderTime("6:00"))
	assert.False(t, ValidReminderTime("24:00"))
	assert.False(t, ValidReminderTime("22:60"))
}

func TestProfileHasTimeAtHour(t *testing.T) {
	p := &Profile{ReminderTimes: []string{"09:00", "22:30"}}
	assert.True(t, p.HasTimeAtHour(9))
	assert.True(t, p.HasTimeAtHour(22))
	assert.False(t, p.HasTimeAtHour(10))
	assert.False(t, p.HasTimeAtHour(0))
}
