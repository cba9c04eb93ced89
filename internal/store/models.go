package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// decodeReminderTimes normalizes the stored reminder_times column. Current
// rows hold a JSON array; rows written before multi-time support hold a bare
// "HH:MM" string. Every write goes through encodeReminderTimes, so legacy
// rows converge on their first mutation. Corrupt JSON is an error, not an
// empty schedule.
func decodeReminderTimes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var times []string
		if err := json.Unmarshal([]byte(raw), &times); err != nil {
			return nil, fmt.Errorf("reminder_times %q: %w", raw, err)
		}
		return times, nil
	}
	// legacy single-time row
	return []string{raw}, nil
}

func encodeReminderTimes(times []string) string {
	if times == nil {
		times = []string{}
	}
	sorted := make([]string, len(times))
	copy(sorted, times)
	// lexicographic == chronological for zero-padded HH:MM
	sort.Strings(sorted)
	b, _ := json.Marshal(sorted)
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
