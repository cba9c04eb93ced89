package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsSent counts successful deliveries per notification kind.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total notifications delivered",
		},
		[]string{"kind"},
	)

	// NotificationsFailed counts delivery failures per notification kind.
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total notification delivery failures",
		},
		[]string{"kind"},
	)

	// NotificationsSkipped counts suppressed sends. Reason is "tasks_done"
	// (task-completion gate) or "duplicate" (dedup guard).
	NotificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_skipped_total",
			Help: "Total notifications suppressed before sending",
		},
		[]string{"kind", "reason"},
	)

	// ReminderTimeUsers exposes the reminder-time histogram: active users
	// scheduled per HH:MM slot.
	ReminderTimeUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reminder_time_users",
			Help: "Active users scheduled per reminder time",
		},
		[]string{"time"},
	)
)

// SetReminderHistogram replaces the reminder-time gauge with fresh counts.
func SetReminderHistogram(stats map[string]int) {
	ReminderTimeUsers.Reset()
	for t, n := range stats {
		ReminderTimeUsers.WithLabelValues(t).Set(float64(n))
	}
}
