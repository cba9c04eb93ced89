package notify

import (
	"crypto/sha256"
	"encoding/hex"
)

// ReminderMessage is the scheduled contributor-task reminder (HTML).
const ReminderMessage = `🔔 <b>Daily Reminder: Keep Your Ethos Streak Alive!</b>

Don't forget to complete your contributor tasks today to maintain your streak on the Ethos Network!

✅ <b>What you can do:</b>
• Review other users' profiles
• Vouch for trusted community members
• Participate in network governance
• Share valuable insights and feedback

⏰ <b>Time remaining:</b> Until midnight UTC (00:00)

🚀 <b>Why it matters:</b>
Consistent daily engagement helps build your reputation and strengthens the entire Ethos community.

<i>Use /stop_reminders to disable or /set_reminder_time to change your reminder time.</i>`

// TaskRefreshMessage is the once-daily broadcast after the midnight reset.
const TaskRefreshMessage = `🌅 <b>New Day, New Tasks!</b>

Your daily contributor tasks on the Ethos Network have just reset. A fresh set of tasks is waiting for you.

Complete them early to keep your streak safe — no last-minute rush at midnight.

<i>Use /disable_task_refresh if you don't want these daily notifications.</i>`

// Fingerprint digests notification content so identical re-sends can be
// recognized within the dedup window.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
