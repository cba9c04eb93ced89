package telegram

const welcomeText = `🎉 <b>Welcome to the Ethos Reminder Bot!</b>

I can look up Ethos Network profiles and remind you to complete your daily contributor tasks.

🔔 <b>Daily reminders:</b> You've been signed up for a daily reminder at 10:00 PM UTC. Use /set_reminder_time to change it or /stop_reminders to opt out.

🌅 <b>Task refresh notifications:</b> You'll also hear from me right after the midnight UTC reset. /disable_task_refresh turns those off.

Use /help to see everything I can do.`

const helpText = `🤖 <b>Ethos Reminder Bot commands:</b>

<b>Reminders</b>
/start_reminders [time] - Enable daily task reminders (e.g. <code>/start_reminders 6pm</code>)
/stop_reminders - Disable all reminders
/set_reminder_time &lt;time&gt; - Replace your reminder times with one time
/add_reminder_time &lt;time&gt; - Add another reminder time (up to 3)
/remove_reminder_time &lt;time&gt; - Remove one reminder time
/my_reminder_times - Show your reminder times
/reminder_stats - See how reminders are scheduled across users

<b>Task refresh</b>
/enable_task_refresh - Daily reset notification at midnight UTC
/disable_task_refresh - Turn the reset notification off
/get_task_refresh - Show your current setting

<b>Ethos</b>
/profile &lt;handle_or_address&gt; - Look up an Ethos profile
/set_userkey &lt;handle_or_address&gt; - Link your Ethos identity so reminders are skipped on days you already finished your tasks (<code>/set_userkey clear</code> to unlink)

Times are UTC. Accepted formats: <code>18:00</code>, <code>6pm</code>, <code>9:30am</code>, <code>18</code>.`

const invalidTimeText = `❌ I couldn't read that time.

Try one of: <code>18:00</code>, <code>6pm</code>, <code>9:30am</code>, <code>18</code> (all UTC).`

const storageErrorText = "⚠️ Something went wrong saving your settings. Please try again later."

const remindersStoppedText = `🔕 <b>Reminders disabled.</b>

Your settings are kept, so /start_reminders brings everything back the way it was.`

const noRemindersText = "You don't have any reminders set. Use /start_reminders to begin."
