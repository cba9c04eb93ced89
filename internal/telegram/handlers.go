package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
	"github.com/node-data/ethos-telegram-agent/internal/ethos"
)

func (r *Router) handleStartReminders(ctx context.Context, chatID int64, args string) {
	explicit := ""
	if args = strings.TrimSpace(args); args != "" {
		t, err := domain.ParseReminderTime(args)
		if err != nil {
			r.sendHTML(chatID, invalidTimeText)
			return
		}
		explicit = t
	}

	if err := r.repo.UpsertActive(ctx, chatID, explicit); err != nil {
		r.log.Error("upsert active failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}

	times, err := r.repo.ListReminderTimes(ctx, chatID)
	if err != nil {
		r.log.Error("list times failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	r.sendHTML(chatID, fmt.Sprintf(
		"✅ <b>Reminders enabled!</b>\n\nYou'll hear from me at %s.\n\nUse /add_reminder_time to add more times (up to 3).",
		formatTimeList(times)))
}

func (r *Router) handleStopReminders(ctx context.Context, chatID int64) {
	err := r.repo.Deactivate(ctx, chatID)
	if errors.Is(err, domain.ErrNoProfile) {
		r.sendHTML(chatID, noRemindersText)
		return
	}
	if err != nil {
		r.log.Error("deactivate failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	r.sendHTML(chatID, remindersStoppedText)
}

func (r *Router) handleSetReminderTime(ctx context.Context, chatID int64, args string) {
	t, err := domain.ParseReminderTime(args)
	if err != nil {
		r.sendHTML(chatID, invalidTimeText)
		return
	}
	if err := r.repo.ReplaceReminderTime(ctx, chatID, t); err != nil {
		r.log.Error("replace time failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	r.sendHTML(chatID, fmt.Sprintf(
		"⏰ Reminder time set to <b>%s</b>. This replaced any other times you had.",
		domain.FormatTimeDisplay(t)))
}

func (r *Router) handleAddReminderTime(ctx context.Context, chatID int64, args string) {
	t, err := domain.ParseReminderTime(args)
	if err != nil {
		r.sendHTML(chatID, invalidTimeText)
		return
	}

	switch err := r.repo.AddReminderTime(ctx, chatID, t); {
	case errors.Is(err, domain.ErrDuplicateTime):
		r.sendHTML(chatID, fmt.Sprintf(
			"You already have a reminder set for <b>%s</b>.", domain.FormatTimeDisplay(t)))
		return
	case errors.Is(err, domain.ErrTimeLimit):
		r.sendHTML(chatID, fmt.Sprintf(
			"You can have up to %d reminder times. Remove one first with /remove_reminder_time.",
			domain.MaxReminderTimes))
		return
	case err != nil:
		r.log.Error("add time failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}

	times, err := r.repo.ListReminderTimes(ctx, chatID)
	if err != nil {
		r.log.Error("list times failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	r.sendHTML(chatID, fmt.Sprintf(
		"✅ Added a reminder for <b>%s</b>.\n\nYour reminders: %s",
		domain.FormatTimeDisplay(t), formatTimeList(times)))
}

func (r *Router) handleRemoveReminderTime(ctx context.Context, chatID int64, args string) {
	t, err := domain.ParseReminderTime(args)
	if err != nil {
		r.sendHTML(chatID, invalidTimeText)
		return
	}

	switch err := r.repo.RemoveReminderTime(ctx, chatID, t); {
	case errors.Is(err, domain.ErrNoProfile):
		r.sendHTML(chatID, noRemindersText)
		return
	case errors.Is(err, domain.ErrTimeNotSet):
		r.sendHTML(chatID, fmt.Sprintf(
			"You don't have a reminder set for <b>%s</b>. /my_reminder_times shows your current ones.",
			domain.FormatTimeDisplay(t)))
		return
	case err != nil:
		r.log.Error("remove time failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}

	times, err := r.repo.ListReminderTimes(ctx, chatID)
	if err != nil {
		r.log.Error("list times failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	if len(times) == 0 {
		r.sendHTML(chatID, "🔕 Removed your last reminder. You now have no active reminders — /start_reminders brings them back.")
		return
	}
	r.sendHTML(chatID, fmt.Sprintf(
		"✅ Removed the <b>%s</b> reminder.\n\nRemaining: %s",
		domain.FormatTimeDisplay(t), formatTimeList(times)))
}

func (r *Router) handleMyReminderTimes(ctx context.Context, chatID int64) {
	times, err := r.repo.ListReminderTimes(ctx, chatID)
	if err != nil {
		r.log.Error("list times failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	if len(times) == 0 {
		r.sendHTML(chatID, noRemindersText)
		return
	}
	var b strings.Builder
	b.WriteString("⏰ <b>Your reminder times:</b>\n")
	for _, t := range times {
		fmt.Fprintf(&b, "• %s\n", domain.FormatTimeDisplay(t))
	}
	b.WriteString("\nUse /add_reminder_time or /remove_reminder_time to adjust.")
	r.sendHTML(chatID, b.String())
}

func (r *Router) handleTaskRefresh(ctx context.Context, chatID int64, enabled bool) {
	if err := r.repo.SetTaskRefresh(ctx, chatID, enabled); err != nil {
		r.log.Error("set task refresh failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	if enabled {
		r.sendHTML(chatID, "🌅 <b>Task refresh notifications enabled.</b>\n\nI'll ping you right after the midnight UTC reset. /disable_task_refresh turns this off anytime.")
	} else {
		r.sendHTML(chatID, "🔕 <b>Task refresh notifications disabled.</b>\n\nYour regular reminders are unaffected. /enable_task_refresh turns these back on.")
	}
}

func (r *Router) handleGetTaskRefresh(ctx context.Context, chatID int64) {
	enabled, found, err := r.repo.GetTaskRefresh(ctx, chatID)
	if err != nil {
		r.log.Error("get task refresh failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	switch {
	case !found:
		r.sendHTML(chatID, "You're not signed up yet. /enable_task_refresh starts daily reset notifications at midnight UTC.")
	case enabled:
		r.sendHTML(chatID, "🌅 Task refresh notifications are <b>on</b>. /disable_task_refresh turns them off.")
	default:
		r.sendHTML(chatID, "🔕 Task refresh notifications are <b>off</b>. /enable_task_refresh turns them on.")
	}
}

func (r *Router) handleSetUserkey(ctx context.Context, chatID int64, args string) {
	input := strings.TrimSpace(args)
	if input == "" {
		r.sendHTML(chatID, "Usage: <code>/set_userkey handle_or_address</code>, or <code>/set_userkey clear</code> to unlink.")
		return
	}

	if strings.EqualFold(input, "clear") {
		if err := r.repo.SetUserkey(ctx, chatID, ""); err != nil {
			r.log.Error("clear userkey failed", zap.Int64("chatID", chatID), zap.Error(err))
			r.sendHTML(chatID, storageErrorText)
			return
		}
		r.sendHTML(chatID, "🔓 Ethos identity unlinked. Reminders are unconditional again.")
		return
	}

	userkey := ethos.FormatUserkey(input)
	if err := r.repo.SetUserkey(ctx, chatID, userkey); err != nil {
		r.log.Error("set userkey failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	r.sendHTML(chatID, fmt.Sprintf(
		"🔗 <b>Ethos identity linked.</b>\n\nOn days you've already completed your contributor tasks, I'll skip the reminder.\n\nLinked as: <code>%s</code>", userkey))
}

func (r *Router) handleProfile(ctx context.Context, chatID int64, messageID int, args string) {
	input := strings.TrimSpace(args)
	if input == "" {
		r.sendHTML(chatID, "❌ Please provide a handle or EVM address.\n\nExample: <code>/profile VitalikButerin</code>")
		return
	}

	// show "typing" while we hit the API
	_, _ = r.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	userkey := ethos.FormatUserkey(input)

	stats, err := r.ethos.UserStats(ctx, userkey)
	if err != nil {
		r.log.Warn("profile lookup failed", zap.String("userkey", userkey), zap.Error(err))
		reply := tgbotapi.NewMessage(chatID, "❌ Profile not found on the Ethos Network.\n\nMake sure the handle or address is correct and has an Ethos profile.")
		reply.ReplyToMessageID = messageID
		_, _ = r.bot.Send(reply)
		return
	}

	// score and display name are best-effort extras
	score := -1
	if s, err := r.ethos.Score(ctx, userkey); err == nil {
		score = s
	}
	name := stats.Name
	if name == "" {
		if n, err := r.ethos.SearchDisplayName(ctx, input); err == nil {
			name = n
		}
	}
	if name == "" {
		name = ethos.DisplayNameFallback(userkey)
	}

	reply := tgbotapi.NewMessage(chatID, formatProfileMessage(stats, userkey, score, name))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = messageID
	reply.ReplyMarkup = profileKeyboard(userkey)
	if _, err := r.bot.Send(reply); err != nil {
		r.log.Warn("profile reply failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) handleReminderStats(ctx context.Context, chatID int64) {
	stats, err := r.repo.ReminderTimeHistogram(ctx)
	if err != nil {
		r.log.Error("histogram failed", zap.Error(err))
		r.sendHTML(chatID, storageErrorText)
		return
	}
	if len(stats) == 0 {
		r.sendHTML(chatID, "No active reminders scheduled yet.")
		return
	}

	times := make([]string, 0, len(stats))
	for t := range stats {
		times = append(times, t)
	}
	sort.Strings(times)

	var b strings.Builder
	b.WriteString("📊 <b>Reminder schedule:</b>\n")
	for _, t := range times {
		fmt.Fprintf(&b, "• %s — %d user(s)\n", domain.FormatTimeDisplay(t), stats[t])
	}
	r.sendHTML(chatID, b.String())
}

func formatTimeList(times []string) string {
	display := make([]string, len(times))
	for i, t := range times {
		display[i] = "<b>" + domain.FormatTimeDisplay(t) + "</b>"
	}
	return strings.Join(display, ", ")
}
