package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
	"github.com/node-data/ethos-telegram-agent/internal/ethos"
	"github.com/node-data/ethos-telegram-agent/internal/store"
)

// Router wires Telegram updates to command handlers.
type Router struct {
	bot   *tgbotapi.BotAPI
	log   *zap.Logger
	repo  store.Repo
	ethos *ethos.Client
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, client *ethos.Client) *Router {
	return &Router{bot: bot, log: log, repo: repo, ethos: client}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		return
	}
	cmd := msg.Command()
	args := msg.CommandArguments()

	// First interaction creates the profile with defaults. Opting out is the
	// one command that must not resurrect anything.
	if cmd != "stop_reminders" {
		r.ensureProfile(ctx, chatID)
	}

	switch cmd {
	case "start":
		r.sendHTML(chatID, welcomeText)
	case "help":
		r.sendHTML(chatID, helpText)
	case "start_reminders":
		r.handleStartReminders(ctx, chatID, args)
	case "stop_reminders":
		r.handleStopReminders(ctx, chatID)
	case "set_reminder_time":
		r.handleSetReminderTime(ctx, chatID, args)
	case "add_reminder_time":
		r.handleAddReminderTime(ctx, chatID, args)
	case "remove_reminder_time":
		r.handleRemoveReminderTime(ctx, chatID, args)
	case "my_reminder_times":
		r.handleMyReminderTimes(ctx, chatID)
	case "enable_task_refresh":
		r.handleTaskRefresh(ctx, chatID, true)
	case "disable_task_refresh":
		r.handleTaskRefresh(ctx, chatID, false)
	case "get_task_refresh":
		r.handleGetTaskRefresh(ctx, chatID)
	case "set_userkey":
		r.handleSetUserkey(ctx, chatID, args)
	case "profile":
		r.handleProfile(ctx, chatID, msg.MessageID, args)
	case "reminder_stats":
		r.handleReminderStats(ctx, chatID)
	default:
		r.sendHTML(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

// ensureProfile creates a default profile on first contact. Existing
// profiles, including deactivated ones, are left untouched.
func (r *Router) ensureProfile(ctx context.Context, chatID int64) {
	_, err := r.repo.GetProfile(ctx, chatID)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrNoProfile) {
		r.log.Error("profile lookup failed", zap.Int64("chatID", chatID), zap.Error(err))
		return
	}
	if err := r.repo.UpsertActive(ctx, chatID, ""); err != nil {
		r.log.Error("profile creation failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("reply failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
