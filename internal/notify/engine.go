package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
	"github.com/node-data/ethos-telegram-agent/internal/metrics"
	"github.com/node-data/ethos-telegram-agent/internal/store"
)

// Sink delivers a text notification to a chat. Implemented by telegram.Sender.
type Sink interface {
	Send(chatID int64, text string) error
}

// SendError is the tagged delivery failure a Sink returns. Permanent means
// the recipient is gone (blocked the bot, deleted the chat) and should be
// pruned from the active set.
type SendError struct {
	Code      int
	Permanent bool
	Err       error
}

func (e *SendError) Error() string {
	if e.Permanent {
		return fmt.Sprintf("permanent send failure (code %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("send failure: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// TickResult aggregates one trigger invocation.
type TickResult struct {
	Sent    int
	Failed  int
	Skipped int
}

// Batches above this size get an inter-send delay to respect the messaging
// API's rate limits.
const rateLimitBatchSize = 10

// Engine orchestrates reminder and task-refresh dispatch for scheduled ticks.
type Engine struct {
	repo    store.Repo
	sink    Sink
	gate    *Gate
	dedup   *Guard
	log     *zap.Logger
	limiter *rate.Limiter
}

func NewEngine(repo store.Repo, sink Sink, gate *Gate, dedup *Guard, log *zap.Logger) *Engine {
	return &Engine{
		repo:    repo,
		sink:    sink,
		gate:    gate,
		dedup:   dedup,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

// RunHourlyTick sends reminders to every active user with a reminder time in
// the given UTC hour. One user's failure never blocks the rest of the batch.
func (e *Engine) RunHourlyTick(ctx context.Context, hour int) (TickResult, error) {
	var res TickResult

	users, err := e.repo.UsersDueAt(ctx, hour)
	if err != nil {
		return res, fmt.Errorf("users due at %d: %w", hour, err)
	}
	if len(users) == 0 {
		e.log.Debug("no users due", zap.Int("hour", hour))
		return res, nil
	}
	e.log.Info("hourly reminder tick", zap.Int("hour", hour), zap.Int("users", len(users)))

	fingerprint := Fingerprint(ReminderMessage)
	throttled := len(users) > rateLimitBatchSize

	for _, u := range users {
		if u.Userkey != "" {
			suppress, reason := e.gate.CanSendReminder(ctx, u.Userkey)
			if suppress {
				res.Skipped++
				metrics.NotificationsSkipped.WithLabelValues(string(domain.KindReminder), "tasks_done").Inc()
				e.log.Info("reminder skipped, tasks completed", zap.Int64("chatID", u.ChatID))
				continue
			}
			if reason != "" {
				e.log.Warn("task gate failed open", zap.Int64("chatID", u.ChatID), zap.String("reason", reason))
			}
		}

		if e.dedup.WasRecentlySent(ctx, u.ChatID, domain.KindReminder, fingerprint) {
			res.Skipped++
			metrics.NotificationsSkipped.WithLabelValues(string(domain.KindReminder), "duplicate").Inc()
			e.log.Info("reminder suppressed as duplicate", zap.Int64("chatID", u.ChatID))
			continue
		}

		if throttled {
			_ = e.limiter.Wait(ctx)
		}
		e.deliver(ctx, u.ChatID, domain.KindReminder, ReminderMessage, fingerprint, &res)
	}

	e.log.Info("hourly reminder summary", zap.Int("hour", hour),
		zap.Int("sent", res.Sent), zap.Int("failed", res.Failed), zap.Int("skipped", res.Skipped))
	return res, nil
}

// RunDailyTick broadcasts the task-reset notice to opted-in users. No gate
// consultation: the reset just happened, nobody has completed anything yet.
func (e *Engine) RunDailyTick(ctx context.Context) (TickResult, error) {
	var res TickResult

	users, err := e.repo.UsersForTaskRefresh(ctx)
	if err != nil {
		return res, fmt.Errorf("users for task refresh: %w", err)
	}
	if len(users) == 0 {
		return res, nil
	}
	e.log.Info("daily task refresh tick", zap.Int("users", len(users)))

	fingerprint := Fingerprint(TaskRefreshMessage)
	throttled := len(users) > rateLimitBatchSize

	for _, u := range users {
		if e.dedup.WasRecentlySent(ctx, u.ChatID, domain.KindTaskRefresh, fingerprint) {
			res.Skipped++
			metrics.NotificationsSkipped.WithLabelValues(string(domain.KindTaskRefresh), "duplicate").Inc()
			continue
		}
		if throttled {
			_ = e.limiter.Wait(ctx)
		}
		e.deliver(ctx, u.ChatID, domain.KindTaskRefresh, TaskRefreshMessage, fingerprint, &res)
	}

	e.log.Info("task refresh summary",
		zap.Int("sent", res.Sent), zap.Int("failed", res.Failed), zap.Int("skipped", res.Skipped))
	return res, nil
}

// deliver attempts one send, records the outcome, and prunes recipients the
// sink reports as permanently unreachable.
func (e *Engine) deliver(ctx context.Context, chatID int64, kind domain.Kind, text, fingerprint string, res *TickResult) {
	err := e.sink.Send(chatID, text)
	if err == nil {
		res.Sent++
		metrics.NotificationsSent.WithLabelValues(string(kind)).Inc()
		e.dedup.RecordSent(ctx, chatID, kind, fingerprint)
		return
	}

	res.Failed++
	metrics.NotificationsFailed.WithLabelValues(string(kind)).Inc()
	e.log.Error("send failed", zap.Int64("chatID", chatID), zap.String("kind", string(kind)), zap.Error(err))

	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.Permanent {
		if derr := e.repo.Deactivate(ctx, chatID); derr != nil {
			e.log.Error("deactivating unreachable user failed", zap.Int64("chatID", chatID), zap.Error(derr))
		} else {
			e.log.Info("deactivated unreachable user", zap.Int64("chatID", chatID), zap.Int("code", sendErr.Code))
		}
	}
}
