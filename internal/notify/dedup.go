package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
)

// DedupStore is the slice of the repository the guard needs.
type DedupStore interface {
	GetDedup(ctx context.Context, chatID int64, kind domain.Kind) (*domain.DedupRecord, error)
	PutDedup(ctx context.Context, rec *domain.DedupRecord) error
}

// Guard suppresses re-sends of identical notifications within a time window.
type Guard struct {
	store  DedupStore
	log    *zap.Logger
	window time.Duration
	now    func() time.Time
}

func NewGuard(store DedupStore, log *zap.Logger, window time.Duration) *Guard {
	if window <= 0 {
		window = time.Hour
	}
	return &Guard{store: store, log: log, window: window, now: time.Now}
}

// WasRecentlySent reports whether an identical notification of this kind went
// out within the window. A duplicate requires BOTH a recent send AND a
// matching fingerprint. Storage errors fail open: a store outage must never
// silently swallow a real notification.
func (g *Guard) WasRecentlySent(ctx context.Context, chatID int64, kind domain.Kind, fingerprint string) bool {
	rec, err := g.store.GetDedup(ctx, chatID, kind)
	if err != nil {
		g.log.Warn("dedup check failed, allowing send",
			zap.Int64("chatID", chatID), zap.String("kind", string(kind)), zap.Error(err))
		return false
	}
	if rec == nil {
		return false
	}
	return g.now().Sub(rec.SentAt) < g.window && rec.Fingerprint == fingerprint
}

// RecordSent stores the send marker. A storage error here must not fail the
// already-delivered notification, so it is logged and dropped.
func (g *Guard) RecordSent(ctx context.Context, chatID int64, kind domain.Kind, fingerprint string) {
	rec := &domain.DedupRecord{
		ChatID:      chatID,
		Kind:        kind,
		SentAt:      g.now().UTC(),
		Fingerprint: fingerprint,
	}
	if err := g.store.PutDedup(ctx, rec); err != nil {
		g.log.Warn("recording sent notification failed",
			zap.Int64("chatID", chatID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
