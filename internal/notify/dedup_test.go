package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
)

type memDedupStore struct {
	recs    map[string]*domain.DedupRecord
	getErr  error
	putErr  error
	putSeen int
}

func newMemDedupStore() *memDedupStore {
	return &memDedupStore{recs: make(map[string]*domain.DedupRecord)}
}

func (s *memDedupStore) key(chatID int64, kind domain.Kind) string {
	return fmt.Sprintf("%d/%s", chatID, kind)
}

func (s *memDedupStore) GetDedup(_ context.Context, chatID int64, kind domain.Kind) (*domain.DedupRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.recs[s.key(chatID, kind)], nil
}

func (s *memDedupStore) PutDedup(_ context.Context, rec *domain.DedupRecord) error {
	s.putSeen++
	if s.putErr != nil {
		return s.putErr
	}
	s.recs[s.key(rec.ChatID, rec.Kind)] = rec
	return nil
}

func TestGuard_SuppressesWithinWindow(t *testing.T) {
	store := newMemDedupStore()
	guard := NewGuard(store, zap.NewNop(), time.Hour)

	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return base }

	ctx := context.Background()
	assert.False(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "abc"))

	guard.RecordSent(ctx, 1, domain.KindReminder, "abc")
	assert.True(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "abc"))

	// different fingerprint is not a duplicate
	assert.False(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "def"))

	// other kind and other chat are independent
	assert.False(t, guard.WasRecentlySent(ctx, 1, domain.KindTaskRefresh, "abc"))
	assert.False(t, guard.WasRecentlySent(ctx, 2, domain.KindReminder, "abc"))

	// 59 minutes later: still suppressed
	guard.now = func() time.Time { return base.Add(59 * time.Minute) }
	assert.True(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "abc"))

	// 61 minutes later: window expired, resend permitted
	guard.now = func() time.Time { return base.Add(61 * time.Minute) }
	assert.False(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "abc"))
}

func TestGuard_FailsOpenOnStorageError(t *testing.T) {
	store := newMemDedupStore()
	guard := NewGuard(store, zap.NewNop(), time.Hour)
	ctx := context.Background()

	guard.RecordSent(ctx, 1, domain.KindReminder, "abc")
	store.getErr = errors.New("disk on fire")
	assert.False(t, guard.WasRecentlySent(ctx, 1, domain.KindReminder, "abc"))
}

func TestGuard_RecordErrorIsSwallowed(t *testing.T) {
	store := newMemDedupStore()
	store.putErr = errors.New("disk on fire")
	guard := NewGuard(store, zap.NewNop(), time.Hour)

	// must not panic or propagate
	guard.RecordSent(context.Background(), 1, domain.KindReminder, "abc")
	assert.Equal(t, 1, store.putSeen)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("hello"), Fingerprint("hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("world"))
	assert.Len(t, Fingerprint(ReminderMessage), 64)
}
