package notify

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/node-data/ethos-telegram-agent/internal/store"
)

type fakeSink struct {
	sent   []int64
	errFor map[int64]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{errFor: make(map[int64]error)}
}

func (s *fakeSink) Send(chatID int64, _ string) error {
	if err := s.errFor[chatID]; err != nil {
		return err
	}
	s.sent = append(s.sent, chatID)
	return nil
}

// keyedGateAPI answers per userkey so one tick can exercise mixed outcomes.
type keyedGateAPI struct {
	canGen  map[string]bool
	errFor  map[string]error
	lastKey string
}

func (g *keyedGateAPI) ProfileID(_ context.Context, userkey string) (int64, error) {
	if err := g.errFor[userkey]; err != nil {
		return 0, err
	}
	g.lastKey = userkey
	return 1, nil
}

func (g *keyedGateAPI) DailyContributionStatus(context.Context, int64) (bool, error) {
	return g.canGen[g.lastKey], nil
}

func newTestEngine(t *testing.T, sink Sink, api ReputationAPI) (*Engine, store.Repo) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	log := zap.NewNop()
	engine := NewEngine(repo, sink, NewGate(api), NewGuard(repo, log, time.Hour), log)
	return engine, repo
}

func TestRunHourlyTick_SendsAndSkips(t *testing.T) {
	sink := newFakeSink()
	api := &keyedGateAPI{canGen: map[string]bool{"key-b": false}, errFor: map[string]error{}}
	engine, repo := newTestEngine(t, sink, api)
	ctx := context.Background()

	// A: no userkey, due at 22 — gets the reminder unconditionally
	require.NoError(t, repo.UpsertActive(ctx, 1, "22:00"))
	// B: userkey whose tasks are done — skipped
	require.NoError(t, repo.UpsertActive(ctx, 2, "22:00"))
	require.NoError(t, repo.SetUserkey(ctx, 2, "key-b"))
	// C: due at another hour — untouched
	require.NoError(t, repo.UpsertActive(ctx, 3, "09:00"))

	res, err := engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Sent: 1, Failed: 0, Skipped: 1}, res)
	assert.Equal(t, []int64{1}, sink.sent)
}

func TestRunHourlyTick_EmptyHourIsNoop(t *testing.T) {
	sink := newFakeSink()
	engine, _ := newTestEngine(t, sink, &keyedGateAPI{})

	res, err := engine.RunHourlyTick(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, TickResult{}, res)
	assert.Empty(t, sink.sent)
}

func TestRunHourlyTick_GateErrorFailsOpen(t *testing.T) {
	sink := newFakeSink()
	api := &keyedGateAPI{canGen: map[string]bool{}, errFor: map[string]error{"key-a": errors.New("upstream down")}}
	engine, repo := newTestEngine(t, sink, api)
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, "22:00"))
	require.NoError(t, repo.SetUserkey(ctx, 1, "key-a"))

	res, err := engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Sent: 1}, res)
	assert.Equal(t, []int64{1}, sink.sent)
}

func TestRunHourlyTick_UserOnlyOncePerTick(t *testing.T) {
	sink := newFakeSink()
	engine, repo := newTestEngine(t, sink, &keyedGateAPI{})
	ctx := context.Background()

	// two reminder times in the same hour
	require.NoError(t, repo.AddReminderTime(ctx, 1, "22:00"))
	require.NoError(t, repo.AddReminderTime(ctx, 1, "22:30"))

	res, err := engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Sent: 1}, res)
	assert.Equal(t, []int64{1}, sink.sent)
}

func TestRunHourlyTick_DedupSuppressesSecondRun(t *testing.T) {
	sink := newFakeSink()
	engine, repo := newTestEngine(t, sink, &keyedGateAPI{})
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, "22:00"))

	res, err := engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	// platform double-fires the same tick within the hour
	res, err = engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Skipped: 1}, res)
	assert.Len(t, sink.sent, 1)

	// aged-out marker permits resending
	engine.dedup.now = func() time.Time { return time.Now().Add(61 * time.Minute) }
	res, err = engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Len(t, sink.sent, 2)
}

func TestRunHourlyTick_PermanentFailureDeactivates(t *testing.T) {
	sink := newFakeSink()
	sink.errFor[1] = &SendError{Code: 403, Permanent: true, Err: errors.New("forbidden")}
	sink.errFor[2] = &SendError{Err: errors.New("timeout")}
	engine, repo := newTestEngine(t, sink, &keyedGateAPI{})
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, "22:00"))
	require.NoError(t, repo.UpsertActive(ctx, 2, "22:00"))
	require.NoError(t, repo.UpsertActive(ctx, 3, "22:00"))

	res, err := engine.RunHourlyTick(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Sent: 1, Failed: 2}, res)

	// blocked recipient pruned from the active set, record kept
	p, err := repo.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.False(t, p.Active)

	// transient failure does not deactivate
	p, err = repo.GetProfile(ctx, 2)
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestRunDailyTick(t *testing.T) {
	sink := newFakeSink()
	engine, repo := newTestEngine(t, sink, &keyedGateAPI{})
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, ""))
	require.NoError(t, repo.UpsertActive(ctx, 2, ""))
	require.NoError(t, repo.SetTaskRefresh(ctx, 2, false))
	require.NoError(t, repo.UpsertActive(ctx, 3, ""))
	require.NoError(t, repo.Deactivate(ctx, 3))

	res, err := engine.RunDailyTick(ctx)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Sent: 1}, res)
	assert.Equal(t, []int64{1}, sink.sent)
}

func TestRunDailyTick_SummaryLogsSkipped(t *testing.T) {
	sink := newFakeSink()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)
	engine := NewEngine(repo, sink, NewGate(&keyedGateAPI{}), NewGuard(repo, log, time.Hour), log)
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, ""))

	// first run sends, second run is suppressed by the dedup guard
	_, err = engine.RunDailyTick(ctx)
	require.NoError(t, err)
	res, err := engine.RunDailyTick(ctx)
	require.NoError(t, err)
	require.Equal(t, TickResult{Skipped: 1}, res)

	entries := logs.FilterMessage("task refresh summary").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, int64(0), fields["sent"])
	assert.Equal(t, int64(1), fields["skipped"])
}

func TestRunDailyTick_PermanentFailureDeactivates(t *testing.T) {
	sink := newFakeSink()
	sink.errFor[1] = &SendError{Code: 400, Permanent: true, Err: errors.New("chat not found")}
	engine, repo := newTestEngine(t, sink, &keyedGateAPI{})
	ctx := context.Background()

	require.NoError(t, repo.UpsertActive(ctx, 1, ""))

	res, err := engine.RunDailyTick(ctx)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Failed: 1}, res)

	p, err := repo.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.False(t, p.Active)
}
