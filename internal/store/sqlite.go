package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/node-data/ethos-telegram-agent/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

const profileCols = "chat_id, active, reminder_times, task_refresh, userkey, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		chatID      int64
		activeInt   int
		timesRaw    string
		refreshInt  int
		userkey     sql.NullString
		createdUnix int64
		updatedUnix int64
	)
	if err := row.Scan(&chatID, &activeInt, &timesRaw, &refreshInt, &userkey, &createdUnix, &updatedUnix); err != nil {
		return nil, err
	}
	times, err := decodeReminderTimes(timesRaw)
	if err != nil {
		return nil, fmt.Errorf("chat %d: %w", chatID, err)
	}
	return &domain.Profile{
		ChatID:        chatID,
		Active:        activeInt != 0,
		ReminderTimes: times,
		TaskRefresh:   refreshInt != 0,
		Userkey:       userkey.String,
		CreatedAt:     time.Unix(createdUnix, 0).UTC(),
		UpdatedAt:     time.Unix(updatedUnix, 0).UTC(),
	}, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProfile(ctx context.Context, q querier, chatID int64) (*domain.Profile, bool, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM users WHERE chat_id = ?", chatID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get profile %d: %w", chatID, err)
	}
	return p, true, nil
}

// GetProfile returns the stored profile or domain.ErrNoProfile.
func (r *SQLiteRepo) GetProfile(ctx context.Context, chatID int64) (*domain.Profile, error) {
	p, found, err := getProfile(ctx, r.db, chatID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNoProfile
	}
	return p, nil
}

// mutate runs a read-modify-write on one profile inside a transaction.
// fn receives the current profile (zero-value fields with defaults when the
// row does not exist yet) and may reject the mutation by returning an error,
// in which case nothing is written.
func (r *SQLiteRepo) mutate(ctx context.Context, chatID int64, fn func(p *domain.Profile, exists bool) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p, exists, err := getProfile(ctx, tx, chatID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if !exists {
		// defaults for a fresh profile; fn may override
		p = &domain.Profile{
			ChatID:      chatID,
			Active:      true,
			TaskRefresh: true,
			CreatedAt:   now,
		}
	}

	if err := fn(p, exists); err != nil {
		return err
	}
	p.UpdatedAt = now

	var userkey sql.NullString
	if p.Userkey != "" {
		userkey = sql.NullString{String: p.Userkey, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (chat_id, active, reminder_times, task_refresh, userkey, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			active         = excluded.active,
			reminder_times = excluded.reminder_times,
			task_refresh   = excluded.task_refresh,
			userkey        = excluded.userkey,
			updated_at     = excluded.updated_at`,
		p.ChatID, boolToInt(p.Active), encodeReminderTimes(p.ReminderTimes),
		boolToInt(p.TaskRefresh), userkey, p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save profile %d: %w", chatID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile %d: %w", chatID, err)
	}
	return nil
}

// UpsertActive ensures a profile exists and is active, preserving previously
// set preferences. With explicitTime the reminder set becomes that single
// time; a brand-new profile without one gets the default.
func (r *SQLiteRepo) UpsertActive(ctx context.Context, chatID int64, explicitTime string) error {
	if explicitTime != "" && !domain.ValidReminderTime(explicitTime) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTime, explicitTime)
	}
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		p.Active = true
		switch {
		case explicitTime != "":
			p.ReminderTimes = []string{explicitTime}
		case len(p.ReminderTimes) == 0:
			p.ReminderTimes = []string{domain.DefaultReminderTime}
		}
		return nil
	})
}

// Deactivate soft-disables reminders; times and userkey survive for
// reactivation. Missing profiles are left missing.
func (r *SQLiteRepo) Deactivate(ctx context.Context, chatID int64) error {
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		if !exists {
			return domain.ErrNoProfile
		}
		p.Active = false
		return nil
	})
}

func (r *SQLiteRepo) ReplaceReminderTime(ctx context.Context, chatID int64, t string) error {
	if !domain.ValidReminderTime(t) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTime, t)
	}
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		p.ReminderTimes = []string{t}
		p.Active = true
		return nil
	})
}

func (r *SQLiteRepo) AddReminderTime(ctx context.Context, chatID int64, t string) error {
	if !domain.ValidReminderTime(t) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTime, t)
	}
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		if slices.Contains(p.ReminderTimes, t) {
			return domain.ErrDuplicateTime
		}
		if len(p.ReminderTimes) >= domain.MaxReminderTimes {
			return domain.ErrTimeLimit
		}
		p.ReminderTimes = append(p.ReminderTimes, t)
		p.Active = true
		return nil
	})
}

func (r *SQLiteRepo) RemoveReminderTime(ctx context.Context, chatID int64, t string) error {
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		if !exists {
			return domain.ErrNoProfile
		}
		idx := slices.Index(p.ReminderTimes, t)
		if idx < 0 {
			return domain.ErrTimeNotSet
		}
		p.ReminderTimes = slices.Delete(p.ReminderTimes, idx, idx+1)
		if len(p.ReminderTimes) == 0 {
			p.Active = false
		}
		return nil
	})
}

func (r *SQLiteRepo) ListReminderTimes(ctx context.Context, chatID int64) ([]string, error) {
	p, found, err := getProfile(ctx, r.db, chatID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}
	return p.ReminderTimes, nil
}

// SetTaskRefresh stores the daily reset broadcast opt-in. Creating a profile
// through this path must not disturb reminder times, so a fresh profile gets
// the default time.
func (r *SQLiteRepo) SetTaskRefresh(ctx context.Context, chatID int64, enabled bool) error {
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		if !exists {
			p.ReminderTimes = []string{domain.DefaultReminderTime}
		}
		p.TaskRefresh = enabled
		return nil
	})
}

func (r *SQLiteRepo) GetTaskRefresh(ctx context.Context, chatID int64) (bool, bool, error) {
	p, found, err := getProfile(ctx, r.db, chatID)
	if err != nil {
		return false, false, err
	}
	if !found {
		return false, false, nil
	}
	return p.TaskRefresh, true, nil
}

// SetUserkey stores the Ethos correlation key; empty clears it, returning the
// user to unconditional reminders.
func (r *SQLiteRepo) SetUserkey(ctx context.Context, chatID int64, userkey string) error {
	return r.mutate(ctx, chatID, func(p *domain.Profile, exists bool) error {
		if !exists {
			p.ReminderTimes = []string{domain.DefaultReminderTime}
		}
		p.Userkey = userkey
		return nil
	})
}

func (r *SQLiteRepo) GetUserkey(ctx context.Context, chatID int64) (string, bool, error) {
	p, found, err := getProfile(ctx, r.db, chatID)
	if err != nil {
		return "", false, err
	}
	if !found || p.Userkey == "" {
		return "", false, nil
	}
	return p.Userkey, true, nil
}

func (r *SQLiteRepo) listProfiles(ctx context.Context, where string, args ...any) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileCols+" FROM users WHERE "+where+" ORDER BY chat_id", args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var res []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return res, nil
}

// UsersDueAt filters in Go: reminder times live in one JSON column, and the
// active set is small enough that a full scan per hourly tick is cheap.
func (r *SQLiteRepo) UsersDueAt(ctx context.Context, hour int) ([]domain.Profile, error) {
	all, err := r.listProfiles(ctx, "active = 1")
	if err != nil {
		return nil, err
	}
	var due []domain.Profile
	for _, p := range all {
		if p.HasTimeAtHour(hour) {
			due = append(due, p)
		}
	}
	return due, nil
}

func (r *SQLiteRepo) AllActiveUsers(ctx context.Context) ([]domain.Profile, error) {
	return r.listProfiles(ctx, "active = 1")
}

func (r *SQLiteRepo) UsersForTaskRefresh(ctx context.Context) ([]domain.Profile, error) {
	return r.listProfiles(ctx, "active = 1 AND task_refresh = 1")
}

func (r *SQLiteRepo) ReminderTimeHistogram(ctx context.Context) (map[string]int, error) {
	all, err := r.listProfiles(ctx, "active = 1")
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int)
	for _, p := range all {
		for _, t := range p.ReminderTimes {
			stats[t]++
		}
	}
	return stats, nil
}

// GetDedup returns the last-send record for (chat, kind), or nil if none.
func (r *SQLiteRepo) GetDedup(ctx context.Context, chatID int64, kind domain.Kind) (*domain.DedupRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT sent_at, fingerprint FROM notifications
		WHERE chat_id = ? AND kind = ?`,
		chatID, string(kind),
	)
	var (
		sentUnix    int64
		fingerprint string
	)
	if err := row.Scan(&sentUnix, &fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dedup %d/%s: %w", chatID, kind, err)
	}
	return &domain.DedupRecord{
		ChatID:      chatID,
		Kind:        kind,
		SentAt:      time.Unix(sentUnix, 0).UTC(),
		Fingerprint: fingerprint,
	}, nil
}

// PutDedup overwrites the last-send record for (chat, kind).
func (r *SQLiteRepo) PutDedup(ctx context.Context, rec *domain.DedupRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (chat_id, kind, sent_at, fingerprint)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, kind) DO UPDATE SET
			sent_at     = excluded.sent_at,
			fingerprint = excluded.fingerprint`,
		rec.ChatID, string(rec.Kind), rec.SentAt.UTC().Unix(), rec.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("put dedup %d/%s: %w", rec.ChatID, rec.Kind, err)
	}
	return nil
}
