package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/metrics"
	"github.com/node-data/ethos-telegram-agent/internal/notify"
	"github.com/node-data/ethos-telegram-agent/internal/store"
)

// Start registers the two dispatch triggers and runs the scheduler:
// reminders at the top of every hour, the task-refresh broadcast shortly
// after the midnight UTC reset. Stop via the returned scheduler's Shutdown.
func Start(engine *notify.Engine, repo store.Repo, log *zap.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob("0 * * * *", false),
		gocron.NewTask(func() {
			ctx := context.Background()
			hour := time.Now().UTC().Hour()
			if _, err := engine.RunHourlyTick(ctx, hour); err != nil {
				log.Error("hourly tick failed", zap.Int("hour", hour), zap.Error(err))
			}
			refreshHistogram(ctx, repo, log)
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.CronJob("5 0 * * *", false),
		gocron.NewTask(func() {
			if _, err := engine.RunDailyTick(context.Background()); err != nil {
				log.Error("daily tick failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	log.Info("scheduler started")
	return s, nil
}

func refreshHistogram(ctx context.Context, repo store.Repo, log *zap.Logger) {
	stats, err := repo.ReminderTimeHistogram(ctx)
	if err != nil {
		log.Warn("reminder histogram refresh failed", zap.Error(err))
		return
	}
	metrics.SetReminderHistogram(stats)
}
