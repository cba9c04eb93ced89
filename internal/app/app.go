package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/node-data/ethos-telegram-agent/internal/config"
	"github.com/node-data/ethos-telegram-agent/internal/ethos"
	"github.com/node-data/ethos-telegram-agent/internal/notify"
	"github.com/node-data/ethos-telegram-agent/internal/scheduler"
	"github.com/node-data/ethos-telegram-agent/internal/store"
	"github.com/node-data/ethos-telegram-agent/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   gocron.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting ethos-telegram-agent",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("ethos", a.cfg.EthosAPIBase),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	client := ethos.NewClient(a.cfg.EthosAPIBase)
	a.router = telegram.NewRouter(a.bot, a.log, a.repo, client)

	// Delivery gets its own bot with a bounded HTTP client; the polling
	// bot's client has no timeout because GetUpdates long-polls.
	sendBot, err := telegram.NewSendBot(a.cfg.BotToken)
	if err != nil {
		a.log.Error("send bot init failed", zap.Error(err))
		return err
	}

	engine := notify.NewEngine(
		a.repo,
		telegram.NewSender(sendBot),
		notify.NewGate(client),
		notify.NewGuard(a.repo, a.log, time.Duration(a.cfg.DedupWindowMin)*time.Minute),
		a.log,
	)

	sched, err := scheduler.Start(engine, a.repo, a.log)
	if err != nil {
		a.log.Error("scheduler start failed", zap.Error(err))
		return err
	}
	a.sched = sched

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdown() {
	if a.sched != nil {
		if err := a.sched.Shutdown(); err != nil {
			a.log.Warn("scheduler shutdown error", zap.Error(err))
		}
	}

	// Create a short-lived shutdown context and cancel it immediately after use.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()

	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
}
