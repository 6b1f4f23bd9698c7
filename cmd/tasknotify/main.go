package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"tasknotify/internal/api"
	"tasknotify/internal/config"
	"tasknotify/internal/notify"
	"tasknotify/internal/reminder"
	"tasknotify/internal/speech"
	"tasknotify/internal/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP bind address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite DB path")
	flag.StringVar(&cfg.Nickname, "nickname", cfg.Nickname, "nickname used in reminders (stored on start)")
	flag.StringVar(&cfg.Notifier, "notifier", cfg.Notifier, "notification sink: desktop, webhook, log or none")
	flag.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "URL for the webhook notifier")
	flag.StringVar(&cfg.Permission, "permission", cfg.Permission, "answer to notification permission requests: granted, denied or default")
	flag.BoolVar(&cfg.Speech, "speech", cfg.Speech, "speak reminders aloud when a synthesizer is installed")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log JSON instead of console output")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.LogJSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite single writer

	if err := store.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	repo := store.NewSQLiteRepo(db)
	if cfg.Nickname != "" {
		if err := repo.SetNickname(context.Background(), cfg.Nickname); err != nil {
			log.Fatal().Err(err).Msg("store nickname")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		speaker reminder.Speaker
		voice   *speech.Queue
	)
	if cfg.Speech {
		voice = speech.NewQueue(speech.NewEspeak(), 32)
		if !voice.Available() {
			log.Info().Msg("no speech synthesizer found, reminders will not be spoken")
		}
		go voice.Run(ctx)
		speaker = voice
	}
	announcer := reminder.NewAnnouncer(speaker)

	notifier := newNotifier(cfg)
	deferrer := reminder.NewCronDeferrer()
	deferrer.Start()

	perm, _ := reminder.ParsePermission(cfg.Permission)
	sched := reminder.NewScheduler(repo, notifier, announcer, deferrer)
	enabler := reminder.NewEnabler(reminder.StaticGate(perm), notifier, announcer, sched)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.NewServer(repo, sched, enabler)}
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("notifier", cfg.Notifier).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	_ = srv.Shutdown(ctxTimeout)
	select {
	case <-deferrer.Stop().Done():
	case <-ctxTimeout.Done():
	}
	if voice != nil {
		voice.Stop()
	}
	cancel()
}

func newNotifier(cfg config.Config) reminder.Notifier {
	switch cfg.Notifier {
	case "desktop":
		return notify.NewDesktop()
	case "webhook":
		return notify.NewWebhook(cfg.WebhookURL)
	case "log":
		return notify.Log{}
	default:
		return notify.None{}
	}
}
