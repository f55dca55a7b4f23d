package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"racecarr/internal/api"
	"racecarr/internal/calendar"
	"racecarr/internal/config"
	"racecarr/internal/daemon"
	"racecarr/internal/downloader"
	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/notifications"
	"racecarr/internal/scheduler"
	"racecarr/internal/scoring"
	"racecarr/internal/search"
	"racecarr/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	searchTimeout := time.Duration(cfg.Search.RequestTimeout) * time.Second
	indexerClient := indexer.NewClient(logger, searchTimeout)
	downloadClient := downloader.NewClient(logger, searchTimeout)
	calendarClient := calendar.NewClient(cfg.Calendar.BaseURL, logger,
		time.Duration(cfg.Calendar.RequestTimeout)*time.Second)

	orch := search.NewOrchestrator(indexerClient, logger, cfg.Search.ResultLimit)
	roundSearch := search.NewRoundSearchService(st, orch, scoring.FromConfig(cfg.Search), logger)
	notifier := notifications.NewService(cfg, logger)
	sched := scheduler.New(st, orch, downloadClient, notifier, cfg, logger)

	server := api.NewServer(st, sched, orch, roundSearch, calendarClient,
		indexerClient, downloadClient, notifier, cfg, logger)

	d, err := daemon.New(cfg, st, sched, server.Router(), logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon run", logging.Error(err))
		return
	}
	logger.Info("racecarrd shut down")
}
