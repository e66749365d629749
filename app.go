package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/lightgodwoken/unlock-workers/chain"
	"github.com/lightgodwoken/unlock-workers/config"
	"github.com/lightgodwoken/unlock-workers/diagnostics"
	"github.com/lightgodwoken/unlock-workers/history"
	"github.com/lightgodwoken/unlock-workers/notify"
	"github.com/lightgodwoken/unlock-workers/tokens"
	"github.com/lightgodwoken/unlock-workers/utils"
	"github.com/lightgodwoken/unlock-workers/workers"
)

const (
	HistoryDBFileDir = "history"
	DialTimeout      = 30 * time.Second
)

// App holds the long lived dependencies shared by the workers.
type App struct {
	Client    chain.Client
	Tokens    tokens.Resolver
	History   *history.LevelStore
	Notifier  notify.Sink
	Reporter  diagnostics.Reporter
	MonitorDB *leveldb.DB
	Logger    *logrus.Entry

	sentry *diagnostics.SentryReporter
}

func NewApp(cfg *config.Config, logger *logrus.Entry) (*App, error) {
	app := &App{Logger: logger}

	var sinks notify.Multi
	sinks = append(sinks, notify.NewLogSink(logger))
	if cfg.AlertWebhookURL != "" || cfg.InfoWebhookURL != "" {
		sinks = append(sinks, notify.NewSlackSink(cfg.AlertWebhookURL, cfg.InfoWebhookURL, logger))
	}
	app.Notifier = sinks

	app.Reporter = diagnostics.NewLogReporter(logger)
	if cfg.SentryDSN != "" {
		reporter, err := diagnostics.NewSentryReporter(cfg.SentryDSN, cfg.Network)
		if err != nil {
			return nil, fmt.Errorf("could not init sentry: %w", err)
		}
		app.sentry = reporter
		app.Reporter = reporter
	}

	registry, err := tokens.NewRegistry(nil)
	if err != nil {
		return nil, err
	}
	if cfg.TokenList != "" {
		registry, err = tokens.LoadRegistry(cfg.TokenList)
		if err != nil {
			return nil, err
		}
	}
	app.Tokens = registry
	logger.Infof("Loaded %v known tokens", registry.Len())

	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	defer cancel()
	rpcClient := utils.NewHttpClient(cfg.RPCURL, "", "", "")
	app.Client, err = chain.Dial(ctx, rpcClient, cfg.L1Address, chain.Config{
		Layer1: chain.Layer1Config{ScannerURL: cfg.ScannerURL},
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to %v: %w", cfg.RPCURL, err)
	}
	logger.Infof("Connected to chain client %v", app.Client.GetVersion())

	app.History, err = history.OpenLevelStore(filepath.Join(cfg.DBDir, HistoryDBFileDir))
	if err != nil {
		return nil, err
	}
	app.MonitorDB, err = leveldb.OpenFile(filepath.Join(cfg.DBDir, workers.WithdrawalMonitorDBFileDir), nil)
	if err != nil {
		app.History.Close()
		return nil, fmt.Errorf("Could not open leveldb storage file - with err: %w", err)
	}
	return app, nil
}

func (a *App) Flush(timeout time.Duration) {
	if a.sentry != nil {
		a.sentry.Flush(timeout)
	}
}

func (a *App) Close() {
	if a.MonitorDB != nil {
		a.MonitorDB.Close()
	}
	if a.History != nil {
		a.History.Close()
	}
}
