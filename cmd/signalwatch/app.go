package main

import (
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"SignalWatch/internal/analysis"
	"SignalWatch/internal/collector"
	"SignalWatch/internal/config"
	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
	"SignalWatch/internal/portfolio"
	"SignalWatch/internal/recorder"
	"SignalWatch/internal/storage"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	fetcher   collector.Fetcher
	analyzer  *analysis.Analyzer
	portfolio *portfolio.Manager
	recorder  recorder.Recorder
	db        *sql.DB
}

func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}

	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		a.fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		a.fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info("data source", zap.String("provider", a.fetcher.Name()))

	a.analyzer = analysis.New(a.fetcher, analysis.Options{
		Period:      model.Period(cfg.Analysis.Period),
		Interval:    model.Interval(cfg.Analysis.Interval),
		Timeout:     cfg.Analysis.FetchTimeout,
		Concurrency: cfg.Analysis.Concurrency,
	}, log)

	var store portfolio.Store
	switch cfg.Portfolio.Store {
	case config.StoreSQLite:
		db, err := a.openDB()
		if err != nil {
			return nil, err
		}
		sqlStore, err := portfolio.NewSQLiteStore(db, log)
		if err != nil {
			a.close()
			return nil, err
		}
		store = sqlStore
	default:
		store = portfolio.NewFileStore(cfg.Portfolio.File, log)
	}
	a.portfolio = portfolio.NewManager(store, a.fetcher, log)
	return a, nil
}

func (a *app) openDB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.OpenSQLite(a.cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// openRecorder falls back to the noop recorder when SQLite is unavailable.
func (a *app) openRecorder() recorder.Recorder {
	if a.recorder != nil {
		return a.recorder
	}
	a.recorder = recorder.NewNoopRecorder()
	if a.cfg.Database.SQLitePath == "" {
		return a.recorder
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		a.log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return a.recorder
	}
	a.recorder = sr
	return sr
}

func (a *app) valuateOptions() portfolio.ValuateOptions {
	return portfolio.ValuateOptions{
		Timeout:     a.cfg.Analysis.FetchTimeout,
		Concurrency: a.cfg.Analysis.Concurrency,
	}
}

func (a *app) close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.log.Warn("close recorder", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
