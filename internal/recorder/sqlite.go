package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SignalWatch/internal/logger"
	"SignalWatch/internal/storage"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS signal_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL,
		kind       TEXT NOT NULL,
		timestamp  INTEGER NOT NULL,
		symbol     TEXT NOT NULL,
		price      REAL,
		is_signal  INTEGER,
		code       TEXT,
		reason     TEXT,
		score      INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signal_ts ON signal_events(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_signal_symbol ON signal_events(symbol)`,

	`CREATE TABLE IF NOT EXISTS valuation_snapshots (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		timestamp    INTEGER NOT NULL,
		total_value  REAL,
		total_cost   REAL,
		total_profit REAL,
		holdings     INTEGER,
		excluded     INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_valuation_ts ON valuation_snapshots(timestamp)`,
}

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return &SQLiteRecorder{db: db, log: log}, nil
}

// RecordSignals writes all events of a run in one transaction.
func (r *SQLiteRecorder) RecordSignals(run Run, events []SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO signal_events
		(run_id, kind, timestamp, symbol, price, is_signal, code, reason, score)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	ts := run.StartedAt.Unix()
	for _, e := range events {
		if _, err := stmt.Exec(run.ID, run.Kind, ts, e.Symbol, e.Price, e.IsSignal, e.Code, e.Reason, e.Score); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordValuation(snap *ValuationSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO valuation_snapshots
		(run_id, timestamp, total_value, total_cost, total_profit, holdings, excluded)
		VALUES (?,?,?,?,?,?,?)`,
		snap.RunID, time.Now().Unix(), snap.TotalValue, snap.TotalCost, snap.TotalProfit,
		snap.Holdings, snap.Excluded,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
