package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalWatch/internal/storage"
)

func TestNewRun(t *testing.T) {
	run := NewRun(ScanSell)
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanSell, run.Kind)
	assert.NotEqual(t, run.ID, NewRun(ScanSell).ID)
}

func TestNewRun_ValuationKind(t *testing.T) {
	assert.Equal(t, "VALUATION", NewRun(ScanValuation).Kind)
}

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "test.db")
	r, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)

	run := NewRun(ScanScreen)
	require.NoError(t, r.RecordSignals(run, []SignalEvent{
		{Symbol: "7203.T", Price: 2500, IsSignal: true, Code: "GOLDEN_CROSS", Reason: "golden cross in an uptrend", Score: 3},
		{Symbol: "6758.T", Price: 13000, Code: "NO_BUY_SIGNAL", Reason: "no buy signal detected"},
	}))
	require.NoError(t, r.RecordValuation(&ValuationSnapshot{
		RunID: run.ID, TotalValue: 1500, TotalCost: 1000, TotalProfit: 500, Holdings: 2, Excluded: 1,
	}))
	require.NoError(t, r.Close())

	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM signal_events WHERE run_id = ?`, run.ID).Scan(&n))
	assert.Equal(t, 2, n)

	var (
		isSignal bool
		score    int
	)
	require.NoError(t, db.QueryRow(`SELECT is_signal, score FROM signal_events WHERE symbol = '7203.T'`).Scan(&isSignal, &score))
	assert.True(t, isSignal)
	assert.Equal(t, 3, score)

	var profit float64
	var excluded int
	err = db.QueryRow(`SELECT total_profit, excluded FROM valuation_snapshots WHERE run_id = ?`, run.ID).Scan(&profit, &excluded)
	require.NoError(t, err)
	assert.Equal(t, 500.0, profit)
	assert.Equal(t, 1, excluded)

	err = db.QueryRow(`SELECT 1 FROM valuation_snapshots WHERE run_id = 'nope'`).Scan(&n)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordSignals(NewRun(ScanSell), nil))
	assert.NoError(t, r.RecordValuation(&ValuationSnapshot{}))
	assert.NoError(t, r.Close())
}
