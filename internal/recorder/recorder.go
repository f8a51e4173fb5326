package recorder

import (
	"time"

	"github.com/google/uuid"
)

// Scan kinds stored with every event.
const (
	ScanSell      = "SELL"
	ScanScreen    = "SCREEN"
	ScanValuation = "VALUATION"
)

// Run identifies one scheduled or manual scan.
type Run struct {
	ID        string
	Kind      string
	StartedAt time.Time
}

// NewRun starts a run with a fresh UUID.
func NewRun(kind string) Run {
	return Run{ID: uuid.NewString(), Kind: kind, StartedAt: time.Now()}
}

// SignalEvent is one symbol evaluation within a run.
type SignalEvent struct {
	Symbol   string
	Price    float64
	IsSignal bool
	Code     string
	Reason   string
	Score    int
}

// ValuationSnapshot records portfolio totals at a point in time.
type ValuationSnapshot struct {
	RunID       string
	TotalValue  float64
	TotalCost   float64
	TotalProfit float64
	Holdings    int
	Excluded    int
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordSignals(run Run, events []SignalEvent) error
	RecordValuation(snap *ValuationSnapshot) error
	Close() error
}
