package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"SignalWatch/internal/analysis"
	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
	"SignalWatch/internal/notifier"
	"SignalWatch/internal/portfolio"
	"SignalWatch/internal/recorder"
)

// screenReportLimit caps the rows of a screener message.
const screenReportLimit = 10

// Notifier delivers reports to the user.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the collaborators a Scheduler drives.
type Deps struct {
	Analyzer  *analysis.Analyzer
	Portfolio *portfolio.Manager
	Notifier  Notifier // nil disables notifications
	Recorder  recorder.Recorder
	Formatter *notifier.Formatter
	Watchlist []string
	Valuation portfolio.ValuateOptions
	Log       *logger.Logger
}

// Scheduler manages all cron tasks and bot commands.
type Scheduler struct {
	Cron *cron.Cron
	Deps
	Ctx context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Formatter == nil {
		deps.Formatter = notifier.NewFormatter("JPY")
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Deps: deps,
		Ctx:  ctx,
	}
}

// RegisterAll registers the sell scan, valuation and screener tasks.
func (s *Scheduler) RegisterAll(sellScanCron, valuationCron, screenCron string) error {
	if _, err := s.Cron.AddFunc(sellScanCron, s.sellScanTask); err != nil {
		return fmt.Errorf("register sell scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(valuationCron, s.valuationTask); err != nil {
		return fmt.Errorf("register valuation task: %w", err)
	}
	if _, err := s.Cron.AddFunc(screenCron, s.screenTask); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// SellScan analyzes every holding and records the run. It reports whether
// any sell signal fired.
func (s *Scheduler) SellScan(ctx context.Context) ([]model.SellAnalysis, bool) {
	run := recorder.NewRun(recorder.ScanSell)
	results := s.Analyzer.SellSignals(ctx, s.Portfolio.Snapshot())

	events := make([]recorder.SignalEvent, len(results))
	fired := false
	for i, r := range results {
		fired = fired || r.Sell.IsSignal
		events[i] = recorder.SignalEvent{
			Symbol:   r.Holding.Symbol,
			Price:    r.Quote.Price,
			IsSignal: r.Sell.IsSignal,
			Code:     string(r.Sell.Code),
			Reason:   r.Sell.Reason,
		}
	}
	if err := s.Recorder.RecordSignals(run, events); err != nil {
		s.Log.Error("record sell scan", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.Log.Info("sell scan finished", zap.String("run_id", run.ID),
		zap.Int("analyzed", len(results)), zap.Bool("signal", fired))
	return results, fired
}

// Screen runs the buy screener over the watchlist and records the run.
func (s *Scheduler) Screen(ctx context.Context) []model.BuyCandidate {
	run := recorder.NewRun(recorder.ScanScreen)
	candidates := s.Analyzer.ScreenBuy(ctx, s.Watchlist)

	events := make([]recorder.SignalEvent, len(candidates))
	for i, c := range candidates {
		events[i] = recorder.SignalEvent{
			Symbol:   c.Symbol,
			Price:    c.CurrentPrice,
			IsSignal: c.Buy.IsSignal,
			Code:     string(c.Buy.Code),
			Reason:   c.Buy.Reason,
			Score:    c.Score,
		}
	}
	if err := s.Recorder.RecordSignals(run, events); err != nil {
		s.Log.Error("record screen", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.Log.Info("screen finished", zap.String("run_id", run.ID), zap.Int("candidates", len(candidates)))
	return candidates
}

// Valuate prices the portfolio and records the totals.
func (s *Scheduler) Valuate(ctx context.Context) model.Valuation {
	p := s.Portfolio.Snapshot()
	v := portfolio.Valuate(ctx, p, s.Analyzer.Fetcher(), s.Valuation)
	run := recorder.NewRun(recorder.ScanValuation)
	if err := s.Recorder.RecordValuation(&recorder.ValuationSnapshot{
		RunID:       run.ID,
		TotalValue:  v.TotalValue,
		TotalCost:   v.TotalCost,
		TotalProfit: v.TotalProfit,
		Holdings:    len(v.Rows),
		Excluded:    len(v.Excluded),
	}); err != nil {
		s.Log.Error("record valuation", zap.Error(err))
	}
	return v
}

// RunSellScanNow runs the sell scan task once, notifying on signals.
func (s *Scheduler) RunSellScanNow() { s.sellScanTask() }

func (s *Scheduler) sellScanTask() {
	s.Log.Info("running sell scan task")
	results, fired := s.SellScan(s.Ctx)
	if !fired {
		return
	}
	s.trySend(s.Formatter.FormatSellReport(results))
}

func (s *Scheduler) valuationTask() {
	s.Log.Info("running valuation task")
	v := s.Valuate(s.Ctx)
	if len(v.Rows) == 0 && len(v.Excluded) == 0 {
		return
	}
	s.trySend(s.Formatter.FormatValuation(v))
}

func (s *Scheduler) screenTask() {
	s.Log.Info("running screen task")
	s.trySend(s.Formatter.FormatScreen(s.Screen(s.Ctx), screenReportLimit))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// Group chats address commands as /cmd@BotName.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/portfolio":
		return s.Formatter.FormatValuation(s.Valuate(ctx))
	case "/sell":
		results, _ := s.SellScan(ctx)
		return s.Formatter.FormatSellReport(results)
	case "/screen":
		return s.Formatter.FormatScreen(s.Screen(ctx), screenReportLimit)
	case "/analyze":
		if len(fields) < 2 {
			return "Usage: /analyze SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		a, err := s.Analyzer.Analyze(ctx, symbol, "", "")
		if err != nil {
			s.Log.Warn("analyze command failed", zap.String("symbol", symbol), zap.Error(err))
			return fmt.Sprintf("❌ No data for %s", symbol)
		}
		return s.Formatter.FormatStockAnalysis(a)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.Log.Info("notification skipped, no notifier configured")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error("send notification", zap.Error(err))
	}
}
