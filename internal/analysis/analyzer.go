// Package analysis joins market data with the signal engine: per-symbol
// analysis, the sell-signal scan over a portfolio and the buy screener.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"SignalWatch/internal/batch"
	"SignalWatch/internal/collector"
	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
	"SignalWatch/internal/strategy"
)

// ErrNoQuote is returned when a symbol has no quote.
var ErrNoQuote = errors.New("quote unavailable")

// Options controls history requests and the fan-out of batch scans.
type Options struct {
	Period      model.Period
	Interval    model.Interval
	Timeout     time.Duration // per symbol, covers both fetches
	Concurrency int
}

// Analyzer evaluates symbols with a market data fetcher.
type Analyzer struct {
	fetcher collector.Fetcher
	opts    Options
	log     *logger.Logger
}

func New(fetcher collector.Fetcher, opts Options, log *logger.Logger) *Analyzer {
	if !opts.Period.Valid() {
		opts.Period = model.Period6mo
	}
	if !opts.Interval.Valid() {
		opts.Interval = model.Interval1d
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{fetcher: fetcher, opts: opts, log: log}
}

// Fetcher exposes the underlying data source.
func (a *Analyzer) Fetcher() collector.Fetcher { return a.fetcher }

func (a *Analyzer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.Timeout > 0 {
		return context.WithTimeout(ctx, a.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *Analyzer) quote(ctx context.Context, symbol string) (*model.Quote, error) {
	q, err := a.fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoQuote)
	}
	return q, nil
}

// Analyze runs both evaluations for one symbol. Empty period or interval fall
// back to the analyzer defaults. A failed history fetch degrades to an empty
// history; a missing quote is an error.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.StockAnalysis, error) {
	if !period.Valid() {
		period = a.opts.Period
	}
	if !interval.Valid() {
		interval = a.opts.Interval
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	q, err := a.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	bars, err := a.fetcher.FetchHistory(ctx, symbol, period, interval)
	if err != nil {
		a.log.Warn("history unavailable", zap.String("symbol", symbol), zap.Error(err))
		bars = nil
	}
	if bars == nil {
		bars = []model.PriceBar{}
	}
	return &model.StockAnalysis{
		Quote:   q,
		History: bars,
		Buy:     strategy.EvaluateBuy(q, bars),
		Sell:    strategy.EvaluateSell(q, bars),
	}, nil
}

// SellSignals evaluates the sell rules for every holding. Holdings whose
// quote or history cannot be fetched are dropped. Holdings with a signal
// come first; order within each group follows completion order.
func (a *Analyzer) SellSignals(ctx context.Context, p model.Portfolio) []model.SellAnalysis {
	res := batch.Map(ctx, p.Items, a.opts.Concurrency, func(ctx context.Context, h model.Holding) (model.SellAnalysis, error) {
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()

		q, err := a.quote(ctx, h.Symbol)
		if err != nil {
			return model.SellAnalysis{}, err
		}
		bars, err := a.fetcher.FetchHistory(ctx, h.Symbol, a.opts.Period, a.opts.Interval)
		if err != nil {
			return model.SellAnalysis{}, fmt.Errorf("%s: %w", h.Symbol, err)
		}
		return model.SellAnalysis{Holding: h, Quote: *q, Sell: strategy.EvaluateSell(q, bars)}, nil
	})
	for _, f := range res.Failed {
		a.log.Warn("sell analysis skipped", zap.String("symbol", f.Item.Symbol), zap.Error(f.Err))
	}

	out := res.Succeeded
	if out == nil {
		out = []model.SellAnalysis{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sell.IsSignal && !out[j].Sell.IsSignal })
	return out
}

// ScreenBuy evaluates the buy rules for each distinct symbol and ranks the
// results by score, highest first. Symbols that fail to fetch are dropped.
func (a *Analyzer) ScreenBuy(ctx context.Context, symbols []string) []model.BuyCandidate {
	res := batch.Map(ctx, dedupe(symbols), a.opts.Concurrency, func(ctx context.Context, symbol string) (model.BuyCandidate, error) {
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()

		q, err := a.quote(ctx, symbol)
		if err != nil {
			return model.BuyCandidate{}, err
		}
		bars, err := a.fetcher.FetchHistory(ctx, symbol, a.opts.Period, a.opts.Interval)
		if err != nil {
			return model.BuyCandidate{}, fmt.Errorf("%s: %w", symbol, err)
		}
		buy := strategy.EvaluateBuy(q, bars)
		return model.BuyCandidate{
			Symbol:        symbol,
			Name:          q.Name,
			CurrentPrice:  q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
			Buy:           buy,
			Score:         strategy.BuyScore(buy),
		}, nil
	})
	for _, f := range res.Failed {
		a.log.Warn("screen skipped", zap.String("symbol", f.Item), zap.Error(f.Err))
	}

	out := res.Succeeded
	if out == nil {
		out = []model.BuyCandidate{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
