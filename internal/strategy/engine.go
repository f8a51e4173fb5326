package strategy

import (
	"SignalWatch/internal/calculator"
	"SignalWatch/internal/model"
)

// MinBars is the shortest history a signal can be evaluated on.
const MinBars = 10

const (
	shortPeriod = 5
	longPeriod  = 20
)

// series bundles the statistics shared by the buy and sell rules.
type series struct {
	bars  []model.PriceBar
	trend model.Trend
	short []float64
	long  []float64
}

func newSeries(bars []model.PriceBar) *series {
	return &series{
		bars:  bars,
		trend: calculator.RecentTrend(bars),
		short: calculator.MovingAverage(bars, shortPeriod),
		long:  calculator.MovingAverage(bars, longPeriod),
	}
}

// rule is one entry of a priority-ordered rule table.
type rule struct {
	Code  model.ReasonCode
	Match func(s *series) bool
}

// buyRules are tested in order; the first match wins.
var buyRules = []rule{
	{model.ReasonGoldenCross, func(s *series) bool {
		return s.trend == model.TrendUp && calculator.GoldenCross(s.short, s.long)
	}},
	{model.ReasonRebound, func(s *series) bool { return isRebounding(s.bars) }},
	{model.ReasonVolumeSurge, func(s *series) bool { return calculator.VolumeIncreasing(s.bars) }},
}

// sellRules are tested in order; the first match wins.
var sellRules = []rule{
	{model.ReasonDeadCross, func(s *series) bool {
		return s.trend == model.TrendDown && calculator.DeadCross(s.short, s.long)
	}},
	{model.ReasonPeak, func(s *series) bool { return isPeaking(s.bars) }},
	{model.ReasonVolumeFade, func(s *series) bool {
		return calculator.VolumeDecreasing(s.bars) && s.trend == model.TrendUp
	}},
}

// EvaluateBuy decides whether the history shows a buy signal.
func EvaluateBuy(quote *model.Quote, bars []model.PriceBar) model.SignalResult {
	return evaluate(quote, bars, buyRules, model.ReasonNoBuySignal)
}

// EvaluateSell decides whether the history shows a sell signal.
func EvaluateSell(quote *model.Quote, bars []model.PriceBar) model.SignalResult {
	return evaluate(quote, bars, sellRules, model.ReasonNoSellSignal)
}

func evaluate(quote *model.Quote, bars []model.PriceBar, rules []rule, fallback model.ReasonCode) model.SignalResult {
	if quote == nil || len(bars) < MinBars {
		return model.NewSignal(false, model.ReasonInsufficientData)
	}
	s := newSeries(bars)
	for _, r := range rules {
		if r.Match(s) {
			return model.NewSignal(true, r.Code)
		}
	}
	return model.NewSignal(false, fallback)
}
