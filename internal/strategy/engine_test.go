package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SignalWatch/internal/model"
)

var testQuote = &model.Quote{Symbol: "7203.T", Price: 100}

func makeBars(closes []float64, volumes []float64) []model.PriceBar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	offset := len(closes) - len(volumes)
	for i, c := range closes {
		v := 1000.0
		if i >= offset {
			v = volumes[i-offset]
		}
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: v}
	}
	return bars
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func linear(from, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestEvaluate_InsufficientData(t *testing.T) {
	for n := 0; n < MinBars; n++ {
		bars := makeBars(linear(100, 1, n), nil)
		buy := EvaluateBuy(testQuote, bars)
		sell := EvaluateSell(testQuote, bars)
		assert.False(t, buy.IsSignal)
		assert.False(t, sell.IsSignal)
		assert.Equal(t, model.ReasonInsufficientData, buy.Code)
		assert.Equal(t, "insufficient data", buy.Reason)
		assert.Equal(t, "insufficient data", sell.Reason)
	}
}

func TestEvaluate_NilQuote(t *testing.T) {
	bars := makeBars(linear(100, 1, 30), nil)
	assert.Equal(t, model.ReasonInsufficientData, EvaluateBuy(nil, bars).Code)
	assert.Equal(t, model.ReasonInsufficientData, EvaluateSell(nil, bars).Code)
}

// goldenCrossCloses: a flat plateau, a steady climb, then a jump that lifts
// MA5 over MA20 on the final bar.
func goldenCrossCloses() []float64 {
	return concat(repeat(120, 15), linear(100, 1, 9), []float64{150})
}

func TestEvaluateBuy_GoldenCrossBeatsVolumeSurge(t *testing.T) {
	bars := makeBars(goldenCrossCloses(), []float64{100, 100, 100, 200, 200})

	sig := EvaluateBuy(testQuote, bars)
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonGoldenCross, sig.Code)
	assert.Equal(t, "golden cross in an uptrend", sig.Reason)
}

func TestEvaluateBuy_Rebound(t *testing.T) {
	bars := makeBars([]float64{100, 100, 100, 100, 100, 100, 98, 96, 97, 99}, nil)

	sig := EvaluateBuy(testQuote, bars)
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonRebound, sig.Code)
	assert.Equal(t, "rebound after decline", sig.Reason)
}

func TestEvaluateBuy_ReboundNeedsBothDownDays(t *testing.T) {
	bars := makeBars([]float64{100, 100, 100, 100, 100, 100, 98, 98, 99, 100}, nil)
	assert.Equal(t, model.ReasonNoBuySignal, EvaluateBuy(testQuote, bars).Code)
}

func TestEvaluateBuy_VolumeSurge(t *testing.T) {
	bars := makeBars(repeat(100, 10), []float64{100, 100, 100, 200, 200})

	sig := EvaluateBuy(testQuote, bars)
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonVolumeSurge, sig.Code)
	assert.Equal(t, "rising volume indicates renewed interest", sig.Reason)
}

func TestEvaluateBuy_NoSignal(t *testing.T) {
	sig := EvaluateBuy(testQuote, makeBars(repeat(100, 10), nil))
	assert.False(t, sig.IsSignal)
	assert.Equal(t, model.ReasonNoBuySignal, sig.Code)
	assert.Equal(t, "no buy signal detected", sig.Reason)
}

func TestEvaluateSell_DeadCross(t *testing.T) {
	closes := concat(repeat(80, 15), linear(100, -1, 9), []float64{50})

	sig := EvaluateSell(testQuote, makeBars(closes, nil))
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonDeadCross, sig.Code)
	assert.Equal(t, "dead cross in a downtrend", sig.Reason)
}

func TestEvaluateSell_PeakAfterRally(t *testing.T) {
	closes := concat(repeat(100, 10), []float64{100, 104, 108, 112, 116, 120, 125, 130, 130.5, 130.9})

	sig := EvaluateSell(testQuote, makeBars(closes, nil))
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonPeak, sig.Code)
	assert.Equal(t, "reached a likely peak after a sharp rally", sig.Reason)
}

func TestEvaluateSell_PeakThenDip(t *testing.T) {
	closes := concat(repeat(100, 10), []float64{100, 104, 108, 112, 116, 120, 125, 130, 131, 129})

	sig := EvaluateSell(testQuote, makeBars(closes, nil))
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonPeak, sig.Code)
}

func TestEvaluateSell_RallyStillRunning(t *testing.T) {
	closes := concat(repeat(100, 10), linear(100, 4, 10))

	sig := EvaluateSell(testQuote, makeBars(closes, nil))
	assert.False(t, sig.IsSignal)
	assert.Equal(t, model.ReasonNoSellSignal, sig.Code)
}

func TestEvaluateSell_VolumeFadeInUptrend(t *testing.T) {
	bars := makeBars(linear(100, 1, 10), []float64{100, 100, 100, 60, 60})

	sig := EvaluateSell(testQuote, bars)
	assert.True(t, sig.IsSignal)
	assert.Equal(t, model.ReasonVolumeFade, sig.Code)
	assert.Equal(t, "volume fading during an uptrend; upside momentum weakening", sig.Reason)
}

func TestEvaluateSell_VolumeFadeWithoutTrend(t *testing.T) {
	bars := makeBars(repeat(100, 10), []float64{100, 100, 100, 60, 60})
	assert.Equal(t, model.ReasonNoSellSignal, EvaluateSell(testQuote, bars).Code)
}

func TestEvaluate_BuyAndSellAreIndependent(t *testing.T) {
	bars := makeBars(linear(100, 1, 10), []float64{100, 100, 100, 60, 60})
	assert.False(t, EvaluateBuy(testQuote, bars).IsSignal)
	assert.True(t, EvaluateSell(testQuote, bars).IsSignal)
}

func TestBuyScore(t *testing.T) {
	assert.Equal(t, 3, BuyScore(model.NewSignal(true, model.ReasonGoldenCross)))
	assert.Equal(t, 2, BuyScore(model.NewSignal(true, model.ReasonRebound)))
	assert.Equal(t, 1, BuyScore(model.NewSignal(true, model.ReasonVolumeSurge)))
	assert.Equal(t, 0, BuyScore(model.NewSignal(false, model.ReasonNoBuySignal)))
	assert.Equal(t, 0, BuyScore(model.NewSignal(false, model.ReasonInsufficientData)))
}
