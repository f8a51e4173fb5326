package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
)

func fixedFormatter(currency string) *Formatter {
	f := NewFormatter(currency)
	f.Now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestMoney(t *testing.T) {
	jpy := fixedFormatter("JPY")
	assert.Equal(t, "¥1,500", jpy.Money(1500))
	assert.Equal(t, "-¥500", jpy.Money(-500))
	assert.Equal(t, "+¥20", jpy.signedMoney(20))

	usd := fixedFormatter("USD")
	assert.Equal(t, "$12.30", usd.Money(12.3))

	assert.Equal(t, "3.50 XXX1", fixedFormatter("XXX1").Money(3.5))
}

func TestFormatValuation(t *testing.T) {
	f := fixedFormatter("JPY")
	h := model.Holding{Symbol: "7203.T", Name: "Toyota <Motor>", Shares: 10, AveragePrice: 100}
	v := model.Valuation{
		TotalValue: 1500, TotalCost: 1000, TotalProfit: 500,
		Rows:     []model.ValuationRow{{Holding: h, CurrentPrice: 150, Value: 1500, Profit: 500, ProfitPercent: 50}},
		Excluded: []string{"NOPE"},
	}

	out := f.FormatValuation(v)
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "Toyota &lt;Motor&gt;")
	assert.Contains(t, out, "¥1,500")
	assert.Contains(t, out, "+¥500 (+50.00%)")
	assert.Contains(t, out, "No quote for: NOPE")

	assert.Contains(t, f.FormatValuation(model.Valuation{}), "No holdings recorded.")
}

func TestFormatSellReport(t *testing.T) {
	f := fixedFormatter("JPY")
	out := f.FormatSellReport([]model.SellAnalysis{
		{Holding: model.Holding{Symbol: "A"}, Quote: model.Quote{Price: 50}, Sell: model.NewSignal(true, model.ReasonDeadCross)},
		{Holding: model.Holding{Symbol: "B"}, Quote: model.Quote{Price: 90}, Sell: model.NewSignal(false, model.ReasonNoSellSignal)},
	})
	assert.Contains(t, out, "🔴 <b>A</b> ¥50")
	assert.Contains(t, out, "dead cross in a downtrend")
	assert.Contains(t, out, "⚪ <b>B</b>")
	assert.Less(t, strings.Index(out, "<b>A</b>"), strings.Index(out, "<b>B</b>"))
}

func TestFormatScreenLimit(t *testing.T) {
	f := fixedFormatter("JPY")
	cands := []model.BuyCandidate{
		{Symbol: "G", Score: 3, Buy: model.NewSignal(true, model.ReasonGoldenCross)},
		{Symbol: "R", Score: 2, Buy: model.NewSignal(true, model.ReasonRebound)},
		{Symbol: "Q", Score: 0, Buy: model.NewSignal(false, model.ReasonNoBuySignal)},
	}
	out := f.FormatScreen(cands, 2)
	assert.Contains(t, out, "1. 🟢 <b>G</b>")
	assert.Contains(t, out, "score 2: rebound after decline")
	assert.NotContains(t, out, "<b>Q</b>")
}

func TestFormatStockAnalysis(t *testing.T) {
	f := fixedFormatter("JPY")
	out := f.FormatStockAnalysis(&model.StockAnalysis{
		Quote: &model.Quote{Symbol: "A", Name: "Alpha", Price: 110, Change: 10, ChangePercent: 10, DayLow: 100, DayHigh: 112},
		Buy:   model.NewSignal(false, model.ReasonInsufficientData),
		Sell:  model.NewSignal(false, model.ReasonInsufficientData),
	})
	assert.Contains(t, out, "Price: ¥110 (+¥10, +10.00%)")
	assert.Contains(t, out, "Bars: 0")
	assert.Contains(t, out, "Buy: insufficient data")
}

type flakySender struct {
	failures int
	calls    int
}

func (s *flakySender) Send(string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("telegram down")
	}
	return nil
}

func TestSendWithRetry(t *testing.T) {
	old := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = old })

	s := &flakySender{failures: 2}
	require.NoError(t, SendWithRetry(context.Background(), s, "hi", 3, logger.NewNop()))
	assert.Equal(t, 3, s.calls)

	s = &flakySender{failures: 10}
	err := SendWithRetry(context.Background(), s, "hi", 2, logger.NewNop())
	require.Error(t, err)
	assert.Equal(t, 3, s.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	retryBase = time.Hour
	s = &flakySender{failures: 10}
	assert.ErrorIs(t, SendWithRetry(ctx, s, "hi", 2, logger.NewNop()), context.Canceled)
	assert.Equal(t, 1, s.calls)
}
