package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without a configured quote fail with an error.
type MockFetcher struct {
	Quotes     map[string]*model.Quote
	Histories  map[string][]model.PriceBar
	HistoryErr map[string]error
	Delay      map[string]time.Duration

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	m.record("quote:" + symbol)
	if err := m.wait(ctx, symbol); err != nil {
		return nil, err
	}
	q, ok := m.Quotes[symbol]
	if !ok || q == nil {
		return nil, fmt.Errorf("mock: unknown symbol %s", symbol)
	}
	cp := *q
	return &cp, nil
}

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, _ model.Period, _ model.Interval) ([]model.PriceBar, error) {
	m.record("history:" + symbol)
	if err := m.wait(ctx, symbol); err != nil {
		return nil, err
	}
	if err := m.HistoryErr[symbol]; err != nil {
		return nil, err
	}
	bars, ok := m.Histories[symbol]
	if !ok {
		return generateMockBars(100, 60), nil
	}
	return bars, nil
}

// Calls reports how often key ("quote:SYM" or "history:SYM") was requested.
func (m *MockFetcher) Calls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

func (m *MockFetcher) record(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[key]++
}

func (m *MockFetcher) wait(ctx context.Context, symbol string) error {
	d, ok := m.Delay[symbol]
	if !ok {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
