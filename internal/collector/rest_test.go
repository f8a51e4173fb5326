package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalWatch/internal/model"
)

func TestRESTFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quote", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"Sony Group","price":13000,"previousClose":12800}`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	q, err := f.FetchQuote(context.Background(), "6758.T")
	require.NoError(t, err)
	assert.Equal(t, "6758.T", q.Symbol)
	assert.Equal(t, "Sony Group", q.Name)
	assert.Equal(t, 13000.0, q.Price)
}

func TestRESTFetchQuoteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown symbol", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "")
	_, err := f.FetchQuote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestRESTFetchHistoryWeeklyFallback(t *testing.T) {
	// Mon 2024-01-01 .. Tue 2024-01-09 daily bars.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "1wk" {
			http.Error(w, "weekly unsupported", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[
			{"timestamp":1704067200,"open":10,"high":12,"low":9,"close":11,"volume":100},
			{"timestamp":1704153600,"open":11,"high":15,"low":10,"close":14,"volume":100},
			{"timestamp":1704758400,"open":14,"high":16,"low":13,"close":15,"volume":50}
		]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "")
	bars, err := f.FetchHistory(context.Background(), "X", model.Period1mo, model.Interval1wk)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.0, bars[0].Open)
	assert.Equal(t, 15.0, bars[0].High)
	assert.Equal(t, 9.0, bars[0].Low)
	assert.Equal(t, 14.0, bars[0].Close)
	assert.Equal(t, 200.0, bars[0].Volume)
	assert.Equal(t, 15.0, bars[1].Close)
}

func TestNormalizeBarsSortsAndDedupes(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := normalizeBars([]model.PriceBar{
		{Date: day.AddDate(0, 0, 1), Close: 3},
		{Date: day, Close: 1},
		{Date: day.Add(6 * time.Hour), Close: 2},
	})
	require.Len(t, bars, 2)
	assert.Equal(t, 2.0, bars[0].Close)
	assert.Equal(t, 3.0, bars[1].Close)
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{
		Quotes: map[string]*model.Quote{"A": {Symbol: "A", Price: 10}},
	}
	q, err := m.FetchQuote(context.Background(), "A")
	require.NoError(t, err)
	q.Price = 99
	assert.Equal(t, 10.0, m.Quotes["A"].Price)

	_, err = m.FetchQuote(context.Background(), "B")
	assert.Error(t, err)

	bars, err := m.FetchHistory(context.Background(), "A", model.Period6mo, model.Interval1d)
	require.NoError(t, err)
	assert.Len(t, bars, 60)
	assert.Equal(t, 1, m.Calls("quote:B"))
}
