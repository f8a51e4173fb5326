package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SignalWatch/internal/calculator"
	"SignalWatch/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart endpoint host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps index aliases to Yahoo tickers
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"N225":   "^N225",
			"NIKKEI": "^N225",
			"TOPIX":  "^TOPX",
			"SPX":    "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooMeta is the subset of chart metadata used to build a Quote.
type yahooMeta struct {
	Symbol               string  `json:"symbol"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  float64 `json:"regularMarketVolume"`
	MarketCap            float64 `json:"marketCap"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return toFloat(vals[i])
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (yahooMeta, []model.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return yahooMeta{}, nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return yahooMeta{}, nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return yahooMeta{}, nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		for i, ts := range result.Timestamp {
			o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
			if o == 0 && h == 0 && l == 0 && c == 0 {
				continue // skip null bars (holidays etc.)
			}
			bars = append(bars, model.PriceBar{
				Date:   time.Unix(ts, 0).UTC(),
				Open:   o,
				High:   h,
				Low:    l,
				Close:  c,
				Volume: at(quote.Volume, i),
			})
		}
	}
	return result.Meta, normalizeBars(bars), nil
}

// FetchHistory returns daily (or weekly/monthly) bars covering period.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, period model.Period, interval model.Interval) ([]model.PriceBar, error) {
	if !period.Valid() {
		period = model.Period6mo
	}
	if !interval.Valid() {
		interval = model.Interval1d
	}
	_, bars, err := f.fetchChart(ctx, symbol, string(interval), string(period))
	if err != nil {
		return nil, err
	}
	return bars, nil
}

// FetchQuote builds a quote from the chart metadata and the last month of bars.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	meta, bars, err := f.fetchChart(ctx, symbol, string(model.Interval1d), string(model.Period1mo))
	if err != nil {
		return nil, err
	}
	if meta.RegularMarketPrice == 0 && len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: no price data for %s", symbol)
	}
	return quoteFromChart(symbol, meta, bars), nil
}

func quoteFromChart(symbol string, meta yahooMeta, bars []model.PriceBar) *model.Quote {
	q := &model.Quote{
		Symbol:    meta.Symbol,
		Name:      meta.LongName,
		Price:     meta.RegularMarketPrice,
		DayHigh:   meta.RegularMarketDayHigh,
		DayLow:    meta.RegularMarketDayLow,
		Volume:    meta.RegularMarketVolume,
		MarketCap: meta.MarketCap,
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if q.Name == "" {
		q.Name = meta.ShortName
	}

	n := len(bars)
	if n > 0 {
		last := bars[n-1]
		if q.Price == 0 {
			q.Price = last.Close
		}
		q.Open = last.Open
		if q.DayHigh == 0 {
			q.DayHigh = last.High
		}
		if q.DayLow == 0 {
			q.DayLow = last.Low
		}
		if q.Volume == 0 {
			q.Volume = last.Volume
		}
		q.AverageVolume = calculator.AverageVolume(bars, averageVolumeDays)
	}

	switch {
	case meta.PreviousClose > 0:
		q.PreviousClose = meta.PreviousClose
	case n >= 2:
		q.PreviousClose = bars[n-2].Close
	default:
		q.PreviousClose = meta.ChartPreviousClose
	}
	if q.PreviousClose > 0 {
		q.Change = q.Price - q.PreviousClose
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	return q
}
