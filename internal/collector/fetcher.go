package collector

import (
	"context"
	"sort"

	"SignalWatch/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	FetchHistory(ctx context.Context, symbol string, period model.Period, interval model.Interval) ([]model.PriceBar, error)
	Name() string
}

// averageVolumeDays is the window used to fill Quote.AverageVolume.
const averageVolumeDays = 10

// normalizeBars sorts bars by date and keeps the last bar of each calendar day.
func normalizeBars(bars []model.PriceBar) []model.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && sameDay(out[n-1], b) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b model.PriceBar) bool {
	ay, am, ad := a.Date.UTC().Date()
	by, bm, bd := b.Date.UTC().Date()
	return ay == by && am == bm && ad == bd
}
