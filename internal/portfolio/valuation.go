package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"SignalWatch/internal/batch"
	"SignalWatch/internal/model"
)

// QuoteFetcher resolves the current quote of a symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
}

// ValuateOptions bounds the per-holding quote fetches.
type ValuateOptions struct {
	Timeout     time.Duration
	Concurrency int
}

// Valuate prices every holding concurrently. Holdings whose quote cannot be
// fetched within the timeout are left out and listed in Excluded; totals
// cover the included rows only. Rows are sorted by value, largest first.
func Valuate(ctx context.Context, p model.Portfolio, quotes QuoteFetcher, opts ValuateOptions) model.Valuation {
	res := batch.Map(ctx, p.Items, opts.Concurrency, func(ctx context.Context, h model.Holding) (model.ValuationRow, error) {
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		q, err := quotes.FetchQuote(ctx, h.Symbol)
		if err != nil {
			return model.ValuationRow{}, err
		}
		if q == nil {
			return model.ValuationRow{}, fmt.Errorf("%s: no quote", h.Symbol)
		}
		return ValuationRowOf(h, q.Price), nil
	})

	v := model.Valuation{Rows: res.Succeeded}
	if v.Rows == nil {
		v.Rows = []model.ValuationRow{}
	}
	sort.SliceStable(v.Rows, func(i, j int) bool { return v.Rows[i].Value > v.Rows[j].Value })
	for _, r := range v.Rows {
		v.TotalValue += r.Value
		v.TotalCost += r.Holding.Shares * r.Holding.AveragePrice
	}
	v.TotalProfit = v.TotalValue - v.TotalCost
	for _, f := range res.Failed {
		v.Excluded = append(v.Excluded, f.Item.Symbol)
	}
	sort.Strings(v.Excluded)
	return v
}

// ValuationRowOf derives the market value of h at price.
func ValuationRowOf(h model.Holding, price float64) model.ValuationRow {
	value := h.Shares * price
	return model.ValuationRow{
		Holding:       h,
		CurrentPrice:  price,
		Value:         value,
		Profit:        value - h.Shares*h.AveragePrice,
		ProfitPercent: (price - h.AveragePrice) / h.AveragePrice * 100,
	}
}
