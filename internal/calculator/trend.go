package calculator

import "SignalWatch/internal/model"

// TrendWindow is the number of trailing bars RecentTrend looks at.
const TrendWindow = 10

// trendMargin is how many more up (or down) days are needed to call a trend.
const trendMargin = 2

// RecentTrend classifies the last TrendWindow bars by counting up and down closes.
// Flat transitions count toward neither side.
func RecentTrend(bars []model.PriceBar) model.Trend {
	if len(bars) < TrendWindow {
		return model.TrendNeutral
	}
	recent := Tail(bars, TrendWindow)
	upDays, downDays := 0, 0
	for i := 1; i < len(recent); i++ {
		switch {
		case recent[i].Close > recent[i-1].Close:
			upDays++
		case recent[i].Close < recent[i-1].Close:
			downDays++
		}
	}
	switch {
	case upDays > downDays+trendMargin:
		return model.TrendUp
	case downDays > upDays+trendMargin:
		return model.TrendDown
	default:
		return model.TrendNeutral
	}
}

// Tail returns the last n bars, or all of them when fewer exist.
func Tail(bars []model.PriceBar, n int) []model.PriceBar {
	if n <= 0 {
		return nil
	}
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
