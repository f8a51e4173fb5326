package model

import "time"

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is a snapshot of the current market state for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	PreviousClose float64 `json:"previousClose"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        float64 `json:"volume"`
	AverageVolume float64 `json:"averageVolume"`
	MarketCap     float64 `json:"marketCap"`
}

// Period is the lookback range requested from a history provider.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	PeriodMax Period = "max"
)

// Interval is the bar width requested from a history provider.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

var validPeriods = map[Period]bool{
	Period1d: true, Period5d: true, Period1mo: true, Period3mo: true, Period6mo: true,
	Period1y: true, Period2y: true, Period5y: true, PeriodMax: true,
}

// Valid reports whether p is a supported lookback range.
func (p Period) Valid() bool { return validPeriods[p] }

// Valid reports whether i is a supported bar width.
func (i Interval) Valid() bool {
	return i == Interval1d || i == Interval1wk || i == Interval1mo
}

// StartDate returns the first calendar day covered by p, counted back from now.
func (p Period) StartDate(now time.Time) time.Time {
	switch p {
	case Period1d:
		return now.AddDate(0, 0, -1)
	case Period5d:
		return now.AddDate(0, 0, -5)
	case Period1mo:
		return now.AddDate(0, -1, 0)
	case Period3mo:
		return now.AddDate(0, -3, 0)
	case Period1y:
		return now.AddDate(-1, 0, 0)
	case Period2y:
		return now.AddDate(-2, 0, 0)
	case Period5y:
		return now.AddDate(-5, 0, 0)
	case PeriodMax:
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return now.AddDate(0, -6, 0)
	}
}
