package model

// Trend classifies the short-term direction of a price series.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// ReasonCode identifies which rule produced a SignalResult.
type ReasonCode string

const (
	ReasonInsufficientData ReasonCode = "INSUFFICIENT_DATA"

	ReasonGoldenCross  ReasonCode = "GOLDEN_CROSS"
	ReasonRebound      ReasonCode = "REBOUND"
	ReasonVolumeSurge  ReasonCode = "VOLUME_SURGE"
	ReasonNoBuySignal  ReasonCode = "NO_BUY_SIGNAL"
	ReasonDeadCross    ReasonCode = "DEAD_CROSS"
	ReasonPeak         ReasonCode = "PEAK_EXHAUSTION"
	ReasonVolumeFade   ReasonCode = "VOLUME_FADE"
	ReasonNoSellSignal ReasonCode = "NO_SELL_SIGNAL"
)

var reasonText = map[ReasonCode]string{
	ReasonInsufficientData: "insufficient data",
	ReasonGoldenCross:      "golden cross in an uptrend",
	ReasonRebound:          "rebound after decline",
	ReasonVolumeSurge:      "rising volume indicates renewed interest",
	ReasonNoBuySignal:      "no buy signal detected",
	ReasonDeadCross:        "dead cross in a downtrend",
	ReasonPeak:             "reached a likely peak after a sharp rally",
	ReasonVolumeFade:       "volume fading during an uptrend; upside momentum weakening",
	ReasonNoSellSignal:     "no sell signal detected",
}

// Text returns the display string bound to the code.
func (c ReasonCode) Text() string {
	if s, ok := reasonText[c]; ok {
		return s
	}
	return string(c)
}

// SignalResult is the outcome of one buy or sell evaluation.
// Reason is always set, also when IsSignal is false.
type SignalResult struct {
	IsSignal bool       `json:"isSignal"`
	Code     ReasonCode `json:"code"`
	Reason   string     `json:"reason"`
}

// NewSignal builds a SignalResult whose Reason matches code.
func NewSignal(isSignal bool, code ReasonCode) SignalResult {
	return SignalResult{IsSignal: isSignal, Code: code, Reason: code.Text()}
}

// StockAnalysis bundles a quote, its history and both evaluations.
type StockAnalysis struct {
	Quote   *Quote       `json:"quote"`
	History []PriceBar   `json:"history"`
	Buy     SignalResult `json:"buy"`
	Sell    SignalResult `json:"sell"`
}

// BuyCandidate is one screener row.
type BuyCandidate struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	CurrentPrice  float64      `json:"currentPrice"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	Buy           SignalResult `json:"analysis"`
	Score         int          `json:"score"`
}
