package model

// Holding is a recorded position in one symbol.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	AveragePrice float64 `json:"averagePrice"`
	PurchaseDate string  `json:"purchaseDate"`
	Notes        string  `json:"notes"`
}

// Portfolio is an ordered set of holdings keyed by symbol.
type Portfolio struct {
	Items []Holding `json:"items"`
}

// Find returns the holding for symbol, if any.
func (p Portfolio) Find(symbol string) (Holding, bool) {
	for _, h := range p.Items {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}

// Symbols lists the symbols in portfolio order.
func (p Portfolio) Symbols() []string {
	out := make([]string, len(p.Items))
	for i, h := range p.Items {
		out[i] = h.Symbol
	}
	return out
}

// Clone returns a copy that shares no backing array with p.
func (p Portfolio) Clone() Portfolio {
	items := make([]Holding, len(p.Items))
	copy(items, p.Items)
	return Portfolio{Items: items}
}

// ValuationRow is the derived market value of one holding.
type ValuationRow struct {
	Holding       Holding `json:"item"`
	CurrentPrice  float64 `json:"currentPrice"`
	Value         float64 `json:"value"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
}

// Valuation aggregates the rows whose quotes could be fetched.
type Valuation struct {
	TotalValue  float64        `json:"totalValue"`
	TotalCost   float64        `json:"totalCost"`
	TotalProfit float64        `json:"totalProfit"`
	Rows        []ValuationRow `json:"items"`
	Excluded    []string       `json:"excluded,omitempty"`
}

// SellAnalysis is the sell evaluation of one holding.
type SellAnalysis struct {
	Holding Holding      `json:"item"`
	Quote   Quote        `json:"stockData"`
	Sell    SignalResult `json:"analysis"`
}
