package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"SignalWatch/internal/model"
)

// Formatter renders reports as Telegram HTML in one display currency.
type Formatter struct {
	Currency string
	Now      func() time.Time
}

func NewFormatter(currency string) *Formatter {
	return &Formatter{Currency: currency, Now: time.Now}
}

// Money formats amount in the formatter currency, e.g. ¥1,500 or $12.30.
// Unknown currency codes fall back to a plain number with the code.
func (f *Formatter) Money(amount float64) string {
	cur := money.GetCurrency(f.Currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, f.Currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func (f *Formatter) signedMoney(amount float64) string {
	if amount > 0 {
		return "+" + f.Money(amount)
	}
	return f.Money(amount)
}

func (f *Formatter) date() string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return now().Format("2006-01-02")
}

func signalIcon(r model.SignalResult, on string) string {
	if r.IsSignal {
		return on
	}
	return "⚪"
}

// FormatValuation formats portfolio totals and per-holding rows.
func (f *Formatter) FormatValuation(v model.Valuation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> | %s\n\n", f.date()))
	if len(v.Rows) == 0 && len(v.Excluded) == 0 {
		b.WriteString("No holdings recorded.")
		return b.String()
	}

	for _, r := range v.Rows {
		b.WriteString(fmt.Sprintf("<b>%s</b> %s\n", html.EscapeString(r.Holding.Symbol), html.EscapeString(r.Holding.Name)))
		b.WriteString(fmt.Sprintf("  %g @ %s → %s\n", r.Holding.Shares, f.Money(r.CurrentPrice), f.Money(r.Value)))
		b.WriteString(fmt.Sprintf("  P/L: %s (%+.2f%%)\n", f.signedMoney(r.Profit), r.ProfitPercent))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Value: %s\n", f.Money(v.TotalValue)))
	b.WriteString(fmt.Sprintf("Cost: %s\n", f.Money(v.TotalCost)))
	b.WriteString(fmt.Sprintf("P/L: %s\n", f.signedMoney(v.TotalProfit)))
	if len(v.Excluded) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No quote for: %s\n", html.EscapeString(strings.Join(v.Excluded, ", "))))
	}
	return b.String()
}

// FormatSellReport lists sell evaluations, signals first as given.
func (f *Formatter) FormatSellReport(results []model.SellAnalysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📉 <b>Sell signals</b> | %s\n\n", f.date()))
	if len(results) == 0 {
		b.WriteString("No holdings could be analyzed.")
		return b.String()
	}
	for _, r := range results {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", signalIcon(r.Sell, "🔴"),
			html.EscapeString(r.Holding.Symbol), f.Money(r.Quote.Price)))
		b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(r.Sell.Reason)))
	}
	return b.String()
}

// FormatScreen lists the top limit buy candidates (all when limit <= 0).
func (f *Formatter) FormatScreen(candidates []model.BuyCandidate, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>Buy screener</b> | %s\n\n", f.date()))
	if len(candidates) == 0 {
		b.WriteString("No symbols could be screened.")
		return b.String()
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("%d. %s <b>%s</b> %s %s (%+.2f%%)\n", i+1, signalIcon(c.Buy, "🟢"),
			html.EscapeString(c.Symbol), html.EscapeString(c.Name), f.Money(c.CurrentPrice), c.ChangePercent))
		b.WriteString(fmt.Sprintf("   score %d: %s\n", c.Score, html.EscapeString(c.Buy.Reason)))
	}
	return b.String()
}

// FormatStockAnalysis formats one symbol's quote and both evaluations.
func (f *Formatter) FormatStockAnalysis(a *model.StockAnalysis) string {
	var b strings.Builder
	q := a.Quote
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s\n\n", html.EscapeString(q.Symbol), html.EscapeString(q.Name)))
	b.WriteString(fmt.Sprintf("Price: %s (%s, %+.2f%%)\n", f.Money(q.Price), f.signedMoney(q.Change), q.ChangePercent))
	b.WriteString(fmt.Sprintf("Range: %s - %s\n", f.Money(q.DayLow), f.Money(q.DayHigh)))
	b.WriteString(fmt.Sprintf("Bars: %d\n\n", len(a.History)))
	b.WriteString(fmt.Sprintf("%s Buy: %s\n", signalIcon(a.Buy, "🟢"), html.EscapeString(a.Buy.Reason)))
	b.WriteString(fmt.Sprintf("%s Sell: %s\n", signalIcon(a.Sell, "🔴"), html.EscapeString(a.Sell.Reason)))
	return b.String()
}

// HelpText lists the bot commands.
func HelpText() string {
	return "🤖 <b>SignalWatch</b>\n\n" +
		"/portfolio - portfolio valuation\n" +
		"/sell - sell-signal scan over holdings\n" +
		"/screen - buy screener over the watchlist\n" +
		"/analyze SYMBOL - analyze one symbol\n" +
		"/help - this message"
}
