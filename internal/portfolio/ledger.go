package portfolio

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"SignalWatch/internal/model"
)

var (
	// ErrInvalidPurchase wraps validation failures of a Purchase.
	ErrInvalidPurchase = errors.New("invalid purchase")
	// ErrInvalidUpdate wraps updates that would break a holding.
	ErrInvalidUpdate = errors.New("invalid holding update")
	// ErrUnknownSymbol is returned when no quote exists for a new symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

var validate = validator.New()

// Purchase describes one buy of a symbol.
type Purchase struct {
	Symbol       string  `json:"symbol" validate:"required"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares" validate:"gt=0"`
	AveragePrice float64 `json:"averagePrice" validate:"gt=0"`
	PurchaseDate string  `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	Notes        string  `json:"notes"`
}

// Validate checks the required fields and bounds.
func (p Purchase) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPurchase, err)
	}
	return nil
}

// HoldingUpdate carries the fields to overwrite; unset options are left alone.
type HoldingUpdate struct {
	Name         optional.Option[string]  `json:"name"`
	Shares       optional.Option[float64] `json:"shares"`
	AveragePrice optional.Option[float64] `json:"averagePrice"`
	PurchaseDate optional.Option[string]  `json:"purchaseDate"`
	Notes        optional.Option[string]  `json:"notes"`
}

// Add records a purchase. A repeat purchase is merged into the existing
// holding: shares summed, cost averaged by quantity, notes replaced only when
// the new notes are non-empty. The input portfolio is never modified.
func Add(p model.Portfolio, purchase Purchase) (model.Portfolio, error) {
	if err := purchase.Validate(); err != nil {
		return p, err
	}

	next := p.Clone()
	for i, h := range next.Items {
		if h.Symbol != purchase.Symbol {
			continue
		}
		h.Shares, h.AveragePrice = mergeCost(h.Shares, h.AveragePrice, purchase.Shares, purchase.AveragePrice)
		if purchase.Notes != "" {
			h.Notes = purchase.Notes
		}
		next.Items[i] = h
		return next, nil
	}

	next.Items = append(next.Items, model.Holding{
		Symbol:       purchase.Symbol,
		Name:         purchase.Name,
		Shares:       purchase.Shares,
		AveragePrice: purchase.AveragePrice,
		PurchaseDate: purchase.PurchaseDate,
		Notes:        purchase.Notes,
	})
	return next, nil
}

// Remove drops the holding for symbol. Absent symbols are a no-op.
func Remove(p model.Portfolio, symbol string) model.Portfolio {
	items := make([]model.Holding, 0, len(p.Items))
	for _, h := range p.Items {
		if h.Symbol != symbol {
			items = append(items, h)
		}
	}
	return model.Portfolio{Items: items}
}

// Update merges the set fields of upd into the holding for symbol.
// Absent symbols are a no-op; an update leaving shares or average price
// non-positive is rejected and p is returned unchanged.
func Update(p model.Portfolio, symbol string, upd HoldingUpdate) (model.Portfolio, error) {
	next := p.Clone()
	for i, h := range next.Items {
		if h.Symbol != symbol {
			continue
		}
		if upd.Name.IsSome() {
			h.Name = upd.Name.Unwrap()
		}
		if upd.Shares.IsSome() {
			h.Shares = upd.Shares.Unwrap()
		}
		if upd.AveragePrice.IsSome() {
			h.AveragePrice = upd.AveragePrice.Unwrap()
		}
		if upd.PurchaseDate.IsSome() {
			h.PurchaseDate = upd.PurchaseDate.Unwrap()
		}
		if upd.Notes.IsSome() {
			h.Notes = upd.Notes.Unwrap()
		}
		if err := validate.Struct(purchaseOf(h)); err != nil {
			return p, fmt.Errorf("%w: %s: %w", ErrInvalidUpdate, symbol, err)
		}
		next.Items[i] = h
		return next, nil
	}
	return p, nil
}

// mergeCost combines two lots in decimal so the merge is order independent.
func mergeCost(shares1, price1, shares2, price2 float64) (shares, averagePrice float64) {
	s1, p1 := decimal.NewFromFloat(shares1), decimal.NewFromFloat(price1)
	s2, p2 := decimal.NewFromFloat(shares2), decimal.NewFromFloat(price2)
	total := s1.Add(s2)
	cost := s1.Mul(p1).Add(s2.Mul(p2))
	return total.InexactFloat64(), cost.Div(total).InexactFloat64()
}

func purchaseOf(h model.Holding) Purchase {
	return Purchase{
		Symbol:       h.Symbol,
		Name:         h.Name,
		Shares:       h.Shares,
		AveragePrice: h.AveragePrice,
		PurchaseDate: h.PurchaseDate,
		Notes:        h.Notes,
	}
}
