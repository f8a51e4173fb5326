package portfolio

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
)

// Manager is the single writer of the stored portfolio. Each mutation is a
// pure ledger operation applied under the lock, then saved as a snapshot.
type Manager struct {
	mu      sync.Mutex
	current model.Portfolio
	store   Store
	quotes  QuoteFetcher
	log     *logger.Logger
}

// NewManager loads the stored snapshot. quotes may be nil, in which case new
// symbols are not checked against the market-data provider.
func NewManager(store Store, quotes QuoteFetcher, log *logger.Logger) *Manager {
	return &Manager{current: store.Load(), store: store, quotes: quotes, log: log}
}

// Snapshot returns a copy of the current portfolio.
func (m *Manager) Snapshot() model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Add validates the purchase, checks that a first purchase names a known
// symbol, and records it.
func (m *Manager) Add(ctx context.Context, purchase Purchase) (model.Portfolio, error) {
	if err := purchase.Validate(); err != nil {
		return m.Snapshot(), err
	}

	if _, held := m.Snapshot().Find(purchase.Symbol); !held && m.quotes != nil {
		q, err := m.quotes.FetchQuote(ctx, purchase.Symbol)
		if err != nil || q == nil {
			m.log.Warn("reject purchase of unknown symbol", zap.String("symbol", purchase.Symbol), zap.Error(err))
			return m.Snapshot(), fmt.Errorf("%w: %s", ErrUnknownSymbol, purchase.Symbol)
		}
		if purchase.Name == "" {
			purchase.Name = q.Name
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := Add(m.current, purchase)
	if err != nil {
		return m.current.Clone(), err
	}
	m.commit(next)
	return next.Clone(), nil
}

// Update applies a partial update to the holding for symbol.
func (m *Manager) Update(symbol string, upd HoldingUpdate) (model.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := Update(m.current, symbol, upd)
	if err != nil {
		return m.current.Clone(), err
	}
	m.commit(next)
	return next.Clone(), nil
}

// Remove drops the holding for symbol.
func (m *Manager) Remove(symbol string) model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Remove(m.current, symbol)
	m.commit(next)
	return next.Clone()
}

// commit swaps in next and persists it. A failed save is logged and the
// in-memory state is kept. Callers hold m.mu.
func (m *Manager) commit(next model.Portfolio) {
	m.current = next
	if err := m.store.Save(next); err != nil {
		m.log.Error("failed to save portfolio", zap.Error(err))
	}
}
