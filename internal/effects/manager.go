package effects

import (
	"context"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/models"
	"go.uber.org/zap"
)

// Manager holds one ledger per player and runs the shared expiry
// sweep. One ticker serves every ledger.
type Manager struct {
	mu       sync.RWMutex
	ledgers  map[string]*Ledger
	onExpire func(*models.Effect)
}

func NewManager() *Manager {
	return &Manager{ledgers: make(map[string]*Ledger)}
}

// OnExpire registers a callback invoked for every effect the sweep
// expires, after its ledger contribution is reversed.
func (m *Manager) OnExpire(fn func(*models.Effect)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

func (m *Manager) Ledger(playerID string) *Ledger {
	m.mu.RLock()
	ledger, ok := m.ledgers[playerID]
	m.mu.RUnlock()
	if ok {
		return ledger
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ledger, ok = m.ledgers[playerID]; ok {
		return ledger
	}

	ledger = NewLedger(playerID)
	m.ledgers[playerID] = ledger
	return ledger
}

// Run sweeps expired effects once per second until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.RLock()
	ledgers := make([]*Ledger, 0, len(m.ledgers))
	for _, l := range m.ledgers {
		ledgers = append(ledgers, l)
	}
	onExpire := m.onExpire
	m.mu.RUnlock()

	for _, ledger := range ledgers {
		for _, expired := range ledger.Sweep(now) {
			utils.Logger.Info("effect expired",
				zap.String("player_id", expired.PlayerID),
				zap.String("effect_id", expired.ID),
				zap.String("type", string(expired.Type)),
			)

			if onExpire != nil {
				onExpire(expired)
			}
		}
	}
}
