package battle

import (
	"context"
	"sync"

	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/models"
)

// Manager holds at most one engine per player. Starting a battle while
// one is in progress is rejected, mirroring the double-invocation
// guard on Engine.Initialize.
type Manager struct {
	mu      sync.Mutex
	engines map[string]*Engine

	cfg       models.BattleConfig
	questions QuestionSource
	store     SessionStore
	sink      ResultSink
	effects   *effects.Manager
}

func NewManager(cfg models.BattleConfig, questions QuestionSource, store SessionStore, sink ResultSink, effectManager *effects.Manager) *Manager {
	return &Manager{
		engines:   make(map[string]*Engine),
		cfg:       cfg,
		questions: questions,
		store:     store,
		sink:      sink,
		effects:   effectManager,
	}
}

// StartBattle creates and launches a new engine for the player. The
// previous engine is replaced only when it reached a terminal state.
func (m *Manager) StartBattle(ctx context.Context, playerID, category, difficulty string) (*Engine, error) {
	m.mu.Lock()

	if existing, ok := m.engines[playerID]; ok {
		status := existing.Session().Status
		if status == models.BattleStatusSearching || status == models.BattleStatusReady || status == models.BattleStatusActive {
			m.mu.Unlock()
			return nil, ErrBattleInProgress
		}

		existing.Close()
	}

	var ledger *effects.Ledger
	if m.effects != nil {
		ledger = m.effects.Ledger(playerID)
	}

	engine := NewEngine(playerID, m.cfg, m.questions, m.store, m.sink, ledger)
	m.engines[playerID] = engine
	m.mu.Unlock()

	go func() {
		if err := engine.Initialize(ctx, category, difficulty); err != nil {
			return
		}

		engine.Run(ctx)
	}()

	return engine, nil
}

func (m *Manager) Engine(playerID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	engine, ok := m.engines[playerID]
	return engine, ok
}

// Dismiss discards the player's session, clearing any saved snapshot.
func (m *Manager) Dismiss(ctx context.Context, playerID string) {
	m.mu.Lock()
	engine, ok := m.engines[playerID]
	if ok {
		delete(m.engines, playerID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	engine.Close()
	if m.store != nil {
		m.store.ClearSession(ctx, playerID)
	}
}
