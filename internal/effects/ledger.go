package effects

import (
	"container/heap"
	"errors"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
)

var ErrEffectNotFound = errors.New("effect_not_found")

// Ledger tracks the active effects of one player and their aggregate
// contribution to the player's reward multipliers. Activation
// multiplies the relevant multiplier by the effect's value; removal
// divides the same stored value back out, so unrelated concurrent
// effects are preserved.
type Ledger struct {
	mu          sync.Mutex
	playerID    string
	effects     map[string]*models.Effect
	queue       expiryQueue
	multipliers models.RewardMultipliers
	onChange    func(models.RewardMultipliers)
	now         func() time.Time
}

func NewLedger(playerID string) *Ledger {
	return &Ledger{
		playerID:    playerID,
		effects:     make(map[string]*models.Effect),
		multipliers: models.NewRewardMultipliers(),
		now:         time.Now,
	}
}

// OnChange registers a callback invoked with the new multipliers after
// every activation or removal that touches them.
func (l *Ledger) OnChange(fn func(models.RewardMultipliers)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

func (l *Ledger) Multipliers() models.RewardMultipliers {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.multipliers
}

// Activate registers an effect and applies its multiplier. Zero-value
// fields fall back to the defaults (1.5x for 300s).
func (l *Ledger) Activate(effect *models.Effect) *models.Effect {
	l.mu.Lock()
	defer l.mu.Unlock()

	if effect.ID == "" {
		effect.ID = uuid.New().String()
	}
	if effect.Value == 0 {
		effect.Value = models.DefaultEffectValue
	}
	if effect.Duration == 0 {
		effect.Duration = models.DefaultEffectDuration
	}
	if effect.StartTime.IsZero() {
		effect.StartTime = l.now()
	}
	effect.PlayerID = l.playerID

	l.effects[effect.ID] = effect
	heap.Push(&l.queue, effect)
	l.apply(effect)

	return effect
}

// Remove cancels an effect before its natural expiry, reversing its
// contribution.
func (l *Ledger) Remove(effectID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	effect, ok := l.effects[effectID]
	if !ok {
		return ErrEffectNotFound
	}

	l.drop(effect)
	return nil
}

// Sweep expires every effect whose window has passed as of now and
// returns the expired entries.
func (l *Ledger) Sweep(now time.Time) []*models.Effect {
	l.mu.Lock()
	defer l.mu.Unlock()

	var expired []*models.Effect
	for l.queue.Len() > 0 {
		next := l.queue[0]
		if !next.Expired(now) {
			break
		}

		if _, ok := l.effects[next.ID]; ok {
			l.drop(next)
			expired = append(expired, next)
		} else {
			heap.Pop(&l.queue)
		}
	}

	return expired
}

// NextExpiry returns the earliest expiry among active effects.
func (l *Ledger) NextExpiry() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.queue.Len() > 0 {
		next := l.queue[0]
		if _, ok := l.effects[next.ID]; ok {
			return next.ExpiresAt(), true
		}
		heap.Pop(&l.queue)
	}

	return time.Time{}, false
}

func (l *Ledger) Active() []*models.Effect {
	l.mu.Lock()
	defer l.mu.Unlock()

	active := make([]*models.Effect, 0, len(l.effects))
	for _, e := range l.effects {
		active = append(active, e)
	}

	return active
}

// ScoreBoost returns the combined multiplier of active score_boost
// effects, 1 when none are active.
func (l *Ledger) ScoreBoost() float64 {
	return l.boost(models.EffectScoreBoost)
}

// TimeBoost returns the combined multiplier of active time_boost
// effects, 1 when none are active.
func (l *Ledger) TimeBoost() float64 {
	return l.boost(models.EffectTimeBoost)
}

func (l *Ledger) boost(kind models.EffectType) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	boost := 1.0
	for _, e := range l.effects {
		if e.Type == kind {
			boost *= e.Value
		}
	}

	return boost
}

// apply folds an effect into the multipliers. Score and time boosts
// are read directly by the battle engine and never touch them.
func (l *Ledger) apply(effect *models.Effect) {
	switch effect.Type {
	case models.EffectXPBoost:
		l.multipliers.XP *= effect.Value
	case models.EffectCoinBoost:
		l.multipliers.Coins *= effect.Value
	default:
		return
	}

	if l.onChange != nil {
		l.onChange(l.multipliers)
	}
}

// drop removes an effect, dividing its recorded value back out of the
// multiplier it contributed to. Callers hold the lock.
func (l *Ledger) drop(effect *models.Effect) {
	delete(l.effects, effect.ID)

	switch effect.Type {
	case models.EffectXPBoost:
		l.multipliers.XP /= effect.Value
	case models.EffectCoinBoost:
		l.multipliers.Coins /= effect.Value
	default:
		return
	}

	if l.onChange != nil {
		l.onChange(l.multipliers)
	}
}

// expiryQueue is a min-heap ordered by expiry time. A single sweep
// goroutine drains it instead of one timer per effect.
type expiryQueue []*models.Effect

func (q expiryQueue) Len() int { return len(q) }

func (q expiryQueue) Less(i, j int) bool {
	return q[i].ExpiresAt().Before(q[j].ExpiresAt())
}

func (q expiryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *expiryQueue) Push(x any) {
	*q = append(*q, x.(*models.Effect))
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
