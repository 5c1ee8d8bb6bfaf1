package effects

import (
	"math"
	"testing"
	"time"

	"github.com/ahmetkoprulu/rtqb/models"
)

func TestActivateAppliesMultiplier(t *testing.T) {
	ledger := NewLedger("p1")

	ledger.Activate(&models.Effect{Type: models.EffectXPBoost, Value: 1.5})

	m := ledger.Multipliers()
	if m.XP != 1.5 {
		t.Errorf("xp multiplier = %v, want 1.5", m.XP)
	}
	if m.Coins != 1 {
		t.Errorf("coin multiplier = %v, want 1", m.Coins)
	}
}

func TestRemoveReversesExactContribution(t *testing.T) {
	ledger := NewLedger("p1")

	// Unrelated concurrent effects must survive the removal.
	ledger.Activate(&models.Effect{Type: models.EffectXPBoost, Value: 2.0})
	boosted := ledger.Activate(&models.Effect{Type: models.EffectXPBoost, Value: 1.7})
	ledger.Activate(&models.Effect{Type: models.EffectCoinBoost, Value: 1.5})

	if err := ledger.Remove(boosted.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	m := ledger.Multipliers()
	if math.Abs(m.XP-2.0) > 1e-9 {
		t.Errorf("xp multiplier = %v, want 2.0", m.XP)
	}
	if math.Abs(m.Coins-1.5) > 1e-9 {
		t.Errorf("coin multiplier = %v, want 1.5", m.Coins)
	}
}

func TestActivateExpireRoundTrip(t *testing.T) {
	ledger := NewLedger("p1")
	start := time.Now()

	before := ledger.Multipliers()

	ledger.Activate(&models.Effect{Type: models.EffectXPBoost, Value: 1.5, StartTime: start, Duration: 300 * time.Second})
	ledger.Activate(&models.Effect{Type: models.EffectCoinBoost, Value: 1.3, StartTime: start, Duration: 60 * time.Second})

	expired := ledger.Sweep(start.Add(61 * time.Second))
	if len(expired) != 1 || expired[0].Type != models.EffectCoinBoost {
		t.Fatalf("expected coin boost to expire, got %v", expired)
	}

	expired = ledger.Sweep(start.Add(301 * time.Second))
	if len(expired) != 1 || expired[0].Type != models.EffectXPBoost {
		t.Fatalf("expected xp boost to expire, got %v", expired)
	}

	after := ledger.Multipliers()
	if math.Abs(after.XP-before.XP) > 1e-9 || math.Abs(after.Coins-before.Coins) > 1e-9 {
		t.Errorf("multipliers diverged after full expiry: before=%v after=%v", before, after)
	}
}

func TestSweepOrdersByExpiry(t *testing.T) {
	ledger := NewLedger("p1")
	start := time.Now()

	ledger.Activate(&models.Effect{Type: models.EffectScoreBoost, StartTime: start, Duration: 30 * time.Second})
	ledger.Activate(&models.Effect{Type: models.EffectTimeBoost, StartTime: start, Duration: 10 * time.Second})

	next, ok := ledger.NextExpiry()
	if !ok {
		t.Fatal("expected a pending expiry")
	}
	if want := start.Add(10 * time.Second); !next.Equal(want) {
		t.Errorf("next expiry = %v, want %v", next, want)
	}
}

func TestScoreAndTimeBoostDoNotTouchMultipliers(t *testing.T) {
	ledger := NewLedger("p1")

	ledger.Activate(&models.Effect{Type: models.EffectScoreBoost, Value: 1.5})
	ledger.Activate(&models.Effect{Type: models.EffectTimeBoost, Value: 1.2})

	m := ledger.Multipliers()
	if m.XP != 1 || m.Coins != 1 {
		t.Errorf("multipliers = %v, want {1 1}", m)
	}

	if got := ledger.ScoreBoost(); got != 1.5 {
		t.Errorf("ScoreBoost() = %v, want 1.5", got)
	}
	if got := ledger.TimeBoost(); got != 1.2 {
		t.Errorf("TimeBoost() = %v, want 1.2", got)
	}
}

func TestActivateDefaults(t *testing.T) {
	ledger := NewLedger("p1")

	effect := ledger.Activate(&models.Effect{Type: models.EffectXPBoost})
	if effect.Value != models.DefaultEffectValue {
		t.Errorf("value = %v, want %v", effect.Value, models.DefaultEffectValue)
	}
	if effect.Duration != models.DefaultEffectDuration {
		t.Errorf("duration = %v, want %v", effect.Duration, models.DefaultEffectDuration)
	}
	if effect.ID == "" {
		t.Error("expected generated id")
	}
}

func TestRemoveUnknownEffect(t *testing.T) {
	ledger := NewLedger("p1")

	if err := ledger.Remove("missing"); err != ErrEffectNotFound {
		t.Errorf("err = %v, want ErrEffectNotFound", err)
	}
}
