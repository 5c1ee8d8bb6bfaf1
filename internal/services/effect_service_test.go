package services

import (
	"math"
	"testing"
	"time"

	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/models"
)

func TestRebuildLedgerReplaysSurvivingEffects(t *testing.T) {
	now := time.Now()
	ledger := effects.NewLedger("p1")

	persisted := []*models.Effect{
		{ID: "live", PlayerID: "p1", Type: models.EffectXPBoost, Value: 1.5, StartTime: now.Add(-time.Minute), Duration: 300 * time.Second},
		{ID: "gone", PlayerID: "p1", Type: models.EffectCoinBoost, Value: 1.3, StartTime: now.Add(-2 * time.Hour), Duration: 60 * time.Second},
	}

	expired := RebuildLedger(ledger, persisted, now)
	if len(expired) != 1 || expired[0] != "gone" {
		t.Fatalf("expired = %v, want [gone]", expired)
	}

	m := ledger.Multipliers()
	if math.Abs(m.XP-1.5) > 1e-9 {
		t.Errorf("xp multiplier = %v, want 1.5", m.XP)
	}
	if math.Abs(m.Coins-1) > 1e-9 {
		t.Errorf("coin multiplier = %v, want 1 (expired boost must not apply)", m.Coins)
	}

	if active := ledger.Active(); len(active) != 1 || active[0].ID != "live" {
		t.Errorf("active effects = %v, want the surviving boost only", active)
	}
}

func TestRebuildLedgerKeepsOriginalExpiry(t *testing.T) {
	now := time.Now()
	ledger := effects.NewLedger("p1")

	start := now.Add(-time.Minute)
	RebuildLedger(ledger, []*models.Effect{
		{ID: "live", PlayerID: "p1", Type: models.EffectXPBoost, Value: 1.5, StartTime: start, Duration: 300 * time.Second},
	}, now)

	next, ok := ledger.NextExpiry()
	if !ok {
		t.Fatal("expected a pending expiry")
	}
	if want := start.Add(300 * time.Second); !next.Equal(want) {
		t.Errorf("next expiry = %v, want %v", next, want)
	}
}

func TestRebuildLedgerAllExpiredResetsMultipliers(t *testing.T) {
	now := time.Now()
	ledger := effects.NewLedger("p1")

	expired := RebuildLedger(ledger, []*models.Effect{
		{ID: "a", PlayerID: "p1", Type: models.EffectXPBoost, Value: 1.5, StartTime: now.Add(-time.Hour), Duration: 60 * time.Second},
		{ID: "b", PlayerID: "p1", Type: models.EffectCoinBoost, Value: 2.0, StartTime: now.Add(-time.Hour), Duration: 60 * time.Second},
	}, now)

	if len(expired) != 2 {
		t.Fatalf("expired = %v, want both ids", expired)
	}

	m := ledger.Multipliers()
	if m.XP != 1 || m.Coins != 1 {
		t.Errorf("multipliers = %v, want {1 1}", m)
	}
}
