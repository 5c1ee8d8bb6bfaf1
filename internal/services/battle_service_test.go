package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/cache"
	"github.com/ahmetkoprulu/rtqb/models"
)

func TestNextWinStreak(t *testing.T) {
	stats := &models.BattleStats{WinStreak: 3}

	if got := NextWinStreak(stats, true); got != 4 {
		t.Fatalf("expected streak 4 after win, got %d", got)
	}
	if got := NextWinStreak(stats, false); got != 0 {
		t.Fatalf("expected streak reset on loss, got %d", got)
	}
}

func TestApplyBattleOutcomeWin(t *testing.T) {
	stats := &models.BattleStats{
		TotalBattles:  2,
		Wins:          1,
		Losses:        1,
		WinStreak:     1,
		HighestStreak: 1,
		AverageScore:  1000,
	}
	results := &models.BattleResults{IsVictory: true, Score: 1600}

	ApplyBattleOutcome(stats, results, 200, 90)

	if stats.TotalBattles != 3 || stats.Wins != 2 || stats.Losses != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.WinStreak != 2 || stats.HighestStreak != 2 {
		t.Fatalf("expected streak 2 / highest 2, got %d / %d", stats.WinStreak, stats.HighestStreak)
	}
	if stats.TotalXPEarned != 200 || stats.TotalCoinsEarned != 90 {
		t.Fatalf("unexpected earnings: %+v", stats)
	}

	// (1000*2 + 1600) / 3 = 1200
	if stats.AverageScore != 1200 {
		t.Fatalf("expected average score 1200, got %v", stats.AverageScore)
	}
}

func TestApplyBattleOutcomeLossResetsStreak(t *testing.T) {
	stats := &models.BattleStats{
		TotalBattles:  1,
		Wins:          1,
		WinStreak:     1,
		HighestStreak: 1,
		AverageScore:  2000,
	}
	results := &models.BattleResults{IsVictory: false, Score: 500}

	ApplyBattleOutcome(stats, results, 50, 25)

	if stats.WinStreak != 0 {
		t.Fatalf("expected streak reset, got %d", stats.WinStreak)
	}
	if stats.HighestStreak != 1 {
		t.Fatalf("highest streak must survive a loss, got %d", stats.HighestStreak)
	}
	if stats.Losses != 1 {
		t.Fatalf("expected 1 loss, got %d", stats.Losses)
	}
	if stats.AverageScore != 1250 {
		t.Fatalf("expected average score 1250, got %v", stats.AverageScore)
	}
}

func TestApplyBattleOutcomeFirstBattle(t *testing.T) {
	stats := &models.BattleStats{}
	results := &models.BattleResults{IsVictory: true, Score: 1800}

	ApplyBattleOutcome(stats, results, 180, 90)

	if stats.TotalBattles != 1 {
		t.Fatalf("expected 1 battle, got %d", stats.TotalBattles)
	}
	if stats.AverageScore != 1800 {
		t.Fatalf("expected average score 1800, got %v", stats.AverageScore)
	}
}

func newSessionOnlyBattleService() *BattleService {
	return &BattleService{sessions: cache.NewMemoryCache()}
}

func TestSessionSaveRecoverClear(t *testing.T) {
	ctx := context.Background()
	svc := newSessionOnlyBattleService()

	session := &models.BattleSession{
		ID:                   "session-1",
		PlayerID:             "player-1",
		Status:               models.BattleStatusActive,
		CurrentQuestionIndex: 3,
		TimeLeft:             12,
		Score:                models.BattleScore{Player: 450, Opponent: 1200},
	}

	if err := svc.SaveSession(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	recovered, err := svc.RecoverSession(ctx, "player-1")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered == nil {
		t.Fatal("expected a recovered session")
	}
	if recovered.CurrentQuestionIndex != 3 || recovered.TimeLeft != 12 || recovered.Score.Player != 450 {
		t.Fatalf("recovered session lost state: %+v", recovered)
	}

	if err := svc.ClearSession(ctx, "player-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	recovered, err = svc.RecoverSession(ctx, "player-1")
	if err != nil {
		t.Fatalf("recover after clear failed: %v", err)
	}
	if recovered != nil {
		t.Fatal("expected no session after clear")
	}
}

func TestRecoverSessionMissingPlayer(t *testing.T) {
	svc := newSessionOnlyBattleService()

	recovered, err := svc.RecoverSession(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != nil {
		t.Fatal("expected nil session for unknown player")
	}
}

func TestRecoverSessionDiscardsStaleSave(t *testing.T) {
	ctx := context.Background()
	svc := newSessionOnlyBattleService()

	session := &models.BattleSession{
		ID:       "session-stale",
		PlayerID: "player-1",
		Status:   models.BattleStatusActive,
		SavedAt:  time.Now().Add(-2 * time.Hour),
	}

	if err := svc.sessions.Set(battleSessionKeyPrefix+session.PlayerID, session, battleSessionTTL); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	recovered, err := svc.RecoverSession(ctx, "player-1")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != nil {
		t.Fatal("stale session must be discarded")
	}

	// The stale entry is also deleted, not just skipped.
	var probe models.BattleSession
	if err := svc.sessions.Get(battleSessionKeyPrefix+"player-1", &probe); err != cache.ErrKeyNotFound {
		t.Fatalf("expected stale entry deleted, got %v", err)
	}
}

func TestSaveSessionStampsSavedAt(t *testing.T) {
	ctx := context.Background()
	svc := newSessionOnlyBattleService()

	session := &models.BattleSession{ID: "s", PlayerID: "p"}
	before := time.Now()

	if err := svc.SaveSession(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if session.SavedAt.Before(before) {
		t.Fatalf("expected SavedAt stamped, got %v", session.SavedAt)
	}
}
