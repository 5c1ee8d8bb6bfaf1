package rewards

import (
	"testing"

	"github.com/ahmetkoprulu/rtqb/models"
)

func testLevelConfig() models.LevelConfig {
	return models.LevelConfig{BaseXP: 100, GrowthFactor: 1.2, MaxLevel: 50}
}

func TestQuestionScore(t *testing.T) {
	tests := []struct {
		name      string
		timeSpent float64
		want      int
	}{
		{"instant answer", 0, 200},
		{"half window", 15, 150},
		{"full window", 30, 100},
		{"beyond window", 45, 100},
		{"fast answer", 6, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuestionScore(tt.timeSpent); got != tt.want {
				t.Errorf("QuestionScore(%v) = %d, want %d", tt.timeSpent, got, tt.want)
			}
		})
	}
}

func TestLevelFromXPMonotonic(t *testing.T) {
	cfg := testLevelConfig()

	prev := 0
	for xp := 0; xp < 2_000_000; xp += 1357 {
		level := LevelFromXP(cfg, xp)
		if level < prev {
			t.Fatalf("level decreased: xp=%d level=%d prev=%d", xp, level, prev)
		}
		if level > cfg.MaxLevel {
			t.Fatalf("level %d exceeds cap %d", level, cfg.MaxLevel)
		}
		prev = level
	}
}

func TestLevelFromXPBoundaries(t *testing.T) {
	cfg := testLevelConfig()

	if got := LevelFromXP(cfg, 0); got != 1 {
		t.Errorf("LevelFromXP(0) = %d, want 1", got)
	}

	// Exactly the requirement for level 2.
	if got := LevelFromXP(cfg, XPForLevel(cfg, 1)); got != 2 {
		t.Errorf("LevelFromXP(base) = %d, want 2", got)
	}

	if got := LevelFromXP(cfg, XPForLevel(cfg, 1)-1); got != 1 {
		t.Errorf("LevelFromXP(base-1) = %d, want 1", got)
	}
}

func TestTotalXPForLevel(t *testing.T) {
	cfg := testLevelConfig()

	if got := TotalXPForLevel(cfg, 1); got != 0 {
		t.Errorf("TotalXPForLevel(1) = %d, want 0", got)
	}

	want := XPForLevel(cfg, 1) + XPForLevel(cfg, 2)
	if got := TotalXPForLevel(cfg, 3); got != want {
		t.Errorf("TotalXPForLevel(3) = %d, want %d", got, want)
	}
}

func TestProgressToNextLevel(t *testing.T) {
	cfg := testLevelConfig()

	if got := ProgressToNextLevel(cfg, 0); got != 0 {
		t.Errorf("ProgressToNextLevel(0) = %d, want 0", got)
	}

	if got := ProgressToNextLevel(cfg, 50); got != 50 {
		t.Errorf("ProgressToNextLevel(50) = %d, want 50", got)
	}

	atCap := TotalXPForLevel(cfg, cfg.MaxLevel)
	if got := ProgressToNextLevel(cfg, atCap); got != 100 {
		t.Errorf("ProgressToNextLevel(cap) = %d, want 100", got)
	}
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{1, 1.15},
		{2, 1.3},
		{10, 2.0},
		{100, 2.0},
	}

	for _, tt := range tests {
		if got := StreakMultiplier(tt.streak); got != tt.want {
			t.Errorf("StreakMultiplier(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}

func TestLevelUpRewards(t *testing.T) {
	cfg := models.DefaultGameConfig().Rewards

	xp, coins, items := LevelUpRewards(cfg, 3)
	if xp != 3*cfg.LevelUpXPMultiplier || coins != 3*cfg.LevelUpCoinMultiplier {
		t.Errorf("level 3 rewards = (%d, %d)", xp, coins)
	}
	if len(items) != 0 {
		t.Errorf("level 3 should grant no bonus item, got %v", items)
	}

	_, _, items = LevelUpRewards(cfg, 5)
	if len(items) != 1 || items[0].Rarity != models.RarityRare {
		t.Errorf("level 5 should grant a rare item, got %v", items)
	}

	_, _, items = LevelUpRewards(cfg, 10)
	if len(items) != 1 || items[0].Rarity != models.RarityLegendary {
		t.Errorf("level 10 should grant a legendary item, got %v", items)
	}
}

func TestBattleRewards(t *testing.T) {
	cfg := models.DefaultGameConfig().Rewards

	results := &models.BattleResults{
		IsVictory:      true,
		Score:          2000,
		CorrectAnswers: 10,
		TotalQuestions: 10,
		AverageTime:    5,
	}

	bundle := BattleRewards(cfg, results, 1)
	if bundle.XP != 2000/10+cfg.VictoryXP {
		t.Errorf("XP = %d", bundle.XP)
	}
	if bundle.Coins != 2000/20+cfg.VictoryCoins {
		t.Errorf("Coins = %d", bundle.Coins)
	}
	if bundle.StreakBonus != 0 {
		t.Errorf("first win should carry no streak bonus, got %d", bundle.StreakBonus)
	}
	if bundle.TimeBonus == 0 {
		t.Error("fast answers should earn a time bonus")
	}

	bundle = BattleRewards(cfg, results, 3)
	if bundle.StreakBonus == 0 {
		t.Error("ongoing streak should earn a streak bonus")
	}

	slow := &models.BattleResults{Score: 500, CorrectAnswers: 5, TotalQuestions: 10, AverageTime: 29}
	bundle = BattleRewards(cfg, slow, 0)
	if bundle.TimeBonus != 0 {
		t.Errorf("slow answers should earn no time bonus, got %d", bundle.TimeBonus)
	}
	if bundle.XP != 50 || bundle.Coins != 25 {
		t.Errorf("defeat rewards = (%d, %d), want (50, 25)", bundle.XP, bundle.Coins)
	}
}
