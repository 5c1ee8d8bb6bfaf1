package rewards

import (
	"math"

	"github.com/ahmetkoprulu/rtqb/models"
)

// scoreTimeWindow is the answer-time window the per-question score
// bonus decays over, in seconds. Answers at or beyond the window earn
// the base score with no bonus.
const (
	baseQuestionScore = 100
	scoreTimeWindow   = 30.0

	maxStreakMultiplier  = 2.0
	streakMultiplierStep = 0.15
)

// XPForLevel returns the XP needed to advance from level to level+1.
// Levels beyond the cap are unreachable.
func XPForLevel(cfg models.LevelConfig, level int) int {
	if level > cfg.MaxLevel {
		return math.MaxInt
	}

	return int(math.Floor(float64(cfg.BaseXP) * math.Pow(cfg.GrowthFactor, float64(level-1))))
}

// TotalXPForLevel returns the cumulative XP required to reach level.
func TotalXPForLevel(cfg models.LevelConfig, level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += XPForLevel(cfg, i)
	}

	return total
}

// LevelFromXP returns the largest level whose cumulative requirement is
// covered by xp, capped at MaxLevel.
func LevelFromXP(cfg models.LevelConfig, xp int) int {
	level := 1
	remaining := xp
	for level < cfg.MaxLevel {
		required := XPForLevel(cfg, level)
		if remaining < required {
			break
		}

		remaining -= required
		level++
	}

	return level
}

// ProgressToNextLevel returns the floored percentage of XP earned
// within the current level band, 100 at the level cap.
func ProgressToNextLevel(cfg models.LevelConfig, xp int) int {
	level := LevelFromXP(cfg, xp)
	if level >= cfg.MaxLevel {
		return 100
	}

	earned := xp - TotalXPForLevel(cfg, level)
	required := XPForLevel(cfg, level)

	return int(math.Floor(float64(earned) * 100 / float64(required)))
}

// QuestionScore computes the per-question score with its time bonus:
// round(100 * (1 + max(0, 1 - timeSpent/30))).
func QuestionScore(timeSpentSeconds float64) int {
	bonus := 1 - timeSpentSeconds/scoreTimeWindow
	if bonus < 0 {
		bonus = 0
	}

	return int(math.Round(baseQuestionScore * (1 + bonus)))
}

// StreakMultiplier derives the reward scalar from consecutive-day
// activity, capped at 2x.
func StreakMultiplier(streak int) float64 {
	m := 1 + streakMultiplierStep*float64(streak)
	if m > maxStreakMultiplier {
		m = maxStreakMultiplier
	}

	return m
}

// LevelUpRewards returns the deterministic bundle granted on reaching
// level. Every 5th level adds a rare bonus item, every 10th a
// legendary one.
func LevelUpRewards(cfg models.RewardsConfig, level int) (int, int, []models.Item) {
	xp := level * cfg.LevelUpXPMultiplier
	coins := level * cfg.LevelUpCoinMultiplier

	var items []models.Item
	switch {
	case level%10 == 0:
		items = append(items, models.Item{Type: models.ItemTypeXPBoost, Amount: 1, Rarity: models.RarityLegendary})
	case level%5 == 0:
		items = append(items, models.Item{Type: models.ItemTypeCoinBoost, Amount: 1, Rarity: models.RarityRare})
	}

	return xp, coins, items
}

// BattleRewards assembles the terminal bundle for a finished battle.
// winStreak is the streak after this battle's outcome is applied.
func BattleRewards(cfg models.RewardsConfig, results *models.BattleResults, winStreak int) *models.BattleRewards {
	xp := results.Score / 10
	coins := results.Score / 20

	if results.IsVictory {
		xp += cfg.VictoryXP
		coins += cfg.VictoryCoins
	}

	var streakBonus int
	if results.IsVictory && winStreak > 1 {
		streakBonus = int(float64(xp) * cfg.StreakBonusMultiplier * float64(winStreak-1))
	}

	var timeBonus int
	if results.CorrectAnswers > 0 && results.AverageTime <= cfg.TimeBonusThreshold {
		timeBonus = int(float64(xp) * cfg.TimeBonusMultiplier)
	}

	return &models.BattleRewards{
		XP:          xp,
		Coins:       coins,
		StreakBonus: streakBonus,
		TimeBonus:   timeBonus,
	}
}
