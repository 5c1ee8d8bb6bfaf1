package services

import (
	"context"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AchievementService evaluates unlock conditions against the player's
// current statistics. Unlocking is idempotent: an already-unlocked
// achievement is never re-granted.
type AchievementService struct {
	db            *data.PgDbContext
	playerService *PlayerService
}

func NewAchievementService(db *data.PgDbContext, playerService *PlayerService) *AchievementService {
	return &AchievementService{db: db, playerService: playerService}
}

// EvaluateConditions reports whether every condition holds against the
// named statistics. Unknown statistics fail the condition. Pure;
// shared by service and tests.
func EvaluateConditions(conditions []models.AchievementCondition, stats map[string]float64) bool {
	if len(conditions) == 0 {
		return false
	}

	for _, c := range conditions {
		value, ok := stats[c.Stat]
		if !ok {
			return false
		}

		var holds bool
		switch c.Operator {
		case models.OperatorEq:
			holds = value == c.Value
		case models.OperatorGt:
			holds = value > c.Value
		case models.OperatorLt:
			holds = value < c.Value
		case models.OperatorGte:
			holds = value >= c.Value
		case models.OperatorLte:
			holds = value <= c.Value
		default:
			return false
		}

		if !holds {
			return false
		}
	}

	return true
}

// Evaluate scans the player's locked achievements and unlocks every
// one whose conditions all hold. Returns the ids unlocked by this
// pass.
func (s *AchievementService) Evaluate(ctx context.Context, playerID string) ([]string, error) {
	stats, err := s.statSnapshot(ctx, playerID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT a.id, a.title, a.conditions, a.reward_xp, a.reward_coins
		FROM achievements a
		LEFT JOIN player_achievements pa
			ON pa.achievement_id = a.id AND pa.player_id = $1
		WHERE pa.unlocked IS NOT TRUE
	`

	rows, err := s.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Conditions, &a.RewardXP, &a.RewardCoins); err != nil {
			return nil, err
		}
		candidates = append(candidates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unlocked []string
	for _, a := range candidates {
		if !EvaluateConditions(a.Conditions, stats) {
			continue
		}

		ok, err := s.unlock(ctx, playerID, &a)
		if err != nil {
			utils.Logger.Warn("failed to unlock achievement",
				zap.String("achievement_id", a.ID),
				zap.Error(err),
			)
			continue
		}

		if ok {
			unlocked = append(unlocked, a.ID)
		}
	}

	return unlocked, nil
}

// unlock records the achievement exactly once. The conflict clause
// makes a re-evaluation with unchanged statistics a no-op.
func (s *AchievementService) unlock(ctx context.Context, playerID string, achievement *models.Achievement) (bool, error) {
	query := `
		INSERT INTO player_achievements (id, player_id, achievement_id, unlocked, unlocked_at)
		VALUES ($1, $2, $3, true, NOW())
		ON CONFLICT (player_id, achievement_id) DO UPDATE
		SET unlocked = true, unlocked_at = NOW()
		WHERE player_achievements.unlocked = false
	`

	tag, err := s.db.Exec(ctx, query, uuid.New().String(), playerID, achievement.ID)
	if err != nil {
		return false, err
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if achievement.RewardXP > 0 {
		if _, _, err := s.playerService.GrantXP(ctx, playerID, achievement.RewardXP, "achievement"); err != nil {
			utils.Logger.Warn("failed to grant achievement xp", zap.Error(err))
		}
	}
	if achievement.RewardCoins > 0 {
		if _, err := s.playerService.GrantCoins(ctx, playerID, achievement.RewardCoins, CoinSourceEarn); err != nil {
			utils.Logger.Warn("failed to grant achievement coins", zap.Error(err))
		}
	}

	s.playerService.logActivity(ctx, playerID, "achievement", 1, achievement.ID)
	return true, nil
}

func (s *AchievementService) GetPlayerAchievements(ctx context.Context, playerID string) ([]*models.PlayerAchievement, error) {
	query := `
		SELECT a.id, a.title, a.description, a.conditions, a.reward_xp, a.reward_coins, a.created_at,
			   COALESCE(pa.unlocked, false), pa.unlocked_at
		FROM achievements a
		LEFT JOIN player_achievements pa
			ON pa.achievement_id = a.id AND pa.player_id = $1
	`

	rows, err := s.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []*models.PlayerAchievement
	for rows.Next() {
		pa := &models.PlayerAchievement{PlayerID: playerID, Achievement: &models.Achievement{}}
		err := rows.Scan(
			&pa.Achievement.ID, &pa.Achievement.Title, &pa.Achievement.Description,
			&pa.Achievement.Conditions, &pa.Achievement.RewardXP, &pa.Achievement.RewardCoins,
			&pa.Achievement.CreatedAt,
			&pa.Unlocked, &pa.UnlockedAt,
		)
		if err != nil {
			return nil, err
		}
		pa.AchievementID = pa.Achievement.ID
		achievements = append(achievements, pa)
	}

	return achievements, rows.Err()
}

// statSnapshot flattens player economy and battle statistics into the
// namespace achievement conditions refer to.
func (s *AchievementService) statSnapshot(ctx context.Context, playerID string) (map[string]float64, error) {
	query := `
		SELECT p.xp, p.coins, p.level, p.streak,
			   COALESCE(bs.total_battles, 0), COALESCE(bs.wins, 0), COALESCE(bs.losses, 0),
			   COALESCE(bs.win_streak, 0), COALESCE(bs.highest_streak, 0),
			   COALESCE(bs.total_xp_earned, 0), COALESCE(bs.average_score, 0)
		FROM players p
		LEFT JOIN battle_stats bs ON bs.player_id = p.id
		WHERE p.id = $1
	`

	var xp, coins, level, streak, totalBattles, wins, losses, winStreak, highestStreak, totalXP int
	var averageScore float64
	err := s.db.QueryRow(ctx, query, playerID).Scan(
		&xp, &coins, &level, &streak,
		&totalBattles, &wins, &losses, &winStreak, &highestStreak,
		&totalXP, &averageScore,
	)
	if err != nil {
		return nil, err
	}

	return map[string]float64{
		"xp":             float64(xp),
		"coins":          float64(coins),
		"level":          float64(level),
		"streak":         float64(streak),
		"total_battles":  float64(totalBattles),
		"wins":           float64(wins),
		"losses":         float64(losses),
		"win_streak":     float64(winStreak),
		"highest_streak": float64(highestStreak),
		"total_xp":       float64(totalXP),
		"average_score":  averageScore,
	}, nil
}
