package services

import (
	"context"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/cache"
	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/mq"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/config"
	"github.com/ahmetkoprulu/rtqb/internal/rewards"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	battleSessionKeyPrefix = "battle:session:"
	battleSessionTTL       = time.Hour
)

// BattleService is the persistence side of battles: in-flight session
// snapshots in the cache, final statistics and history in Postgres,
// and settlement of completed battles into the player economy.
// Implements battle.SessionStore and battle.ResultSink.
type BattleService struct {
	db                 *data.PgDbContext
	sessions           cache.Cache
	publisher          *mq.GameEventPublisher
	playerService      *PlayerService
	questService       *QuestService
	achievementService *AchievementService
}

func NewBattleService(db *data.PgDbContext, sessions cache.Cache, publisher *mq.GameEventPublisher, playerService *PlayerService, questService *QuestService, achievementService *AchievementService) *BattleService {
	return &BattleService{
		db:                 db,
		sessions:           sessions,
		publisher:          publisher,
		playerService:      playerService,
		questService:       questService,
		achievementService: achievementService,
	}
}

// SaveSession upserts the in-flight snapshot, keyed by player id
// (last write wins).
func (s *BattleService) SaveSession(ctx context.Context, session *models.BattleSession) error {
	if session.SavedAt.IsZero() {
		session.SavedAt = time.Now()
	}

	return s.sessions.Set(battleSessionKeyPrefix+session.PlayerID, session, battleSessionTTL)
}

// RecoverSession returns the saved snapshot, or nil when none exists.
// Saves older than an hour are stale: deleted and not returned.
func (s *BattleService) RecoverSession(ctx context.Context, playerID string) (*models.BattleSession, error) {
	var session models.BattleSession
	err := s.sessions.Get(battleSessionKeyPrefix+playerID, &session)
	if err != nil {
		if err == cache.ErrKeyNotFound || err == cache.ErrKeyExpired {
			return nil, nil
		}
		return nil, err
	}

	if time.Since(session.SavedAt) > battleSessionTTL {
		s.sessions.Delete(battleSessionKeyPrefix + playerID)
		return nil, nil
	}

	return &session, nil
}

func (s *BattleService) ClearSession(ctx context.Context, playerID string) error {
	return s.sessions.Delete(battleSessionKeyPrefix + playerID)
}

// CompleteBattle settles a finished battle: updates the win streak,
// computes the reward bundle, credits the player, records statistics
// and history, progresses quests and evaluates achievements. Stats and
// history failures are non-fatal.
func (s *BattleService) CompleteBattle(ctx context.Context, session *models.BattleSession, results *models.BattleResults) (*models.BattleRewards, error) {
	cfg := config.GetGameConfig()

	stats, err := s.GetStats(ctx, results.PlayerID)
	if err != nil {
		utils.Logger.Warn("failed to load battle stats", zap.Error(err))
		stats = &models.BattleStats{PlayerID: results.PlayerID}
	}

	newStreak := NextWinStreak(stats, results.IsVictory)
	bundle := rewards.BattleRewards(cfg.Rewards, results, newStreak)

	xpGranted, _, err := s.playerService.GrantXP(ctx, results.PlayerID, bundle.XP+bundle.StreakBonus+bundle.TimeBonus, "battle")
	if err != nil {
		return bundle, err
	}

	coinsGranted, err := s.playerService.GrantCoins(ctx, results.PlayerID, bundle.Coins, CoinSourceEarn)
	if err != nil {
		return bundle, err
	}

	ApplyBattleOutcome(stats, results, xpGranted, coinsGranted)

	if err := s.RecordBattleOutcome(ctx, stats, results, xpGranted, coinsGranted); err != nil {
		utils.Logger.Warn("failed to record battle outcome",
			zap.String("player_id", results.PlayerID),
			zap.Error(err),
		)
	}

	s.progressQuests(ctx, results, xpGranted)

	unlocked, err := s.achievementService.Evaluate(ctx, results.PlayerID)
	if err != nil {
		utils.Logger.Warn("failed to evaluate achievements", zap.Error(err))
	}
	bundle.AchievementIDs = unlocked

	s.publishOutcome(session, results, xpGranted, coinsGranted)

	return bundle, nil
}

// NextWinStreak returns the streak after applying the outcome: a win
// extends it, a loss resets it.
func NextWinStreak(stats *models.BattleStats, isVictory bool) int {
	if isVictory {
		return stats.WinStreak + 1
	}

	return 0
}

// ApplyBattleOutcome folds one battle into the aggregate stats. The
// average score is a running weighted average over all battles.
func ApplyBattleOutcome(stats *models.BattleStats, results *models.BattleResults, xpEarned, coinsEarned int) {
	stats.AverageScore = (stats.AverageScore*float64(stats.TotalBattles) + float64(results.Score)) / float64(stats.TotalBattles+1)
	stats.TotalBattles++

	if results.IsVictory {
		stats.Wins++
		stats.WinStreak++
		if stats.WinStreak > stats.HighestStreak {
			stats.HighestStreak = stats.WinStreak
		}
	} else {
		stats.Losses++
		stats.WinStreak = 0
	}

	stats.TotalXPEarned += xpEarned
	stats.TotalCoinsEarned += coinsEarned
}

func (s *BattleService) GetStats(ctx context.Context, playerID string) (*models.BattleStats, error) {
	query := `
		SELECT player_id, total_battles, wins, losses, win_streak, highest_streak,
			   total_xp_earned, total_coins_earned, average_score
		FROM battle_stats
		WHERE player_id = $1
	`

	stats := &models.BattleStats{}
	err := s.db.QueryRow(ctx, query, playerID).Scan(
		&stats.PlayerID, &stats.TotalBattles, &stats.Wins, &stats.Losses,
		&stats.WinStreak, &stats.HighestStreak,
		&stats.TotalXPEarned, &stats.TotalCoinsEarned, &stats.AverageScore,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &models.BattleStats{PlayerID: playerID}, nil
		}
		return nil, err
	}

	return stats, nil
}

// RecordBattleOutcome upserts the aggregate stats and appends the
// history entry, pruning history beyond the cap.
func (s *BattleService) RecordBattleOutcome(ctx context.Context, stats *models.BattleStats, results *models.BattleResults, xpEarned, coinsEarned int) error {
	return s.db.WithTransaction(ctx, func(tx data.QueryRunner) error {
		query := `
			INSERT INTO battle_stats (
				player_id, total_battles, wins, losses, win_streak, highest_streak,
				total_xp_earned, total_coins_earned, average_score, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (player_id) DO UPDATE SET
				total_battles = EXCLUDED.total_battles,
				wins = EXCLUDED.wins,
				losses = EXCLUDED.losses,
				win_streak = EXCLUDED.win_streak,
				highest_streak = EXCLUDED.highest_streak,
				total_xp_earned = EXCLUDED.total_xp_earned,
				total_coins_earned = EXCLUDED.total_coins_earned,
				average_score = EXCLUDED.average_score,
				updated_at = NOW()
		`

		_, err := tx.Exec(ctx, query,
			stats.PlayerID, stats.TotalBattles, stats.Wins, stats.Losses,
			stats.WinStreak, stats.HighestStreak,
			stats.TotalXPEarned, stats.TotalCoinsEarned, stats.AverageScore,
		)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO battle_history (id, player_id, is_victory, score, opponent_score, xp_earned, coins_earned, played_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err = tx.Exec(ctx, query,
			uuid.New().String(), results.PlayerID, results.IsVictory,
			results.Score, results.OpponentScore, xpEarned, coinsEarned, results.CompletedAt,
		)
		if err != nil {
			return err
		}

		query = `
			DELETE FROM battle_history
			WHERE player_id = $1
			AND id NOT IN (
				SELECT id FROM battle_history
				WHERE player_id = $1
				ORDER BY played_at DESC
				LIMIT $2
			)
		`

		_, err = tx.Exec(ctx, query, results.PlayerID, models.BattleHistoryCap)
		return err
	})
}

func (s *BattleService) GetHistory(ctx context.Context, playerID string) ([]models.BattleHistoryEntry, error) {
	query := `
		SELECT id, player_id, is_victory, score, opponent_score, xp_earned, coins_earned, played_at
		FROM battle_history
		WHERE player_id = $1
		ORDER BY played_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, playerID, models.BattleHistoryCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.BattleHistoryEntry
	for rows.Next() {
		var entry models.BattleHistoryEntry
		err := rows.Scan(
			&entry.ID, &entry.PlayerID, &entry.IsVictory,
			&entry.Score, &entry.OpponentScore,
			&entry.XPEarned, &entry.CoinsEarned, &entry.PlayedAt,
		)
		if err != nil {
			return nil, err
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

func (s *BattleService) progressQuests(ctx context.Context, results *models.BattleResults, xpEarned int) {
	if s.questService == nil {
		return
	}

	updates := map[models.QuestRequirementType]int{
		models.QuestRequirementBattlesPlayed: 1,
		models.QuestRequirementXPEarned:      xpEarned,
	}
	if results.IsVictory {
		updates[models.QuestRequirementBattlesWon] = 1
	}

	for reqType, delta := range updates {
		if err := s.questService.ProgressRequirement(ctx, results.PlayerID, reqType, delta); err != nil {
			utils.Logger.Warn("failed to progress quests",
				zap.String("requirement", string(reqType)),
				zap.Error(err),
			)
		}
	}
}

func (s *BattleService) publishOutcome(session *models.BattleSession, results *models.BattleResults, xpEarned, coinsEarned int) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishBattleOutcome(&mq.BattleOutcomeMessage{
		PlayerID:      results.PlayerID,
		SessionID:     results.SessionID,
		IsVictory:     results.IsVictory,
		Score:         results.Score,
		OpponentScore: results.OpponentScore,
		XPEarned:      xpEarned,
		CoinsEarned:   coinsEarned,
	})
	if err != nil {
		utils.Logger.Warn("failed to publish battle outcome", zap.Error(err))
	}
}
