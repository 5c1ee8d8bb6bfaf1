package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

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

var (
	ErrPlayerNotFound    = errors.New("player_not_found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)

// CoinSourceEarn marks credits that are scaled by reward multipliers.
// Any other source is treated as a flat debit or flat credit.
const CoinSourceEarn = "earn"

// LevelUpNotification is emitted when a grant pushes the player over a
// level boundary.
type LevelUpNotification struct {
	PlayerID    string        `json:"player_id"`
	NewLevel    int           `json:"new_level"`
	XPReward    int           `json:"xp_reward"`
	CoinReward  int           `json:"coin_reward"`
	BonusItems  []models.Item `json:"bonus_items,omitempty"`
}

// PlayerService owns the persistent economy state of players. It is
// the single mutator of XP, coins, streak and reward multipliers.
type PlayerService struct {
	db        *data.PgDbContext
	publisher *mq.GameEventPublisher
}

func NewPlayerService(db *data.PgDbContext, publisher *mq.GameEventPublisher) *PlayerService {
	return &PlayerService{db: db, publisher: publisher}
}

func (s *PlayerService) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	if id == "" {
		return nil, fmt.Errorf("player id is required")
	}

	query := `
		SELECT id, user_id, username, xp, coins, level, streak, xp_multiplier, coin_multiplier
		FROM players
		WHERE id = $1
	`

	var player models.Player
	err := s.db.QueryRow(ctx, query, id).Scan(
		&player.ID, &player.UserID, &player.Username,
		&player.XP, &player.Coins, &player.Level, &player.Streak,
		&player.Multipliers.XP, &player.Multipliers.Coins,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &player, nil
}

// GrantXP credits amount scaled by the player's reward multipliers and
// streak multiplier, recomputes the level and grants level-up rewards
// for every boundary crossed. Returns the scaled amount and any
// level-up notifications.
func (s *PlayerService) GrantXP(ctx context.Context, playerID string, amount int, source string) (int, []LevelUpNotification, error) {
	if amount <= 0 {
		return 0, nil, nil
	}

	player, err := s.GetPlayerByID(ctx, playerID)
	if err != nil {
		return 0, nil, err
	}
	if player == nil {
		return 0, nil, ErrPlayerNotFound
	}

	cfg := config.GetGameConfig()
	scaled := int(math.Round(float64(amount) * player.Multipliers.XP * rewards.StreakMultiplier(player.Streak)))

	newXP := player.XP + scaled
	newCoins := player.Coins
	var notifications []LevelUpNotification

	// Level-up bundles add raw XP, which can cross further
	// boundaries. Loop until the level settles or hits the cap.
	level := player.Level
	for {
		newLevel := rewards.LevelFromXP(cfg.Levels, newXP)
		if newLevel <= level {
			break
		}

		for l := level + 1; l <= newLevel; l++ {
			xpReward, coinReward, items := rewards.LevelUpRewards(cfg.Rewards, l)
			newXP += xpReward
			newCoins += coinReward
			notifications = append(notifications, LevelUpNotification{
				PlayerID:   playerID,
				NewLevel:   l,
				XPReward:   xpReward,
				CoinReward: coinReward,
				BonusItems: items,
			})

			if err := s.giveBonusItems(ctx, playerID, items); err != nil {
				utils.Logger.Warn("failed to grant level-up items", zap.Error(err))
			}
		}

		level = newLevel
		if level >= cfg.Levels.MaxLevel {
			break
		}
	}

	query := `
		UPDATE players
		SET xp = $1, coins = $2, level = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := s.db.Exec(ctx, query, newXP, newCoins, level, playerID); err != nil {
		// Optimistic local-first update: the grant stands, the
		// divergence reconciles on next full reload.
		utils.Logger.Error("failed to persist xp grant",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
	}

	s.logActivity(ctx, playerID, "xp_gain", scaled, source)
	s.publishGrant(playerID, "xp", scaled, source)

	for _, n := range notifications {
		s.logActivity(ctx, playerID, "level_up", n.NewLevel, source)
	}

	return scaled, notifications, nil
}

// GrantCoins credits or debits coins. Earn-sourced credits are scaled
// by the coin multiplier and streak multiplier; debits are flat and
// rejected without mutation when the balance cannot cover them.
func (s *PlayerService) GrantCoins(ctx context.Context, playerID string, amount int, source string) (int, error) {
	if amount == 0 {
		return 0, nil
	}

	if amount < 0 {
		return amount, s.debitCoins(ctx, playerID, -amount)
	}

	scaled := amount
	if source == CoinSourceEarn {
		player, err := s.GetPlayerByID(ctx, playerID)
		if err != nil {
			return 0, err
		}
		if player == nil {
			return 0, ErrPlayerNotFound
		}

		scaled = int(math.Round(float64(amount) * player.Multipliers.Coins * rewards.StreakMultiplier(player.Streak)))
	}

	query := `UPDATE players SET coins = coins + $1, updated_at = NOW() WHERE id = $2`
	if _, err := s.db.Exec(ctx, query, scaled, playerID); err != nil {
		utils.Logger.Error("failed to persist coin grant",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
	}

	s.logActivity(ctx, playerID, "coin_gain", scaled, source)
	s.publishGrant(playerID, "coins", scaled, source)

	return scaled, nil
}

func (s *PlayerService) debitCoins(ctx context.Context, playerID string, amount int) error {
	return s.db.WithTransaction(ctx, func(tx data.QueryRunner) error {
		return s.DebitCoinsTx(ctx, tx, playerID, amount)
	})
}

// ApplyDebit checks a flat debit against a balance and returns the
// remaining balance. A debit the balance cannot cover returns
// ErrInsufficientFunds and leaves the balance as it was.
func ApplyDebit(balance, amount int) (int, error) {
	if balance < amount {
		return balance, ErrInsufficientFunds
	}

	return balance - amount, nil
}

// DebitCoinsTx debits coins on the caller's transaction, so the debit
// commits or rolls back together with whatever the caller buys with it.
// The row is locked for the duration of the transaction.
func (s *PlayerService) DebitCoinsTx(ctx context.Context, tx data.QueryRunner, playerID string, amount int) error {
	var coins int
	err := tx.QueryRow(ctx, `SELECT coins FROM players WHERE id = $1 FOR UPDATE`, playerID).Scan(&coins)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrPlayerNotFound
		}
		return err
	}

	remaining, err := ApplyDebit(coins, amount)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE players SET coins = $1, updated_at = NOW() WHERE id = $2`, remaining, playerID)
	return err
}

// UpdateMultipliers persists the ledger's view of the player's reward
// multipliers after effect activation or expiry.
func (s *PlayerService) UpdateMultipliers(ctx context.Context, playerID string, m models.RewardMultipliers) error {
	query := `UPDATE players SET xp_multiplier = $1, coin_multiplier = $2, updated_at = NOW() WHERE id = $3`
	_, err := s.db.Exec(ctx, query, m.XP, m.Coins, playerID)
	return err
}

func (s *PlayerService) UpdateStreak(ctx context.Context, playerID string, streak int) error {
	query := `UPDATE players SET streak = $1, updated_at = NOW() WHERE id = $2`
	_, err := s.db.Exec(ctx, query, streak, playerID)
	return err
}

func (s *PlayerService) GetActivities(ctx context.Context, playerID string, limit int) ([]models.PlayerActivity, error) {
	query := `
		SELECT id, player_id, type, amount, source, created_at
		FROM player_activities
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.PlayerActivity
	for rows.Next() {
		var a models.PlayerActivity
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.Type, &a.Amount, &a.Source, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func (s *PlayerService) giveBonusItems(ctx context.Context, playerID string, items []models.Item) error {
	for _, item := range items {
		query := `
			INSERT INTO player_inventory (id, player_id, product_id, name, item, equipped, acquired_at)
			VALUES ($1, $2, '', $3, $4, false, NOW())
		`

		name := fmt.Sprintf("%s level bonus", item.Rarity)
		if _, err := s.db.Exec(ctx, query, uuid.New().String(), playerID, name, item); err != nil {
			return err
		}
	}

	return nil
}

// logActivity appends an activity row. Failures are logged only; the
// activity feed is not allowed to interrupt gameplay.
func (s *PlayerService) logActivity(ctx context.Context, playerID, activityType string, amount int, source string) {
	query := `
		INSERT INTO player_activities (id, player_id, type, amount, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query, uuid.New().String(), playerID, activityType, amount, source, time.Now())
	if err != nil {
		utils.Logger.Warn("failed to log player activity",
			zap.String("player_id", playerID),
			zap.String("type", activityType),
			zap.Error(err),
		)
	}
}

func (s *PlayerService) publishGrant(playerID, kind string, amount int, source string) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishRewardGrant(&mq.RewardGrantMessage{
		PlayerID: playerID,
		Kind:     kind,
		Amount:   amount,
		Source:   source,
	})
	if err != nil {
		utils.Logger.Warn("failed to publish reward grant", zap.Error(err))
	}
}
