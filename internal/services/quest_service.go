package services

import (
	"context"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestService tracks per-player quest requirement progress and
// completes quests exactly once when every requirement is met.
type QuestService struct {
	db            *data.PgDbContext
	playerService *PlayerService
}

func NewQuestService(db *data.PgDbContext, playerService *PlayerService) *QuestService {
	return &QuestService{db: db, playerService: playerService}
}

// ProgressRequirements applies delta to every requirement of the given
// type, clamped to the target, and returns the recomputed overall
// progress. Pure; shared by service and tests.
func ProgressRequirements(requirements []models.QuestRequirement, reqType models.QuestRequirementType, delta int) ([]models.QuestRequirement, int) {
	updated := make([]models.QuestRequirement, len(requirements))
	copy(updated, requirements)

	for i := range updated {
		if updated[i].Type != reqType {
			continue
		}

		updated[i].Current += delta
		if updated[i].Current > updated[i].Target {
			updated[i].Current = updated[i].Target
		}
		if updated[i].Current < 0 {
			updated[i].Current = 0
		}
	}

	return updated, OverallProgress(updated)
}

// OverallProgress is floor(100 * sum(current) / sum(target)), never
// exceeding 100.
func OverallProgress(requirements []models.QuestRequirement) int {
	sumCurrent, sumTarget := 0, 0
	for _, r := range requirements {
		sumCurrent += r.Current
		sumTarget += r.Target
	}

	if sumTarget == 0 {
		return 0
	}

	progress := sumCurrent * 100 / sumTarget
	if progress > 100 {
		progress = 100
	}

	return progress
}

// QuestComplete reports whether every requirement reached its target.
func QuestComplete(requirements []models.QuestRequirement) bool {
	for _, r := range requirements {
		if r.Current < r.Target {
			return false
		}
	}

	return len(requirements) > 0
}

func (s *QuestService) GetPlayerQuests(ctx context.Context, playerID string) ([]*models.PlayerQuest, error) {
	query := `
		SELECT pq.id, pq.player_id, pq.quest_id, pq.status, pq.requirements, pq.progress,
			   pq.completed_at, pq.created_at, pq.updated_at,
			   q.id, q.title, q.description, q.category, q.reward_xp, q.reward_coins,
			   q.start_time, q.end_time, q.created_at
		FROM player_quests pq
		JOIN quests q ON pq.quest_id = q.id
		WHERE pq.player_id = $1 AND pq.status = $2
		AND q.end_time > NOW()
	`

	rows, err := s.db.Query(ctx, query, playerID, models.QuestStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []*models.PlayerQuest
	for rows.Next() {
		pq := &models.PlayerQuest{Quest: &models.Quest{}}
		err := rows.Scan(
			&pq.ID, &pq.PlayerID, &pq.QuestID, &pq.Status, &pq.Requirements, &pq.Progress,
			&pq.CompletedAt, &pq.CreatedAt, &pq.UpdatedAt,
			&pq.Quest.ID, &pq.Quest.Title, &pq.Quest.Description, &pq.Quest.Category,
			&pq.Quest.RewardXP, &pq.Quest.RewardCoins,
			&pq.Quest.StartTime, &pq.Quest.EndTime, &pq.Quest.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		quests = append(quests, pq)
	}

	return quests, rows.Err()
}

// ProgressRequirement advances all of the player's active quests that
// carry the requirement type.
func (s *QuestService) ProgressRequirement(ctx context.Context, playerID string, reqType models.QuestRequirementType, delta int) error {
	if delta == 0 {
		return nil
	}

	quests, err := s.GetPlayerQuests(ctx, playerID)
	if err != nil {
		return err
	}

	for _, pq := range quests {
		updated, progress := ProgressRequirements(pq.Requirements, reqType, delta)
		if progress == pq.Progress && !QuestComplete(updated) {
			continue
		}

		query := `
			UPDATE player_quests
			SET requirements = $1, progress = $2, updated_at = NOW()
			WHERE id = $3 AND status = $4
		`

		if _, err := s.db.Exec(ctx, query, updated, progress, pq.ID, models.QuestStatusActive); err != nil {
			return err
		}

		if QuestComplete(updated) {
			if err := s.completeQuest(ctx, pq); err != nil {
				return err
			}
		}
	}

	return nil
}

// completeQuest marks the quest completed and grants its rewards. The
// status guard in the UPDATE makes completion exactly-once even when
// two requirement updates race.
func (s *QuestService) completeQuest(ctx context.Context, pq *models.PlayerQuest) error {
	query := `
		UPDATE player_quests
		SET status = $1, progress = 100, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	tag, err := s.db.Exec(ctx, query, models.QuestStatusCompleted, pq.ID, models.QuestStatusActive)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return nil // already completed by a concurrent update
	}

	if pq.Quest != nil {
		if pq.Quest.RewardXP > 0 {
			if _, _, err := s.playerService.GrantXP(ctx, pq.PlayerID, pq.Quest.RewardXP, "quest"); err != nil {
				utils.Logger.Warn("failed to grant quest xp", zap.Error(err))
			}
		}
		if pq.Quest.RewardCoins > 0 {
			if _, err := s.playerService.GrantCoins(ctx, pq.PlayerID, pq.Quest.RewardCoins, CoinSourceEarn); err != nil {
				utils.Logger.Warn("failed to grant quest coins", zap.Error(err))
			}
		}
	}

	s.playerService.logActivity(ctx, pq.PlayerID, "quest", 100, pq.QuestID)
	return nil
}

// AssignQuest creates a fresh progress row for the player.
func (s *QuestService) AssignQuest(ctx context.Context, playerID string, quest *models.Quest) error {
	requirements := make([]models.QuestRequirement, len(quest.Requirements))
	copy(requirements, quest.Requirements)
	for i := range requirements {
		requirements[i].Current = 0
	}

	query := `
		INSERT INTO player_quests (id, player_id, quest_id, status, requirements, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
	`

	_, err := s.db.Exec(ctx, query, uuid.New().String(), playerID, quest.ID, models.QuestStatusActive, requirements)
	return err
}

// GenerateDailyQuests assigns the daily templates unless the player
// already has active dailies.
func (s *QuestService) GenerateDailyQuests(ctx context.Context, playerID string) error {
	query := `
		SELECT COUNT(*)
		FROM player_quests pq
		JOIN quests q ON pq.quest_id = q.id
		WHERE pq.player_id = $1 AND q.category = $2
		AND q.end_time > NOW() AND pq.status = $3
	`

	var count int
	if err := s.db.QueryRow(ctx, query, playerID, models.QuestCategoryDaily, models.QuestStatusActive).Scan(&count); err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	for _, template := range dailyQuestTemplates() {
		if err := s.createQuest(ctx, template); err != nil {
			return err
		}

		if err := s.AssignQuest(ctx, playerID, template); err != nil {
			return err
		}
	}

	return nil
}

func (s *QuestService) createQuest(ctx context.Context, quest *models.Quest) error {
	quest.ID = uuid.New().String()
	quest.CreatedAt = time.Now()

	query := `
		INSERT INTO quests (id, title, description, category, requirements, reward_xp, reward_coins, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		quest.ID, quest.Title, quest.Description, quest.Category,
		quest.Requirements, quest.RewardXP, quest.RewardCoins,
		quest.StartTime, quest.EndTime, quest.CreatedAt,
	)
	return err
}

func dailyQuestTemplates() []*models.Quest {
	now := time.Now()
	endTime := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	return []*models.Quest{
		{
			Title:       "Daily Contender",
			Description: "Play 3 battles",
			Category:    models.QuestCategoryDaily,
			Requirements: []models.QuestRequirement{
				{Type: models.QuestRequirementBattlesPlayed, Target: 3},
			},
			RewardXP:    100,
			RewardCoins: 50,
			StartTime:   now,
			EndTime:     endTime,
		},
		{
			Title:       "Daily Champion",
			Description: "Win 2 battles",
			Category:    models.QuestCategoryDaily,
			Requirements: []models.QuestRequirement{
				{Type: models.QuestRequirementBattlesWon, Target: 2},
			},
			RewardXP:    200,
			RewardCoins: 100,
			StartTime:   now,
			EndTime:     endTime,
		},
	}
}
