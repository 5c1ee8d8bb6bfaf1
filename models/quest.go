package models

import "time"

type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
)

type QuestCategory string

const (
	QuestCategoryDaily       QuestCategory = "daily"
	QuestCategoryWeekly      QuestCategory = "weekly"
	QuestCategoryAchievement QuestCategory = "achievement"
)

type QuestRequirementType string

const (
	QuestRequirementBattlesWon    QuestRequirementType = "battles_won"
	QuestRequirementBattlesPlayed QuestRequirementType = "battles_played"
	QuestRequirementXPEarned      QuestRequirementType = "xp_earned"
	QuestRequirementStreak        QuestRequirementType = "streak"
)

type Quest struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     QuestCategory      `json:"category"`
	Requirements []QuestRequirement `json:"requirements"`
	RewardXP     int                `json:"reward_xp"`
	RewardCoins  int                `json:"reward_coins"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	CreatedAt    time.Time          `json:"created_at"`
}

type QuestRequirement struct {
	Type    QuestRequirementType `json:"type"`
	Current int                  `json:"current"`
	Target  int                  `json:"target"`
}

type PlayerQuest struct {
	ID           string             `json:"id"`
	PlayerID     string             `json:"player_id"`
	QuestID      string             `json:"quest_id"`
	Status       QuestStatus        `json:"status"`
	Requirements []QuestRequirement `json:"requirements"`
	Progress     int                `json:"progress"` // 0-100
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	Quest *Quest `json:"quest,omitempty"`
}
