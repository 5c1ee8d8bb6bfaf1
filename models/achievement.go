package models

import "time"

type ConditionOperator string

const (
	OperatorEq  ConditionOperator = "eq"
	OperatorGt  ConditionOperator = "gt"
	OperatorLt  ConditionOperator = "lt"
	OperatorGte ConditionOperator = "gte"
	OperatorLte ConditionOperator = "lte"
)

// AchievementCondition compares one named statistic against a value.
// All conditions of an achievement must hold for it to unlock.
type AchievementCondition struct {
	Stat     string            `json:"stat"`
	Operator ConditionOperator `json:"operator"`
	Value    float64           `json:"value"`
}

type Achievement struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Conditions  []AchievementCondition `json:"conditions"`
	RewardXP    int                    `json:"reward_xp"`
	RewardCoins int                    `json:"reward_coins"`
	CreatedAt   time.Time              `json:"created_at"`
}

type PlayerAchievement struct {
	ID            string     `json:"id"`
	PlayerID      string     `json:"player_id"`
	AchievementID string     `json:"achievement_id"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`

	Achievement *Achievement `json:"achievement,omitempty"`
}
