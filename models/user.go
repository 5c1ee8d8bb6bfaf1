package models

import "time"

type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Password string  `json:"-"`
	Player   *Player `json:"player,omitempty"`
}

// Player carries the persistent economy state for one user.
type Player struct {
	ID          string            `json:"id"`
	UserID      string            `json:"-"`
	Username    string            `json:"username,omitempty"`
	XP          int               `json:"xp"`
	Coins       int               `json:"coins"`
	Level       int               `json:"level"`
	Streak      int               `json:"streak"`
	Multipliers RewardMultipliers `json:"reward_multipliers"`
}

// RewardMultipliers starts at {1,1} and is mutated only by effect
// activation/expiry. Boost effects compose multiplicatively.
type RewardMultipliers struct {
	XP    float64 `json:"xp"`
	Coins float64 `json:"coins"`
}

func NewRewardMultipliers() RewardMultipliers {
	return RewardMultipliers{XP: 1, Coins: 1}
}

type UserPlayer struct {
	ID     string `json:"id"`
	Player Player `json:"player"`
}

type PlayerActivity struct {
	ID        string         `json:"id"`
	PlayerID  string         `json:"player_id"`
	Type      string         `json:"type"` // xp_gain, coin_gain, level_up, battle, quest, achievement
	Amount    int            `json:"amount"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
