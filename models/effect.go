package models

import "time"

type EffectType string

const (
	EffectXPBoost    EffectType = "xp_boost"
	EffectCoinBoost  EffectType = "coin_boost"
	EffectScoreBoost EffectType = "score_boost"
	EffectTimeBoost  EffectType = "time_boost"
)

const (
	DefaultEffectValue    = 1.5
	DefaultEffectDuration = 300 * time.Second
)

// Effect is a time-boxed multiplicative modifier. Its value is recorded
// at activation and must be used verbatim when the effect is reversed.
type Effect struct {
	ID         string        `json:"id"`
	PlayerID   string        `json:"player_id"`
	Type       EffectType    `json:"type"`
	Value      float64       `json:"value"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	SourceItem EffectSource  `json:"source_item"`
}

type EffectSource struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

func (e *Effect) ExpiresAt() time.Time {
	return e.StartTime.Add(e.Duration)
}

func (e *Effect) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt())
}
