package mq

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const GameExchange = "quiz.game.events"

// GameEventPublisher broadcasts battle and economy events for
// downstream consumers (analytics, notifications). Publishing is
// fire-and-forget from the caller's point of view.
type GameEventPublisher struct {
	provider IMqProvider
	exchange string
}

func NewGameEventPublisher(provider IMqProvider) (*GameEventPublisher, error) {
	err := provider.DeclareExchange(GameExchange, "topic", true)

	return &GameEventPublisher{
		provider: provider,
		exchange: GameExchange,
	}, err
}

func (p *GameEventPublisher) PublishBattleOutcome(msg *BattleOutcomeMessage) error {
	msg.MessageID = uuid.New().String()
	msg.Timestamp = time.Now()
	routingKey := fmt.Sprintf("quiz.battle.completed.%s", msg.PlayerID)

	return p.provider.Publish(p.exchange, routingKey, msg)
}

func (p *GameEventPublisher) PublishRewardGrant(msg *RewardGrantMessage) error {
	msg.MessageID = uuid.New().String()
	msg.Timestamp = time.Now()
	routingKey := fmt.Sprintf("quiz.economy.%s.%s", msg.Kind, msg.PlayerID)

	return p.provider.Publish(p.exchange, routingKey, msg)
}

type BattleOutcomeMessage struct {
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`

	PlayerID      string `json:"player_id"`
	SessionID     string `json:"session_id"`
	IsVictory     bool   `json:"is_victory"`
	Score         int    `json:"score"`
	OpponentScore int    `json:"opponent_score"`
	XPEarned      int    `json:"xp_earned"`
	CoinsEarned   int    `json:"coins_earned"`
}

type RewardGrantMessage struct {
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`

	PlayerID string `json:"player_id"`
	Kind     string `json:"kind"` // xp, coins
	Amount   int    `json:"amount"`
	Source   string `json:"source"`
}
