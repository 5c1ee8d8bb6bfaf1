package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/battle"
	"go.uber.org/zap"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeStartBattle   MessageType = "start_battle"
	MessageTypeSubmitAnswer  MessageType = "submit_answer"
	MessageTypeBattleState   MessageType = "battle_state"
	MessageTypeDismissBattle MessageType = "dismiss_battle"
	MessageTypeError         MessageType = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type     MessageType     `json:"type"`
	PlayerID string          `json:"playerId"`
	Data     json.RawMessage `json:"data"`
}

type StartBattlePayload struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type SubmitAnswerPayload struct {
	QuestionIndex int     `json:"question_index"`
	AnswerIndex   int     `json:"answer_index"`
	TimeSpent     float64 `json:"time_spent"`
}

// MessageHandler processes WebSocket messages
type MessageHandler struct {
	server        *Server
	battleManager *battle.Manager
}

func NewMessageHandler(server *Server, battleManager *battle.Manager) *MessageHandler {
	return &MessageHandler{
		server:        server,
		battleManager: battleManager,
	}
}

func (h *MessageHandler) HandleMessage(client *Client, message []byte) error {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case MessageTypeStartBattle:
		return h.handleStartBattle(client, msg)
	case MessageTypeSubmitAnswer:
		return h.handleSubmitAnswer(client, msg)
	case MessageTypeBattleState:
		return h.handleBattleState(client)
	case MessageTypeDismissBattle:
		return h.handleDismissBattle(client)
	default:
		utils.Logger.Warn("unknown message type", zap.String("type", string(msg.Type)))
		return nil
	}
}

func (h *MessageHandler) handleStartBattle(client *Client, msg Message) error {
	var payload StartBattlePayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return h.sendError(client, "invalid start_battle payload")
		}
	}

	engine, err := h.battleManager.StartBattle(context.Background(), client.PlayerID, payload.Category, payload.Difficulty)
	if err != nil {
		return h.sendError(client, err.Error())
	}

	go h.streamBattle(client, engine)
	return nil
}

func (h *MessageHandler) handleSubmitAnswer(client *Client, msg Message) error {
	var payload SubmitAnswerPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return h.sendError(client, "invalid submit_answer payload")
	}

	engine, ok := h.battleManager.Engine(client.PlayerID)
	if !ok {
		return h.sendError(client, "no battle in progress")
	}

	if _, err := engine.SubmitAnswer(payload.QuestionIndex, payload.AnswerIndex, payload.TimeSpent); err != nil {
		return h.sendError(client, err.Error())
	}

	return nil
}

func (h *MessageHandler) handleBattleState(client *Client) error {
	engine, ok := h.battleManager.Engine(client.PlayerID)
	if !ok {
		return h.sendError(client, "no battle in progress")
	}

	return h.sendBattleMessage(client, battle.Message{
		Type: battle.MessageType(MessageTypeBattleState),
		Data: engine.Session(),
	})
}

func (h *MessageHandler) handleDismissBattle(client *Client) error {
	h.battleManager.Dismiss(context.Background(), client.PlayerID)
	return nil
}

// streamBattle forwards the engine's message channel to the player
// until the channel drains past a terminal message or the engine is
// replaced.
func (h *MessageHandler) streamBattle(client *Client, engine *battle.Engine) {
	for message := range engine.Messages() {
		if err := h.sendBattleMessage(client, message); err != nil {
			utils.Logger.Warn("failed to forward battle message",
				zap.String("player_id", client.PlayerID),
				zap.Error(err),
			)
		}

		if message.Type == battle.MessageBattleCompleted || message.Type == battle.MessageBattleError {
			return
		}
	}
}

func (h *MessageHandler) sendBattleMessage(client *Client, message battle.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal battle message: %w", err)
	}

	h.server.SendToPlayer(client.PlayerID, data)
	return nil
}

func (h *MessageHandler) sendError(client *Client, message string) error {
	payload, err := json.Marshal(map[string]any{
		"type":    MessageTypeError,
		"message": message,
	})
	if err != nil {
		return err
	}

	h.server.SendToPlayer(client.PlayerID, payload)
	return nil
}
