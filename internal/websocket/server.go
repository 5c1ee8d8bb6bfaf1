package websocket

import (
	"net/http"
	"sync"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/battle"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

type Client struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Server   *Server
	mu       sync.Mutex
	send     chan []byte
}

// Server streams battle engine messages to connected players and
// accepts battle commands over the same connection. One client per
// player; a reconnect replaces the previous connection.
type Server struct {
	clients       map[string]*Client
	battleManager *battle.Manager
	register      chan *Client
	unregister    chan *Client
	mu            sync.RWMutex
	handler       *MessageHandler
}

func NewServer(battleManager *battle.Manager) *Server {
	server := &Server{
		clients:       make(map[string]*Client),
		battleManager: battleManager,
		register:      make(chan *Client),
		unregister:    make(chan *Client),
	}

	server.handler = NewMessageHandler(server, battleManager)

	return server
}

func (s *Server) Run() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			if previous, ok := s.clients[client.PlayerID]; ok {
				close(previous.send)
			}
			s.clients[client.PlayerID] = client
			s.mu.Unlock()

		case client := <-s.unregister:
			s.mu.Lock()
			if current, ok := s.clients[client.PlayerID]; ok && current == client {
				delete(s.clients, client.PlayerID)
				close(client.send)
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWTTokenWithClaims(token)
	if err != nil {
		utils.Logger.Warn("failed to validate token", zap.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:       claims.UserID,
		PlayerID: claims.PlayerID,
		Conn:     conn,
		Server:   s,
		send:     make(chan []byte, 256),
	}

	s.register <- client

	go client.readPump()
	go client.writePump()

	// An engine may already be running from a previous connection;
	// re-attach its message stream.
	if engine, ok := s.battleManager.Engine(client.PlayerID); ok {
		go s.handler.streamBattle(client, engine)
	}
}

// SendToPlayer delivers a message to the player's connection, dropping
// it when the player is offline or the send buffer is full.
func (s *Server) SendToPlayer(playerID string, message []byte) {
	s.mu.RLock()
	client, ok := s.clients[playerID]
	s.mu.RUnlock()

	if !ok {
		return
	}

	select {
	case client.send <- message:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Server.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		if err := c.Server.handler.HandleMessage(c, message); err != nil {
			utils.Logger.Warn("error handling message",
				zap.String("player_id", c.PlayerID),
				zap.Error(err),
			)
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		c.Conn.Close()
	}()

	for message := range c.send {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		c.mu.Unlock()

		if err != nil {
			utils.Logger.Warn("error writing message", zap.Error(err))
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
