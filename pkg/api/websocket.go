package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// wsRequest is the client side of the envelope, with the fields each
// message type may carry flattened alongside it.
type wsRequest struct {
	Type      string `json:"type"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Square    string `json:"square,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *wsClient) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks the WebSocket subscribers of each game.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*wsClient]struct{}),
		log:     log.With().Str("component", "ws").Logger(),
	}
}

func (h *Hub) add(gameID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[gameID] == nil {
		h.clients[gameID] = make(map[*wsClient]struct{})
	}
	h.clients[gameID][c] = struct{}{}
}

func (h *Hub) remove(gameID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[gameID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, gameID)
		}
	}
}

// Broadcast sends msg to every subscriber of gameID.
func (h *Hub) Broadcast(gameID string, msg WSMessage) {
	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients[gameID]))
	for c := range h.clients[gameID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.Debug().Err(err).Str("game_id", gameID).Msg("broadcast write failed")
		}
	}
}

// TotalConnections counts subscribers across all games.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// HandleWS upgrades the connection and serves the per-game message
// loop.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.manager.Snapshot(gameID); err != nil {
		h.writeLookupError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &wsClient{conn: conn}
	h.hub.add(gameID, client)
	defer func() {
		h.hub.remove(gameID, client)
		_ = conn.Close()
	}()

	// Initial state so a reconnecting client can resync immediately.
	if snap, err := h.manager.Snapshot(gameID); err == nil {
		_ = client.send(WSMessage{Type: "state_update", Data: snap})
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("game_id", gameID).Msg("websocket read failed")
			}
			return
		}
		h.dispatchWS(gameID, client, req)
	}
}

func (h *Handlers) dispatchWS(gameID string, client *wsClient, req wsRequest) {
	switch req.Type {
	case "move":
		result, err := h.manager.MakeMove(gameID, MoveRequest{
			From:      req.From,
			To:        req.To,
			Promotion: req.Promotion,
		})
		if err != nil {
			_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: err.Error()}})
			return
		}
		_ = client.send(WSMessage{Type: "move_result", Data: result})
		if result.Success {
			h.broadcastState(gameID)
		}

	case "measure":
		var (
			measured map[string]MeasuredSquare
			err      error
		)
		if req.Square != "" {
			var one MeasuredSquare
			one, err = h.manager.MeasureSquare(gameID, req.Square)
			measured = map[string]MeasuredSquare{req.Square: one}
		} else {
			measured, err = h.manager.MeasureAll(gameID)
		}
		if err != nil {
			_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: err.Error()}})
			return
		}
		_ = client.send(WSMessage{Type: "measurement_result", Data: MeasureResponse{GameID: gameID, Measured: measured}})
		h.broadcastState(gameID)

	case "evaluate":
		var resp EvaluationResponse
		err := h.manager.With(gameID, func(g *engine.Game) error {
			ev := g.Evaluate()
			resp = EvaluationResponse{
				GameID:         gameID,
				ClassicalScore: ev.ClassicalScore,
				QuantumScore:   ev.QuantumScore,
				CombinedScore:  ev.CombinedScore,
				Components:     ev.Components,
			}
			return nil
		})
		if err != nil {
			_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: err.Error()}})
			return
		}
		_ = client.send(WSMessage{Type: "evaluation", Data: resp})

	case "legal_moves":
		moves, err := h.manager.LegalMoves(gameID, req.Square)
		if err != nil {
			_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: err.Error()}})
			return
		}
		if moves == nil {
			moves = []string{}
		}
		_ = client.send(WSMessage{Type: "legal_moves", Data: LegalMovesResponse{Square: req.Square, LegalMoves: moves}})

	case "state":
		snap, err := h.manager.Snapshot(gameID)
		if err != nil {
			_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: err.Error()}})
			return
		}
		_ = client.send(WSMessage{Type: "state_update", Data: snap})

	default:
		_ = client.send(WSMessage{Type: "error", Data: ErrorResponse{Error: "unknown message type: " + req.Type}})
	}
}
