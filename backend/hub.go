package main

import (
	"encoding/json"
	"sync"

	"gameportal/engine"
)

type Hub struct {
	mu               sync.Mutex
	clients          map[*Client]struct{}
	broadcastHistory chan historyPayload
	broadcastStatus  chan StatusResponse
	broadcastReset   chan StatusResponse
	broadcastHint    chan hintPayload
}

// Client receives messages for one session, or for all sessions while
// session is empty.
type Client struct {
	hub     *Hub
	send    chan []byte
	mu      sync.Mutex
	session string
}

type wsMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type hintPayload struct {
	SessionID string      `json:"session_id"`
	Move      Move        `json:"move"`
	Mark      engine.Cell `json:"mark"`
}

type historyPayload struct {
	SessionID string         `json:"session_id"`
	History   []HistoryEntry `json:"history"`
}

func NewHub() *Hub {
	return &Hub{
		clients:          make(map[*Client]struct{}),
		broadcastHistory: make(chan historyPayload, 32),
		broadcastStatus:  make(chan StatusResponse, 32),
		broadcastReset:   make(chan StatusResponse, 8),
		broadcastHint:    make(chan hintPayload, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastHistory:
			h.fanOut(payload.SessionID, wsMessage{Type: "history", SessionID: payload.SessionID, Payload: mustMarshal(payload)})
		case payload := <-h.broadcastStatus:
			h.fanOut(payload.SessionID, wsMessage{Type: "status", SessionID: payload.SessionID, Payload: mustMarshal(payload)})
		case payload := <-h.broadcastReset:
			h.fanOut(payload.SessionID, wsMessage{Type: "reset", SessionID: payload.SessionID, Payload: mustMarshal(payload)})
		case payload := <-h.broadcastHint:
			h.fanOut(payload.SessionID, wsMessage{Type: "hint", SessionID: payload.SessionID, Payload: mustMarshal(payload)})
		}
	}
}

func (h *Hub) fanOut(sessionID string, msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.follows(sessionID) {
			client.sendJSON(msg)
		}
	}
}

// PublishStatus queues a status message without blocking the caller.
func (h *Hub) PublishStatus(status StatusResponse) {
	select {
	case h.broadcastStatus <- status:
	default:
	}
}

func (h *Hub) PublishReset(status StatusResponse) {
	select {
	case h.broadcastReset <- status:
	default:
	}
}

func (h *Hub) PublishHint(sessionID string, move Move, mark engine.Cell) {
	select {
	case h.broadcastHint <- hintPayload{SessionID: sessionID, Move: move, Mark: mark}:
	default:
	}
}

func (h *Hub) PublishHistory(sessionID string, entries ...HistoryEntry) {
	select {
	case h.broadcastHistory <- historyPayload{SessionID: sessionID, History: entries}:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) Follow(sessionID string) {
	c.mu.Lock()
	c.session = sessionID
	c.mu.Unlock()
}

func (c *Client) follows(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == "" || c.session == sessionID
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
