package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteTimeout     = 10 * time.Second
)

type wsRequest struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func serveWS(hub *Hub, sessions *SessionManager, logger *zap.Logger, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	client.Follow(r.URL.Query().Get("session"))
	hub.Register(client)
	sendSessionStatus(client, sessions, r.URL.Query().Get("session"))

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			logger.Debug("websocket writer stopped", zap.Error(err))
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsRequest
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			if msg.SessionID != "" {
				client.Follow(msg.SessionID)
			}
			sendSessionStatus(client, sessions, msg.SessionID)
		}
	}
}

func sendSessionStatus(client *Client, sessions *SessionManager, sessionID string) {
	if sessionID == "" {
		return
	}
	controller, err := sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			client.sendJSON(wsMessage{Type: "error", SessionID: sessionID, Payload: mustMarshal(map[string]string{"error": err.Error()})})
		}
		return
	}
	client.sendJSON(wsMessage{Type: "status", SessionID: sessionID, Payload: mustMarshal(controllerStatus(controller))})
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteTimeout))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
