// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/northbound/seekkb/internal/eventbus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Desktop shell only; there's no untrusted browser origin to check.
		return true
	},
}

// WebSocketManager pushes the engine's event surface (startup-progress,
// chat-stream, document_processing, project_status) to UI clients over a
// websocket connection each, falling back to a per-client Mailbox when a
// client has no socket attached.
type WebSocketManager struct {
	bus     *eventbus.Bus
	mailbox Mailbox

	clients    map[string]*websocket.Conn
	clientsMu  sync.RWMutex
	pingTicker *time.Ticker
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWebSocketManager subscribes to bus and starts relaying events to
// connected clients; mailbox may be nil to disable the offline fallback.
func NewWebSocketManager(bus *eventbus.Bus, mailbox Mailbox) *WebSocketManager {
	ctx, cancel := context.WithCancel(context.Background())
	wm := &WebSocketManager{
		bus:        bus,
		mailbox:    mailbox,
		clients:    make(map[string]*websocket.Conn),
		pingTicker: time.NewTicker(30 * time.Second),
		ctx:        ctx,
		cancel:     cancel,
	}

	go wm.relayLoop()
	go wm.pingLoop()

	return wm
}

// relayLoop subscribes to bus and dispatches every event to its client (or
// broadcasts it, for events with no ClientID).
func (wm *WebSocketManager) relayLoop() {
	ch := wm.bus.Subscribe()
	defer wm.bus.Unsubscribe(ch)

	for {
		select {
		case <-wm.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			wm.dispatch(event)
		}
	}
}

func (wm *WebSocketManager) dispatch(event eventbus.Event) {
	if event.ClientID == "" {
		wm.clientsMu.RLock()
		targets := make([]*websocket.Conn, 0, len(wm.clients))
		for _, conn := range wm.clients {
			targets = append(targets, conn)
		}
		wm.clientsMu.RUnlock()
		for _, conn := range targets {
			wm.writeJSON(conn, event)
		}
		return
	}

	wm.clientsMu.RLock()
	conn, online := wm.clients[event.ClientID]
	wm.clientsMu.RUnlock()

	if online && wm.writeJSON(conn, event) {
		return
	}
	if wm.mailbox != nil {
		if err := wm.mailbox.Push(context.Background(), event.ClientID, event); err != nil {
			log.Printf("WebSocketManager: failed to queue event for offline client %s: %v", event.ClientID, err)
		}
	}
}

func (wm *WebSocketManager) writeJSON(conn *websocket.Conn, event eventbus.Event) bool {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(event); err != nil {
		log.Printf("WebSocketManager: write failed: %v", err)
		return false
	}
	return true
}

// pingLoop sends keepalive pings to all connected clients.
func (wm *WebSocketManager) pingLoop() {
	for {
		select {
		case <-wm.ctx.Done():
			return
		case <-wm.pingTicker.C:
			wm.pingAllClients()
		}
	}
}

func (wm *WebSocketManager) pingAllClients() {
	wm.clientsMu.RLock()
	clients := make(map[string]*websocket.Conn, len(wm.clients))
	for id, conn := range wm.clients {
		clients[id] = conn
	}
	wm.clientsMu.RUnlock()

	for clientID, conn := range clients {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
			log.Printf("Failed to ping client %s, removing connection: %v", clientID, err)
			wm.clientsMu.Lock()
			delete(wm.clients, clientID)
			wm.clientsMu.Unlock()
			conn.Close()
			continue
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// HandleWebSocket upgrades the request for client_id and registers the
// connection, draining any queued mailbox events for it first.
func (wm *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		http.Error(w, "client_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("WebSocket client connected: %s", clientID)

	wm.clientsMu.Lock()
	wm.clients[clientID] = conn
	wm.clientsMu.Unlock()

	defer func() {
		wm.clientsMu.Lock()
		delete(wm.clients, clientID)
		wm.clientsMu.Unlock()
		log.Printf("WebSocket client disconnected: %s", clientID)
	}()

	if wm.mailbox != nil {
		queued, err := wm.mailbox.Drain(r.Context(), clientID)
		if err != nil {
			log.Printf("Failed to drain mailbox for %s: %v", clientID, err)
		}
		for _, event := range queued {
			wm.writeJSON(conn, event)
		}
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	// The UI never sends anything meaningful over this socket; reading
	// only detects disconnects and keeps pong frames flowing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", clientID, err)
			}
			return
		}
	}
}

// Stop stops the relay and ping loops and closes every connection.
func (wm *WebSocketManager) Stop() {
	wm.cancel()
	wm.pingTicker.Stop()

	wm.clientsMu.Lock()
	for clientID, conn := range wm.clients {
		conn.Close()
		delete(wm.clients, clientID)
	}
	wm.clientsMu.Unlock()

	log.Printf("WebSocket manager stopped")
}
