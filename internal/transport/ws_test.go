// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/northbound/seekkb/internal/eventbus"
)

func TestWebSocketManager_DeliversToConnectedClient(t *testing.T) {
	bus := eventbus.New()
	mailbox := newFakeMailbox()
	wm := NewWebSocketManager(bus, mailbox)
	defer wm.Stop()

	srv := httptest.NewServer(http.HandlerFunc(wm.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?client_id=c1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Give HandleWebSocket time to register the connection before publishing.
	time.Sleep(50 * time.Millisecond)
	bus.Publish(eventbus.Event{Kind: eventbus.ChatStream, ClientID: "c1", Type: "token", Content: "hi"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got eventbus.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if got.Content != "hi" {
		t.Errorf("Content = %q, want %q", got.Content, "hi")
	}
}

func TestWebSocketManager_QueuesForOfflineClient(t *testing.T) {
	bus := eventbus.New()
	mailbox := newFakeMailbox()
	wm := NewWebSocketManager(bus, mailbox)
	defer wm.Stop()

	bus.Publish(eventbus.Event{Kind: eventbus.ProjectStatus, ClientID: "offline-client", Status: "success"})
	time.Sleep(50 * time.Millisecond)

	queued, err := mailbox.Drain(context.Background(), "offline-client")
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(queued) != 1 {
		t.Fatalf("queued = %d events, want 1", len(queued))
	}
	if queued[0].Status != "success" {
		t.Errorf("Status = %q, want %q", queued[0].Status, "success")
	}
}
