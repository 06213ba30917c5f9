package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/portals/internal/core/events/bus"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketStreamsEvents(t *testing.T) {
	events := bus.New()
	cfg := DefaultConfig()
	cfg.Token = "supersecrettoken"
	server := NewWebSocketServer(events, cfg, nil)
	if err := server.Subscribe("portal.teleported", "portal.entered"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer server.Close()

	s := httptest.NewServer(server.Handler())
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/events"

	// Test without token
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("Expected error when connecting without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %v", resp)
	}

	// Only teleports for this client
	conn, _, err := websocket.DefaultDialer.Dial(u+"?token=supersecrettoken&types=portal.teleported", nil)
	if err != nil {
		t.Fatalf("Could not connect with valid token: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return server.Clients() == 1 })

	if err := events.Publish(bus.NewEvent("portal.entered", "P", map[string]any{"traveler": "a"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := events.Publish(bus.NewEvent("portal.teleported", "P", map[string]any{"traveler": "b"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Could not read message: %v", err)
	}
	if msg.Type != "portal.teleported" || msg.Source != "P" {
		t.Errorf("Expected portal.teleported from P, got %s from %s", msg.Type, msg.Source)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok || data["traveler"] != "b" {
		t.Errorf("Unexpected payload %#v", msg.Data)
	}

	conn.Close()
	waitFor(t, func() bool { return server.Clients() == 0 })
}

func TestWebSocketMaxClients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxClients = 1
	server := NewWebSocketServer(bus.New(), cfg, nil)

	s := httptest.NewServer(server.Handler())
	defer s.Close()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/events"

	first, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer first.Close()
	waitFor(t, func() bool { return server.Clients() == 1 })

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("Expected second client to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %v", resp)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	server := NewWebSocketServer(bus.New(), DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, "127.0.0.1:0") }()
	waitFor(t, func() bool { return server.running.Load() })

	if err := server.Serve(ctx, "127.0.0.1:0"); err != ErrServerAlreadyRunning {
		t.Fatalf("Expected ErrServerAlreadyRunning, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}

func TestParseTypes(t *testing.T) {
	got := parseTypes(" portal.entered, ,portal.exited")
	if len(got) != 2 || !got["portal.entered"] || !got["portal.exited"] {
		t.Errorf("Unexpected types %v", got)
	}
	if parseTypes("") != nil {
		t.Errorf("Expected nil for empty filter")
	}
}
