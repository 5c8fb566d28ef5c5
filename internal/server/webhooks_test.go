package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"channelos/internal/config"
	"channelos/internal/events"
)

func TestWebhookDispatcherDeliversNewEvents(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	// Events that exist before the dispatcher starts are not replayed.
	e.LogTitle(ctx, "Old title")

	var mu sync.Mutex
	var got []webhookEvent
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt webhookEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		if r.Header.Get("X-ChannelOS-Secret") != "s3cret" {
			t.Errorf("missing secret header")
		}
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	}))
	defer receiver.Close()

	d := NewWebhookDispatcher(e, []config.Webhook{{
		URL:    receiver.URL,
		Events: []string{events.TypePhaseMoved},
		Secret: "s3cret",
	}}, nil)
	if d == nil {
		t.Fatalf("expected dispatcher")
	}
	d.DispatchAll(ctx)

	card := e.LockIdeas(ctx).Workflow[0]
	if _, err := e.MovePhase(ctx, card.ID, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	d.DispatchAll(ctx)
	d.DispatchAll(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected one delivery, got %d", len(got))
	}
	if got[0].Type != events.TypePhaseMoved || got[0].EntityID != card.ID {
		t.Fatalf("unexpected delivery: %+v", got[0])
	}
}

func TestWebhookDispatcherCatchesUpAfterOutage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	var mu sync.Mutex
	down := true
	var got []int64
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var evt webhookEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		got = append(got, evt.ID)
	}))
	defer receiver.Close()

	d := NewWebhookDispatcher(e, []config.Webhook{{URL: receiver.URL}}, nil)
	d.DispatchAll(ctx)

	const total = 150
	for i := 0; i < total; i++ {
		e.LogTitle(ctx, fmt.Sprintf("Title %d", i))
	}
	d.DispatchAll(ctx)

	mu.Lock()
	down = false
	mu.Unlock()
	for i := 0; i < 5; i++ {
		d.DispatchAll(ctx)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != total {
		t.Fatalf("expected %d deliveries, got %d", total, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] != got[i-1]+1 {
			t.Fatalf("deliveries out of order at %d: %d after %d", i, got[i], got[i-1])
		}
	}
}

func TestWebhookDispatcherDisabled(t *testing.T) {
	off := false
	if d := NewWebhookDispatcher(newTestEngine(t), []config.Webhook{{URL: "http://127.0.0.1:1", Enabled: &off}}, nil); d != nil {
		t.Fatalf("expected nil dispatcher when all hooks are disabled")
	}
}
