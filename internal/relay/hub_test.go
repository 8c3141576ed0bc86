package relay

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHubDeliversToAllSessionsOfRecipient(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	s1 := hub.Register("user-a")
	s2 := hub.Register("user-a")
	other := hub.Register("user-b")

	env := Envelope{From: "user-b", To: "user-a", Text: "hello", CreatedAt: time.Now()}
	if got := hub.DeliverLocal(env); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}

	for _, s := range []*Session{s1, s2} {
		select {
		case got := <-s.Receive():
			if got.Text != "hello" {
				t.Fatalf("text = %q, want %q", got.Text, "hello")
			}
		default:
			t.Fatal("session did not receive envelope")
		}
	}

	select {
	case <-other.Receive():
		t.Fatal("envelope delivered to wrong user")
	default:
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	s := hub.Register("user-a")
	hub.Unregister(s)

	if got := hub.DeliverLocal(Envelope{To: "user-a", Text: "late"}); got != 0 {
		t.Fatalf("delivered = %d, want 0", got)
	}
	if hub.Connections() != 0 {
		t.Fatalf("connections = %d, want 0", hub.Connections())
	}
	// double unregister is a no-op
	hub.Unregister(s)
}

func TestHubDropsWhenSessionQueueFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	s := hub.Register("user-a")
	for i := 0; i < sessionBuffer; i++ {
		hub.DeliverLocal(Envelope{To: "user-a", Text: "fill"})
	}

	if got := hub.DeliverLocal(Envelope{To: "user-a", Text: "overflow"}); got != 0 {
		t.Fatalf("delivered = %d, want 0 when queue is full", got)
	}
	if len(s.Receive()) != sessionBuffer {
		t.Fatalf("queued = %d, want %d", len(s.Receive()), sessionBuffer)
	}
}

func TestLocalBridgeDeliversInProcess(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	bridge := NewLocalBridge(hub)

	s := hub.Register("user-a")
	if err := bridge.Publish(context.Background(), Envelope{To: "user-a", Text: "direct"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-s.Receive():
		if got.Text != "direct" {
			t.Fatalf("text = %q, want %q", got.Text, "direct")
		}
	default:
		t.Fatal("envelope not delivered")
	}
}
