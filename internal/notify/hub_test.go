package notify

import (
	"testing"
	"time"

	"github.com/comanda-app/comanda/internal/models"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	hub.Publish(models.EventOrderCreated, map[string]string{"order_id": "o1"})

	for i, ch := range []<-chan models.Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Name != models.EventOrderCreated {
				t.Errorf("subscriber %d got event %q", i, ev.Name)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	cancel()
	if hub.Subscribers() != 0 {
		t.Errorf("Subscribers = %d after cancel, want 0", hub.Subscribers())
	}

	// Channel is closed, not leaked.
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Double cancel is a no-op.
	cancel()
}

func TestSlowSubscriberNeverBlocksPublish(t *testing.T) {
	hub := NewHub()

	// Subscriber that never reads.
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(models.EventStatusUpdated, nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
