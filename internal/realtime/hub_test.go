package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestPublishNotifiesTopicSubscribers(t *testing.T) {
	hub := NewHub()
	var rooms, answers atomic.Int32
	disposeRooms := hub.Subscribe("room:1", func() { rooms.Add(1) })
	defer disposeRooms()
	disposeAnswers := hub.Subscribe("room:1:answers", func() { answers.Add(1) })
	defer disposeAnswers()

	hub.Publish(context.Background(), "room:1")

	waitFor(t, time.Second, func() bool { return rooms.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	if answers.Load() != 0 {
		t.Fatalf("expected answers subscriber untouched, got %d", answers.Load())
	}
}

func TestDisposeStopsDelivery(t *testing.T) {
	hub := NewHub()
	var calls atomic.Int32
	dispose := hub.Subscribe("room:2", func() { calls.Add(1) })
	if hub.Subscribers("room:2") != 1 {
		t.Fatalf("expected one subscriber")
	}
	dispose()
	dispose()
	if hub.Subscribers("room:2") != 0 {
		t.Fatalf("expected subscription removed")
	}
	hub.Publish(context.Background(), "room:2")
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("expected no delivery after dispose, got %d", calls.Load())
	}
}

func TestBurstCoalesces(t *testing.T) {
	hub := NewHub()
	release := make(chan struct{})
	var calls atomic.Int32
	dispose := hub.Subscribe("room:3", func() {
		if calls.Add(1) == 1 {
			<-release
		}
	})
	defer dispose()

	hub.Publish(context.Background(), "room:3")
	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })
	for i := 0; i < 10; i++ {
		hub.Publish(context.Background(), "room:3")
	}
	close(release)
	waitFor(t, time.Second, func() bool { return calls.Load() == 2 })
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 2 {
		t.Fatalf("expected burst to collapse into one call, got %d", calls.Load())
	}
}

type fakeBridge struct {
	mu        sync.Mutex
	published []string
	fail      bool
	incoming  chan string
}

func (b *fakeBridge) Publish(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("bridge down")
	}
	b.published = append(b.published, topic)
	b.incoming <- topic
	return nil
}

func (b *fakeBridge) Run(ctx context.Context, dispatch func(topic string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case topic := <-b.incoming:
			dispatch(topic)
		}
	}
}

func TestBridgeRoutesPublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	bridge := &fakeBridge{incoming: make(chan string, 4)}
	hub.AttachBridge(ctx, bridge)

	var calls atomic.Int32
	dispose := hub.Subscribe("room:4", func() { calls.Add(1) })
	defer dispose()

	hub.Publish(ctx, "room:4")
	waitFor(t, time.Second, func() bool { return calls.Load() == 1 })

	bridge.mu.Lock()
	bridge.fail = true
	bridge.mu.Unlock()
	hub.Publish(ctx, "room:4")
	waitFor(t, time.Second, func() bool { return calls.Load() == 2 })
}
