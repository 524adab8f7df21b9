package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Bridge fans published topics out to every process sharing the hub's
// backing channel. Run must call dispatch for each topic it receives,
// including the ones this process published.
type Bridge interface {
	Publish(ctx context.Context, topic string) error
	Run(ctx context.Context, dispatch func(topic string)) error
}

// Hub delivers change notifications to subscribers by topic. Each
// subscription runs its callback on its own goroutine; notifications that
// arrive while a callback is running collapse into a single follow-up call.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	topics map[string]map[uint64]*subscription
	bridge Bridge
}

type subscription struct {
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[uint64]*subscription),
	}
}

// AttachBridge routes Publish through bridge and starts dispatching what it
// receives. The bridge stops when ctx is cancelled.
func (h *Hub) AttachBridge(ctx context.Context, bridge Bridge) {
	h.mu.Lock()
	h.bridge = bridge
	h.mu.Unlock()
	go func() {
		if err := bridge.Run(ctx, h.Dispatch); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("realtime bridge stopped")
			h.mu.Lock()
			h.bridge = nil
			h.mu.Unlock()
		}
	}()
}

// Subscribe registers fn for topic and returns its disposer. The disposer is
// safe to call more than once.
func (h *Hub) Subscribe(topic string, fn func()) func() {
	sub := &subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	group := h.topics[topic]
	if group == nil {
		group = make(map[uint64]*subscription)
		h.topics[topic] = group
	}
	group[id] = sub
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case <-sub.signal:
				select {
				case <-sub.done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		sub.once.Do(func() {
			close(sub.done)
			h.mu.Lock()
			defer h.mu.Unlock()
			group := h.topics[topic]
			if group == nil {
				return
			}
			delete(group, id)
			if len(group) == 0 {
				delete(h.topics, topic)
			}
		})
	}
}

// Publish announces a change on topic. With a bridge attached the change
// reaches subscribers through the bridge; if the bridge fails the local
// subscribers are still notified.
func (h *Hub) Publish(ctx context.Context, topic string) {
	h.mu.Lock()
	bridge := h.bridge
	h.mu.Unlock()
	if bridge != nil {
		err := bridge.Publish(ctx, topic)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("topic", topic).Msg("realtime bridge publish failed")
	}
	h.Dispatch(topic)
}

func (h *Hub) Dispatch(topic string) {
	h.mu.Lock()
	group := h.topics[topic]
	subs := make([]*subscription, 0, len(group))
	for _, sub := range group {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports how many live subscriptions a topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
