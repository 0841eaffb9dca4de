package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// Channel carries committed schedule changes between API instances.
const Channel = "schedule.changed"

// envelope wraps a change with its publishing instance so the consume loop
// can skip messages it already delivered locally.
type envelope struct {
	Origin string                `json:"origin"`
	Change models.ScheduleChange `json:"change"`
}

// Hub fans committed schedule changes out to in-process subscribers and,
// when a redis client is configured, across instances over pub/sub. Open
// planner boards subscribe to refresh ahead of their periodic cadence.
type Hub struct {
	client *redis.Client
	logger *zap.Logger
	origin string

	mu        sync.Mutex
	listeners map[int]func(models.ScheduleChange)
	nextID    int
	started   bool
	cancel    context.CancelFunc
	sub       *redis.PubSub
	wg        sync.WaitGroup
}

// NewHub builds a hub. A nil client degrades to in-process fan-out only.
func NewHub(client *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		client:    client,
		logger:    logger,
		origin:    uuid.NewString(),
		listeners: make(map[int]func(models.ScheduleChange)),
	}
}

// Start begins consuming the shared channel. Safe to call once; without a
// redis client there is nothing to consume and local fan-out works as is.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true
	if h.client == nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.sub = h.client.Subscribe(runCtx, Channel)
	h.wg.Add(1)
	go h.consume(runCtx, h.sub)
	h.logger.Sugar().Infow("signal hub started", "channel", Channel)
}

// Stop closes the subscription and waits for the consume loop to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	cancel := h.cancel
	sub := h.sub
	h.cancel = nil
	h.sub = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
	h.wg.Wait()
	h.logger.Sugar().Infow("signal hub stopped")
}

// Publish delivers the change to local subscribers and, when redis is
// configured, to every other instance on the channel.
func (h *Hub) Publish(ctx context.Context, change models.ScheduleChange) error {
	h.dispatch(change)
	if h.client == nil {
		return nil
	}

	payload, err := json.Marshal(envelope{Origin: h.origin, Change: change})
	if err != nil {
		return fmt.Errorf("marshal schedule change: %w", err)
	}
	if err := h.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish schedule change: %w", err)
	}
	return nil
}

// Subscribe registers a listener. The returned function removes it.
func (h *Hub) Subscribe(fn func(models.ScheduleChange)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *Hub) consume(ctx context.Context, sub *redis.PubSub) {
	defer h.wg.Done()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("dropping malformed schedule change", zap.Error(err))
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.dispatch(env.Change)
		}
	}
}

func (h *Hub) dispatch(change models.ScheduleChange) {
	h.mu.Lock()
	listeners := make([]func(models.ScheduleChange), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}
