package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "notify:"

// Pusher delivers a realtime payload to one recipient if reachable.
type Pusher interface {
	Emit(ctx context.Context, recipientID string, payload any) error
}

// Hub tracks online accounts and pushes events to their channels. The
// registry maps account id to an outbound buffer populated on connect and
// removed on disconnect. A removal between the presence check and the send
// is a harmless no-op. Payloads are also published to the per-recipient
// redis channel so detached frontends can subscribe.
type Hub struct {
	mu     sync.RWMutex
	online map[string]chan []byte
	redis  *redis.Client
	logger *zap.Logger
}

// NewHub creates a hub. The redis client may be nil in tests.
func NewHub(client *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		online: make(map[string]chan []byte),
		redis:  client,
		logger: logger,
	}
}

// Connect registers an account as online and returns its event stream plus
// a disconnect func. Reconnecting replaces the previous stream.
func (h *Hub) Connect(accountID string) (<-chan []byte, func()) {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	if old, ok := h.online[accountID]; ok {
		close(old)
	}
	h.online[accountID] = ch
	h.mu.Unlock()

	disconnect := func() {
		h.mu.Lock()
		if current, ok := h.online[accountID]; ok && current == ch {
			delete(h.online, accountID)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, disconnect
}

// Online reports whether the account currently has an active connection.
func (h *Hub) Online(accountID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.online[accountID]
	return ok
}

// Emit pushes a payload to the recipient's active connection if one exists
// and publishes it on the recipient's redis channel.
func (h *Hub) Emit(ctx context.Context, recipientID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// send while holding the read lock: channels are only ever closed under
	// the write lock, never concurrently with this send
	h.mu.RLock()
	if ch, ok := h.online[recipientID]; ok {
		select {
		case ch <- data:
		default:
			// slow consumer, drop rather than block the caller
			h.logger.Debug("realtime buffer full", zap.String("recipient", recipientID))
		}
	}
	h.mu.RUnlock()

	if h.redis != nil {
		if err := h.redis.Publish(ctx, channelPrefix+recipientID, data).Err(); err != nil {
			return err
		}
	}
	return nil
}
