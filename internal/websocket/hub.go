package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RedisChannel = "submission_events"

// Hub tracks websocket viewers per practice session and delivers recorded
// submissions to them. With Redis configured, events are also relayed to the
// hubs of other instances.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// done is closed once Run has returned; later (un)registrations are dropped.
	done     chan struct{}
	doneOnce sync.Once

	mu sync.RWMutex

	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionId string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run owns registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.doneOnce.Do(func() { close(h.done) })
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionId] = append(h.clients[client.SessionId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Viewer registered", map[string]interface{}{"session_id": client.SessionId})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Done is closed when the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register adds client unless the hub has stopped; it reports whether the
// client was accepted.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client. After the hub has stopped it returns at once,
// the client's channel having been closed by the shutdown.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionId]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionId]) == 0 {
		delete(h.clients, client.SessionId)
		h.logger.Info("Hub", "Last viewer left session", map[string]interface{}{"session_id": client.SessionId})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// NotifySubmission implements service.SubmissionNotifier.
func (h *Hub) NotifySubmission(msg dto.SubmissionRecordedMessage) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "submission_recorded",
		"data": msg,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode submission event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(msg.SessionId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.instanceId, SessionId: msg.SessionId, Message: data})
		if err := h.rdb.Publish(context.Background(), RedisChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay submission event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Viewers returns the number of local connections watching sessionId.
func (h *Hub) Viewers(sessionId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionId])
}

func (h *Hub) deliver(sessionId string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Viewer send buffer full, dropping connection", map[string]interface{}{"session_id": sessionId})
			go h.Unregister(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, RedisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceId {
				continue
			}
			h.deliver(payload.SessionId, payload.Message)
		}
	}
}
