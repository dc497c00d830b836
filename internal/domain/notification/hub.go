package notification

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// userEventsChannel carries cross-instance pushes when Redis is configured.
const userEventsChannel = "notify:user_events"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

type userEventMessage struct {
	UserID           int64           `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans notification events out to the user's connections on this
// instance, and relays them to other instances over Redis Pub/Sub when a
// client is configured. Without Redis it degrades to in-process delivery.
type Hub struct {
	connections map[int64]map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID         string
	publishUserEventFn func(ctx context.Context, channel string, payload []byte) error
}

// NewHub creates a notification hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	return NewHubWithInstanceID(redisClient, uuid.NewString())
}

// NewHubWithInstanceID creates a hub with an explicit instance identifier.
func NewHubWithInstanceID(redisClient *redis.Client, instanceID string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[int64]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  instanceID,
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, userEventsChannel)
		h.publishUserEventFn = func(ctx context.Context, channel string, payload []byte) error {
			return redisClient.Publish(ctx, channel, payload).Err()
		}
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Int64("user_id", conn.UserID).Msg("user connected to notification stream")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
				}
			}
			h.mu.Unlock()
			log.Debug().Int64("user_id", conn.UserID).Msg("user disconnected from notification stream")
		}
	}
}

// runRedisSubscriber re-delivers pushes published by other instances.
func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleUserEventPayload(msg.Payload)
		}
	}
}

func (h *Hub) handleUserEventPayload(payload string) {
	var event userEventMessage
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return
	}
	if event.SenderInstanceID == h.instanceID {
		return
	}
	h.sendLocalToUser(event.UserID, []byte(event.Payload))
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SendToUserJSON sends the payload to every active connection of the user,
// on this instance and on the others via Redis.
func (h *Hub) SendToUserJSON(userID int64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.sendLocalToUser(userID, data)
	return h.publishUserEvent(userID, data)
}

func (h *Hub) sendLocalToUser(userID int64, data []byte) {
	h.mu.RLock()
	conns, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for conn := range conns {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full
			wsEventsDroppedTotal.Add(1)
			log.Warn().Int64("user_id", userID).Msg("websocket send buffer full")
		}
	}
}

func (h *Hub) publishUserEvent(userID int64, data []byte) error {
	if h.publishUserEventFn == nil {
		return nil
	}

	event := userEventMessage{
		UserID:           userID,
		Payload:          data,
		SenderInstanceID: h.instanceID,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.publishUserEventFn(h.ctx, userEventsChannel, payload)
}

// ConnectionCount returns the number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
