package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"bizops-assistant-be/internal/dto"
	"bizops-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "document_events"

// Hub fans document status updates out to the connected clients of a
// tenant. Redis pub/sub carries the same payloads across instances, so a
// client connected to any node sees its tenant's updates.
type Hub struct {
	// Registered clients: TenantID -> connections (multi-user, multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil in single-node mode.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.TenantID] = append(h.clients[client.TenantID], client)
			h.mu.Unlock()
			h.logger.Info("hub", "client registered", map[string]interface{}{
				"tenant_id": client.TenantID,
				"user_id":   client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.TenantID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.TenantID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.TenantID]) == 0 {
					delete(h.clients, client.TenantID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PushDocumentStatus delivers a status transition to every connected client
// of the owning tenant, locally and via redis to the other instances.
func (h *Hub) PushDocumentStatus(tenantID uuid.UUID, push dto.DocumentStatusPush) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document_status",
		"data": push,
	})

	h.deliverLocal(tenantID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"tenant_id": tenantID.String(),
			"message":   json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(tenantID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[tenantID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("hub", "client send buffer full, dropping connection", map[string]interface{}{
				"tenant_id": tenantID,
				"user_id":   client.UserID,
			})
			// Unregister closes Send, which ends the client's write pump.
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers to the
	// tenants it has locally; messages for absent tenants are dropped here
	// and handled by whichever instance holds them.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TenantID string          `json:"tenant_id"`
			Message  json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("hub", "redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		tenantID, err := uuid.Parse(payload.TenantID)
		if err != nil {
			continue
		}
		h.deliverLocal(tenantID, payload.Message)
	}
}
