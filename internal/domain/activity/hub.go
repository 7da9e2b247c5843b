package activity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pubsubChannel = "fotolume:activity"

// Event types pushed to the admin feed
const (
	EventGalleryAccess = "gallery_access"
	EventDownload      = "download"
	EventFavorite      = "favorite"
)

// Event is one entry in the admin activity feed
type Event struct {
	Type       string     `json:"type"`
	GalleryID  uuid.UUID  `json:"gallery_id"`
	Slug       string     `json:"slug,omitempty"`
	ImageID    *uuid.UUID `json:"image_id,omitempty"`
	ClientIP   string     `json:"client_ip"`
	IsFavorite *bool      `json:"is_favorite,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Hub fans activity events out to connected admin dashboards. With Redis
// available, events are published through pub/sub so every API instance
// sees them; without it the hub is local to the process.
type Hub struct {
	mu      sync.RWMutex
	conns   map[*websocket.Conn]bool
	rdb     *redis.Client
	writeMu sync.Mutex
}

// NewHub creates a new activity hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		rdb:   rdb,
	}
}

// Run subscribes to the Redis channel and relays events until the context
// is cancelled. A no-op without Redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	sub := h.rdb.Subscribe(ctx, pubsubChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver([]byte(msg.Payload))
		}
	}
}

// Register adds an admin connection to the hub
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

// Unregister removes an admin connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// ConnectionCount reports the number of connected dashboards
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast publishes an event to every admin dashboard
func (h *Hub) Broadcast(event Event) {
	event.OccurredAt = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal activity event")
		return
	}

	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), pubsubChannel, payload).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to publish activity event, delivering locally")
			h.deliver(payload)
		}
		return
	}

	h.deliver(payload)
}

func (h *Hub) deliver(payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.Unregister(conn)
		}
	}
}

// NotifyAccess implements the gallery service's notifier
func (h *Hub) NotifyAccess(galleryID uuid.UUID, slug, clientIP string) {
	h.Broadcast(Event{
		Type:      EventGalleryAccess,
		GalleryID: galleryID,
		Slug:      slug,
		ClientIP:  clientIP,
	})
}

// NotifyDownload implements the download service's notifier
func (h *Hub) NotifyDownload(galleryID, imageID uuid.UUID, clientIP string) {
	h.Broadcast(Event{
		Type:      EventDownload,
		GalleryID: galleryID,
		ImageID:   &imageID,
		ClientIP:  clientIP,
	})
}

// NotifyFavorite implements the favorite service's notifier
func (h *Hub) NotifyFavorite(galleryID, imageID uuid.UUID, clientIP string, isFavorite bool) {
	h.Broadcast(Event{
		Type:       EventFavorite,
		GalleryID:  galleryID,
		ImageID:    &imageID,
		ClientIP:   clientIP,
		IsFavorite: &isFavorite,
	})
}
