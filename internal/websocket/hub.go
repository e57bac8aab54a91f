package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
)

const (
	// EventReviewCreated is the only event pushed on the review feed
	EventReviewCreated = "review_created"

	sendBufferSize = 64
)

// Event is the envelope written to subscribers.
type Event struct {
	Type      string        `json:"type"`
	ProductID uint          `json:"product_id"`
	Review    *model.Review `json:"review"`
}

// Client is one websocket subscriber of a product's review feed.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	ProductID uint
	UserID    uint
	Send      chan []byte
}

type broadcastMessage struct {
	productID uint
	payload   []byte
}

// Hub fans review events out to the subscribers of each product.
// Run owns registration; the rooms map is also read under mu by Subscribers.
type Hub struct {
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
	}
}

// Run processes hub events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for productID, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.rooms, productID)
			}
			h.mu.Unlock()
			logger.Info("Review hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.ProductID]; !ok {
				h.rooms[client.ProductID] = make(map[*Client]bool)
			}
			h.rooms[client.ProductID][client] = true
			subscribers := len(h.rooms[client.ProductID])
			h.mu.Unlock()

			logger.Info("Review feed subscriber registered", map[string]interface{}{
				"product_id":  client.ProductID,
				"user_id":     client.UserID,
				"subscribers": subscribers,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var stale []*Client
			for client := range h.rooms[message.productID] {
				select {
				case client.Send <- message.payload:
				default:
					stale = append(stale, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stale {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"product_id": client.ProductID,
					"user_id":    client.UserID,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.ProductID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.ProductID)
	}
	close(client.Send)

	logger.Info("Review feed subscriber unregistered", map[string]interface{}{
		"product_id":  client.ProductID,
		"user_id":     client.UserID,
		"subscribers": len(clients),
	})
}

// BroadcastReview queues the review for every subscriber of its product.
// A full queue drops the event rather than blocking the request path.
func (h *Hub) BroadcastReview(review *model.Review) {
	if review == nil {
		return
	}

	data, err := json.Marshal(Event{
		Type:      EventReviewCreated,
		ProductID: review.ProductID,
		Review:    review,
	})
	if err != nil {
		logger.Error("Failed to marshal review event", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{productID: review.ProductID, payload: data}:
	default:
		logger.Warn("Broadcast channel full, review event dropped", map[string]interface{}{
			"product_id": review.ProductID,
			"review_id":  review.ID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribers reports how many clients currently follow a product.
func (h *Hub) Subscribers(productID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[productID])
}
