package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/fretnav/api/internal/model"
)

// Client is one socket subscribed to a job
type Client struct {
	JobID string
	Conn  *websocket.Conn
	Send  chan []byte
}

// Hub fans job events out to subscribed sockets
type Hub struct {
	// Clients grouped by job ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage is an encoded event for one job
type BroadcastMessage struct {
	JobID   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.JobID] == nil {
				h.clients[client.JobID] = make(map[*Client]bool)
			}
			h.clients[client.JobID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for job %s", client.JobID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Printf("Client unregistered from job %s", client.JobID)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.JobID] {
				select {
				case client.Send <- msg.Message:
				default:
					// Slow consumer; drop it rather than stall every job.
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.JobID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.JobID)
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribers returns the number of sockets listening on a job.
func (h *Hub) Subscribers(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[jobID])
}

func (h *Hub) publish(jobID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %T: %v", msg, err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		JobID:   jobID,
		Message: data,
	}
}

// BroadcastProgress sends a progress update to all job subscribers
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.publish(jobID, model.WSProgressMessage{
		Type:        model.WSMessageTypeProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastPage announces a finished cheatsheet page with its text diagram
func (h *Hub) BroadcastPage(jobID string, index, total int, root, text string) {
	h.publish(jobID, model.WSPageMessage{
		Type:  model.WSMessageTypePage,
		JobID: jobID,
		Index: index,
		Total: total,
		Root:  root,
		Text:  text,
	})
}

// BroadcastComplete sends a completion message to all job subscribers
func (h *Hub) BroadcastComplete(jobID string, result interface{}) {
	h.publish(jobID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastError sends an error message to all job subscribers
func (h *Hub) BroadcastError(jobID string, code, message string) {
	h.publish(jobID, model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

// HandleConnection serves one socket until the peer goes away
func (h *Hub) HandleConnection(c *websocket.Conn, jobID string) {
	client := &Client{
		JobID: jobID,
		Conn:  c,
		Send:  make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			data, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}
