package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // observers connect from member devices on any origin
	},
}

// clientAction is a JSON message sent by an observing client. Observers
// are read-only with respect to meeting state: the only actions are
// subscribing to and unsubscribing from meeting channels. Commands go
// through the HTTP API.
type clientAction struct {
	Action    string `json:"action"`
	MeetingID uint   `json:"meeting_id"`
}

// Client is a single observer connection and its meeting subscriptions.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	meetings map[uint]bool
	mu       sync.Mutex
}

// Hub fans meeting-state updates out to every device observing a meeting.
// No command waits for an observer: a client that cannot keep up is
// dropped, never blocked on.
type Hub struct {
	clients map[*Client]bool

	// meetingSubs maps meeting IDs to sets of subscribed clients.
	meetingSubs map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg

	log zerolog.Logger
	mu  sync.RWMutex
}

// broadcastMsg pairs a meeting ID with the JSON state document to send.
type broadcastMsg struct {
	meetingID uint
	data      []byte
}

// NewHub creates a Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		meetingSubs: make(map[uint]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan broadcastMsg, 256),
		log:         log,
	}
}

// Run starts the hub's event loop. It must be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.dropLocked(client)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.meetingSubs[msg.meetingID] {
				select {
				case client.send <- msg.data:
				default:
					// Send buffer full; the observer is too slow.
					h.dropLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropLocked removes a client and all its subscriptions. Callers hold h.mu.
func (h *Hub) dropLocked(client *Client) {
	delete(h.clients, client)
	close(client.send)
	client.mu.Lock()
	for id := range client.meetings {
		if subs, ok := h.meetingSubs[id]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.meetingSubs, id)
			}
		}
	}
	client.mu.Unlock()
}

// Broadcast sends a state document to every observer of the meeting.
func (h *Hub) Broadcast(meetingID uint, state []byte) {
	h.broadcast <- broadcastMsg{meetingID: meetingID, data: state}
}

func (h *Hub) subscribe(client *Client, meetingID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.meetings[meetingID] = true
	client.mu.Unlock()

	if h.meetingSubs[meetingID] == nil {
		h.meetingSubs[meetingID] = make(map[*Client]bool)
	}
	h.meetingSubs[meetingID][client] = true
}

func (h *Hub) unsubscribe(client *Client, meetingID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.meetings, meetingID)
	client.mu.Unlock()

	if subs, ok := h.meetingSubs[meetingID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.meetingSubs, meetingID)
		}
	}
}

// readPump handles subscribe/unsubscribe actions from the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn().Err(err).Msg("ws: unexpected close")
			}
			break
		}

		var action clientAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.log.Warn().Err(err).Msg("ws: invalid client message")
			continue
		}

		switch action.Action {
		case "subscribe":
			if action.MeetingID != 0 {
				c.hub.subscribe(c, action.MeetingID)
			}
		case "unsubscribe":
			if action.MeetingID != 0 {
				c.hub.unsubscribe(c, action.MeetingID)
			}
		default:
			c.hub.log.Warn().Str("action", action.Action).Msg("ws: unknown action")
		}
	}
}

// writePump pumps state documents from the hub to the connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}

	// Channel closed; write a close message.
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWs upgrades the request and registers the new observer.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		meetings: make(map[uint]bool),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}
