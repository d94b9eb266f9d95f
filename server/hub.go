package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
	publishBuffer  = 256
)

// MessageEvents is the type of the message sent for every batch of engine events
const MessageEvents = "events"

// Message is what subscribers of a tournament room receive
type Message struct {
	Type       string             `json:"type"`
	Tournament string             `json:"tournament"`
	Events     []tournament.Event `json:"events"`
}

type roomMessage struct {
	room string
	data []byte
}

// Client is one websocket connection subscribed to a tournament
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub fans engine events out to the websocket clients watching each tournament. Rooms are only
// changed by the Run loop.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	done       chan struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		rooms:      map[string]map[*Client]bool{},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, publishBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run processes subscriptions and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[c.room]; !ok {
				h.rooms[c.room] = map[*Client]bool{}
			}
			h.rooms[c.room][c] = true
			log.Debug().Str("tournament", c.room).Int("clients", len(h.rooms[c.room])).Msg("client subscribed")
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.data:
				default:
					log.Warn().Str("tournament", msg.room).Msg("client too slow, dropping it")
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held
func (h *Hub) drop(c *Client) {
	clients, ok := h.rooms[c.room]
	if !ok || !clients[c] {
		return
	}
	close(c.send)
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	log.Debug().Str("tournament", c.room).Msg("client unsubscribed")
}

// Subscribers counts the clients currently watching a tournament
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Publish queues events for every client of the tournament room. It never blocks, a full queue
// drops the batch.
func (h *Hub) Publish(tournamentID string, events []tournament.Event) {
	data, err := json.Marshal(Message{Type: MessageEvents, Tournament: tournamentID, Events: events})
	if err != nil {
		log.Error().Err(err).Str("tournament", tournamentID).Msg("unable to encode events")
		return
	}
	select {
	case h.broadcast <- roomMessage{room: tournamentID, data: data}:
	default:
		log.Warn().Str("tournament", tournamentID).Int("events", len(events)).Msg("publish queue full, events dropped")
	}
}

// ServeWs upgrades the request and subscribes the connection to a tournament room
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: room}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only keeps the connection alive, clients have nothing to say
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("tournament", c.room).Msg("websocket closed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("tournament", c.room).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
