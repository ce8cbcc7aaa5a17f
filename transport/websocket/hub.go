package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mkowalska/anime-security-training/game/world"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Intent messages are tiny.
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// InboundMessage is what clients send: intent reports plus simple
// control requests.
type InboundMessage struct {
	Type   string        `json:"type"` // "intent"
	Intent *world.Intent `json:"intent,omitempty"`
}

// OutboundMessage wraps a broadcast frame.
type OutboundMessage struct {
	Event string                `json:"event"`
	Frame *world.RenderSnapshot `json:"frame,omitempty"`
	Data  interface{}           `json:"data,omitempty"`
}

// IntentSink receives intents parsed from client messages. The API
// server wires this to the world service.
type IntentSink func(in world.Intent)

// Client represents a connected WebSocket peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients, fans frames out to all of
// them, and forwards their intents to the sink. All clients watch the
// same world.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	intents IntentSink
}

// NewHub creates a hub. sink may be nil for watch-only transports.
func NewHub(sink IntentSink) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		intents:    sink,
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Log.Infof("websocket client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			h.dropClient(client)

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Send buffer full; the client cannot keep up.
					h.dropClient(client)
				}
			}
		}
	}
}

// ServeWS handles a WebSocket upgrade request.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// Publish marshals a frame and queues it for every connected client.
// It implements the service publisher interface and never blocks the
// simulation loop; a full broadcast queue drops the frame.
func (h *Hub) Publish(snap *world.RenderSnapshot) {
	msg := OutboundMessage{Event: "frame", Frame: snap}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Warnf("marshal frame: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}

// BroadcastEvent sends a custom event to every connected client.
func (h *Hub) BroadcastEvent(event string, data interface{}) {
	msg := OutboundMessage{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Warnf("marshal event: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		logger.Log.Infof("websocket client disconnected (remaining: %d)", len(h.clients))
	}
}

// readPump pumps intent messages from the connection into the sink.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warnf("websocket read: %v", err)
			}
			break
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Log.Debugf("websocket: bad message: %v", err)
			continue
		}
		if msg.Type == "intent" && msg.Intent != nil && c.hub.intents != nil {
			c.hub.intents(*msg.Intent)
		}
	}
}

// writePump pumps broadcast frames from the hub to the connection.
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce queued frames into the current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
