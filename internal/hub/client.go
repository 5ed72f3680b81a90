package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	gwebsocket "github.com/gorilla/websocket"

	"github.com/tbraam/gamehub-server/internal/state"
	"github.com/tbraam/gamehub-server/pkg/auth"
	"github.com/tbraam/gamehub-server/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 256 * 1024
)

// Client is one live websocket connection. Its ID identifies the
// connection inside the hub; Identity is set when the client presented a
// valid token and zero otherwise.
type Client struct {
	ID       string
	Identity auth.Identity

	hub  *Hub
	conn *gwebsocket.Conn
	send chan []byte

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewClient wraps an upgraded connection. Call ReadPump on the request
// goroutine and WritePump on its own.
func NewClient(h *Hub, conn *gwebsocket.Conn, identity auth.Identity) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Identity: identity,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.sendBuf),
		rooms:    make(map[string]*Room),
	}
}

// enqueue queues an outbound frame without blocking. A slow consumer loses
// frames rather than stalling the room.
func (c *Client) enqueue(message []byte) {
	if message == nil {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

func (c *Client) addRoom(r *Room) {
	c.mu.Lock()
	c.rooms[r.ID] = r
	c.mu.Unlock()
}

func (c *Client) removeRoom(id string) {
	c.mu.Lock()
	delete(c.rooms, id)
	c.mu.Unlock()
}

// joinedRooms snapshots the rooms this connection belongs to.
func (c *Client) joinedRooms() []*Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// ReadPump consumes inbound frames until the connection drops, then runs
// disconnect cleanup for every room the connection had joined.
func (c *Client) ReadPump() {
	defer c.teardown()

	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if gwebsocket.IsUnexpectedCloseError(err, gwebsocket.CloseGoingAway, gwebsocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("websocket read error")
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			// Garbage frames degrade to a no-op.
			continue
		}
		c.dispatch(envelope)
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
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
				c.conn.WriteMessage(gwebsocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gwebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gwebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown removes the connection from every room it joined. Each room's
// cleanup runs under that room's lock, so it cannot race a concurrent join
// or update for the same room.
func (c *Client) teardown() {
	for _, room := range c.joinedRooms() {
		room.Disconnect(c)
	}
	close(c.send)
	c.conn.Close()
}

func (c *Client) dispatch(envelope Envelope) {
	switch envelope.Event {
	case EventJoin:
		var payload JoinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.Room == "" {
			return
		}
		mode, err := state.ParseMode(payload.Mode)
		if err != nil {
			log.Debug().Str("mode", payload.Mode).Msg("join with unknown mode")
			return
		}
		c.hub.GetOrCreateRoom(payload.Room).Join(c, mode)

	case EventLeave:
		var payload LeavePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		if room := c.hub.Room(payload.Room); room != nil {
			room.Leave(c)
		}

	case EventRequestState:
		var payload RequestStatePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		mode, err := state.ParseMode(payload.Mode)
		if err != nil {
			return
		}
		if room := c.hub.Room(payload.Room); room != nil {
			room.RequestState(c, mode)
		}

	case EventStateUpdate:
		var payload StateUpdatePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		// A missing state payload is an idempotent no-op.
		if len(payload.State) == 0 {
			return
		}
		mode, err := state.ParseMode(payload.Mode)
		if err != nil {
			return
		}
		if room := c.hub.Room(payload.Room); room != nil {
			room.ApplyUpdate(c, mode, payload.ClientID, payload.State)
		}

	case EventInputUpdate:
		var payload InputUpdatePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		mode, err := state.ParseMode(payload.Mode)
		if err != nil {
			return
		}
		payload.Mode = mode.String()
		if room := c.hub.Room(payload.Room); room != nil {
			room.RelayInput(c, payload)
		}

	case EventGameOver:
		var payload GameOverPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		mode, err := state.ParseMode(payload.Mode)
		if err != nil {
			return
		}
		payload.Mode = mode.String()
		if room := c.hub.Room(payload.Room); room != nil {
			room.GameOver(c, payload)
		}
	}
}
