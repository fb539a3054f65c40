// Package websocket pushes dashboard state to connected admin sessions.
// Server-to-client events are "update" (full snapshot) and "log" (single
// activity entry); clients send "request-update" to force a recompute and
// "theme-changed" for cosmetics.
package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Manager struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// onRequestUpdate is invoked when any client asks for fresh data.
	onRequestUpdate func()
}

type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	manager *Manager
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// OnRequestUpdate sets the refresh callback. Must be called before Start.
func (m *Manager) OnRequestUpdate(fn func()) {
	m.onRequestUpdate = fn
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.clients[client] = true
			log.Debug().Int("clients", len(m.clients)).Msg("dashboard client connected")

		case client := <-m.unregister:
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
			}
			log.Debug().Int("clients", len(m.clients)).Msg("dashboard client disconnected")

		case message := <-m.broadcast:
			for client := range m.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(m.clients, client)
				}
			}
		}
	}
}

// BroadcastUpdate pushes a full snapshot to every connected session.
func (m *Manager) BroadcastUpdate(snapshot interface{}) {
	m.emit("update", snapshot)
}

// BroadcastLog pushes a single activity-log entry to every connected session.
func (m *Manager) BroadcastLog(entry interface{}) {
	m.emit("log", entry)
}

func (m *Manager) emit(event string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":    event,
		"payload": payload,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast failed")
		return
	}
	m.broadcast <- msg
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the connection. authorize validates the admin token passed
// as a query parameter; pass nil when dashboard auth is disabled.
func Handler(manager *Manager, authorize func(token string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authorize != nil {
			if err := authorize(r.URL.Query().Get("token")); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:    conn,
			send:    make(chan []byte, 256),
			manager: manager,
		}

		manager.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("websocket read error")
			}
			break
		}

		var data struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(message, &data); err != nil {
			log.Error().Err(err).Msg("websocket message unmarshal error")
			continue
		}

		switch data.Type {
		case "request-update":
			if fn := c.manager.onRequestUpdate; fn != nil {
				go fn()
			}
		case "theme-changed":
			// Cosmetic only, nothing to persist server-side.
			log.Debug().RawJSON("payload", data.Payload).Msg("theme changed")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
