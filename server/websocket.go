package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lab1702/shiparena/game"
)

// isValidOrigin checks if the origin is allowed to connect
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("Invalid origin URL: %s", origin)
		return false
	}

	// Allow same-origin connections
	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	log.Printf("Rejected WebSocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Message types
const (
	MsgTypeUpdate  = "update"
	MsgTypeEvent   = "event"
	MsgTypePaused  = "paused"
	MsgTypeResumed = "resumed"
	MsgTypePause   = "pause"
	MsgTypeResume  = "resume"
	MsgTypeError   = "error"
)

const (
	sendBufferSize = 256
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
)

// ClientMessage represents a message from a spectator to the server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to spectators
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// UpdateData is the payload of an update message
type UpdateData struct {
	game.Snapshot
	Paused bool `json:"paused"`
}

// Client represents a connected spectator
type Client struct {
	ID     int
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
}

// Server fans arena updates out to websocket spectators and accepts
// pause and resume requests from them.
type Server struct {
	mu         sync.RWMutex
	clients    map[int]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan ServerMessage
	nextID     int
	scheduler  *Scheduler
	history    History
	done       chan struct{} // Closed when Run returns
}

// NewServer creates a spectator server for scheduler and subscribes it to ticks
func NewServer(scheduler *Scheduler) *Server {
	s := &Server{
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ServerMessage, sendBufferSize),
		scheduler:  scheduler,
		done:       make(chan struct{}),
	}
	scheduler.AddObserver(s)
	return s
}

// Run handles client registration and broadcasts until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			for id, client := range s.clients {
				delete(s.clients, id)
				close(client.send)
			}
			s.mu.Unlock()
			return nil

		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
			}
			s.mu.Unlock()
			log.Printf("Client %d disconnected", client.ID)

		case message := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				select {
				case client.send <- message:
				default:
					log.Printf("Warning: Client %d send buffer full, skipping broadcast", client.ID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected spectators
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// TickCompleted implements Observer
func (s *Server) TickCompleted(report game.TickReport, snap game.Snapshot) {
	s.publish(ServerMessage{Type: MsgTypeUpdate, Data: UpdateData{Snapshot: sanitizeSnapshot(snap), Paused: s.scheduler.Paused()}})
	for _, ev := range report.Events {
		s.publish(ServerMessage{Type: MsgTypeEvent, Data: sanitizeEvent(ev)})
	}
}

// PauseChanged implements Observer
func (s *Server) PauseChanged(paused bool) {
	msgType := MsgTypeResumed
	if paused {
		msgType = MsgTypePaused
	}
	s.publish(ServerMessage{Type: msgType, Data: map[string]any{"tick": s.scheduler.Tick()}})
}

// publish queues a broadcast without ever blocking the tick
func (s *Server) publish(msg ServerMessage) {
	select {
	case s.broadcast <- msg:
	default:
		log.Printf("Warning: broadcast queue full, dropping %s message", msg.Type)
	}
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	clientID := s.nextID
	s.nextID++
	s.mu.Unlock()

	client := &Client{
		ID:     clientID,
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		server: s,
	}

	// New spectators get the current arena before the next tick
	client.send <- ServerMessage{Type: MsgTypeUpdate, Data: UpdateData{
		Snapshot: sanitizeSnapshot(s.scheduler.Snapshot()),
		Paused:   s.scheduler.Paused(),
	}}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(msg)
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

			if err := c.conn.WriteJSON(message); err != nil {
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

func (c *Client) handleMessage(msg ClientMessage) {
	// Recover from any panic to prevent disconnection
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in handleMessage for client %d, type %s: %v", c.ID, msg.Type, r)
		}
	}()

	logClientMessage(c.ID, msg.Type)

	switch msg.Type {
	case MsgTypePause:
		c.server.scheduler.Pause()
	case MsgTypeResume:
		c.server.scheduler.Resume()
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.reply(ServerMessage{Type: MsgTypeError, Data: "unknown message type " + sanitizeText(msg.Type)})
	}
}

// reply sends a message to this client only
func (c *Client) reply(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		log.Printf("Warning: Client %d send buffer full, dropping reply", c.ID)
	}
}
