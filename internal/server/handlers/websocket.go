// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"poidash/internal/adapter/events"
	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
	dashboardService "poidash/internal/service/dashboard"
	"poidash/internal/service/export"
)

// Message types sent by the client
const (
	MessageSearch   = "search"
	MessageCategory = "category"
	MessagePage     = "page"
	MessageView     = "view"
	MessageNavigate = "navigate"
	MessageRetry    = "retry"
	MessageExport   = "export"
)

// Message types sent by the server
const (
	MessageState    = "state"
	MessageLocation = "location"
	MessageError    = "error"
)

// ClientMessage is a command from the dashboard renderer
type ClientMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
	View     int    `json:"view,omitempty"`
	Query    string `json:"query,omitempty"`
}

// ServerMessage is an event pushed to the dashboard renderer
type ServerMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ExportPayload carries a serialized export
type ExportPayload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// ErrorPayload carries a command error
type ErrorPayload struct {
	Message string `json:"message"`
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are restricted by the CORS layer
		return true
	},
}

// DashboardClient is one websocket connection driving one dashboard session
type DashboardClient struct {
	conn          *websocket.Conn
	send          chan []byte
	done          chan struct{}
	closeOnce     sync.Once
	session       *dashboardService.Session
	subscriptions []dashboard.Subscription
}

// DashboardWebSocketHandler opens an interactive dashboard session per
// connection. The request query is the initial persisted query.
func DashboardWebSocketHandler(
	source poi.Source,
	bus dashboard.EventBus,
	config dashboardService.SessionConfig,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initial, err := dashboard.ParseQuery(r.URL.RawQuery)
		if err != nil {
			log.Printf("Ignoring malformed dashboard query %q: %v", r.URL.RawQuery, err)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		sessionBus := bus
		if sessionBus == nil {
			sessionBus = events.NewMemoryBus()
		}

		client := &DashboardClient{
			conn:    conn,
			send:    make(chan []byte, 256),
			done:    make(chan struct{}),
			session: dashboardService.NewSession(source, nil, sessionBus, initial, config),
		}

		if err := client.subscribe(sessionBus); err != nil {
			log.Printf("Failed to subscribe to dashboard session: %v", err)
			client.closeConnection()
			return
		}

		go client.writePump()
		go client.readPump()

		log.Printf("New dashboard session %s (query %q)", client.session.ID(), initial.Encode())

		client.session.Start()
	}
}

// subscribe forwards the session's bus events to the connection
func (c *DashboardClient) subscribe(bus dashboard.EventBus) error {
	stateSub, err := bus.Subscribe(c.session.ViewSubject(), func(msg dashboard.Message) {
		c.enqueue(MessageState, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to view events: %w", err)
	}
	c.subscriptions = append(c.subscriptions, stateSub)

	locationSub, err := bus.Subscribe(c.session.LocationSubject(), func(msg dashboard.Message) {
		c.enqueue(MessageLocation, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to location events: %w", err)
	}
	c.subscriptions = append(c.subscriptions, locationSub)

	return nil
}

// enqueue never blocks: bus handlers may run while the session holds its locks
func (c *DashboardClient) enqueue(msgType string, payload []byte) {
	data, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", msgType, err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("Dropping %s message for slow dashboard session %s", msgType, c.session.ID())
	}
}

func (c *DashboardClient) enqueueJSON(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", msgType, err)
		return
	}
	c.enqueue(msgType, data)
}

// readPump applies commands from the WebSocket connection to the session
func (c *DashboardClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.processIncomingMessage(message)
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *DashboardClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processIncomingMessage processes an incoming WebSocket message
func (c *DashboardClient) processIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Failed to parse WebSocket message: %v", err)
		c.sendError("malformed message")
		return
	}

	switch msg.Type {
	case MessageSearch:
		c.session.Input(msg.Text)

	case MessageCategory:
		c.session.SetCategory(msg.Category)

	case MessagePage:
		if err := c.session.SetPage(msg.Page); err != nil {
			c.sendError(err.Error())
		}

	case MessageView:
		if err := c.session.SetView(msg.View); err != nil {
			c.sendError(err.Error())
		}

	case MessageNavigate:
		if err := c.session.Navigate(msg.Query); err != nil {
			c.sendError(err.Error())
		}

	case MessageRetry:
		c.session.Retry()

	case MessageExport:
		c.enqueueJSON(MessageExport, ExportPayload{
			Filename:    export.Filename,
			ContentType: export.ContentType,
			Data:        c.session.Export(),
		})

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *DashboardClient) sendError(message string) {
	c.enqueueJSON(MessageError, ErrorPayload{Message: message})
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *DashboardClient) closeConnection() {
	c.closeOnce.Do(func() {
		close(c.done)

		c.session.Close()
		for _, sub := range c.subscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()

		log.Printf("Dashboard session %s closed", c.session.ID())
	})
}
