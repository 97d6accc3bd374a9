package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection of an authenticated user. TaxiType is
// the connected driver's vehicle type and stays empty for other roles.
type Client struct {
	ID       uint
	Role     models.Role
	TaxiType models.TaxiType
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

// Hub maintains the set of active clients and routes ride events to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.GetLogger().Debug("Hub.Run", "client connected", string(client.Role), fmt.Sprint(client.ID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.GetLogger().Debug("Hub.Run", "client disconnected", string(client.Role), fmt.Sprint(client.ID))
		}
	}
}

// sendWhere queues message for every client matching. Clients whose buffer is
// full are skipped.
func (h *Hub) sendWhere(match func(*Client) bool, message []byte) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sent := 0
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.Send <- message:
			sent++
		default:
			log.GetLogger().Warn("Hub.sendWhere", "send buffer full", string(client.Role), fmt.Sprint(client.ID))
		}
	}
	return sent
}

func (h *Hub) SendToUser(role models.Role, userID uint, message []byte) int {
	return h.sendWhere(func(c *Client) bool { return c.Role == role && c.ID == userID }, message)
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// AvailableRide is the driver-facing announcement of a newly paid ride.
type AvailableRide struct {
	RideID   uint            `json:"rideId"`
	TaxiType models.TaxiType `json:"taxiType"`
	At       time.Time       `json:"at"`
}

// RideChanged tells the ride's customer and driver about the event. Newly paid
// rides are also announced as available to drivers whose vehicle matches.
func (h *Hub) RideChanged(ctx context.Context, event RideEvent) {
	data, err := json.Marshal(WebSocketMessage{Type: event.Type, Data: event})
	if err != nil {
		log.GetLogger().Error("Hub.RideChanged", err.Error(), "marshal", fmt.Sprint(event.RideID))
		return
	}

	h.SendToUser(models.RoleCustomer, event.CustomerID, data)
	if event.DriverID != nil {
		h.SendToUser(models.RoleDriver, *event.DriverID, data)
	}

	if event.Type == EventRidePaid {
		available, err := json.Marshal(WebSocketMessage{
			Type: "ride_available",
			Data: AvailableRide{RideID: event.RideID, TaxiType: event.TaxiType, At: event.At},
		})
		if err == nil {
			h.sendWhere(func(c *Client) bool {
				return c.Role == models.RoleDriver && c.TaxiType != "" && c.TaxiType == event.TaxiType
			}, available)
		}
	}
}

// HandleWebSocket upgrades the request and attaches the connection to the hub.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role models.Role, taxiType models.TaxiType) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.GetLogger().Warn("HandleWebSocket", err.Error(), "upgrade", fmt.Sprint(userID))
		return
	}

	client := &Client{
		ID:       userID,
		Role:     role,
		TaxiType: taxiType,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the connection closing; clients do not send
// commands over the socket.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.GetLogger().Warn("Client.readPump", err.Error(), string(c.Role), fmt.Sprint(c.ID))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.GetLogger().Warn("Client.writePump", err.Error(), string(c.Role), fmt.Sprint(c.ID))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
