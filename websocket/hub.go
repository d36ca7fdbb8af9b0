package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// The hub pushes appointment status events to whichever participants are
// connected. Delivery is best effort; the audit trail in the database is
// the source of truth.

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// StatusEvent is the payload pushed to both appointment participants when
// the state machine records a transition.
type StatusEvent struct {
	AppointmentID string `json:"appointment_id"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Status stream connected: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Status stream disconnected: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		}
	}
}

// PushStatusEvent delivers the event to both participants' open
// connections, if any. A dead connection is dropped from the registry.
func PushStatusEvent(customerID, mechanicID uuid.UUID, event StatusEvent) {
	for _, userID := range []uuid.UUID{customerID, mechanicID} {
		clientsMu.RLock()
		conn, ok := clients[userID]
		clientsMu.RUnlock()
		if !ok {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Error pushing status event to %s: %v", userID, err)
			conn.Close()
			clientsMu.Lock()
			delete(clients, userID)
			clientsMu.Unlock()
		}
	}
}
