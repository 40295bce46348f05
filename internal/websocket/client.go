package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// balanceWriteWait bounds how long a slow subscriber may block a push.
	balanceWriteWait = 10 * time.Second
	// pongWait is how long a subscriber may stay silent before the feed
	// considers it gone; pings go out at a safe margin inside that window.
	pongWait     = 60 * time.Second
	pingInterval = 50 * time.Second
	// Inbound frames carry nothing; anything larger than a control frame
	// is a misbehaving client.
	maxInboundFrameSize = 512
)

// Client is a single subscriber to one user's balance feed. The feed is
// push-only: balance updates flow out, and inbound frames are read solely
// to detect disconnects and service pong handlers.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeBalanceFeed upgrades the connection and streams the user's balance
// updates until the subscriber goes away.
func ServeBalanceFeed(w http.ResponseWriter, r *http.Request, hub *Hub, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	client := &Client{
		conn: conn,
		send: make(chan []byte, 10),
	}
	hub.Register(userID, client)
	go client.pushBalances(hub, userID)
	client.drainInbound(hub, userID)
}

// drainInbound discards everything the subscriber sends. Its only job is to
// notice the connection dying and keep the pong deadline fresh.
func (c *Client) drainInbound(hub *Hub, userID string) {
	defer func() {
		hub.Unregister(userID, c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInboundFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// pushBalances forwards queued balance updates and keeps the connection
// alive with pings between mutations.
func (c *Client) pushBalances(hub *Hub, userID string) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		hub.Unregister(userID, c)
		_ = c.conn.Close()
	}()
	for {
		select {
		case update, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(balanceWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, update); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(balanceWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
