package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers c as a viewer of sessionId and blocks until it disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, sessionId string) {
	client := &Client{Hub: hub, Conn: c, SessionId: sessionId, Send: make(chan []byte, 64)}
	if !hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
