package notify

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one renderer subscribed to console changes.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan Message
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

// Run registers the client and streams notifications until the renderer
// disconnects or ctx ends. Renderers never send; CloseRead discards their
// frames and cancels the stream when the connection closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx = c.conn.CloseRead(ctx)
	if err := c.stream(ctx); err != nil {
		c.hub.logger.Debug("renderer disconnected", "error", err)
	}
	c.conn.Close(ws.StatusNormalClosure, "")
}

func (c *Client) stream(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return nil
			}
			if err := c.write(ctx, msg); err != nil {
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}
