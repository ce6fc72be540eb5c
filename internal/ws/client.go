package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	sendBuffer   = 32
)

// Client wraps one dashboard subscriber connection.
type Client struct {
	ws      *websocket.Conn
	send    chan []byte
	logger  *zap.Logger
	onClose func(*Client)

	closeOnce sync.Once
}

// NewClient builds a subscriber wrapper.
func NewClient(ws *websocket.Conn, logger *zap.Logger, onClose func(*Client)) *Client {
	return &Client{
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		logger:  logger,
		onClose: onClose,
	}
}

// Start launches the pumps and blocks until the connection drops.
func (c *Client) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump()
}

// enqueue hands a payload to the write pump; false means the buffer is
// full and the subscriber is too slow.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Ping sends a control ping.
func (c *Client) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Close tears the connection down once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

// readPump discards client frames; the feed is one-way. It exists to
// notice disconnects and answer pongs.
func (c *Client) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(1024)
	_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("fleet feed write failed", zap.Error(err))
				return
			}
		}
	}
}
