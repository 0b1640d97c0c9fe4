package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn     *websocket.Conn
	id       string
	userID   string
	userName string
	sendMu   chan struct{}
	closed   chan struct{}
}

func newWsConn(c *websocket.Conn, id, userID, userName string) *wsConn {
	return &wsConn{
		conn:     c,
		id:       id,
		userID:   userID,
		userName: userName,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string       { return c.id }
func (c *wsConn) UserID() string   { return c.userID }
func (c *wsConn) UserName() string { return c.userName }
