// Websocket implementation using Gorilla's Websocket library
package gorilla

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vipnode/jsonrpc/jsonrpc"
)

// Dial returns a Conn that exchanges one JSON message per websocket frame.
// It is a jsonrpc.Dialer.
func Dial(ctx context.Context, url string) (jsonrpc.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// NewConn wraps an established websocket connection.
func NewConn(conn *websocket.Conn) jsonrpc.Conn {
	return &wsConn{conn: conn}
}

var _ jsonrpc.Conn = &wsConn{}

type wsConn struct {
	muWrite sync.Mutex
	muRead  sync.Mutex
	conn    *websocket.Conn
}

func (c *wsConn) ReadMessage() (json.RawMessage, error) {
	c.muRead.Lock()
	defer c.muRead.Unlock()
	var msg json.RawMessage
	if err := c.conn.ReadJSON(&msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *wsConn) WriteMessage(msg json.RawMessage) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
