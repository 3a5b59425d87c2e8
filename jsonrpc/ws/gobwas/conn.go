package gobwas

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/vipnode/jsonrpc/jsonrpc"
)

// Dial returns a client-side Conn that exchanges one JSON message per
// websocket frame. It is a jsonrpc.Dialer.
func Dial(ctx context.Context, url string) (jsonrpc.Conn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	var src io.Reader = conn
	if br != nil {
		// Frames sent right after the handshake are already buffered.
		src = io.MultiReader(br, conn)
	}
	return clientConn(conn, src), nil
}

func clientConn(conn net.Conn, src io.Reader) jsonrpc.Conn {
	return &wsConn{
		conn: conn,
		r:    wsutil.NewReader(src, ws.StateClientSide),
		w:    wsutil.NewWriter(conn, ws.StateClientSide, ws.OpText),
	}
}

// serverConn is the server side of a connection, used in tests.
func serverConn(conn net.Conn) jsonrpc.Conn {
	return &wsConn{
		conn: conn,
		r:    wsutil.NewReader(conn, ws.StateServerSide),
		w:    wsutil.NewWriter(conn, ws.StateServerSide, ws.OpText),
	}
}

var _ jsonrpc.Conn = &wsConn{}

type wsConn struct {
	muRead  sync.Mutex
	muWrite sync.Mutex
	conn    net.Conn
	r       *wsutil.Reader
	w       *wsutil.Writer
}

func (c *wsConn) ReadMessage() (json.RawMessage, error) {
	c.muRead.Lock()
	defer c.muRead.Unlock()
	for {
		header, err := c.r.NextFrame()
		if err != nil {
			return nil, err
		}
		if header.OpCode == ws.OpClose {
			return nil, io.EOF
		}
		if header.OpCode.IsControl() {
			if _, err := io.Copy(ioutil.Discard, c.r); err != nil {
				return nil, err
			}
			continue
		}
		data, err := ioutil.ReadAll(c.r)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	}
}

func (c *wsConn) WriteMessage(msg json.RawMessage) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	if _, err := c.w.Write(msg); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
