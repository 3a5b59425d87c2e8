package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vipnode/jsonrpc/internal/pretty"
)

// ErrPendingDiscarded is returned for a request whose pending slot was
// reclaimed because PendingLimit was reached.
var ErrPendingDiscarded = errors.New("jsonrpc: pending request discarded")

// ErrDuplicateID is returned when a request reuses the id of a request still
// waiting on the same connection.
var ErrDuplicateID = errors.New("jsonrpc: duplicate pending request id")

// Conn is a message-oriented connection carrying one JSON value per message.
type Conn interface {
	ReadMessage() (json.RawMessage, error)
	WriteMessage(json.RawMessage) error
	Close() error
}

// Dialer opens a Conn to address.
type Dialer func(ctx context.Context, address string) (Conn, error)

var _ Transport = &StreamTransport{}

// StreamTransport multiplexes requests over one Conn per address and routes
// replies back to their senders by id. A connection that fails to read is
// dropped, every request waiting on it fails, and the next Send redials.
type StreamTransport struct {
	Dial Dialer

	// PendingLimit is the number of requests to hold before oldest requests get discarded.
	PendingLimit int
	// PendingDiscard is the number of oldest requests that get discarded when PendingLimit is reached.
	PendingDiscard int

	mu      sync.Mutex
	streams map[string]*stream
}

func (t *StreamTransport) Send(ctx context.Context, address string, request []byte) ([]byte, error) {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	key := compactID(req.ID)

	s, err := t.stream(ctx, address)
	if err != nil {
		return nil, err
	}
	replyChan, err := s.register(key)
	if err != nil {
		return nil, err
	}
	if err := s.write(request); err != nil {
		s.unregister(key)
		return nil, err
	}

	select {
	case reply := <-replyChan:
		return reply.data, reply.err
	case <-ctx.Done():
		s.unregister(key)
		return nil, ctx.Err()
	}
}

// Close closes every open connection. Requests waiting on them fail.
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	streams := t.streams
	t.streams = nil
	t.mu.Unlock()

	var firstErr error
	for _, s := range streams {
		if err := s.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *StreamTransport) stream(ctx context.Context, address string) (*stream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.streams[address]; ok {
		return s, nil
	}
	if t.Dial == nil {
		return nil, errors.New("jsonrpc: StreamTransport has no Dial function")
	}
	conn, err := t.Dial(ctx, address)
	if err != nil {
		return nil, err
	}
	if t.streams == nil {
		t.streams = map[string]*stream{}
	}
	s := &stream{
		owner:   t,
		address: address,
		conn:    conn,
		pending: map[string]pendingMsg{},
	}
	t.streams[address] = s
	logger.Debugf("Connected stream to %s", address)
	go s.serve()
	return s, nil
}

// drop forgets s if it is still the active stream for its address.
func (t *StreamTransport) drop(s *stream) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.streams[s.address] == s {
		delete(t.streams, s.address)
	}
}

type stream struct {
	owner   *StreamTransport
	address string
	conn    Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]pendingMsg
	err     error
}

// cleanPending fails and removes num oldest entries, must hold the s.mu lock.
func (s *stream) cleanPending(num int) {
	for _, item := range pendingOldest(s.pending, num) {
		s.pending[item.key].replyChan <- pendingReply{err: ErrPendingDiscarded}
		delete(s.pending, item.key)
	}
}

func (s *stream) register(key string) (chan pendingReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.pending[key]; ok {
		return nil, ErrDuplicateID
	}
	if limit := s.owner.PendingLimit; limit > 0 && len(s.pending) >= limit && s.owner.PendingDiscard > 0 {
		s.cleanPending(s.owner.PendingDiscard)
	}
	msg := pendingMsg{
		replyChan: make(chan pendingReply, 1),
		timestamp: time.Now(),
	}
	s.pending[key] = msg
	return msg.replyChan, nil
}

func (s *stream) unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}

func (s *stream) write(request []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(request)
}

func (s *stream) serve() {
	for {
		msg, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		s.route(msg)
	}
}

func (s *stream) route(msg json.RawMessage) {
	var reply struct {
		ID json.RawMessage `json:"id"`
	}
	if isArray(msg) || json.Unmarshal(msg, &reply) != nil || len(reply.ID) == 0 {
		logger.Warningf("Dropping invalid message from %s: %s", s.address, pretty.Bytes(msg))
		return
	}
	key := compactID(reply.ID)

	s.mu.Lock()
	pending, ok := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()

	if !ok {
		logger.Warningf("Dropping reply from %s with unknown id: %s", s.address, key)
		return
	}
	pending.replyChan <- pendingReply{data: msg}
}

// fail stops the stream and fails every pending request with err.
func (s *stream) fail(err error) {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	s.owner.drop(s)
	s.conn.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	for key, pending := range s.pending {
		pending.replyChan <- pendingReply{err: err}
		delete(s.pending, key)
	}
	logger.Debugf("Stream to %s closed: %s", s.address, err)
}

// IOConn returns a Conn exchanging newline-delimited JSON values over rwc.
func IOConn(rwc io.ReadWriteCloser) Conn {
	return &ioConn{
		dec:    json.NewDecoder(rwc),
		enc:    json.NewEncoder(rwc),
		closer: rwc,
	}
}

type ioConn struct {
	muRead  sync.Mutex
	muWrite sync.Mutex
	dec     *json.Decoder
	enc     *json.Encoder
	closer  io.Closer
}

func (c *ioConn) ReadMessage() (json.RawMessage, error) {
	c.muRead.Lock()
	defer c.muRead.Unlock()
	var msg json.RawMessage
	if err := c.dec.Decode(&msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *ioConn) WriteMessage(msg json.RawMessage) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	return c.enc.Encode(msg)
}

func (c *ioConn) Close() error {
	return c.closer.Close()
}
