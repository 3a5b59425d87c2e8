package jsonrpc

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces correlation tokens for calls. Tokens must be unique
// among the outstanding calls of one Service.
type IDGenerator interface {
	NextID() interface{}
}

var _ IDGenerator = &SequentialIDs{}

// SequentialIDs issues increasing integer ids starting at 1.
type SequentialIDs struct {
	id int64
}

func (s *SequentialIDs) NextID() interface{} {
	return atomic.AddInt64(&s.id, 1)
}

var _ IDGenerator = UUIDs{}

// UUIDs issues random UUID strings.
type UUIDs struct{}

func (UUIDs) NextID() interface{} {
	return uuid.New().String()
}
