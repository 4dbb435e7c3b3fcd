package connection

import (
	"context"
	"sync"
)

// UnauthorizedEvent describes the request that was rejected with 401.
type UnauthorizedEvent struct {
	Method    string
	Path      string
	RequestID string
}

// UnauthorizedHandler reacts to a 401 after the session was cleared.
type UnauthorizedHandler func(ctx context.Context, ev UnauthorizedEvent)

type handlerSet struct {
	mu       sync.RWMutex
	handlers []UnauthorizedHandler
}

func (s *handlerSet) add(h UnauthorizedHandler) {
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

func (s *handlerSet) emit(ctx context.Context, ev UnauthorizedEvent) {
	s.mu.RLock()
	hs := append([]UnauthorizedHandler(nil), s.handlers...)
	s.mu.RUnlock()

	for _, h := range hs {
		h(ctx, ev)
	}
}
