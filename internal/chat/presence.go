package chat

import (
	"context"
	"sort"
	"sync"
)

// Presence counts open connections per user. cache.Presence is the Redis-backed implementation.
type Presence interface {
	Connect(ctx context.Context, userID string) (first bool, err error)
	Disconnect(ctx context.Context, userID string) (last bool, err error)
	Online(ctx context.Context) ([]string, error)
}

// LocalPresence tracks connections of this instance only.
type LocalPresence struct {
	mu    sync.Mutex
	conns map[string]int
}

func NewLocalPresence() *LocalPresence {
	return &LocalPresence{conns: make(map[string]int)}
}

func (p *LocalPresence) Connect(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[userID]++
	return p.conns[userID] == 1, nil
}

func (p *LocalPresence) Disconnect(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.conns[userID]
	if !ok {
		return false, nil
	}
	if n <= 1 {
		delete(p.conns, userID)
		return true, nil
	}
	p.conns[userID] = n - 1
	return false, nil
}

func (p *LocalPresence) Online(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.conns))
	for id := range p.conns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
