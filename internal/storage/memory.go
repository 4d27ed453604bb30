package storage

import (
	"context"
	"sync"
)

// MemoryGateway keeps the document in memory.
type MemoryGateway struct {
	mu      sync.Mutex
	data    []byte
	saved   bool
	saves   int
	saveErr error
}

func NewMemoryGateway(initial []byte) *MemoryGateway {
	g := &MemoryGateway{}
	if initial != nil {
		g.data = append([]byte(nil), initial...)
		g.saved = true
	}
	return g
}

func (g *MemoryGateway) String() string {
	return "memory"
}

func (g *MemoryGateway) Load(ctx context.Context) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.saved {
		return nil, ErrNotExist
	}
	return append([]byte(nil), g.data...), nil
}

func (g *MemoryGateway) Save(ctx context.Context, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.saveErr != nil {
		return g.saveErr
	}
	g.data = append([]byte(nil), data...)
	g.saved = true
	g.saves++
	return nil
}

// Data returns the last saved document.
func (g *MemoryGateway) Data() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]byte(nil), g.data...)
}

// Saves returns the number of successful saves.
func (g *MemoryGateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// FailSaves makes every following save return err. A nil err restores saving.
func (g *MemoryGateway) FailSaves(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveErr = err
}
