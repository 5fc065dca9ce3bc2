// internal/app/system/calendar/registry.go
package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry tracks the live boards, one per browser client.
type Registry struct {
	gw   Gateway
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	boards map[string]*Board
}

// NewRegistry creates an empty registry whose boards share gw.
func NewRegistry(gw Gateway, opts Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		gw:     gw,
		opts:   opts,
		log:    logger,
		boards: make(map[string]*Board),
	}
}

// Open creates, registers and mounts a new board. The board is returned even
// when the initial load fails so the client can retry with a refresh.
func (r *Registry) Open(ctx context.Context) (*Board, error) {
	b := NewBoard(uuid.NewString(), r.gw, r.opts, r.log)

	r.mu.Lock()
	r.boards[b.ID()] = b
	r.mu.Unlock()
	metrics.BoardCreated()

	return b, b.Create(ctx)
}

// Get returns a live board.
func (r *Registry) Get(id string) (*Board, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[id]
	return b, ok
}

// Close destroys and forgets a board. Reports whether it existed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	b, ok := r.boards[id]
	delete(r.boards, id)
	r.mu.Unlock()

	if ok {
		b.Destroy()
		metrics.BoardDestroyed()
	}
	return ok
}

// SweepIdle destroys boards not seen for longer than maxIdle and returns how
// many were removed.
func (r *Registry) SweepIdle(maxIdle time.Duration) int {
	now := r.opts.Now()

	r.mu.Lock()
	var idle []*Board
	for id, b := range r.boards {
		if now.Sub(b.LastSeen()) > maxIdle {
			idle = append(idle, b)
			delete(r.boards, id)
		}
	}
	r.mu.Unlock()

	for _, b := range idle {
		b.Destroy()
		metrics.BoardDestroyed()
	}
	if len(idle) > 0 {
		r.log.Info("idle calendar boards swept", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// CloseAll destroys every board. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	boards := r.boards
	r.boards = make(map[string]*Board)
	r.mu.Unlock()

	for _, b := range boards {
		b.Destroy()
		metrics.BoardDestroyed()
	}
}
