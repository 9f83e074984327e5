package geo

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/npcbrain/internal/model"
)

type losRequest struct {
	from, to model.Location
	reply    func(bool)
}

// LOSService answers line-of-sight queries off the caller's goroutine.
// Replies are delivered on a service worker; callers must re-validate
// their own state inside the reply.
type LOSService struct {
	grid     atomic.Pointer[Grid]
	requests chan losRequest
	workers  int

	served  atomic.Int64
	dropped atomic.Int64
}

// NewLOSService creates a service over grid with a bounded request queue.
func NewLOSService(grid *Grid, workers, queueSize int) *LOSService {
	s := &LOSService{
		requests: make(chan losRequest, max(queueSize, 1)),
		workers:  max(workers, 1),
	}
	s.grid.Store(grid)
	return s
}

// SetGrid swaps the obstacle grid used by subsequent requests.
func (s *LOSService) SetGrid(g *Grid) {
	s.grid.Store(g)
}

// CanSee answers synchronously using the current grid.
func (s *LOSService) CanSee(from, to model.Location) bool {
	return s.grid.Load().CanSee(from, to)
}

// RequestLOS enqueues a query. Returns false if the queue is full; reply is then never called.
func (s *LOSService) RequestLOS(from, to model.Location, reply func(bool)) bool {
	select {
	case s.requests <- losRequest{from: from, to: to, reply: reply}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Run serves requests until ctx is cancelled. Pending requests are dropped.
func (s *LOSService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for range s.workers {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case req := <-s.requests:
					s.serve(req)
				}
			}
		})
	}
	return g.Wait()
}

func (s *LOSService) serve(req losRequest) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("LOS reply panicked", "panic", r)
		}
	}()

	visible := s.grid.Load().CanSee(req.from, req.to)
	s.served.Add(1)
	req.reply(visible)
}

// Served returns number of answered requests.
func (s *LOSService) Served() int64 {
	return s.served.Load()
}

// Dropped returns number of requests rejected because the queue was full.
func (s *LOSService) Dropped() int64 {
	return s.dropped.Load()
}
