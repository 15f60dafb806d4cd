package scheduler

import (
	"context"
	"time"

	"polyglot/backend/internal/logger"
	"polyglot/backend/internal/service"
)

// Scheduler keeps the export cache warm by rebuilding it on a fixed
// interval, so the first request after the TTL lapses does not pay the
// full build.
type Scheduler struct {
	exports  service.ExportService
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(exports service.ExportService, interval time.Duration) *Scheduler {
	return &Scheduler{exports: exports, interval: interval}
}

// Start launches the warm loop. A non-positive interval disables it.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		logger.Info("export warmer disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	logger.Info("export warmer started", "interval", s.interval.String())
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.exports.Export(ctx); err != nil {
				logger.Error("export warm failed", "error", err)
			}
		}
	}
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	logger.Info("export warmer stopped")
}
