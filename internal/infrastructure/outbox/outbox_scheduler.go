package outbox

import (
	"context"
	"log/slog"
	"time"
)

type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	log        *slog.Logger
	done       chan struct{}
}

func NewScheduler(d *Dispatcher, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		interval:   interval,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start runs the dispatch loop until ctx is cancelled. Done is closed once
// the loop has exited.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("outbox scheduler stopped")
				return
			case <-ticker.C:
				n, err := s.dispatcher.DispatchOnce(ctx)
				if err != nil {
					s.log.Error("outbox dispatch error", "err", err)
				} else if n > 0 {
					s.log.Info("outbox dispatch processed messages", "count", n)
				}
			}
		}
	}()
}

func (s *Scheduler) Done() <-chan struct{} { return s.done }
