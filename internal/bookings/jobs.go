package bookings

import (
	"context"
	"time"

	"studyhall/pkg/logger"
)

// JobProcessor runs the expiry sweeper on a schedule. The sweep is
// idempotent, so overlapping runs (or an extra replica) are harmless.
type JobProcessor struct {
	service  Service
	interval time.Duration
	logger   *logger.Logger
	done     chan struct{}
}

// NewJobProcessor creates a new expiry job processor
func NewJobProcessor(service Service, interval time.Duration, log *logger.Logger) *JobProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &JobProcessor{
		service:  service,
		interval: interval,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start starts the expiry sweep loop
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
}

// Stop stops the expiry sweep loop
func (jp *JobProcessor) Stop() {
	close(jp.done)
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	// Run once on startup so a restarted service catches up immediately
	jp.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	released, err := jp.service.ReleaseExpired(ctx)
	if err != nil {
		jp.logger.ErrorWithContext(ctx, "expiry sweep failed", err, nil)
		return
	}
	if released > 0 {
		jp.logger.InfoWithContext(ctx, "expiry sweep released bookings", map[string]interface{}{
			"released": released,
		})
	}
}
