package payments

import (
	"context"
	"time"

	"studyhall/pkg/logger"
)

// JobProcessor runs the payment recovery sweep on a schedule. Finalize is
// idempotent, so a sweep overlapping a webhook delivery is harmless.
type JobProcessor struct {
	reconciler *Reconciler
	interval   time.Duration
	logger     *logger.Logger
	done       chan struct{}
}

// NewJobProcessor creates a new recovery job processor
func NewJobProcessor(reconciler *Reconciler, interval time.Duration, log *logger.Logger) *JobProcessor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &JobProcessor{
		reconciler: reconciler,
		interval:   interval,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Start starts the recovery sweep loop
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
}

// Stop stops the recovery sweep loop
func (jp *JobProcessor) Stop() {
	close(jp.done)
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	// Catch up on anything missed while the service was down
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
	if _, err := jp.reconciler.RunRecoverySweep(ctx); err != nil {
		jp.logger.ErrorWithContext(ctx, "recovery sweep failed", err, nil)
	}
}
