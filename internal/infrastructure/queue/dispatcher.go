package queue

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/api/metrics"
	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes publish audit records off the request path. Records are
// sharded by post id so attempts for one post are stored in order.
type Dispatcher struct {
	workers []chan domain.PublishAttempt
	repo    ports.PublishAuditRepository
	log     zerolog.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

var _ ports.PublishRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.PublishAuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.PublishAttempt, numWorkers),
		repo:    repo,
		log:     log.With().Str("component", "audit_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.PublishAttempt, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Workers drain their channel until
// Stop closes it.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(context.WithoutCancel(ctx), i, ch)
	}
}

// Record enqueues an attempt without blocking. When the worker's buffer is
// full the record is dropped and counted.
func (d *Dispatcher) Record(attempt domain.PublishAttempt) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		return
	}

	idx := d.shardIndex(attempt.PostID)
	select {
	case d.workers[idx] <- attempt:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int64("post_id", attempt.PostID).Int("worker_id", idx).Msg("audit queue full, record dropped")
	}
}

// Stop closes the worker channels and waits until pending records are
// written or ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a post id deterministically to a worker index.
func (d *Dispatcher) shardIndex(postID int64) int {
	if postID < 0 {
		postID = -postID
	}
	return int(postID % int64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.PublishAttempt) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for attempt := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Dec()
		if err := d.repo.Insert(ctx, &attempt); err != nil {
			metrics.AuditRecordsTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Int64("post_id", attempt.PostID).
				Int("worker_id", id).
				Msg("audit insert failed")
			continue
		}
		metrics.AuditRecordsTotal.WithLabelValues("stored").Inc()
	}
}
