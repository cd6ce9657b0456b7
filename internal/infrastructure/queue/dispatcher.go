package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	jobTimeout     = 10 * time.Second
)

// Revalidator checks a stored token against the backend.
type Revalidator interface {
	Revalidate(ctx context.Context, sid, token string)
}

// Dispatcher routes revalidation jobs to a fixed set of workers using consistent
// hashing on the session id, so jobs for one session run in order.
type Dispatcher struct {
	workers []chan ports.RevalidationJob
	target  Revalidator
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.RevalidationQueue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, target Revalidator, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.RevalidationJob, numWorkers),
		target:  target,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RevalidationJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands a job to the worker owning its session. It never blocks:
// when that worker's buffer is full the job is dropped and false returned.
func (d *Dispatcher) Enqueue(job ports.RevalidationJob) bool {
	idx := d.shardIndex(job.SessionID)
	select {
	case d.workers[idx] <- job:
		metrics.RevalidationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.RevalidationsDroppedTotal.Inc()
		d.log.Warn().Str("sid", job.SessionID).Int("worker_id", idx).Msg("revalidation dropped, queue full")
		return false
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sid string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sid))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RevalidationJob) {
	defer d.wg.Done()
	depth := metrics.RevalidationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			d.target.Revalidate(jobCtx, job.SessionID, job.Token)
			cancel()
			d.log.Debug().Str("sid", job.SessionID).Int("worker_id", id).Msg("session revalidated")
		}
	}
}
