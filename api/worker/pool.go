// Package worker provides an asynchronous worker pool for recording chat
// exchanges with the provided storage.Driver and announcing them on the
// provided eventstream.Publisher.
//
// The pool keeps persistence off the streaming path so a slow store never
// delays events reaching the client.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/parley/pkg/eventstream"
	"github.com/papercomputeco/parley/pkg/logger"
	"github.com/papercomputeco/parley/pkg/storage"
	"github.com/papercomputeco/parley/pkg/transcript"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 10 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Exchange   *transcript.Exchange
	RemoteAddr string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting exchanges.
	Driver storage.Driver

	// Publisher receives an event for each newly stored exchange. Optional.
	Publisher eventstream.Publisher

	// Service names the event source. Defaults to "parley-api".
	Service string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds storing and publishing a single job.
	JobTimeout time.Duration

	// Logger is the provided logger
	Logger *slog.Logger
}

// Pool processes recording jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu orders sends on queue against closing it.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.Service == "" {
		c.Service = "parley-api"
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: log,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Exchange == nil {
		p.logger.Warn("job not queued, missing exchange")
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("job not queued, pool closed",
			"exchange_id", job.Exchange.ID,
			"username", job.Exchange.Username,
		)
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"exchange_id", job.Exchange.ID,
			"username", job.Exchange.Username,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"exchange_id", job.Exchange.ID,
			"username", job.Exchange.Username,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
// Enqueue calls made after Close return false.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the exchange and, when it is new, publishes an event.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	inserted, err := p.config.Driver.Put(ctx, job.Exchange)
	if err != nil {
		p.logger.Error("async exchange storage failed",
			"exchange_id", job.Exchange.ID,
			"error", err,
		)
		return
	}

	if !inserted {
		p.logger.Debug("exchange already stored", "exchange_id", job.Exchange.ID)
		return
	}

	p.logger.Info("exchange stored",
		"exchange_id", job.Exchange.ID,
		"username", job.Exchange.Username,
		"content_type", job.Exchange.ContentType,
		"is_error", job.Exchange.IsError,
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewExchangeRecordedEvent(eventstream.EventSource{
		Service:    p.config.Service,
		RemoteAddr: job.RemoteAddr,
	}, job.Exchange)

	if err := p.config.Publisher.PublishExchange(ctx, event); err != nil {
		p.logger.Warn("exchange event publish failed",
			"exchange_id", job.Exchange.ID,
			"error", err,
		)
	}
}
