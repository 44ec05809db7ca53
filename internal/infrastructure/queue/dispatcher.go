package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Send when the recipient's shard has no room.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned by Send after Stop.
var ErrStopped = errors.New("notification dispatcher stopped")

type message struct {
	to, subject, body string
}

// Dispatcher is an asynchronous ports.Notifier. Messages are routed to a
// fixed set of workers by hashing the recipient, so messages to one address
// are delivered in the order they were sent.
type Dispatcher struct {
	workers []chan message
	backend ports.Notifier
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in front
// of backend. If numWorkers <= 0, defaultWorkers is used; bufferSize <= 0
// falls back to channelBuffer.
func NewDispatcher(numWorkers, bufferSize int, backend ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		backend: backend,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, bufferSize)
	}
	return d
}

// Start launches all worker goroutines. Deliveries use ctx, so cancelling it
// aborts in-flight sends.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues a message without blocking. The caller's context only
// bounds the enqueue; delivery happens later on a worker.
func (d *Dispatcher) Send(_ context.Context, to, subject, body string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(to)
	select {
	case d.workers[idx] <- message{to: to, subject: subject, body: body}:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new messages, lets the workers drain what is queued and waits
// for them to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.backend.Send(ctx, msg.to, msg.subject, msg.body); err != nil {
				metrics.NotificationsFailedTotal.WithLabelValues("deliver").Inc()
				d.log.Error().Err(err).
					Str("to", msg.to).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
