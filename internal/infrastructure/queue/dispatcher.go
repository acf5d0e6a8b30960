package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes member events to a fixed set of workers using consistent
// hashing on the member (or username for anonymous login failures),
// guaranteeing per-member event ordering.
type Dispatcher struct {
	workers []chan domain.MemberEvent
	service ports.EventService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, service, log)
}

func newDispatcher(numWorkers, buffer int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.MemberEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.MemberEvent, buffer)
	}
	return d
}

// Start launches all worker goroutines. Events already queued when ctx is
// cancelled are still persisted; call Stop to drain and wait.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands an event to the worker responsible for its member. It never
// blocks: when the worker queue is full, or the dispatcher is stopped, the
// event is dropped and counted.
func (d *Dispatcher) Publish(event domain.MemberEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(shardKey(event))
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "queue full")
	}
}

// Stop closes the worker queues and waits until every queued event has been
// processed. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) drop(event domain.MemberEvent, reason string) {
	metrics.AuditEventsDroppedTotal.Inc()
	d.log.Warn().
		Str("type", string(event.Type)).
		Str("member_id", event.MemberID).
		Str("reason", reason).
		Msg("audit event dropped")
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func shardKey(event domain.MemberEvent) string {
	if event.MemberID != "" {
		return event.MemberID
	}
	return event.Username
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.MemberEvent) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)

	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

		if err := d.service.Process(ctx, event); err != nil {
			metrics.AuditEventsErrorsTotal.Inc()
			d.log.Error().Err(err).
				Str("type", string(event.Type)).
				Str("member_id", event.MemberID).
				Int("worker_id", id).
				Msg("audit event processing failed")
			continue
		}
		metrics.AuditEventsProcessedTotal.WithLabelValues(string(event.Type)).Inc()
	}
}
