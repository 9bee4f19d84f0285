package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts wall-clock time so a Router can be driven by a fixed
// clock in tests rather than time.Now (mirrors server.Clock's TEST vs
// NORMAL split, one layer up in the simulation core).
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the default Clock, backed by wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sink is one event destination: console, a JSON file, an in-memory
// buffer for tests. Write is called off the publishing goroutine, from
// the sink's own worker.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a Sink with the name used to enable/disable and
// address it (Router.Sink, Config.HasSink).
type NamedSink struct {
	Name string
	Sink Sink
}

// Router is the async pub-sub hub every Game publishes domain events
// through. One dispatch goroutine reads the publish queue and fans each
// event out to a per-sink worker goroutine, so a slow or failing sink
// never blocks the simulation strand that called Publish (§7/C9).
type Router struct {
	cfg    Config
	clock  Clock
	fields map[string]any

	queue  chan Event
	sinks  []*sinkWorker
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
	closed atomic.Bool

	fallback *log.Logger

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

// RouterStats is a point-in-time snapshot of Router's counters, exposed
// for health/debug endpoints.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

const (
	defaultQueueSize    = 512
	minSinkBuffer       = 32
	maxSinkBuffer       = 1024
	defaultDropInterval = 5 * time.Second
)

// NewRouter builds a Router around namedSinks and starts its dispatch and
// per-sink worker goroutines immediately; callers must Close it to drain
// and release those goroutines.
func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	queueSize := cfg.BufferSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:      cfg,
		clock:    clock,
		fields:   cfg.CloneFields(),
		queue:    make(chan Event, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		fallback: log.New(os.Stderr, "[logging] ", log.LstdFlags),
	}

	sinkBuffer := clampInt(queueSize, minSinkBuffer, maxSinkBuffer)
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, newSinkWorker(named.Name, named.Sink, sinkBuffer, r.fallback))
	}

	r.start()
	return r, nil
}

func clampInt(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func (r *Router) start() {
	r.once.Do(func() {
		r.wg.Add(1)
		go r.dispatchLoop()

		for _, worker := range r.sinks {
			r.wg.Add(1)
			go func(w *sinkWorker) {
				defer r.wg.Done()
				w.run()
			}(worker)
		}
	})
}

// dispatchLoop is the Router's single reader of the publish queue; it
// forwards events to every sink worker until the Router is closed, then
// drains whatever is left in the queue before returning.
func (r *Router) dispatchLoop() {
	defer func() {
		for _, worker := range r.sinks {
			close(worker.events)
		}
		r.wg.Done()
	}()
	for {
		select {
		case <-r.ctx.Done():
			r.drainQueue()
			return
		case event := <-r.queue:
			r.forward(event)
		}
	}
}

func (r *Router) drainQueue() {
	for {
		select {
		case event := <-r.queue:
			r.forward(event)
		default:
			return
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeExtra(event, r.fields)

	r.eventsTotal.Add(1)
	for _, worker := range r.sinks {
		worker.enqueue(event)
	}
}

// Publish queues event for async delivery. A full queue drops the event
// rather than blocking the caller, since the caller is almost always the
// single-writer simulation strand (§9).
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.handleDrop(event)
	}
}

func (r *Router) handleDrop(event Event) {
	r.droppedTotal.Add(1)

	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = defaultDropInterval
	}
	now := time.Now().UnixNano()
	next := r.lastDropLog.Load()
	if next != 0 && now < next {
		return
	}
	if r.lastDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
		r.fallback.Printf("dropping event type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close stops accepting new events, waits for the dispatch and sink
// worker goroutines to drain, then closes every sink in turn. A second
// Close call blocks on the first's completion rather than double-closing.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, worker := range r.sinks {
		if err := worker.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns the Router's running event/drop counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Sink looks up a configured sink by name, e.g. for tests that need to
// inspect a memory sink's captured events directly.
func (r *Router) Sink(name string) Sink {
	for _, worker := range r.sinks {
		if worker.name == name {
			return worker.sink
		}
	}
	return nil
}

// sinkWorker owns one Sink's delivery goroutine and backoff state. A
// sink that keeps failing is retried with growing delay rather than
// hammered or abandoned.
type sinkWorker struct {
	name      string
	sink      Sink
	events    chan Event
	fallback  *log.Logger
	failures  int
	nextRetry time.Time
}

func newSinkWorker(name string, sink Sink, bufferSize int, fallback *log.Logger) *sinkWorker {
	if bufferSize <= 0 {
		bufferSize = minSinkBuffer
	}
	return &sinkWorker{
		name:     name,
		sink:     sink,
		events:   make(chan Event, bufferSize),
		fallback: fallback,
	}
}

func (w *sinkWorker) enqueue(event Event) {
	select {
	case w.events <- cloneForFields(event):
	default:
		w.fallback.Printf("sink %s backlog full dropping event type=%s", w.name, event.Type)
	}
}

func (w *sinkWorker) run() {
	for event := range w.events {
		w.waitForBackoff()
		if err := w.sink.Write(event); err != nil {
			w.recordFailure(err)
			continue
		}
		w.failures = 0
		w.nextRetry = time.Time{}
	}
}

func (w *sinkWorker) waitForBackoff() {
	if w.failures == 0 {
		return
	}
	for {
		now := time.Now()
		if w.nextRetry.IsZero() || !now.Before(w.nextRetry) {
			return
		}
		time.Sleep(time.Until(w.nextRetry))
	}
}

func (w *sinkWorker) recordFailure(err error) {
	w.failures++
	delay := time.Duration(1<<minInt(w.failures, 5)) * time.Second
	w.nextRetry = time.Now().Add(delay)
	w.fallback.Printf("sink %s failed: %v (retry in %s)", w.name, err, delay)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
