package audit

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Sink persists audit records. Implementations must tolerate concurrent use
// from the pipeline worker.
type Sink interface {
	Persist(ctx context.Context, rec *Record) error
}

// Pipeline decouples audit persistence from the response path. Records are
// queued on a buffered channel and written by a single worker goroutine, so
// a slow sink can never add latency to a caller-visible request.
//
// Audit is best effort: persistence failures are logged and swallowed, a
// full buffer drops the record and counts it, and only a process crash can
// lose queued records. The business operation being audited is never rolled
// back or retried on audit failure.
type Pipeline struct {
	sinks []Sink
	ch    chan *Record
	done  chan struct{}
	wg    sync.WaitGroup

	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewPipeline starts the worker. bufferSize bounds how many records may be
// in flight before new ones are dropped.
func NewPipeline(bufferSize int, sinks ...Sink) *Pipeline {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	p := &Pipeline{
		sinks: sinks,
		ch:    make(chan *Record, bufferSize),
		done:  make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Pipeline) run() {
	defer p.wg.Done()
	for {
		select {
		case rec := <-p.ch:
			p.persist(rec)
		case <-p.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case rec := <-p.ch:
					p.persist(rec)
				default:
					return
				}
			}
		}
	}
}

func (p *Pipeline) persist(rec *Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	for _, sink := range p.sinks {
		if err := sink.Persist(context.Background(), rec); err != nil {
			log.Printf("warn: audit persistence failed for action %s: %v", rec.Action, err)
		}
	}
}

// Emit queues a record without blocking. If the pipeline is closed or the
// buffer is full the record is dropped and accounted for.
func (p *Pipeline) Emit(rec *Record) {
	if p == nil || rec == nil || p.closed.Load() {
		return
	}
	select {
	case p.ch <- rec:
	default:
		p.dropped.Add(1)
	}
}

// Dropped reports how many records were discarded due to back-pressure.
func (p *Pipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops accepting records, drains the queue and waits for the worker.
func (p *Pipeline) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.done)
		p.wg.Wait()
		if n := p.Dropped(); n > 0 {
			log.Printf("warn: audit pipeline dropped %d records", n)
		}
	})
}
