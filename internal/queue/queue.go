package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// Queue is a buffered command queue with a background broker. Commands leave
// the queue in the order they were accepted.
type Queue struct {
	mu           sync.Mutex
	backlog      []model.Command
	notify       chan struct{}
	out          chan model.Command
	seq          Sequencer
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// New creates a Queue with a buffered output channel.
func New(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.Command, outBuffer),
	}
}

// Start runs the broker loop.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

// broker moves backlog items to the output channel.
func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			if sz := q.BacklogSize(); sz > highWatermark {
				obs.Logger.Warn("queue backlog exceeds high watermark",
					zap.Int("backlog_size", sz),
					zap.Int("high_watermark", highWatermark),
				)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// flushOnce drains backlog into the output buffer.
func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

// Enqueue stamps cmd with the next sequence number and appends it to the
// backlog. It returns the sequence and false once intake is closed.
func (q *Queue) Enqueue(cmd model.Command) (uint64, bool) {
	q.mu.Lock()
	if q.shuttingDown.Load() {
		q.mu.Unlock()
		return 0, false
	}
	q.enqueued.Add(1)
	cmd.Sequence = q.seq.Next()
	q.backlog = append(q.backlog, cmd)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return cmd.Sequence, true
}

// Drain removes and returns every command still waiting, oldest first, and
// counts them as processed. Call it only after intake is closed and the
// worker has exited.
func (q *Queue) Drain() []model.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	var left []model.Command
	for {
		select {
		case cmd := <-q.out:
			left = append(left, cmd)
			continue
		default:
		}
		break
	}
	left = append(left, q.backlog...)
	q.backlog = nil
	q.processed.Add(uint64(len(left)))
	return left
}

// Out exposes the output channel of commands.
func (q *Queue) Out() <-chan model.Command { return q.out }

// BacklogSize returns the number of enqueued-but-not-yet-output commands.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// QueueDepth returns backlog plus buffered output items.
func (q *Queue) QueueDepth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

// MarkProcessed increases the processed counter.
func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// Metrics returns counters and sizes for observability.
func (q *Queue) Metrics() (enq, proc uint64, backlog, depth int) {
	enq = q.enqueued.Load()
	proc = q.processed.Load()
	backlog = q.BacklogSize()
	depth = q.QueueDepth()
	return enq, proc, backlog, depth
}

// CloseIntake disallows future enqueues.
func (q *Queue) CloseIntake() { q.shuttingDown.Store(true) }

// IsShuttingDown reports if intake has been closed.
func (q *Queue) IsShuttingDown() bool { return q.shuttingDown.Load() }
