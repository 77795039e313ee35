// Package queue implements the in-memory command queue and the worker that
// runs commands one at a time.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/config"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// Handler runs one command and returns its reply.
type Handler interface {
	Handle(ctx context.Context, cmd model.Command) model.Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd model.Command) model.Reply

func (f HandlerFunc) Handle(ctx context.Context, cmd model.Command) model.Reply { return f(ctx, cmd) }

// ErrStopped marks the reply of a command that was dropped by Stop.
var ErrStopped = errors.New("queue stopped")

const (
	// InternalErrorReply is sent when a handler panics.
	InternalErrorReply = "Something went wrong. Please try again."
	// ShutdownReply is sent to commands that were still queued when the
	// worker stopped.
	ShutdownReply = "The bot is shutting down. Please try again later."
)

// Manager feeds queued commands to a single worker, so that no two commands
// ever interleave.
type Manager struct {
	cfg    config.Config
	q      *Queue
	h      Handler
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewManager constructs a Manager with the given config, queue, and handler.
func NewManager(cfg config.Config, q *Queue, h Handler) *Manager {
	return &Manager{cfg: cfg, q: q, h: h}
}

// Start begins processing in the background.
func (m *Manager) Start(parent context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.ctx, m.cancel = context.WithCancel(parent)
	m.done = make(chan struct{})
	m.running = true
	m.q.Start(m.ctx, m.cfg.QueueHighWatermark)
	go m.worker(m.ctx, m.done)
}

// Stop closes intake and cancels the broker and the worker. A command already
// running is finished first; every command still queued is answered with
// ShutdownReply instead of being run.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	m.q.CloseIntake()
	cancel()
	<-done

	left := m.q.Drain()
	if len(left) > 0 {
		obs.Logger.Warn("queue_stopped_with_pending_commands", zap.Int("count", len(left)))
	}
	for _, cmd := range left {
		if cmd.Reply != nil {
			cmd.Reply(model.Reply{Content: ShutdownReply, Err: ErrStopped})
		}
	}
}

// worker drains commands from the queue and runs them.
func (m *Manager) worker(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		// Once stopped, no new command starts even if more are buffered.
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case cmd := <-m.q.Out():
			m.run(ctx, cmd)
			m.q.MarkProcessed()
		}
	}
}

// run executes cmd under its own deadline. The context is detached from
// shutdown so a command is never cancelled halfway through its external calls.
func (m *Manager) run(parent context.Context, cmd model.Command) {
	ctx := obs.WithSequence(obs.WithRequestID(context.WithoutCancel(parent), cmd.RequestID), cmd.Sequence)
	if m.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.CommandTimeout)
		defer cancel()
	}

	start := time.Now()
	reply := m.handle(ctx, cmd)
	obs.Info(ctx, "command_processed",
		zap.String("kind", string(cmd.Kind)),
		zap.Bool("ok", reply.Err == nil),
		zap.Duration("duration", time.Since(start)),
	)
	if cmd.Reply != nil {
		cmd.Reply(reply)
	}
}

func (m *Manager) handle(ctx context.Context, cmd model.Command) (reply model.Reply) {
	defer func() {
		if r := recover(); r != nil {
			obs.Error(ctx, "command_panicked", zap.String("kind", string(cmd.Kind)), zap.Any("panic", r))
			reply = model.Reply{Content: InternalErrorReply, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return m.h.Handle(ctx, cmd)
}

// Enqueue proxies to the underlying queue.
func (m *Manager) Enqueue(cmd model.Command) (uint64, bool) { return m.q.Enqueue(cmd) }

// BacklogSize returns pending items in the queue.
func (m *Manager) BacklogSize() int { return m.q.BacklogSize() }

// QueueDepth returns backlog plus buffered output items.
func (m *Manager) QueueDepth() int { return m.q.QueueDepth() }

// IsShuttingDown reports whether new enqueues are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake disallows future enqueues.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// QueueMetrics exposes the underlying queue metrics.
func (m *Manager) QueueMetrics() (enq, proc uint64, backlog, depth int) {
	return m.q.Metrics()
}

// DrainUntil blocks until every accepted command has been processed or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, depth := m.q.Metrics()
		if backlog == 0 && depth == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
