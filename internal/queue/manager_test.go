package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/config"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		CommandTimeout:     time.Second,
		QueueBuffer:        16,
		QueueHighWatermark: 0,
	}
}

func TestManagerDrain(t *testing.T) {
	var handled atomic.Int64
	h := HandlerFunc(func(context.Context, model.Command) model.Reply {
		handled.Add(1)
		return model.Reply{Content: "ok"}
	})
	mgr := NewManager(testConfig(), New(16), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	for i := 0; i < 100; i++ {
		_, _ = mgr.Enqueue(model.Command{Kind: model.CommandStockList})
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	if ok := mgr.DrainUntil(ctxDrain); !ok {
		t.Fatalf("expected drain true")
	}
	if handled.Load() != 100 {
		t.Fatalf("handled %d, want 100", handled.Load())
	}
}

func TestManagerRunsOneCommandAtATime(t *testing.T) {
	var (
		active  atomic.Int32
		overlap atomic.Bool
		mu      sync.Mutex
		order   []uint64
	)
	h := HandlerFunc(func(_ context.Context, cmd model.Command) model.Reply {
		if active.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		order = append(order, cmd.Sequence)
		mu.Unlock()
		active.Add(-1)
		return model.Reply{}
	})
	mgr := NewManager(testConfig(), New(4), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = mgr.Enqueue(model.Command{Kind: model.CommandInfo})
			}
		}()
	}
	wg.Wait()

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	if !mgr.DrainUntil(ctxDrain) {
		t.Fatalf("drain timed out")
	}
	if overlap.Load() {
		t.Fatalf("commands overlapped")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 40 {
		t.Fatalf("processed %d, want 40", len(order))
	}
	for i, seq := range order {
		if seq != uint64(i+1) {
			t.Fatalf("position %d ran seq %d", i, seq)
		}
	}
}

func TestManagerDeliversReplyWithDeadline(t *testing.T) {
	replies := make(chan model.Reply, 1)
	h := HandlerFunc(func(ctx context.Context, cmd model.Command) model.Reply {
		if _, ok := ctx.Deadline(); !ok {
			return model.Reply{Content: "no deadline"}
		}
		return model.Reply{Content: "hello " + cmd.Name}
	})
	mgr := NewManager(testConfig(), New(4), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	_, ok := mgr.Enqueue(model.Command{Kind: model.CommandInfo, Name: "Widget", Reply: func(r model.Reply) { replies <- r }})
	if !ok {
		t.Fatalf("enqueue rejected")
	}
	select {
	case r := <-replies:
		if r.Content != "hello Widget" {
			t.Fatalf("reply %q", r.Content)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reply")
	}
}

func TestManagerStopDoesNotCancelRunningCommand(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	replies := make(chan model.Reply, 1)
	h := HandlerFunc(func(ctx context.Context, _ model.Command) model.Reply {
		close(started)
		<-release
		if ctx.Err() != nil {
			return model.Reply{Content: "cancelled"}
		}
		return model.Reply{Content: "done"}
	})
	mgr := NewManager(testConfig(), New(4), h)
	mgr.Start(context.Background())

	_, _ = mgr.Enqueue(model.Command{Kind: model.CommandInfo, Reply: func(r model.Reply) { replies <- r }})
	<-started

	stopped := make(chan struct{})
	go func() {
		mgr.Stop()
		close(stopped)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if r := <-replies; r.Content != "done" {
		t.Fatalf("reply %q", r.Content)
	}
	<-stopped
}

func TestManagerRecoversFromPanic(t *testing.T) {
	replies := make(chan model.Reply, 2)
	h := HandlerFunc(func(_ context.Context, cmd model.Command) model.Reply {
		if cmd.Name == "bad" {
			panic("boom")
		}
		return model.Reply{Content: "ok"}
	})
	mgr := NewManager(testConfig(), New(4), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	deliver := func(r model.Reply) { replies <- r }
	_, _ = mgr.Enqueue(model.Command{Kind: model.CommandInfo, Name: "bad", Reply: deliver})
	_, _ = mgr.Enqueue(model.Command{Kind: model.CommandInfo, Name: "good", Reply: deliver})

	first, second := <-replies, <-replies
	if first.Content != InternalErrorReply || first.Err == nil {
		t.Fatalf("panic reply %+v", first)
	}
	if second.Content != "ok" {
		t.Fatalf("worker did not survive panic: %+v", second)
	}
}

func TestManagerStopAnswersQueuedCommands(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var handled atomic.Int32
	h := HandlerFunc(func(_ context.Context, cmd model.Command) model.Reply {
		handled.Add(1)
		if cmd.Name == "first" {
			close(started)
			<-release
		}
		return model.Reply{Content: "done"}
	})
	mgr := NewManager(testConfig(), New(4), h)
	mgr.Start(context.Background())

	replies := make(map[string]chan model.Reply)
	for _, name := range []string{"first", "second", "third"} {
		ch := make(chan model.Reply, 2)
		replies[name] = ch
		_, ok := mgr.Enqueue(model.Command{Kind: model.CommandInfo, Name: name, Reply: func(r model.Reply) { ch <- r }})
		if !ok {
			t.Fatalf("enqueue %s rejected", name)
		}
	}
	<-started

	stopped := make(chan struct{})
	go func() {
		mgr.Stop()
		close(stopped)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not return")
	}

	if r := <-replies["first"]; r.Content != "done" {
		t.Fatalf("running command reply %q", r.Content)
	}
	for _, name := range []string{"second", "third"} {
		select {
		case r := <-replies[name]:
			if r.Content != ShutdownReply || r.Err == nil {
				t.Fatalf("%s reply %+v", name, r)
			}
		default:
			t.Fatalf("%s got no reply", name)
		}
	}
	for name, ch := range replies {
		if len(ch) != 0 {
			t.Fatalf("%s answered more than once", name)
		}
	}
	if handled.Load() != 1 {
		t.Fatalf("handled %d commands after stop, want 1", handled.Load())
	}

	enq, proc, backlog, depth := mgr.QueueMetrics()
	if enq != proc || backlog != 0 || depth != 0 {
		t.Fatalf("metrics enq=%d proc=%d backlog=%d depth=%d", enq, proc, backlog, depth)
	}
	if _, ok := mgr.Enqueue(model.Command{Kind: model.CommandInfo}); ok {
		t.Fatalf("enqueue accepted after stop")
	}
}
