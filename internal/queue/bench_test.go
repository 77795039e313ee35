package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
)

// Benchmark for the enqueue path; to run: go test -bench=. ./internal/queue -run ^$
func BenchmarkEnqueueAndDrain(b *testing.B) {
	h := HandlerFunc(func(context.Context, model.Command) model.Reply { return model.Reply{} })
	mgr := NewManager(testConfig(), New(64), h)
	mgr.Start(context.Background())
	defer mgr.Stop()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = mgr.Enqueue(model.Command{Kind: model.CommandStockList})
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if !mgr.DrainUntil(ctx) {
		b.Fatalf("drain timeout")
	}
}
