package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/snapshot/snapshottest"
)

func product(name string, stock int64) model.Product {
	return model.Product{
		Name:      name,
		Price:     decimal.RequireFromString("9.99"),
		Stock:     stock,
		ChannelID: "c-" + name,
		MessageID: "m-" + name,
	}
}

func names(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestStoreInsertFindCaseInsensitive(t *testing.T) {
	mem := snapshottest.NewMemory()
	s := Open(context.Background(), mem)

	require.NoError(t, s.Insert(context.Background(), product("Widget", 3)))

	got, ok := s.Find("wIDGET")
	require.True(t, ok)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 1, mem.Saves())
}

func TestStoreInsertDuplicate(t *testing.T) {
	mem := snapshottest.NewMemory()
	s := Open(context.Background(), mem)
	require.NoError(t, s.Insert(context.Background(), product("Widget", 3)))

	err := s.Insert(context.Background(), product("WIDGET", 1))

	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, mem.Saves())
}

func TestStoreListInsertionOrder(t *testing.T) {
	s := Open(context.Background(), snapshottest.NewMemory())
	for _, n := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, s.Insert(context.Background(), product(n, 1)))
	}
	_, err := s.Remove(context.Background(), "alpha")
	require.NoError(t, err)
	require.NoError(t, s.Insert(context.Background(), product("Beta", 1)))

	assert.Equal(t, []string{"Zeta", "Mid", "Beta"}, names(s.List()))
}

func TestStoreRemoveNotFound(t *testing.T) {
	s := Open(context.Background(), snapshottest.NewMemory())

	_, err := s.Remove(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateKeepsName(t *testing.T) {
	mem := snapshottest.NewMemory()
	s := Open(context.Background(), mem)
	require.NoError(t, s.Insert(context.Background(), product("Widget", 3)))

	got, err := s.Update(context.Background(), "widget", func(p *model.Product) {
		p.Stock += 4
		p.Name = "Renamed"
	})

	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, int64(7), got.Stock)
	assert.Equal(t, int64(7), mem.Stored()[0].Stock)
}

func TestStorePersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := snapshottest.NewMemory()
	s := Open(ctx, mem)
	require.NoError(t, s.Insert(ctx, product("Widget", 3)))
	require.NoError(t, s.Insert(ctx, product("Gadget", 1)))
	mem.SaveErr = errors.New("disk full")

	err := s.Insert(ctx, product("Gizmo", 1))
	assert.ErrorIs(t, err, ErrPersist)
	_, ok := s.Find("Gizmo")
	assert.False(t, ok)

	_, err = s.Update(ctx, "Widget", func(p *model.Product) { p.Stock = 0 })
	assert.ErrorIs(t, err, ErrPersist)
	w, _ := s.Find("Widget")
	assert.Equal(t, int64(3), w.Stock)

	_, err = s.Remove(ctx, "Widget")
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, []string{"Widget", "Gadget"}, names(s.List()))

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.EqualError(t, pe.Err, "disk full")
}

func TestStoreOpenLoadsSnapshot(t *testing.T) {
	mem := snapshottest.NewMemory(product("Widget", 3), product("widget", 9), product("Gadget", 0))

	s := Open(context.Background(), mem)

	assert.Equal(t, []string{"Widget", "Gadget"}, names(s.List()))
	w, _ := s.Find("WIDGET")
	assert.Equal(t, int64(3), w.Stock)
}

func TestStoreConcurrentReads(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, snapshottest.NewMemory())
	require.NoError(t, s.Insert(ctx, product("Widget", 0)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, "Widget", func(p *model.Product) { p.Stock++ })
		}()
		go func() {
			defer wg.Done()
			_ = s.List()
		}()
	}
	wg.Wait()

	w, _ := s.Find("Widget")
	assert.Equal(t, int64(50), w.Stock)
}

func TestKeyFoldsCase(t *testing.T) {
	assert.Equal(t, Key("STRASSE"), Key("strasse"))
	assert.NotEqual(t, Key("Widget"), Key("Widget 2"))
}
