// Package snapshottest provides an in-memory snapshot.Adapter for tests.
package snapshottest

import (
	"context"
	"sync"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/snapshot"
)

// Memory keeps the last saved snapshot in memory. SaveErr, when set, makes
// Save fail and leaves the stored snapshot untouched.
type Memory struct {
	mu      sync.Mutex
	stored  []model.Product
	saves   int
	SaveErr error
}

var _ snapshot.Adapter = (*Memory)(nil)

// NewMemory returns a Memory pre-loaded with products.
func NewMemory(products ...model.Product) *Memory {
	return &Memory{stored: append([]model.Product(nil), products...)}
}

func (m *Memory) Load(context.Context) []model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Product{}, m.stored...)
}

func (m *Memory) Save(_ context.Context, products []model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saves++
	m.stored = append([]model.Product(nil), products...)
	return nil
}

func (m *Memory) Close() error { return nil }

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Stored returns a copy of the last saved snapshot.
func (m *Memory) Stored() []model.Product {
	return m.Load(context.Background())
}
