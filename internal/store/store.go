// Package store holds the product catalog in memory and persists a full
// snapshot after every mutation.
package store

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/snapshot"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
	ErrPersist       = errors.New("persist catalog")
)

// PersistError reports a failed snapshot save. It matches ErrPersist.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "persist catalog: " + e.Err.Error() }

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

// Key returns the case-folded lookup key of a product name.
func Key(name string) string {
	return cases.Fold().String(name)
}

// Store is the in-memory catalog. Iteration follows insertion order.
type Store struct {
	mu    sync.RWMutex
	snap  snapshot.Adapter
	m     map[string]model.Product
	order []string
}

// Open loads the snapshot from snap into a new Store.
func Open(ctx context.Context, snap snapshot.Adapter) *Store {
	s := &Store{snap: snap, m: make(map[string]model.Product)}
	for _, p := range snap.Load(ctx) {
		k := Key(p.Name)
		if _, dup := s.m[k]; dup {
			obs.Warn(ctx, "snapshot_duplicate_dropped", zap.String("name", p.Name))
			continue
		}
		s.m[k] = p
		s.order = append(s.order, k)
	}
	obs.Info(ctx, "catalog_loaded", zap.Int("products", len(s.order)))
	return s
}

// Find looks a product up by case-insensitive name.
func (s *Store) Find(name string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[Key(name)]
	return p, ok
}

// List returns all products in insertion order.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Len returns the number of products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) listLocked() []model.Product {
	out := make([]model.Product, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.m[k])
	}
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.snap.Save(ctx, s.listLocked()); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// Insert adds p. The catalog is persisted before Insert returns; on a failed
// save the insert is undone.
func (s *Store) Insert(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := Key(p.Name)
	if _, ok := s.m[k]; ok {
		return ErrDuplicateName
	}
	s.m[k] = p
	s.order = append(s.order, k)
	if err := s.persistLocked(ctx); err != nil {
		delete(s.m, k)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

// Remove deletes the named product and returns it.
func (s *Store) Remove(ctx context.Context, name string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := Key(name)
	p, ok := s.m[k]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	idx := indexOf(s.order, k)
	prevOrder := s.order
	delete(s.m, k)
	s.order = append(s.order[:idx:idx], s.order[idx+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		s.m[k] = p
		s.order = prevOrder
		return model.Product{}, err
	}
	return p, nil
}

// Update applies fn to a copy of the named product, stores the result and
// persists. Name changes made by fn are discarded.
func (s *Store) Update(ctx context.Context, name string, fn func(*model.Product)) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := Key(name)
	prev, ok := s.m[k]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	next := prev
	fn(&next)
	next.Name = prev.Name
	s.m[k] = next
	if err := s.persistLocked(ctx); err != nil {
		s.m[k] = prev
		return model.Product{}, err
	}
	return next, nil
}

func indexOf(keys []string, k string) int {
	for i, v := range keys {
		if v == k {
			return i
		}
	}
	return -1
}
