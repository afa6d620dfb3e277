package repository

import (
	"context"
	"sync"

	"ThriftStoreAPI/internal/model"
)

// MemoryCartStore keeps carts in process memory. Used when no DATABASE_URL
// is configured (dev shells, tests); carts do not survive a restart.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string][]model.CartLine
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]model.CartLine)}
}

func (s *MemoryCartStore) Lines(ctx context.Context, buyerEmail string) ([]model.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]model.CartLine, len(s.carts[buyerEmail]))
	copy(lines, s.carts[buyerEmail])
	return lines, nil
}

func (s *MemoryCartStore) Add(ctx context.Context, buyerEmail string, line model.CartLine) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.carts[buyerEmail] {
		if existing.ItemID == line.ItemID && existing.ListingKind == line.ListingKind {
			return false, nil
		}
	}
	s.carts[buyerEmail] = append(s.carts[buyerEmail], line)
	return true, nil
}

func (s *MemoryCartStore) Remove(ctx context.Context, buyerEmail string, itemID int64, kind model.ListingKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[buyerEmail]
	kept := lines[:0]
	for _, line := range lines {
		if line.ItemID == itemID && line.ListingKind == kind {
			continue
		}
		kept = append(kept, line)
	}
	s.carts[buyerEmail] = kept
	return nil
}

func (s *MemoryCartStore) Clear(ctx context.Context, buyerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, buyerEmail)
	return nil
}
