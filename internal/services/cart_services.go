package services

import (
	"context"
	"errors"
	"fmt"

	"ThriftStoreAPI/internal/model"
	"ThriftStoreAPI/internal/pricing"
	"ThriftStoreAPI/internal/repository"
)

var ErrInvalidListingKind = errors.New("invalid listing kind")

type CartService struct {
	Store repository.CartStore
}

func NewCartService(store repository.CartStore) *CartService {
	return &CartService{Store: store}
}

// Add puts a line in the buyer's cart. Quantity is always 1: every item is a
// unique secondhand good, and a duplicate (item, kind) add is a silent no-op.
func (s *CartService) Add(ctx context.Context, buyerEmail string, line model.CartLine) (bool, error) {
	if !line.ListingKind.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidListingKind, line.ListingKind)
	}
	line.Quantity = 1

	added, err := s.Store.Add(ctx, buyerEmail, line)
	if err != nil {
		return false, fmt.Errorf("add cart line: %w", err)
	}
	return added, nil
}

func (s *CartService) Remove(ctx context.Context, buyerEmail string, itemID int64, kind model.ListingKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidListingKind, kind)
	}
	return s.Store.Remove(ctx, buyerEmail, itemID, kind)
}

func (s *CartService) Clear(ctx context.Context, buyerEmail string) error {
	return s.Store.Clear(ctx, buyerEmail)
}

// Get returns the cart with its running total. The total only sums lines
// whose effective price parses; malformed prices count as zero rather than
// failing the whole cart.
func (s *CartService) Get(ctx context.Context, buyerEmail string) (*model.CartResponse, error) {
	lines, err := s.Store.Lines(ctx, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return &model.CartResponse{
		Items: lines,
		Total: pricing.Display(pricing.Total(lines)),
	}, nil
}
