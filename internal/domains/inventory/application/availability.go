package application

import (
	"context"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
)

// The availability read side sums over the level rows fetched in a single
// multi-row read, so no location's quantity is compared against a stale
// sibling. Reserved quantity is trusted as kept consistent on the level by
// the reservation paths; it is never recomputed from reservation rows here.

// AvailableQuantity sums stocked minus reserved for the item across the given
// locations. Locations without a level contribute zero; no level at all
// yields zero, not an error.
func (s *Service) AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	return s.sumLevels(ctx, itemID, locationIDs, func(l *domain.Level) int64 { return l.Available() })
}

// StockedQuantity sums the raw stocked quantity across the given locations.
func (s *Service) StockedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	return s.sumLevels(ctx, itemID, locationIDs, func(l *domain.Level) int64 { return l.Stocked })
}

// ReservedQuantity sums the raw reserved quantity across the given locations.
func (s *Service) ReservedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	return s.sumLevels(ctx, itemID, locationIDs, func(l *domain.Level) int64 { return l.Reserved })
}

// ConfirmInventory reports whether the requested quantity is available for
// the item across the given locations, using one consistent read.
func (s *Service) ConfirmInventory(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error) {
	available, err := s.AvailableQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

func (s *Service) sumLevels(ctx context.Context, itemID string, locationIDs []string, field func(*domain.Level) int64) (int64, error) {
	if len(locationIDs) == 0 {
		return 0, nil
	}
	levels, err := s.levels.GetByItemAndLocations(ctx, itemID, locationIDs)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, level := range levels {
		sum += field(level)
	}
	return sum, nil
}
