package application

import (
	"context"
	"fmt"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

// CreateLevels validates every input row, then persists the batch as one
// unit. A duplicate (item, location) pair aborts the whole batch.
func (s *Service) CreateLevels(ctx context.Context, inputs []ports.CreateLevelInput) ([]*domain.Level, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	levels := make([]*domain.Level, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, input := range inputs {
		level, err := domain.NewLevel(newID("ilvl"), input.ItemID, input.LocationID, input.Stocked, input.Incoming)
		if err != nil {
			return nil, batchErr(len(inputs), i, levelKey(input.ItemID, input.LocationID), mapError(err))
		}
		key := levelKey(level.ItemID, level.LocationID)
		if _, dup := seen[key]; dup {
			return nil, batchErr(len(inputs), i, key, fmt.Errorf("%w: %s", ports.ErrDuplicateLevel, key))
		}
		seen[key] = struct{}{}
		levels = append(levels, level)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, level := range levels {
			if _, err := s.levels.GetByItemAndLocation(ctx, level.ItemID, level.LocationID); err == nil {
				return batchErr(len(levels), i, levelKey(level.ItemID, level.LocationID),
					fmt.Errorf("%w: %s", ports.ErrDuplicateLevel, levelKey(level.ItemID, level.LocationID)))
			}
		}
		return s.levels.Create(ctx, levels)
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(levels))
	for _, level := range levels {
		events = append(events, ports.Event{
			Name: ports.EventLevelCreated,
			ID:   level.ID,
			Data: map[string]string{"item_id": level.ItemID, "location_id": level.LocationID},
		})
	}
	s.publish(ctx, events)
	return levels, nil
}

// RetrieveLevel loads a level by its standalone id.
func (s *Service) RetrieveLevel(ctx context.Context, levelID string) (*domain.Level, error) {
	return s.levels.Get(ctx, levelID)
}

// RetrieveLevelByItemAndLocation loads a level by its composite identity.
func (s *Service) RetrieveLevelByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return s.levels.GetByItemAndLocation(ctx, itemID, locationID)
}

// ListLevels returns levels matching the filter.
func (s *Service) ListLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, error) {
	return s.levels.List(ctx, filter, page.Normalize())
}

// ListAndCountLevels returns a page of levels plus the total match count.
func (s *Service) ListAndCountLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, int64, error) {
	return s.levels.ListAndCount(ctx, filter, page.Normalize())
}

// UpdateLevels applies all updates or none. Each level is addressed by its
// (item, location) pair; reserved quantity is never writable here. Shrinking
// stock below committed reservations aborts the batch.
func (s *Service) UpdateLevels(ctx context.Context, inputs []ports.UpdateLevelInput) ([]*domain.Level, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	updated := make([]*domain.Level, 0, len(inputs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, input := range inputs {
			key := levelKey(input.ItemID, input.LocationID)
			level, err := s.levels.GetByItemAndLocationForUpdate(ctx, input.ItemID, input.LocationID)
			if err != nil {
				return batchErr(len(inputs), i, key, err)
			}
			if input.Stocked != nil {
				if err := level.ApplyAdjustment(*input.Stocked - level.Stocked); err != nil {
					return batchErr(len(inputs), i, key, err)
				}
			}
			if input.Incoming != nil {
				if *input.Incoming < 0 {
					return batchErr(len(inputs), i, key, mapError(domain.ErrNegativeQuantity))
				}
				level.Incoming = *input.Incoming
			}
			if err := s.levels.Save(ctx, level); err != nil {
				return batchErr(len(inputs), i, key, err)
			}
			updated = append(updated, level)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(updated))
	for _, level := range updated {
		events = append(events, ports.Event{Name: ports.EventLevelUpdated, ID: level.ID})
	}
	s.publish(ctx, events)
	return updated, nil
}

// AdjustInventory adds a positive or negative delta to the stocked quantity
// under a row lock, refusing adjustments that would drop stock below the
// committed reservations.
func (s *Service) AdjustInventory(ctx context.Context, itemID, locationID string, adjustment int64) (*domain.Level, error) {
	var level *domain.Level
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		level, err = s.levels.GetByItemAndLocationForUpdate(ctx, itemID, locationID)
		if err != nil {
			return err
		}
		if err := level.ApplyAdjustment(adjustment); err != nil {
			return err
		}
		return s.levels.Save(ctx, level)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, []ports.Event{{Name: ports.EventLevelUpdated, ID: level.ID}})
	return level, nil
}

// DeleteLevel removes one level and cascades its reservations in the same
// transaction.
func (s *Service) DeleteLevel(ctx context.Context, itemID, locationID string) error {
	var levelID string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		level, err := s.levels.GetByItemAndLocation(ctx, itemID, locationID)
		if err != nil {
			return err
		}
		levelID = level.ID
		reservations, err := s.reservations.List(ctx, ports.ReservationFilter{
			ItemIDs:     []string{itemID},
			LocationIDs: []string{locationID},
		}, query.Page{})
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(reservations))
		for _, r := range reservations {
			ids = append(ids, r.ID)
		}
		if err := s.reservations.Delete(ctx, ids); err != nil {
			return err
		}
		return s.levels.Delete(ctx, itemID, locationID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, []ports.Event{{Name: ports.EventLevelDeleted, ID: levelID}})
	return nil
}

// DeleteLevelsByLocations tears down every level at the given locations
// across all items, cascading reservations first. The returned id sets match
// exactly what was removed.
func (s *Service) DeleteLevelsByLocations(ctx context.Context, locationIDs []string) (*ports.CascadeResult, error) {
	if len(locationIDs) == 0 {
		return &ports.CascadeResult{}, nil
	}
	result := &ports.CascadeResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reservations, err := s.reservations.List(ctx, ports.ReservationFilter{LocationIDs: locationIDs}, query.Page{})
		if err != nil {
			return err
		}
		reservationIDs := make([]string, 0, len(reservations))
		for _, r := range reservations {
			reservationIDs = append(reservationIDs, r.ID)
		}
		if err := s.reservations.Delete(ctx, reservationIDs); err != nil {
			return err
		}
		levelIDs, err := s.levels.DeleteByLocations(ctx, locationIDs)
		if err != nil {
			return err
		}
		result.LevelIDs = levelIDs
		result.ReservationIDs = reservationIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(result.LevelIDs))
	for _, id := range result.LevelIDs {
		events = append(events, ports.Event{Name: ports.EventLevelDeleted, ID: id})
	}
	s.publish(ctx, events)
	return result, nil
}

func levelKey(itemID, locationID string) string {
	return itemID + "/" + locationID
}
