package application

import (
	"context"
	"errors"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

// CreateReservations commits quantities against their levels. Per entry, the
// level row is locked, checked, and incremented in the same transaction that
// records the reservation: no caller ever observes one without the other.
func (s *Service) CreateReservations(ctx context.Context, inputs []ports.CreateReservationInput) ([]*domain.Reservation, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	reservations := make([]*domain.Reservation, 0, len(inputs))
	for i, input := range inputs {
		r, err := domain.NewReservation(newID("resv"), input.ItemID, input.LocationID, input.Quantity, input.LineItemID, input.Metadata)
		if err != nil {
			return nil, batchErr(len(inputs), i, levelKey(input.ItemID, input.LocationID), mapError(err))
		}
		reservations = append(reservations, r)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, r := range reservations {
			level, err := s.levels.GetByItemAndLocationForUpdate(ctx, r.ItemID, r.LocationID)
			if err != nil {
				return batchErr(len(reservations), i, levelKey(r.ItemID, r.LocationID), err)
			}
			if err := level.Reserve(r.Quantity); err != nil {
				return batchErr(len(reservations), i, levelKey(r.ItemID, r.LocationID), err)
			}
			if err := s.levels.Save(ctx, level); err != nil {
				return err
			}
		}
		return s.reservations.Create(ctx, reservations)
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(reservations))
	for _, r := range reservations {
		events = append(events, ports.Event{
			Name: ports.EventReservationCreated,
			ID:   r.ID,
			Data: map[string]string{"item_id": r.ItemID, "location_id": r.LocationID},
		})
	}
	s.publish(ctx, events)
	return reservations, nil
}

// RetrieveReservation loads a reservation item by id.
func (s *Service) RetrieveReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

// ListReservations returns reservations matching the filter.
func (s *Service) ListReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, error) {
	return s.reservations.List(ctx, filter, page.Normalize())
}

// ListAndCountReservations returns a page of reservations plus the total
// match count.
func (s *Service) ListAndCountReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error) {
	return s.reservations.ListAndCount(ctx, filter, page.Normalize())
}

// UpdateReservations applies partial mutations. A quantity change is
// re-validated against the owning level using the delta between old and new
// quantity, under the same row lock that applies the increment.
func (s *Service) UpdateReservations(ctx context.Context, inputs []ports.UpdateReservationInput) ([]*domain.Reservation, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	updated := make([]*domain.Reservation, 0, len(inputs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, input := range inputs {
			r, err := s.reservations.Get(ctx, input.ID)
			if err != nil {
				return batchErr(len(inputs), i, input.ID, err)
			}
			if input.Quantity != nil && *input.Quantity != r.Quantity {
				level, err := s.levels.GetByItemAndLocationForUpdate(ctx, r.ItemID, r.LocationID)
				if err != nil {
					return batchErr(len(inputs), i, input.ID, err)
				}
				delta := *input.Quantity - r.Quantity
				if err := level.Reserve(delta); err != nil {
					return batchErr(len(inputs), i, input.ID, err)
				}
				if err := s.levels.Save(ctx, level); err != nil {
					return err
				}
				if err := r.UpdateQuantity(*input.Quantity); err != nil {
					return batchErr(len(inputs), i, input.ID, mapError(err))
				}
			}
			if input.Metadata != nil {
				r.ReplaceMetadata(input.Metadata)
			}
			if err := s.reservations.Save(ctx, r); err != nil {
				return err
			}
			updated = append(updated, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReservations releases and removes reservations by id. Repeated ids in
// one call count once; a second delete of the same id fails with not-found and
// leaves the level untouched.
func (s *Service) DeleteReservations(ctx context.Context, ids []string) error {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil
	}
	var deleted []*domain.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reservations := make([]*domain.Reservation, 0, len(ids))
		for _, id := range ids {
			r, err := s.reservations.Get(ctx, id)
			if err != nil {
				return err
			}
			reservations = append(reservations, r)
		}
		if err := s.releaseAndDelete(ctx, reservations); err != nil {
			return err
		}
		deleted = reservations
		return nil
	})
	if err != nil {
		return err
	}
	s.publishReservationDeletes(ctx, deleted)
	return nil
}

// DeleteReservationsByLineItems removes every reservation correlated to the
// given order lines, the primary path when an order line is canceled. Absent
// line items are a no-op, not an error.
func (s *Service) DeleteReservationsByLineItems(ctx context.Context, lineItemIDs []string) error {
	return s.deleteReservationsBy(ctx, ports.ReservationFilter{LineItemIDs: lineItemIDs})
}

// DeleteReservationsByLocations removes every reservation at the given
// locations across all items, used for location teardown.
func (s *Service) DeleteReservationsByLocations(ctx context.Context, locationIDs []string) error {
	return s.deleteReservationsBy(ctx, ports.ReservationFilter{LocationIDs: locationIDs})
}

func (s *Service) deleteReservationsBy(ctx context.Context, filter ports.ReservationFilter) error {
	if len(filter.LineItemIDs) == 0 && len(filter.LocationIDs) == 0 {
		return nil
	}
	var deleted []*domain.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reservations, err := s.reservations.List(ctx, filter, query.Page{})
		if err != nil {
			return err
		}
		if err := s.releaseAndDelete(ctx, reservations); err != nil {
			return err
		}
		deleted = reservations
		return nil
	})
	if err != nil {
		return err
	}
	s.publishReservationDeletes(ctx, deleted)
	return nil
}

// releaseAndDelete decrements each owning level by the summed removed
// quantity and deletes the reservation rows, all inside the ambient
// transaction. Levels already gone (mid-cascade) are skipped: their
// reservations fall with them.
func (s *Service) releaseAndDelete(ctx context.Context, reservations []*domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	type pair struct{ itemID, locationID string }
	sums := make(map[pair]int64)
	order := make([]pair, 0, len(reservations))
	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		key := pair{r.ItemID, r.LocationID}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += r.Quantity
		ids = append(ids, r.ID)
	}
	for _, key := range order {
		level, err := s.levels.GetByItemAndLocationForUpdate(ctx, key.itemID, key.locationID)
		if errors.Is(err, ports.ErrLevelNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		level.Release(sums[key])
		if err := s.levels.Save(ctx, level); err != nil {
			return err
		}
	}
	return s.reservations.Delete(ctx, ids)
}

func (s *Service) publishReservationDeletes(ctx context.Context, reservations []*domain.Reservation) {
	if len(reservations) == 0 {
		return
	}
	events := make([]ports.Event, 0, len(reservations))
	for _, r := range reservations {
		events = append(events, ports.Event{
			Name: ports.EventReservationDeleted,
			ID:   r.ID,
			Data: map[string]string{"item_id": r.ItemID, "location_id": r.LocationID},
		})
	}
	s.publish(ctx, events)
}
