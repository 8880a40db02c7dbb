package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

// CreateItems validates every input row, then persists the batch as one unit.
// The first duplicate SKU aborts the whole batch.
func (s *Service) CreateItems(ctx context.Context, inputs []ports.CreateItemInput) ([]*domain.Item, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	items := make([]*domain.Item, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, input := range inputs {
		item, err := domain.NewItem(newID("iitem"), input.SKU, input.RequiresShipping)
		if err != nil {
			return nil, batchErr(len(inputs), i, input.SKU, mapError(err))
		}
		if _, dup := seen[item.SKU]; dup {
			return nil, batchErr(len(inputs), i, item.SKU, fmt.Errorf("%w: %s", ports.ErrDuplicateSKU, item.SKU))
		}
		seen[item.SKU] = struct{}{}
		items = append(items, item)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, item := range items {
			taken, err := s.items.SKUExists(ctx, item.SKU, "")
			if err != nil {
				return err
			}
			if taken {
				return batchErr(len(items), i, item.SKU, fmt.Errorf("%w: %s", ports.ErrDuplicateSKU, item.SKU))
			}
		}
		return s.items.Create(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(items))
	for _, item := range items {
		events = append(events, ports.Event{
			Name: ports.EventItemCreated,
			ID:   item.ID,
			Data: map[string]string{"sku": item.SKU},
		})
	}
	s.publish(ctx, events)
	return items, nil
}

// RetrieveItem loads an item by id. Soft-deleted items remain retrievable.
func (s *Service) RetrieveItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

// ListItems returns items matching the filter; soft-deleted items are
// excluded unless the filter opts in.
func (s *Service) ListItems(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, error) {
	return s.items.List(ctx, filter, page.Normalize())
}

// ListAndCountItems returns a page of items plus the total match count.
func (s *Service) ListAndCountItems(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, int64, error) {
	return s.items.ListAndCount(ctx, filter, page.Normalize())
}

// UpdateItems applies partial mutations, re-checking SKU uniqueness when the
// SKU changes. All updates commit together or not at all.
func (s *Service) UpdateItems(ctx context.Context, inputs []ports.UpdateItemInput) ([]*domain.Item, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	updated := make([]*domain.Item, 0, len(inputs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, input := range inputs {
			item, err := s.items.Get(ctx, input.ID)
			if err != nil {
				return batchErr(len(inputs), i, input.ID, err)
			}
			if input.SKU != nil && strings.TrimSpace(*input.SKU) != item.SKU {
				taken, err := s.items.SKUExists(ctx, strings.TrimSpace(*input.SKU), item.ID)
				if err != nil {
					return err
				}
				if taken {
					return batchErr(len(inputs), i, input.ID, fmt.Errorf("%w: %s", ports.ErrDuplicateSKU, *input.SKU))
				}
				if err := item.Rename(*input.SKU); err != nil {
					return batchErr(len(inputs), i, input.ID, mapError(err))
				}
			}
			if input.RequiresShipping != nil {
				item.RequiresShipping = *input.RequiresShipping
			}
			if err := s.items.Update(ctx, item); err != nil {
				return batchErr(len(inputs), i, input.ID, err)
			}
			updated = append(updated, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItems permanently removes items together with their levels and
// reservations, one transaction for the whole cascade.
func (s *Service) DeleteItems(ctx context.Context, ids []string) (*ports.CascadeResult, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return &ports.CascadeResult{}, nil
	}
	result := &ports.CascadeResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureItemsExist(ctx, ids); err != nil {
			return err
		}
		reservations, err := s.reservations.List(ctx, ports.ReservationFilter{ItemIDs: ids}, query.Page{})
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
		levelIDs, err := s.levels.DeleteByItems(ctx, ids)
		if err != nil {
			return err
		}
		if err := s.items.HardDelete(ctx, ids); err != nil {
			return err
		}
		result.LevelIDs = levelIDs
		result.ReservationIDs = reservationIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	events := make([]ports.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, ports.Event{Name: ports.EventItemDeleted, ID: id})
	}
	s.publish(ctx, events)
	return result, nil
}

// SoftDeleteItems sets the deletion marker without touching levels or
// reservations, and reports the linked-record ids named by cfg.
func (s *Service) SoftDeleteItems(ctx context.Context, ids []string, cfg ports.CascadeReturn) (map[string][]string, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var links map[string][]string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureItemsExist(ctx, ids); err != nil {
			return err
		}
		if _, err := s.items.SoftDelete(ctx, ids, s.now().UTC()); err != nil {
			return err
		}
		var err error
		links, err = s.collectLinks(ctx, ids, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// RestoreItems clears the deletion marker, the only legal transition back to
// an active item.
func (s *Service) RestoreItems(ctx context.Context, ids []string, cfg ports.CascadeReturn) (map[string][]string, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var links map[string][]string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureItemsExist(ctx, ids); err != nil {
			return err
		}
		if _, err := s.items.Restore(ctx, ids); err != nil {
			return err
		}
		var err error
		links, err = s.collectLinks(ctx, ids, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *Service) ensureItemsExist(ctx context.Context, ids []string) error {
	found, err := s.items.List(ctx, ports.ItemFilter{IDs: ids, IncludeDeleted: true}, query.Page{})
	if err != nil {
		return err
	}
	if len(found) != len(uniqueStrings(ids)) {
		return ports.ErrItemNotFound
	}
	return nil
}

func (s *Service) collectLinks(ctx context.Context, itemIDs []string, cfg ports.CascadeReturn) (map[string][]string, error) {
	if len(cfg.ReturnLinks) == 0 {
		return nil, nil
	}
	links := make(map[string][]string, len(cfg.ReturnLinks))
	for _, link := range cfg.ReturnLinks {
		switch link {
		case ports.LinkInventoryLevels:
			levels, err := s.levels.List(ctx, ports.LevelFilter{ItemIDs: itemIDs}, query.Page{})
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(levels))
			for _, l := range levels {
				ids = append(ids, l.ID)
			}
			links[link] = ids
		case ports.LinkReservationItems:
			reservations, err := s.reservations.List(ctx, ports.ReservationFilter{ItemIDs: itemIDs}, query.Page{})
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(reservations))
			for _, r := range reservations {
				ids = append(ids, r.ID)
			}
			links[link] = ids
		}
	}
	return links, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
