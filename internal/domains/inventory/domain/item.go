package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptySKU      = errors.New("inventory item sku must not be empty")
	ErrMissingItemID = errors.New("inventory item id must not be empty")
)

// Item is a sellable unit of stock, identified independently of any location.
// It is the root aggregate for its inventory levels.
type Item struct {
	ID               string
	SKU              string
	RequiresShipping bool
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewItem validates and constructs an inventory item aggregate.
func NewItem(id, sku string, requiresShipping bool) (*Item, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingItemID
	}
	return &Item{ID: id, SKU: sku, RequiresShipping: requiresShipping}, nil
}

// SoftDelete marks the item as deleted without removing it. Levels and
// reservations are untouched; restore is the only legal transition back.
func (i *Item) SoftDelete(at time.Time) {
	if i.DeletedAt == nil {
		i.DeletedAt = &at
	}
}

// Restore clears the soft-delete marker.
func (i *Item) Restore() {
	i.DeletedAt = nil
}

// IsDeleted reports whether the soft-delete marker is set.
func (i *Item) IsDeleted() bool { return i.DeletedAt != nil }

// Rename changes the SKU. Uniqueness among live items is the store's concern.
func (i *Item) Rename(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return ErrEmptySKU
	}
	i.SKU = sku
	return nil
}
