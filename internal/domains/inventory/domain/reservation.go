package domain

import (
	"errors"
	"time"
)

var ErrInvalidQuantity = errors.New("reservation quantity must be greater than zero")

// Reservation commits a quantity against one inventory level, typically
// correlated to an order line. It exists only while its level does; deleting
// the level cascades to its reservations.
type Reservation struct {
	ID         string
	ItemID     string
	LocationID string
	Quantity   int64
	LineItemID string
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReservation validates and constructs a reservation item.
func NewReservation(id, itemID, locationID string, quantity int64, lineItemID string, metadata map[string]string) (*Reservation, error) {
	if itemID == "" {
		return nil, ErrMissingItemID
	}
	if locationID == "" {
		return nil, ErrMissingLocationID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Reservation{
		ID:         id,
		ItemID:     itemID,
		LocationID: locationID,
		Quantity:   quantity,
		LineItemID: lineItemID,
		Metadata:   cloneMetadata(metadata),
	}, nil
}

// UpdateQuantity replaces the committed quantity. The caller re-validates the
// delta against the owning level before persisting.
func (r *Reservation) UpdateQuantity(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	r.Quantity = quantity
	return nil
}

// ReplaceMetadata swaps the metadata map, copying to keep the aggregate owned.
func (r *Reservation) ReplaceMetadata(metadata map[string]string) {
	r.Metadata = cloneMetadata(metadata)
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
