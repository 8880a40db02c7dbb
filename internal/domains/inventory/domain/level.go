package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingLocationID = errors.New("location id must not be empty")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")

	// ErrInsufficientStock matches any InsufficientStockError via errors.Is.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidAdjustment matches any InvalidAdjustmentError via errors.Is.
	ErrInvalidAdjustment = errors.New("adjustment would drop stock below reserved quantity")
)

// Level records the stocked, reserved, and incoming quantities for one item at
// one location. It is the single point of truth for reserved vs. stocked:
// all quantity arithmetic lives here, persistence is the store's concern.
//
// Invariant after every committed mutation: 0 <= Reserved <= Stocked.
type Level struct {
	ID         string
	ItemID     string
	LocationID string
	Stocked    int64
	Reserved   int64
	Incoming   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLevel validates and constructs a level with no reservations.
// Incoming quantity is stored for reporting; it never participates in
// reservation or availability arithmetic.
func NewLevel(id, itemID, locationID string, stocked, incoming int64) (*Level, error) {
	if itemID == "" {
		return nil, ErrMissingItemID
	}
	if locationID == "" {
		return nil, ErrMissingLocationID
	}
	if stocked < 0 || incoming < 0 {
		return nil, ErrNegativeQuantity
	}
	return &Level{
		ID:         id,
		ItemID:     itemID,
		LocationID: locationID,
		Stocked:    stocked,
		Incoming:   incoming,
	}, nil
}

// Available is the sellable remainder: stocked minus reserved.
func (l *Level) Available() int64 { return l.Stocked - l.Reserved }

// CanReserve reports whether committing delta more units keeps the invariant.
// Releasing (delta <= 0) can never violate it.
func (l *Level) CanReserve(delta int64) bool {
	if delta <= 0 {
		return true
	}
	return l.Reserved+delta <= l.Stocked
}

// Reserve commits delta units against the level. A negative delta releases a
// prior commitment. Fails with InsufficientStockError when the commitment
// would exceed stock; the level is left unchanged on failure.
func (l *Level) Reserve(delta int64) error {
	if !l.CanReserve(delta) {
		return &InsufficientStockError{
			ItemID:     l.ItemID,
			LocationID: l.LocationID,
			Requested:  delta,
			Available:  l.Available(),
		}
	}
	l.Reserved += delta
	if l.Reserved < 0 {
		l.Reserved = 0
	}
	return nil
}

// Release returns qty previously reserved units to the sellable pool.
func (l *Level) Release(qty int64) {
	l.Reserved -= qty
	if l.Reserved < 0 {
		l.Reserved = 0
	}
}

// ApplyAdjustment adds delta (positive or negative) to the stocked quantity.
// Shrinking stock below what is already promised fails with
// InvalidAdjustmentError rather than clamping reservations.
func (l *Level) ApplyAdjustment(delta int64) error {
	next := l.Stocked + delta
	if next < l.Reserved {
		return &InvalidAdjustmentError{
			ItemID:     l.ItemID,
			LocationID: l.LocationID,
			Adjustment: delta,
			Stocked:    l.Stocked,
			Reserved:   l.Reserved,
		}
	}
	l.Stocked = next
	return nil
}

// InsufficientStockError reports a reservation that would exceed stock.
type InsufficientStockError struct {
	ItemID     string
	LocationID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for item %s at location %s: requested %d, available %d",
		e.ItemID, e.LocationID, e.Requested, e.Available,
	)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidAdjustmentError reports a stock adjustment that would drop the
// stocked quantity below the committed reservations.
type InvalidAdjustmentError struct {
	ItemID     string
	LocationID string
	Adjustment int64
	Stocked    int64
	Reserved   int64
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf(
		"invalid adjustment of %d for item %s at location %s: stocked %d, reserved %d",
		e.Adjustment, e.ItemID, e.LocationID, e.Stocked, e.Reserved,
	)
}

func (e *InvalidAdjustmentError) Is(target error) bool { return target == ErrInvalidAdjustment }
