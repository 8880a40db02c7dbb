package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

var (
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrLevelNotFound       = errors.New("inventory level not found")
	ErrReservationNotFound = errors.New("reservation item not found")
	ErrDuplicateSKU        = errors.New("sku already in use")
	ErrDuplicateLevel      = errors.New("inventory level already exists for item and location")
)

// BulkOperationError names the entry that failed a batch and aborts the whole
// operation; partial application is never committed.
type BulkOperationError struct {
	Index int
	Key   string
	Err   error
}

func (e *BulkOperationError) Error() string {
	return fmt.Sprintf("bulk operation failed at entry %d (%s): %v", e.Index, e.Key, e.Err)
}

func (e *BulkOperationError) Unwrap() error { return e.Err }

// ItemFilter selects inventory items; slice fields carry "in" semantics.
// Soft-deleted items are excluded unless IncludeDeleted is set.
type ItemFilter struct {
	IDs            []string
	SKUs           []string
	IncludeDeleted bool
}

// LevelFilter selects inventory levels; slice fields carry "in" semantics.
type LevelFilter struct {
	IDs         []string
	ItemIDs     []string
	LocationIDs []string
}

// ReservationFilter selects reservation items; slice fields carry "in" semantics.
type ReservationFilter struct {
	IDs         []string
	ItemIDs     []string
	LocationIDs []string
	LineItemIDs []string
}

// TxManager supplies the transactional boundary for read-check-write
// sequences. Implementations stash the transaction handle in the returned
// context so repositories join the ambient transaction; a fn invoked inside
// an already-running transaction nests into it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ItemRepository persists inventory items.
type ItemRepository interface {
	Create(ctx context.Context, items []*domain.Item) error
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter, page query.Page) ([]*domain.Item, error)
	ListAndCount(ctx context.Context, filter ItemFilter, page query.Page) ([]*domain.Item, int64, error)
	Update(ctx context.Context, item *domain.Item) error
	// SKUExists reports whether a non-deleted item other than excludeID uses sku.
	SKUExists(ctx context.Context, sku string, excludeID string) (bool, error)
	SoftDelete(ctx context.Context, ids []string, at time.Time) ([]string, error)
	Restore(ctx context.Context, ids []string) ([]string, error)
	HardDelete(ctx context.Context, ids []string) error
}

// LevelRepository persists inventory levels. Only reservation and adjustment
// paths mutate quantities, and both must load the row through
// GetByItemAndLocationForUpdate inside a transaction.
type LevelRepository interface {
	Create(ctx context.Context, levels []*domain.Level) error
	Get(ctx context.Context, id string) (*domain.Level, error)
	GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error)
	// GetByItemAndLocationForUpdate locks the level row for the remainder of
	// the ambient transaction.
	GetByItemAndLocationForUpdate(ctx context.Context, itemID, locationID string) (*domain.Level, error)
	// GetByItemAndLocations fetches all matching levels in one read so
	// availability sums never compare a fresh row against stale siblings.
	GetByItemAndLocations(ctx context.Context, itemID string, locationIDs []string) ([]*domain.Level, error)
	List(ctx context.Context, filter LevelFilter, page query.Page) ([]*domain.Level, error)
	ListAndCount(ctx context.Context, filter LevelFilter, page query.Page) ([]*domain.Level, int64, error)
	Save(ctx context.Context, level *domain.Level) error
	Delete(ctx context.Context, itemID, locationID string) error
	DeleteByLocations(ctx context.Context, locationIDs []string) ([]string, error)
	DeleteByItems(ctx context.Context, itemIDs []string) ([]string, error)
}

// ReservationRepository persists reservation items. Cascade deletions are
// driven by the application so level decrements share the transaction.
type ReservationRepository interface {
	Create(ctx context.Context, reservations []*domain.Reservation) error
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter, page query.Page) ([]*domain.Reservation, error)
	ListAndCount(ctx context.Context, filter ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error)
	Save(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, ids []string) error
}
