package ports

import (
	"context"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

// Linked-record keys returned by soft-delete/restore cascade bookkeeping.
const (
	LinkInventoryLevels  = "inventory_levels"
	LinkReservationItems = "reservation_items"
)

// CreateItemInput describes a new inventory item.
type CreateItemInput struct {
	SKU              string
	RequiresShipping bool
}

// UpdateItemInput carries a partial item mutation; nil fields are untouched.
type UpdateItemInput struct {
	ID               string
	SKU              *string
	RequiresShipping *bool
}

// CreateLevelInput describes a new per-location quantity record.
type CreateLevelInput struct {
	ItemID     string
	LocationID string
	Stocked    int64
	Incoming   int64
}

// UpdateLevelInput addresses a level by its (item, location) pair; nil fields
// are untouched. Reserved quantity is never writable through updates.
type UpdateLevelInput struct {
	ItemID     string
	LocationID string
	Stocked    *int64
	Incoming   *int64
}

// CreateReservationInput describes a new commitment against a level.
type CreateReservationInput struct {
	ItemID     string
	LocationID string
	Quantity   int64
	LineItemID string
	Metadata   map[string]string
}

// UpdateReservationInput carries a partial reservation mutation; quantity
// changes are re-validated against the owning level using the delta.
type UpdateReservationInput struct {
	ID       string
	Quantity *int64
	Metadata map[string]string
}

// CascadeReturn names the linked-record id sets a soft-delete or restore call
// should report back (LinkInventoryLevels, LinkReservationItems).
type CascadeReturn struct {
	ReturnLinks []string
}

// CascadeResult pairs the ids a cascade removed for the caller's own
// bookkeeping.
type CascadeResult struct {
	LevelIDs       []string
	ReservationIDs []string
}

// Service is the inventory module surface consumed by order and fulfillment
// workflows. Every mutating method honors an ambient transaction carried in
// ctx by the TxManager, so callers can fold inventory mutation into a larger
// cross-module commit.
type Service interface {
	// Inventory items.
	CreateItems(ctx context.Context, inputs []CreateItemInput) ([]*domain.Item, error)
	RetrieveItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, filter ItemFilter, page query.Page) ([]*domain.Item, error)
	ListAndCountItems(ctx context.Context, filter ItemFilter, page query.Page) ([]*domain.Item, int64, error)
	UpdateItems(ctx context.Context, inputs []UpdateItemInput) ([]*domain.Item, error)
	// DeleteItems permanently removes items, cascading levels and reservations.
	DeleteItems(ctx context.Context, ids []string) (*CascadeResult, error)
	SoftDeleteItems(ctx context.Context, ids []string, cfg CascadeReturn) (map[string][]string, error)
	RestoreItems(ctx context.Context, ids []string, cfg CascadeReturn) (map[string][]string, error)

	// Inventory levels.
	CreateLevels(ctx context.Context, inputs []CreateLevelInput) ([]*domain.Level, error)
	RetrieveLevel(ctx context.Context, levelID string) (*domain.Level, error)
	RetrieveLevelByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error)
	ListLevels(ctx context.Context, filter LevelFilter, page query.Page) ([]*domain.Level, error)
	ListAndCountLevels(ctx context.Context, filter LevelFilter, page query.Page) ([]*domain.Level, int64, error)
	// UpdateLevels applies every update or none.
	UpdateLevels(ctx context.Context, inputs []UpdateLevelInput) ([]*domain.Level, error)
	AdjustInventory(ctx context.Context, itemID, locationID string, adjustment int64) (*domain.Level, error)
	DeleteLevel(ctx context.Context, itemID, locationID string) error
	// DeleteLevelsByLocations tears down every level at the given locations,
	// cascading their reservations first.
	DeleteLevelsByLocations(ctx context.Context, locationIDs []string) (*CascadeResult, error)

	// Reservation items.
	CreateReservations(ctx context.Context, inputs []CreateReservationInput) ([]*domain.Reservation, error)
	RetrieveReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter, page query.Page) ([]*domain.Reservation, error)
	ListAndCountReservations(ctx context.Context, filter ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error)
	UpdateReservations(ctx context.Context, inputs []UpdateReservationInput) ([]*domain.Reservation, error)
	DeleteReservations(ctx context.Context, ids []string) error
	DeleteReservationsByLineItems(ctx context.Context, lineItemIDs []string) error
	DeleteReservationsByLocations(ctx context.Context, locationIDs []string) error

	// Availability.
	AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error)
	StockedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error)
	ReservedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error)
	ConfirmInventory(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error)
}
