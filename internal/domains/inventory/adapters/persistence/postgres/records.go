package postgres

import (
	"time"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
)

// itemRecord maps the inventory item aggregate to a relational table.
// Soft deletion is an explicit marker column, not gorm's DeletedAt scoping,
// so deleted rows stay addressable by id.
type itemRecord struct {
	ID               string     `gorm:"primaryKey;column:id;size:64"`
	SKU              string     `gorm:"column:sku;uniqueIndex:idx_inventory_items_sku,where:deleted_at IS NULL"`
	RequiresShipping bool       `gorm:"column:requires_shipping"`
	DeletedAt        *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt        time.Time  `gorm:"column:created_at;index"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "inventory_items" }

// levelRecord maps the per-(item, location) quantity row. The composite
// unique index is the duplicate-pair guard; the row is the single point of
// truth for reserved vs. stocked.
type levelRecord struct {
	ID              string    `gorm:"primaryKey;column:id;size:64"`
	InventoryItemID string    `gorm:"column:inventory_item_id;size:64;uniqueIndex:idx_inventory_levels_item_location;index"`
	LocationID      string    `gorm:"column:location_id;size:64;uniqueIndex:idx_inventory_levels_item_location;index"`
	Stocked         int64     `gorm:"column:stocked_quantity"`
	Reserved        int64     `gorm:"column:reserved_quantity"`
	Incoming        int64     `gorm:"column:incoming_quantity"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (levelRecord) TableName() string { return "inventory_levels" }

// reservationRecord maps a commitment against one level.
type reservationRecord struct {
	ID              string            `gorm:"primaryKey;column:id;size:64"`
	InventoryItemID string            `gorm:"column:inventory_item_id;size:64;index"`
	LocationID      string            `gorm:"column:location_id;size:64;index"`
	Quantity        int64             `gorm:"column:quantity"`
	LineItemID      string            `gorm:"column:line_item_id;size:64;index"`
	Metadata        map[string]string `gorm:"column:metadata;serializer:json"`
	CreatedAt       time.Time         `gorm:"column:created_at;index"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
}

func (reservationRecord) TableName() string { return "reservation_items" }

func toItemRecord(item *domain.Item) itemRecord {
	return itemRecord{
		ID:               item.ID,
		SKU:              item.SKU,
		RequiresShipping: item.RequiresShipping,
		DeletedAt:        item.DeletedAt,
	}
}

func (r itemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:               r.ID,
		SKU:              r.SKU,
		RequiresShipping: r.RequiresShipping,
		DeletedAt:        r.DeletedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toLevelRecord(level *domain.Level) levelRecord {
	return levelRecord{
		ID:              level.ID,
		InventoryItemID: level.ItemID,
		LocationID:      level.LocationID,
		Stocked:         level.Stocked,
		Reserved:        level.Reserved,
		Incoming:        level.Incoming,
	}
}

func (r levelRecord) toDomain() *domain.Level {
	return &domain.Level{
		ID:         r.ID,
		ItemID:     r.InventoryItemID,
		LocationID: r.LocationID,
		Stocked:    r.Stocked,
		Reserved:   r.Reserved,
		Incoming:   r.Incoming,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toReservationRecord(reservation *domain.Reservation) reservationRecord {
	return reservationRecord{
		ID:              reservation.ID,
		InventoryItemID: reservation.ItemID,
		LocationID:      reservation.LocationID,
		Quantity:        reservation.Quantity,
		LineItemID:      reservation.LineItemID,
		Metadata:        reservation.Metadata,
	}
}

func (r reservationRecord) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:         r.ID,
		ItemID:     r.InventoryItemID,
		LocationID: r.LocationID,
		Quantity:   r.Quantity,
		LineItemID: r.LineItemID,
		Metadata:   r.Metadata,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
