package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the inventory schema. Intended to replace adapter-level
// automigrate in deployments that separate schema management from serving.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&itemRecord{},
		&levelRecord{},
		&reservationRecord{},
	)
}

// Item schema mirrors the inventory Postgres adapter.
type itemRecord struct {
	ID               string     `gorm:"primaryKey;column:id;size:64"`
	SKU              string     `gorm:"column:sku;uniqueIndex:idx_inventory_items_sku,where:deleted_at IS NULL"`
	RequiresShipping bool       `gorm:"column:requires_shipping"`
	DeletedAt        *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt        time.Time  `gorm:"column:created_at;index"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "inventory_items" }

// Level schema mirrors the inventory Postgres adapter.
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

// Reservation schema mirrors the inventory Postgres adapter.
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
