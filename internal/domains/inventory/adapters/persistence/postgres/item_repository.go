package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

var _ ports.ItemRepository = (*ItemRepository)(nil)

// ItemRepository persists inventory items in PostgreSQL using GORM.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository wires a PostgreSQL-backed item repository. Caller manages
// DB lifecycle.
func NewItemRepository(db *gorm.DB) *ItemRepository {
	repo := &ItemRepository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&itemRecord{})
	}
	return repo
}

// Create inserts the given items. A sku collision with a live row surfaces as
// ErrDuplicateSKU.
func (r *ItemRepository) Create(ctx context.Context, items []*domain.Item) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	records := make([]itemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toItemRecord(item))
	}
	if err := dbFrom(ctx, r.db).Create(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateSKU
		}
		return err
	}
	return nil
}

// Get fetches an item by identifier, including soft-deleted rows.
func (r *ItemRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	if err := dbFrom(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrItemNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns items matching the filter, ordered by creation time.
func (r *ItemRepository) List(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []itemRecord
	if err := paged(itemScope(dbFrom(ctx, r.db), filter), page).Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

// ListAndCount returns a page of items plus the total match count.
func (r *ItemRepository) ListAndCount(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var count int64
	if err := itemScope(dbFrom(ctx, r.db), filter).Model(&itemRecord{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	items, err := r.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

// Update persists a full item mutation.
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := dbFrom(ctx, r.db).Model(&itemRecord{}).Where("id = ?", item.ID).Updates(map[string]any{
		"sku":               item.SKU,
		"requires_shipping": item.RequiresShipping,
		"deleted_at":        item.DeletedAt,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateSKU
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

// SKUExists reports whether a non-deleted item other than excludeID uses sku.
func (r *ItemRepository) SKUExists(ctx context.Context, sku string, excludeID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	q := dbFrom(ctx, r.db).Model(&itemRecord{}).Where("sku = ? AND deleted_at IS NULL", sku)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks the given live items deleted at the given time, returning
// the ids actually affected. Already-deleted items are left as they are.
func (r *ItemRepository) SoftDelete(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.flipDeleted(ctx, ids, "deleted_at IS NULL", &at)
}

// Restore clears the deletion marker on the given items, returning the ids
// actually affected.
func (r *ItemRepository) Restore(ctx context.Context, ids []string) ([]string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.flipDeleted(ctx, ids, "deleted_at IS NOT NULL", nil)
}

func (r *ItemRepository) flipDeleted(ctx context.Context, ids []string, cond string, at *time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := dbFrom(ctx, r.db)
	var affected []string
	if err := db.Model(&itemRecord{}).
		Where("id IN ?", ids).Where(cond).
		Order("id").Pluck("id", &affected).Error; err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return nil, nil
	}
	if err := db.Model(&itemRecord{}).Where("id IN ?", affected).
		Update("deleted_at", at).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

// HardDelete removes items permanently. Absent ids fail with not-found.
func (r *ItemRepository) HardDelete(ctx context.Context, ids []string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	result := dbFrom(ctx, r.db).Delete(&itemRecord{}, "id IN ?", ids)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres item repository not configured")
	}
	return nil
}

func itemScope(db *gorm.DB, filter ports.ItemFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		db = db.Where("id IN ?", filter.IDs)
	}
	if len(filter.SKUs) > 0 {
		db = db.Where("sku IN ?", filter.SKUs)
	}
	if !filter.IncludeDeleted {
		db = db.Where("deleted_at IS NULL")
	}
	return db
}

// paged applies deterministic ordering and the page window. A non-positive
// take means no limit; cascades list everything that matches.
func paged(db *gorm.DB, page query.Page) *gorm.DB {
	db = db.Order("created_at, id")
	if page.Skip > 0 {
		db = db.Offset(page.Skip)
	}
	if page.Take > 0 {
		db = db.Limit(page.Take)
	}
	return db
}
