package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

var _ ports.LevelRepository = (*LevelRepository)(nil)

// LevelRepository persists inventory levels in PostgreSQL using GORM. The
// quantity columns on a level row are only ever mutated by callers that
// locked the row through GetByItemAndLocationForUpdate, so SELECT FOR UPDATE
// serializes every reserve, release, and adjustment on the same pair.
type LevelRepository struct {
	db *gorm.DB
}

// NewLevelRepository wires a PostgreSQL-backed level repository. Caller
// manages DB lifecycle.
func NewLevelRepository(db *gorm.DB) *LevelRepository {
	repo := &LevelRepository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&levelRecord{})
	}
	return repo
}

// Create inserts the given levels. A second level for the same
// (item, location) pair surfaces as ErrDuplicateLevel.
func (r *LevelRepository) Create(ctx context.Context, levels []*domain.Level) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(levels) == 0 {
		return nil
	}
	records := make([]levelRecord, 0, len(levels))
	for _, level := range levels {
		records = append(records, toLevelRecord(level))
	}
	if err := dbFrom(ctx, r.db).Create(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateLevel
		}
		return err
	}
	return nil
}

// Get fetches a level by identifier.
func (r *LevelRepository) Get(ctx context.Context, id string) (*domain.Level, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record levelRecord
	if err := dbFrom(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrLevelNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByItemAndLocation fetches the level for one (item, location) pair.
func (r *LevelRepository) GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return r.getByPair(ctx, itemID, locationID, false)
}

// GetByItemAndLocationForUpdate fetches the pair's level under SELECT FOR
// UPDATE, holding the row lock for the remainder of the ambient transaction.
func (r *LevelRepository) GetByItemAndLocationForUpdate(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return r.getByPair(ctx, itemID, locationID, true)
}

func (r *LevelRepository) getByPair(ctx context.Context, itemID, locationID string, forUpdate bool) (*domain.Level, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := dbFrom(ctx, r.db)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record levelRecord
	if err := db.First(&record, "inventory_item_id = ? AND location_id = ?", itemID, locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrLevelNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByItemAndLocations fetches all of the item's levels at the given
// locations in one read.
func (r *LevelRepository) GetByItemAndLocations(ctx context.Context, itemID string, locationIDs []string) ([]*domain.Level, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(locationIDs) == 0 {
		return nil, nil
	}
	var records []levelRecord
	if err := dbFrom(ctx, r.db).
		Where("inventory_item_id = ? AND location_id IN ?", itemID, locationIDs).
		Order("created_at, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return toLevels(records), nil
}

// List returns levels matching the filter, ordered by creation time.
func (r *LevelRepository) List(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []levelRecord
	if err := paged(levelScope(dbFrom(ctx, r.db), filter), page).Find(&records).Error; err != nil {
		return nil, err
	}
	return toLevels(records), nil
}

// ListAndCount returns a page of levels plus the total match count.
func (r *LevelRepository) ListAndCount(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var count int64
	if err := levelScope(dbFrom(ctx, r.db), filter).Model(&levelRecord{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	levels, err := r.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return levels, count, nil
}

// Save writes the level's quantity columns back.
func (r *LevelRepository) Save(ctx context.Context, level *domain.Level) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := dbFrom(ctx, r.db).Model(&levelRecord{}).Where("id = ?", level.ID).Updates(map[string]any{
		"stocked_quantity":  level.Stocked,
		"reserved_quantity": level.Reserved,
		"incoming_quantity": level.Incoming,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrLevelNotFound
	}
	return nil
}

// Delete removes the level for one (item, location) pair.
func (r *LevelRepository) Delete(ctx context.Context, itemID, locationID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := dbFrom(ctx, r.db).Delete(&levelRecord{}, "inventory_item_id = ? AND location_id = ?", itemID, locationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrLevelNotFound
	}
	return nil
}

// DeleteByLocations removes every level at the given locations, returning the
// deleted ids.
func (r *LevelRepository) DeleteByLocations(ctx context.Context, locationIDs []string) ([]string, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	return r.deleteWhere(ctx, "location_id IN ?", locationIDs)
}

// DeleteByItems removes every level of the given items, returning the deleted
// ids.
func (r *LevelRepository) DeleteByItems(ctx context.Context, itemIDs []string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return r.deleteWhere(ctx, "inventory_item_id IN ?", itemIDs)
}

func (r *LevelRepository) deleteWhere(ctx context.Context, cond string, arg any) ([]string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := dbFrom(ctx, r.db)
	var ids []string
	if err := db.Model(&levelRecord{}).Where(cond, arg).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Delete(&levelRecord{}, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *LevelRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres level repository not configured")
	}
	return nil
}

func levelScope(db *gorm.DB, filter ports.LevelFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		db = db.Where("id IN ?", filter.IDs)
	}
	if len(filter.ItemIDs) > 0 {
		db = db.Where("inventory_item_id IN ?", filter.ItemIDs)
	}
	if len(filter.LocationIDs) > 0 {
		db = db.Where("location_id IN ?", filter.LocationIDs)
	}
	return db
}

func toLevels(records []levelRecord) []*domain.Level {
	levels := make([]*domain.Level, 0, len(records))
	for i := range records {
		levels = append(levels, records[i].toDomain())
	}
	return levels
}
