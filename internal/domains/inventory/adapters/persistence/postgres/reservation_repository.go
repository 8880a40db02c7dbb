package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

var _ ports.ReservationRepository = (*ReservationRepository)(nil)

// ReservationRepository persists reservation items in PostgreSQL using GORM.
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository wires a PostgreSQL-backed reservation repository.
// Caller manages DB lifecycle.
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	repo := &ReservationRepository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&reservationRecord{})
	}
	return repo
}

// Create inserts the given reservations.
func (r *ReservationRepository) Create(ctx context.Context, reservations []*domain.Reservation) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(reservations) == 0 {
		return nil
	}
	records := make([]reservationRecord, 0, len(reservations))
	for _, reservation := range reservations {
		records = append(records, toReservationRecord(reservation))
	}
	return dbFrom(ctx, r.db).Create(&records).Error
}

// Get fetches a reservation by identifier.
func (r *ReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record reservationRecord
	if err := dbFrom(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrReservationNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns reservations matching the filter, ordered by creation time.
func (r *ReservationRepository) List(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []reservationRecord
	if err := paged(reservationScope(dbFrom(ctx, r.db), filter), page).Find(&records).Error; err != nil {
		return nil, err
	}
	reservations := make([]*domain.Reservation, 0, len(records))
	for i := range records {
		reservations = append(reservations, records[i].toDomain())
	}
	return reservations, nil
}

// ListAndCount returns a page of reservations plus the total match count.
func (r *ReservationRepository) ListAndCount(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var count int64
	if err := reservationScope(dbFrom(ctx, r.db), filter).Model(&reservationRecord{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	reservations, err := r.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return reservations, count, nil
}

// Save writes the reservation's mutable fields back.
func (r *ReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := toReservationRecord(reservation)
	result := dbFrom(ctx, r.db).Model(&reservationRecord{}).Where("id = ?", reservation.ID).
		Select("quantity", "metadata").Updates(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrReservationNotFound
	}
	return nil
}

// Delete removes reservations permanently. Absent ids fail with not-found.
func (r *ReservationRepository) Delete(ctx context.Context, ids []string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	result := dbFrom(ctx, r.db).Delete(&reservationRecord{}, "id IN ?", ids)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return ports.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres reservation repository not configured")
	}
	return nil
}

func reservationScope(db *gorm.DB, filter ports.ReservationFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		db = db.Where("id IN ?", filter.IDs)
	}
	if len(filter.ItemIDs) > 0 {
		db = db.Where("inventory_item_id IN ?", filter.ItemIDs)
	}
	if len(filter.LocationIDs) > 0 {
		db = db.Where("location_id IN ?", filter.LocationIDs)
	}
	if len(filter.LineItemIDs) > 0 {
		db = db.Where("line_item_id IN ?", filter.LineItemIDs)
	}
	return db
}
