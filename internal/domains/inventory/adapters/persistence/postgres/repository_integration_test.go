//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/platform/migrations"
	platformpostgres "github.com/stocklane/inventory-service/internal/platform/postgres"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

func setupInventoryPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("inventory_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func mustItem(t *testing.T, id, sku string) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(id, sku, true)
	require.NoError(t, err)
	return item
}

func mustLevel(t *testing.T, id, itemID, locationID string, stocked int64) *domain.Level {
	t.Helper()
	level, err := domain.NewLevel(id, itemID, locationID, stocked, 0)
	require.NoError(t, err)
	return level
}

func TestItemRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")}))

	fetched, err := repo.Get(ctx, "iitem_1")
	require.NoError(t, err)
	assert.Equal(t, "SHIRT-S", fetched.SKU)
	assert.True(t, fetched.RequiresShipping)

	_, err = repo.Get(ctx, "iitem_missing")
	assert.ErrorIs(t, err, ports.ErrItemNotFound)
}

func TestItemRepository_DuplicateSKU(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")}))

	err := repo.Create(ctx, []*domain.Item{mustItem(t, "iitem_2", "SHIRT-S")})
	assert.ErrorIs(t, err, ports.ErrDuplicateSKU)

	// The unique index only covers live rows, so the SKU frees up once the
	// owning item is soft deleted.
	_, err = repo.SoftDelete(ctx, []string{"iitem_1"}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, []*domain.Item{mustItem(t, "iitem_2", "SHIRT-S")}))

	exists, err := repo.SKUExists(ctx, "SHIRT-S", "iitem_2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestItemRepository_SoftDeleteRestoreAndListing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []*domain.Item{
		mustItem(t, "iitem_1", "SHIRT-S"),
		mustItem(t, "iitem_2", "SHIRT-M"),
	}))

	affected, err := repo.SoftDelete(ctx, []string{"iitem_1", "iitem_missing"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, []string{"iitem_1"}, affected)

	listed, err := repo.List(ctx, ports.ItemFilter{}, query.Page{Take: 10})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "iitem_2", listed[0].ID)

	listed, err = repo.List(ctx, ports.ItemFilter{IncludeDeleted: true}, query.Page{Take: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	restored, err := repo.Restore(ctx, []string{"iitem_1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"iitem_1"}, restored)

	item, err := repo.Get(ctx, "iitem_1")
	require.NoError(t, err)
	assert.False(t, item.IsDeleted())
}

func TestLevelRepository_DuplicatePairAndSave(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewLevelRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []*domain.Level{mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10)}))

	err := repo.Create(ctx, []*domain.Level{mustLevel(t, "ilvl_2", "iitem_1", "loc_1", 5)})
	assert.ErrorIs(t, err, ports.ErrDuplicateLevel)

	level, err := repo.GetByItemAndLocation(ctx, "iitem_1", "loc_1")
	require.NoError(t, err)
	require.NoError(t, level.Reserve(4))
	require.NoError(t, repo.Save(ctx, level))

	fetched, err := repo.Get(ctx, "ilvl_1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, fetched.Reserved)
}

func TestLevelRepository_DeleteByLocations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewLevelRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, []*domain.Level{
		mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10),
		mustLevel(t, "ilvl_2", "iitem_2", "loc_1", 10),
		mustLevel(t, "ilvl_3", "iitem_1", "loc_2", 10),
	}))

	deleted, err := repo.DeleteByLocations(ctx, []string{"loc_1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ilvl_1", "ilvl_2"}, deleted)

	_, err = repo.GetByItemAndLocation(ctx, "iitem_1", "loc_1")
	assert.ErrorIs(t, err, ports.ErrLevelNotFound)
	_, err = repo.Get(ctx, "ilvl_3")
	require.NoError(t, err)
}

func TestReservationRepository_SaveAndFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	r, err := domain.NewReservation("resv_1", "iitem_1", "loc_1", 3, "li_1", map[string]string{"order": "ord_1"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, []*domain.Reservation{r}))

	require.NoError(t, r.UpdateQuantity(5))
	r.ReplaceMetadata(map[string]string{"order": "ord_2"})
	require.NoError(t, repo.Save(ctx, r))

	fetched, err := repo.Get(ctx, "resv_1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, fetched.Quantity)
	assert.Equal(t, map[string]string{"order": "ord_2"}, fetched.Metadata)

	byLine, err := repo.List(ctx, ports.ReservationFilter{LineItemIDs: []string{"li_1"}}, query.Page{Take: 10})
	require.NoError(t, err)
	assert.Len(t, byLine, 1)

	require.NoError(t, repo.Delete(ctx, []string{"resv_1"}))
	err = repo.Delete(ctx, []string{"resv_1"})
	assert.ErrorIs(t, err, ports.ErrReservationNotFound)
}

func TestTxManager_RollsBackAcrossRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	items := NewItemRepository(db)
	levels := NewLevelRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := items.Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")}); err != nil {
			return err
		}
		if err := levels.Create(ctx, []*domain.Level{mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = items.Get(ctx, "iitem_1")
	assert.ErrorIs(t, err, ports.ErrItemNotFound)
	_, err = levels.Get(ctx, "ilvl_1")
	assert.ErrorIs(t, err, ports.ErrLevelNotFound)
}

func TestTxManager_RowLockSerializesReservations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	levels := NewLevelRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	require.NoError(t, levels.Create(ctx, []*domain.Level{mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10)}))

	reserve := func(qty int64) error {
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			level, err := levels.GetByItemAndLocationForUpdate(ctx, "iitem_1", "loc_1")
			if err != nil {
				return err
			}
			if err := level.Reserve(qty); err != nil {
				return err
			}
			return levels.Save(ctx, level)
		})
	}

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- reserve(3) }()
	}
	var failures int
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	level, err := levels.Get(ctx, "ilvl_1")
	require.NoError(t, err)
	assert.EqualValues(t, 9, level.Reserved)
	assert.LessOrEqual(t, level.Reserved, level.Stocked)
}
