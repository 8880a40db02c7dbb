package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

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

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Items().Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")}))
		require.NoError(t, store.Levels().Create(ctx, []*domain.Level{mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Items().Get(ctx, "iitem_1")
	require.ErrorIs(t, err, ports.ErrItemNotFound)
	_, err = store.Levels().Get(ctx, "ilvl_1")
	require.ErrorIs(t, err, ports.ErrLevelNotFound)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return store.Items().Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")})
	})
	require.NoError(t, err)

	item, err := store.Items().Get(ctx, "iitem_1")
	require.NoError(t, err)
	assert.Equal(t, "SHIRT-S", item.SKU)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestWithinTx_NestedJoinsAmbientTransaction(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	// A failure in the outer transaction discards work done by the inner one.
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.WithinTx(ctx, func(ctx context.Context) error {
			return store.Items().Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")})
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Items().Get(ctx, "iitem_1")
	require.ErrorIs(t, err, ports.ErrItemNotFound)
}

func TestWithinTx_SnapshotIsolatesMutatedEntities(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Levels().Create(ctx, []*domain.Level{mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10)}))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		level, err := store.Levels().GetByItemAndLocationForUpdate(ctx, "iitem_1", "loc_1")
		if err != nil {
			return err
		}
		if err := level.Reserve(5); err != nil {
			return err
		}
		if err := store.Levels().Save(ctx, level); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	level, err := store.Levels().Get(ctx, "ilvl_1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, level.Reserved)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Items().Create(ctx, []*domain.Item{mustItem(t, "iitem_1", "SHIRT-S")}))

	got, err := store.Items().Get(ctx, "iitem_1")
	require.NoError(t, err)
	got.SKU = "MUTATED"

	again, err := store.Items().Get(ctx, "iitem_1")
	require.NoError(t, err)
	assert.Equal(t, "SHIRT-S", again.SKU)
}

func TestSoftDelete_SkipsAlreadyDeleted(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Items().Create(ctx, []*domain.Item{
		mustItem(t, "iitem_1", "SHIRT-S"),
		mustItem(t, "iitem_2", "SHIRT-M"),
	}))

	at := time.Now().UTC()
	affected, err := store.Items().SoftDelete(ctx, []string{"iitem_1"}, at)
	require.NoError(t, err)
	assert.Equal(t, []string{"iitem_1"}, affected)

	// Already deleted rows are not reported again.
	affected, err = store.Items().SoftDelete(ctx, []string{"iitem_1", "iitem_2"}, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"iitem_2"}, affected)

	restored, err := store.Items().Restore(ctx, []string{"iitem_1", "iitem_missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"iitem_1"}, restored)
}

func TestListLevels_FiltersAndPaginates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Levels().Create(ctx, []*domain.Level{
		mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10),
		mustLevel(t, "ilvl_2", "iitem_1", "loc_2", 10),
		mustLevel(t, "ilvl_3", "iitem_2", "loc_1", 10),
	}))

	levels, err := store.Levels().List(ctx, ports.LevelFilter{ItemIDs: []string{"iitem_1"}}, query.Page{})
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	levels, count, err := store.Levels().ListAndCount(ctx, ports.LevelFilter{LocationIDs: []string{"loc_1"}}, query.Page{Take: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, levels, 1)
}

func TestDeleteByLocations_RemovesPairIndex(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Levels().Create(ctx, []*domain.Level{
		mustLevel(t, "ilvl_1", "iitem_1", "loc_1", 10),
		mustLevel(t, "ilvl_2", "iitem_1", "loc_2", 10),
	}))

	deleted, err := store.Levels().DeleteByLocations(ctx, []string{"loc_1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ilvl_1"}, deleted)

	_, err = store.Levels().GetByItemAndLocation(ctx, "iitem_1", "loc_1")
	require.ErrorIs(t, err, ports.ErrLevelNotFound)

	// The pair is free for reuse after deletion.
	require.NoError(t, store.Levels().Create(ctx, []*domain.Level{
		mustLevel(t, "ilvl_4", "iitem_1", "loc_1", 3),
	}))
}
