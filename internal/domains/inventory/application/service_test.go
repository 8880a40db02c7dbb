package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/inventory-service/internal/domains/inventory/adapters/memory"
	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store := memory.NewStore()
	return NewService(store.Items(), store.Levels(), store.Reservations(), store, opts...)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *capturePublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

func pageAll() query.Page {
	return query.Page{Take: 100}
}

func seedItem(t *testing.T, svc *Service, sku string) *domain.Item {
	t.Helper()
	items, err := svc.CreateItems(context.Background(), []ports.CreateItemInput{{SKU: sku, RequiresShipping: true}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

func seedLevel(t *testing.T, svc *Service, itemID, locationID string, stocked int64) *domain.Level {
	t.Helper()
	levels, err := svc.CreateLevels(context.Background(), []ports.CreateLevelInput{
		{ItemID: itemID, LocationID: locationID, Stocked: stocked},
	})
	require.NoError(t, err)
	require.Len(t, levels, 1)
	return levels[0]
}

func TestCreateItems_AssignsIDsAndPublishes(t *testing.T) {
	publisher := &capturePublisher{}
	svc := newTestService(t, WithEventPublisher(publisher))

	items, err := svc.CreateItems(context.Background(), []ports.CreateItemInput{
		{SKU: "SHIRT-S"},
		{SKU: "SHIRT-M", RequiresShipping: true},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.Equal(t, []string{ports.EventItemCreated, ports.EventItemCreated}, publisher.names())
}

func TestCreateItems_EmptySKUFailsValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateItems(context.Background(), []ports.CreateItemInput{{SKU: "   "}})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptySKU)
}

func TestCreateItems_DuplicateSKUWithinBatch(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateItems(context.Background(), []ports.CreateItemInput{
		{SKU: "SHIRT-S"},
		{SKU: "SHIRT-S"},
	})
	require.ErrorIs(t, err, ports.ErrDuplicateSKU)

	var bulkErr *ports.BulkOperationError
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, 1, bulkErr.Index)
	assert.Equal(t, "SHIRT-S", bulkErr.Key)

	// Nothing from the failed batch was persisted.
	items, err := svc.ListItems(context.Background(), ports.ItemFilter{}, query.Page{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateItems_DuplicateSKUAgainstExisting(t *testing.T) {
	svc := newTestService(t)
	seedItem(t, svc, "SHIRT-S")

	_, err := svc.CreateItems(context.Background(), []ports.CreateItemInput{{SKU: "SHIRT-S"}})
	require.ErrorIs(t, err, ports.ErrDuplicateSKU)
}

func TestUpdateItems_RenameChecksUniqueness(t *testing.T) {
	svc := newTestService(t)
	first := seedItem(t, svc, "SHIRT-S")
	seedItem(t, svc, "SHIRT-M")

	taken := "SHIRT-M"
	_, err := svc.UpdateItems(context.Background(), []ports.UpdateItemInput{{ID: first.ID, SKU: &taken}})
	require.ErrorIs(t, err, ports.ErrDuplicateSKU)

	fresh := "SHIRT-L"
	updated, err := svc.UpdateItems(context.Background(), []ports.UpdateItemInput{{ID: first.ID, SKU: &fresh}})
	require.NoError(t, err)
	assert.Equal(t, "SHIRT-L", updated[0].SKU)

	// Renaming to the item's own SKU is allowed.
	_, err = svc.UpdateItems(context.Background(), []ports.UpdateItemInput{{ID: first.ID, SKU: &fresh}})
	require.NoError(t, err)
}

func TestUpdateItems_UnknownItem(t *testing.T) {
	svc := newTestService(t)

	shipping := false
	_, err := svc.UpdateItems(context.Background(), []ports.UpdateItemInput{{ID: "iitem_missing", RequiresShipping: &shipping}})
	require.ErrorIs(t, err, ports.ErrItemNotFound)
}

func TestSoftDeleteItems_HidesFromListingsButKeepsRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, "SHIRT-S")
	level := seedLevel(t, svc, item.ID, "loc_1", 10)
	reservations, err := svc.CreateReservations(ctx, []ports.CreateReservationInput{
		{ItemID: item.ID, LocationID: "loc_1", Quantity: 3},
	})
	require.NoError(t, err)

	links, err := svc.SoftDeleteItems(ctx, []string{item.ID}, ports.CascadeReturn{
		ReturnLinks: []string{ports.LinkInventoryLevels, ports.LinkReservationItems},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{level.ID}, links[ports.LinkInventoryLevels])
	assert.Equal(t, []string{reservations[0].ID}, links[ports.LinkReservationItems])

	// Hidden from default listings, still retrievable by id.
	listed, err := svc.ListItems(ctx, ports.ItemFilter{}, query.Page{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	got, err := svc.RetrieveItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	// Levels and reservations survive the soft delete untouched.
	gotLevel, err := svc.RetrieveLevel(ctx, level.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, gotLevel.Reserved)

	restored, err := svc.RestoreItems(ctx, []string{item.ID}, ports.CascadeReturn{})
	require.NoError(t, err)
	assert.Nil(t, restored)

	got, err = svc.RetrieveItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())
}

func TestSoftDeleteItems_UnknownItemAborts(t *testing.T) {
	svc := newTestService(t)
	item := seedItem(t, svc, "SHIRT-S")

	_, err := svc.SoftDeleteItems(context.Background(), []string{item.ID, "iitem_missing"}, ports.CascadeReturn{})
	require.ErrorIs(t, err, ports.ErrItemNotFound)

	// The known item was not soft deleted either.
	got, err := svc.RetrieveItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())
}

func TestDeleteItems_CascadesLevelsAndReservations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, "SHIRT-S")
	keep := seedItem(t, svc, "SHIRT-M")
	level := seedLevel(t, svc, item.ID, "loc_1", 10)
	keptLevel := seedLevel(t, svc, keep.ID, "loc_1", 5)
	reservations, err := svc.CreateReservations(ctx, []ports.CreateReservationInput{
		{ItemID: item.ID, LocationID: "loc_1", Quantity: 2},
	})
	require.NoError(t, err)

	result, err := svc.DeleteItems(ctx, []string{item.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{level.ID}, result.LevelIDs)
	assert.Equal(t, []string{reservations[0].ID}, result.ReservationIDs)

	_, err = svc.RetrieveItem(ctx, item.ID)
	require.ErrorIs(t, err, ports.ErrItemNotFound)
	_, err = svc.RetrieveLevel(ctx, level.ID)
	require.ErrorIs(t, err, ports.ErrLevelNotFound)

	// The unrelated item and its level survive.
	_, err = svc.RetrieveLevel(ctx, keptLevel.ID)
	require.NoError(t, err)
}

func TestDeleteItems_DuplicateIDsCountOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, "SHIRT-S")
	level := seedLevel(t, svc, item.ID, "loc_1", 10)

	result, err := svc.DeleteItems(ctx, []string{item.ID, item.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{level.ID}, result.LevelIDs)

	_, err = svc.RetrieveItem(ctx, item.ID)
	require.ErrorIs(t, err, ports.ErrItemNotFound)
}

func TestSoftDeleteItems_DuplicateIDsCountOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, "SHIRT-S")

	_, err := svc.SoftDeleteItems(ctx, []string{item.ID, item.ID}, ports.CascadeReturn{})
	require.NoError(t, err)

	got, err := svc.RetrieveItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	_, err = svc.RestoreItems(ctx, []string{item.ID, item.ID}, ports.CascadeReturn{})
	require.NoError(t, err)

	got, err = svc.RetrieveItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())
}

func TestListAndCountItems_Paginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, sku := range []string{"A-1", "A-2", "A-3"} {
		seedItem(t, svc, sku)
	}

	items, count, err := svc.ListAndCountItems(ctx, ports.ItemFilter{}, query.Page{Skip: 1, Take: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Len(t, items, 1)
}
