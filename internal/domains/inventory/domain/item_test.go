package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem_Validates(t *testing.T) {
	_, err := NewItem("iitem_1", "   ", true)
	require.ErrorIs(t, err, ErrEmptySKU)

	_, err = NewItem("", "SHIRT-S", true)
	require.ErrorIs(t, err, ErrMissingItemID)

	item, err := NewItem("iitem_1", "  SHIRT-S  ", true)
	require.NoError(t, err)
	assert.Equal(t, "SHIRT-S", item.SKU)
	assert.True(t, item.RequiresShipping)
}

func TestItem_SoftDeleteAndRestore(t *testing.T) {
	item, err := NewItem("iitem_1", "SHIRT-S", false)
	require.NoError(t, err)
	assert.False(t, item.IsDeleted())

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item.SoftDelete(first)
	require.True(t, item.IsDeleted())

	// A second soft delete keeps the original timestamp.
	item.SoftDelete(first.Add(time.Hour))
	assert.Equal(t, first, *item.DeletedAt)

	item.Restore()
	assert.False(t, item.IsDeleted())
}

func TestNewReservation_Validates(t *testing.T) {
	_, err := NewReservation("resv_1", "", "loc_1", 2, "", nil)
	require.ErrorIs(t, err, ErrMissingItemID)

	_, err = NewReservation("resv_1", "iitem_1", "", 2, "", nil)
	require.ErrorIs(t, err, ErrMissingLocationID)

	_, err = NewReservation("resv_1", "iitem_1", "loc_1", 0, "", nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	meta := map[string]string{"order": "ord_1"}
	r, err := NewReservation("resv_1", "iitem_1", "loc_1", 2, "li_1", meta)
	require.NoError(t, err)

	// Metadata is copied, not aliased.
	meta["order"] = "mutated"
	assert.Equal(t, "ord_1", r.Metadata["order"])
}

func TestReservation_UpdateQuantity(t *testing.T) {
	r, err := NewReservation("resv_1", "iitem_1", "loc_1", 2, "", nil)
	require.NoError(t, err)

	require.ErrorIs(t, r.UpdateQuantity(0), ErrInvalidQuantity)
	require.NoError(t, r.UpdateQuantity(5))
	assert.EqualValues(t, 5, r.Quantity)
}
