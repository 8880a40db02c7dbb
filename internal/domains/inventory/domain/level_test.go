package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel_Validates(t *testing.T) {
	_, err := NewLevel("ilvl_1", "", "loc_1", 10, 0)
	require.ErrorIs(t, err, ErrMissingItemID)

	_, err = NewLevel("ilvl_1", "iitem_1", "", 10, 0)
	require.ErrorIs(t, err, ErrMissingLocationID)

	_, err = NewLevel("ilvl_1", "iitem_1", "loc_1", -1, 0)
	require.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = NewLevel("ilvl_1", "iitem_1", "loc_1", 10, -1)
	require.ErrorIs(t, err, ErrNegativeQuantity)

	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 10, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 10, level.Stocked)
	assert.EqualValues(t, 0, level.Reserved)
	assert.EqualValues(t, 3, level.Incoming)
}

func TestLevel_Reserve(t *testing.T) {
	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 10, 0)
	require.NoError(t, err)

	require.NoError(t, level.Reserve(6))
	assert.EqualValues(t, 6, level.Reserved)
	assert.EqualValues(t, 4, level.Available())

	err = level.Reserve(5)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "iitem_1", stockErr.ItemID)
	assert.Equal(t, "loc_1", stockErr.LocationID)
	assert.EqualValues(t, 5, stockErr.Requested)
	assert.EqualValues(t, 4, stockErr.Available)

	// Failed reservation leaves the level unchanged.
	assert.EqualValues(t, 6, level.Reserved)

	require.NoError(t, level.Reserve(4))
	assert.EqualValues(t, 0, level.Available())
}

func TestLevel_Reserve_NegativeDeltaReleases(t *testing.T) {
	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 10, 0)
	require.NoError(t, err)
	require.NoError(t, level.Reserve(7))

	require.NoError(t, level.Reserve(-3))
	assert.EqualValues(t, 4, level.Reserved)

	// A release larger than the commitment floors at zero rather than going
	// negative.
	require.NoError(t, level.Reserve(-100))
	assert.EqualValues(t, 0, level.Reserved)
}

func TestLevel_Release_FloorsAtZero(t *testing.T) {
	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 5, 0)
	require.NoError(t, err)
	require.NoError(t, level.Reserve(3))

	level.Release(2)
	assert.EqualValues(t, 1, level.Reserved)

	level.Release(10)
	assert.EqualValues(t, 0, level.Reserved)
}

func TestLevel_ApplyAdjustment(t *testing.T) {
	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 10, 0)
	require.NoError(t, err)
	require.NoError(t, level.Reserve(6))

	require.NoError(t, level.ApplyAdjustment(-4))
	assert.EqualValues(t, 6, level.Stocked)
	assert.EqualValues(t, 0, level.Available())

	err = level.ApplyAdjustment(-1)
	require.ErrorIs(t, err, ErrInvalidAdjustment)

	var adjErr *InvalidAdjustmentError
	require.True(t, errors.As(err, &adjErr))
	assert.EqualValues(t, -1, adjErr.Adjustment)
	assert.EqualValues(t, 6, adjErr.Stocked)
	assert.EqualValues(t, 6, adjErr.Reserved)

	// Failed adjustment leaves the level unchanged.
	assert.EqualValues(t, 6, level.Stocked)

	require.NoError(t, level.ApplyAdjustment(14))
	assert.EqualValues(t, 20, level.Stocked)
}

func TestLevel_CanReserve(t *testing.T) {
	level, err := NewLevel("ilvl_1", "iitem_1", "loc_1", 2, 0)
	require.NoError(t, err)

	assert.True(t, level.CanReserve(2))
	assert.False(t, level.CanReserve(3))
	assert.True(t, level.CanReserve(0))
	assert.True(t, level.CanReserve(-5))
}
