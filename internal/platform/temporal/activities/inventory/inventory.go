package inventory

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

const (
	// TeardownLocationsActivityName removes every level and reservation at the given locations.
	TeardownLocationsActivityName = "inventory.activities.TeardownLocations"
)

// TeardownLocationsInput names the locations being decommissioned.
type TeardownLocationsInput struct {
	LocationIDs []string
}

// TeardownLocationsResult reports the ids the cascade removed.
type TeardownLocationsResult struct {
	LevelIDs       []string
	ReservationIDs []string
}

// Activities groups activities that operate on the inventory bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the inventory service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// TeardownLocations deletes every level at the given locations, cascading
// their reservations inside one transaction. The operation is idempotent:
// locations already torn down simply remove nothing on retry.
func (a *Activities) TeardownLocations(ctx context.Context, input TeardownLocationsInput) (*TeardownLocationsResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("teardown activity not initialized")
		return nil, errors.New("teardown activity not initialized")
	}
	logger.Info("TeardownLocations activity started", "locationCount", len(input.LocationIDs))
	result, err := a.service.DeleteLevelsByLocations(ctx, input.LocationIDs)
	if err != nil {
		logger.Error("TeardownLocations activity failed", "error", err)
		return nil, err
	}
	logger.Info("TeardownLocations activity completed",
		"deletedLevels", len(result.LevelIDs), "deletedReservations", len(result.ReservationIDs))
	return &TeardownLocationsResult{
		LevelIDs:       result.LevelIDs,
		ReservationIDs: result.ReservationIDs,
	}, nil
}
