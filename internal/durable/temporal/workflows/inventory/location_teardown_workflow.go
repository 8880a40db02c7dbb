package inventory

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	inventoryactivities "github.com/stocklane/inventory-service/internal/platform/temporal/activities/inventory"
)

const (
	// LocationTeardownWorkflowName is the public identifier for registering the workflow.
	LocationTeardownWorkflowName = "inventory.workflows.LocationTeardown"
	// LocationTeardownTaskQueue is the queue consumed by the worker processing teardown workflows.
	LocationTeardownTaskQueue = "INVENTORY_LOCATION_TEARDOWN"
)

// LocationTeardownWorkflowInput captures the locations being decommissioned.
type LocationTeardownWorkflowInput struct {
	LocationIDs []string
	TraceID     string
}

// LocationTeardownWorkflowResult reports what the teardown removed.
type LocationTeardownWorkflowResult struct {
	LevelIDs       []string
	ReservationIDs []string
}

// LocationTeardownWorkflow durably removes every level and reservation at the
// given locations. The whole removal runs as one activity so the cascade
// shares a single database transaction; the workflow adds retries and
// restart survival around it.
func LocationTeardownWorkflow(ctx workflow.Context, input LocationTeardownWorkflowInput) (*LocationTeardownWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("LocationTeardownWorkflow started", withTraceID(input.TraceID, "locationCount", len(input.LocationIDs))...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result inventoryactivities.TeardownLocationsResult
	err := workflow.ExecuteActivity(
		ctx,
		inventoryactivities.TeardownLocationsActivityName,
		inventoryactivities.TeardownLocationsInput{LocationIDs: input.LocationIDs},
	).Get(ctx, &result)
	if err != nil {
		logger.Error("LocationTeardownWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}

	logger.Info("LocationTeardownWorkflow completed",
		withTraceID(input.TraceID, "deletedLevels", len(result.LevelIDs), "deletedReservations", len(result.ReservationIDs))...)
	return &LocationTeardownWorkflowResult{
		LevelIDs:       result.LevelIDs,
		ReservationIDs: result.ReservationIDs,
	}, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
