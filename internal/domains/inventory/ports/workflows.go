package ports

import "context"

// TeardownResult reports what a location teardown removed.
type TeardownResult struct {
	LevelIDs       []string
	ReservationIDs []string
}

// TeardownOrchestrator runs the location-teardown flow: remove every
// reservation at the locations, then every level, all-or-nothing. The durable
// implementation survives process restarts; the inline one runs synchronously.
type TeardownOrchestrator interface {
	TeardownLocations(ctx context.Context, locationIDs []string) (*TeardownResult, error)
}
