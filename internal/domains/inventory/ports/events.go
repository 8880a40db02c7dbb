package ports

import "context"

// Event names emitted after committed mutations.
const (
	EventItemCreated        = "inventory-item.created"
	EventItemDeleted        = "inventory-item.deleted"
	EventLevelCreated       = "inventory-level.created"
	EventLevelUpdated       = "inventory-level.updated"
	EventLevelDeleted       = "inventory-level.deleted"
	EventReservationCreated = "reservation-item.created"
	EventReservationDeleted = "reservation-item.deleted"
)

// Event is a committed inventory mutation notification. Publishing is
// best-effort and happens after the owning transaction commits.
type Event struct {
	Name string
	ID   string
	Data map[string]string
}

// EventPublisher pushes committed mutation events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
