package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

// Service orchestrates the inventory bounded context: item registry, level
// store, reservation store, and the availability read side. Every mutating
// use case runs its read-check-write sequence inside one transaction supplied
// by the TxManager, with level rows locked for the duration.
type Service struct {
	items        ports.ItemRepository
	levels       ports.LevelRepository
	reservations ports.ReservationRepository
	tx           ports.TxManager
	events       ports.EventPublisher
	now          func() time.Time
}

// Option customizes optional service collaborators.
type Option func(*Service)

// WithEventPublisher emits committed-mutation events through the publisher.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the inventory service with its repositories and
// transaction manager.
func NewService(
	items ports.ItemRepository,
	levels ports.LevelRepository,
	reservations ports.ReservationRepository,
	tx ports.TxManager,
	opts ...Option,
) *Service {
	s := &Service{
		items:        items,
		levels:       levels,
		reservations: reservations,
		tx:           tx,
		events:       noopPublisher{},
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// publish pushes events after a committed mutation. Delivery is best-effort;
// the publisher owns retry and failure logging.
func (s *Service) publish(ctx context.Context, events []ports.Event) {
	if len(events) == 0 {
		return
	}
	_ = s.events.Publish(ctx, events...)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...ports.Event) error { return nil }

// batchErr wraps a failing entry's error with its batch position when the
// batch has more than one entry, so callers learn which row aborted the
// operation.
func batchErr(size, index int, key string, err error) error {
	if err == nil || size <= 1 {
		return err
	}
	return &ports.BulkOperationError{Index: index, Key: key, Err: err}
}

var _ ports.Service = (*Service)(nil)
