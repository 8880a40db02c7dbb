package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

const tracerName = "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core inventory service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateItems(ctx context.Context, inputs []ports.CreateItemInput) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.CreateItems",
		trace.WithAttributes(attribute.Int("item.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "creating inventory items", slog.Int("count", len(inputs)))
	result, err := s.inner.CreateItems(ctx, inputs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create inventory items")
	}
	s.metrics.recordItemsCreated(ctx, len(result))
	s.logInfo(ctx, "inventory items created", slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) RetrieveItem(ctx context.Context, id string) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RetrieveItem",
		trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	result, err := s.inner.RetrieveItem(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load inventory item", slog.String("item.id", id))
	}
	return result, nil
}

func (s *Service) ListItems(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListItems")
	defer span.End()

	result, err := s.inner.ListItems(ctx, filter, page)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list inventory items")
	}
	span.SetAttributes(attribute.Int("item.count", len(result)))
	return result, nil
}

func (s *Service) ListAndCountItems(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListAndCountItems")
	defer span.End()

	result, count, err := s.inner.ListAndCountItems(ctx, filter, page)
	if err != nil {
		return nil, 0, s.handleError(ctx, span, err, "failed to list inventory items")
	}
	span.SetAttributes(attribute.Int64("item.total", count))
	return result, count, nil
}

func (s *Service) UpdateItems(ctx context.Context, inputs []ports.UpdateItemInput) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.UpdateItems",
		trace.WithAttributes(attribute.Int("item.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "updating inventory items", slog.Int("count", len(inputs)))
	result, err := s.inner.UpdateItems(ctx, inputs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update inventory items")
	}
	return result, nil
}

func (s *Service) DeleteItems(ctx context.Context, ids []string) (*ports.CascadeResult, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteItems",
		trace.WithAttributes(attribute.Int("item.count", len(ids))))
	defer span.End()

	s.logInfo(ctx, "deleting inventory items", slog.Int("count", len(ids)))
	result, err := s.inner.DeleteItems(ctx, ids)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete inventory items")
	}
	s.metrics.recordItemsDeleted(ctx, len(ids))
	s.logInfo(ctx, "inventory items deleted",
		slog.Int("count", len(ids)),
		slog.Int("cascaded_levels", len(result.LevelIDs)),
		slog.Int("cascaded_reservations", len(result.ReservationIDs)))
	return result, nil
}

func (s *Service) SoftDeleteItems(ctx context.Context, ids []string, cfg ports.CascadeReturn) (map[string][]string, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.SoftDeleteItems",
		trace.WithAttributes(attribute.Int("item.count", len(ids))))
	defer span.End()

	s.logInfo(ctx, "soft deleting inventory items", slog.Int("count", len(ids)))
	result, err := s.inner.SoftDeleteItems(ctx, ids, cfg)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to soft delete inventory items")
	}
	return result, nil
}

func (s *Service) RestoreItems(ctx context.Context, ids []string, cfg ports.CascadeReturn) (map[string][]string, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RestoreItems",
		trace.WithAttributes(attribute.Int("item.count", len(ids))))
	defer span.End()

	s.logInfo(ctx, "restoring inventory items", slog.Int("count", len(ids)))
	result, err := s.inner.RestoreItems(ctx, ids, cfg)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to restore inventory items")
	}
	return result, nil
}

func (s *Service) CreateLevels(ctx context.Context, inputs []ports.CreateLevelInput) ([]*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.CreateLevels",
		trace.WithAttributes(attribute.Int("level.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "creating inventory levels", slog.Int("count", len(inputs)))
	result, err := s.inner.CreateLevels(ctx, inputs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create inventory levels")
	}
	s.logInfo(ctx, "inventory levels created", slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) RetrieveLevel(ctx context.Context, levelID string) (*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RetrieveLevel",
		trace.WithAttributes(attribute.String("level.id", levelID)))
	defer span.End()

	result, err := s.inner.RetrieveLevel(ctx, levelID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load inventory level", slog.String("level.id", levelID))
	}
	return result, nil
}

func (s *Service) RetrieveLevelByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RetrieveLevelByItemAndLocation",
		trace.WithAttributes(attribute.String("item.id", itemID), attribute.String("location.id", locationID)))
	defer span.End()

	result, err := s.inner.RetrieveLevelByItemAndLocation(ctx, itemID, locationID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load inventory level",
			slog.String("item.id", itemID), slog.String("location.id", locationID))
	}
	return result, nil
}

func (s *Service) ListLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListLevels")
	defer span.End()

	result, err := s.inner.ListLevels(ctx, filter, page)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list inventory levels")
	}
	span.SetAttributes(attribute.Int("level.count", len(result)))
	return result, nil
}

func (s *Service) ListAndCountLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListAndCountLevels")
	defer span.End()

	result, count, err := s.inner.ListAndCountLevels(ctx, filter, page)
	if err != nil {
		return nil, 0, s.handleError(ctx, span, err, "failed to list inventory levels")
	}
	span.SetAttributes(attribute.Int64("level.total", count))
	return result, count, nil
}

func (s *Service) UpdateLevels(ctx context.Context, inputs []ports.UpdateLevelInput) ([]*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.UpdateLevels",
		trace.WithAttributes(attribute.Int("level.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "updating inventory levels", slog.Int("count", len(inputs)))
	result, err := s.inner.UpdateLevels(ctx, inputs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update inventory levels")
	}
	return result, nil
}

func (s *Service) AdjustInventory(ctx context.Context, itemID, locationID string, adjustment int64) (*domain.Level, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.AdjustInventory",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.String("location.id", locationID),
			attribute.Int64("adjustment", adjustment)))
	defer span.End()

	s.logInfo(ctx, "adjusting inventory",
		slog.String("item.id", itemID), slog.String("location.id", locationID), slog.Int64("adjustment", adjustment))
	result, err := s.inner.AdjustInventory(ctx, itemID, locationID, adjustment)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to adjust inventory",
			slog.String("item.id", itemID), slog.String("location.id", locationID))
	}
	s.metrics.recordAdjustment(ctx)
	s.logInfo(ctx, "inventory adjusted",
		slog.String("item.id", itemID),
		slog.String("location.id", locationID),
		slog.Int64("stocked", result.Stocked),
		slog.Int64("reserved", result.Reserved))
	return result, nil
}

func (s *Service) DeleteLevel(ctx context.Context, itemID, locationID string) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteLevel",
		trace.WithAttributes(attribute.String("item.id", itemID), attribute.String("location.id", locationID)))
	defer span.End()

	s.logInfo(ctx, "deleting inventory level",
		slog.String("item.id", itemID), slog.String("location.id", locationID))
	if err := s.inner.DeleteLevel(ctx, itemID, locationID); err != nil {
		return s.handleError(ctx, span, err, "failed to delete inventory level",
			slog.String("item.id", itemID), slog.String("location.id", locationID))
	}
	return nil
}

func (s *Service) DeleteLevelsByLocations(ctx context.Context, locationIDs []string) (*ports.CascadeResult, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteLevelsByLocations",
		trace.WithAttributes(attribute.Int("location.count", len(locationIDs))))
	defer span.End()

	s.logInfo(ctx, "deleting inventory levels by location", slog.Int("location_count", len(locationIDs)))
	result, err := s.inner.DeleteLevelsByLocations(ctx, locationIDs)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete inventory levels by location")
	}
	s.logInfo(ctx, "inventory levels deleted by location",
		slog.Int("cascaded_levels", len(result.LevelIDs)),
		slog.Int("cascaded_reservations", len(result.ReservationIDs)))
	return result, nil
}

func (s *Service) CreateReservations(ctx context.Context, inputs []ports.CreateReservationInput) ([]*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.CreateReservations",
		trace.WithAttributes(attribute.Int("reservation.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "creating reservations", slog.Int("count", len(inputs)))
	result, err := s.inner.CreateReservations(ctx, inputs)
	if err != nil {
		s.metrics.recordReservationRejected(ctx, err)
		return nil, s.handleError(ctx, span, err, "failed to create reservations")
	}
	s.metrics.recordReservationsCreated(ctx, len(result))
	s.logInfo(ctx, "reservations created", slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) RetrieveReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RetrieveReservation",
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer span.End()

	result, err := s.inner.RetrieveReservation(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load reservation", slog.String("reservation.id", id))
	}
	return result, nil
}

func (s *Service) ListReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListReservations")
	defer span.End()

	result, err := s.inner.ListReservations(ctx, filter, page)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list reservations")
	}
	span.SetAttributes(attribute.Int("reservation.count", len(result)))
	return result, nil
}

func (s *Service) ListAndCountReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListAndCountReservations")
	defer span.End()

	result, count, err := s.inner.ListAndCountReservations(ctx, filter, page)
	if err != nil {
		return nil, 0, s.handleError(ctx, span, err, "failed to list reservations")
	}
	span.SetAttributes(attribute.Int64("reservation.total", count))
	return result, count, nil
}

func (s *Service) UpdateReservations(ctx context.Context, inputs []ports.UpdateReservationInput) ([]*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.UpdateReservations",
		trace.WithAttributes(attribute.Int("reservation.count", len(inputs))))
	defer span.End()

	s.logInfo(ctx, "updating reservations", slog.Int("count", len(inputs)))
	result, err := s.inner.UpdateReservations(ctx, inputs)
	if err != nil {
		s.metrics.recordReservationRejected(ctx, err)
		return nil, s.handleError(ctx, span, err, "failed to update reservations")
	}
	return result, nil
}

func (s *Service) DeleteReservations(ctx context.Context, ids []string) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteReservations",
		trace.WithAttributes(attribute.Int("reservation.count", len(ids))))
	defer span.End()

	s.logInfo(ctx, "deleting reservations", slog.Int("count", len(ids)))
	if err := s.inner.DeleteReservations(ctx, ids); err != nil {
		return s.handleError(ctx, span, err, "failed to delete reservations")
	}
	s.metrics.recordReservationsReleased(ctx, len(ids))
	return nil
}

func (s *Service) DeleteReservationsByLineItems(ctx context.Context, lineItemIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteReservationsByLineItems",
		trace.WithAttributes(attribute.Int("line_item.count", len(lineItemIDs))))
	defer span.End()

	s.logInfo(ctx, "deleting reservations by line item", slog.Int("line_item_count", len(lineItemIDs)))
	if err := s.inner.DeleteReservationsByLineItems(ctx, lineItemIDs); err != nil {
		return s.handleError(ctx, span, err, "failed to delete reservations by line item")
	}
	return nil
}

func (s *Service) DeleteReservationsByLocations(ctx context.Context, locationIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteReservationsByLocations",
		trace.WithAttributes(attribute.Int("location.count", len(locationIDs))))
	defer span.End()

	s.logInfo(ctx, "deleting reservations by location", slog.Int("location_count", len(locationIDs)))
	if err := s.inner.DeleteReservationsByLocations(ctx, locationIDs); err != nil {
		return s.handleError(ctx, span, err, "failed to delete reservations by location")
	}
	return nil
}

func (s *Service) AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.AvailableQuantity",
		trace.WithAttributes(attribute.String("item.id", itemID), attribute.Int("location.count", len(locationIDs))))
	defer span.End()

	result, err := s.inner.AvailableQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute available quantity", slog.String("item.id", itemID))
	}
	span.SetAttributes(attribute.Int64("quantity.available", result))
	return result, nil
}

func (s *Service) StockedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.StockedQuantity",
		trace.WithAttributes(attribute.String("item.id", itemID), attribute.Int("location.count", len(locationIDs))))
	defer span.End()

	result, err := s.inner.StockedQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute stocked quantity", slog.String("item.id", itemID))
	}
	span.SetAttributes(attribute.Int64("quantity.stocked", result))
	return result, nil
}

func (s *Service) ReservedQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ReservedQuantity",
		trace.WithAttributes(attribute.String("item.id", itemID), attribute.Int("location.count", len(locationIDs))))
	defer span.End()

	result, err := s.inner.ReservedQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute reserved quantity", slog.String("item.id", itemID))
	}
	span.SetAttributes(attribute.Int64("quantity.reserved", result))
	return result, nil
}

func (s *Service) ConfirmInventory(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ConfirmInventory",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.Int("location.count", len(locationIDs)),
			attribute.Int64("quantity.requested", quantity)))
	defer span.End()

	result, err := s.inner.ConfirmInventory(ctx, itemID, locationIDs, quantity)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to confirm inventory", slog.String("item.id", itemID))
	}
	span.SetAttributes(attribute.Bool("quantity.confirmed", result))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	itemsCreated         metric.Int64Counter
	itemsDeleted         metric.Int64Counter
	reservationsCreated  metric.Int64Counter
	reservationsReleased metric.Int64Counter
	reservationsRejected metric.Int64Counter
	adjustments          metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsCreated, _ := m.Int64Counter("inventory.service.items_created", metric.WithDescription("Number of inventory items created"))
	itemsDeleted, _ := m.Int64Counter("inventory.service.items_deleted", metric.WithDescription("Number of inventory items deleted"))
	reservationsCreated, _ := m.Int64Counter("inventory.service.reservations_created", metric.WithDescription("Number of reservations created"))
	reservationsReleased, _ := m.Int64Counter("inventory.service.reservations_released", metric.WithDescription("Number of reservations released"))
	reservationsRejected, _ := m.Int64Counter("inventory.service.reservations_rejected", metric.WithDescription("Number of reservations rejected for insufficient stock"))
	adjustments, _ := m.Int64Counter("inventory.service.adjustments_applied", metric.WithDescription("Number of stock adjustments applied"))
	return serviceMetrics{
		itemsCreated:         itemsCreated,
		itemsDeleted:         itemsDeleted,
		reservationsCreated:  reservationsCreated,
		reservationsReleased: reservationsReleased,
		reservationsRejected: reservationsRejected,
		adjustments:          adjustments,
	}
}

func (m serviceMetrics) recordItemsCreated(ctx context.Context, n int) {
	if m.itemsCreated != nil {
		m.itemsCreated.Add(ctx, int64(n))
	}
}

func (m serviceMetrics) recordItemsDeleted(ctx context.Context, n int) {
	if m.itemsDeleted != nil {
		m.itemsDeleted.Add(ctx, int64(n))
	}
}

func (m serviceMetrics) recordReservationsCreated(ctx context.Context, n int) {
	if m.reservationsCreated != nil {
		m.reservationsCreated.Add(ctx, int64(n))
	}
}

func (m serviceMetrics) recordReservationsReleased(ctx context.Context, n int) {
	if m.reservationsReleased != nil {
		m.reservationsReleased.Add(ctx, int64(n))
	}
}

// recordReservationRejected only counts stock violations; other failures are
// visible through span status.
func (m serviceMetrics) recordReservationRejected(ctx context.Context, err error) {
	if m.reservationsRejected != nil && errors.Is(err, domain.ErrInsufficientStock) {
		m.reservationsRejected.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordAdjustment(ctx context.Context) {
	if m.adjustments != nil {
		m.adjustments.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
