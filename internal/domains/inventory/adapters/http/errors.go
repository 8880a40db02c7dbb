package httpapi

import (
	stderrors "errors"
	"net/http"

	"github.com/stocklane/inventory-service/internal/domains/inventory/application"
	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/errors"
)

// Inventory-specific problem types, layered on the shared catalog.
const (
	TypeInsufficientStock  = "/problems/insufficient-stock"
	TypeInvalidAdjustment  = "/problems/invalid-adjustment"
	TypeDuplicateSKU       = "/problems/duplicate-sku"
	TypeDuplicateLevel     = "/problems/duplicate-inventory-level"
	TypeBulkOperationError = "/problems/bulk-operation-failed"
)

// newResponder maps inventory errors to Problem Details. A bulk failure
// carries the failing entry's index and key as extensions on top of the
// underlying cause's problem.
func newResponder() *errors.ChainedResponder {
	return errors.NewChainedResponder("", mapInventoryError)
}

func mapInventoryError(err error) (errors.ProblemDetail, bool) {
	problem, ok := mapCause(err)
	if !ok {
		return errors.ProblemDetail{}, false
	}
	var bulkErr *ports.BulkOperationError
	if stderrors.As(err, &bulkErr) {
		problem = problem.
			WithExtension("entry_index", bulkErr.Index).
			WithExtension("entry_key", bulkErr.Key)
	}
	return problem, true
}

func mapCause(err error) (errors.ProblemDetail, bool) {
	var insufficientErr *domain.InsufficientStockError
	if stderrors.As(err, &insufficientErr) {
		return errors.ProblemDetail{
			Type:   TypeInsufficientStock,
			Title:  "Insufficient Stock",
			Status: http.StatusConflict,
			Detail: insufficientErr.Error(),
		}.
			WithExtension("inventory_item_id", insufficientErr.ItemID).
			WithExtension("location_id", insufficientErr.LocationID).
			WithExtension("requested_quantity", insufficientErr.Requested).
			WithExtension("available_quantity", insufficientErr.Available), true
	}

	var adjustmentErr *domain.InvalidAdjustmentError
	if stderrors.As(err, &adjustmentErr) {
		return errors.ProblemDetail{
			Type:   TypeInvalidAdjustment,
			Title:  "Invalid Adjustment",
			Status: http.StatusUnprocessableEntity,
			Detail: adjustmentErr.Error(),
		}.
			WithExtension("inventory_item_id", adjustmentErr.ItemID).
			WithExtension("location_id", adjustmentErr.LocationID).
			WithExtension("adjustment", adjustmentErr.Adjustment), true
	}

	switch {
	case stderrors.Is(err, ports.ErrItemNotFound),
		stderrors.Is(err, ports.ErrLevelNotFound),
		stderrors.Is(err, ports.ErrReservationNotFound):
		return errors.ErrNotFound.WithDetail(err.Error()), true
	case stderrors.Is(err, ports.ErrDuplicateSKU):
		return errors.ProblemDetail{
			Type:   TypeDuplicateSKU,
			Title:  "Duplicate SKU",
			Status: http.StatusConflict,
			Detail: err.Error(),
		}, true
	case stderrors.Is(err, ports.ErrDuplicateLevel):
		return errors.ProblemDetail{
			Type:   TypeDuplicateLevel,
			Title:  "Duplicate Inventory Level",
			Status: http.StatusConflict,
			Detail: err.Error(),
		}, true
	case stderrors.Is(err, application.ErrInvalidInput):
		return errors.ErrValidation.WithDetail(err.Error()), true
	}
	return errors.ProblemDetail{}, false
}
