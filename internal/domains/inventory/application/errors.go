package application

import (
	"errors"
	"fmt"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid inventory input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptySKU) ||
		errors.Is(err, domain.ErrMissingItemID) ||
		errors.Is(err, domain.ErrMissingLocationID) ||
		errors.Is(err, domain.ErrNegativeQuantity) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
