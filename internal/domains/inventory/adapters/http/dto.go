package httpapi

import (
	"time"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
)

type itemResponse struct {
	ID               string     `json:"id"`
	SKU              string     `json:"sku"`
	RequiresShipping bool       `json:"requires_shipping"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type levelResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"inventory_item_id"`
	LocationID string    `json:"location_id"`
	Stocked    int64     `json:"stocked_quantity"`
	Reserved   int64     `json:"reserved_quantity"`
	Incoming   int64     `json:"incoming_quantity"`
	Available  int64     `json:"available_quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type reservationResponse struct {
	ID         string            `json:"id"`
	ItemID     string            `json:"inventory_item_id"`
	LocationID string            `json:"location_id"`
	Quantity   int64             `json:"quantity"`
	LineItemID string            `json:"line_item_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Count int64 `json:"count"`
	Skip  int   `json:"skip"`
	Take  int   `json:"take"`
}

type cascadeResponse struct {
	LevelIDs       []string `json:"deleted_level_ids,omitempty"`
	ReservationIDs []string `json:"deleted_reservation_ids,omitempty"`
}

type createItemPayload struct {
	SKU              string `json:"sku" binding:"required"`
	RequiresShipping *bool  `json:"requires_shipping"`
}

type createItemsRequest struct {
	InventoryItems []createItemPayload `json:"inventory_items" binding:"required"`
}

type updateItemPayload struct {
	ID               string  `json:"id" binding:"required"`
	SKU              *string `json:"sku"`
	RequiresShipping *bool   `json:"requires_shipping"`
}

type updateItemsRequest struct {
	InventoryItems []updateItemPayload `json:"inventory_items" binding:"required"`
}

type idsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type cascadeIDsRequest struct {
	IDs         []string `json:"ids" binding:"required"`
	ReturnLinks []string `json:"return_links"`
}

type createLevelPayload struct {
	ItemID     string `json:"inventory_item_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
	Stocked    int64  `json:"stocked_quantity"`
	Incoming   int64  `json:"incoming_quantity"`
}

type createLevelsRequest struct {
	InventoryLevels []createLevelPayload `json:"inventory_levels" binding:"required"`
}

type updateLevelPayload struct {
	ItemID     string `json:"inventory_item_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
	Stocked    *int64 `json:"stocked_quantity"`
	Incoming   *int64 `json:"incoming_quantity"`
}

type updateLevelsRequest struct {
	InventoryLevels []updateLevelPayload `json:"inventory_levels" binding:"required"`
}

type adjustInventoryRequest struct {
	ItemID     string `json:"inventory_item_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
	Adjustment int64  `json:"adjustment" binding:"required"`
}

type locationIDsRequest struct {
	LocationIDs []string `json:"location_ids" binding:"required"`
}

type lineItemIDsRequest struct {
	LineItemIDs []string `json:"line_item_ids" binding:"required"`
}

type createReservationPayload struct {
	ItemID     string            `json:"inventory_item_id" binding:"required"`
	LocationID string            `json:"location_id" binding:"required"`
	Quantity   int64             `json:"quantity" binding:"required"`
	LineItemID string            `json:"line_item_id"`
	Metadata   map[string]string `json:"metadata"`
}

type createReservationsRequest struct {
	ReservationItems []createReservationPayload `json:"reservation_items" binding:"required"`
}

type updateReservationPayload struct {
	ID       string            `json:"id" binding:"required"`
	Quantity *int64            `json:"quantity"`
	Metadata map[string]string `json:"metadata"`
}

type updateReservationsRequest struct {
	ReservationItems []updateReservationPayload `json:"reservation_items" binding:"required"`
}

type availabilityResponse struct {
	ItemID      string   `json:"inventory_item_id"`
	LocationIDs []string `json:"location_ids"`
	Available   int64    `json:"available_quantity"`
	Stocked     int64    `json:"stocked_quantity"`
	Reserved    int64    `json:"reserved_quantity"`
}

type confirmResponse struct {
	ItemID      string   `json:"inventory_item_id"`
	LocationIDs []string `json:"location_ids"`
	Quantity    int64    `json:"quantity"`
	Available   bool     `json:"available"`
}

func toItemResponse(item *domain.Item) itemResponse {
	return itemResponse{
		ID:               item.ID,
		SKU:              item.SKU,
		RequiresShipping: item.RequiresShipping,
		DeletedAt:        item.DeletedAt,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func toItemResponses(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func toLevelResponse(level *domain.Level) levelResponse {
	return levelResponse{
		ID:         level.ID,
		ItemID:     level.ItemID,
		LocationID: level.LocationID,
		Stocked:    level.Stocked,
		Reserved:   level.Reserved,
		Incoming:   level.Incoming,
		Available:  level.Available(),
		CreatedAt:  level.CreatedAt,
		UpdatedAt:  level.UpdatedAt,
	}
}

func toLevelResponses(levels []*domain.Level) []levelResponse {
	out := make([]levelResponse, 0, len(levels))
	for _, level := range levels {
		out = append(out, toLevelResponse(level))
	}
	return out
}

func toReservationResponse(reservation *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         reservation.ID,
		ItemID:     reservation.ItemID,
		LocationID: reservation.LocationID,
		Quantity:   reservation.Quantity,
		LineItemID: reservation.LineItemID,
		Metadata:   reservation.Metadata,
		CreatedAt:  reservation.CreatedAt,
		UpdatedAt:  reservation.UpdatedAt,
	}
}

func toReservationResponses(reservations []*domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationResponse(reservation))
	}
	return out
}
