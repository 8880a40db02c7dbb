// Package httpapi exposes the inventory service over REST. Errors surface as
// RFC 7807 Problem Details.
package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/errors"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

// Handler adapts the inventory service to gin routes. Location teardown runs
// through the orchestrator so deployments with Temporal get durable execution.
type Handler struct {
	service   ports.Service
	teardown  ports.TeardownOrchestrator
	responder *errors.ChainedResponder
}

// NewHandler wires the HTTP surface over the given service. A nil teardown
// orchestrator falls back to running teardown synchronously on the service.
func NewHandler(service ports.Service, teardown ports.TeardownOrchestrator) *Handler {
	return &Handler{
		service:   service,
		teardown:  teardown,
		responder: newResponder(),
	}
}

// Register mounts the inventory routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	items := r.Group("/inventory-items")
	items.POST("", h.createItems)
	items.GET("", h.listItems)
	items.GET("/:id", h.retrieveItem)
	items.PATCH("", h.updateItems)
	items.DELETE("", h.deleteItems)
	items.POST("/soft-delete", h.softDeleteItems)
	items.POST("/restore", h.restoreItems)
	items.GET("/:id/availability", h.availability)
	items.POST("/:id/confirm", h.confirmInventory)
	items.DELETE("/:id/location-levels/:location_id", h.deleteLevel)

	levels := r.Group("/inventory-levels")
	levels.POST("", h.createLevels)
	levels.GET("", h.listLevels)
	levels.GET("/:id", h.retrieveLevel)
	levels.PATCH("", h.updateLevels)
	levels.POST("/adjust", h.adjustInventory)
	levels.POST("/delete-by-locations", h.deleteLevelsByLocations)

	reservations := r.Group("/reservation-items")
	reservations.POST("", h.createReservations)
	reservations.GET("", h.listReservations)
	reservations.GET("/:id", h.retrieveReservation)
	reservations.PATCH("", h.updateReservations)
	reservations.DELETE("", h.deleteReservations)
	reservations.POST("/delete-by-line-items", h.deleteReservationsByLineItems)
	reservations.POST("/delete-by-locations", h.deleteReservationsByLocations)
}

func pageFromQuery(c *gin.Context) query.Page {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	take, _ := strconv.Atoi(c.DefaultQuery("take", strconv.Itoa(query.DefaultTake)))
	return query.Page{Skip: skip, Take: take}
}
