package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

func (h *Handler) createReservations(c *gin.Context) {
	var req createReservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.CreateReservationInput, 0, len(req.ReservationItems))
	for _, payload := range req.ReservationItems {
		inputs = append(inputs, ports.CreateReservationInput{
			ItemID:     payload.ItemID,
			LocationID: payload.LocationID,
			Quantity:   payload.Quantity,
			LineItemID: payload.LineItemID,
			Metadata:   payload.Metadata,
		})
	}
	reservations, err := h.service.CreateReservations(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation_items": toReservationResponses(reservations)})
}

func (h *Handler) retrieveReservation(c *gin.Context) {
	reservation, err := h.service.RetrieveReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_item": toReservationResponse(reservation)})
}

func (h *Handler) listReservations(c *gin.Context) {
	page := pageFromQuery(c)
	filter := ports.ReservationFilter{
		IDs:         c.QueryArray("id"),
		ItemIDs:     c.QueryArray("inventory_item_id"),
		LocationIDs: c.QueryArray("location_id"),
		LineItemIDs: c.QueryArray("line_item_id"),
	}
	reservations, count, err := h.service.ListAndCountReservations(c.Request.Context(), filter, page)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[reservationResponse]{
		Items: toReservationResponses(reservations),
		Count: count,
		Skip:  page.Skip,
		Take:  page.Take,
	})
}

func (h *Handler) updateReservations(c *gin.Context) {
	var req updateReservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.UpdateReservationInput, 0, len(req.ReservationItems))
	for _, payload := range req.ReservationItems {
		inputs = append(inputs, ports.UpdateReservationInput{
			ID:       payload.ID,
			Quantity: payload.Quantity,
			Metadata: payload.Metadata,
		})
	}
	reservations, err := h.service.UpdateReservations(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_items": toReservationResponses(reservations)})
}

func (h *Handler) deleteReservations(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	if err := h.service.DeleteReservations(c.Request.Context(), req.IDs); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteReservationsByLineItems(c *gin.Context) {
	var req lineItemIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	if err := h.service.DeleteReservationsByLineItems(c.Request.Context(), req.LineItemIDs); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteReservationsByLocations(c *gin.Context) {
	var req locationIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	if err := h.service.DeleteReservationsByLocations(c.Request.Context(), req.LocationIDs); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
