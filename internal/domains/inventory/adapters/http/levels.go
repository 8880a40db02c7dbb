package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

func (h *Handler) createLevels(c *gin.Context) {
	var req createLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.CreateLevelInput, 0, len(req.InventoryLevels))
	for _, payload := range req.InventoryLevels {
		inputs = append(inputs, ports.CreateLevelInput{
			ItemID:     payload.ItemID,
			LocationID: payload.LocationID,
			Stocked:    payload.Stocked,
			Incoming:   payload.Incoming,
		})
	}
	levels, err := h.service.CreateLevels(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inventory_levels": toLevelResponses(levels)})
}

func (h *Handler) retrieveLevel(c *gin.Context) {
	level, err := h.service.RetrieveLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory_level": toLevelResponse(level)})
}

func (h *Handler) listLevels(c *gin.Context) {
	page := pageFromQuery(c)
	filter := ports.LevelFilter{
		IDs:         c.QueryArray("id"),
		ItemIDs:     c.QueryArray("inventory_item_id"),
		LocationIDs: c.QueryArray("location_id"),
	}
	levels, count, err := h.service.ListAndCountLevels(c.Request.Context(), filter, page)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[levelResponse]{
		Items: toLevelResponses(levels),
		Count: count,
		Skip:  page.Skip,
		Take:  page.Take,
	})
}

func (h *Handler) updateLevels(c *gin.Context) {
	var req updateLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.UpdateLevelInput, 0, len(req.InventoryLevels))
	for _, payload := range req.InventoryLevels {
		inputs = append(inputs, ports.UpdateLevelInput{
			ItemID:     payload.ItemID,
			LocationID: payload.LocationID,
			Stocked:    payload.Stocked,
			Incoming:   payload.Incoming,
		})
	}
	levels, err := h.service.UpdateLevels(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory_levels": toLevelResponses(levels)})
}

func (h *Handler) adjustInventory(c *gin.Context) {
	var req adjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	level, err := h.service.AdjustInventory(c.Request.Context(), req.ItemID, req.LocationID, req.Adjustment)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory_level": toLevelResponse(level)})
}

func (h *Handler) deleteLevel(c *gin.Context) {
	if err := h.service.DeleteLevel(c.Request.Context(), c.Param("id"), c.Param("location_id")); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteLevelsByLocations(c *gin.Context) {
	var req locationIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	var (
		levelIDs       []string
		reservationIDs []string
	)
	if h.teardown != nil {
		result, err := h.teardown.TeardownLocations(c.Request.Context(), req.LocationIDs)
		if err != nil {
			h.responder.RespondError(c, err)
			return
		}
		levelIDs, reservationIDs = result.LevelIDs, result.ReservationIDs
	} else {
		result, err := h.service.DeleteLevelsByLocations(c.Request.Context(), req.LocationIDs)
		if err != nil {
			h.responder.RespondError(c, err)
			return
		}
		levelIDs, reservationIDs = result.LevelIDs, result.ReservationIDs
	}
	c.JSON(http.StatusOK, cascadeResponse{
		LevelIDs:       levelIDs,
		ReservationIDs: reservationIDs,
	})
}

func (h *Handler) availability(c *gin.Context) {
	itemID := c.Param("id")
	locationIDs := c.QueryArray("location_id")
	ctx := c.Request.Context()
	available, err := h.service.AvailableQuantity(ctx, itemID, locationIDs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	stocked, err := h.service.StockedQuantity(ctx, itemID, locationIDs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	reserved, err := h.service.ReservedQuantity(ctx, itemID, locationIDs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{
		ItemID:      itemID,
		LocationIDs: locationIDs,
		Available:   available,
		Stocked:     stocked,
		Reserved:    reserved,
	})
}

func (h *Handler) confirmInventory(c *gin.Context) {
	itemID := c.Param("id")
	locationIDs := c.QueryArray("location_id")
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "quantity must be an integer")
		return
	}
	ok, err := h.service.ConfirmInventory(c.Request.Context(), itemID, locationIDs, quantity)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmResponse{
		ItemID:      itemID,
		LocationIDs: locationIDs,
		Quantity:    quantity,
		Available:   ok,
	})
}
