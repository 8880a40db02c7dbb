package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

func (h *Handler) createItems(c *gin.Context) {
	var req createItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.CreateItemInput, 0, len(req.InventoryItems))
	for _, payload := range req.InventoryItems {
		input := ports.CreateItemInput{SKU: payload.SKU}
		if payload.RequiresShipping != nil {
			input.RequiresShipping = *payload.RequiresShipping
		}
		inputs = append(inputs, input)
	}
	items, err := h.service.CreateItems(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inventory_items": toItemResponses(items)})
}

func (h *Handler) retrieveItem(c *gin.Context) {
	item, err := h.service.RetrieveItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory_item": toItemResponse(item)})
}

func (h *Handler) listItems(c *gin.Context) {
	page := pageFromQuery(c)
	filter := ports.ItemFilter{
		IDs:            c.QueryArray("id"),
		SKUs:           c.QueryArray("sku"),
		IncludeDeleted: c.Query("include_deleted") == "true",
	}
	items, count, err := h.service.ListAndCountItems(c.Request.Context(), filter, page)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[itemResponse]{
		Items: toItemResponses(items),
		Count: count,
		Skip:  page.Skip,
		Take:  page.Take,
	})
}

func (h *Handler) updateItems(c *gin.Context) {
	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inputs := make([]ports.UpdateItemInput, 0, len(req.InventoryItems))
	for _, payload := range req.InventoryItems {
		inputs = append(inputs, ports.UpdateItemInput{
			ID:               payload.ID,
			SKU:              payload.SKU,
			RequiresShipping: payload.RequiresShipping,
		})
	}
	items, err := h.service.UpdateItems(c.Request.Context(), inputs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory_items": toItemResponses(items)})
}

func (h *Handler) deleteItems(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.DeleteItems(c.Request.Context(), req.IDs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cascadeResponse{
		LevelIDs:       result.LevelIDs,
		ReservationIDs: result.ReservationIDs,
	})
}

func (h *Handler) softDeleteItems(c *gin.Context) {
	h.flipItemDeletion(c, h.service.SoftDeleteItems)
}

func (h *Handler) restoreItems(c *gin.Context) {
	h.flipItemDeletion(c, h.service.RestoreItems)
}

func (h *Handler) flipItemDeletion(
	c *gin.Context,
	op func(ctx context.Context, ids []string, cfg ports.CascadeReturn) (map[string][]string, error),
) {
	var req cascadeIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	links, err := op(c.Request.Context(), req.IDs, ports.CascadeReturn{ReturnLinks: req.ReturnLinks})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": req.IDs, "links": links})
}
