package handlers

import (
	"github.com/gin-gonic/gin"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/catalogs/item"
)

// ItemHandler handles item catalog requests.
type ItemHandler struct {
	*CatalogHandler[*item.Item]
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*item.Item]{
			Service: service,
			NewFn:   func() *item.Item { return &item.Item{} },
			Stamp:   stampItem,
		}),
		service: service,
	}
}

// stampItem writes server-side identity. On update the stock quantities
// are carried over from the stored row: they belong to the stock ledger
// and are never writable through the catalog API.
func stampItem(it *item.Item, firmID id.ID, existing *item.Item) {
	if existing == nil {
		it.BaseEntity = entity.NewBaseEntity(firmID)
		return
	}
	it.BaseEntity = existing.BaseEntity
	it.PrimaryQuantity = existing.PrimaryQuantity
	it.SecondaryQuantity = existing.SecondaryQuantity
	it.Touch()
}

// GetStock handles GET /items/:id/stock - current stock position.
func (h *ItemHandler) GetStock(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	itemID, ok := h.ParamID(c)
	if !ok {
		return
	}

	it, err := h.service.GetStock(ctx, firmID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"itemId":            it.ID,
		"primaryQuantity":   it.PrimaryQuantity,
		"secondaryQuantity": it.SecondaryQuantity,
		"conversionRate":    it.ConversionRate,
		"compositeQuantity": it.CompositeQuantity(),
	})
}

// RegisterRoutes registers item routes.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.CatalogHandler.RegisterRoutes(rg)
	rg.GET("/:id/stock", h.GetStock)
}
