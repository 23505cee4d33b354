package handlers

import (
	"github.com/gin-gonic/gin"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/payments"
)

// PaymentHandler handles payment requests. Creating, updating and
// deleting a payment moves the bank and party ledgers.
type PaymentHandler struct {
	*BaseHandler
	service *payments.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payments.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// List handles GET /payments.
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	filter := payments.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if direction := c.Query("direction"); direction != "" {
		d := entity.PaymentDirection(direction)
		filter.Direction = &d
	}
	if method := c.Query("method"); method != "" {
		m := entity.PaymentMethod(method)
		filter.PaymentMethod = &m
	}
	if partyID := c.Query("partyId"); partyID != "" {
		parsed, err := id.Parse(partyID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid partyId").WithDetail("value", partyID))
			return
		}
		filter.PartyID = &parsed
	}

	result, err := h.service.List(ctx, firmID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if result == nil {
		result = []*payments.Payment{}
	}

	h.OK(c, gin.H{"items": result})
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	paymentID, ok := h.ParamID(c)
	if !ok {
		return
	}

	payment, err := h.service.GetByID(ctx, firmID, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, payment)
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	payment := &payments.Payment{}
	if !h.BindJSON(c, payment) {
		return
	}
	payment.BaseEntity = entity.BaseEntity{}
	payment.FirmID = firmID

	created, err := h.service.Create(ctx, payment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// Update handles PUT /payments/:id.
func (h *PaymentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	paymentID, ok := h.ParamID(c)
	if !ok {
		return
	}

	payment := &payments.Payment{}
	if !h.BindJSON(c, payment) {
		return
	}

	updated, err := h.service.Update(ctx, firmID, paymentID, payment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /payments/:id.
func (h *PaymentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	paymentID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, firmID, paymentID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
