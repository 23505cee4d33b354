package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/documents"
)

// DocumentHandler handles business document requests. Creating, updating
// and deleting a document moves the stock, party and bank ledgers.
type DocumentHandler struct {
	*BaseHandler
	service *documents.Service
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, service *documents.Service) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service}
}

// List handles GET /documents.
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	docs, err := h.service.List(ctx, firmID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if docs == nil {
		docs = []*documents.Document{}
	}

	h.OK(c, gin.H{"items": docs})
}

func (h *DocumentHandler) parseFilter(c *gin.Context) (documents.ListFilter, bool) {
	filter := documents.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if docType := c.Query("type"); docType != "" {
		t := entity.DocumentType(docType)
		filter.DocumentType = &t
	}
	if partyID := c.Query("partyId"); partyID != "" {
		parsed, err := id.Parse(partyID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid partyId").WithDetail("value", partyID))
			return filter, false
		}
		filter.PartyID = &parsed
	}
	if from, ok := h.parseDateQuery(c, "from"); !ok {
		return filter, false
	} else if from != nil {
		filter.FromDate = from
	}
	if to, ok := h.parseDateQuery(c, "to"); !ok {
		return filter, false
	} else if to != nil {
		filter.ToDate = to
	}

	return filter, true
}

func (h *DocumentHandler) parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Accept plain dates too.
		parsed, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date").WithDetail("param", key).WithDetail("value", raw))
		return nil, false
	}
	return &parsed, true
}

// Get handles GET /documents/:id.
func (h *DocumentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(ctx, firmID, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Create handles POST /documents.
func (h *DocumentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	doc := &documents.Document{}
	if !h.BindJSON(c, doc) {
		return
	}
	doc.BaseEntity = entity.BaseEntity{}
	doc.FirmID = firmID

	created, err := h.service.Create(ctx, doc)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// Update handles PUT /documents/:id.
func (h *DocumentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc := &documents.Document{}
	if !h.BindJSON(c, doc) {
		return
	}

	updated, err := h.service.Update(ctx, firmID, docID, doc)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /documents/:id.
func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, firmID, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers document routes.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
