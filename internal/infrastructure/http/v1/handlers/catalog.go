package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain"
	domainFilter "khata/internal/domain/filter"
	"khata/internal/infrastructure/http/v1/dto"
)

// CatalogService is the slice of service behavior the generic catalog
// handler needs. All catalog services satisfy it.
type CatalogService[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, firmID, entityID id.ID) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, firmID, entityID id.ID) error
	List(ctx context.Context, firmID id.ID, filter domain.ListFilter) (domain.ListResult[T], error)
}

// CatalogHandler provides generic firm-scoped CRUD handlers for catalog
// entities. Request bodies bind straight onto the domain model; identity
// fields are stamped server-side and never trusted from the client.
type CatalogHandler[T entity.Validatable] struct {
	*BaseHandler
	service CatalogService[T]

	// newFn allocates an empty entity for JSON binding.
	newFn func() T
	// stamp writes identity onto a bound entity. existing is the zero
	// value on create and the stored entity on update.
	stamp func(e T, firmID id.ID, existing T)
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T entity.Validatable] struct {
	Service CatalogService[T]
	NewFn   func() T
	Stamp   func(e T, firmID id.ID, existing T)
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T entity.Validatable](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T],
) *CatalogHandler[T] {
	return &CatalogHandler[T]{
		BaseHandler: base,
		service:     cfg.Service,
		newFn:       cfg.NewFn,
		stamp:       cfg.Stamp,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T]) List(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")

	if filterJSON := c.Query("filter"); filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		filter.AdvancedFilters = advFilters
	}

	result, err := h.service.List(ctx, firmID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	found, err := h.service.GetByID(ctx, firmID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, found)
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	e := h.newFn()
	if !h.BindJSON(c, e) {
		return
	}

	var zero T
	h.stamp(e, firmID, zero)

	if err := h.service.Create(ctx, e); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, e)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	existing, err := h.service.GetByID(ctx, firmID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.newFn()
	if !h.BindJSON(c, updated) {
		return
	}

	h.stamp(updated, firmID, existing)

	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id - remove entity.
func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, firmID, entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers standard CRUD routes.
func (h *CatalogHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
