// Package item provides the Item catalog: products and services a firm
// sells or buys. Stock quantities on an item are mutated exclusively by
// the stock register, never by catalog CRUD.
package item

import (
	"context"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/units"
)

// ItemType distinguishes stocked products from services.
type ItemType string

const (
	TypeProduct ItemType = "product"
	TypeService ItemType = "service"
)

// Item represents a product or service in the firm's catalog.
type Item struct {
	entity.BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Type defines whether stock is tracked for this item
	Type ItemType `db:"type" json:"type"`

	// ItemCode is an optional firm-local SKU
	ItemCode *string `db:"item_code" json:"itemCode,omitempty"`

	// HSNCode is the tax classification code
	HSNCode *string `db:"hsn_code" json:"hsnCode,omitempty"`

	// CategoryID references the item category
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	Description *string `db:"description" json:"description,omitempty"`

	// Pricing
	SalePrice         types.Money  `db:"sale_price" json:"salePrice"`
	PurchasePrice     types.Money  `db:"purchase_price" json:"purchasePrice"`
	WholesalePrice    *types.Money `db:"wholesale_price" json:"wholesalePrice,omitempty"`
	WholesaleQuantity *types.Quantity `db:"wholesale_quantity" json:"wholesaleQuantity,omitempty"`
	TaxRateID         *id.ID       `db:"tax_rate_id" json:"taxRateId,omitempty"`

	// Units. PrimaryQuantity and SecondaryQuantity jointly encode one
	// composite stock value when a secondary unit is configured.
	PrimaryUnitID     *id.ID         `db:"primary_unit_id" json:"primaryUnitId,omitempty"`
	SecondaryUnitID   *id.ID         `db:"secondary_unit_id" json:"secondaryUnitId,omitempty"`
	UnitConversionID  *id.ID         `db:"unit_conversion_id" json:"unitConversionId,omitempty"`
	ConversionRate    types.Quantity `db:"conversion_rate" json:"conversionRate"`
	PrimaryQuantity   types.Quantity `db:"primary_quantity" json:"primaryQuantity"`
	SecondaryQuantity types.Quantity `db:"secondary_quantity" json:"secondaryQuantity"`

	// Reorder hints
	MinStockLevel *types.Quantity `db:"min_stock_level" json:"minStockLevel,omitempty"`
	Location      *string         `db:"location" json:"location,omitempty"`
}

// NewItem creates a new Item with required fields.
func NewItem(firmID id.ID, name string, itemType ItemType) *Item {
	return &Item{
		BaseEntity: entity.NewBaseEntity(firmID),
		Name:       name,
		Type:       itemType,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.Type != TypeProduct && i.Type != TypeService {
		return apperror.NewValidation("invalid item type").
			WithDetail("field", "type").
			WithDetail("value", string(i.Type))
	}
	if i.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}
	if i.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	// A configured secondary unit needs a usable conversion.
	if i.SecondaryUnitID != nil && !id.IsNil(*i.SecondaryUnitID) {
		if !units.HasSecondaryUnit(i.SecondaryUnitID, i.UnitConversionID, i.ConversionRate) {
			return apperror.NewUnitConversion(i.ID.String(), i.ConversionRate.String())
		}
	}
	return nil
}

// HasSecondaryUnit reports whether the item tracks a composite quantity.
func (i *Item) HasSecondaryUnit() bool {
	return units.HasSecondaryUnit(i.SecondaryUnitID, i.UnitConversionID, i.ConversionRate)
}

// CompositeQuantity returns the item's stock as one secondary-unit total.
// Meaningful only when HasSecondaryUnit is true.
func (i *Item) CompositeQuantity() types.Quantity {
	return units.CompositeTotal(i.PrimaryQuantity, i.SecondaryQuantity, i.ConversionRate)
}
