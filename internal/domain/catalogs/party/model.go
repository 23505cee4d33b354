// Package party provides the Party catalog: customers and suppliers the
// firm trades with. The running balance fields are mutated exclusively by
// the party balance register, never by catalog CRUD.
package party

import (
	"context"
	"regexp"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// PartyType hints at the usual trading role. The ledgers never consult
// it: the effective role comes from each document's type.
type PartyType string

const (
	TypeCustomer PartyType = "customer"
	TypeSupplier PartyType = "supplier"
	TypeBoth     PartyType = "both"
)

// Party represents a counterparty with a running balance.
// The balance is stored as a non-negative magnitude; direction is
// carried solely by CurrentBalanceType, never by sign.
type Party struct {
	entity.BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Type is the usual trading role
	Type PartyType `db:"type" json:"type"`

	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	// GSTIN is the tax registration number
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// CurrentBalance is the magnitude of the net position
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`

	// CurrentBalanceType flags which side owes the other
	CurrentBalanceType entity.BalanceType `db:"current_balance_type" json:"currentBalanceType"`
}

// NewParty creates a new Party with a settled balance.
func NewParty(firmID id.ID, name string, partyType PartyType) *Party {
	return &Party{
		BaseEntity:         entity.NewBaseEntity(firmID),
		Name:               name,
		Type:               partyType,
		CurrentBalance:     types.Zero(),
		CurrentBalanceType: entity.BalanceToPay,
	}
}

// Validate implements entity.Validatable.
func (p *Party) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("party name is required").
			WithDetail("field", "name")
	}
	switch p.Type {
	case TypeCustomer, TypeSupplier, TypeBoth:
	default:
		return apperror.NewValidation("invalid party type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}
	if p.CurrentBalance.IsNegative() {
		return apperror.NewValidation("balance must be a non-negative magnitude").
			WithDetail("field", "currentBalance")
	}
	if p.CurrentBalanceType != entity.BalanceToPay && p.CurrentBalanceType != entity.BalanceToReceive {
		return apperror.NewValidation("invalid balance type").
			WithDetail("field", "currentBalanceType").
			WithDetail("value", string(p.CurrentBalanceType))
	}
	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	return nil
}
