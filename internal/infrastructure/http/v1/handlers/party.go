package handlers

import (
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/catalogs/party"
)

// PartyHandler handles party catalog requests.
type PartyHandler struct {
	*CatalogHandler[*party.Party]
}

// NewPartyHandler creates a new party handler.
func NewPartyHandler(base *BaseHandler, service *party.Service) *PartyHandler {
	return &PartyHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*party.Party]{
			Service: service,
			NewFn:   func() *party.Party { return &party.Party{} },
			Stamp:   stampParty,
		}),
	}
}

// stampParty writes server-side identity. The running balance fields are
// owned by the party ledger: an opening balance may be set on create,
// but updates carry the stored values forward untouched.
func stampParty(p *party.Party, firmID id.ID, existing *party.Party) {
	if existing == nil {
		p.BaseEntity = entity.NewBaseEntity(firmID)
		if p.CurrentBalanceType == "" {
			p.CurrentBalanceType = entity.BalanceToPay
		}
		return
	}
	p.BaseEntity = existing.BaseEntity
	p.CurrentBalance = existing.CurrentBalance
	p.CurrentBalanceType = existing.CurrentBalanceType
	p.Touch()
}
